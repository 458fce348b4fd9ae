/*
Copyright © 2019 the GasLift authors.
This file is part of GasLift.

GasLift is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GasLift is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GasLift.  If not, see <http://www.gnu.org/licenses/>.
*/


package gasliftutil

import (
	"fmt"
	"io"

	"github.com/liftmodel/gaslift"
	"github.com/tealeg/xlsx"
)

// Workbook collects gas-lift results into spreadsheet tables.
type Workbook struct {
	f *xlsx.File
}

// NewWorkbook returns an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{f: xlsx.NewFile()}
}

func (wb *Workbook) sheet(name string, header ...string) (*xlsx.Sheet, error) {
	s, err := wb.f.AddSheet(name)
	if err != nil {
		return nil, fmt.Errorf("gasliftutil: adding sheet %s: %v", name, err)
	}
	row := s.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
	return s, nil
}

func addFloats(row *xlsx.Row, vals ...float64) {
	for _, v := range vals {
		row.AddCell().SetFloat(v)
	}
}

// AddCurve adds a sheet with the sweep of a hydraulic performance
// curve.
func (wb *Workbook) AddCurve(name string, c *gaslift.PerformanceCurve) error {
	s, err := wb.sheet(name, "TotalGLR", "InjectionGLR", "LiquidRate", "OilRate",
		"GasRate", "BottomHolePressure", "Converged", "Feasible")
	if err != nil {
		return err
	}
	sweep := c.Sweep()
	if len(sweep) == 0 {
		for _, p := range c.Points() {
			row := s.AddRow()
			addFloats(row, 0, 0, 0, p.OilRate, p.GasRate, 0)
		}
		return nil
	}
	for _, p := range sweep {
		row := s.AddRow()
		addFloats(row, p.TotalGLR, p.InjectionGLR, p.LiquidRate, p.OilRate, p.GasRate, p.BottomHolePressure)
		row.AddCell().SetBool(p.Converged)
		row.AddCell().SetBool(p.Feasible)
	}
	return nil
}

// AddValves adds a sheet with an unloading valve design.
func (wb *Workbook) AddValves(name string, valves []gaslift.ValvePosition) error {
	s, err := wb.sheet(name, "Number", "Depth", "OpeningPressure", "ClosingPressure", "OperatingValve")
	if err != nil {
		return err
	}
	for _, v := range valves {
		row := s.AddRow()
		row.AddCell().SetInt(v.Number)
		addFloats(row, v.Depth, v.OpeningPressure, v.ClosingPressure)
		row.AddCell().SetBool(v.OperatingValve)
	}
	return nil
}

// AddAllocation adds a sheet with the per-well allocation, followed by
// the user report columns, if any, and a totals row.
func (wb *Workbook) AddAllocation(name string, r *gaslift.AllocationResult, rep *gaslift.Reporter) error {
	header := []string{"Well", "Enabled", "GasRate", "OilRate", "NaturalFlowRate",
		"IncrementalOil", "MarginalResponse", "GasEfficiency"}
	var extra [][]float64
	if rep != nil {
		header = append(header, rep.Columns()...)
		var err error
		if extra, err = rep.Evaluate(r); err != nil {
			return err
		}
	}
	s, err := wb.sheet(name, header...)
	if err != nil {
		return err
	}
	for i, w := range r.Wells {
		row := s.AddRow()
		row.AddCell().SetString(w.Name)
		row.AddCell().SetBool(w.Enabled)
		addFloats(row, w.GasRate, w.OilRate, w.NaturalFlowRate, w.IncrementalOil, w.MarginalResponse, w.GasEfficiency)
		if extra != nil {
			addFloats(row, extra[i]...)
		}
	}
	row := s.AddRow()
	row.AddCell().SetString("Total")
	row.AddCell()
	addFloats(row, r.TotalGas, r.TotalOil, r.TotalNatural, r.TotalIncremental)
	row.AddCell()
	addFloats(row, r.GasEfficiency)
	return nil
}

// AddSummary adds a sheet with one row of field totals per result.
func (wb *Workbook) AddSummary(name string, results []*gaslift.AllocationResult) error {
	s, err := wb.sheet(name, "Method", "TotalOil", "TotalIncremental", "TotalGas",
		"AvailableGas", "GasUtilization", "GasEfficiency", "CompressionPower", "Iterations", "Converged")
	if err != nil {
		return err
	}
	for _, r := range results {
		row := s.AddRow()
		row.AddCell().SetString(r.Method.String())
		addFloats(row, r.TotalOil, r.TotalIncremental, r.TotalGas, r.AvailableGas,
			r.GasUtilization, r.GasEfficiency, r.CompressionPower)
		row.AddCell().SetInt(r.Iterations)
		row.AddCell().SetBool(r.Converged)
	}
	return nil
}

// Write writes the workbook in xlsx format.
func (wb *Workbook) Write(w io.Writer) error {
	return wb.f.Write(w)
}
