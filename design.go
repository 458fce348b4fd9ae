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

package gaslift

import "fmt"

// DesignParameters holds the surface facilities used in a single-well
// design.
type DesignParameters struct {
	InjectionPressure float64 // surface injection pressure [bar]
	KillFluidDensity  float64 // [kg/m³]
	MaxValves         int
	Compressor        Compressor
}

// WellDesign is the result of a single-well gas-lift design.
type WellDesign struct {
	Well  WellConfig
	Curve *PerformanceCurve

	NaturalFlowRate float64 // oil [Sm³/d]
	MaxOilRate      float64 // [Sm³/d]
	OptimalGLR      float64 // [Sm³/Sm³]
	OptimalGasRate  float64 // injected gas at the optimum [Sm³/d]

	// ProductionGradient is the average flowing gradient at the
	// optimum [bar/m].
	ProductionGradient float64

	Valves []ValvePosition

	// CompressionPower is the polytropic power to supply the optimal
	// gas rate [kW].
	CompressionPower float64
}

// Design builds the performance curve of w, places unloading valves
// for the optimal operating point and sizes the compression.
func (b CurveBuilder) Design(w WellConfig, p DesignParameters) (*WellDesign, error) {
	if err := p.Compressor.Validate(); err != nil {
		return nil, err
	}
	c, err := b.Build(w)
	if err != nil {
		return nil, err
	}
	m, err := NewFlowModel(w, WithFluid(b.Fluid), WithSegments(b.segments()))
	if err != nil {
		return nil, err
	}
	d := &WellDesign{
		Well:            w,
		Curve:           c,
		NaturalFlowRate: c.NaturalFlowRate(),
		MaxOilRate:      c.MaxOilRate(),
		OptimalGLR:      c.OptimalGLR(),
		OptimalGasRate:  c.OptimalGasRate(),
	}
	sol := m.Solve(d.OptimalGLR)
	d.ProductionGradient = m.FlowingGradient(sol.Rate, d.OptimalGLR)

	d.Valves, err = ValveDesign{
		WellheadPressure:   w.WellheadPressure,
		Depth:              w.Depth,
		InjectionPressure:  p.InjectionPressure,
		KillFluidDensity:   p.KillFluidDensity,
		ProductionGradient: d.ProductionGradient,
		MaxValves:          p.MaxValves,
	}.Valves()
	if err != nil {
		return nil, fmt.Errorf("gaslift: designing valves for well %q: %v", w.Name, err)
	}
	d.CompressionPower = p.Compressor.PolytropicPower(d.OptimalGasRate)
	return d, nil
}
