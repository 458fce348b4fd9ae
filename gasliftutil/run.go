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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/liftmodel/gaslift"
	"github.com/sirupsen/logrus"
)

// Outputs are the optional files a command writes. OutputFile is an
// xlsx workbook and PlotFile is an image whose format is given by its
// extension. Either may be a blob storage location.
type Outputs struct {
	OutputFile, PlotFile string
}

func (o Outputs) write(ctx context.Context, log logrus.FieldLogger, wb *Workbook, plot func(io.Writer, string) error) error {
	u := uploader{log: log}
	if o.OutputFile != "" && wb != nil {
		if err := writeFile(u.maybeUpload(o.OutputFile), wb.Write); err != nil {
			return err
		}
		log.WithField("file", o.OutputFile).Info("wrote workbook")
	}
	if o.PlotFile != "" && plot != nil {
		format := strings.TrimPrefix(filepath.Ext(o.PlotFile), ".")
		err := writeFile(u.maybeUpload(o.PlotFile), func(w io.Writer) error { return plot(w, format) })
		if err != nil {
			return err
		}
		log.WithField("file", o.PlotFile).Info("wrote plot")
	}
	return u.upload(ctx)
}

func writeFile(path string, write func(io.Writer) error) error {
	if path == "" {
		return fmt.Errorf("gasliftutil: preparing output location failed")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gasliftutil: creating output file: %v", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("gasliftutil: writing %s: %v", path, err)
	}
	return f.Close()
}

// Curve builds and prints the performance curve of one well.
func Curve(ctx context.Context, w io.Writer, log logrus.FieldLogger, cfg gaslift.WellConfig, b gaslift.CurveBuilder, out Outputs) error {
	c, err := b.Build(cfg)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"well":    cfg.Name,
		"natural": c.NaturalFlowRate(),
		"max":     c.MaxOilRate(),
	}).Info("built performance curve")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Well %s\n", cfg.Name)
	fmt.Fprintf(tw, "Natural flow (oil)\t%.2f\tSm³/d\n", c.NaturalFlowRate())
	fmt.Fprintf(tw, "Maximum oil\t%.2f\tSm³/d\n", c.MaxOilRate())
	fmt.Fprintf(tw, "Optimal total GLR\t%.2f\tSm³/Sm³\n", c.OptimalGLR())
	fmt.Fprintf(tw, "Optimal injection\t%.2f\tSm³/d\n\n", c.OptimalGasRate())
	fmt.Fprintln(tw, "GLR\tInjection GLR\tLiquid\tOil\tGas\tBHP\tConverged\tFeasible\t")
	for _, p := range c.Sweep() {
		fmt.Fprintf(tw, "%.1f\t%.1f\t%.2f\t%.2f\t%.1f\t%.2f\t%v\t%v\t\n", p.TotalGLR, p.InjectionGLR,
			p.LiquidRate, p.OilRate, p.GasRate, p.BottomHolePressure, p.Converged, p.Feasible)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	wb := NewWorkbook()
	if err := wb.AddCurve(sheetName(cfg.Name), c); err != nil {
		return err
	}
	return out.write(ctx, log, wb, func(pw io.Writer, format string) error {
		return gaslift.PlotCurves(pw, format, []string{cfg.Name}, []*gaslift.PerformanceCurve{c}, nil)
	})
}

// Design runs and prints a single-well gas-lift design.
func Design(ctx context.Context, w io.Writer, log logrus.FieldLogger, cfg gaslift.WellConfig, b gaslift.CurveBuilder, p gaslift.DesignParameters, out Outputs) error {
	d, err := b.Design(cfg, p)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"well":   cfg.Name,
		"valves": len(d.Valves),
	}).Info("designed well")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Well %s\n", cfg.Name)
	fmt.Fprintf(tw, "Natural flow (oil)\t%.2f\tSm³/d\n", d.NaturalFlowRate)
	fmt.Fprintf(tw, "Maximum oil\t%.2f\tSm³/d\n", d.MaxOilRate)
	fmt.Fprintf(tw, "Optimal total GLR\t%.2f\tSm³/Sm³\n", d.OptimalGLR)
	fmt.Fprintf(tw, "Optimal injection\t%.2f\tSm³/d\n", d.OptimalGasRate)
	fmt.Fprintf(tw, "Production gradient\t%.5f\tbar/m\n", d.ProductionGradient)
	fmt.Fprintf(tw, "Compression power\t%.2f\tkW\n\n", d.CompressionPower)
	fmt.Fprintln(tw, "Valve\tDepth (m)\tOpening (bar)\tClosing (bar)\tOperating\t")
	for _, v := range d.Valves {
		fmt.Fprintf(tw, "%d\t%.1f\t%.2f\t%.2f\t%v\t\n", v.Number, v.Depth, v.OpeningPressure, v.ClosingPressure, v.OperatingValve)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	wb := NewWorkbook()
	if err := wb.AddCurve("Curve", d.Curve); err != nil {
		return err
	}
	if err := wb.AddValves("Valves", d.Valves); err != nil {
		return err
	}
	return out.write(ctx, log, wb, func(pw io.Writer, format string) error {
		return gaslift.PlotCurves(pw, format, []string{cfg.Name}, []*gaslift.PerformanceCurve{d.Curve}, nil)
	})
}

// Allocate distributes lift gas across the wells of a field with one
// method and prints the result. columns holds optional report column
// expressions.
func Allocate(ctx context.Context, w io.Writer, log logrus.FieldLogger, f *Field, b gaslift.CurveBuilder,
	c gaslift.AllocationConstraints, m gaslift.Method, columns map[string]string, out Outputs) error {
	opt, wells, err := optimizer(ctx, log, f, b, c, gaslift.UseMethod(m))
	if err != nil {
		return err
	}
	var rep *gaslift.Reporter
	if len(columns) > 0 {
		if rep, err = gaslift.NewReporter(columns, nil); err != nil {
			return err
		}
	}
	r := opt.Optimize()
	if err := printAllocation(w, r, rep); err != nil {
		return err
	}

	wb := NewWorkbook()
	if err := wb.AddAllocation("Allocation", r, rep); err != nil {
		return err
	}
	if err := wb.AddSummary("Summary", []*gaslift.AllocationResult{r}); err != nil {
		return err
	}
	names, pcs := curves(wells)
	for i, pc := range pcs {
		if err := wb.AddCurve(sheetName(fmt.Sprintf("%d %s", i+1, names[i])), pc); err != nil {
			return err
		}
	}
	return out.write(ctx, log, wb, func(pw io.Writer, format string) error {
		return gaslift.PlotCurves(pw, format, names, pcs, r)
	})
}

// Compare runs every allocation method on a field and prints a
// summary of each.
func Compare(ctx context.Context, w io.Writer, log logrus.FieldLogger, f *Field, b gaslift.CurveBuilder,
	c gaslift.AllocationConstraints, out Outputs) error {
	opt, _, err := optimizer(ctx, log, f, b, c)
	if err != nil {
		return err
	}
	results := opt.Compare()

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Method\tOil\tIncremental\tGas\tUtilization\tEfficiency\tPower (kW)\tIterations\tConverged\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%v\t%.2f\t%.2f\t%.1f\t%.4f\t%.6f\t%.1f\t%d\t%v\t\n", r.Method, r.TotalOil, r.TotalIncremental,
			r.TotalGas, r.GasUtilization, r.GasEfficiency, r.CompressionPower, r.Iterations, r.Converged)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	wb := NewWorkbook()
	if err := wb.AddSummary("Summary", results); err != nil {
		return err
	}
	for _, r := range results {
		if err := wb.AddAllocation(r.Method.String(), r, nil); err != nil {
			return err
		}
	}
	return out.write(ctx, log, wb, nil)
}

func optimizer(ctx context.Context, log logrus.FieldLogger, f *Field, b gaslift.CurveBuilder,
	c gaslift.AllocationConstraints, opts ...gaslift.FieldOption) (*gaslift.FieldOptimizer, []gaslift.AllocationWell, error) {
	cache := gaslift.NewCurveCache(b)
	cache.Log = log
	wells, err := f.AllocationWells(ctx, cache)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, gaslift.WithLogger(log))
	opt, err := gaslift.NewFieldOptimizer(c, wells, opts...)
	if err != nil {
		return nil, nil, err
	}
	if opt.EffectiveGas() < c.AvailableGas {
		log.WithFields(logrus.Fields{
			"available": c.AvailableGas,
			"power":     c.MaxPower,
			"limit":     opt.PowerLimitedGas(),
		}).Info("gas supply limited by compression power")
	}
	return opt, wells, nil
}

func printAllocation(w io.Writer, r *gaslift.AllocationResult, rep *gaslift.Reporter) error {
	var extra [][]float64
	var cols []string
	if rep != nil {
		var err error
		if extra, err = rep.Evaluate(r); err != nil {
			return err
		}
		cols = rep.Columns()
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Well\tEnabled\tGas\tOil\tNatural\tIncremental\tMarginal\tEfficiency\t")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)
	for i, wa := range r.Wells {
		fmt.Fprintf(tw, "%s\t%v\t%.1f\t%.2f\t%.2f\t%.2f\t%.6f\t%.6f\t", wa.Name, wa.Enabled, wa.GasRate, wa.OilRate,
			wa.NaturalFlowRate, wa.IncrementalOil, wa.MarginalResponse, wa.GasEfficiency)
		if extra != nil {
			for _, x := range extra[i] {
				fmt.Fprintf(tw, "%.4g\t", x)
			}
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintf(tw, "Total\t\t%.1f\t%.2f\t%.2f\t%.2f\t\t%.6f\t\n", r.TotalGas, r.TotalOil, r.TotalNatural,
		r.TotalIncremental, r.GasEfficiency)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nMethod %v: %d iterations, converged=%v\n", r.Method, r.Iterations, r.Converged)
	fmt.Fprintf(w, "Gas utilization %.4f of %.1f Sm³/d; compression power %.1f kW\n",
		r.GasUtilization, r.AvailableGas, r.CompressionPower)
	return nil
}

// sheetName shortens s to the 31 characters allowed for an xlsx
// sheet name.
func sheetName(s string) string {
	if s == "" {
		s = "Curve"
	}
	if len(s) > 31 {
		s = s[:31]
	}
	return s
}
