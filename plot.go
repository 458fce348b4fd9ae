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

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Figure size for curve plots.
const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// PlotCurves draws the performance curves of the named wells and,
// if res is not nil, marks each well's allocated operating point.
// format is an image format understood by gonum/plot, such as "png"
// or "svg".
func PlotCurves(w io.Writer, format string, names []string, curves []*PerformanceCurve, res *AllocationResult) error {
	if len(names) != len(curves) {
		return fmt.Errorf("gaslift: plotting %d names for %d curves", len(names), len(curves))
	}
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("gaslift: creating plot: %v", err)
	}
	p.Title.Text = "Gas-lift performance"
	p.X.Label.Text = "Injection gas (Sm³/d)"
	p.Y.Label.Text = "Oil rate (Sm³/d)"

	var lines []interface{}
	for i, c := range curves {
		pts := c.Points()
		xy := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xy[j].X = pt.GasRate
			xy[j].Y = pt.OilRate
		}
		lines = append(lines, names[i], xy)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return fmt.Errorf("gaslift: plotting curves: %v", err)
	}

	var ops plotter.XYs
	if res != nil {
		for _, wa := range res.Wells {
			if wa.Enabled {
				ops = append(ops, struct{ X, Y float64 }{X: wa.GasRate, Y: wa.OilRate})
			}
		}
	}
	if len(ops) > 0 {
		s, err := plotter.NewScatter(ops)
		if err != nil {
			return fmt.Errorf("gaslift: plotting operating points: %v", err)
		}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add(res.Method.String(), s)
	}
	p.Y.Min = 0

	wt, err := p.WriterTo(plotWidth, plotHeight, format)
	if err != nil {
		return fmt.Errorf("gaslift: rendering plot: %v", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
