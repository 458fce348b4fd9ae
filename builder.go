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
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultCurveSteps is the number of GLR samples in a hydraulic
	// performance curve.
	DefaultCurveSteps = 50

	// ParametricSteps is the number of samples in a parametric
	// performance curve.
	ParametricSteps = 21

	// minSweepGLR is the lowest upper end of the GLR sweep [Sm³/Sm³].
	minSweepGLR = 2000.
)

// SweepPoint is one sample of the gas-liquid ratio sweep.
type SweepPoint struct {
	TotalGLR           float64 // [Sm³/Sm³]
	InjectionGLR       float64 // lift gas per unit liquid [Sm³/Sm³]
	LiquidRate         float64 // [Sm³/d]
	OilRate            float64 // [Sm³/d]
	GasRate            float64 // injected gas [Sm³/d]
	BottomHolePressure float64 // [bar]
	Converged          bool
	Feasible           bool
}

// CurveBuilder builds hydraulic performance curves by sweeping the
// total gas-liquid ratio and solving a FlowModel at each step.
// The zero value uses the internal correlations and default step
// counts.
type CurveBuilder struct {
	Fluid Fluid

	// Steps is the number of GLR samples. Zero means DefaultCurveSteps.
	Steps int

	// Segments is the number of traverse segments. Zero means
	// DefaultSegments.
	Segments int
}

func (b CurveBuilder) steps() int {
	if b.Steps == 0 {
		return DefaultCurveSteps
	}
	return b.Steps
}

func (b CurveBuilder) segments() int {
	if b.Segments == 0 {
		return DefaultSegments
	}
	return b.Segments
}

// Build sweeps total GLR from the formation GOR to
// max(10 × GOR, 2000) and returns the resulting performance curve.
// Samples whose injected gas rate does not exceed that of an earlier
// sample are left out of the curve lookup but kept in the sweep.
func (b CurveBuilder) Build(w WellConfig) (*PerformanceCurve, error) {
	if b.steps() < 2 {
		return nil, fmt.Errorf("gaslift: curve sweep needs at least 2 steps, got %d", b.steps())
	}
	m, err := NewFlowModel(w, WithFluid(b.Fluid), WithSegments(b.segments()))
	if err != nil {
		return nil, err
	}
	glrs := floats.Span(make([]float64, b.steps()), w.FormationGOR, math.Max(10*w.FormationGOR, minSweepGLR))
	sweep := make([]SweepPoint, len(glrs))
	oil := make([]float64, len(glrs))
	for i, glr := range glrs {
		sol := m.Solve(glr)
		inj := glr - w.FormationGOR
		sweep[i] = SweepPoint{
			TotalGLR:           glr,
			InjectionGLR:       inj,
			LiquidRate:         sol.Rate,
			OilRate:            sol.Rate * (1 - w.WaterCut),
			GasRate:            sol.Rate * inj,
			BottomHolePressure: sol.BottomHolePressure,
			Converged:          sol.Converged,
			Feasible:           sol.Feasible,
		}
		oil[i] = sweep[i].OilRate
	}

	points := []CurvePoint{{GasRate: 0, OilRate: sweep[0].OilRate}}
	for _, s := range sweep[1:] {
		if s.GasRate > points[len(points)-1].GasRate {
			points = append(points, CurvePoint{GasRate: s.GasRate, OilRate: s.OilRate})
		}
	}
	c, err := NewPerformanceCurve(sweep[0].OilRate, points)
	if err != nil {
		return nil, fmt.Errorf("gaslift: building curve for well %q: %v", w.Name, err)
	}
	c.optimalGLR = sweep[floats.MaxIdx(oil)].TotalGLR
	c.sweep = sweep
	return c, nil
}
