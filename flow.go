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
)

const (
	// DefaultSegments is the number of depth segments in the
	// vertical-lift pressure traverse.
	DefaultSegments = 20

	maxBisection = 100

	// bisectionTolerance is the allowed mismatch between inflow and
	// outflow bottom-hole pressure, as a fraction of reservoir pressure.
	bisectionTolerance = 0.01
)

// FlowModel couples a linear inflow performance relation with a
// segmented vertical-lift pressure traverse for a single well.
// A FlowModel is safe for concurrent use.
type FlowModel struct {
	well     WellConfig
	fluid    Fluid
	segments int
}

// FlowOption configures a FlowModel.
type FlowOption func(*FlowModel) error

// WithFluid sets the fluid property provider used in the traverse.
func WithFluid(f Fluid) FlowOption {
	return func(m *FlowModel) error {
		m.fluid = f
		return nil
	}
}

// WithSegments sets the number of traverse segments.
func WithSegments(n int) FlowOption {
	return func(m *FlowModel) error {
		if n < 1 {
			return fmt.Errorf("gaslift: number of traverse segments must be >= 1, got %d", n)
		}
		m.segments = n
		return nil
	}
}

// NewFlowModel validates w and returns a flow model for it.
func NewFlowModel(w WellConfig, opts ...FlowOption) (*FlowModel, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	m := &FlowModel{well: w, segments: DefaultSegments}
	for _, o := range opts {
		if err := o(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Well returns a copy of the well configuration.
func (m *FlowModel) Well() WellConfig { return m.well }

// InflowPressure returns the bottom-hole flowing pressure [bar] at
// which the reservoir delivers the given liquid rate [Sm³/d].
func (m *FlowModel) InflowPressure(rate float64) float64 {
	return m.well.ReservoirPressure - rate/m.well.ProductivityIndex
}

// TraversePoint is the flowing state at one depth in the tubing.
type TraversePoint struct {
	Depth       float64 // [m]
	Pressure    float64 // [bar]
	Temperature float64 // [K]
	Holdup      float64
	Density     float64 // mixture density [kg/m³]
	Velocity    float64 // in-situ mixture velocity [m/s]
	Gradient    float64 // [bar/m]
}

// Traverse returns the flowing state at the top of each segment and
// at the bottom of the well for the given liquid rate [Sm³/d] and
// total gas-liquid ratio [Sm³/Sm³].
func (m *FlowModel) Traverse(rate, glr float64) []TraversePoint {
	points := make([]TraversePoint, 0, m.segments+1)
	bottom := m.walk(rate, glr, func(p TraversePoint) {
		points = append(points, p)
	})
	last := m.point(m.well.Depth, bottom, m.well.ReservoirTemperature, rate, glr)
	return append(points, last)
}

// OutflowPressure returns the bottom-hole pressure [bar] required to
// lift the given liquid rate at the given total gas-liquid ratio.
func (m *FlowModel) OutflowPressure(rate, glr float64) float64 {
	return m.walk(rate, glr, nil)
}

// MinimumBottomHolePressure returns the bottom-hole pressure needed to
// hold a static column at the given gas-liquid ratio: wellhead
// pressure plus the hydrostatic head.
func (m *FlowModel) MinimumBottomHolePressure(glr float64) float64 {
	return m.OutflowPressure(0, glr)
}

// FlowingGradient returns the average pressure gradient [bar/m] in the
// tubing at the given rate and gas-liquid ratio.
func (m *FlowModel) FlowingGradient(rate, glr float64) float64 {
	return (m.OutflowPressure(rate, glr) - m.well.WellheadPressure) / m.well.Depth
}

// walk integrates the pressure traverse from the wellhead down,
// calling visit (if not nil) at the top of each segment. It returns
// the pressure at the bottom of the well.
func (m *FlowModel) walk(rate, glr float64, visit func(TraversePoint)) float64 {
	dz := m.well.Depth / float64(m.segments)
	p := m.well.WellheadPressure
	for i := 0; i < m.segments; i++ {
		top := float64(i) * dz
		t := m.well.temperatureAt(top + dz/2)
		pt := m.point(top, p, t, rate, glr)
		if visit != nil {
			visit(pt)
		}
		p += pt.Gradient * dz
	}
	return p
}

func (m *FlowModel) point(depth, pressure, temperature, rate, glr float64) TraversePoint {
	w := &m.well
	s := m.fluid.state(pressure, temperature, glr, w)
	d := w.TubingDiameter
	area := math.Pi * d * d / 4
	ql := math.Max(rate, 0) / secondsPerDay
	qg := ql * s.insituGLR
	vm := (ql + qg) / area

	var friction float64 // [Pa/m]
	if vm > 0 {
		rhoNS := (ql*s.rhoL + qg*s.rhoG) / (ql + qg)
		mu := s.holdup*s.muL + (1-s.holdup)*s.muG
		re := rhoNS * vm * d / mu
		f := FrictionFactor(re, w.TubingRoughness/d)
		friction = f * rhoNS * vm * vm / (2 * d)
	}
	return TraversePoint{
		Depth:       depth,
		Pressure:    pressure,
		Temperature: temperature,
		Holdup:      s.holdup,
		Density:     s.rhoM,
		Velocity:    vm,
		Gradient:    (s.rhoM*g + friction) / barToPa,
	}
}

// FlowSolution is the operating point where inflow and outflow
// bottom-hole pressures agree.
type FlowSolution struct {
	GLR                float64 // total gas-liquid ratio [Sm³/Sm³]
	Rate               float64 // liquid rate [Sm³/d]
	BottomHolePressure float64 // [bar]
	Iterations         int

	// Converged is false if the bisection reached its iteration
	// limit; Rate is then the last midpoint.
	Converged bool

	// Feasible is false if the well cannot flow at this gas-liquid
	// ratio because the static column exceeds reservoir pressure.
	Feasible bool
}

// Solve finds the liquid rate at which the reservoir inflow and the
// tubing outflow are in balance for the given total gas-liquid ratio.
func (m *FlowModel) Solve(glr float64) FlowSolution {
	w := &m.well
	sol := FlowSolution{GLR: glr}
	if minBHP := m.MinimumBottomHolePressure(glr); minBHP >= w.ReservoirPressure {
		sol.BottomHolePressure = minBHP
		sol.Converged = true
		return sol
	}
	sol.Feasible = true
	tol := bisectionTolerance * w.ReservoirPressure
	inside := func(p float64) bool {
		return p > w.WellheadPressure && p < w.ReservoirPressure
	}
	lo, hi := 0.0, w.ProductivityIndex*w.ReservoirPressure
	for i := 0; i < maxBisection; i++ {
		rate := (lo + hi) / 2
		pIn := m.InflowPressure(rate)
		pOut := m.OutflowPressure(rate, glr)
		sol.Rate, sol.BottomHolePressure, sol.Iterations = rate, pOut, i+1
		if math.Abs(pIn-pOut) < tol && inside(pIn) && inside(pOut) {
			sol.Converged = true
			return sol
		}
		if pIn > pOut {
			lo = rate
		} else {
			hi = rate
		}
	}
	return sol
}

// NaturalFlowRate returns the liquid rate [Sm³/d] without lift gas.
// It is zero when the static column at the formation GOR exceeds
// reservoir pressure.
func (m *FlowModel) NaturalFlowRate() float64 {
	return m.Solve(m.well.FormationGOR).Rate
}
