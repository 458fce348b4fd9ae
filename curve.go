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
	"sort"

	"gonum.org/v1/gonum/floats"
)

// MarginalPerturbation is the gas-rate step [Sm³/d] used to
// differentiate performance curves.
const MarginalPerturbation = 100.0

// Curve is the view of a well's gas-lift performance that the
// allocator works with.
type Curve interface {
	// OilRate returns the oil rate [Sm³/d] at the given gas
	// injection rate [Sm³/d].
	OilRate(gasRate float64) float64

	// MarginalResponse returns the derivative of oil rate with
	// respect to gas injection rate.
	MarginalResponse(gasRate float64) float64

	// NaturalFlowRate returns the oil rate without lift gas.
	NaturalFlowRate() float64

	// MaxOilRate returns the highest achievable oil rate.
	MaxOilRate() float64
}

// CurvePoint is a single sample of a performance curve.
type CurvePoint struct {
	GasRate float64 // injected gas [Sm³/d]
	OilRate float64 // [Sm³/d]
}

// PerformanceCurve is an immutable sampled relation between gas
// injection rate and oil rate. Lookups interpolate linearly between
// samples and clamp to the end samples outside the sampled range.
type PerformanceCurve struct {
	natural    float64
	gas, oil   []float64
	optimalGLR float64
	sweep      []SweepPoint
}

// NewPerformanceCurve returns a curve with the given natural flow rate
// and samples. Gas rates must be strictly increasing.
func NewPerformanceCurve(natural float64, points []CurvePoint) (*PerformanceCurve, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("gaslift: performance curve needs at least one point")
	}
	c := &PerformanceCurve{
		natural: natural,
		gas:     make([]float64, len(points)),
		oil:     make([]float64, len(points)),
	}
	for i, p := range points {
		if math.IsNaN(p.GasRate) || math.IsNaN(p.OilRate) || math.IsInf(p.GasRate, 0) || math.IsInf(p.OilRate, 0) {
			return nil, fmt.Errorf("gaslift: performance curve point %d (%g, %g) is not finite", i, p.GasRate, p.OilRate)
		}
		if i > 0 && p.GasRate <= points[i-1].GasRate {
			return nil, fmt.Errorf("gaslift: performance curve gas rates must be strictly increasing; point %d has %g after %g",
				i, p.GasRate, points[i-1].GasRate)
		}
		c.gas[i], c.oil[i] = p.GasRate, p.OilRate
	}
	return c, nil
}

// OilRate implements Curve.
func (c *PerformanceCurve) OilRate(gasRate float64) float64 {
	n := len(c.gas)
	if gasRate <= c.gas[0] {
		return c.oil[0]
	}
	if gasRate >= c.gas[n-1] {
		return c.oil[n-1]
	}
	i := sort.SearchFloat64s(c.gas, gasRate)
	if c.gas[i] == gasRate {
		return c.oil[i]
	}
	frac := (gasRate - c.gas[i-1]) / (c.gas[i] - c.gas[i-1])
	return c.oil[i-1] + frac*(c.oil[i]-c.oil[i-1])
}

// MarginalResponse implements Curve with a forward difference of
// MarginalPerturbation.
func (c *PerformanceCurve) MarginalResponse(gasRate float64) float64 {
	return (c.OilRate(gasRate+MarginalPerturbation) - c.OilRate(gasRate)) / MarginalPerturbation
}

// NaturalFlowRate implements Curve.
func (c *PerformanceCurve) NaturalFlowRate() float64 { return c.natural }

// MaxOilRate implements Curve. It is the highest sampled oil rate.
func (c *PerformanceCurve) MaxOilRate() float64 { return floats.Max(c.oil) }

// OptimalGasRate returns the gas injection rate of the sample with
// the highest oil rate.
func (c *PerformanceCurve) OptimalGasRate() float64 { return c.gas[floats.MaxIdx(c.oil)] }

// MaxGasRate returns the highest sampled gas injection rate.
func (c *PerformanceCurve) MaxGasRate() float64 { return c.gas[len(c.gas)-1] }

// OptimalGLR returns the total gas-liquid ratio at the highest oil
// rate. It is zero for curves that were not built from a hydraulic
// sweep.
func (c *PerformanceCurve) OptimalGLR() float64 { return c.optimalGLR }

// Points returns a copy of the curve samples.
func (c *PerformanceCurve) Points() []CurvePoint {
	o := make([]CurvePoint, len(c.gas))
	for i := range c.gas {
		o[i] = CurvePoint{GasRate: c.gas[i], OilRate: c.oil[i]}
	}
	return o
}

// Sweep returns a copy of the hydraulic sweep the curve was built
// from, or nil for curves built directly from points.
func (c *PerformanceCurve) Sweep() []SweepPoint {
	if c.sweep == nil {
		return nil
	}
	o := make([]SweepPoint, len(c.sweep))
	copy(o, c.sweep)
	return o
}

// Shape of the parametric curve: tanh(a x) exp(-b x), where x is gas
// rate over the optimal injection rate. b places the maximum at x = 1.
var (
	parametricA = 1.5
	parametricB = 2 * parametricA / math.Sinh(2*parametricA)
)

// parametricSpan is the extent of the parametric sweep as a multiple
// of the optimal injection rate.
const parametricSpan = 2.0

func parametricShape(x float64) float64 {
	return math.Tanh(parametricA*x) * math.Exp(-parametricB*x)
}

// NewParametricCurve builds a performance curve from a natural flow
// rate, a maximum oil rate and the injection rate [Sm³/d] at which the
// maximum occurs, without a hydraulic solve. The curve rises along a
// logistic efficiency and falls off along an exponential decline.
func NewParametricCurve(natural, maxRate, optimalInjection float64) (*PerformanceCurve, error) {
	if natural < 0 || maxRate < natural {
		return nil, fmt.Errorf("gaslift: parametric curve needs 0 <= natural rate (%g) <= max rate (%g)", natural, maxRate)
	}
	if !(optimalInjection > 0) {
		return nil, fmt.Errorf("gaslift: parametric curve optimal injection must be > 0, got %g", optimalInjection)
	}
	gas := floats.Span(make([]float64, ParametricSteps), 0, parametricSpan*optimalInjection)
	peak := parametricShape(1)
	points := make([]CurvePoint, len(gas))
	for i, q := range gas {
		points[i] = CurvePoint{
			GasRate: q,
			OilRate: natural + (maxRate-natural)*parametricShape(q/optimalInjection)/peak,
		}
	}
	return NewPerformanceCurve(natural, points)
}
