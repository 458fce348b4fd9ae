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
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// ErrNoWells is returned when an optimizer is configured without wells.
var ErrNoWells = errors.New("gaslift: no wells to allocate gas to")

// DefaultTolerance is the relative convergence tolerance of the
// iterative allocation strategies.
const DefaultTolerance = 0.001

// Method identifies a gas allocation strategy.
type Method int

// The allocation methods.
const (
	// EqualSlope equalizes priority-weighted marginal response
	// across wells.
	EqualSlope Method = iota

	// Proportional shares gas by each well's uplift potential.
	Proportional

	// Sequential adds gas in small increments to the well with the
	// best marginal response.
	Sequential

	// Gradient moves gas from below-average to above-average
	// responders with a decaying step.
	Gradient
)

// Methods lists all allocation methods.
var Methods = []Method{EqualSlope, Proportional, Sequential, Gradient}

func (m Method) String() string {
	switch m {
	case EqualSlope:
		return "EqualSlope"
	case Proportional:
		return "Proportional"
	case Sequential:
		return "Sequential"
	case Gradient:
		return "Gradient"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod returns the method with the given case-insensitive name.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("gaslift: unknown allocation method %q", s)
}

// AllocationWell is a well taking part in a field allocation.
type AllocationWell struct {
	Name  string
	Curve Curve

	// MinGasRate and MaxGasRate bound the well's injection [Sm³/d].
	// A well with MaxGasRate <= 0 receives no gas; use math.Inf(1)
	// for an unconstrained well.
	MinGasRate, MaxGasRate float64

	// Priority weights the well's marginal response. Zero means 1.
	Priority float64

	// Disabled wells receive no gas.
	Disabled bool
}

// AllocationConstraints are the field-level limits of an allocation.
type AllocationConstraints struct {
	// AvailableGas is the lift gas supply [Sm³/d].
	AvailableGas float64

	// MaxPower is the compression power budget [kW]. Zero means
	// unlimited.
	MaxPower float64

	// Compressor is used to convert between gas rate and power.
	Compressor Compressor

	// Tolerance is the relative convergence tolerance. Zero means
	// DefaultTolerance.
	Tolerance float64
}

// Problem is the bounded allocation problem handed to a Strategy.
// All slices are indexed by well position.
type Problem struct {
	Curves   []Curve
	Min, Max []float64 // effective bounds; both zero for excluded wells
	Priority []float64
	Active   []bool // enabled with a positive upper bound

	// Gas is the effective available gas [Sm³/d].
	Gas       float64
	Tolerance float64
}

// Allocation is the raw output of a Strategy.
type Allocation struct {
	Rates      []float64
	Iterations int
	Converged  bool
}

// Strategy computes a gas allocation for a Problem.
type Strategy interface {
	Method() Method
	Allocate(p *Problem) Allocation
}

// StrategyFor returns the built-in strategy for m.
func StrategyFor(m Method) (Strategy, error) {
	switch m {
	case EqualSlope:
		return equalSlope{}, nil
	case Proportional:
		return proportional{}, nil
	case Sequential:
		return sequential{}, nil
	case Gradient:
		return gradient{}, nil
	default:
		return nil, fmt.Errorf("gaslift: unknown allocation method %v", m)
	}
}

// WellAllocation is the outcome of an allocation for one well.
type WellAllocation struct {
	Name    string
	Enabled bool

	GasRate          float64 // [Sm³/d]
	OilRate          float64 // [Sm³/d]
	NaturalFlowRate  float64 // [Sm³/d]
	IncrementalOil   float64 // [Sm³/d]
	MarginalResponse float64

	// GasEfficiency is incremental oil per unit gas; zero without gas.
	GasEfficiency float64
}

// AllocationResult is the outcome of a field allocation.
type AllocationResult struct {
	Method Method
	Wells  []WellAllocation

	TotalOil         float64
	TotalNatural     float64
	TotalIncremental float64
	TotalGas         float64

	// AvailableGas is the effective gas supply after the power limit.
	AvailableGas float64

	GasUtilization   float64 // allocated / available
	GasEfficiency    float64 // incremental oil / allocated gas
	CompressionPower float64 // [kW], isothermal

	Iterations int
	Converged  bool
}

// FieldOptimizer allocates lift gas across wells. It holds only its
// validated configuration, so Optimize may be called repeatedly and
// concurrently.
type FieldOptimizer struct {
	constraints AllocationConstraints
	wells       []AllocationWell
	strategy    Strategy
	powerLimit  float64
	available   float64

	// Log receives diagnostics about non-convergence.
	Log logrus.FieldLogger
}

// FieldOption configures a FieldOptimizer.
type FieldOption func(*FieldOptimizer) error

// UseMethod selects one of the built-in strategies. The default is
// EqualSlope.
func UseMethod(m Method) FieldOption {
	return func(f *FieldOptimizer) error {
		s, err := StrategyFor(m)
		if err != nil {
			return err
		}
		f.strategy = s
		return nil
	}
}

// UseStrategy sets a custom strategy.
func UseStrategy(s Strategy) FieldOption {
	return func(f *FieldOptimizer) error {
		if s == nil {
			return fmt.Errorf("gaslift: nil allocation strategy")
		}
		f.strategy = s
		return nil
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l logrus.FieldLogger) FieldOption {
	return func(f *FieldOptimizer) error {
		f.Log = l
		return nil
	}
}

// NewFieldOptimizer validates the configuration and returns an
// optimizer for it. The wells are copied.
func NewFieldOptimizer(c AllocationConstraints, wells []AllocationWell, opts ...FieldOption) (*FieldOptimizer, error) {
	if len(wells) == 0 {
		return nil, ErrNoWells
	}
	if c.AvailableGas < 0 || math.IsNaN(c.AvailableGas) {
		return nil, fmt.Errorf("gaslift: available gas must be >= 0, got %g", c.AvailableGas)
	}
	if c.MaxPower < 0 {
		return nil, fmt.Errorf("gaslift: maximum compression power must be >= 0, got %g", c.MaxPower)
	}
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if !(c.Tolerance > 0 && c.Tolerance < 1) {
		return nil, fmt.Errorf("gaslift: allocation tolerance must be within (0, 1), got %g", c.Tolerance)
	}
	if c.MaxPower > 0 || c.Compressor != (Compressor{}) {
		if err := c.Compressor.Validate(); err != nil {
			return nil, err
		}
	}
	f := &FieldOptimizer{
		constraints: c,
		wells:       make([]AllocationWell, len(wells)),
		strategy:    equalSlope{},
		Log:         logrus.StandardLogger(),
		powerLimit:  math.Inf(1),
	}
	for i, w := range wells {
		if w.Curve == nil {
			return nil, fmt.Errorf("gaslift: well %d (%q) has no performance curve", i, w.Name)
		}
		if w.MinGasRate < 0 || math.IsNaN(w.MinGasRate) || math.IsNaN(w.MaxGasRate) {
			return nil, fmt.Errorf("gaslift: well %q has invalid gas rate bounds [%g, %g]", w.Name, w.MinGasRate, w.MaxGasRate)
		}
		if w.Priority < 0 {
			return nil, fmt.Errorf("gaslift: well %q has negative priority %g", w.Name, w.Priority)
		}
		if w.Priority == 0 {
			w.Priority = 1
		}
		f.wells[i] = w
	}
	for _, o := range opts {
		if err := o(f); err != nil {
			return nil, err
		}
	}
	if c.MaxPower > 0 {
		f.powerLimit = c.Compressor.MaxRateForPower(c.MaxPower)
	}
	f.available = math.Min(c.AvailableGas, f.powerLimit)
	return f, nil
}

// EffectiveGas returns the allocatable gas [Sm³/d]: the smaller of the
// available gas and the gas the power budget can compress.
func (f *FieldOptimizer) EffectiveGas() float64 { return f.available }

// PowerLimitedGas returns the gas rate [Sm³/d] the power budget can
// compress, or +Inf without a budget.
func (f *FieldOptimizer) PowerLimitedGas() float64 { return f.powerLimit }

// Method returns the configured allocation method.
func (f *FieldOptimizer) Method() Method { return f.strategy.Method() }

// problem builds a fresh Problem for one run.
func (f *FieldOptimizer) problem() *Problem {
	n := len(f.wells)
	p := &Problem{
		Curves:    make([]Curve, n),
		Min:       make([]float64, n),
		Max:       make([]float64, n),
		Priority:  make([]float64, n),
		Active:    make([]bool, n),
		Gas:       f.available,
		Tolerance: f.constraints.Tolerance,
	}
	for i, w := range f.wells {
		p.Curves[i] = w.Curve
		p.Priority[i] = w.Priority
		hi := math.Min(w.MaxGasRate, f.available)
		if w.Disabled || !(hi > 0) {
			continue
		}
		p.Active[i] = true
		p.Max[i] = hi
		p.Min[i] = math.Min(w.MinGasRate, hi)
	}
	return p
}

// Optimize runs the configured strategy.
func (f *FieldOptimizer) Optimize() *AllocationResult {
	return f.OptimizeWith(f.strategy)
}

// OptimizeWith runs s against the optimizer's configuration.
func (f *FieldOptimizer) OptimizeWith(s Strategy) *AllocationResult {
	p := f.problem()
	a := s.Allocate(p)
	r := f.result(p, s.Method(), a)
	log := f.Log.WithFields(logrus.Fields{
		"method":     r.Method,
		"iterations": r.Iterations,
		"gas":        r.TotalGas,
		"available":  r.AvailableGas,
	})
	if r.Converged {
		log.Debug("gas allocation converged")
	} else {
		log.Warn("gas allocation did not converge; using best estimate")
	}
	return r
}

// Compare runs every built-in strategy and returns the results in
// the order of Methods.
func (f *FieldOptimizer) Compare() []*AllocationResult {
	o := make([]*AllocationResult, len(Methods))
	for i, m := range Methods {
		s, _ := StrategyFor(m)
		o[i] = f.OptimizeWith(s)
	}
	return o
}

func (f *FieldOptimizer) result(p *Problem, m Method, a Allocation) *AllocationResult {
	r := &AllocationResult{
		Method:       m,
		Wells:        make([]WellAllocation, len(f.wells)),
		AvailableGas: f.available,
		Iterations:   a.Iterations,
		Converged:    a.Converged,
	}
	gas := make([]float64, len(f.wells))
	for i, w := range f.wells {
		q := 0.0
		if p.Active[i] {
			q = a.Rates[i]
		}
		gas[i] = q
		wa := WellAllocation{
			Name:             w.Name,
			Enabled:          !w.Disabled,
			GasRate:          q,
			OilRate:          w.Curve.OilRate(q),
			NaturalFlowRate:  w.Curve.NaturalFlowRate(),
			MarginalResponse: w.Curve.MarginalResponse(q),
		}
		wa.IncrementalOil = wa.OilRate - wa.NaturalFlowRate
		if q > 0 {
			wa.GasEfficiency = wa.IncrementalOil / q
		}
		r.Wells[i] = wa
		r.TotalOil += wa.OilRate
		r.TotalNatural += wa.NaturalFlowRate
		r.TotalIncremental += wa.IncrementalOil
	}
	r.TotalGas = floats.Sum(gas)
	if r.AvailableGas > 0 {
		r.GasUtilization = r.TotalGas / r.AvailableGas
	}
	if r.TotalGas > 0 {
		r.GasEfficiency = r.TotalIncremental / r.TotalGas
	}
	if f.constraints.Compressor != (Compressor{}) {
		r.CompressionPower = f.constraints.Compressor.IsothermalPower(r.TotalGas)
	}
	return r
}

// distribute shares total among wells in proportion to weights while
// keeping each share within [lo, hi]. Shares that fall outside their
// bounds are locked at the bound and the remainder is shared again.
func distribute(weights, lo, hi []float64, total float64) []float64 {
	n := len(weights)
	out := make([]float64, n)
	sumLo, sumHi := floats.Sum(lo), floats.Sum(hi)
	switch {
	case total <= 0:
		return out
	case total <= sumLo:
		copy(out, lo)
		floats.Scale(total/sumLo, out)
		return out
	case total >= sumHi:
		copy(out, hi)
		return out
	}

	locked := make([]bool, n)
	for i := range locked {
		if hi[i] <= lo[i] {
			out[i], locked[i] = hi[i], true
		}
	}
	for iter := 0; iter < n; iter++ {
		remaining, wsum, free := total, 0.0, 0
		for i := range out {
			if locked[i] {
				remaining -= out[i]
			} else {
				wsum += math.Max(weights[i], 0)
				free++
			}
		}
		if free == 0 {
			break
		}
		for i := range out {
			if locked[i] {
				continue
			}
			if wsum > 0 {
				out[i] = remaining * math.Max(weights[i], 0) / wsum
			} else {
				out[i] = remaining / float64(free)
			}
		}
		// Lock shares below their minimum first; shares above their
		// maximum are only locked once no minimum is violated.
		changed := false
		for i := range out {
			if !locked[i] && out[i] < lo[i] {
				out[i], locked[i], changed = lo[i], true, true
			}
		}
		if changed {
			continue
		}
		for i := range out {
			if !locked[i] && out[i] > hi[i] {
				out[i], locked[i], changed = hi[i], true, true
			}
		}
		if !changed {
			break
		}
	}

	// Remove any residual mismatch using the slack to each bound.
	diff := total - floats.Sum(out)
	slack := make([]float64, n)
	if diff > 0 {
		floats.SubTo(slack, hi, out)
	} else {
		floats.SubTo(slack, out, lo)
	}
	if s := floats.Sum(slack); s > 0 && diff != 0 {
		floats.AddScaled(out, diff/s, slack)
	}
	return out
}
