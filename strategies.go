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
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	maxSlopeIterations = 100
	maxRateIterations  = 30

	// slopeFallbackError is the largest relative gas mismatch at which
	// the best equal-slope candidate is still accepted as a result.
	slopeFallbackError = 0.1

	// sequentialIncrement is the gas step of the sequential method as
	// a fraction of the available gas.
	sequentialIncrement = 0.01

	// sequentialThreshold is the smallest marginal response that still
	// earns a sequential increment.
	sequentialThreshold = 0.001

	gradientIterations = 100
	gradientStep       = 0.01
	gradientDecay      = 0.99
)

// weightedResponse returns the priority-weighted marginal response of
// well i at gas rate q.
func (p *Problem) weightedResponse(i int, q float64) float64 {
	return p.Priority[i] * p.Curves[i].MarginalResponse(q)
}

func (p *Problem) minRates() []float64 {
	o := make([]float64, len(p.Min))
	copy(o, p.Min)
	return o
}

// capToGas scales rates down if they exceed the available gas.
func (p *Problem) capToGas(rates []float64) {
	if total := floats.Sum(rates); total > p.Gas && total > 0 {
		floats.Scale(p.Gas/total, rates)
	}
}

type equalSlope struct{}

func (equalSlope) Method() Method { return EqualSlope }

// rateAtSlope returns the gas rate within well i's bounds at which
// its priority-weighted marginal response equals lambda.
func (p *Problem) rateAtSlope(i int, lambda float64) float64 {
	if !p.Active[i] {
		return 0
	}
	lo, hi := p.Min[i], p.Max[i]
	if p.weightedResponse(i, lo) <= lambda {
		return lo
	}
	if p.weightedResponse(i, hi) >= lambda {
		return hi
	}
	for k := 0; k < maxRateIterations; k++ {
		mid := (lo + hi) / 2
		if p.weightedResponse(i, mid) > lambda {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// Allocate searches for the common marginal response at which the
// wells together take up all available gas. If the gas is not
// binding, every well runs at the point where its response reaches
// zero. If the allocation still exceeds the available gas it is
// scaled down proportionally, which can break the equal-response
// condition.
func (equalSlope) Allocate(p *Problem) Allocation {
	n := len(p.Curves)
	rates := make([]float64, n)
	fill := func(lambda float64) float64 {
		for i := range rates {
			rates[i] = p.rateAtSlope(i, lambda)
		}
		return floats.Sum(rates)
	}

	var maxSlope float64
	for i := range p.Curves {
		if p.Active[i] {
			maxSlope = math.Max(maxSlope, p.weightedResponse(i, p.Min[i]))
		}
	}
	if p.Gas <= 0 || maxSlope <= 0 {
		rates = p.minRates()
		p.capToGas(rates)
		return Allocation{Rates: rates, Converged: true}
	}
	if fill(0) <= p.Gas {
		return Allocation{Rates: rates, Converged: true}
	}

	best := make([]float64, n)
	bestErr := math.Inf(1)
	lo, hi := 0.0, maxSlope
	a := Allocation{}
	for a.Iterations < maxSlopeIterations {
		a.Iterations++
		lambda := (lo + hi) / 2
		total := fill(lambda)
		relErr := math.Abs(total-p.Gas) / p.Gas
		if relErr < bestErr {
			bestErr = relErr
			copy(best, rates)
		}
		if relErr < p.Tolerance {
			a.Converged = true
			break
		}
		if total > p.Gas {
			lo = lambda
		} else {
			hi = lambda
		}
	}
	if !a.Converged {
		// Fall back to the closest candidate seen. It is reported as
		// converged if it is within slopeFallbackError.
		copy(rates, best)
		a.Converged = bestErr < slopeFallbackError
	}
	p.capToGas(rates)
	a.Rates = rates
	return a
}

type proportional struct{}

func (proportional) Method() Method { return Proportional }

// Allocate shares gas in proportion to each well's priority-weighted
// uplift potential (maximum minus natural oil rate).
func (proportional) Allocate(p *Problem) Allocation {
	weights := make([]float64, len(p.Curves))
	for i, c := range p.Curves {
		if p.Active[i] {
			weights[i] = math.Max(c.MaxOilRate()-c.NaturalFlowRate(), 0) * p.Priority[i]
		}
	}
	if floats.Sum(weights) <= 0 {
		for i := range weights {
			if p.Active[i] {
				weights[i] = 1
			}
		}
	}
	return Allocation{
		Rates:      distribute(weights, p.Min, p.Max, p.Gas),
		Iterations: 1,
		Converged:  true,
	}
}

type sequential struct{}

func (sequential) Method() Method { return Sequential }

// Allocate starts each well at its minimum rate and hands out gas in
// fixed increments to the well with the highest priority-weighted
// marginal response until the gas runs out or no well responds.
func (sequential) Allocate(p *Problem) Allocation {
	rates := p.minRates()
	if floats.Sum(rates) >= p.Gas {
		p.capToGas(rates)
		return Allocation{Rates: rates, Converged: true}
	}
	remaining := p.Gas - floats.Sum(rates)
	inc := sequentialIncrement * p.Gas
	maxSteps := int(1/sequentialIncrement) + len(rates) + 1
	a := Allocation{Converged: true}
	for remaining > 1e-9*p.Gas && a.Iterations < maxSteps {
		pick, bestResponse := -1, sequentialThreshold
		for i, q := range rates {
			if !p.Active[i] || q >= p.Max[i] {
				continue
			}
			if r := p.weightedResponse(i, q); r > bestResponse {
				pick, bestResponse = i, r
			}
		}
		if pick < 0 {
			break
		}
		step := math.Min(math.Min(inc, remaining), p.Max[pick]-rates[pick])
		rates[pick] += step
		remaining -= step
		a.Iterations++
	}
	a.Rates = rates
	return a
}

type gradient struct{}

func (gradient) Method() Method { return Gradient }

// Allocate starts from an equal share and repeatedly shifts gas
// toward wells whose priority-weighted marginal response is above the
// field average, renormalizing to the available gas after each step.
func (gradient) Allocate(p *Problem) Allocation {
	n := len(p.Curves)
	equal := make([]float64, n)
	var active []int
	for i := range equal {
		if p.Active[i] {
			equal[i] = 1
			active = append(active, i)
		}
	}
	rates := distribute(equal, p.Min, p.Max, p.Gas)
	a := Allocation{}
	if len(active) < 2 || p.Gas <= 0 {
		a.Rates, a.Converged = rates, true
		return a
	}

	step := gradientStep * p.Gas
	responses := make([]float64, n)
	proposed := make([]float64, n)
	for a.Iterations < gradientIterations {
		a.Iterations++
		var avg float64
		for _, i := range active {
			responses[i] = p.weightedResponse(i, rates[i])
			avg += responses[i]
		}
		avg /= float64(len(active))
		scale := math.Max(math.Abs(avg), 1e-12)

		copy(proposed, rates)
		for _, i := range active {
			proposed[i] = clamp(rates[i]+step*(responses[i]-avg)/scale, p.Min[i], p.Max[i])
		}
		next := distribute(proposed, p.Min, p.Max, p.Gas)

		var maxChange float64
		for i := range next {
			maxChange = math.Max(maxChange, math.Abs(next[i]-rates[i]))
		}
		rates = next
		if maxChange < p.Tolerance*step {
			a.Converged = true
			break
		}
		step *= gradientDecay
	}
	a.Rates = rates
	return a
}
