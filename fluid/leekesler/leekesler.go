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

// Package leekesler implements the Lee-Kesler corresponding-states
// equation of state as a replacement compressibility provider for
// gaslift flow models.
//
// Coefficients follow Sonntag, Borgnakke and Van Wylen, Fundamentals
// of Classical Thermodynamics, 5th ed.
package leekesler

import (
	"math"

	"github.com/liftmodel/gaslift"
)

// coefficients of the modified Benedict-Webb-Rubin form.
type coefficients struct {
	b1, b2, b3, b4 float64
	c1, c2, c3, c4 float64
	d1, d2         float64
	beta, gamma    float64
}

var (
	// simple is the simple fluid (ω = 0).
	simple = coefficients{
		b1: 0.1181193, b2: 0.265728, b3: 0.154790, b4: 0.030323,
		c1: 0.0236744, c2: 0.0186984, c3: 0, c4: 0.042724,
		d1: 0.155488e-4, d2: 0.623689e-4,
		beta: 0.65392, gamma: 0.060167,
	}
	// reference is n-octane.
	reference = coefficients{
		b1: 0.2026579, b2: 0.331511, b3: 0.027655, b4: 0.203488,
		c1: 0.0313885, c2: 0.0503618, c3: 0.016901, c4: 0.041577,
		d1: 0.48736e-4, d2: 0.740336e-5,
		beta: 1.226, gamma: 0.03754,
	}
)

// referenceOmega is the acentric factor of the reference fluid.
const referenceOmega = 0.3978

const (
	maxIterations = 50
	tolerance     = 1e-10
)

// Gas is a pure or pseudo-pure gas described by its critical
// properties.
type Gas struct {
	CriticalTemperature float64 // [K]
	CriticalPressure    float64 // [bar]
	AcentricFactor      float64
}

// NaturalGas uses the same pseudo-critical properties as the
// internal gaslift correlation.
var NaturalGas = Gas{
	CriticalTemperature: gaslift.PseudoCriticalTemperature,
	CriticalPressure:    gaslift.PseudoCriticalPressure,
	AcentricFactor:      0.01,
}

// ZFactor returns the compressibility factor at pressure [bar] and
// temperature [K]. It satisfies gaslift.ZFactorFunc. If the volume
// iteration fails, the internal gaslift correlation is used instead.
func (g Gas) ZFactor(pressure, temperature float64) float64 {
	z, ok := g.Compressibility(pressure, temperature)
	if !ok {
		return gaslift.ZFactor(pressure, temperature)
	}
	return math.Max(0.3, math.Min(1.5, z))
}

// Compressibility returns the unclamped Lee-Kesler compressibility
// factor and whether both fluid iterations converged.
func (g Gas) Compressibility(pressure, temperature float64) (z float64, ok bool) {
	tr := temperature / g.CriticalTemperature
	pr := pressure / g.CriticalPressure
	if !(tr > 0) || !(pr > 0) {
		return 1, false
	}
	z0, ok0 := simple.z(tr, pr)
	zr, okr := reference.z(tr, pr)
	return z0 + g.AcentricFactor/referenceOmega*(zr-z0), ok0 && okr
}

// pressure returns the reduced pressure at reduced temperature tr and
// ideal reduced volume vr.
func (c coefficients) pressure(tr, vr float64) float64 {
	tr3 := tr * tr * tr
	b := c.b1 - c.b2/tr - c.b3/(tr*tr) - c.b4/tr3
	cc := c.c1 - c.c2/tr + c.c3/tr3
	d := c.d1 + c.d2/tr
	v2 := vr * vr
	return tr / vr * (1 + b/vr + cc/v2 + d/math.Pow(vr, 5) +
		c.c4/(tr3*v2)*(c.beta+c.gamma/v2)*math.Exp(-c.gamma/v2))
}

// z solves for the gas-like reduced volume with a Newton iteration on
// a finite-difference derivative, starting from the ideal gas volume.
func (c coefficients) z(tr, pr float64) (float64, bool) {
	f := func(vr float64) float64 { return c.pressure(tr, vr) - pr }
	vr := tr / pr
	for i := 0; i < maxIterations; i++ {
		fv := f(vr)
		if math.Abs(fv) < tolerance*pr {
			return pr * vr / tr, true
		}
		h := 1e-6 * vr
		slope := (f(vr+h) - f(vr-h)) / (2 * h)
		if slope == 0 || math.IsNaN(slope) {
			break
		}
		next := vr - fv/slope
		if next <= 0 {
			next = vr / 2
		}
		vr = next
	}
	return pr * vr / tr, false
}
