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

import "math"

// Physical constants and standard conditions. Pressures are in bar,
// temperatures in kelvin.
const (
	g    = 9.80665     // gravitational acceleration [m/s²]
	rGas = 8.314462618 // universal gas constant [J/(mol K)]

	// StandardPressure and StandardTemperature define the reference
	// state for volumetric gas and liquid rates.
	StandardPressure    = 1.01325 // [bar]
	StandardTemperature = 288.15  // [K]

	barToPa       = 1.0e5
	secondsPerDay = 86400.0
)

// Pseudo-critical properties of the lift and formation gas.
const (
	PseudoCriticalPressure    = 46.4  // [bar]
	PseudoCriticalTemperature = 208.0 // [K]
)

// Correlation constants.
const (
	zMin, zMax           = 0.3, 1.5
	yMin, yMax           = 0.01, 0.99
	hallYarboroughSteps  = 10
	hallYarboroughTol    = 1.0e-8
	holdupMin, holdupMax = 0.05, 0.95
	frictionMin          = 0.008
	frictionMax          = 0.1
	laminarReynolds      = 2300.

	// Drift-flux distribution coefficient and drift coefficient.
	driftC0 = 1.2
	driftKd = 0.35

	oilExpansion   = 6.0e-4 // thermal expansion of oil [1/K]
	oilViscosity   = 2.0e-3 // [Pa s]
	waterViscosity = 1.0e-3 // [Pa s]
)

// ZFactorFunc returns the gas compressibility factor at the given
// pressure [bar] and temperature [K]. It is the narrow interface through
// which an equation-of-state engine can replace the internal correlation.
type ZFactorFunc func(pressure, temperature float64) float64

// ZFactor returns the real-gas compressibility factor using the
// Hall-Yarborough correlation, falling back to a truncated virial
// form when the iteration leaves the physical range. The result is
// always within [0.3, 1.5].
func ZFactor(pressure, temperature float64) float64 {
	z, _ := ZFactorDetail(pressure, temperature)
	return z
}

// ZFactorDetail is the same as ZFactor but also reports whether
// the linear fallback was used instead of the primary correlation.
func ZFactorDetail(pressure, temperature float64) (z float64, fallback bool) {
	ppr := pressure / PseudoCriticalPressure
	tpr := temperature / PseudoCriticalTemperature
	z, ok := hallYarborough(ppr, tpr)
	if !ok || math.IsNaN(z) || z < 0.2 || z > 3 {
		z = virialZ(ppr, tpr)
		fallback = true
	}
	return clamp(z, zMin, zMax), fallback
}

// hallYarborough solves the Hall-Yarborough reduced-density equation
// with a bounded Newton iteration. ok is false if the residual did not
// converge with Y inside its bounds.
func hallYarborough(ppr, tpr float64) (z float64, ok bool) {
	if ppr <= 0 || tpr <= 0 {
		return 1, false
	}
	t := 1 / tpr
	e := math.Exp(-1.2 * (1 - t) * (1 - t))
	a := 0.06125 * t * e
	b := 14.76*t - 9.76*t*t + 4.58*t*t*t
	c := 90.7*t - 242.2*t*t + 42.4*t*t*t
	d := 2.18 + 2.82*t

	f := func(y float64) float64 {
		y2, y3 := y*y, y*y*y
		return -a*ppr + (y+y2+y3-y2*y2)/math.Pow(1-y, 3) - b*y2 + c*math.Pow(y, d)
	}
	df := func(y float64) float64 {
		y2, y3 := y*y, y*y*y
		return (1+4*y+4*y2-4*y3+y2*y2)/math.Pow(1-y, 4) - 2*b*y + c*d*math.Pow(y, d-1)
	}

	y := clamp(0.0125*ppr*t*e, yMin, yMax)
	for i := 0; i < hallYarboroughSteps; i++ {
		fy := f(y)
		if math.Abs(fy) < hallYarboroughTol {
			return a * ppr / y, true
		}
		slope := df(y)
		if slope == 0 || math.IsNaN(slope) {
			break
		}
		y = clamp(y-fy/slope, yMin, yMax)
	}
	if math.Abs(f(y)) < hallYarboroughTol {
		return a * ppr / y, true
	}
	return a * ppr / y, false
}

// virialZ is the two-term virial approximation, linear in reduced
// pressure.
func virialZ(ppr, tpr float64) float64 {
	if tpr <= 0 {
		return 1
	}
	return 1 + (0.083-0.422/math.Pow(tpr, 1.6))*ppr/tpr
}

// LiquidHoldup returns the in-situ liquid fraction of the pipe
// cross-section for the given in-situ gas-liquid ratio, using a
// drift-flux relation. The result is within [0.05, 0.95].
func LiquidHoldup(insituGLR float64) float64 {
	if insituGLR <= 0 {
		return holdupMax
	}
	lambda := insituGLR / (1 + insituGLR)
	void := lambda / (driftC0 + driftKd*(1-lambda))
	return clamp(1-void, holdupMin, holdupMax)
}

// FrictionFactor returns the Darcy friction factor for the given
// Reynolds number and relative roughness (roughness / diameter).
// Laminar flow uses 64/Re; turbulent flow uses the Haaland
// approximation to Colebrook-White. The result is within [0.008, 0.1].
func FrictionFactor(reynolds, relativeRoughness float64) float64 {
	if reynolds <= 0 || math.IsNaN(reynolds) {
		return frictionMax
	}
	var f float64
	if reynolds < laminarReynolds {
		f = 64 / reynolds
	} else {
		x := -1.8 * math.Log10(math.Pow(relativeRoughness/3.7, 1.11)+6.9/reynolds)
		f = 1 / (x * x)
	}
	return clamp(f, frictionMin, frictionMax)
}

// MixtureDensity returns the holdup-weighted density [kg/m³] of the
// gas-liquid mixture at the given pressure [bar], temperature [K] and
// total gas-liquid ratio [Sm³/Sm³], using the default Z correlation.
func MixtureDensity(pressure, temperature, totalGLR float64, w *WellConfig) float64 {
	return Fluid{}.MixtureDensity(pressure, temperature, totalGLR, w)
}

// Fluid computes the fluid properties needed by the pressure traverse.
// The zero value uses the internal correlations.
type Fluid struct {
	// Z is the compressibility factor provider. If nil, ZFactor is used.
	Z ZFactorFunc
}

func (f Fluid) z(pressure, temperature float64) float64 {
	if f.Z == nil {
		return ZFactor(pressure, temperature)
	}
	return f.Z(pressure, temperature)
}

// state holds the in-situ properties of the mixture at one point in
// the tubing.
type state struct {
	z, bg      float64 // compressibility and gas expansion ratio
	insituGLR  float64
	holdup     float64
	rhoL, rhoG float64
	rhoM       float64
	muL, muG   float64
}

func (f Fluid) state(pressure, temperature, totalGLR float64, w *WellConfig) state {
	var s state
	s.z = f.z(pressure, temperature)
	s.bg = (StandardPressure / pressure) * (temperature / StandardTemperature) * s.z
	s.insituGLR = math.Max(totalGLR, 0) * s.bg
	s.holdup = LiquidHoldup(s.insituGLR)
	s.rhoL = LiquidDensity(temperature, w)
	s.rhoG = gasDensity(pressure, temperature, s.z, w.GasMolecularWeight)
	s.rhoM = s.holdup*s.rhoL + (1-s.holdup)*s.rhoG
	s.muL = (1-w.WaterCut)*oilViscosity + w.WaterCut*waterViscosity
	s.muG = GasViscosity(temperature, s.rhoG, w.GasMolecularWeight)
	return s
}

// MixtureDensity returns the holdup-weighted mixture density [kg/m³].
func (f Fluid) MixtureDensity(pressure, temperature, totalGLR float64, w *WellConfig) float64 {
	return f.state(pressure, temperature, totalGLR, w).rhoM
}

// GasDensity returns the real-gas density [kg/m³].
func (f Fluid) GasDensity(pressure, temperature, molecularWeight float64) float64 {
	return gasDensity(pressure, temperature, f.z(pressure, temperature), molecularWeight)
}

func gasDensity(pressure, temperature, z, molecularWeight float64) float64 {
	return pressure * barToPa * molecularWeight / 1000 / (z * rGas * temperature)
}

// LiquidDensity returns the density [kg/m³] of the produced liquid:
// thermally expanded oil blended with water by water cut.
func LiquidDensity(temperature float64, w *WellConfig) float64 {
	oil := w.OilDensity / (1 + oilExpansion*(temperature-StandardTemperature))
	return (1-w.WaterCut)*oil + w.WaterCut*w.WaterDensity
}

// GasViscosity returns the gas viscosity [Pa s] from the
// Lee-Gonzalez-Eakin correlation given temperature [K], gas density
// [kg/m³] and molecular weight [g/mol].
func GasViscosity(temperature, density, molecularWeight float64) float64 {
	tr := temperature * 1.8 // °R
	k := (9.4 + 0.02*molecularWeight) * math.Pow(tr, 1.5) / (209 + 19*molecularWeight + tr)
	x := 3.5 + 986/tr + 0.01*molecularWeight
	y := 2.4 - 0.2*x
	cp := 1.0e-4 * k * math.Exp(x*math.Pow(density/1000, y))
	return cp * 1.0e-3
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
