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
	"testing"
)

// different returns true if the relative difference between a and b
// exceeds tolerance.
func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance || math.IsNaN(a) || math.IsNaN(b)
}

// testWell is a 2 km oil well with 30% water cut that flows naturally.
func testWell() WellConfig {
	return WellConfig{
		Name:                 "A-1",
		ReservoirPressure:    200,
		ReservoirTemperature: 360,
		WellheadPressure:     15,
		WellheadTemperature:  310,
		Depth:                2000,
		TubingDiameter:       0.062,
		TubingRoughness:      1.5e-5,
		ProductivityIndex:    5,
		BubblePointPressure:  150,
		OilDensity:           850,
		WaterDensity:         1030,
		GasMolecularWeight:   19,
		FormationGOR:         50,
		WaterCut:             0.3,
	}
}

func TestZFactor(t *testing.T) {
	t.Run("standard conditions", func(t *testing.T) {
		z := ZFactor(StandardPressure, StandardTemperature)
		if absDifferent(z, 1, 0.02) {
			t.Errorf("z=%g (it should be close to 1)", z)
		}
	})
	t.Run("moderate pressure", func(t *testing.T) {
		z, fallback := ZFactorDetail(100, 350)
		if fallback {
			t.Error("primary correlation should converge at 100 bar and 350 K")
		}
		if z < 0.85 || z > 0.92 {
			t.Errorf("z=%g (it should be between 0.85 and 0.92)", z)
		}
	})
	t.Run("low pressure fallback", func(t *testing.T) {
		z, fallback := ZFactorDetail(5, 300)
		if !fallback {
			t.Error("low reduced pressure should use the linear fallback")
		}
		want := virialZ(5/PseudoCriticalPressure, 300/PseudoCriticalTemperature)
		if absDifferent(z, want, 1e-12) {
			t.Errorf("z=%g (it should equal %g)", z, want)
		}
	})
	t.Run("clamped", func(t *testing.T) {
		for _, p := range []float64{0.5, 10, 100, 500, 2000} {
			for _, temp := range []float64{210, 250, 300, 400, 600} {
				z := ZFactor(p, temp)
				if z < zMin || z > zMax || math.IsNaN(z) {
					t.Errorf("ZFactor(%g, %g)=%g is outside [%g, %g]", p, temp, z, zMin, zMax)
				}
			}
		}
	})
}

func TestLiquidHoldup(t *testing.T) {
	if h := LiquidHoldup(0); h != holdupMax {
		t.Errorf("holdup=%g (it should equal %g with no gas)", h, holdupMax)
	}
	prev := LiquidHoldup(0)
	for _, glr := range []float64{0.01, 0.1, 1, 10, 100, 1e6} {
		h := LiquidHoldup(glr)
		if h > prev {
			t.Errorf("holdup increased from %g to %g at in-situ GLR %g", prev, h, glr)
		}
		if h < holdupMin || h > holdupMax {
			t.Errorf("holdup=%g is outside [%g, %g]", h, holdupMin, holdupMax)
		}
		prev = h
	}
	if h, want := LiquidHoldup(1e12), 1-1/driftC0; absDifferent(h, want, 1e-6) {
		t.Errorf("holdup=%g (it should approach %g for a gas-dominated mixture)", h, want)
	}
}

func TestFrictionFactor(t *testing.T) {
	tests := []struct {
		name       string
		re, relEps float64
		want       float64
	}{
		{name: "laminar", re: 1000, want: 0.064},
		{name: "laminar clamp", re: 10, want: frictionMax},
		{name: "turbulent smooth", re: 1e5, want: 0.017825},
		{name: "turbulent clamp", re: 1e9, want: frictionMin},
		{name: "no flow", re: 0, want: frictionMax},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := FrictionFactor(test.re, test.relEps)
			if different(f, test.want, 0.001) {
				t.Errorf("f=%g (it should equal %g)", f, test.want)
			}
		})
	}
	if FrictionFactor(1e5, 0.01) <= FrictionFactor(1e5, 0) {
		t.Error("rough pipe should have more friction than smooth pipe")
	}
}

func TestMixtureDensity(t *testing.T) {
	w := testWell()
	const p, temp = 50., 330.
	t.Run("no gas", func(t *testing.T) {
		rho := MixtureDensity(p, temp, 0, &w)
		want := holdupMax*LiquidDensity(temp, &w) + (1-holdupMax)*Fluid{}.GasDensity(p, temp, w.GasMolecularWeight)
		if different(rho, want, 1e-12) {
			t.Errorf("density=%g (it should equal %g)", rho, want)
		}
	})
	t.Run("gas lightens column", func(t *testing.T) {
		if MixtureDensity(p, temp, 500, &w) >= MixtureDensity(p, temp, 50, &w) {
			t.Error("more gas should reduce mixture density")
		}
	})
	t.Run("custom Z", func(t *testing.T) {
		ideal := Fluid{Z: func(float64, float64) float64 { return 1 }}
		rho := ideal.GasDensity(p, temp, w.GasMolecularWeight)
		want := p * 1e5 * 0.019 / (rGas * temp)
		if different(rho, want, 1e-12) {
			t.Errorf("density=%g (it should equal %g)", rho, want)
		}
	})
	t.Run("liquid blend", func(t *testing.T) {
		w := testWell()
		w.WaterCut = 1
		if rho := LiquidDensity(400, &w); rho != w.WaterDensity {
			t.Errorf("density=%g (it should equal water density %g)", rho, w.WaterDensity)
		}
	})
}

func TestGasViscosity(t *testing.T) {
	// Methane-like gas near standard conditions is about 0.011 mPa s.
	mu := GasViscosity(StandardTemperature, 0.8, 19)
	if mu < 0.008e-3 || mu > 0.014e-3 {
		t.Errorf("viscosity=%g Pa s (it should be about 1.1e-5)", mu)
	}
}
