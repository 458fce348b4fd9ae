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

func testCompressor() Compressor {
	return Compressor{SuctionPressure: 10, DischargePressure: 100, Efficiency: 0.75}
}

func TestIsothermalPower(t *testing.T) {
	c := testCompressor()
	p := c.IsothermalPower(1e5)
	if different(p, 360.05, 0.001) {
		t.Errorf("power=%g kW (it should equal 360.05)", p)
	}
	if q := c.MaxRateForPower(p); different(q, 1e5, 1e-12) {
		t.Errorf("rate=%g (it should equal 1e5)", q)
	}
	if c.MaxRateForPower(0) != 0 {
		t.Error("zero power should compress no gas")
	}
	c.DischargePressure = c.SuctionPressure
	if c.IsothermalPower(1e5) != 0 || !math.IsInf(c.MaxRateForPower(100), 1) {
		t.Error("no compression should need no power")
	}
}

func TestPolytropicPower(t *testing.T) {
	c := testCompressor()
	if s := c.Stages(); s != 2 {
		t.Errorf("stages=%d (it should equal 2)", s)
	}
	iso, poly := c.IsothermalPower(1e5), c.PolytropicPower(1e5)
	if poly <= iso {
		t.Errorf("polytropic power %g should exceed isothermal power %g", poly, iso)
	}
	if different(c.PolytropicPower(2e5), 2*poly, 1e-12) {
		t.Error("power should be proportional to rate")
	}
	c.DischargePressure = 40
	if s := c.Stages(); s != 1 {
		t.Errorf("stages=%d (it should equal 1 at ratio 4)", s)
	}
	n := PolytropicExponent
	want := isothermalFactor * 1e5 * n / (n - 1) * (math.Pow(4, (n-1)/n) - 1) / 0.75
	if got := c.PolytropicPower(1e5); different(got, want, 1e-12) {
		t.Errorf("power=%g (it should equal %g)", got, want)
	}
	if c.PolytropicPower(-1) != 0 {
		t.Error("negative rate should need no power")
	}
}

func TestCompressorValidate(t *testing.T) {
	for _, c := range []Compressor{
		{SuctionPressure: 0, DischargePressure: 10, Efficiency: 0.7},
		{SuctionPressure: 10, DischargePressure: 100, Efficiency: 0},
		{SuctionPressure: 10, DischargePressure: 100, Efficiency: 1.2},
	} {
		if err := c.Validate(); err == nil {
			t.Errorf("%+v should be invalid", c)
		}
	}
	if err := testCompressor().Validate(); err != nil {
		t.Error(err)
	}
}
