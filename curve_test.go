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

func literalCurve(t *testing.T) *PerformanceCurve {
	c, err := NewPerformanceCurve(1000, []CurvePoint{
		{GasRate: 0, OilRate: 1000},
		{GasRate: 500, OilRate: 1500},
		{GasRate: 1000, OilRate: 1800},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCurveLookup(t *testing.T) {
	c := literalCurve(t)
	tests := []struct {
		gas, want float64
	}{
		{gas: 250, want: 1250},
		{gas: -10, want: 1000},
		{gas: 2000, want: 1800},
		{gas: 500, want: 1500},
		{gas: 750, want: 1650},
	}
	for _, test := range tests {
		if got := c.OilRate(test.gas); absDifferent(got, test.want, 1e-9) {
			t.Errorf("OilRate(%g)=%g (it should equal %g)", test.gas, got, test.want)
		}
	}
	if c.NaturalFlowRate() != 1000 {
		t.Errorf("natural flow=%g (it should equal 1000)", c.NaturalFlowRate())
	}
	if c.MaxOilRate() != 1800 || c.OptimalGasRate() != 1000 || c.MaxGasRate() != 1000 {
		t.Errorf("max oil %g at %g, max gas %g", c.MaxOilRate(), c.OptimalGasRate(), c.MaxGasRate())
	}
}

func TestMarginalResponse(t *testing.T) {
	c := literalCurve(t)
	tests := []struct {
		gas, want float64
	}{
		{gas: 0, want: 1},
		{gas: 600, want: 0.6},
		{gas: 450, want: 0.5*1 + 0.5*0.6},
		{gas: 1000, want: 0},
		{gas: 5000, want: 0},
	}
	for _, test := range tests {
		if got := c.MarginalResponse(test.gas); absDifferent(got, test.want, 1e-9) {
			t.Errorf("MarginalResponse(%g)=%g (it should equal %g)", test.gas, got, test.want)
		}
	}
}

func TestNewPerformanceCurveErrors(t *testing.T) {
	tests := []struct {
		name   string
		points []CurvePoint
	}{
		{name: "empty"},
		{name: "duplicate", points: []CurvePoint{{0, 1}, {0, 2}}},
		{name: "decreasing", points: []CurvePoint{{0, 1}, {10, 2}, {5, 3}}},
		{name: "nan", points: []CurvePoint{{0, math.NaN()}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewPerformanceCurve(0, test.points); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCurveImmutable(t *testing.T) {
	pts := []CurvePoint{{0, 10}, {100, 20}}
	c, err := NewPerformanceCurve(10, pts)
	if err != nil {
		t.Fatal(err)
	}
	pts[1].OilRate = 1e6
	c.Points()[1].OilRate = 1e6
	if c.OilRate(100) != 20 {
		t.Errorf("curve changed after its inputs or outputs were modified")
	}
}

func TestParametricCurve(t *testing.T) {
	const natural, max, opt = 100., 400., 50000.
	c, err := NewParametricCurve(natural, max, opt)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(c.Points()); n != ParametricSteps {
		t.Errorf("%d points (it should have %d)", n, ParametricSteps)
	}
	if c.OilRate(0) != natural || c.NaturalFlowRate() != natural {
		t.Errorf("oil at zero injection=%g (it should equal %g)", c.OilRate(0), natural)
	}
	if different(c.MaxOilRate(), max, 1e-9) {
		t.Errorf("max oil=%g (it should equal %g)", c.MaxOilRate(), max)
	}
	if different(c.OptimalGasRate(), opt, 1e-9) {
		t.Errorf("optimal gas=%g (it should equal %g)", c.OptimalGasRate(), opt)
	}
	if c.MarginalResponse(opt/2) <= 0 || c.MarginalResponse(1.5*opt) >= 0 {
		t.Error("response should be positive before the optimum and negative after it")
	}
	if c.MarginalResponse(0.2*opt) <= c.MarginalResponse(0.7*opt) {
		t.Error("response should diminish with injection")
	}

	for _, bad := range [][3]float64{{-1, 10, 10}, {10, 5, 10}, {1, 10, 0}} {
		if _, err := NewParametricCurve(bad[0], bad[1], bad[2]); err == nil {
			t.Errorf("NewParametricCurve%v should fail", bad)
		}
	}
}

func TestBuildCurve(t *testing.T) {
	w := testWell()
	c, err := CurveBuilder{}.Build(w)
	if err != nil {
		t.Fatal(err)
	}
	sweep := c.Sweep()
	if len(sweep) != DefaultCurveSteps {
		t.Fatalf("sweep has %d points (it should have %d)", len(sweep), DefaultCurveSteps)
	}
	if sweep[0].TotalGLR != w.FormationGOR || sweep[0].InjectionGLR != 0 {
		t.Errorf("sweep should start at the formation GOR, got %+v", sweep[0])
	}
	if last := sweep[len(sweep)-1].TotalGLR; different(last, minSweepGLR, 1e-12) {
		t.Errorf("sweep ends at %g (it should end at %g)", last, minSweepGLR)
	}
	pts := c.Points()
	for i := 1; i < len(pts); i++ {
		if pts[i].GasRate <= pts[i-1].GasRate {
			t.Errorf("gas rates not strictly increasing at %d", i)
		}
	}
	m, err := NewFlowModel(w)
	if err != nil {
		t.Fatal(err)
	}
	natural := m.NaturalFlowRate() * (1 - w.WaterCut)
	if different(c.NaturalFlowRate(), natural, 1e-12) || c.OilRate(0) != c.NaturalFlowRate() {
		t.Errorf("natural flow=%g, OilRate(0)=%g (both should equal %g)", c.NaturalFlowRate(), c.OilRate(0), natural)
	}
	if c.MaxOilRate() <= c.NaturalFlowRate() {
		t.Errorf("max oil %g should exceed natural flow %g", c.MaxOilRate(), c.NaturalFlowRate())
	}
	if glr := c.OptimalGLR(); glr <= w.FormationGOR || glr > minSweepGLR {
		t.Errorf("optimal GLR=%g is outside (%g, %g]", glr, w.FormationGOR, minSweepGLR)
	}
}

func TestBuildCurveDeadWell(t *testing.T) {
	w := testWell()
	w.ReservoirPressure = 50
	c, err := CurveBuilder{Steps: 10}.Build(w)
	if err != nil {
		t.Fatal(err)
	}
	if c.NaturalFlowRate() != 0 {
		t.Errorf("natural flow=%g (it should be 0)", c.NaturalFlowRate())
	}
	for _, s := range c.Sweep() {
		if s.LiquidRate < 0 {
			t.Errorf("negative rate %g", s.LiquidRate)
		}
	}
}
