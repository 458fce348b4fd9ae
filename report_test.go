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
	"reflect"
	"testing"

	"github.com/Knetic/govaluate"
)

func TestReporter(t *testing.T) {
	r, err := NewReporter(map[string]string{
		"bbl":  "OilRate * 6.29",
		"eff":  "max(GasEfficiency, 0)",
		"gain": "double(IncrementalOil)",
	}, map[string]govaluate.ExpressionFunction{
		"double": oneArg("double", func(x float64) float64 { return 2 * x }),
	})
	if err != nil {
		t.Fatal(err)
	}
	if cols := r.Columns(); !reflect.DeepEqual(cols, []string{"bbl", "eff", "gain"}) {
		t.Errorf("columns=%v", cols)
	}
	res := &AllocationResult{Wells: []WellAllocation{
		{Name: "A", Enabled: true, OilRate: 100, IncrementalOil: 40, GasEfficiency: 0.004},
		{Name: "B", OilRate: 10, GasEfficiency: -1},
	}}
	rows, err := r.Evaluate(res)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{629, 0.004, 80}, {62.9, 0, 0}}
	for i := range want {
		for j := range want[i] {
			if absDifferent(rows[i][j], want[i][j], 1e-9) {
				t.Errorf("row %d column %d=%g (it should equal %g)", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestReporterErrors(t *testing.T) {
	for _, expr := range []string{"Pressure * 2", "OilRate *", "exp(OilRate, 1)"} {
		r, err := NewReporter(map[string]string{"x": expr}, nil)
		if err != nil {
			continue
		}
		res := &AllocationResult{Wells: []WellAllocation{{Name: "A", OilRate: 1}}}
		if _, err := r.Evaluate(res); err == nil {
			t.Errorf("%q should fail", expr)
		}
	}
	r, err := NewReporter(map[string]string{"x": "log(OilRate)"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := r.Evaluate(&AllocationResult{Wells: []WellAllocation{{OilRate: math.E}}})
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(rows[0][0], 1, 1e-12) {
		t.Errorf("log(e)=%g", rows[0][0])
	}
}
