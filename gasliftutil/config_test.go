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

package gasliftutil

import (
	"context"
	"math"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/liftmodel/gaslift"
	"github.com/lnashier/viper"
)

func TestLoadField(t *testing.T) {
	f, err := loadFieldFile("testdata/field.toml")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Wells) != 3 {
		t.Fatalf("%d wells (there should be 3)", len(f.Wells))
	}
	a := f.Wells[0]
	if a.Config == nil || a.Config.Name != "A-1" || a.Config.ReservoirPressure != 200 {
		t.Errorf("well A-1 config=%+v", a.Config)
	}
	if a.MaxGasRate == nil || *a.MaxGasRate != 60000 || a.MinGasRate != 5000 {
		t.Errorf("well A-1 bounds [%g, %v]", a.MinGasRate, a.MaxGasRate)
	}
	want := FieldWell{
		Name:       "B-2",
		Priority:   2,
		Parametric: &ParametricWell{NaturalFlowRate: 50, MaxOilRate: 250, OptimalGasRate: 30000},
	}
	if !reflect.DeepEqual(f.Wells[1], want) {
		t.Errorf("well B-2 differs: %v", pretty.Diff(f.Wells[1], want))
	}
}

func TestLoadFieldErrors(t *testing.T) {
	tests := []struct {
		name, toml string
	}{
		{name: "empty", toml: ``},
		{name: "both", toml: `
[[Wells]]
Name = "x"
  [Wells.Config]
  Depth = 1000.0
  [Wells.Parametric]
  MaxOilRate = 10.0
`},
		{name: "neither", toml: `
[[Wells]]
Name = "x"
`},
		{name: "syntax", toml: `[[Wells]`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := LoadField(strings.NewReader(test.toml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if _, err := LoadField(strings.NewReader("")); err != gaslift.ErrNoWells {
		t.Errorf("err=%v (it should be ErrNoWells)", err)
	}
	if _, err := loadFieldFile(""); err == nil {
		t.Error("a missing field file should be an error")
	}
}

func TestAllocationWells(t *testing.T) {
	f, err := LoadField(strings.NewReader(`
[[Wells]]
Name = "B-2"
Disabled = true
  [Wells.Parametric]
  NaturalFlowRate = 50.0
  MaxOilRate = 250.0
  OptimalGasRate = 30000.0

[[Wells]]
Name = "C-3"
MaxGasRate = 10000.0
  [Wells.Parametric]
  NaturalFlowRate = 80.0
  MaxOilRate = 300.0
  OptimalGasRate = 40000.0
`))
	if err != nil {
		t.Fatal(err)
	}
	wells, err := f.AllocationWells(context.Background(), gaslift.NewCurveCache(gaslift.CurveBuilder{}))
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(wells[0].MaxGasRate, 1) || wells[1].MaxGasRate != 10000 {
		t.Errorf("max gas rates %g and %g", wells[0].MaxGasRate, wells[1].MaxGasRate)
	}
	if !wells[0].Disabled || wells[1].Disabled {
		t.Error("only B-2 should be disabled")
	}
	if got := wells[1].Curve.NaturalFlowRate(); got != 80 {
		t.Errorf("natural flow=%g (it should equal 80)", got)
	}
	names, pcs := curves(wells)
	if !reflect.DeepEqual(names, []string{"B-2", "C-3"}) || len(pcs) != 2 {
		t.Errorf("curves %v", names)
	}

	f.Wells[1].Parametric.MaxOilRate = 1
	if _, err := f.AllocationWells(context.Background(), gaslift.NewCurveCache(gaslift.CurveBuilder{})); err == nil {
		t.Error("an invalid parametric curve should be an error")
	}
}

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	tests := []struct {
		name string
		val  interface{}
		want map[string]string
	}{
		{name: "nil", want: map[string]string{}},
		{name: "empty", val: "", want: map[string]string{}},
		{name: "json", val: `{"a": "x * 2"}`, want: map[string]string{"a": "x * 2"}},
		{name: "map", val: map[string]string{"b": "y"}, want: map[string]string{"b": "y"}},
		{name: "interface", val: map[string]interface{}{"c": "z"}, want: map[string]string{"c": "z"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			key := "Columns." + test.name
			if test.val != nil {
				cfg.Set(key, test.val)
			}
			got, err := GetStringMapString(key, cfg)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("%v != %v", got, test.want)
			}
		})
	}
	cfg.Set("bad", `{"a": `)
	if _, err := GetStringMapString("bad", cfg); err == nil {
		t.Error("invalid json should be an error")
	}
	cfg.Set("number", 3)
	if _, err := GetStringMapString("number", cfg); err == nil {
		t.Error("a number should be an error")
	}
}

func TestConfigUnmarshal(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Curve.Steps", 1)
	cfg.Set("Curve.Segments", 5)
	if _, err := CurveBuilder(cfg); err == nil {
		t.Error("one step should be rejected")
	}
	cfg.Set("Curve.Steps", 10)
	b, err := CurveBuilder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if b.Steps != 10 || b.Segments != 5 {
		t.Errorf("builder=%+v", b)
	}

	if _, err := Compressor(cfg); err == nil {
		t.Error("an unset compressor should be invalid")
	}
	cfg.Set("Compressor.SuctionPressure", 10.0)
	cfg.Set("Compressor.DischargePressure", 100.0)
	cfg.Set("Compressor.Efficiency", 0.75)
	cfg.Set("AvailableGas", 5e4)
	c, err := AllocationConstraints(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.AvailableGas != 5e4 || c.Compressor.Efficiency != 0.75 {
		t.Errorf("constraints=%+v", c)
	}

	if _, err := WellConfig(cfg); err == nil {
		t.Error("an unset well should be invalid")
	}

	cfg.Set("Design.MaxValves", -1)
	if _, err := DesignParameters(cfg); err == nil {
		t.Error("a negative valve count should be rejected")
	}
	cfg.Set("Design.MaxValves", 4)
	if p, err := DesignParameters(cfg); err != nil || p.MaxValves != 4 {
		t.Errorf("design parameters %+v, %v", p, err)
	}
}

func TestFluidOption(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Curve.Steps", 10)
	cfg.Set("Curve.Segments", 5)
	b, err := CurveBuilder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if b.Fluid.Z != nil {
		t.Error("the default fluid should use the built-in correlation")
	}
	cfg.Set("Fluid", "LeeKesler")
	if b, err = CurveBuilder(cfg); err != nil {
		t.Fatal(err)
	}
	if b.Fluid.Z == nil {
		t.Fatal("LeeKesler should set a compressibility provider")
	}
	if z := b.Fluid.Z(100, 350); z < 0.3 || z > 1.5 {
		t.Errorf("z=%g is outside [0.3, 1.5]", z)
	}
	cfg.Set("Fluid", "ideal")
	if _, err := CurveBuilder(cfg); err == nil {
		t.Error("an unknown fluid should be rejected")
	}
}

func TestCheckOutputFile(t *testing.T) {
	if f, err := checkOutputFile(""); err != nil || f != "" {
		t.Errorf("empty path: %q, %v", f, err)
	}
	if _, err := checkOutputFile("does/not/exist/out.xlsx"); err == nil {
		t.Error("a missing directory should be an error")
	}
	if _, err := checkOutputFile("s3://bucket/out.xlsx"); err != nil {
		t.Error(err)
	}
	os.Setenv("GASLIFT_TEST_DIR", "testdata")
	defer os.Unsetenv("GASLIFT_TEST_DIR")
	if f, err := checkOutputFile("$GASLIFT_TEST_DIR/out.xlsx"); err != nil || f != "testdata/out.xlsx" {
		t.Errorf("expanded path: %q, %v", f, err)
	}
}

func TestCheckReportColumns(t *testing.T) {
	got := checkReportColumns(map[string]string{"a": "OilRate *\n 2", "b": "GasRate\r\n+1"})
	want := map[string]string{"a": "OilRate *  2", "b": "GasRate +1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%v != %v", got, want)
	}
}
