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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/liftmodel/gaslift"
	"github.com/liftmodel/gaslift/fluid/leekesler"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// ParametricWell describes a well by the shape of its performance
// curve rather than by its hydraulics.
type ParametricWell struct {
	NaturalFlowRate float64 // [Sm³/d]
	MaxOilRate      float64 // [Sm³/d]
	OptimalGasRate  float64 // [Sm³/d]
}

// FieldWell is one well in a field definition file. Exactly one of
// Config and Parametric must be set.
type FieldWell struct {
	Name string

	// MinGasRate and MaxGasRate bound the injection [Sm³/d]. A missing
	// MaxGasRate means unconstrained.
	MinGasRate float64
	MaxGasRate *float64

	Priority float64
	Disabled bool

	Config     *gaslift.WellConfig
	Parametric *ParametricWell
}

// Field is a set of wells sharing a lift gas supply.
type Field struct {
	Wells []FieldWell
}

// LoadField reads a TOML field definition.
func LoadField(r io.Reader) (*Field, error) {
	var f Field
	if _, err := toml.DecodeReader(r, &f); err != nil {
		return nil, fmt.Errorf("gasliftutil: decoding field definition: %v", err)
	}
	if len(f.Wells) == 0 {
		return nil, gaslift.ErrNoWells
	}
	for i, w := range f.Wells {
		if (w.Config == nil) == (w.Parametric == nil) {
			return nil, fmt.Errorf("gasliftutil: well %d (%q) needs exactly one of Config or Parametric", i, w.Name)
		}
		if w.Config != nil && w.Config.Name == "" {
			f.Wells[i].Config.Name = w.Name
		}
	}
	return &f, nil
}

// loadFieldFile opens and reads the field definition at path,
// expanding any environment variables in the path.
func loadFieldFile(path string) (*Field, error) {
	if path == "" {
		return nil, fmt.Errorf("gasliftutil: you need to specify a field definition file (for example: --Field=field.toml)")
	}
	r, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("gasliftutil: opening field definition: %v", err)
	}
	defer r.Close()
	return LoadField(r)
}

// AllocationWells builds the performance curves of the field's wells,
// using c for hydraulic wells, and returns them ready for allocation.
func (f *Field) AllocationWells(ctx context.Context, c *gaslift.CurveCache) ([]gaslift.AllocationWell, error) {
	var configs []gaslift.WellConfig
	var idx []int
	for i, w := range f.Wells {
		if w.Config != nil {
			configs = append(configs, *w.Config)
			idx = append(idx, i)
		}
	}
	curves := make([]gaslift.Curve, len(f.Wells))
	built, err := c.Curves(ctx, configs)
	if err != nil {
		return nil, err
	}
	for j, i := range idx {
		curves[i] = built[j]
	}

	o := make([]gaslift.AllocationWell, len(f.Wells))
	for i, w := range f.Wells {
		if w.Parametric != nil {
			p := w.Parametric
			pc, err := gaslift.NewParametricCurve(p.NaturalFlowRate, p.MaxOilRate, p.OptimalGasRate)
			if err != nil {
				return nil, fmt.Errorf("gasliftutil: well %q: %v", w.Name, err)
			}
			curves[i] = pc
		}
		hi := math.Inf(1)
		if w.MaxGasRate != nil {
			hi = *w.MaxGasRate
		}
		o[i] = gaslift.AllocationWell{
			Name:       w.Name,
			Curve:      curves[i],
			MinGasRate: w.MinGasRate,
			MaxGasRate: hi,
			Priority:   w.Priority,
			Disabled:   w.Disabled,
		}
	}
	return o, nil
}

// curves returns the performance curves of wells that have one.
func curves(wells []gaslift.AllocationWell) ([]string, []*gaslift.PerformanceCurve) {
	var names []string
	var o []*gaslift.PerformanceCurve
	for _, w := range wells {
		if c, ok := w.Curve.(*gaslift.PerformanceCurve); ok {
			names = append(names, w.Name)
			o = append(o, c)
		}
	}
	return names, o
}

// WellConfig unmarshals a viper configuration for a single well.
func WellConfig(cfg *viper.Viper) (gaslift.WellConfig, error) {
	w := gaslift.WellConfig{
		Name:                 os.ExpandEnv(cfg.GetString("Well.Name")),
		ReservoirPressure:    cfg.GetFloat64("Well.ReservoirPressure"),
		ReservoirTemperature: cfg.GetFloat64("Well.ReservoirTemperature"),
		WellheadPressure:     cfg.GetFloat64("Well.WellheadPressure"),
		WellheadTemperature:  cfg.GetFloat64("Well.WellheadTemperature"),
		Depth:                cfg.GetFloat64("Well.Depth"),
		TubingDiameter:       cfg.GetFloat64("Well.TubingDiameter"),
		TubingRoughness:      cfg.GetFloat64("Well.TubingRoughness"),
		ProductivityIndex:    cfg.GetFloat64("Well.ProductivityIndex"),
		BubblePointPressure:  cfg.GetFloat64("Well.BubblePointPressure"),
		OilDensity:           cfg.GetFloat64("Well.OilDensity"),
		WaterDensity:         cfg.GetFloat64("Well.WaterDensity"),
		GasMolecularWeight:   cfg.GetFloat64("Well.GasMolecularWeight"),
		FormationGOR:         cfg.GetFloat64("Well.FormationGOR"),
		WaterCut:             cfg.GetFloat64("Well.WaterCut"),
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}

// CurveBuilder unmarshals the curve sweep settings.
func CurveBuilder(cfg *viper.Viper) (gaslift.CurveBuilder, error) {
	b := gaslift.CurveBuilder{
		Steps:    cfg.GetInt("Curve.Steps"),
		Segments: cfg.GetInt("Curve.Segments"),
	}
	if b.Steps < 2 {
		return b, fmt.Errorf("gasliftutil: Curve.Steps=%d but should be >= 2", b.Steps)
	}
	if b.Segments < 1 {
		return b, fmt.Errorf("gasliftutil: Curve.Segments=%d but should be >= 1", b.Segments)
	}
	z, err := zFactor(cfg.GetString("Fluid"))
	if err != nil {
		return b, err
	}
	b.Fluid.Z = z
	return b, nil
}

// zFactor returns the compressibility provider with the given
// case-insensitive name. HallYarborough selects the built-in
// correlation.
func zFactor(name string) (gaslift.ZFactorFunc, error) {
	switch strings.ToLower(name) {
	case "", "hallyarborough":
		return nil, nil
	case "leekesler":
		return leekesler.NaturalGas.ZFactor, nil
	default:
		return nil, fmt.Errorf("gasliftutil: unknown Fluid %q; it should be HallYarborough or LeeKesler", name)
	}
}

// Compressor unmarshals the compression settings.
func Compressor(cfg *viper.Viper) (gaslift.Compressor, error) {
	c := gaslift.Compressor{
		SuctionPressure:    cfg.GetFloat64("Compressor.SuctionPressure"),
		DischargePressure:  cfg.GetFloat64("Compressor.DischargePressure"),
		Efficiency:         cfg.GetFloat64("Compressor.Efficiency"),
		SuctionTemperature: cfg.GetFloat64("Compressor.SuctionTemperature"),
	}
	return c, c.Validate()
}

// DesignParameters unmarshals the single-well design settings.
func DesignParameters(cfg *viper.Viper) (gaslift.DesignParameters, error) {
	c, err := Compressor(cfg)
	if err != nil {
		return gaslift.DesignParameters{}, err
	}
	p := gaslift.DesignParameters{
		InjectionPressure: cfg.GetFloat64("Design.InjectionPressure"),
		KillFluidDensity:  cfg.GetFloat64("Design.KillFluidDensity"),
		MaxValves:         cfg.GetInt("Design.MaxValves"),
		Compressor:        c,
	}
	if p.MaxValves < 0 {
		return p, fmt.Errorf("gasliftutil: Design.MaxValves=%d but should be >= 0", p.MaxValves)
	}
	return p, nil
}

// AllocationConstraints unmarshals the field-level allocation limits.
func AllocationConstraints(cfg *viper.Viper) (gaslift.AllocationConstraints, error) {
	c, err := Compressor(cfg)
	if err != nil {
		return gaslift.AllocationConstraints{}, err
	}
	return gaslift.AllocationConstraints{
		AvailableGas: cfg.GetFloat64("AvailableGas"),
		MaxPower:     cfg.GetFloat64("MaxPower"),
		Compressor:   c,
		Tolerance:    cfg.GetFloat64("Tolerance"),
	}, nil
}

// checkOutputFile makes sure that the directory of the output file
// exists, and expands any environment variables. An empty path is
// allowed and means no file output.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return f, nil
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		return f, nil
	}
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("gasliftutil: the output directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkReportColumns removes end lines and expands environment
// variables in the report column expressions.
func checkReportColumns(cols map[string]string) map[string]string {
	o := make(map[string]string, len(cols))
	for k, v := range cols {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("gasliftutil: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("gasliftutil: invalid type for %s: %#v", varName, i)
	}
}
