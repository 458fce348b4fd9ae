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
)

// ErrInvalidProductivityIndex is returned when a well's productivity
// index is not positive.
var ErrInvalidProductivityIndex = errors.New("gaslift: productivity index must be > 0")

// WellConfig holds the reservoir, fluid and completion properties of
// a single well. Pressures are absolute [bar], temperatures are
// absolute [K], lengths are in metres and rates are in Sm³/d.
type WellConfig struct {
	Name string

	ReservoirPressure    float64 // [bar]
	ReservoirTemperature float64 // [K]
	WellheadPressure     float64 // [bar]
	WellheadTemperature  float64 // [K]

	// Depth is the true vertical depth of the producing interval [m].
	Depth float64

	TubingDiameter  float64 // internal diameter [m]
	TubingRoughness float64 // absolute roughness [m]

	// ProductivityIndex is the liquid rate per unit drawdown
	// [Sm³/d/bar].
	ProductivityIndex float64

	BubblePointPressure float64 // [bar]
	OilDensity          float64 // stock-tank oil density [kg/m³]
	WaterDensity        float64 // [kg/m³]
	GasMolecularWeight  float64 // [g/mol]

	// FormationGOR is the gas-liquid ratio produced by the formation
	// without lift gas [Sm³/Sm³].
	FormationGOR float64

	// WaterCut is the water fraction of the produced liquid.
	WaterCut float64
}

// ConfigError reports an invalid WellConfig field.
type ConfigError struct {
	Well  string
	Field string
	Value float64
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err == ErrInvalidProductivityIndex {
		return fmt.Sprintf("%v (well %q has %g)", e.Err, e.Well, e.Value)
	}
	return fmt.Sprintf("gaslift: well %q: invalid %s %g: %v", e.Well, e.Field, e.Value, e.Err)
}

var (
	errNotPositive = errors.New("must be > 0")
	errNegative    = errors.New("must be >= 0")
	errFraction    = errors.New("must be within [0, 1]")
)

// Validate checks the physical invariants of the configuration. It
// does not check whether the well can flow; an unproductive well is
// valid and simply has zero natural flow.
func (w *WellConfig) Validate() error {
	if !(w.ProductivityIndex > 0) {
		return &ConfigError{Well: w.Name, Field: "ProductivityIndex", Value: w.ProductivityIndex, Err: ErrInvalidProductivityIndex}
	}
	if !(w.WaterCut >= 0 && w.WaterCut <= 1) {
		return &ConfigError{Well: w.Name, Field: "WaterCut", Value: w.WaterCut, Err: errFraction}
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"ReservoirPressure", w.ReservoirPressure},
		{"ReservoirTemperature", w.ReservoirTemperature},
		{"WellheadPressure", w.WellheadPressure},
		{"WellheadTemperature", w.WellheadTemperature},
		{"Depth", w.Depth},
		{"TubingDiameter", w.TubingDiameter},
		{"BubblePointPressure", w.BubblePointPressure},
		{"OilDensity", w.OilDensity},
		{"WaterDensity", w.WaterDensity},
		{"GasMolecularWeight", w.GasMolecularWeight},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return &ConfigError{Well: w.Name, Field: p.name, Value: p.v, Err: errNotPositive}
		}
	}
	if !(w.TubingRoughness >= 0) {
		return &ConfigError{Well: w.Name, Field: "TubingRoughness", Value: w.TubingRoughness, Err: errNegative}
	}
	if !(w.FormationGOR >= 0) {
		return &ConfigError{Well: w.Name, Field: "FormationGOR", Value: w.FormationGOR, Err: errNegative}
	}
	return nil
}

// Is allows errors.Is(err, ErrInvalidProductivityIndex) to match.
func (e *ConfigError) Is(target error) bool { return e.Err == target }

// temperatureAt returns the linearly interpolated temperature at the
// given depth.
func (w *WellConfig) temperatureAt(depth float64) float64 {
	return w.WellheadTemperature + (w.ReservoirTemperature-w.WellheadTemperature)*depth/w.Depth
}
