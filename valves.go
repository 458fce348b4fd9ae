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

// Unloading design constants.
const (
	DefaultMaxValves = 8

	injectionSafetyFactor = 0.9
	valvePressureDrop     = 1.5  // [bar] per valve position
	minValveSpacing       = 50.0 // [m]
	operatingDepthFrac    = 0.95
)

// ErrInsufficientInjectionPressure is returned when the available
// injection pressure cannot exceed wellhead pressure, so no valve
// can be placed.
var ErrInsufficientInjectionPressure = errors.New("gaslift: injection pressure too low to unload well")

// ValvePosition is one unloading valve in a gas-lift string.
type ValvePosition struct {
	// Number is the valve sequence number; 1 is the shallowest.
	Number int

	Depth           float64 // [m]
	OpeningPressure float64 // surface opening pressure [bar]
	ClosingPressure float64 // surface closing pressure [bar]
	OperatingValve  bool
}

// ValveDesign holds the inputs to an unloading valve design.
type ValveDesign struct {
	WellheadPressure  float64 // [bar]
	Depth             float64 // well depth [m]
	InjectionPressure float64 // surface injection pressure [bar]

	// KillFluidDensity [kg/m³] sets the gradient for placing the first
	// valve.
	KillFluidDensity float64

	// ProductionGradient [bar/m] is the flowing gradient above each
	// unloaded valve.
	ProductionGradient float64

	// MaxValves is the largest number of valves. Zero means
	// DefaultMaxValves.
	MaxValves int
}

// Valves returns the unloading valve positions from the top down.
// Each valve is placed where the injection pressure available at that
// position balances the flowing tubing pressure at the valve above plus
// a kill-fluid column between them. The design stops at the first
// valve at or below 95% of well depth, or at MaxValves; the last valve
// is the operating valve.
func (d ValveDesign) Valves() ([]ValvePosition, error) {
	if !(d.Depth > 0) || !(d.KillFluidDensity > 0) || d.ProductionGradient < 0 {
		return nil, fmt.Errorf("gaslift: invalid valve design: depth %g, kill fluid density %g, production gradient %g",
			d.Depth, d.KillFluidDensity, d.ProductionGradient)
	}
	if d.MaxValves < 0 {
		return nil, fmt.Errorf("gaslift: invalid valve design: maximum number of valves %d is negative", d.MaxValves)
	}
	maxValves := d.MaxValves
	if maxValves == 0 {
		maxValves = DefaultMaxValves
	}
	available := injectionSafetyFactor * d.InjectionPressure
	if available <= d.WellheadPressure {
		return nil, ErrInsufficientInjectionPressure
	}
	killGradient := d.KillFluidDensity * g / barToPa

	var valves []ValvePosition
	depth := 0.0
	tubing := d.WellheadPressure
	for n := 1; n <= maxValves; n++ {
		open := available - valvePressureDrop*float64(n-1)
		spacing := (open - tubing) / killGradient
		if n > 1 && spacing < minValveSpacing {
			spacing = minValveSpacing
		}
		depth += spacing
		v := ValvePosition{
			Number:          n,
			Depth:           depth,
			OpeningPressure: open,
			ClosingPressure: open - valvePressureDrop,
		}
		if depth >= operatingDepthFrac*d.Depth {
			if v.Depth > d.Depth {
				v.Depth = d.Depth
			}
			v.OperatingValve = true
			valves = append(valves, v)
			break
		}
		valves = append(valves, v)
		tubing = d.WellheadPressure + d.ProductionGradient*depth
	}
	valves[len(valves)-1].OperatingValve = true
	return valves, nil
}
