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
	"fmt"
	"math"
)

const (
	// PolytropicExponent is the polytropic exponent of lift gas
	// compression.
	PolytropicExponent = 1.3

	// MaxStageRatio is the largest pressure ratio per compression stage.
	MaxStageRatio = 4.0

	// isothermalFactor converts a standard gas rate [Sm³/d] into
	// flow work at standard pressure [kW].
	isothermalFactor = StandardPressure * barToPa / secondsPerDay / 1000
)

// Compressor describes the lift-gas compression service.
type Compressor struct {
	SuctionPressure   float64 // [bar]
	DischargePressure float64 // [bar]

	// Efficiency is the overall compression efficiency in (0, 1].
	Efficiency float64

	// SuctionTemperature [K]. Zero means StandardTemperature.
	SuctionTemperature float64
}

// Validate checks that the compressor can be evaluated.
func (c Compressor) Validate() error {
	if !(c.SuctionPressure > 0) || !(c.DischargePressure > 0) {
		return fmt.Errorf("gaslift: compressor pressures must be > 0, got suction %g and discharge %g",
			c.SuctionPressure, c.DischargePressure)
	}
	if !(c.Efficiency > 0 && c.Efficiency <= 1) {
		return fmt.Errorf("gaslift: compressor efficiency must be within (0, 1], got %g", c.Efficiency)
	}
	return nil
}

// Ratio returns the overall compression ratio.
func (c Compressor) Ratio() float64 { return c.DischargePressure / c.SuctionPressure }

// Stages returns the number of equal-ratio stages needed to keep each
// stage at or below MaxStageRatio.
func (c Compressor) Stages() int {
	r := c.Ratio()
	if r <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log(r)/math.Log(MaxStageRatio) - 1e-12))
}

func (c Compressor) suctionTemperature() float64 {
	if c.SuctionTemperature == 0 {
		return StandardTemperature
	}
	return c.SuctionTemperature
}

// PolytropicPower returns the shaft power [kW] needed to compress the
// given gas rate [Sm³/d], summed over equal-ratio stages with
// intercooling back to suction temperature.
func (c Compressor) PolytropicPower(rate float64) float64 {
	r := c.Ratio()
	if r <= 1 || rate <= 0 {
		return 0
	}
	n := PolytropicExponent
	stages := float64(c.Stages())
	stageRatio := math.Pow(r, 1/stages)
	head := n / (n - 1) * (math.Pow(stageRatio, (n-1)/n) - 1)
	return stages * isothermalFactor * rate * c.suctionTemperature() / StandardTemperature * head / c.Efficiency
}

// IsothermalPower returns the isothermal approximation of compression
// power [kW] for the given gas rate [Sm³/d]: k·Q·ln(P2/P1)/η.
func (c Compressor) IsothermalPower(rate float64) float64 {
	r := c.Ratio()
	if r <= 1 || rate <= 0 {
		return 0
	}
	return isothermalFactor * rate * math.Log(r) / c.Efficiency
}

// MaxRateForPower inverts IsothermalPower, returning the largest gas
// rate [Sm³/d] that can be compressed with the given power [kW]. It is
// +Inf when no compression is needed.
func (c Compressor) MaxRateForPower(power float64) float64 {
	r := c.Ratio()
	if r <= 1 {
		return math.Inf(1)
	}
	if power <= 0 {
		return 0
	}
	return power * c.Efficiency / (isothermalFactor * math.Log(r))
}
