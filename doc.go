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

// Package gaslift models gas-lifted oil wells. It computes natural gas
// properties, solves for the operating point of a well from its inflow
// and multiphase outflow performance, builds oil-rate versus injected-gas
// performance curves, designs unloading valve strings and compression,
// and allocates a limited lift gas supply across a field of wells.
//
// Units throughout are bar for pressure, kelvin for temperature, metres
// for length, standard cubic metres per day for rates, kg/m³ for density
// and kW for power.
package gaslift

// Version gives the version number.
const Version = "1.0.0"
