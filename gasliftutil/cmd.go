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


// Package gasliftutil contains the gaslift command-line interface and
// its configuration, output and storage helpers.
package gasliftutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/liftmodel/gaslift"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	wellSets := []*pflag.FlagSet{curveCmd.Flags(), designCmd.Flags()}
	sweepSets := []*pflag.FlagSet{curveCmd.Flags(), designCmd.Flags(), allocateCmd.Flags(), compareCmd.Flags()}
	fieldSets := []*pflag.FlagSet{allocateCmd.Flags(), compareCmd.Flags()}
	compressorSets := []*pflag.FlagSet{designCmd.Flags(), allocateCmd.Flags(), compareCmd.Flags()}

	// Options are the configuration options available to gaslift.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages: one of
              debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile, if set, receives a copy of the log messages.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile, if set, is the location of an xlsx workbook
              with the results. It can be a local path or a blob storage
              location such as s3://bucket/results.xlsx.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   sweepSets,
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile, if set, is the location of a plot of the
              performance curves. The image format is taken from the
              extension (.png, .svg, .pdf, .eps).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{curveCmd.Flags(), designCmd.Flags(), allocateCmd.Flags()},
		},
		{
			name: "Well.Name",
			usage: `
              Well.Name is a label for the well.`,
			defaultVal: "well",
			flagsets:   wellSets,
		},
		{
			name: "Well.ReservoirPressure",
			usage: `
              Well.ReservoirPressure is the static reservoir pressure [bar].`,
			defaultVal: 200.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.ReservoirTemperature",
			usage: `
              Well.ReservoirTemperature is the reservoir temperature [K].`,
			defaultVal: 360.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.WellheadPressure",
			usage: `
              Well.WellheadPressure is the flowing wellhead pressure [bar].`,
			defaultVal: 15.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.WellheadTemperature",
			usage: `
              Well.WellheadTemperature is the flowing wellhead temperature [K].`,
			defaultVal: 310.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.Depth",
			usage: `
              Well.Depth is the true vertical depth of the well [m].`,
			defaultVal: 2000.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.TubingDiameter",
			usage: `
              Well.TubingDiameter is the tubing internal diameter [m].`,
			defaultVal: 0.062,
			flagsets:   wellSets,
		},
		{
			name: "Well.TubingRoughness",
			usage: `
              Well.TubingRoughness is the absolute tubing roughness [m].`,
			defaultVal: 1.5e-5,
			flagsets:   wellSets,
		},
		{
			name: "Well.ProductivityIndex",
			usage: `
              Well.ProductivityIndex is the liquid rate per unit drawdown
              [Sm³/d/bar].`,
			defaultVal: 5.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.BubblePointPressure",
			usage: `
              Well.BubblePointPressure is the oil bubble-point pressure [bar].`,
			defaultVal: 150.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.OilDensity",
			usage: `
              Well.OilDensity is the stock-tank oil density [kg/m³].`,
			defaultVal: 850.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.WaterDensity",
			usage: `
              Well.WaterDensity is the produced water density [kg/m³].`,
			defaultVal: 1030.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.GasMolecularWeight",
			usage: `
              Well.GasMolecularWeight is the gas molar mass [g/mol].`,
			defaultVal: 19.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.FormationGOR",
			usage: `
              Well.FormationGOR is the produced gas-oil ratio [Sm³/Sm³].`,
			defaultVal: 50.0,
			flagsets:   wellSets,
		},
		{
			name: "Well.WaterCut",
			usage: `
              Well.WaterCut is the water fraction of the liquid rate.`,
			defaultVal: 0.3,
			flagsets:   wellSets,
		},
		{
			name: "Curve.Steps",
			usage: `
              Curve.Steps is the number of GLR values in a performance
              curve sweep.`,
			defaultVal: gaslift.DefaultCurveSteps,
			flagsets:   sweepSets,
		},
		{
			name: "Curve.Segments",
			usage: `
              Curve.Segments is the number of depth segments in each
              pressure traverse.`,
			defaultVal: gaslift.DefaultSegments,
			flagsets:   sweepSets,
		},
		{
			name: "Fluid",
			usage: `
              Fluid selects the gas compressibility model used in the
              pressure traverse: HallYarborough or LeeKesler.`,
			defaultVal: "HallYarborough",
			flagsets:   sweepSets,
		},
		{
			name: "Design.InjectionPressure",
			usage: `
              Design.InjectionPressure is the surface gas injection
              pressure [bar].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{designCmd.Flags()},
		},
		{
			name: "Design.KillFluidDensity",
			usage: `
              Design.KillFluidDensity is the density of the fluid the
              well is unloaded from [kg/m³].`,
			defaultVal: 1100.0,
			flagsets:   []*pflag.FlagSet{designCmd.Flags()},
		},
		{
			name: "Design.MaxValves",
			usage: `
              Design.MaxValves is the largest number of unloading valves.`,
			defaultVal: gaslift.DefaultMaxValves,
			flagsets:   []*pflag.FlagSet{designCmd.Flags()},
		},
		{
			name: "Compressor.SuctionPressure",
			usage: `
              Compressor.SuctionPressure is the compressor suction pressure [bar].`,
			defaultVal: 10.0,
			flagsets:   compressorSets,
		},
		{
			name: "Compressor.DischargePressure",
			usage: `
              Compressor.DischargePressure is the compressor discharge pressure [bar].`,
			defaultVal: 100.0,
			flagsets:   compressorSets,
		},
		{
			name: "Compressor.Efficiency",
			usage: `
              Compressor.Efficiency is the overall compression efficiency.`,
			defaultVal: 0.75,
			flagsets:   compressorSets,
		},
		{
			name: "Compressor.SuctionTemperature",
			usage: `
              Compressor.SuctionTemperature is the suction temperature [K].
              Zero means standard temperature.`,
			defaultVal: 0.0,
			flagsets:   compressorSets,
		},
		{
			name: "Field",
			usage: `
              Field is the location of a TOML file listing the wells
              that share the lift gas supply.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   fieldSets,
		},
		{
			name: "AvailableGas",
			usage: `
              AvailableGas is the lift gas supply [Sm³/d].`,
			defaultVal: 0.0,
			flagsets:   fieldSets,
		},
		{
			name: "MaxPower",
			usage: `
              MaxPower is the compression power budget [kW]. Zero means
              unlimited.`,
			defaultVal: 0.0,
			flagsets:   fieldSets,
		},
		{
			name: "Tolerance",
			usage: `
              Tolerance is the relative convergence tolerance of the
              iterative allocation methods.`,
			defaultVal: gaslift.DefaultTolerance,
			flagsets:   fieldSets,
		},
		{
			name: "Method",
			usage: `
              Method is the allocation method: EqualSlope, Proportional,
              Sequential or Gradient.`,
			shorthand:  "m",
			defaultVal: gaslift.EqualSlope.String(),
			flagsets:   []*pflag.FlagSet{allocateCmd.Flags()},
		},
		{
			name: "Report.Columns",
			usage: `
              Report.Columns are additional per-well output columns,
              given as a map from column name to an expression of the
              allocation variables GasRate, OilRate, NaturalFlowRate,
              IncrementalOil, MarginalResponse, GasEfficiency and Enabled.
              For example, {"OilBPD": "OilRate * 6.2898"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{allocateCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GASLIFT")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
			case int:
				set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(option.defaultVal)
				set.StringP(option.name, option.shorthand, strings.TrimSpace(b.String()), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(curveCmd)
	Root.AddCommand(designCmd)
	Root.AddCommand(allocateCmd)
	Root.AddCommand(compareCmd)
}

// logFile is the currently open copy of the log, if any.
var logFile *os.File

// setConfig finds and reads in the configuration file, if there is one,
// and configures logging.
func setConfig(cmd *cobra.Command) error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gaslift: problem reading configuration file: %v", err)
		}
	}
	return setLogger(cmd)
}

// setLogger configures the standard logger from the LogLevel and
// LogFile options.
func setLogger(cmd *cobra.Command) error {
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("gaslift: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	var out io.Writer = os.Stderr
	if cmd != nil {
		out = cmd.OutOrStderr()
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if path := Cfg.GetString("LogFile"); path != "" {
		logFile, err = os.Create(os.ExpandEnv(path))
		if err != nil {
			return fmt.Errorf("gaslift: problem creating log file: %v", err)
		}
		out = io.MultiWriter(out, logFile)
	}
	logrus.SetOutput(out)
	return nil
}

func outputs() (Outputs, error) {
	o, err := checkOutputFile(Cfg.GetString("OutputFile"))
	if err != nil {
		return Outputs{}, err
	}
	p, err := checkOutputFile(Cfg.GetString("PlotFile"))
	if err != nil {
		return Outputs{}, err
	}
	return Outputs{OutputFile: o, PlotFile: p}, nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gaslift",
	Short: "A gas-lift well performance and allocation model.",
	Long: `gaslift models gas-lifted oil wells. It builds well performance curves
from a multiphase pressure traverse, designs unloading valves and compression,
and allocates a limited lift gas supply across a field of wells.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GASLIFT_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_'.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return setConfig(cmd) },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of gaslift.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gaslift v%s\n", gaslift.Version)
	},
	DisableAutoGenTag: true,
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Build a well performance curve",
	Long: `curve sweeps the total gas-liquid ratio of the well described by the
Well.* options and prints the resulting oil rate versus injected gas,
the natural flow rate and the optimum.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := WellConfig(Cfg)
		if err != nil {
			return err
		}
		b, err := CurveBuilder(Cfg)
		if err != nil {
			return err
		}
		out, err := outputs()
		if err != nil {
			return err
		}
		return Curve(context.Background(), cmd.OutOrStdout(), logrus.StandardLogger(), w, b, out)
	},
	DisableAutoGenTag: true,
}

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Design gas lift for a single well",
	Long: `design builds the performance curve of the well described by the Well.*
options, places unloading valves for the optimal operating point and
sizes the compression needed to supply the optimal gas rate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := WellConfig(Cfg)
		if err != nil {
			return err
		}
		b, err := CurveBuilder(Cfg)
		if err != nil {
			return err
		}
		p, err := DesignParameters(Cfg)
		if err != nil {
			return err
		}
		out, err := outputs()
		if err != nil {
			return err
		}
		return Design(context.Background(), cmd.OutOrStdout(), logrus.StandardLogger(), w, b, p, out)
	},
	DisableAutoGenTag: true,
}

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate lift gas across a field",
	Long: `allocate distributes the available lift gas across the wells in the
Field file using the allocation method given by the Method option,
subject to each well's bounds and the compression power budget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, b, c, err := fieldConfig()
		if err != nil {
			return err
		}
		m, err := gaslift.ParseMethod(Cfg.GetString("Method"))
		if err != nil {
			return err
		}
		cols, err := GetStringMapString("Report.Columns", Cfg)
		if err != nil {
			return err
		}
		out, err := outputs()
		if err != nil {
			return err
		}
		return Allocate(context.Background(), cmd.OutOrStdout(), logrus.StandardLogger(), f, b, c, m,
			checkReportColumns(cols), out)
	},
	DisableAutoGenTag: true,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare allocation methods",
	Long: `compare runs every allocation method on the wells in the Field file
and prints the field totals of each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, b, c, err := fieldConfig()
		if err != nil {
			return err
		}
		out, err := outputs()
		if err != nil {
			return err
		}
		return Compare(context.Background(), cmd.OutOrStdout(), logrus.StandardLogger(), f, b, c, out)
	},
	DisableAutoGenTag: true,
}

func fieldConfig() (*Field, gaslift.CurveBuilder, gaslift.AllocationConstraints, error) {
	var b gaslift.CurveBuilder
	var c gaslift.AllocationConstraints
	f, err := loadFieldFile(Cfg.GetString("Field"))
	if err != nil {
		return nil, b, c, err
	}
	if b, err = CurveBuilder(Cfg); err != nil {
		return nil, b, c, err
	}
	if c, err = AllocationConstraints(Cfg); err != nil {
		return nil, b, c, err
	}
	return f, b, c, nil
}
