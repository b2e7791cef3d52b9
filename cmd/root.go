/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/meshdecomp/InputParameters"
	"github.com/notargets/meshdecomp/decompose"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meshdecomp",
	Short: "Split a mesh and its fields into partitions and merge them back",
	Long: `
Decomposes a global polyhedral mesh and its cell fields into self contained
partitions, one directory per partition, and merges partition results back
into global fields.

meshdecomp decompose -I input.yaml --total 8
meshdecomp merge -I input.yaml --step 100`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		switch prof := viper.GetString("profile"); prof {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		default:
			return fmt.Errorf("unknown profile %q, want cpu or mem", prof)
		}
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
			profiler = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.meshdecomp.yaml)")
	pf.StringP("inputConditionsFile", "I", "", "YAML file of decomposition parameters")
	pf.StringP("work-dir", "w", "", "directory holding the global mesh and fields")
	pf.StringP("mesh", "m", "", "global mesh name, files are <mesh>_<step>")
	pf.IntP("step", "s", 0, "time step to decompose or merge")
	pf.IntP("total", "n", 0, "number of partitions (default number of CPUs)")
	pf.StringP("type", "t", "", "partition strategy: XYZ, CELLID, GRAPH (METIS) or NONE")
	pf.Int("block", 0, "dofs per cell for higher order fields")
	pf.StringSlice("fields", nil, "field names to decompose or merge")
	pf.String("index-store", "", "index log store: file or pebble")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("profile", "", "write a cpu or mem profile to the current directory")
	for _, key := range []string{"inputConditionsFile", "work-dir", "mesh", "step", "total",
		"type", "block", "fields", "index-store", "log-level", "profile"} {
		if err := viper.BindPFlag(key, pf.Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".meshdecomp" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".meshdecomp")
	}

	viper.SetEnvPrefix("MESHDECOMP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadParameters reads the input file, when one is named, then applies the
// flag, environment and config file overrides
func loadParameters() (dp *InputParameters.DecomposeParameters, err error) {
	var data []byte
	dp = &InputParameters.DecomposeParameters{}
	if path := viper.GetString("inputConditionsFile"); path != "" {
		if data, err = os.ReadFile(path); err != nil {
			return
		}
		if err = dp.Parse(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if viper.IsSet("work-dir") {
		dp.WorkingDir = viper.GetString("work-dir")
	}
	if viper.IsSet("mesh") {
		dp.MeshName = viper.GetString("mesh")
	}
	if viper.IsSet("step") {
		dp.Step = viper.GetInt("step")
	}
	if viper.IsSet("total") {
		dp.Decompose.Total = viper.GetInt("total")
	}
	if viper.IsSet("type") {
		dp.Decompose.Type = viper.GetString("type")
	}
	if viper.IsSet("block") {
		dp.Decompose.Block = viper.GetInt("block")
	}
	if viper.IsSet("fields") {
		dp.Fields = viper.GetStringSlice("fields")
	}
	if viper.IsSet("index-store") {
		dp.IndexStore = viper.GetString("index-store")
	}
	dp.Defaults()
	if err = dp.Validate(); err != nil {
		return nil, err
	}
	return
}

// newContext builds the run context logging to the command's error stream
func newContext(cmd *cobra.Command) (sc *decompose.SimulationContext, err error) {
	var (
		dp     *InputParameters.DecomposeParameters
		logger zerolog.Logger
	)
	if logger, err = decompose.NewLogger(cmd.ErrOrStderr(), viper.GetString("log-level")); err != nil {
		return
	}
	if dp, err = loadParameters(); err != nil {
		return
	}
	if logger.GetLevel() <= zerolog.DebugLevel {
		dp.Print()
	}
	return decompose.NewSimulationContext(dp, logger), nil
}
