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
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/oilspill/InputParameters"
	"github.com/notargets/oilspill/model_problems/OilSpill"
	"github.com/notargets/oilspill/plotting"
)

type RunOptions struct {
	ConfigFile    string
	Folder        string
	FindAll       bool
	Graph         bool
	Fast          bool
	Profile       bool
	ProfileDir    string
	Width, Height int
	FPS           int
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the oil spill simulation for one config file, or every config file in a folder",
	Long: `Run the oil spill simulation for one config file, or every config file in a folder.
Results are written to <resultsDir>/<config name>_results: frames in images/, the restart file in input/,
the fish area time series as oil_area_time.yaml and oil_area_time.png, and oil.avi when frames are written.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := &RunOptions{}
		opts.ConfigFile, _ = cmd.Flags().GetString("config")
		opts.Folder, _ = cmd.Flags().GetString("folder")
		opts.FindAll, _ = cmd.Flags().GetBool("find-all")
		opts.Graph, _ = cmd.Flags().GetBool("graph")
		opts.Fast, _ = cmd.Flags().GetBool("fast")
		opts.Profile, _ = cmd.Flags().GetBool("profile")
		opts.ProfileDir, _ = cmd.Flags().GetString("profile-dir")
		opts.Width = viper.GetInt("width")
		opts.Height = viper.GetInt("height")
		opts.FPS = viper.GetInt("fps")
		return Run(opts)
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("config", "c", "input.toml", "input config file (.toml, .yaml or .json)")
	RunCmd.Flags().StringP("folder", "f", ".", "folder searched for config files with --find-all")
	RunCmd.Flags().Bool("find-all", false, "run every config file found in the folder")
	RunCmd.Flags().BoolP("graph", "g", false, "display a graph while computing solution")
	RunCmd.Flags().Bool("fast", false, "fast frame rendering, without cell edges")
	RunCmd.Flags().Bool("profile", false, "write a CPU profile")
	RunCmd.Flags().String("profile-dir", ".", "directory the CPU profile is written to")
	RunCmd.Flags().Int("width", 1024, "frame width in pixels")
	RunCmd.Flags().Int("height", 768, "frame height in pixels")
	RunCmd.Flags().Int("fps", 10, "frames per second of the assembled video")
	for _, name := range []string{"width", "height", "fps"} {
		if err := viper.BindPFlag(name, RunCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// Run runs every config file selected by opts, stopping at the first failure
func Run(opts *RunOptions) (err error) {
	var (
		configFiles []string
	)
	if opts.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.ProfileDir), profile.NoShutdownHook).Stop()
	}
	if configFiles, err = opts.ConfigFiles(); err != nil {
		return
	}
	for _, configFile := range configFiles {
		if err = RunOilSpill(opts, configFile); err != nil {
			return fmt.Errorf("%s: %w", configFile, err)
		}
	}
	return
}

// ConfigFiles lists the config files to run, in name order
func (opts *RunOptions) ConfigFiles() (files []string, err error) {
	if !opts.FindAll {
		return []string{opts.ConfigFile}, nil
	}
	if files, err = FindConfigFiles(opts.Folder); err != nil {
		return
	}
	if len(files) == 0 {
		err = fmt.Errorf("no config files found in folder: %s", opts.Folder)
	}
	return
}

// FindConfigFiles returns the TOML, YAML and JSON files directly inside folder
func FindConfigFiles(folder string) (files []string, err error) {
	for _, pattern := range []string{"*.toml", "*.yaml", "*.yml", "*.json"} {
		var matches []string
		if matches, err = filepath.Glob(filepath.Join(folder, pattern)); err != nil {
			return
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return
}

func RunOilSpill(opts *RunOptions, configFile string) (err error) {
	var (
		ip      *InputParameters.OilSpillParameters
		logFile *os.File
		c       *OilSpill.OilSpill
	)
	if ip, err = InputParameters.Load(configFile); err != nil {
		return
	}
	if logFile, err = os.OpenFile(ip.IO.LogName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	defer logFile.Close()
	logger := log.New(io.MultiWriter(os.Stdout, logFile), "", log.LstdFlags)
	logger.Printf("Simulation started for config file: %s", configFile)
	ip.Print()

	if c, err = OilSpill.NewOilSpill(ip, OilSpill.ExperimentName(configFile), logger); err != nil {
		logger.Printf("Simulation failed in state %s: %s", c.State(), err.Error())
		return
	}
	plotters := plotting.Plotters{plotting.NewPNGPlotter(opts.Width, opts.Height, opts.Fast)}
	if opts.Graph {
		plotters = append(plotters, plotting.NewLivePlotter(opts.Width, opts.Height))
	}
	c.Plotter = plotters
	c.Video = plotting.NewMJPEGAssembler(opts.FPS)
	c.Chart = plotting.NewSeriesChart()
	if _, err = c.Solve(); err != nil {
		logger.Printf("Simulation failed in state %s: %s", c.State(), err.Error())
		return
	}
	logger.Printf("Simulation Ended")
	return
}
