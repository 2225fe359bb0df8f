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
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var settingsFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oilspill",
	Short: "Oil transport on unstructured 2D triangle meshes",
	Long: `Simulates the spreading of an oil spill over a triangulated 2D domain read from a Gmsh file,
and reports the amount of oil inside a fishing area over time.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "",
		"settings file with run defaults (default is $HOME/.oilspill.yaml)")
}

// initConfig reads in the settings file and ENV variables if set.
func initConfig() {
	if settingsFile != "" {
		// Use settings file from the flag.
		viper.SetConfigFile(settingsFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search settings in home directory with name ".oilspill" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".oilspill")
	}
	viper.SetEnvPrefix("oilspill")
	viper.AutomaticEnv() // read in environment variables that match

	// If a settings file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using settings file:", viper.ConfigFileUsed())
	}
}
