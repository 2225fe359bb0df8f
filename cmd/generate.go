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

	"github.com/spf13/cobra"

	"github.com/notargets/oilspill/readfiles"
)

type GenerateOptions struct {
	OutputFile             string
	NX, NY                 int
	XMin, XMax, YMin, YMax float64
}

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a triangulated rectangle as a Gmsh 2.2 mesh file",
	Long: `Write a triangulated rectangle as a Gmsh 2.2 mesh file. Each of the nx by ny quads is split into two
triangles; the corners and the perimeter are written as point and line elements.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		opts := &GenerateOptions{}
		opts.OutputFile, _ = cmd.Flags().GetString("output")
		opts.NX, _ = cmd.Flags().GetInt("nx")
		opts.NY, _ = cmd.Flags().GetInt("ny")
		opts.XMin, _ = cmd.Flags().GetFloat64("xmin")
		opts.XMax, _ = cmd.Flags().GetFloat64("xmax")
		opts.YMin, _ = cmd.Flags().GetFloat64("ymin")
		opts.YMax, _ = cmd.Flags().GetFloat64("ymax")
		return Generate(opts)
	},
}

func init() {
	rootCmd.AddCommand(GenerateCmd)
	GenerateCmd.Flags().StringP("output", "o", "mesh.msh", "mesh file to write")
	GenerateCmd.Flags().Int("nx", 20, "number of quads in x")
	GenerateCmd.Flags().Int("ny", 20, "number of quads in y")
	GenerateCmd.Flags().Float64("xmin", 0, "minimum x")
	GenerateCmd.Flags().Float64("xmax", 1, "maximum x")
	GenerateCmd.Flags().Float64("ymin", 0, "minimum y")
	GenerateCmd.Flags().Float64("ymax", 1, "maximum y")
}

func Generate(opts *GenerateOptions) (err error) {
	var (
		g *readfiles.Grid
	)
	if g, err = readfiles.NewRectangleGrid(opts.NX, opts.NY, opts.XMin, opts.XMax, opts.YMin, opts.YMax); err != nil {
		return
	}
	if err = g.WriteGmshFile(opts.OutputFile); err != nil {
		return
	}
	fmt.Printf("Wrote %d nodes and %d elements to %s\n", len(g.Points), len(g.Prims), opts.OutputFile)
	return
}
