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

	"github.com/notargets/oilspill/mesh"
)

// InspectCmd represents the inspect command
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Read a Gmsh mesh, calculate its geometry and print statistics",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			meshFile, fluxLabel string
			coefficient         float64
		)
		meshFile, _ = cmd.Flags().GetString("mesh")
		fluxLabel, _ = cmd.Flags().GetString("fluxType")
		coefficient, _ = cmd.Flags().GetFloat64("diffusivity")
		_, err = Inspect(meshFile, fluxLabel, coefficient)
		return
	},
}

func init() {
	rootCmd.AddCommand(InspectCmd)
	InspectCmd.Flags().StringP("mesh", "m", "", "Gmsh 2.2 mesh file to inspect")
	InspectCmd.Flags().String("fluxType", "diffusion", "flux used for the stable time step estimate")
	InspectCmd.Flags().Float64("diffusivity", 1, "flux coefficient used for the stable time step estimate")
}

// Inspect loads the mesh, cross checks its connectivity and prints statistics
func Inspect(meshFile, fluxLabel string, coefficient float64) (m *mesh.Mesh, err error) {
	var (
		ft mesh.FluxType
	)
	if len(meshFile) == 0 {
		return nil, fmt.Errorf("must supply a mesh file (-m, --mesh) in Gmsh 2.2 format")
	}
	if ft, err = mesh.NewFluxType(fluxLabel); err != nil {
		return
	}
	if m, err = mesh.NewMesh(meshFile, mesh.DefaultCellFactory()); err != nil {
		return
	}
	if err = m.CalculateGeometry(); err != nil {
		return
	}
	if err = m.CheckConnectivity(); err != nil {
		return
	}
	m.Kernel = ft.Kernel(coefficient)
	m.PrintStatistics()
	fmt.Printf("  Connectivity: edge index agrees with node incidence\n")
	fmt.Printf("  Stable time step (%s, %g): %11.4e\n", ft.Print(), coefficient, m.MaxStableTimeStep())
	return
}
