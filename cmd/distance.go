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

	"github.com/spf13/cobra"

	"github.com/notargets/gofea/InputParameters"
	"github.com/notargets/gofea/mesh"
	"github.com/notargets/gofea/model_problems/DistanceFn"
	"github.com/notargets/gofea/solvers"
)

// distanceCmd represents the distance command
var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Distance function by the Varadhan transform",
	Long: `
Solves (M + t K) w = 0 with w = 1 on the boundary and reports the error of
u = -sqrt(t) log(w) against the exact distance on the unit segment or square,

gofea distance -n 3 -k 16 --dim 1 -t 0.01`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := distanceParams(cmd)
		cfg, err := ip.SolverConfig()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		ip.Print()

		var m *mesh.Mesh
		if ip.Dimension == 2 {
			m, err = mesh.QuadMesh(0, 1, 0, 1, ip.MeshK, ip.MeshK)
		} else {
			m, err = mesh.SegmentMesh(0, 1, ip.MeshK)
		}
		if err == nil {
			err = runDistance(m, ip, cfg)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func runDistance(m *mesh.Mesh, ip *InputParameters.FEAParameters,
	cfg solvers.Config) error {
	c, err := DistanceFn.NewDistanceFn(m, ip.PolynomialOrder, ip.TimeScale, cfg)
	if err != nil {
		return err
	}
	c.Condense = ip.StaticCondensation
	c.Verbose = true
	if err = c.Solve(); err != nil {
		return err
	}
	exact := DistanceFn.ExactSegment(1)
	if ip.Dimension == 2 {
		exact = DistanceFn.ExactUnitQuad()
	}
	l1, linf, err := c.Errors(exact)
	if err != nil {
		return err
	}
	fmt.Printf("L1 error = %8.5f, Linf error = %8.5f\n", l1, linf)
	return nil
}

func distanceParams(cmd *cobra.Command) (ip *InputParameters.FEAParameters) {
	ip = &InputParameters.FEAParameters{Title: "Distance Function"}
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		data, err := os.ReadFile(input)
		if err == nil {
			err = ip.Parse(data)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		return ip
	}
	ip.PolynomialOrder, _ = cmd.Flags().GetInt("n")
	ip.MeshK, _ = cmd.Flags().GetInt("k")
	ip.Dimension, _ = cmd.Flags().GetInt("dim")
	ip.TimeScale, _ = cmd.Flags().GetFloat64("t")
	ip.StaticCondensation, _ = cmd.Flags().GetBool("sc")
	ip.SolverType, _ = cmd.Flags().GetString("solver")
	ip.Preconditioner = "Jacobi"
	ip.Tolerance, _ = cmd.Flags().GetFloat64("tol")
	ip.MaxIterations, _ = cmd.Flags().GetInt("maxiter")
	return ip
}

func init() {
	rootCmd.AddCommand(distanceCmd)
	distanceCmd.Flags().IntP("n", "n", 2, "polynomial degree")
	distanceCmd.Flags().IntP("k", "k", 16, "number of elements per direction")
	distanceCmd.Flags().Int("dim", 1, "mesh dimension: 1 = unit segment, 2 = unit square")
	distanceCmd.Flags().Float64P("t", "t", 0.01, "diffusion time scale")
	distanceCmd.Flags().Bool("sc", false, "statically condense element interior dofs")
	distanceCmd.Flags().String("solver", "CG", "solver type: CG or LU")
	distanceCmd.Flags().Float64("tol", 1.e-12, "relative residual tolerance")
	distanceCmd.Flags().Int("maxiter", 2000, "iteration cap")
	distanceCmd.Flags().String("input", "", "YAML input parameter file, overrides flags")
}
