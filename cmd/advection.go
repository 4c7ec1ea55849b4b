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
	"github.com/notargets/gofea/model_problems/AdvectDG"
)

// advectionCmd represents the advection command
var advectionCmd = &cobra.Command{
	Use:   "advection",
	Short: "Steady DG advection with upwind fluxes",
	Long: `
Solves the steady advection equation with velocity -1 on a 1D DG mesh
against the manufactured solution u(x) = exp(x),

gofea advection -n 2 -k 8`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := advectionParams(cmd)
		cfg, err := ip.SolverConfig()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		ip.Print()

		c, err := AdvectDG.NewAdvectDG(ip.XMax, ip.PolynomialOrder, ip.MeshK, cfg)
		if err == nil {
			c.Verbose = true
			err = c.Solve()
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		e, err := c.L2Error()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("L2 error = %10.3e\n", e)
	},
}

func advectionParams(cmd *cobra.Command) (ip *InputParameters.FEAParameters) {
	ip = &InputParameters.FEAParameters{Title: "DG Advection"}
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
	ip.Dimension = 1
	ip.XMax, _ = cmd.Flags().GetFloat64("xMax")
	ip.SolverType, _ = cmd.Flags().GetString("solver")
	ip.Preconditioner = "GS"
	ip.Tolerance, _ = cmd.Flags().GetFloat64("tol")
	ip.MaxIterations, _ = cmd.Flags().GetInt("maxiter")
	return ip
}

func init() {
	rootCmd.AddCommand(advectionCmd)
	advectionCmd.Flags().IntP("n", "n", 2, "polynomial degree")
	advectionCmd.Flags().IntP("k", "k", 8, "number of elements")
	advectionCmd.Flags().Float64("xMax", 1, "right end of the domain")
	advectionCmd.Flags().String("solver", "GMRES", "solver type: GMRES or LU")
	advectionCmd.Flags().Float64("tol", 1.e-12, "relative residual tolerance")
	advectionCmd.Flags().Int("maxiter", 1000, "iteration cap")
	advectionCmd.Flags().String("input", "", "YAML input parameter file, overrides flags")
}
