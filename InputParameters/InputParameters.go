package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofea/solvers"
)

// Parameters obtained from the YAML input file
type FEAParameters struct {
	Title              string  `yaml:"Title"`
	PolynomialOrder    int     `yaml:"PolynomialOrder"`
	MeshK              int     `yaml:"MeshK"` // elements per direction
	Dimension          int     `yaml:"Dimension"`
	XMax               float64 `yaml:"XMax"`
	TimeScale          float64 `yaml:"TimeScale"` // distance problem diffusion scale
	StaticCondensation bool    `yaml:"StaticCondensation"`
	SolverType         string  `yaml:"SolverType"` // CG, GMRES or LU
	Preconditioner     string  `yaml:"Preconditioner"`
	Tolerance          float64 `yaml:"Tolerance"`
	MaxIterations      int     `yaml:"MaxIterations"`
}

func (ip *FEAParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *FEAParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t= Mesh K\n", ip.MeshK)
	fmt.Printf("[%d]\t\t\t= Dimension\n", ip.Dimension)
	fmt.Printf("%8.5f\t\t= XMax\n", ip.XMax)
	fmt.Printf("%8.5f\t\t= TimeScale\n", ip.TimeScale)
	fmt.Printf("[%v]\t\t\t= Static Condensation\n", ip.StaticCondensation)
	fmt.Printf("[%s]\t\t\t= Solver Type\n", ip.SolverType)
	fmt.Printf("[%s]\t\t\t= Preconditioner\n", ip.Preconditioner)
	fmt.Printf("%8.1e\t\t= Tolerance\n", ip.Tolerance)
	fmt.Printf("[%d]\t\t\t= Max Iterations\n", ip.MaxIterations)
}

// SolverConfig maps the string-typed YAML fields onto a solver Config.
func (ip *FEAParameters) SolverConfig() (cfg solvers.Config, err error) {
	switch strings.ToUpper(ip.SolverType) {
	case "", "CG":
		cfg.Method = solvers.CG
	case "GMRES":
		cfg.Method = solvers.GMRES
	case "LU", "DIRECT":
		cfg.Method = solvers.DirectLU
	default:
		return cfg, fmt.Errorf("unknown solver type [%s]", ip.SolverType)
	}
	switch strings.ToUpper(ip.Preconditioner) {
	case "", "NONE":
		cfg.Precon = solvers.None
	case "JACOBI", "DIAGONAL":
		cfg.Precon = solvers.Jacobi
	case "GS", "GAUSSSEIDEL":
		cfg.Precon = solvers.GaussSeidel
	default:
		return cfg, fmt.Errorf("unknown preconditioner [%s]", ip.Preconditioner)
	}
	cfg.Tolerance = ip.Tolerance
	cfg.MaxIterations = ip.MaxIterations
	return cfg, nil
}
