// Package DistanceFn computes an approximate distance-to-boundary field by
// the Varadhan transform: solve the screened Poisson problem
// (M + t K) w = 0 with w = 1 on the boundary, then u = -sqrt(t) * log(w).
// As t -> 0 the field u converges to the true distance function.
package DistanceFn

import (
	"fmt"
	"math"

	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/element"
	"github.com/notargets/gofea/fespace"
	"github.com/notargets/gofea/integrators"
	"github.com/notargets/gofea/mesh"
	"github.com/notargets/gofea/solvers"
	"github.com/notargets/gofea/utils"
)

type DistanceFn struct {
	// Input parameters
	T        float64 // diffusion time scale
	N        int
	Condense bool
	Solver   solvers.Config
	Verbose  bool

	Mesh  *mesh.Mesh
	Space *fespace.Space
	W, U  utils.Vector
	Rep   solvers.Report
}

func NewDistanceFn(m *mesh.Mesh, N int, t float64, cfg solvers.Config) (c *DistanceFn, err error) {
	c = &DistanceFn{
		T:      t,
		N:      N,
		Mesh:   m,
		Solver: cfg,
	}
	if c.Space, err = fespace.NewSpace(m, N, fespace.H1); err != nil {
		return nil, err
	}
	return c, nil
}

// Solve assembles (M + t K), eliminates the all-boundary essential dofs with
// w = 1 and solves, optionally through static condensation of the element
// interior dofs.
func (c *DistanceFn) Solve() (err error) {
	var (
		sp   = c.Space
		m    = c.Mesh
		ndof = sp.NumDofs()
	)
	bf := assembly.NewBilinearForm(sp)
	bf.AddDomainIntegrator(integrators.NewMassIntegrator(element.ConstantCoefficient(1)))
	bf.AddDomainIntegrator(integrators.NewDiffusionIntegrator(element.ConstantCoefficient(c.T)))
	if err = bf.Assemble(); err != nil {
		return err
	}
	lf := assembly.NewLinearForm(sp)
	if err = lf.Assemble(); err != nil {
		return err
	}

	allBdr := make([]bool, m.MaxBdryAttr())
	for i := range allBdr {
		allBdr[i] = true
	}
	var (
		ess = sp.EssentialDofs(allBdr)
		wBC = utils.NewVector(ndof)
	)
	for _, e := range ess {
		wBC.Set(e, 1)
	}
	Ae, be := assembly.FormLinearSystem(bf.SpMat(), lf.Vector(), ess, wBC)

	if c.Verbose {
		fmt.Printf("DistanceFn: N=%d, ndofs=%d, t=%v, condense=%v\n",
			c.N, ndof, c.T, c.Condense)
	}
	var x utils.Vector
	if c.Condense {
		sc, err := assembly.NewStaticCondensation(bf)
		if err != nil {
			return err
		}
		S, br, err := sc.ReduceSystem(Ae, be)
		if err != nil {
			return err
		}
		xr, rep, err := solvers.Solve(S, br, utils.NewVector(sp.NumExposedDofs()), c.Solver)
		if err != nil {
			return err
		}
		c.Rep = rep
		if x, err = sc.ComputeSolution(xr); err != nil {
			return err
		}
	} else {
		if x, c.Rep, err = solvers.Solve(Ae, be, utils.NewVector(ndof), c.Solver); err != nil {
			return err
		}
	}
	assembly.RecoverSolution(x, ess, wBC)
	c.W = x

	// Varadhan transform; clamp w away from zero so far-field round-off
	// cannot produce infinities
	st := math.Sqrt(c.T)
	c.U = c.W.Copy().Apply(func(w float64) float64 {
		if w < 1.e-300 {
			w = 1.e-300
		}
		return -st * math.Log(w)
	})
	if c.Verbose {
		fmt.Printf("DistanceFn: solved in %d iterations, residual %v, umax %v\n",
			c.Rep.Iterations, c.Rep.ResidualNorm, c.U.Max())
	}
	return nil
}

// ExactSegment is the distance to the ends of [0, xmax].
func ExactSegment(xmax float64) element.FunctionCoefficient {
	return func(x []float64) float64 {
		return math.Min(x[0], xmax-x[0])
	}
}

// ExactUnitQuad is the distance to the boundary of the unit square.
func ExactUnitQuad() element.FunctionCoefficient {
	return func(x []float64) float64 {
		return math.Min(math.Min(x[0], 1-x[0]), math.Min(x[1], 1-x[1]))
	}
}

// Errors compares the computed field with an exact distance at the nodal
// points, returning mean absolute and max errors.
func (c *DistanceFn) Errors(exact element.Coefficient) (l1, linf float64, err error) {
	var (
		sp    = c.Space
		m     = c.Mesh
		count int
		seen  = make(map[int]bool)
	)
	for k := 0; k < m.NumElements(); k++ {
		tr, err := m.ElemTransformation(k)
		if err != nil {
			return 0, 0, err
		}
		b := sp.ElemBasis(k)
		for i, g := range sp.ElemDofs(k) {
			if seen[g] {
				continue
			}
			seen[g] = true
			d := math.Abs(c.U.AtVec(g) - exact.Eval(tr, b.NodalPoint(i)))
			l1 += d
			count++
			if d > linf {
				linf = d
			}
		}
	}
	return l1 / float64(count), linf, nil
}
