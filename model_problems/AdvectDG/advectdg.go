// Package AdvectDG solves the steady DG advection model problem on a 1D
// mesh: velocity -1, manufactured solution u(x)=exp(x) with source
// f(x)=-exp(x) and inflow data prescribed weakly through the upwind flux.
package AdvectDG

import (
	"fmt"
	"math"

	"github.com/notargets/gofea/assembly"
	"github.com/notargets/gofea/element"
	"github.com/notargets/gofea/fespace"
	"github.com/notargets/gofea/integrators"
	"github.com/notargets/gofea/mesh"
	"github.com/notargets/gofea/quadrature"
	"github.com/notargets/gofea/solvers"
	"github.com/notargets/gofea/utils"
)

type AdvectDG struct {
	// Input parameters
	XMax      float64
	N, K      int
	SrcDegree int // quadrature degree override for the source term, 0 derives
	Solver    solvers.Config
	Verbose   bool

	Mesh  *mesh.Mesh
	Space *fespace.Space
	U     utils.Vector
	Rep   solvers.Report
}

func NewAdvectDG(XMax float64, N, K int, cfg solvers.Config) (c *AdvectDG, err error) {
	if XMax == 0 {
		XMax = 1
	}
	c = &AdvectDG{
		XMax:   XMax,
		N:      N,
		K:      K,
		Solver: cfg,
	}
	if c.Mesh, err = mesh.SegmentMesh(0, XMax, K); err != nil {
		return nil, err
	}
	if c.Space, err = fespace.NewSpace(c.Mesh, N, fespace.L2); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *AdvectDG) Velocity() element.VectorCoefficient {
	return element.ConstantVectorCoefficient{-1}
}

func (c *AdvectDG) Exact() element.FunctionCoefficient {
	return func(x []float64) float64 { return math.Exp(x[0]) }
}

func (c *AdvectDG) Source() element.FunctionCoefficient {
	return func(x []float64) float64 { return -math.Exp(x[0]) }
}

// Solve assembles the transposed advection operator with upwind face
// couplings and solves the resulting nonsymmetric system.
func (c *AdvectDG) Solve() (err error) {
	var (
		sp  = c.Space
		vel = c.Velocity()
	)
	bf := assembly.NewBilinearForm(sp)
	bf.AddDomainIntegrator(integrators.Transpose(
		integrators.NewAdvectionIntegrator(vel, -1)))
	// The upwind face kernel already couples the trial side against the
	// adjoint test convention, so only the domain term is transposed.
	upwind := integrators.NewUpwindFaceIntegrator(vel)
	bf.AddInteriorFaceIntegrator(upwind)
	bf.AddBoundaryFaceIntegrator(upwind, nil)
	if err = bf.Assemble(); err != nil {
		return err
	}

	lf := assembly.NewLinearForm(sp)
	src := integrators.NewSourceIntegrator(c.Source())
	src.Degree = c.SrcDegree
	lf.AddDomainIntegrator(src)
	lf.AddBoundaryFaceIntegrator(
		integrators.NewBoundaryFlowIntegrator(c.Exact(), vel), nil)
	if err = lf.Assemble(); err != nil {
		return err
	}

	if c.Verbose {
		fmt.Printf("AdvectDG: N=%d, K=%d, ndofs=%d, solving with %v\n",
			c.N, c.K, sp.NumDofs(), c.Solver.Method)
	}
	c.U, c.Rep, err = solvers.Solve(bf.SpMat(), lf.Vector(),
		utils.NewVector(sp.NumDofs()), c.Solver)
	if err != nil {
		return err
	}
	if c.Verbose {
		fmt.Printf("AdvectDG: converged in %d iterations, residual %v\n",
			c.Rep.Iterations, c.Rep.ResidualNorm)
	}
	return nil
}

// L2Error integrates (u_h - exp(x))^2 over the mesh with a rule two degrees
// past the approximation order.
func (c *AdvectDG) L2Error() (e float64, err error) {
	var (
		sp    = c.Space
		m     = c.Mesh
		exact = c.Exact()
	)
	for k := 0; k < m.NumElements(); k++ {
		tr, err := m.ElemTransformation(k)
		if err != nil {
			return 0, err
		}
		b := sp.ElemBasis(k)
		rule, err := quadrature.Get(tr.Geom, 2*b.Order()+2)
		if err != nil {
			return 0, err
		}
		dofs := sp.ElemDofs(k)
		for q, ip := range rule.Points {
			var (
				s  = b.CalcShape(ip)
				uh float64
			)
			for i, g := range dofs {
				uh += s.AtVec(i) * c.U.AtVec(g)
			}
			d := uh - exact(tr.Transform(ip))
			e += rule.Weights[q] * tr.Weight(ip) * d * d
		}
	}
	return math.Sqrt(e), nil
}
