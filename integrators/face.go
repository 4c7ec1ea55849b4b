package integrators

import (
	"math"

	"github.com/notargets/gofea/element"
	"github.com/notargets/gofea/quadrature"
	"github.com/notargets/gofea/utils"
)

// FaceIntegrator builds the coupling matrix of a shared face, sized
// (dofA+dofB) square on interior faces and dofA square on boundary faces.
type FaceIntegrator interface {
	AssembleFace(bA, bB *element.Basis, ft *element.FaceTransformation) (utils.Matrix, error)
}

// FaceRHSIntegrator builds a boundary face's load-vector contribution.
type FaceRHSIntegrator interface {
	AssembleFaceRHS(b *element.Basis, ft *element.FaceTransformation) (utils.Vector, error)
}

func faceQuadDegree(bA, bB *element.Basis, ft *element.FaceTransformation) (deg int) {
	if bB != nil {
		deg = ft.ElemA.OrderW()
		if ow := ft.ElemB.OrderW(); ow < deg {
			deg = ow
		}
		pmax := bA.Order()
		if bB.Order() > pmax {
			pmax = bB.Order()
		}
		deg += 2 * pmax
	} else {
		deg = ft.ElemA.OrderW() + 2*bA.Order()
	}
	if bA.Space() == element.SpacePk {
		deg++
	}
	return deg
}

// UpwindFaceIntegrator assembles the standard upwind DG flux
// <u_hat, [v]> across a face. With un the normal velocity out of side A,
// a = un and b = |un|: the (a+b) weight feeds the A-trial blocks and the
// (a-b) weight the B-trial blocks, so exactly one side couples at any
// quadrature point and information always flows downwind.
type UpwindFaceIntegrator struct {
	Velocity element.VectorCoefficient
	Degree   int
}

func NewUpwindFaceIntegrator(v element.VectorCoefficient) *UpwindFaceIntegrator {
	return &UpwindFaceIntegrator{Velocity: v}
}

func (ui *UpwindFaceIntegrator) AssembleFace(bA, bB *element.Basis,
	ft *element.FaceTransformation) (elmat utils.Matrix, err error) {
	deg := ui.Degree
	if deg == 0 {
		deg = faceQuadDegree(bA, bB, ft)
	}
	rule, err := quadrature.Get(ft.Geom, deg)
	if err != nil {
		return elmat, err
	}
	var (
		NpA, NpB = bA.NumDof(), 0
	)
	if bB != nil {
		NpB = bB.NumDof()
	}
	elmat = utils.NewMatrix(NpA+NpB, NpA+NpB)
	for q, fp := range rule.Points {
		var (
			ipA = ft.ACoords(fp)
			sA  = bA.CalcShape(ipA)
			nor = ft.Normal(fp)
			v   = ui.Velocity.Eval(ft.ElemA, ipA)
			un  float64
		)
		for l := range nor {
			un += v[l] * nor[l]
		}
		var (
			a  = un
			b  = math.Abs(un)
			qw = rule.Weights[q] * ft.Weight(fp)
		)
		var sB utils.Vector
		if bB != nil {
			sB = bB.CalcShape(ft.BCoords(fp))
		}
		if w := 0.5 * qw * (a + b); w != 0 {
			for i := 0; i < NpA; i++ {
				for j := 0; j < NpA; j++ {
					elmat.AddAt(i, j, w*sA.AtVec(i)*sA.AtVec(j))
				}
			}
			for i := 0; i < NpB; i++ {
				for j := 0; j < NpA; j++ {
					elmat.AddAt(NpA+i, j, -w*sB.AtVec(i)*sA.AtVec(j))
				}
			}
		}
		if bB == nil {
			continue
		}
		if w := 0.5 * qw * (a - b); w != 0 {
			for i := 0; i < NpB; i++ {
				for j := 0; j < NpB; j++ {
					elmat.AddAt(NpA+i, NpA+j, -w*sB.AtVec(i)*sB.AtVec(j))
				}
			}
			for i := 0; i < NpA; i++ {
				for j := 0; j < NpB; j++ {
					elmat.AddAt(i, NpA+j, w*sA.AtVec(i)*sB.AtVec(j))
				}
			}
		}
	}
	return elmat, nil
}

// BoundaryFlowIntegrator accumulates the inflow boundary term
// -<(un - |un|)/2 * uD, v> on faces where the velocity enters the domain.
// It only makes sense on boundary faces, so the domain linear-form interface
// rejects it.
type BoundaryFlowIntegrator struct {
	Data     element.Coefficient
	Velocity element.VectorCoefficient
	Degree   int
}

func NewBoundaryFlowIntegrator(uD element.Coefficient,
	v element.VectorCoefficient) *BoundaryFlowIntegrator {
	return &BoundaryFlowIntegrator{Data: uD, Velocity: v}
}

func (bf *BoundaryFlowIntegrator) AssembleFaceRHS(b *element.Basis,
	ft *element.FaceTransformation) (rvec utils.Vector, err error) {
	deg := bf.Degree
	if deg == 0 {
		deg = faceQuadDegree(b, nil, ft)
	}
	rule, err := quadrature.Get(ft.Geom, deg)
	if err != nil {
		return rvec, err
	}
	Np := b.NumDof()
	rvec = utils.NewVector(Np)
	for q, fp := range rule.Points {
		var (
			ipA = ft.ACoords(fp)
			s   = b.CalcShape(ipA)
			nor = ft.Normal(fp)
			v   = bf.Velocity.Eval(ft.ElemA, ipA)
			un  float64
		)
		for l := range nor {
			un += v[l] * nor[l]
		}
		w := -0.5 * (un - math.Abs(un)) * rule.Weights[q] * ft.Weight(fp) *
			bf.Data.Eval(ft.ElemA, ipA)
		if w == 0 {
			continue
		}
		for i := 0; i < Np; i++ {
			rvec.AddAt(i, w*s.AtVec(i))
		}
	}
	return rvec, nil
}

func (bf *BoundaryFlowIntegrator) AssembleElementRHS(b *element.Basis,
	tr *element.Transformation) (utils.Vector, error) {
	return utils.Vector{}, &InvalidIntegratorUsageError{
		Integrator: "BoundaryFlowIntegrator",
		Op:         "assemble a domain linear form",
	}
}
