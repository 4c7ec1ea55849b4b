// Package integrators computes element-local matrices and vectors by
// numerical quadrature: domain bilinear forms (mass, diffusion, advection),
// domain source vectors, and the DG upwind face couplings.
package integrators

import (
	"github.com/notargets/gofea/element"
	"github.com/notargets/gofea/quadrature"
	"github.com/notargets/gofea/utils"
)

// ElementIntegrator builds a local dense matrix for one element.
type ElementIntegrator interface {
	AssembleElement(b *element.Basis, tr *element.Transformation) (utils.Matrix, error)
}

// ElementRHSIntegrator builds a local vector for one element.
type ElementRHSIntegrator interface {
	AssembleElementRHS(b *element.Basis, tr *element.Transformation) (utils.Vector, error)
}

// Kind selects the physics of a BilinearIntegrator.
type Kind uint8

const (
	Mass Kind = iota
	Diffusion
	Advection
)

func (k Kind) String() string {
	switch k {
	case Mass:
		return "Mass"
	case Diffusion:
		return "Diffusion"
	case Advection:
		return "Advection"
	}
	return "UnknownKind"
}

// BilinearIntegrator assembles one of the domain bilinear forms. Coeff scales
// the mass and diffusion kernels, Velocity and Alpha drive the advection
// kernel. Degree overrides the derived quadrature degree when nonzero.
type BilinearIntegrator struct {
	Kind     Kind
	Coeff    element.Coefficient
	Velocity element.VectorCoefficient
	Alpha    float64
	Degree   int
}

func NewMassIntegrator(c element.Coefficient) *BilinearIntegrator {
	return &BilinearIntegrator{Kind: Mass, Coeff: c}
}

func NewDiffusionIntegrator(c element.Coefficient) *BilinearIntegrator {
	return &BilinearIntegrator{Kind: Diffusion, Coeff: c}
}

// NewAdvectionIntegrator builds alpha * (v . grad u, w).
func NewAdvectionIntegrator(v element.VectorCoefficient, alpha float64) *BilinearIntegrator {
	return &BilinearIntegrator{Kind: Advection, Velocity: v, Alpha: alpha}
}

func (bi *BilinearIntegrator) quadDegree(b *element.Basis, tr *element.Transformation) int {
	if bi.Degree != 0 {
		return bi.Degree
	}
	p := b.Order()
	switch bi.Kind {
	case Mass:
		return 2*p + tr.OrderW()
	default:
		// gradient forms
		return tr.OrderGrad(p) + tr.Order() + p
	}
}

func (bi *BilinearIntegrator) AssembleElement(b *element.Basis,
	tr *element.Transformation) (elmat utils.Matrix, err error) {
	rule, err := quadrature.Get(tr.Geom, bi.quadDegree(b, tr))
	if err != nil {
		return elmat, err
	}
	Np := b.NumDof()
	elmat = utils.NewMatrix(Np, Np)
	for q, ip := range rule.Points {
		qw := rule.Weights[q]
		switch bi.Kind {
		case Mass:
			var (
				s = b.CalcShape(ip)
				w = qw * tr.Weight(ip) * bi.Coeff.Eval(tr, ip)
			)
			for i := 0; i < Np; i++ {
				for j := 0; j < Np; j++ {
					elmat.AddAt(i, j, w*s.AtVec(i)*s.AtVec(j))
				}
			}
		case Diffusion:
			// Pull reference gradients to physical space through the
			// adjugate; the two 1/det factors and the |det| measure
			// combine into a single division.
			var (
				ds  = b.CalcDShape(ip)
				adj = tr.Adjugate(ip)
				G   = ds.Mul(adj)
				w   = qw * bi.Coeff.Eval(tr, ip) / tr.Weight(ip)
				dim = tr.Dim()
			)
			for i := 0; i < Np; i++ {
				for j := 0; j < Np; j++ {
					var dot float64
					for l := 0; l < dim; l++ {
						dot += G.At(i, l) * G.At(j, l)
					}
					elmat.AddAt(i, j, w*dot)
				}
			}
		case Advection:
			var (
				ds  = b.CalcDShape(ip)
				adj = tr.Adjugate(ip)
				s   = b.CalcShape(ip)
				v   = bi.Velocity.Eval(tr, ip)
				w   = bi.Alpha * qw
				dim = tr.Dim()
			)
			// adj*v, so that refgrad . (adj*v) = det * (v . physgrad)
			av := make([]float64, dim)
			for k := 0; k < dim; k++ {
				for l := 0; l < dim; l++ {
					av[k] += adj.At(k, l) * v[l]
				}
			}
			for j := 0; j < Np; j++ {
				var vg float64
				for l := 0; l < dim; l++ {
					vg += ds.At(j, l) * av[l]
				}
				for i := 0; i < Np; i++ {
					elmat.AddAt(i, j, w*s.AtVec(i)*vg)
				}
			}
		}
	}
	return elmat, nil
}

// TransposeIntegrator assembles an inner integrator and transposes the local
// matrix, for forms posed on the adjoint operator. Exactly one of Elem or
// Face is set; driving the other interface is a usage error.
type TransposeIntegrator struct {
	Elem ElementIntegrator
	Face FaceIntegrator
}

func Transpose(inner ElementIntegrator) *TransposeIntegrator {
	return &TransposeIntegrator{Elem: inner}
}

func TransposeFace(inner FaceIntegrator) *TransposeIntegrator {
	return &TransposeIntegrator{Face: inner}
}

func (ti *TransposeIntegrator) AssembleElement(b *element.Basis,
	tr *element.Transformation) (utils.Matrix, error) {
	if ti.Elem == nil {
		return utils.Matrix{}, &InvalidIntegratorUsageError{
			Integrator: "TransposeIntegrator", Op: "assemble an element matrix without an element inner integrator",
		}
	}
	elmat, err := ti.Elem.AssembleElement(b, tr)
	if err != nil {
		return elmat, err
	}
	return elmat.Transpose(), nil
}

func (ti *TransposeIntegrator) AssembleFace(bA, bB *element.Basis,
	ft *element.FaceTransformation) (utils.Matrix, error) {
	if ti.Face == nil {
		return utils.Matrix{}, &InvalidIntegratorUsageError{
			Integrator: "TransposeIntegrator", Op: "assemble a face matrix without a face inner integrator",
		}
	}
	elmat, err := ti.Face.AssembleFace(bA, bB, ft)
	if err != nil {
		return elmat, err
	}
	return elmat.Transpose(), nil
}
