package integrators

import (
	"github.com/notargets/gofea/element"
	"github.com/notargets/gofea/quadrature"
	"github.com/notargets/gofea/utils"
)

// SourceIntegrator accumulates (f, v) into the local load vector. The
// quadrature degree is OA*p + OB unless Degree overrides it.
type SourceIntegrator struct {
	Coeff  element.Coefficient
	OA, OB int
	Degree int
}

func NewSourceIntegrator(f element.Coefficient) *SourceIntegrator {
	return &SourceIntegrator{Coeff: f, OA: 2}
}

func (si *SourceIntegrator) AssembleElementRHS(b *element.Basis,
	tr *element.Transformation) (rvec utils.Vector, err error) {
	deg := si.Degree
	if deg == 0 {
		deg = si.OA*b.Order() + si.OB
	}
	rule, err := quadrature.Get(tr.Geom, deg)
	if err != nil {
		return rvec, err
	}
	Np := b.NumDof()
	rvec = utils.NewVector(Np)
	for q, ip := range rule.Points {
		var (
			s = b.CalcShape(ip)
			w = rule.Weights[q] * tr.Weight(ip) * si.Coeff.Eval(tr, ip)
		)
		for i := 0; i < Np; i++ {
			rvec.AddAt(i, w*s.AtVec(i))
		}
	}
	return rvec, nil
}
