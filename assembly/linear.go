package assembly

import (
	"fmt"

	"github.com/notargets/gofea/fespace"
	"github.com/notargets/gofea/integrators"
	"github.com/notargets/gofea/utils"
)

// LinearForm accumulates domain source and boundary-face load integrators
// into the global right hand side.
type LinearForm struct {
	Space *fespace.Space

	domain  []integrators.ElementRHSIntegrator
	bdrFace []boundaryRHSEntry
	rhs     utils.Vector
}

type boundaryRHSEntry struct {
	fi     integrators.FaceRHSIntegrator
	marker []bool
}

func NewLinearForm(sp *fespace.Space) *LinearForm {
	return &LinearForm{Space: sp, rhs: utils.NewVector(sp.NumDofs())}
}

func (lf *LinearForm) AddDomainIntegrator(ei integrators.ElementRHSIntegrator) {
	lf.domain = append(lf.domain, ei)
}

func (lf *LinearForm) AddBoundaryFaceIntegrator(fi integrators.FaceRHSIntegrator, bdrMarker []bool) {
	lf.bdrFace = append(lf.bdrFace, boundaryRHSEntry{fi, bdrMarker})
}

func (lf *LinearForm) Assemble() error {
	var (
		sp = lf.Space
		m  = sp.Mesh
	)
	lf.rhs = utils.NewVector(sp.NumDofs())
	for k := 0; k < m.NumElements(); k++ {
		tr, err := m.ElemTransformation(k)
		if err != nil {
			return err
		}
		for _, ei := range lf.domain {
			rvec, err := ei.AssembleElementRHS(sp.ElemBasis(k), tr)
			if err != nil {
				return fmt.Errorf("element %d: %w", k, err)
			}
			for i, g := range sp.ElemDofs(k) {
				lf.rhs.AddAt(g, rvec.AtVec(i))
			}
		}
	}
	for fi, f := range m.Faces {
		if !f.IsBoundary() || len(lf.bdrFace) == 0 {
			continue
		}
		ft, err := m.FaceTransformation(f)
		if err != nil {
			return err
		}
		for _, entry := range lf.bdrFace {
			if entry.marker != nil &&
				(f.BdryAttr < 1 || f.BdryAttr > len(entry.marker) || !entry.marker[f.BdryAttr-1]) {
				continue
			}
			rvec, err := entry.fi.AssembleFaceRHS(sp.ElemBasis(f.ElemA), ft)
			if err != nil {
				return fmt.Errorf("boundary face %d: %w", fi, err)
			}
			for i, g := range sp.ElemDofs(f.ElemA) {
				lf.rhs.AddAt(g, rvec.AtVec(i))
			}
		}
	}
	return nil
}

func (lf *LinearForm) Vector() utils.Vector { return lf.rhs }
