// Package assembly scatters element and face local contributions into the
// global sparse operator and right hand side, applies essential boundary
// conditions by elimination, and optionally condenses element-interior dofs
// out of the system before the solve.
package assembly

import (
	"fmt"

	"github.com/notargets/gofea/fespace"
	"github.com/notargets/gofea/integrators"
	"github.com/notargets/gofea/utils"
)

// BilinearForm accumulates domain, interior-face and boundary-face
// integrators over a finite element space into one sparse operator.
// Boundary face integrators only see faces whose attribute is marked.
type BilinearForm struct {
	Space *fespace.Space

	domain   []integrators.ElementIntegrator
	intFace  []integrators.FaceIntegrator
	bdrFace  []boundaryFaceEntry
	spmat    utils.CSR
	finished bool
}

type boundaryFaceEntry struct {
	fi     integrators.FaceIntegrator
	marker []bool
}

func NewBilinearForm(sp *fespace.Space) *BilinearForm {
	return &BilinearForm{Space: sp}
}

func (bf *BilinearForm) AddDomainIntegrator(ei integrators.ElementIntegrator) {
	bf.domain = append(bf.domain, ei)
}

func (bf *BilinearForm) AddInteriorFaceIntegrator(fi integrators.FaceIntegrator) {
	bf.intFace = append(bf.intFace, fi)
}

// AddBoundaryFaceIntegrator restricts fi to boundary faces whose attribute is
// marked in bdrMarker (indexed by attribute-1). A nil marker means all
// boundary faces.
func (bf *BilinearForm) AddBoundaryFaceIntegrator(fi integrators.FaceIntegrator, bdrMarker []bool) {
	bf.bdrFace = append(bf.bdrFace, boundaryFaceEntry{fi, bdrMarker})
}

// Assemble runs every integrator and accumulates into the sparse operator.
// The scatter-add is pure accumulation, so element order does not matter.
func (bf *BilinearForm) Assemble() error {
	var (
		sp   = bf.Space
		m    = sp.Mesh
		ndof = sp.NumDofs()
		dok  = utils.NewDOK(ndof, ndof)
	)
	for k := 0; k < m.NumElements(); k++ {
		tr, err := m.ElemTransformation(k)
		if err != nil {
			return err
		}
		var (
			b    = sp.ElemBasis(k)
			dofs = sp.ElemDofs(k)
		)
		for _, ei := range bf.domain {
			elmat, err := ei.AssembleElement(b, tr)
			if err != nil {
				return fmt.Errorf("element %d: %w", k, err)
			}
			scatterMatrix(dok, elmat, dofs, dofs)
		}
	}
	for fi, f := range m.Faces {
		if len(bf.intFace) == 0 && len(bf.bdrFace) == 0 {
			break
		}
		ft, err := m.FaceTransformation(f)
		if err != nil {
			return err
		}
		var (
			bA    = sp.ElemBasis(f.ElemA)
			dofsA = sp.ElemDofs(f.ElemA)
		)
		if !f.IsBoundary() {
			var (
				bB   = sp.ElemBasis(f.ElemB)
				dofs = append(append([]int{}, dofsA...), sp.ElemDofs(f.ElemB)...)
			)
			for _, in := range bf.intFace {
				elmat, err := in.AssembleFace(bA, bB, ft)
				if err != nil {
					return fmt.Errorf("face %d: %w", fi, err)
				}
				scatterMatrix(dok, elmat, dofs, dofs)
			}
			continue
		}
		for _, entry := range bf.bdrFace {
			if entry.marker != nil &&
				(f.BdryAttr < 1 || f.BdryAttr > len(entry.marker) || !entry.marker[f.BdryAttr-1]) {
				continue
			}
			elmat, err := entry.fi.AssembleFace(bA, nil, ft)
			if err != nil {
				return fmt.Errorf("boundary face %d: %w", fi, err)
			}
			scatterMatrix(dok, elmat, dofsA, dofsA)
		}
	}
	bf.spmat = dok.ToCSR()
	bf.finished = true
	return nil
}

// SpMat returns the assembled operator. Assemble must have been called.
func (bf *BilinearForm) SpMat() utils.CSR {
	if !bf.finished {
		panic("BilinearForm.SpMat called before Assemble")
	}
	return bf.spmat
}

func (bf *BilinearForm) HasFaceIntegrators() bool {
	return len(bf.intFace) > 0 || len(bf.bdrFace) > 0
}

func scatterMatrix(dok utils.DOK, elmat utils.Matrix, rows, cols []int) {
	for i, gi := range rows {
		for j, gj := range cols {
			if v := elmat.At(i, j); v != 0 {
				dok.AddAt(gi, gj, v)
			}
		}
	}
}
