// Package fespace builds finite element spaces over a mesh: the global dof
// numbering, per-element dof maps, essential boundary dof lists and nodal
// projection of coefficients.
package fespace

import (
	"fmt"

	"github.com/notargets/gofea/element"
	"github.com/notargets/gofea/mesh"
	"github.com/notargets/gofea/utils"
)

type Continuity uint8

const (
	H1 Continuity = iota // vertex and edge dofs shared between elements
	L2                   // fully discontinuous, dofs private per element
)

func (c Continuity) String() string {
	switch c {
	case H1:
		return "H1"
	case L2:
		return "L2"
	}
	return "UnknownContinuity"
}

// Space is a finite element space of uniform order P over a mesh. For H1
// spaces the global numbering places vertex dofs first, then edge dofs, then
// element interior dofs, so the exposed dofs of every element form a
// contiguous prefix [0, NumExposedDofs).
type Space struct {
	Mesh *mesh.Mesh
	P    int
	Cont Continuity

	bases    map[utils.GeomType]*element.Basis
	dofs     [][]int // element -> local dof -> global dof
	ndof     int
	nExposed int
}

func NewSpace(m *mesh.Mesh, p int, cont Continuity) (sp *Space, err error) {
	if cont == H1 && p < 1 {
		return nil, fmt.Errorf("H1 space requires order >= 1, got %d", p)
	}
	sp = &Space{
		Mesh:  m,
		P:     p,
		Cont:  cont,
		bases: make(map[utils.GeomType]*element.Basis),
	}
	for _, geom := range m.Geoms {
		if _, ok := sp.bases[geom]; ok {
			continue
		}
		if sp.bases[geom], err = element.NewBasis(geom, p); err != nil {
			return nil, err
		}
	}
	if cont == L2 {
		sp.numberL2()
	} else {
		if err = sp.numberH1(); err != nil {
			return nil, err
		}
	}
	return sp, nil
}

func (sp *Space) NumDofs() int        { return sp.ndof }
func (sp *Space) NumExposedDofs() int { return sp.nExposed }
func (sp *Space) ElemDofs(k int) []int {
	return sp.dofs[k]
}
func (sp *Space) Basis(geom utils.GeomType) *element.Basis {
	return sp.bases[geom]
}
func (sp *Space) ElemBasis(k int) *element.Basis {
	return sp.bases[sp.Mesh.Geoms[k]]
}

func (sp *Space) numberL2() {
	var gdof int
	sp.dofs = make([][]int, sp.Mesh.NumElements())
	for k := range sp.dofs {
		Np := sp.bases[sp.Mesh.Geoms[k]].NumDof()
		sp.dofs[k] = make([]int, Np)
		for i := range sp.dofs[k] {
			sp.dofs[k][i] = gdof
			gdof++
		}
	}
	sp.ndof = gdof
	sp.nExposed = gdof
}

// numberH1 assigns shared dofs in three blocks: one dof per mesh vertex, then
// (P-1) dofs per mesh edge ordered along ElemA's traversal, then the interior
// dofs element by element.
func (sp *Space) numberH1() error {
	var (
		m       = sp.Mesh
		p       = sp.P
		Nv      = m.NumVertices()
		nEdge   = p - 1
		edgeOff = make(map[[2]int]int) // (elem, local edge) -> edge block start
		edgeRev = make(map[[2]int]bool)
		next    = Nv
	)
	if m.Dim > 1 {
		for _, f := range m.Faces {
			edgeOff[[2]int{f.ElemA, f.LocalA}] = next
			edgeRev[[2]int{f.ElemA, f.LocalA}] = false
			if !f.IsBoundary() {
				edgeOff[[2]int{f.ElemB, f.LocalB}] = next
				edgeRev[[2]int{f.ElemB, f.LocalB}] = f.FlipB
			}
			next += nEdge
		}
	}
	var (
		exposedEnd = next
	)
	sp.dofs = make([][]int, m.NumElements())
	for k := range sp.dofs {
		switch m.Geoms[k] {
		case utils.GeomSegment:
			d := make([]int, p+1)
			d[0] = m.EToV[k][0]
			d[p] = m.EToV[k][1]
			for i := 1; i < p; i++ {
				d[i] = next
				next++
			}
			sp.dofs[k] = d
		case utils.GeomQuad:
			d := make([]int, (p+1)*(p+1))
			nodal := func(i, j int) int { return i + (p+1)*j }
			d[nodal(0, 0)] = m.EToV[k][0]
			d[nodal(p, 0)] = m.EToV[k][1]
			d[nodal(p, p)] = m.EToV[k][2]
			d[nodal(0, p)] = m.EToV[k][3]
			for e := 0; e < 4; e++ {
				off, ok := edgeOff[[2]int{k, e}]
				if !ok {
					return &mesh.InconsistentMeshTopologyError{
						Reason: fmt.Sprintf("element %d edge %d missing from face list", k, e),
					}
				}
				for s := 0; s < nEdge; s++ {
					g := off + s
					if edgeRev[[2]int{k, e}] {
						g = off + nEdge - 1 - s
					}
					d[quadEdgeNodal(p, e, s)] = g
				}
			}
			for j := 1; j < p; j++ {
				for i := 1; i < p; i++ {
					d[nodal(i, j)] = next
					next++
				}
			}
			sp.dofs[k] = d
		default:
			return &utils.UnsupportedElementTypeError{Geom: m.Geoms[k], Order: p}
		}
	}
	sp.ndof = next
	sp.nExposed = exposedEnd
	return nil
}

// quadEdgeNodal returns the local nodal index of the s-th interior node of
// local edge e, counted along the edge's traversal from vertex e to (e+1)%4.
func quadEdgeNodal(p, e, s int) int {
	nodal := func(i, j int) int { return i + (p+1)*j }
	switch e {
	case 0:
		return nodal(1+s, 0)
	case 1:
		return nodal(p, 1+s)
	case 2:
		return nodal(p-1-s, p)
	default:
		return nodal(0, p-1-s)
	}
}

// EssentialDofs gathers the boundary dofs on faces whose attribute is marked.
// bdrMarker is indexed by attribute-1, sized MaxBdryAttr or larger. L2 spaces
// have no shared boundary dofs and return an empty list.
func (sp *Space) EssentialDofs(bdrMarker []bool) (ess utils.Index) {
	if sp.Cont == L2 {
		return nil
	}
	var (
		m    = sp.Mesh
		p    = sp.P
		seen = make(map[int]bool)
	)
	mark := func(g int) {
		if !seen[g] {
			seen[g] = true
			ess = append(ess, g)
		}
	}
	for _, f := range m.Faces {
		if !f.IsBoundary() || f.BdryAttr < 1 || f.BdryAttr > len(bdrMarker) || !bdrMarker[f.BdryAttr-1] {
			continue
		}
		d := sp.dofs[f.ElemA]
		switch m.Geoms[f.ElemA] {
		case utils.GeomSegment:
			if f.LocalA == 0 {
				mark(d[0])
			} else {
				mark(d[p])
			}
		case utils.GeomQuad:
			e := f.LocalA
			mark(m.EToV[f.ElemA][e])
			mark(m.EToV[f.ElemA][(e+1)%4])
			for s := 0; s < p-1; s++ {
				mark(d[quadEdgeNodal(p, e, s)])
			}
		}
	}
	return ess
}

// Project interpolates a coefficient at the nodal points of the space,
// returning the dof vector.
func (sp *Space) Project(c element.Coefficient) (u utils.Vector, err error) {
	u = utils.NewVector(sp.ndof)
	for k := 0; k < sp.Mesh.NumElements(); k++ {
		tr, err := sp.Mesh.ElemTransformation(k)
		if err != nil {
			return u, err
		}
		b := sp.ElemBasis(k)
		for i, g := range sp.dofs[k] {
			u.Set(g, c.Eval(tr, b.NodalPoint(i)))
		}
	}
	return u, nil
}
