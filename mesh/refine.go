package mesh

import (
	"fmt"

	"github.com/notargets/gofea/utils"
)

// UniformRefine splits every segment in two and every quad in four, returning
// the refined mesh. Child elements keep the parent's traversal orientation and
// boundary children inherit the parent face attribute.
func (m *Mesh) UniformRefine() (*Mesh, error) {
	switch m.Dim {
	case 1:
		return m.refineSegments()
	case 2:
		return m.refineQuads()
	}
	return nil, &InconsistentMeshTopologyError{
		Reason: fmt.Sprintf("cannot refine dimension %d mesh", m.Dim),
	}
}

// edgeKey identifies an undirected vertex pair for midpoint deduplication.
type edgeKey struct{ lo, hi int }

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func (m *Mesh) refineSegments() (*Mesh, error) {
	var (
		K  = m.NumElements()
		Nv = m.NumVertices()
		r  = &Mesh{
			Dim: 1,
			VX:  utils.NewMatrix(Nv+K, 1),
		}
	)
	for v := 0; v < Nv; v++ {
		r.VX.Set(v, 0, m.VX.At(v, 0))
	}
	for k := 0; k < K; k++ {
		var (
			v0, v1 = m.EToV[k][0], m.EToV[k][1]
			mid    = Nv + k
		)
		r.VX.Set(mid, 0, 0.5*(m.VX.At(v0, 0)+m.VX.At(v1, 0)))
		r.EToV = append(r.EToV, []int{v0, mid}, []int{mid, v1})
		r.Geoms = append(r.Geoms, utils.GeomSegment, utils.GeomSegment)
	}
	if err := r.BuildFaces(); err != nil {
		return nil, err
	}
	// Child 2k keeps the parent's face 0, child 2k+1 its face 1.
	if err := r.inheritBdryAttrs(m, func(child, local int) (int, int, bool) {
		if child%2 == local {
			return child / 2, local, true
		}
		return 0, 0, false
	}); err != nil {
		return nil, err
	}
	return r, r.Validate()
}

func (m *Mesh) refineQuads() (*Mesh, error) {
	var (
		K    = m.NumElements()
		Nv   = m.NumVertices()
		mids = make(map[edgeKey]int)
		r    = &Mesh{Dim: 2}
	)
	// Count new vertices first: one per distinct edge plus one center per
	// element.
	for k := 0; k < K; k++ {
		for e := 0; e < 4; e++ {
			mids[newEdgeKey(m.EToV[k][e], m.EToV[k][(e+1)%4])] = 0
		}
	}
	r.VX = utils.NewMatrix(Nv+len(mids)+K, 2)
	for v := 0; v < Nv; v++ {
		r.VX.Set(v, 0, m.VX.At(v, 0))
		r.VX.Set(v, 1, m.VX.At(v, 1))
	}
	next := Nv
	midpoint := func(a, b int) int {
		key := newEdgeKey(a, b)
		if v := mids[key]; v != 0 {
			return v
		}
		mids[key] = next
		r.VX.Set(next, 0, 0.5*(m.VX.At(a, 0)+m.VX.At(b, 0)))
		r.VX.Set(next, 1, 0.5*(m.VX.At(a, 1)+m.VX.At(b, 1)))
		next++
		return mids[key]
	}
	for k := 0; k < K; k++ {
		var (
			ev  = m.EToV[k]
			e01 = midpoint(ev[0], ev[1])
			e12 = midpoint(ev[1], ev[2])
			e23 = midpoint(ev[2], ev[3])
			e30 = midpoint(ev[3], ev[0])
			ctr = next
		)
		r.VX.Set(ctr, 0, 0.25*(m.VX.At(ev[0], 0)+m.VX.At(ev[1], 0)+m.VX.At(ev[2], 0)+m.VX.At(ev[3], 0)))
		r.VX.Set(ctr, 1, 0.25*(m.VX.At(ev[0], 1)+m.VX.At(ev[1], 1)+m.VX.At(ev[2], 1)+m.VX.At(ev[3], 1)))
		next++
		// Child c sits at parent corner c; each child keeps the parent's
		// local edges c and (c+3)%4.
		r.EToV = append(r.EToV,
			[]int{ev[0], e01, ctr, e30},
			[]int{e01, ev[1], e12, ctr},
			[]int{ctr, e12, ev[2], e23},
			[]int{e30, ctr, e23, ev[3]},
		)
		r.Geoms = append(r.Geoms, utils.GeomQuad, utils.GeomQuad, utils.GeomQuad, utils.GeomQuad)
	}
	if err := r.BuildFaces(); err != nil {
		return nil, err
	}
	if err := r.inheritBdryAttrs(m, func(child, local int) (int, int, bool) {
		c := child % 4
		if local == c || local == (c+3)%4 {
			return child / 4, local, true
		}
		return 0, 0, false
	}); err != nil {
		return nil, err
	}
	return r, r.Validate()
}

// inheritBdryAttrs copies boundary attributes from parent faces onto the
// refined mesh. parentFace maps a child boundary side to the parent side it
// came from; a false return means the side is interior to the parent.
func (r *Mesh) inheritBdryAttrs(parent *Mesh, parentFace func(child, local int) (int, int, bool)) error {
	attrs := make(map[[2]int]int)
	for _, f := range parent.Faces {
		if f.IsBoundary() {
			attrs[[2]int{f.ElemA, f.LocalA}] = f.BdryAttr
		}
	}
	for i := range r.Faces {
		f := &r.Faces[i]
		if !f.IsBoundary() {
			continue
		}
		pk, pe, ok := parentFace(f.ElemA, f.LocalA)
		if !ok {
			return &InconsistentMeshTopologyError{
				Reason: fmt.Sprintf("boundary face %d of child element %d has no parent face", f.LocalA, f.ElemA),
			}
		}
		attr, ok := attrs[[2]int{pk, pe}]
		if !ok {
			return &InconsistentMeshTopologyError{
				Reason: fmt.Sprintf("parent element %d face %d is not a boundary face", pk, pe),
			}
		}
		f.BdryAttr = attr
	}
	return nil
}
