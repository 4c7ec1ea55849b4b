package mesh

import (
	"fmt"

	"github.com/notargets/gofea/element"
	"github.com/notargets/gofea/utils"
)

// InconsistentMeshTopologyError reports connectivity the assembler cannot
// work with: a face claiming a missing element, a boundary face without an
// attribute, or malformed element-vertex lists. Fatal at assembly time.
type InconsistentMeshTopologyError struct {
	Reason string
}

func (e *InconsistentMeshTopologyError) Error() string {
	return fmt.Sprintf("inconsistent mesh topology: %s", e.Reason)
}

// Face is one mesh face: shared by two elements when interior (ElemB >= 0),
// owned by one element plus a boundary attribute otherwise.
type Face struct {
	Geom           utils.GeomType
	ElemA, ElemB   int // ElemB = -1 on boundary faces
	LocalA, LocalB int
	FlipB          bool // ElemB traverses the face opposite to ElemA
	BdryAttr       int  // 0 for interior faces
}

func (f Face) IsBoundary() bool { return f.ElemB < 0 }

// Mesh is an ordered collection of elements and faces. It is built (or
// refined) up front and read only during assembly.
type Mesh struct {
	Dim   int
	VX    utils.Matrix // Nv x Dim vertex coordinates
	EToV  [][]int      // element vertex lists, CCW traversal for quads
	Geoms []utils.GeomType
	Faces []Face
}

func (m *Mesh) NumElements() int { return len(m.EToV) }
func (m *Mesh) NumVertices() int { nr, _ := m.VX.Dims(); return nr }
func (m *Mesh) NumFaces() int    { return len(m.Faces) }

// ElemTransformation builds the geometric transformation for element k.
func (m *Mesh) ElemTransformation(k int) (*element.Transformation, error) {
	var (
		verts = m.EToV[k]
		nv    = len(verts)
	)
	V := utils.NewMatrix(nv, m.Dim)
	for i, v := range verts {
		for j := 0; j < m.Dim; j++ {
			V.Set(i, j, m.VX.At(v, j))
		}
	}
	return element.NewTransformation(m.Geoms[k], k, V)
}

// FaceTransformation builds the shared-face transformation for face f, with
// the two adjacent element transformations attached (ElemB nil on boundary).
func (m *Mesh) FaceTransformation(f Face) (*element.FaceTransformation, error) {
	trA, err := m.ElemTransformation(f.ElemA)
	if err != nil {
		return nil, err
	}
	ft := &element.FaceTransformation{
		Geom:   f.Geom,
		ElemA:  trA,
		LocalA: f.LocalA,
		FlipB:  f.FlipB,
	}
	if !f.IsBoundary() {
		if ft.ElemB, err = m.ElemTransformation(f.ElemB); err != nil {
			return nil, err
		}
		ft.LocalB = f.LocalB
	}
	return ft, nil
}

// Validate checks the connectivity invariants: every interior face references
// two live elements, every boundary face carries an attribute, and element
// vertex lists match their geometry.
func (m *Mesh) Validate() error {
	var (
		K = m.NumElements()
	)
	if len(m.Geoms) != K {
		return &InconsistentMeshTopologyError{Reason: "geometry list does not match element count"}
	}
	for k, verts := range m.EToV {
		if len(verts) != m.Geoms[k].NumVerts() {
			return &InconsistentMeshTopologyError{
				Reason: fmt.Sprintf("element %d has %d vertices, geometry %v needs %d",
					k, len(verts), m.Geoms[k], m.Geoms[k].NumVerts()),
			}
		}
		for _, v := range verts {
			if v < 0 || v >= m.NumVertices() {
				return &InconsistentMeshTopologyError{
					Reason: fmt.Sprintf("element %d references vertex %d out of range", k, v),
				}
			}
		}
	}
	for i, f := range m.Faces {
		if f.ElemA < 0 || f.ElemA >= K {
			return &InconsistentMeshTopologyError{
				Reason: fmt.Sprintf("face %d references element %d out of range", i, f.ElemA),
			}
		}
		if f.IsBoundary() {
			if f.BdryAttr < 1 {
				return &InconsistentMeshTopologyError{
					Reason: fmt.Sprintf("boundary face %d has no boundary attribute", i),
				}
			}
		} else if f.ElemB >= K {
			return &InconsistentMeshTopologyError{
				Reason: fmt.Sprintf("face %d references element %d out of range", i, f.ElemB),
			}
		}
	}
	return nil
}

// MaxBdryAttr returns the largest boundary attribute present.
func (m *Mesh) MaxBdryAttr() (max int) {
	for _, f := range m.Faces {
		if f.BdryAttr > max {
			max = f.BdryAttr
		}
	}
	return
}
