package mesh

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/notargets/gofea/utils"
)

// localFaceVerts lists the local vertex indices of face e in the element's
// traversal order.
func localFaceVerts(geom utils.GeomType, e int) []int {
	switch geom {
	case utils.GeomSegment:
		return []int{e}
	case utils.GeomQuad:
		return []int{e, (e + 1) % 4}
	}
	return nil
}

// BuildFaces derives the face list from element-vertex connectivity. Matching
// is done through the sparse face-to-vertex incidence product: two faces are
// the same mesh face exactly when (FToV * FToV^T) counts every face vertex as
// shared. Unmatched faces are boundary faces and still need attributes
// assigned afterwards.
func (m *Mesh) BuildFaces() error {
	var (
		K       = m.NumElements()
		Nv      = m.NumVertices()
		offsets = make([]int, K+1)
	)
	for k := 0; k < K; k++ {
		offsets[k+1] = offsets[k] + m.Geoms[k].NumFaces()
	}
	totalFaces := offsets[K]

	FToV := sparse.NewDOK(totalFaces, Nv)
	for k := 0; k < K; k++ {
		for e := 0; e < m.Geoms[k].NumFaces(); e++ {
			for _, lv := range localFaceVerts(m.Geoms[k], e) {
				FToV.Set(offsets[k]+e, m.EToV[k][lv], 1)
			}
		}
	}
	FToF := sparse.NewCSR(totalFaces, totalFaces, nil, nil, nil)
	csr := FToV.ToCSR()
	FToF.Mul(csr, csr.T())

	partner := make([]int, totalFaces)
	for i := range partner {
		partner[i] = -1
	}
	elemOf := func(f int) (k, e int) {
		for k = 0; offsets[k+1] <= f; k++ {
		}
		return k, f - offsets[k]
	}
	var matchErr error
	FToF.DoNonZero(func(i, j int, v float64) {
		if i == j {
			return
		}
		kI, _ := elemOf(i)
		if int(v) != m.Geoms[kI].FaceGeom().NumVerts() {
			return
		}
		if partner[i] >= 0 && partner[i] != j {
			matchErr = &InconsistentMeshTopologyError{
				Reason: fmt.Sprintf("face %d matches more than two elements", i),
			}
		}
		partner[i] = j
	})
	if matchErr != nil {
		return matchErr
	}

	m.Faces = m.Faces[:0]
	for i := 0; i < totalFaces; i++ {
		kA, eA := elemOf(i)
		f := Face{
			Geom:   m.Geoms[kA].FaceGeom(),
			ElemA:  kA,
			LocalA: eA,
			ElemB:  -1,
		}
		j := partner[i]
		switch {
		case j < 0:
			m.Faces = append(m.Faces, f)
		case j > i:
			kB, eB := elemOf(j)
			f.ElemB = kB
			f.LocalB = eB
			f.FlipB = m.faceFlipped(kA, eA, kB, eB)
			m.Faces = append(m.Faces, f)
		}
	}
	return nil
}

// faceFlipped reports whether element B traverses the shared face opposite to
// element A, decided by comparing the traversal start vertices.
func (m *Mesh) faceFlipped(kA, eA, kB, eB int) bool {
	var (
		lvA = localFaceVerts(m.Geoms[kA], eA)
		lvB = localFaceVerts(m.Geoms[kB], eB)
	)
	if len(lvA) < 2 {
		return false
	}
	return m.EToV[kB][lvB[0]] != m.EToV[kA][lvA[0]]
}

// SegmentMesh builds a uniform 1D mesh of K segments on [xmin,xmax].
// Boundary attributes: 1 at xmin, 2 at xmax.
func SegmentMesh(xmin, xmax float64, K int) (*Mesh, error) {
	var (
		m = &Mesh{
			Dim: 1,
			VX:  utils.NewMatrix(K+1, 1),
		}
	)
	for i := 0; i <= K; i++ {
		m.VX.Set(i, 0, xmin+(xmax-xmin)*float64(i)/float64(K))
	}
	for k := 0; k < K; k++ {
		m.EToV = append(m.EToV, []int{k, k + 1})
		m.Geoms = append(m.Geoms, utils.GeomSegment)
	}
	if err := m.BuildFaces(); err != nil {
		return nil, err
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		if !f.IsBoundary() {
			continue
		}
		if m.EToV[f.ElemA][localFaceVerts(utils.GeomSegment, f.LocalA)[0]] == 0 {
			f.BdryAttr = 1
		} else {
			f.BdryAttr = 2
		}
	}
	return m, m.Validate()
}

// QuadMesh builds an nx x ny Cartesian mesh of quads on
// [xmin,xmax] x [ymin,ymax], elements traversed CCW. Boundary attributes:
// 1 bottom, 2 right, 3 top, 4 left.
func QuadMesh(xmin, xmax, ymin, ymax float64, nx, ny int) (*Mesh, error) {
	var (
		nvx = nx + 1
		m   = &Mesh{
			Dim: 2,
			VX:  utils.NewMatrix(nvx*(ny+1), 2),
		}
	)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.VX.Set(i+nvx*j, 0, xmin+(xmax-xmin)*float64(i)/float64(nx))
			m.VX.Set(i+nvx*j, 1, ymin+(ymax-ymin)*float64(j)/float64(ny))
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := i + nvx*j
			m.EToV = append(m.EToV, []int{v, v + 1, v + 1 + nvx, v + nvx})
			m.Geoms = append(m.Geoms, utils.GeomQuad)
		}
	}
	if err := m.BuildFaces(); err != nil {
		return nil, err
	}
	for i := range m.Faces {
		f := &m.Faces[i]
		if !f.IsBoundary() {
			continue
		}
		lv := localFaceVerts(utils.GeomQuad, f.LocalA)
		v0, v1 := m.EToV[f.ElemA][lv[0]], m.EToV[f.ElemA][lv[1]]
		switch {
		case v0/nvx == 0 && v1/nvx == 0:
			f.BdryAttr = 1
		case v0%nvx == nx && v1%nvx == nx:
			f.BdryAttr = 2
		case v0/nvx == ny && v1/nvx == ny:
			f.BdryAttr = 3
		default:
			f.BdryAttr = 4
		}
	}
	return m, m.Validate()
}
