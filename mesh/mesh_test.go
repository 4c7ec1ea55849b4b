package mesh

import (
	"math"
	"testing"

	"github.com/notargets/gofea/quadrature"
	"github.com/stretchr/testify/assert"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1.e-10
}

func TestSegmentMesh(t *testing.T) {
	m, err := SegmentMesh(0, 1, 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, m.NumElements())
	assert.Equal(t, 5, m.NumVertices())
	assert.Equal(t, 5, m.NumFaces())

	var interior, bdry int
	for _, f := range m.Faces {
		if f.IsBoundary() {
			bdry++
			assert.True(t, f.BdryAttr == 1 || f.BdryAttr == 2)
		} else {
			interior++
		}
	}
	assert.Equal(t, 3, interior)
	assert.Equal(t, 2, bdry)
	assert.Equal(t, 2, m.MaxBdryAttr())

	for _, f := range m.Faces {
		ft, err := m.FaceTransformation(f)
		assert.NoError(t, err)
		n := ft.Normal(quadrature.Point{})
		assert.True(t, near(math.Abs(n[0]), 1))
		if !f.IsBoundary() {
			// Interior faces point from the left element to the right one
			assert.True(t, near(n[0], 1))
		}
	}
}

func TestQuadMesh(t *testing.T) {
	m, err := QuadMesh(0, 1, 0, 1, 3, 2)
	assert.NoError(t, err)
	assert.Equal(t, 6, m.NumElements())
	assert.Equal(t, 12, m.NumVertices())
	// 3x2 grid has 17 distinct edges
	assert.Equal(t, 17, m.NumFaces())
	assert.Equal(t, 4, m.MaxBdryAttr())

	var attrCount [5]int
	for _, f := range m.Faces {
		if f.IsBoundary() {
			attrCount[f.BdryAttr]++
		}
	}
	assert.Equal(t, 3, attrCount[1]) // bottom
	assert.Equal(t, 2, attrCount[2]) // right
	assert.Equal(t, 3, attrCount[3]) // top
	assert.Equal(t, 2, attrCount[4]) // left

	// CCW elements have positive Jacobian determinant, hx*hy/4 on a
	// Cartesian grid
	for k := 0; k < m.NumElements(); k++ {
		tr, err := m.ElemTransformation(k)
		assert.NoError(t, err)
		det := tr.DetJ(quadrature.Point{})
		assert.True(t, near(det, (1.0/3.0)*(1.0/2.0)/4.0))
	}
}

func TestQuadMeshFaceOrientation(t *testing.T) {
	m, err := QuadMesh(0, 2, 0, 1, 2, 1)
	assert.NoError(t, err)
	var interior int
	for _, f := range m.Faces {
		if f.IsBoundary() {
			continue
		}
		interior++
		// Consistently oriented CCW quads traverse a shared edge in
		// opposite directions
		assert.True(t, f.FlipB)
		ft, err := m.FaceTransformation(f)
		assert.NoError(t, err)
		trA, _ := m.ElemTransformation(f.ElemA)
		trB, _ := m.ElemTransformation(f.ElemB)
		// Both reference maps land on the same physical point
		for _, tt := range []float64{-1, -0.3, 0.5, 1} {
			fp := quadrature.Point{R: tt}
			xa := trA.Transform(ft.ACoords(fp))
			xb := trB.Transform(ft.BCoords(fp))
			assert.True(t, near(xa[0], xb[0]))
			assert.True(t, near(xa[1], xb[1]))
		}
		// Normal points out of A, here from the left quad to the right
		n := ft.Normal(quadrature.Point{})
		assert.True(t, near(n[0], 1))
		assert.True(t, near(n[1], 0))
	}
	assert.Equal(t, 1, interior)
}

func TestUniformRefineSegment(t *testing.T) {
	m, err := SegmentMesh(0, 1, 2)
	assert.NoError(t, err)
	r, err := m.UniformRefine()
	assert.NoError(t, err)
	assert.Equal(t, 4, r.NumElements())
	assert.Equal(t, 5, r.NumVertices())

	var attrs []int
	for _, f := range r.Faces {
		if f.IsBoundary() {
			attrs = append(attrs, f.BdryAttr)
		}
	}
	assert.Len(t, attrs, 2)
	assert.Contains(t, attrs, 1)
	assert.Contains(t, attrs, 2)
}

func TestUniformRefineQuad(t *testing.T) {
	m, err := QuadMesh(0, 1, 0, 1, 2, 2)
	assert.NoError(t, err)
	r, err := m.UniformRefine()
	assert.NoError(t, err)
	assert.Equal(t, 16, r.NumElements())
	assert.Equal(t, 25, r.NumVertices())
	assert.Equal(t, 4, r.MaxBdryAttr())

	// Each boundary side doubles its face count
	var attrCount [5]int
	for _, f := range r.Faces {
		if f.IsBoundary() {
			attrCount[f.BdryAttr]++
		}
	}
	for attr := 1; attr <= 4; attr++ {
		assert.Equal(t, 4, attrCount[attr])
	}

	// Children stay CCW
	for k := 0; k < r.NumElements(); k++ {
		tr, err := r.ElemTransformation(k)
		assert.NoError(t, err)
		assert.True(t, tr.DetJ(quadrature.Point{}) > 0)
	}
}

func TestValidateCatchesBrokenMesh(t *testing.T) {
	m, err := SegmentMesh(0, 1, 2)
	assert.NoError(t, err)

	bad := *m
	bad.EToV = [][]int{{0, 1}, {1, 99}}
	err = bad.Validate()
	assert.Error(t, err)
	var topo *InconsistentMeshTopologyError
	assert.ErrorAs(t, err, &topo)
}
