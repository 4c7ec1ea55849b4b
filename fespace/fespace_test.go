package fespace

import (
	"math"
	"testing"

	"github.com/notargets/gofea/element"
	"github.com/notargets/gofea/mesh"
	"github.com/stretchr/testify/assert"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1.e-10
}

func TestH1SegmentNumbering(t *testing.T) {
	m, err := mesh.SegmentMesh(0, 1, 3)
	assert.NoError(t, err)
	for p := 1; p <= 4; p++ {
		sp, err := NewSpace(m, p, H1)
		assert.NoError(t, err)
		// Nv + K*(p-1)
		assert.Equal(t, 4+3*(p-1), sp.NumDofs())
		assert.Equal(t, 4, sp.NumExposedDofs())
		// Shared vertex dof between adjacent elements
		for k := 0; k < 2; k++ {
			assert.Equal(t, sp.ElemDofs(k)[p], sp.ElemDofs(k+1)[0])
		}
	}
}

func TestH1QuadNumbering(t *testing.T) {
	m, err := mesh.QuadMesh(0, 1, 0, 1, 2, 2)
	assert.NoError(t, err)
	for p := 1; p <= 3; p++ {
		sp, err := NewSpace(m, p, H1)
		assert.NoError(t, err)
		// (2p+1)^2 dofs for a 2x2 grid of Qp quads
		n := 2*p + 1
		assert.Equal(t, n*n, sp.NumDofs())
		assert.Equal(t, 9+12*(p-1), sp.NumExposedDofs())
		// Every global dof in an element map is in range
		for k := 0; k < m.NumElements(); k++ {
			for _, g := range sp.ElemDofs(k) {
				assert.True(t, g >= 0 && g < sp.NumDofs())
			}
		}
	}
}

// Shared edge dofs must agree between neighbors even when the neighbor
// traverses the edge reversed. Projecting a smooth function and reading it
// back through both element dof maps checks the orientation handling.
func TestH1EdgeOrientation(t *testing.T) {
	m, err := mesh.QuadMesh(0, 2, 0, 1, 2, 1)
	assert.NoError(t, err)
	sp, err := NewSpace(m, 3, H1)
	assert.NoError(t, err)

	f := element.FunctionCoefficient(func(x []float64) float64 {
		return x[0] + 10*x[1] + x[0]*x[1]
	})
	u, err := sp.Project(f)
	assert.NoError(t, err)

	for k := 0; k < m.NumElements(); k++ {
		tr, err := m.ElemTransformation(k)
		assert.NoError(t, err)
		b := sp.ElemBasis(k)
		for i, g := range sp.ElemDofs(k) {
			x := tr.Transform(b.NodalPoint(i))
			assert.True(t, near(u.AtVec(g), x[0]+10*x[1]+x[0]*x[1]))
		}
	}
}

func TestL2Numbering(t *testing.T) {
	m, err := mesh.SegmentMesh(0, 1, 3)
	assert.NoError(t, err)
	sp, err := NewSpace(m, 2, L2)
	assert.NoError(t, err)
	assert.Equal(t, 9, sp.NumDofs())
	// No sharing between elements
	seen := make(map[int]bool)
	for k := 0; k < 3; k++ {
		for _, g := range sp.ElemDofs(k) {
			assert.False(t, seen[g])
			seen[g] = true
		}
	}
	assert.Empty(t, sp.EssentialDofs([]bool{true, true}))
}

func TestEssentialDofs(t *testing.T) {
	m, err := mesh.QuadMesh(0, 1, 0, 1, 2, 2)
	assert.NoError(t, err)
	sp, err := NewSpace(m, 2, H1)
	assert.NoError(t, err)

	// All four sides: boundary of a 2x2 Q2 grid has 8 vertices + 8 edge dofs
	all := sp.EssentialDofs([]bool{true, true, true, true})
	assert.Len(t, all, 16)

	// Bottom only: 3 vertices + 2 edge dofs
	bottom := sp.EssentialDofs([]bool{true, false, false, false})
	assert.Len(t, bottom, 5)

	// Essential dofs live in the exposed prefix
	for _, g := range all {
		assert.True(t, g < sp.NumExposedDofs())
	}
}

func TestProjectConstant(t *testing.T) {
	m, err := mesh.SegmentMesh(0, 1, 4)
	assert.NoError(t, err)
	sp, err := NewSpace(m, 3, H1)
	assert.NoError(t, err)
	u, err := sp.Project(element.ConstantCoefficient(2.5))
	assert.NoError(t, err)
	for i := 0; i < u.Len(); i++ {
		assert.True(t, near(u.AtVec(i), 2.5))
	}
}
