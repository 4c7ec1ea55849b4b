package element

import (
	"math"

	"github.com/notargets/gofea/quadrature"
	"github.com/notargets/gofea/utils"
)

// Reference local face conventions:
//
// Segment: face 0 is the vertex at r=-1, face 1 the vertex at r=+1.
//
// Quad ([-1,-1],[1,-1],[1,1],[-1,1], CCW): edge a runs from local vertex a to
// vertex (a+1)%4, parametrized by t in [-1,1] along that traversal.

// FaceTransformation carries the shared-face geometry between two adjacent
// elements (ElemB nil on boundary faces): the maps from a face quadrature
// point into each element's reference coordinates, the face Jacobian weight,
// and the unit normal oriented outward from ElemA.
type FaceTransformation struct {
	Geom           utils.GeomType // geometry of the face itself
	FaceNo         int
	ElemA, ElemB   *Transformation
	LocalA, LocalB int
	// FlipB is set when ElemB traverses the shared face opposite to ElemA
	// (the usual case for consistently oriented 2D meshes).
	FlipB bool
}

// ACoords maps a face quadrature point into ElemA's reference coordinates.
func (ft *FaceTransformation) ACoords(fp quadrature.Point) quadrature.Point {
	return faceToElem(ft.ElemA.Geom, ft.LocalA, fp.R)
}

// BCoords maps a face quadrature point into ElemB's reference coordinates.
func (ft *FaceTransformation) BCoords(fp quadrature.Point) quadrature.Point {
	t := fp.R
	if ft.FlipB {
		t = -t
	}
	return faceToElem(ft.ElemB.Geom, ft.LocalB, t)
}

func faceToElem(geom utils.GeomType, localFace int, t float64) (ip quadrature.Point) {
	switch geom {
	case utils.GeomSegment:
		if localFace == 0 {
			ip.R = -1
		} else {
			ip.R = 1
		}
	case utils.GeomQuad:
		switch localFace {
		case 0:
			ip.R, ip.S = t, -1
		case 1:
			ip.R, ip.S = 1, t
		case 2:
			ip.R, ip.S = -t, 1
		case 3:
			ip.R, ip.S = -1, -t
		}
	}
	return
}

// Normal returns the unit normal at the face point, oriented outward from
// ElemA. It is derived from the face Jacobian (the tangent of the physical
// edge traversal) rather than any 1D parametrization special case: for CCW
// element traversal the right-hand rotation of the tangent points outward.
func (ft *FaceTransformation) Normal(fp quadrature.Point) (n []float64) {
	switch ft.ElemA.Geom {
	case utils.GeomSegment:
		if ft.LocalA == 0 {
			return []float64{-1}
		}
		return []float64{1}
	case utils.GeomQuad:
		tx, ty := ft.tangent()
		l := math.Hypot(tx, ty)
		return []float64{ty / l, -tx / l}
	}
	return nil
}

// Weight returns the face Jacobian magnitude |dx/dt| at the face point, 1 for
// point faces.
func (ft *FaceTransformation) Weight(fp quadrature.Point) float64 {
	switch ft.Geom {
	case utils.GeomPoint:
		return 1
	default:
		tx, ty := ft.tangent()
		return math.Hypot(tx, ty)
	}
}

// tangent is dx/dt of ElemA's affine edge traversal.
func (ft *FaceTransformation) tangent() (tx, ty float64) {
	var (
		a  = ft.LocalA
		a1 = (ft.LocalA + 1) % 4
		V  = ft.ElemA.Verts
	)
	tx = 0.5 * (V.At(a1, 0) - V.At(a, 0))
	ty = 0.5 * (V.At(a1, 1) - V.At(a, 1))
	return
}
