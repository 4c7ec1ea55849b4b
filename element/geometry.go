package element

import (
	"math"

	"github.com/notargets/gofea/quadrature"
	"github.com/notargets/gofea/utils"
)

// Transformation maps reference coordinates on [-1,1]^d to physical
// coordinates for one mesh element, and supplies the Jacobian metadata the
// integrators need at each integration point. It is read only during
// assembly; all queries take the integration point explicitly.
type Transformation struct {
	Geom   utils.GeomType
	ElemNo int
	Verts  utils.Matrix // nverts x dim, element traversal order (CCW for quads)
	dim    int
}

func NewTransformation(geom utils.GeomType, elemNo int, verts utils.Matrix) (*Transformation, error) {
	nr, nc := verts.Dims()
	switch geom {
	case utils.GeomSegment:
		if nr != 2 || nc != 1 {
			return nil, &utils.UnsupportedElementTypeError{Geom: geom}
		}
	case utils.GeomQuad:
		if nr != 4 || nc != 2 {
			return nil, &utils.UnsupportedElementTypeError{Geom: geom}
		}
	default:
		return nil, &utils.UnsupportedElementTypeError{Geom: geom}
	}
	return &Transformation{Geom: geom, ElemNo: elemNo, Verts: verts, dim: nc}, nil
}

func (tr *Transformation) Dim() int { return tr.dim }

// Transform maps the reference point ip to physical coordinates.
func (tr *Transformation) Transform(ip quadrature.Point) (x []float64) {
	switch tr.Geom {
	case utils.GeomSegment:
		x0, x1 := tr.Verts.At(0, 0), tr.Verts.At(1, 0)
		x = []float64{x0 + 0.5*(ip.R+1)*(x1-x0)}
	case utils.GeomQuad:
		n := quadShape(ip)
		x = make([]float64, 2)
		for a := 0; a < 4; a++ {
			x[0] += n[a] * tr.Verts.At(a, 0)
			x[1] += n[a] * tr.Verts.At(a, 1)
		}
	}
	return
}

// Jacobian returns J with J[k][l] = d x_k / d xi_l at ip.
func (tr *Transformation) Jacobian(ip quadrature.Point) (J utils.Matrix) {
	switch tr.Geom {
	case utils.GeomSegment:
		J = utils.NewMatrix(1, 1, []float64{0.5 * (tr.Verts.At(1, 0) - tr.Verts.At(0, 0))})
	case utils.GeomQuad:
		dn := quadDShape(ip)
		J = utils.NewMatrix(2, 2)
		for a := 0; a < 4; a++ {
			for k := 0; k < 2; k++ {
				for l := 0; l < 2; l++ {
					J.AddAt(k, l, dn[a][l]*tr.Verts.At(a, k))
				}
			}
		}
	}
	return
}

// Weight returns |det J| at ip, the volume scaling of the map.
func (tr *Transformation) Weight(ip quadrature.Point) float64 {
	return math.Abs(tr.DetJ(ip))
}

func (tr *Transformation) DetJ(ip quadrature.Point) float64 {
	J := tr.Jacobian(ip)
	switch tr.Geom {
	case utils.GeomSegment:
		return J.At(0, 0)
	default:
		return J.At(0, 0)*J.At(1, 1) - J.At(0, 1)*J.At(1, 0)
	}
}

// Adjugate returns adj(J) at ip, satisfying adj(J) * J = det(J) * I. Physical
// gradients are recovered as grad = adj(J)^T gradRef / det(J).
func (tr *Transformation) Adjugate(ip quadrature.Point) (A utils.Matrix) {
	J := tr.Jacobian(ip)
	switch tr.Geom {
	case utils.GeomSegment:
		A = utils.NewMatrix(1, 1, []float64{1})
	default:
		A = utils.NewMatrix(2, 2, []float64{
			J.At(1, 1), -J.At(0, 1),
			-J.At(1, 0), J.At(0, 0),
		})
	}
	return
}

// Order is the polynomial order of the transformation itself.
func (tr *Transformation) Order() int { return 1 }

// OrderW is the polynomial order of the Jacobian determinant weight.
func (tr *Transformation) OrderW() int {
	if tr.Geom == utils.GeomQuad {
		return 1
	}
	return 0
}

// OrderGrad is the order of adj(J)^T grad(shape) for a basis of order p.
func (tr *Transformation) OrderGrad(p int) int {
	if tr.Geom == utils.GeomQuad {
		return p
	}
	if p > 0 {
		return p - 1
	}
	return 0
}

// Centroid of the element's vertices in physical space.
func (tr *Transformation) Centroid() (c []float64) {
	nr, nc := tr.Verts.Dims()
	c = make([]float64, nc)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			c[j] += tr.Verts.At(i, j) / float64(nr)
		}
	}
	return
}

// Bilinear corner functions on [-1,1]^2, CCW from (-1,-1).
func quadShape(ip quadrature.Point) [4]float64 {
	r, s := ip.R, ip.S
	return [4]float64{
		0.25 * (1 - r) * (1 - s),
		0.25 * (1 + r) * (1 - s),
		0.25 * (1 + r) * (1 + s),
		0.25 * (1 - r) * (1 + s),
	}
}

func quadDShape(ip quadrature.Point) [4][2]float64 {
	r, s := ip.R, ip.S
	return [4][2]float64{
		{-0.25 * (1 - s), -0.25 * (1 - r)},
		{0.25 * (1 - s), -0.25 * (1 + r)},
		{0.25 * (1 + s), 0.25 * (1 + r)},
		{-0.25 * (1 + s), 0.25 * (1 - r)},
	}
}
