package element

import (
	"github.com/notargets/gofea/quadrature"
	"github.com/notargets/gofea/utils"
)

// FunctionSpace tags the polynomial family of a basis. Tensor product bases
// (Qk) cover segments and quads; simplex bases (Pk) would cover triangles and
// tets and require one extra quadrature degree on faces.
type FunctionSpace uint8

const (
	SpaceQk FunctionSpace = iota
	SpacePk
)

// Basis is a nodal Lagrange basis of order P on a reference geometry. The one
// dimensional building block interpolates at Gauss-Lobatto points and is
// evaluated through the orthonormal Jacobi Vandermonde: with V[i][j] =
// P_j(R_i), the cardinal functions are l_i(r) = sum_j Vinv[j][i] P_j(r).
// Tensor products of the 1D block cover the quad.
type Basis struct {
	Geom  utils.GeomType
	P     int // polynomial order
	Np    int // local dof count
	R     []float64
	V     utils.Matrix
	Vinv  utils.Matrix
	space FunctionSpace
}

func NewBasis(geom utils.GeomType, p int) (*Basis, error) {
	if p < 0 {
		return nil, &utils.UnsupportedElementTypeError{Geom: geom, Order: p}
	}
	switch geom {
	case utils.GeomSegment, utils.GeomQuad:
	default:
		return nil, &utils.UnsupportedElementTypeError{Geom: geom, Order: p}
	}
	b := &Basis{
		Geom:  geom,
		P:     p,
		R:     quadrature.GaussLobatto(p + 1),
		space: SpaceQk,
	}
	switch geom {
	case utils.GeomSegment:
		b.Np = p + 1
	case utils.GeomQuad:
		b.Np = (p + 1) * (p + 1)
	}
	n1 := p + 1
	b.V = utils.NewMatrix(n1, n1)
	for i := 0; i < n1; i++ {
		b.V.SetRow(i, jacobiPAll(b.R[i], 0, 0, p))
	}
	var err error
	if b.Vinv, err = b.V.Inverse(); err != nil {
		return nil, err
	}
	b.V.SetReadOnly("V")
	b.Vinv.SetReadOnly("Vinv")
	return b, nil
}

func (b *Basis) Order() int           { return b.P }
func (b *Basis) NumDof() int          { return b.Np }
func (b *Basis) Space() FunctionSpace { return b.space }

// shape1D evaluates the P+1 one dimensional cardinal functions at r.
func (b *Basis) shape1D(r float64) (s []float64) {
	var (
		n1 = b.P + 1
		pv = jacobiPAll(r, 0, 0, b.P)
	)
	s = make([]float64, n1)
	for i := 0; i < n1; i++ {
		var sum float64
		for j := 0; j < n1; j++ {
			sum += b.Vinv.At(j, i) * pv[j]
		}
		s[i] = sum
	}
	return
}

// dshape1D evaluates the derivatives of the cardinal functions at r.
func (b *Basis) dshape1D(r float64) (ds []float64) {
	var (
		n1 = b.P + 1
		dp = gradJacobiPAll(r, 0, 0, b.P)
	)
	ds = make([]float64, n1)
	for i := 0; i < n1; i++ {
		var sum float64
		for j := 0; j < n1; j++ {
			sum += b.Vinv.At(j, i) * dp[j]
		}
		ds[i] = sum
	}
	return
}

// CalcShape evaluates all shape functions at the reference point ip.
func (b *Basis) CalcShape(ip quadrature.Point) (s utils.Vector) {
	switch b.Geom {
	case utils.GeomSegment:
		s = utils.NewVector(b.Np, b.shape1D(ip.R))
	case utils.GeomQuad:
		var (
			n1 = b.P + 1
			sr = b.shape1D(ip.R)
			ss = b.shape1D(ip.S)
		)
		s = utils.NewVector(b.Np)
		for j := 0; j < n1; j++ {
			for i := 0; i < n1; i++ {
				s.Set(i+n1*j, sr[i]*ss[j])
			}
		}
	}
	return
}

// CalcDShape evaluates the reference space gradients of all shape functions
// at ip, one row per shape function.
func (b *Basis) CalcDShape(ip quadrature.Point) (ds utils.Matrix) {
	switch b.Geom {
	case utils.GeomSegment:
		ds = utils.NewMatrix(b.Np, 1, b.dshape1D(ip.R))
	case utils.GeomQuad:
		var (
			n1  = b.P + 1
			sr  = b.shape1D(ip.R)
			ss  = b.shape1D(ip.S)
			dsr = b.dshape1D(ip.R)
			dss = b.dshape1D(ip.S)
		)
		ds = utils.NewMatrix(b.Np, 2)
		for j := 0; j < n1; j++ {
			for i := 0; i < n1; i++ {
				ds.Set(i+n1*j, 0, dsr[i]*ss[j])
				ds.Set(i+n1*j, 1, sr[i]*dss[j])
			}
		}
	}
	return
}

// NodalPoint returns the reference coordinates of local dof i. The Lagrange
// property shape_i(NodalPoint(j)) = delta_ij makes nodal interpolation exact
// for coefficient projection.
func (b *Basis) NodalPoint(i int) (ip quadrature.Point) {
	switch b.Geom {
	case utils.GeomSegment:
		ip.R = b.R[i]
	case utils.GeomQuad:
		n1 := b.P + 1
		ip.R = b.R[i%n1]
		ip.S = b.R[i/n1]
	}
	return
}
