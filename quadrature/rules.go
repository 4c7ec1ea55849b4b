package quadrature

import (
	"math"
	"sync"

	"github.com/notargets/gofea/utils"
	"gonum.org/v1/gonum/mat"
)

// Point is an integration point in reference coordinates on [-1,1]^d. S is
// unused for one dimensional geometries.
type Point struct {
	R, S float64
}

// Rule holds the points and weights of a quadrature rule over a reference
// geometry. A rule of Degree d integrates polynomials of total degree <= d
// exactly on the reference element.
type Rule struct {
	Geom    utils.GeomType
	Degree  int
	Points  []Point
	Weights []float64
}

func (q *Rule) NPoints() int { return len(q.Points) }

type ruleKey struct {
	geom   utils.GeomType
	degree int
}

var (
	cacheMu sync.Mutex
	cache   = make(map[ruleKey]*Rule)
)

// Get returns a quadrature rule of at least the requested degree of exactness
// for the given reference geometry. Rules are cached and shared; callers must
// treat them as read only.
func Get(geom utils.GeomType, degree int) (*Rule, error) {
	if degree < 0 {
		degree = 0
	}
	key := ruleKey{geom, degree}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if q, ok := cache[key]; ok {
		return q, nil
	}
	var q *Rule
	switch geom {
	case utils.GeomPoint:
		q = &Rule{
			Geom:    geom,
			Degree:  degree,
			Points:  []Point{{}},
			Weights: []float64{1},
		}
	case utils.GeomSegment:
		x, w := GaussLegendre(degree/2 + 1)
		q = &Rule{Geom: geom, Degree: degree}
		for i := range x {
			q.Points = append(q.Points, Point{R: x[i]})
			q.Weights = append(q.Weights, w[i])
		}
	case utils.GeomQuad:
		x, w := GaussLegendre(degree/2 + 1)
		q = &Rule{Geom: geom, Degree: degree}
		for j := range x {
			for i := range x {
				q.Points = append(q.Points, Point{R: x[i], S: x[j]})
				q.Weights = append(q.Weights, w[i]*w[j])
			}
		}
	default:
		return nil, &utils.UnsupportedElementTypeError{Geom: geom}
	}
	cache[key] = q
	return q, nil
}

// GaussLegendre computes the n point Gauss-Legendre rule on [-1,1] by the
// Golub-Welsch method: the points are the eigenvalues of the symmetric
// tridiagonal Jacobi matrix of the Legendre recurrence, the weights come from
// the first component of each eigenvector.
func GaussLegendre(n int) (x, w []float64) {
	x, w = jacobiGQ(0, 0, n-1)
	return
}

// GaussLobatto computes the n point Gauss-Lobatto-Legendre nodes on [-1,1],
// endpoints included. These are the interpolation nodes of the nodal Lagrange
// bases; only the points are needed there, not the weights.
func GaussLobatto(n int) (x []float64) {
	if n < 2 {
		return []float64{0}
	}
	N := n - 1
	x = make([]float64, n)
	x[0] = -1
	x[N] = 1
	if N > 1 {
		xint, _ := jacobiGQ(1, 1, N-2)
		copy(x[1:N], xint)
	}
	return
}

// jacobiGQ computes the N+1 point Gauss quadrature rule for the Jacobi weight
// (1-x)^alpha (1+x)^beta.
func jacobiGQ(alpha, beta float64, N int) (x, w []float64) {
	var (
		fac        float64
		h1, d0, d1 []float64
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{2.}
		return
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: diag(-1/2*(alpha^2-beta^2)./(h1+2)./h1)
	d0 = make([]float64, N+1)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// 1st upper diagonal
	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := utils.NewSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	ok := eig.Factorize(JJ, true)
	if !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(x)

	VVr := mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	w = make([]float64, len(x))
	g0 := gamma0(alpha, beta)
	for i := range w {
		v := VVr.At(0, i)
		w[i] = v * v * g0
	}
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}
