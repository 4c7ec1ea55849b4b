package quadrature

import (
	"math"
	"testing"

	"github.com/notargets/gofea/utils"
	"github.com/stretchr/testify/assert"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1.e-10
}

// integrate1D applies a rule to a polynomial in r.
func integrate(rule *Rule, f func(p Point) float64) (sum float64) {
	for q, p := range rule.Points {
		sum += rule.Weights[q] * f(p)
	}
	return
}

func TestGaussLegendreExactness(t *testing.T) {
	// An n-point rule is exact through degree 2n-1 on [-1,1]
	for n := 1; n <= 8; n++ {
		x, w := GaussLegendre(n)
		assert.Len(t, x, n)
		for deg := 0; deg <= 2*n-1; deg++ {
			var sum float64
			for i := range x {
				sum += w[i] * math.Pow(x[i], float64(deg))
			}
			exact := 0.0
			if deg%2 == 0 {
				exact = 2.0 / float64(deg+1)
			}
			assert.True(t, near(sum, exact))
		}
	}
}

func TestSegmentRule(t *testing.T) {
	for deg := 0; deg <= 10; deg++ {
		rule, err := Get(utils.GeomSegment, deg)
		assert.NoError(t, err)
		// Exact for r^deg
		sum := integrate(rule, func(p Point) float64 {
			return math.Pow(p.R, float64(deg))
		})
		exact := 0.0
		if deg%2 == 0 {
			exact = 2.0 / float64(deg+1)
		}
		assert.True(t, near(sum, exact))
	}
}

func TestQuadTensorRule(t *testing.T) {
	rule, err := Get(utils.GeomQuad, 5)
	assert.NoError(t, err)
	// Area of the reference square
	assert.True(t, near(integrate(rule, func(p Point) float64 { return 1 }), 4))
	// Int r^2 s^4 over [-1,1]^2 = (2/3)*(2/5)
	sum := integrate(rule, func(p Point) float64 {
		return p.R * p.R * math.Pow(p.S, 4)
	})
	assert.True(t, near(sum, (2.0/3.0)*(2.0/5.0)))
	// Odd powers vanish
	assert.True(t, near(integrate(rule, func(p Point) float64 { return p.R * p.S }), 0))
}

func TestPointRule(t *testing.T) {
	rule, err := Get(utils.GeomPoint, 7)
	assert.NoError(t, err)
	assert.Equal(t, 1, rule.NPoints())
	assert.True(t, near(rule.Weights[0], 1))
}

func TestRuleCache(t *testing.T) {
	a, err := Get(utils.GeomSegment, 4)
	assert.NoError(t, err)
	b, err := Get(utils.GeomSegment, 4)
	assert.NoError(t, err)
	assert.Same(t, a, b)
}

func TestUnsupportedGeometry(t *testing.T) {
	_, err := Get(utils.GeomTet, 2)
	var unsup *utils.UnsupportedElementTypeError
	assert.ErrorAs(t, err, &unsup)
}

func TestGaussLobatto(t *testing.T) {
	for n := 2; n <= 6; n++ {
		x := GaussLobatto(n)
		assert.Len(t, x, n)
		assert.True(t, near(x[0], -1))
		assert.True(t, near(x[n-1], 1))
		for i := 1; i < n; i++ {
			assert.True(t, x[i] > x[i-1])
		}
	}
	// The degenerate single-node case sits at the origin
	assert.Equal(t, []float64{0}, GaussLobatto(1))
}
