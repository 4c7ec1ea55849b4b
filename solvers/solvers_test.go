package solvers

import (
	"math"
	"testing"

	"github.com/notargets/gofea/utils"
	"github.com/stretchr/testify/assert"
)

// tridiag builds the diagonally dominant SPD matrix diag(d) with off
// diagonals o as CSR.
func tridiag(n int, d, o float64) utils.CSR {
	dok := utils.NewDOK(n, n)
	for i := 0; i < n; i++ {
		dok.Set(i, i, d)
		if i > 0 {
			dok.Set(i, i-1, o)
		}
		if i < n-1 {
			dok.Set(i, i+1, o)
		}
	}
	return dok.ToCSR()
}

func residual(A utils.CSR, x, b utils.Vector) float64 {
	return b.Copy().Sub(A.MulVec(x)).Norm() / b.Norm()
}

func TestCGConvergesMonotonically(t *testing.T) {
	var (
		n = 50
		A = tridiag(n, 10, -1)
		b = utils.NewVector(n).SetAll(1)
	)
	x, rep, err := Solve(A, b, utils.NewVector(n), Config{
		Method: CG, Precon: Jacobi, Tolerance: 1.e-12, MaxIterations: 200,
	})
	assert.NoError(t, err)
	assert.True(t, rep.Converged)
	assert.True(t, rep.Iterations <= 200)
	assert.True(t, residual(A, x, b) < 1.e-10)
	for i := 1; i < len(rep.Residuals); i++ {
		assert.True(t, rep.Residuals[i] <= rep.Residuals[i-1]+1.e-14)
	}
}

func TestCGConvergenceFailure(t *testing.T) {
	var (
		n = 100
		A = tridiag(n, 2, -1) // poorly conditioned Laplacian
		b = utils.NewVector(n).SetAll(1)
	)
	_, rep, err := Solve(A, b, utils.NewVector(n), Config{
		Method: CG, Tolerance: 1.e-14, MaxIterations: 3,
	})
	var cf *ConvergenceFailureError
	assert.ErrorAs(t, err, &cf)
	assert.Equal(t, 3, cf.Iterations)
	assert.True(t, cf.Residual > 0)
	assert.False(t, rep.Converged)
	assert.Equal(t, rep.ResidualNorm, cf.Residual)
}

func TestGMRESNonsymmetric(t *testing.T) {
	// Upper bidiagonal shifted system, nonsymmetric
	n := 40
	dok := utils.NewDOK(n, n)
	for i := 0; i < n; i++ {
		dok.Set(i, i, 4)
		if i < n-1 {
			dok.Set(i, i+1, -2)
		}
		if i > 0 {
			dok.Set(i, i-1, 0.5)
		}
	}
	var (
		A = dok.ToCSR()
		b = utils.NewVector(n).SetAll(1)
	)
	for _, pc := range []Preconditioner{None, GaussSeidel} {
		x, rep, err := Solve(A, b, utils.NewVector(n), Config{
			Method: GMRES, Precon: pc, Tolerance: 1.e-12, MaxIterations: 400,
			RestartDim: 20,
		})
		assert.NoError(t, err)
		assert.True(t, rep.Converged)
		assert.True(t, residual(A, x, b) < 1.e-10)
	}
}

// Transposed DG convection operators carry exact zeros on element-interior
// diagonal entries. The diagonal sweeps must stay finite on such rows and the
// report must carry the true residual of the returned solution rather than
// the Givens estimate.
func TestGMRESZeroDiagonal(t *testing.T) {
	dok := utils.NewDOK(4, 4)
	dok.Set(0, 1, 2)
	dok.Set(1, 0, 1)
	dok.Set(1, 1, 2.2e-16) // round-off scale, not exactly zero
	dok.Set(2, 2, 3)
	dok.Set(2, 3, 1)
	dok.Set(3, 3, 1)
	var (
		A = dok.ToCSR()
		b = utils.NewVector(4, []float64{2, 1, 4, 1})
	)
	for _, pc := range []Preconditioner{Jacobi, GaussSeidel} {
		x, rep, err := Solve(A, b, utils.NewVector(4), Config{
			Method: GMRES, Precon: pc, Tolerance: 1.e-12, MaxIterations: 100,
		})
		assert.NoError(t, err)
		assert.True(t, rep.Converged)
		res := residual(A, x, b)
		assert.True(t, res < 1.e-10)
		assert.True(t, math.Abs(res-rep.ResidualNorm) < 1.e-12)
		// x = (1, 1, 1, 1)
		for i := 0; i < 4; i++ {
			assert.True(t, math.Abs(x.AtVec(i)-1) < 1.e-9)
		}
	}
}

func TestDirectLUAgainstCG(t *testing.T) {
	var (
		n = 30
		A = tridiag(n, 5, -1)
		b = utils.NewVector(n)
	)
	for i := 0; i < n; i++ {
		b.Set(i, math.Sin(float64(i)))
	}
	xd, repd, err := Solve(A, b, utils.NewVector(n), Config{Method: DirectLU})
	assert.NoError(t, err)
	assert.True(t, repd.Converged)

	xi, _, err := Solve(A, b, utils.NewVector(n), Config{
		Method: CG, Precon: Jacobi, Tolerance: 1.e-14, MaxIterations: 500,
	})
	assert.NoError(t, err)
	for i := 0; i < n; i++ {
		assert.True(t, math.Abs(xd.AtVec(i)-xi.AtVec(i)) < 1.e-10)
	}
}

func TestSolveZeroRHS(t *testing.T) {
	A := tridiag(10, 3, -1)
	x, rep, err := Solve(A, utils.NewVector(10), utils.NewVector(10), Config{
		Method: CG, Precon: Jacobi,
	})
	assert.NoError(t, err)
	assert.True(t, rep.Converged)
	assert.True(t, x.Norm() < 1.e-12)
}
