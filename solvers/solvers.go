// Package solvers provides stateless linear solvers over the assembled CSR
// operator: preconditioned conjugate gradients for SPD systems, restarted
// GMRES for the nonsymmetric DG operators, and a dense LU direct path for
// small or exactness-critical solves.
package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/utils"
)

type Method uint8

const (
	CG Method = iota
	GMRES
	DirectLU
)

func (m Method) String() string {
	switch m {
	case CG:
		return "CG"
	case GMRES:
		return "GMRES"
	case DirectLU:
		return "DirectLU"
	}
	return "UnknownMethod"
}

type Preconditioner uint8

const (
	None Preconditioner = iota
	Jacobi
	GaussSeidel
)

// Config selects the solve strategy. Zero values fall back to sensible
// defaults in Solve.
type Config struct {
	Method        Method
	Precon        Preconditioner
	Tolerance     float64 // relative residual target
	MaxIterations int
	RestartDim    int // GMRES restart length
}

// Report carries the solve diagnostics: the iteration count, the final
// relative residual and its per-iteration history.
type Report struct {
	Iterations   int
	ResidualNorm float64
	Residuals    []float64
	Converged    bool
}

// ConvergenceFailureError reports an iterative solve that exhausted its
// iteration cap, with the last residual so the caller can decide what to do.
type ConvergenceFailureError struct {
	Method     Method
	Iterations int
	Residual   float64
}

func (e *ConvergenceFailureError) Error() string {
	return fmt.Sprintf("%v failed to converge in %d iterations, relative residual %v",
		e.Method, e.Iterations, e.Residual)
}

// Solve runs the configured solver on A x = b starting from x0. The solution
// of a failed iterative solve is still returned alongside the error so the
// residual metadata in Report stays meaningful, but it must not be treated
// as converged.
func Solve(A utils.CSR, b, x0 utils.Vector, cfg Config) (x utils.Vector, rep Report, err error) {
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 1.e-12
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 1000
	}
	if cfg.RestartDim == 0 {
		cfg.RestartDim = 30
	}
	switch cfg.Method {
	case CG:
		return solveCG(A, b, x0, cfg)
	case GMRES:
		return solveGMRES(A, b, x0, cfg)
	case DirectLU:
		return solveLU(A, b)
	}
	return x, rep, fmt.Errorf("unknown solver method %d", cfg.Method)
}

// applyPrecon solves M z = r for the configured preconditioner. Jacobi uses
// the matrix diagonal; GaussSeidel is one symmetric sweep on the raw CSR
// rows, which keeps GMRES cheap without forming anything new.
type precon struct {
	kind Preconditioner
	diag utils.Vector
	raw  rawCSR
}

type rawCSR struct {
	indptr, ind []int
	data        []float64
}

func newPrecon(A utils.CSR, kind Preconditioner) precon {
	p := precon{kind: kind}
	switch kind {
	case Jacobi:
		p.diag = guardDiagonal(A.Diagonal())
	case GaussSeidel:
		p.diag = guardDiagonal(A.Diagonal())
		raw := A.RawMatrix()
		p.raw = rawCSR{indptr: raw.Indptr, ind: raw.Ind, data: raw.Data}
	}
	return p
}

// guardDiagonal replaces zero and round-off scale diagonal entries with 1 so
// the diagonal sweeps stay finite. Transposed DG convection operators carry
// exact zeros on element-interior dofs.
func guardDiagonal(d utils.Vector) utils.Vector {
	var (
		n    = d.Len()
		dmax float64
	)
	for i := 0; i < n; i++ {
		if a := math.Abs(d.AtVec(i)); a > dmax {
			dmax = a
		}
	}
	floor := 1.e-13 * dmax
	for i := 0; i < n; i++ {
		if math.Abs(d.AtVec(i)) <= floor {
			d.Set(i, 1)
		}
	}
	return d
}

func (p precon) apply(r utils.Vector) (z utils.Vector) {
	switch p.kind {
	case Jacobi:
		n := r.Len()
		z = utils.NewVector(n)
		for i := 0; i < n; i++ {
			z.Set(i, r.AtVec(i)/p.diag.AtVec(i))
		}
		return z
	case GaussSeidel:
		return p.symGaussSeidel(r)
	}
	return r.Copy()
}

func (p precon) symGaussSeidel(r utils.Vector) (z utils.Vector) {
	n := r.Len()
	z = utils.NewVector(n)
	sweep := func(i int) {
		sum := r.AtVec(i)
		for jp := p.raw.indptr[i]; jp < p.raw.indptr[i+1]; jp++ {
			if j := p.raw.ind[jp]; j != i {
				sum -= p.raw.data[jp] * z.AtVec(j)
			}
		}
		z.Set(i, sum/p.diag.AtVec(i))
	}
	for i := 0; i < n; i++ {
		sweep(i)
	}
	for i := n - 1; i >= 0; i-- {
		sweep(i)
	}
	return z
}

func solveCG(A utils.CSR, b, x0 utils.Vector, cfg Config) (x utils.Vector, rep Report, err error) {
	var (
		pc    = newPrecon(A, cfg.Precon)
		x_    = x0.Copy()
		r     = b.Copy().Sub(A.MulVec(x_))
		z     = pc.apply(r)
		p     = z.Copy()
		rz    = r.Dot(z)
		bnorm = b.Norm()
	)
	if bnorm == 0 {
		bnorm = 1
	}
	rep.ResidualNorm = r.Norm() / bnorm
	rep.Residuals = append(rep.Residuals, rep.ResidualNorm)
	if rep.ResidualNorm < cfg.Tolerance {
		rep.Converged = true
		return x_, rep, nil
	}
	for it := 1; it <= cfg.MaxIterations; it++ {
		var (
			Ap    = A.MulVec(p)
			alpha = rz / p.Dot(Ap)
		)
		x_.AXPY(alpha, p)
		r.AXPY(-alpha, Ap)
		res := r.Norm() / bnorm
		rep.Iterations = it
		rep.ResidualNorm = res
		rep.Residuals = append(rep.Residuals, res)
		if res < cfg.Tolerance {
			rep.Converged = true
			return x_, rep, nil
		}
		z = pc.apply(r)
		rzNew := r.Dot(z)
		p = z.Copy().AXPY(rzNew/rz, p)
		rz = rzNew
	}
	return x_, rep, &ConvergenceFailureError{
		Method: CG, Iterations: rep.Iterations, Residual: rep.ResidualNorm,
	}
}

// solveGMRES is restarted GMRES(m) with left preconditioning, modified
// Gram-Schmidt Arnoldi and Givens rotations on the Hessenberg system.
func solveGMRES(A utils.CSR, b, x0 utils.Vector, cfg Config) (x utils.Vector, rep Report, err error) {
	var (
		pc     = newPrecon(A, cfg.Precon)
		n      = b.Len()
		m      = cfg.RestartDim
		x_     = x0.Copy()
		bnorm  = b.Norm()
		bnormP = pc.apply(b).Norm()
	)
	if m > n {
		m = n
	}
	if bnorm == 0 {
		bnorm = 1
	}
	if bnormP == 0 {
		bnormP = 1
	}
	for {
		// The Givens recurrence below only estimates the preconditioned
		// residual and drifts in finite precision, so convergence is declared
		// on the true relative residual alone.
		rtrue := b.Copy().Sub(A.MulVec(x_))
		rep.ResidualNorm = rtrue.Norm() / bnorm
		if len(rep.Residuals) == 0 {
			rep.Residuals = append(rep.Residuals, rep.ResidualNorm)
		}
		if rep.ResidualNorm < cfg.Tolerance {
			rep.Converged = true
			return x_, rep, nil
		}
		if rep.Iterations >= cfg.MaxIterations {
			break
		}
		var (
			r    = pc.apply(rtrue)
			beta = r.Norm()
		)
		if beta == 0 {
			break
		}
		var (
			V     = make([]utils.Vector, m+1)
			H     = utils.NewMatrix(m+1, m)
			cs    = make([]float64, m)
			sn    = make([]float64, m)
			g     = make([]float64, m+1)
			inner int
		)
		V[0] = r.Copy().Scale(1 / beta)
		g[0] = beta
		for j := 0; j < m && rep.Iterations < cfg.MaxIterations; j++ {
			rep.Iterations++
			w := pc.apply(A.MulVec(V[j]))
			for i := 0; i <= j; i++ {
				h := w.Dot(V[i])
				H.Set(i, j, h)
				w.AXPY(-h, V[i])
			}
			hj1 := w.Norm()
			H.Set(j+1, j, hj1)
			if hj1 > 0 {
				V[j+1] = w.Scale(1 / hj1)
			}
			// Apply the accumulated rotations, then form the new one
			for i := 0; i < j; i++ {
				h0, h1 := H.At(i, j), H.At(i+1, j)
				H.Set(i, j, cs[i]*h0+sn[i]*h1)
				H.Set(i+1, j, -sn[i]*h0+cs[i]*h1)
			}
			var (
				h0, h1 = H.At(j, j), H.At(j+1, j)
				denom  = math.Hypot(h0, h1)
			)
			if denom == 0 {
				denom, h0 = 1, 1
			}
			cs[j], sn[j] = h0/denom, h1/denom
			H.Set(j, j, denom)
			H.Set(j+1, j, 0)
			g[j+1] = -sn[j] * g[j]
			g[j] *= cs[j]
			inner = j + 1
			est := math.Abs(g[j+1]) / bnormP
			rep.Residuals = append(rep.Residuals, est)
			if est < cfg.Tolerance || hj1 == 0 {
				break
			}
		}
		// Back substitution on the inner x inner triangular system
		y := make([]float64, inner)
		for i := inner - 1; i >= 0; i-- {
			sum := g[i]
			for j := i + 1; j < inner; j++ {
				sum -= H.At(i, j) * y[j]
			}
			y[i] = sum / H.At(i, i)
		}
		for i := 0; i < inner; i++ {
			x_.AXPY(y[i], V[i])
		}
	}
	return x_, rep, &ConvergenceFailureError{
		Method: GMRES, Iterations: rep.Iterations, Residual: rep.ResidualNorm,
	}
}

func solveLU(A utils.CSR, b utils.Vector) (x utils.Vector, rep Report, err error) {
	var (
		lu mat.LU
		v  mat.VecDense
	)
	lu.Factorize(A.ToDense().M)
	if err = lu.SolveVecTo(&v, false, b.V); err != nil {
		return x, rep, fmt.Errorf("direct solve: %w", err)
	}
	n := b.Len()
	x = utils.NewVector(n, v.RawVector().Data)
	res := b.Copy().Sub(A.MulVec(x)).Norm()
	if bn := b.Norm(); bn > 0 {
		res /= bn
	}
	rep.ResidualNorm = res
	rep.Residuals = []float64{res}
	rep.Converged = true
	return x, rep, nil
}
