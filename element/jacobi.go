package element

import "math"

// jacobiPAll evaluates the orthonormal Jacobi polynomials P_0..P_N with
// weights (alpha,beta) at a single reference point r, via the three term
// recurrence.
func jacobiPAll(r, alpha, beta float64, N int) (p []float64) {
	p = make([]float64, N+1)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	p[0] = rg
	if N == 0 {
		return
	}
	ab := alpha + beta
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	p[1] = rg1 * ((ab+2.0)*r/2.0 + (alpha-beta)/2.0)
	if N == 1 {
		return
	}
	a1 := alpha + 1.
	b1 := beta + 1.
	ab1 := ab + 1.
	aold := 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := ip1 + 1
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		p[i+2] = (-aold*p[i] + (r-bnew)*p[i+1]) / anew
		aold = anew
	}
	return
}

// gradJacobiPAll evaluates d/dr of the orthonormal Jacobi polynomials
// P_0..P_N at r.
func gradJacobiPAll(r, alpha, beta float64, N int) (dp []float64) {
	dp = make([]float64, N+1)
	if N == 0 {
		return
	}
	ph := jacobiPAll(r, alpha+1, beta+1, N-1)
	for n := 1; n <= N; n++ {
		fN := float64(n)
		dp[n] = math.Sqrt(fN*(fN+alpha+beta+1)) * ph[n-1]
	}
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	ab := alpha + beta
	a1 := alpha + 1.
	b1 := beta + 1.
	return a1 * b1 * gamma0(alpha, beta) / (ab + 3.0)
}
