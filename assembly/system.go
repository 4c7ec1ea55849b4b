package assembly

import (
	"github.com/notargets/gofea/utils"
)

// FormLinearSystem eliminates the essential dofs from an assembled system.
// Rows and columns of essential dofs are replaced by identity, the known
// values w move their column contribution onto the right hand side, and the
// essential rhs entries are set to the prescribed values so the solve
// reproduces them exactly.
func FormLinearSystem(A utils.CSR, b utils.Vector, essDofs utils.Index,
	w utils.Vector) (Ae utils.CSR, be utils.Vector) {
	var (
		n, _  = A.Dims()
		isEss = essDofs.Mask(n)
		dok   = utils.NewDOK(n, n)
	)
	be = b.Copy()
	A.DoNonZero(func(i, j int, v float64) {
		switch {
		case !isEss[i] && !isEss[j]:
			dok.AddAt(i, j, v)
		case !isEss[i] && isEss[j]:
			be.AddAt(i, -v*w.AtVec(j))
		}
	})
	for _, e := range essDofs {
		dok.Set(e, e, 1)
		be.Set(e, w.AtVec(e))
	}
	return dok.ToCSR(), be
}

// RecoverSolution re-inserts the prescribed essential values into the solved
// vector, making the boundary data exact regardless of solver round-off.
func RecoverSolution(x utils.Vector, essDofs utils.Index, w utils.Vector) utils.Vector {
	for _, e := range essDofs {
		x.Set(e, w.AtVec(e))
	}
	return x
}
