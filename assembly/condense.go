package assembly

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofea/fespace"
	"github.com/notargets/gofea/integrators"
	"github.com/notargets/gofea/utils"
)

// StaticCondensation eliminates the element-interior dofs of an H1 space
// from the assembled system by per-element Schur complements, solving a
// reduced system over the exposed (vertex and edge) dofs only. The interior
// factors are kept for back-substitution, so the condensed path reproduces
// the uncondensed solution up to round-off.
//
// Interior dofs of a continuous space couple only within their own element
// and face integrators would break that, so condensation is limited to H1
// spaces with domain integrators.
type StaticCondensation struct {
	Space *fespace.Space

	elems []condensedElem
	bI    []utils.Vector
}

type condensedElem struct {
	iDofs, bDofs []int // global interior / exposed dofs
	lu           *mat.LU
	aIB, aBI     utils.Matrix
}

func NewStaticCondensation(bf *BilinearForm) (*StaticCondensation, error) {
	if bf.Space.Cont != fespace.H1 {
		return nil, &integrators.InvalidIntegratorUsageError{
			Integrator: "StaticCondensation",
			Op:         "condense a discontinuous space",
		}
	}
	if bf.HasFaceIntegrators() {
		return nil, &integrators.InvalidIntegratorUsageError{
			Integrator: "StaticCondensation",
			Op:         "condense a form with face integrators",
		}
	}
	return &StaticCondensation{Space: bf.Space}, nil
}

// ReduceSystem forms the Schur complement S = A_BB - A_BI inv(A_II) A_IB and
// reduced rhs over the exposed dofs. The exposed dofs keep their global
// numbering, which occupies the contiguous prefix [0, NumExposedDofs).
func (sc *StaticCondensation) ReduceSystem(A utils.CSR, b utils.Vector) (S utils.CSR, br utils.Vector, err error) {
	var (
		sp = sc.Space
		nE = sp.NumExposedDofs()
	)
	br = utils.NewVector(nE)
	for i := 0; i < nE; i++ {
		br.Set(i, b.AtVec(i))
	}
	dok := utils.NewDOK(nE, nE)
	A.DoNonZero(func(i, j int, v float64) {
		if i < nE && j < nE {
			dok.AddAt(i, j, v)
		}
	})

	sc.elems = sc.elems[:0]
	sc.bI = sc.bI[:0]
	for k := 0; k < sp.Mesh.NumElements(); k++ {
		var iDofs, bDofs []int
		for _, g := range sp.ElemDofs(k) {
			if g < nE {
				bDofs = append(bDofs, g)
			} else {
				iDofs = append(iDofs, g)
			}
		}
		if len(iDofs) == 0 {
			continue
		}
		var (
			ni, nb = len(iDofs), len(bDofs)
			aII    = utils.NewMatrix(ni, ni)
			aIB    = utils.NewMatrix(ni, nb)
			aBI    = utils.NewMatrix(nb, ni)
			bIk    = utils.NewVector(ni)
		)
		for i, gi := range iDofs {
			bIk.Set(i, b.AtVec(gi))
			for j, gj := range iDofs {
				aII.Set(i, j, A.At(gi, gj))
			}
			for j, gj := range bDofs {
				aIB.Set(i, j, A.At(gi, gj))
				aBI.Set(j, i, A.At(gj, gi))
			}
		}
		lu := &mat.LU{}
		lu.Factorize(aII.M)
		if lu.Cond() > 1.e15 {
			return S, br, fmt.Errorf("element %d: singular interior block in static condensation", k)
		}
		// X = inv(A_II) A_IB, y = inv(A_II) b_I
		var (
			X mat.Dense
			y mat.VecDense
		)
		if err = lu.SolveTo(&X, false, aIB.M); err != nil {
			return S, br, fmt.Errorf("element %d: %w", k, err)
		}
		if err = lu.SolveVecTo(&y, false, bIk.V); err != nil {
			return S, br, fmt.Errorf("element %d: %w", k, err)
		}
		for i, gi := range bDofs {
			for j, gj := range bDofs {
				var dot float64
				for l := 0; l < ni; l++ {
					dot += aBI.At(i, l) * X.At(l, j)
				}
				if dot != 0 {
					dok.AddAt(gi, gj, -dot)
				}
			}
			var dot float64
			for l := 0; l < ni; l++ {
				dot += aBI.At(i, l) * y.AtVec(l)
			}
			br.AddAt(gi, -dot)
		}
		sc.elems = append(sc.elems, condensedElem{
			iDofs: iDofs, bDofs: bDofs, lu: lu, aIB: aIB, aBI: aBI,
		})
		sc.bI = append(sc.bI, bIk)
	}
	return dok.ToCSR(), br, nil
}

// ComputeSolution expands a reduced solve back to the full dof vector,
// back-substituting the interior dofs element by element.
func (sc *StaticCondensation) ComputeSolution(xr utils.Vector) (x utils.Vector, err error) {
	var (
		sp = sc.Space
		nE = sp.NumExposedDofs()
	)
	x = utils.NewVector(sp.NumDofs())
	for i := 0; i < nE; i++ {
		x.Set(i, xr.AtVec(i))
	}
	for e, ce := range sc.elems {
		// x_I = inv(A_II) (b_I - A_IB x_B)
		r := sc.bI[e].Copy()
		for i := range ce.iDofs {
			for j, gj := range ce.bDofs {
				r.AddAt(i, -ce.aIB.At(i, j)*xr.AtVec(gj))
			}
		}
		var xi mat.VecDense
		if err = ce.lu.SolveVecTo(&xi, false, r.V); err != nil {
			return x, err
		}
		for i, gi := range ce.iDofs {
			x.Set(gi, xi.AtVec(i))
		}
	}
	return x, nil
}
