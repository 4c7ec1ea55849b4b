package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK wraps a dictionary-of-keys sparse matrix used while a global operator is
// under assembly. Accumulation happens through AddAt; once assembly is
// finished the operator is converted to CSR and treated as read only.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) Set(i, j int, val float64) DOK {
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

// AddAt accumulates val into entry (i,j). Scatter-add is the only write path
// used during assembly, so any element visitation order produces the same
// operator up to floating point rounding.
func (m DOK) AddAt(i, j int, val float64) DOK {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

func (m DOK) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

func (m DOK) NNZ() int { return m.M.NNZ() }

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

// CSR wraps the compressed sparse row form of an assembled operator. The
// solvers work directly on the raw Indptr/Ind/Data storage.
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) NNZ() int                      { return m.M.NNZ() }

func (m CSR) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

// MulVec computes R = m * x using the raw CSR storage.
func (m CSR) MulVec(x Vector) (R Vector) {
	var (
		nr, _ = m.Dims()
		raw   = m.RawMatrix()
		dataX = x.RawVector().Data
	)
	R = NewVector(nr)
	dataR := R.RawVector().Data
	for i := 0; i < nr; i++ {
		var sum float64
		for jp := raw.Indptr[i]; jp < raw.Indptr[i+1]; jp++ {
			sum += raw.Data[jp] * dataX[raw.Ind[jp]]
		}
		dataR[i] = sum
	}
	return
}

// Diagonal extracts the main diagonal.
func (m CSR) Diagonal() (D Vector) {
	var (
		nr, _ = m.Dims()
		raw   = m.RawMatrix()
	)
	D = NewVector(nr)
	for i := 0; i < nr; i++ {
		for jp := raw.Indptr[i]; jp < raw.Indptr[i+1]; jp++ {
			if raw.Ind[jp] == i {
				D.Set(i, raw.Data[jp])
			}
		}
	}
	return
}

func (m CSR) ToDense() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	m.DoNonZero(func(i, j int, v float64) {
		R.Set(i, j, v)
	})
	return
}
