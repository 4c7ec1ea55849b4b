package element

import "github.com/notargets/gofea/quadrature"

// Coefficient is a pure scalar evaluator of a transformation plus integration
// point. Implementations must not keep mutable state across calls; the
// integrators evaluate them once per quadrature point.
type Coefficient interface {
	Eval(tr *Transformation, ip quadrature.Point) float64
}

type ConstantCoefficient float64

func (c ConstantCoefficient) Eval(tr *Transformation, ip quadrature.Point) float64 {
	return float64(c)
}

// FunctionCoefficient evaluates a closed form function of physical position.
type FunctionCoefficient func(x []float64) float64

func (f FunctionCoefficient) Eval(tr *Transformation, ip quadrature.Point) float64 {
	return f(tr.Transform(ip))
}

// VectorCoefficient is the vector valued analogue, used for velocity fields.
type VectorCoefficient interface {
	Eval(tr *Transformation, ip quadrature.Point) []float64
}

type ConstantVectorCoefficient []float64

func (c ConstantVectorCoefficient) Eval(tr *Transformation, ip quadrature.Point) []float64 {
	return []float64(c)
}

type VectorFunctionCoefficient func(x []float64) []float64

func (f VectorFunctionCoefficient) Eval(tr *Transformation, ip quadrature.Point) []float64 {
	return f(tr.Transform(ip))
}
