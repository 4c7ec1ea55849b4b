package utils

import "fmt"

// UnsupportedElementTypeError reports a geometry/order combination that has no
// matching quadrature or basis definition. It is fatal; callers cannot recover
// by retrying.
type UnsupportedElementTypeError struct {
	Geom  GeomType
	Order int
}

func (e *UnsupportedElementTypeError) Error() string {
	return fmt.Sprintf("unsupported element type: geometry %v, order %d", e.Geom, e.Order)
}
