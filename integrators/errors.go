package integrators

import "fmt"

// InvalidIntegratorUsageError reports an integrator driven through an
// interface it does not implement, a programming error surfaced immediately.
type InvalidIntegratorUsageError struct {
	Integrator string
	Op         string
}

func (e *InvalidIntegratorUsageError) Error() string {
	return fmt.Sprintf("invalid integrator usage: %s cannot %s", e.Integrator, e.Op)
}
