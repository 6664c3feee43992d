package standings

import "fmt"

// ComputationError signals input the engine cannot derive anything from.
// Well-formed data never produces one.
type ComputationError struct {
	Op     string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("standings: %s: %s", e.Op, e.Reason)
}
