package expr

import (
	"fmt"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// EvalError represents a failed evaluation of an expression node.
type EvalError struct {
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("cannot evaluate %s: %s", e.Expr, e.Message)
}

// AlignmentError represents two operand vectors whose lengths cannot be
// broadcast against each other.
type AlignmentError struct {
	Left  int
	Right int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("cannot align value vectors of length %d and %d", e.Left, e.Right)
}

// UnknownColumnError represents a column reference that the evaluation
// context cannot resolve, e.g. an expression built from one table but
// evaluated against another.
type UnknownColumnError struct {
	Table value.TableID
	Name  string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q is not available in the evaluation context", e.Name)
}
