package autodiff

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Common errors.
var (
	ErrNoGradPath    = errors.New("value does not require grad and has no grad_fn")
	ErrGraphReleased = errors.New("graph already released (backward through it again with RetainGraph)")
	ErrForeignGraph  = errors.New("values belong to different graphs")
	ErrGradDisabled  = errors.New("gradient tracking is disabled")
)

// ShapeError reports payload or seed shapes that cannot be reconciled.
type ShapeError = tensor.ShapeError

// ErrShapeMismatch is matched by every ShapeError via errors.Is.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// GraphError reports a backward pass or operation that cannot use the graph:
// no differentiable path, released records, or mixed graphs.
type GraphError struct {
	Op    string    // Operation that failed (e.g. "backward", "mul")
	Graph uuid.UUID // Graph the operation ran against
	Err   error     // One of the Err* sentinels
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	return fmt.Sprintf("%s: graph %s: %v", e.Op, e.Graph, e.Err)
}

// Unwrap exposes the sentinel.
func (e *GraphError) Unwrap() error { return e.Err }

// FlagError reports an operation that conflicts with a Value's
// differentiation flag.
type FlagError struct {
	Op    string // Operation that failed
	Value string // Name or description of the offending Value
	Err   error  // Underlying reason
}

// Error implements the error interface.
func (e *FlagError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: value %q: %v", e.Op, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying reason.
func (e *FlagError) Unwrap() error { return e.Err }
