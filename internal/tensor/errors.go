package tensor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShapeMismatch is matched by every *ShapeError via errors.Is.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeError reports payload or seed shapes that cannot be reconciled.
type ShapeError struct {
	Op      string  // Operation that detected the mismatch (e.g. "add", "backward")
	Shapes  []Shape // Shapes involved, in operand order
	Details string  // Additional details
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	parts := make([]string, len(e.Shapes))
	for i, s := range e.Shapes {
		parts[i] = s.String()
	}
	msg := fmt.Sprintf("%s: %s", e.Op, ErrShapeMismatch)
	if len(parts) > 0 {
		msg += " " + strings.Join(parts, " vs ")
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Is makes errors.Is(err, ErrShapeMismatch) succeed.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShapeMismatch
}
