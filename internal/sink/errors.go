package sink

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrClosed           = errors.New("sink is closed")
	ErrChecksumMismatch = errors.New("checksum mismatch: snapshot may be corrupted")
	ErrInvalidSnapshot  = errors.New("invalid snapshot")
)

// ValidationError provides detailed information about a rejected key or a
// malformed snapshot entry.
type ValidationError struct {
	Type    string // Type of error (e.g., "invalid_name", "out_of_bounds")
	Key     string // Entry involved, if any
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: entry %q: %s", e.Type, e.Key, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Is makes every ValidationError match ErrInvalidSnapshot.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSnapshot
}
