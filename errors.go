package stampgen

import (
	"errors"
	"fmt"
)

// Sentinel errors for common template and generation failure conditions.
var (
	ErrEmptyName     = errors.New("stampgen: data node name is empty")
	ErrDuplicateName = errors.New("stampgen: data node name already exists")
	ErrUnknownNode   = errors.New("stampgen: data node does not exist")
	ErrUnknownField  = errors.New("stampgen: field does not exist")

	// Generation preconditions. A run that violates one of these produces
	// no output at all.
	ErrNoFields   = errors.New("stampgen: template has no fields")
	ErrNoRows     = errors.New("stampgen: no data rows to generate from")
	ErrNoTemplate = errors.New("stampgen: template PDF is missing or unreadable")
)

// OpError represents an error that occurred during a specific template
// operation. It wraps an underlying error and includes the operation name
// for context.
type OpError struct {
	Op  string // operation name, e.g. "AddDataNode", "DeleteField"
	Err error  // underlying error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stampgen.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("stampgen.%s: unknown error", e.Op)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// newOpError creates a new OpError wrapping the given error with operation context.
func newOpError(op string, err error) *OpError {
	return &OpError{Op: op, Err: err}
}
