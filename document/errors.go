package document

import (
	"errors"
	"fmt"
)

// Sentinel errors for document assembly.
var (
	ErrInvalidSize = errors.New("document: page size must be positive")
	ErrNilImage    = errors.New("document: nil page image")
	ErrNoPages     = errors.New("document: no page has been added")
	ErrClosed      = errors.New("document: document has already been written")
)

// Error reports a failed document operation.
type Error struct {
	Op  string // operation name, e.g. "AddPage", "Output"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("document.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
