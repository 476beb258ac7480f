package reportcanvas

import (
	"errors"
	"fmt"

	"github.com/lvillar/reportcanvas/export"
	"github.com/lvillar/reportcanvas/model"
	"github.com/lvillar/reportcanvas/store"
)

// Sentinel errors surfaced by Session. They are the same values the
// underlying packages return, so errors.Is works across the boundary.
var (
	ErrLocked           = store.ErrLocked
	ErrNotFound         = store.ErrNotFound
	ErrExportInProgress = store.ErrExportInProgress
	ErrNoRecords        = export.ErrNoRecords
	ErrNoPages          = export.ErrNoPages
	ErrInvalidField     = model.ErrInvalidField
	ErrInvalidValue     = model.ErrInvalidValue
	ErrRadarTooFewItems = model.ErrRadarTooFewItems
	ErrNoDataset        = errors.New("reportcanvas: no dataset loaded")
)

// Error represents a failed session operation. It wraps the underlying
// error and names the operation for context.
type Error struct {
	Op  string // operation name, e.g. "AddChart", "Export"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reportcanvas.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("reportcanvas.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap returns nil for a nil err and an *Error otherwise.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
