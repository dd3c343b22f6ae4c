package numlist

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrFormat          = errors.New("malformed numeral")
	ErrTypeMismatch    = errors.New("operand is not a digit list")
	ErrUnsupported     = errors.New("unsupported conversion")
	// ErrConcurrentModification is returned by a cursor whose list was structurally changed behind its back.
	ErrConcurrentModification = errors.New("list was modified outside of the cursor")
	ErrNoSuchElement          = errors.New("no such element")
	ErrNoCurrentElement       = errors.New("cursor has no current element")
)

// IndexError reports an index outside the valid range of the attempted operation.
type IndexError struct {
	Op    string
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range for size %d", e.Op, e.Index, e.Size)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
