package store

import (
	"errors"
	"fmt"
)

// Typed outcomes returned by store operations. Handlers match these with
// errors.Is and translate them into transport responses; the messages are
// fixed strings that never include absolute paths.
var (
	// ErrPathEscape means the resolved path fell outside the storage root.
	ErrPathEscape = errors.New("path escapes storage root")

	// ErrNotFound means the operation target does not exist or is not a
	// regular file where one is required.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists means a folder-creation target already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupportedType means an upload extension is not allow-listed.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// IOError wraps a filesystem failure outside the store's control
// (permissions, disk full, cross-device fallback failure). The wrapped error
// is kept for logging; client-facing messages use Op only.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ioFailure wraps err as an IOError for operation op.
func ioFailure(op string, err error) error {
	return &IOError{Op: op, Err: err}
}

// IsIOFailure reports whether err is an I/O failure outcome.
func IsIOFailure(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
