package fs

import (
	"errors"
	"fmt"
)

// ErrAborted is returned when the user dismisses a picker. It is not a failure:
// callers leave their state untouched and report nothing.
var ErrAborted = errors.New("selection aborted")

// IsAborted reports whether err is a user cancellation.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}

// ReadError indicates a file or directory could not be read through its handle.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ItemError is a per-entry failure collected during a batch operation.
type ItemError struct {
	Path string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}
