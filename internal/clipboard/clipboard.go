// Package clipboard writes composed prompts to, and reads change lists from,
// the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is present.
var ErrUnavailable = errors.New("clipboard unavailable on this system")

// DeniedError indicates the clipboard refused a read or write.
type DeniedError struct {
	Op  string
	Err error
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("clipboard %s denied: %v", e.Op, e.Err)
}

func (e *DeniedError) Unwrap() error {
	return e.Err
}

// Writer receives text destined for the clipboard.
type Writer interface {
	WriteText(text string) error
}

// Reader returns the current clipboard text.
type Reader interface {
	ReadText() (string, error)
}

// System is the OS clipboard.
type System struct{}

// Available reports whether a clipboard backend was found.
func (System) Available() bool {
	return !clipboard.Unsupported
}

func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return &DeniedError{Op: "write", Err: err}
	}
	return nil
}

func (System) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", &DeniedError{Op: "read", Err: err}
	}
	return text, nil
}

// Memory is an in-process clipboard, used when no system clipboard exists and
// in tests.
type Memory struct {
	Text string
	Err  error
}

func (m *Memory) WriteText(text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Text = text
	return nil
}

func (m *Memory) ReadText() (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}
