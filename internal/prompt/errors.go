package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// AllowedTemplateExtensions lists the file extensions accepted as templates.
var AllowedTemplateExtensions = []string{".md", ".markdown", ".txt"}

// ErrNothingToCopy is returned by Retry before anything has been composed.
var ErrNothingToCopy = errors.New("nothing composed yet")

// InvalidTemplateError indicates a template file was rejected before parsing.
type InvalidTemplateError struct {
	Name   string
	Reason string
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("invalid template %s: %s", e.Name, e.Reason)
}

// SlotBusyError indicates an operation is already running for a slot.
type SlotBusyError struct {
	Slot string
}

func (e *SlotBusyError) Error() string {
	return fmt.Sprintf("slot %s is busy", e.Slot)
}

// ClipboardError wraps a failed clipboard write. The output stays available
// for a retry.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("copying to clipboard: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

// ValidateTemplateName checks that name has an accepted template extension.
func ValidateTemplateName(name string) error {
	lower := strings.ToLower(name)
	for _, ext := range AllowedTemplateExtensions {
		if strings.HasSuffix(lower, ext) {
			return nil
		}
	}
	return &InvalidTemplateError{
		Name:   name,
		Reason: fmt.Sprintf("expected one of %s", strings.Join(AllowedTemplateExtensions, ", ")),
	}
}
