package changes

import "fmt"

// ParseError indicates the change list could not be decoded at all.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing change list: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parsing change list: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError indicates one entry of the list is unusable. Index is the
// entry's position in the document, starting at 0.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entry %d: invalid %s: %s", e.Index, e.Field, e.Reason)
}

// ChangeError is a failure applying a single change.
type ChangeError struct {
	Op   Operation
	Path string
	Err  error
}

func (e *ChangeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ChangeError) Unwrap() error {
	return e.Err
}

// TargetNotFoundError indicates the target directory doesn't exist.
type TargetNotFoundError struct {
	Path string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("target directory not found: %s", e.Path)
}

// PathEscapeError indicates a change path points outside the target.
type PathEscapeError struct {
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path escapes target directory: %s", e.Path)
}
