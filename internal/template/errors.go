// Package template provides the built-in starter templates and the user's
// template library.
package template

import "fmt"

// TemplateNotFoundError indicates a template does not exist.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s", e.Name)
}

// InvalidFrontMatterError indicates a template's YAML header could not be
// decoded.
type InvalidFrontMatterError struct {
	Path string
	Err  error
}

func (e *InvalidFrontMatterError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid front matter: %v", e.Err)
	}
	return fmt.Sprintf("invalid front matter in %s: %v", e.Path, e.Err)
}

func (e *InvalidFrontMatterError) Unwrap() error {
	return e.Err
}
