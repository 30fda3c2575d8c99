// Package changes parses XML change lists and applies them to a directory.
package changes

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Operation is what a change does to its file.
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Change is one validated entry of a change list.
type Change struct {
	Summary   string    `json:"summary,omitempty"`
	Operation Operation `json:"operation"`
	Path      string    `json:"path"`
	Code      string    `json:"-"`
}

// ChangeList is the decoded document. Invalid lists the entries that were
// dropped during validation.
type ChangeList struct {
	Changes []Change           `json:"changes"`
	Invalid []*ValidationError `json:"invalid,omitempty"`
}

const (
	openTag  = "<changed_files>"
	closeTag = "</changed_files>"
)

type xmlChangeList struct {
	XMLName xml.Name  `xml:"changed_files"`
	Files   []xmlFile `xml:"file"`
}

type xmlFile struct {
	Summary   string  `xml:"file_summary"`
	Operation string  `xml:"file_operation"`
	Path      string  `xml:"file_path"`
	Code      xmlCode `xml:"file_code"`
}

// xmlCode keeps both the raw and the decoded body of <file_code>. A lone
// CDATA section is taken verbatim, without the whitespace around it.
type xmlCode struct {
	Inner string `xml:",innerxml"`
	Text  string `xml:",chardata"`
}

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

func (c xmlCode) body() string {
	inner := strings.TrimSpace(c.Inner)
	if strings.HasPrefix(inner, cdataOpen) && strings.HasSuffix(inner, cdataClose) &&
		strings.Count(inner, cdataOpen) == 1 {
		return trimCodeLayout(inner[len(cdataOpen) : len(inner)-len(cdataClose)])
	}
	return trimCodeLayout(c.Text)
}

// Parse extracts the <changed_files> block from text, which may be surrounded
// by prose, and decodes it.
func Parse(text string) (*ChangeList, error) {
	start := strings.Index(text, openTag)
	if start < 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("no %s element found", openTag)}
	}
	end := strings.LastIndex(text, closeTag)
	if end < start {
		return nil, &ParseError{Reason: fmt.Sprintf("missing %s", closeTag)}
	}

	var doc xmlChangeList
	if err := xml.Unmarshal([]byte(text[start:end+len(closeTag)]), &doc); err != nil {
		return nil, &ParseError{Reason: "malformed XML", Err: err}
	}

	list := &ChangeList{Changes: []Change{}}
	for i, f := range doc.Files {
		c := Change{
			Summary:   strings.TrimSpace(f.Summary),
			Operation: Operation(strings.ToUpper(strings.TrimSpace(f.Operation))),
			Path:      strings.TrimSpace(f.Path),
			Code:      f.Code.body(),
		}
		if err := validate(i, c); err != nil {
			list.Invalid = append(list.Invalid, err)
			continue
		}
		list.Changes = append(list.Changes, c)
	}
	return list, nil
}

func validate(i int, c Change) *ValidationError {
	if !c.Operation.Valid() {
		return &ValidationError{Index: i, Field: "file_operation", Reason: fmt.Sprintf("unknown operation %q", c.Operation)}
	}
	if c.Path == "" {
		return &ValidationError{Index: i, Field: "file_path", Reason: "empty"}
	}
	return nil
}

// trimCodeLayout drops the line break that follows "<![CDATA[".
func trimCodeLayout(code string) string {
	if strings.HasPrefix(code, "\r\n") {
		return code[2:]
	}
	return strings.TrimPrefix(code, "\n")
}
