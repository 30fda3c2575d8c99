package template

import (
	"bytes"
	"context"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tormodhaugland/pf/internal/fs"
)

// Origin says where a template came from.
type Origin string

const (
	OriginStarter Origin = "starter"
	OriginLibrary Origin = "library"
)

// FrontMatter is the optional YAML header of a template file.
type FrontMatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// Template is a prompt template with its metadata. Body excludes the front
// matter.
type Template struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Origin      Origin   `json:"origin"`
	Path        string   `json:"path,omitempty"`
	Body        string   `json:"-"`
}

// Source returns a handle that re-reads the template body from disk, or nil
// for starters, which cannot change.
func (t *Template) Source() fs.FileHandle {
	if t.Origin != OriginLibrary || t.Path == "" {
		return nil
	}
	h, err := OpenSource(t.Path)
	if err != nil {
		return nil
	}
	return h
}

// OpenSource returns a handle for the template file at path whose reads
// yield the body without front matter.
func OpenSource(path string) (fs.FileHandle, error) {
	f, err := fs.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &bodyFile{File: f}, nil
}

// bodyFile strips front matter on every read.
type bodyFile struct {
	*fs.File
}

func (b *bodyFile) ReadText(ctx context.Context) (string, error) {
	text, err := b.File.ReadText(ctx)
	if err != nil {
		return "", err
	}
	_, body, err := ParseFrontMatter(text)
	if err != nil {
		return "", &InvalidFrontMatterError{Path: b.Path(), Err: err}
	}
	return body, nil
}

const fmDelim = "---"

// ParseFrontMatter splits a leading "---" delimited YAML block from text. Text
// without a complete block is returned whole with empty metadata.
func ParseFrontMatter(text string) (FrontMatter, string, error) {
	var fm FrontMatter

	first, rest, ok := cutLine(text)
	if !ok || strings.TrimRight(first, " \t\r") != fmDelim {
		return fm, text, nil
	}

	var header strings.Builder
	for {
		line, next, more := cutLine(rest)
		if strings.TrimRight(line, " \t\r") == fmDelim {
			if err := decodeFrontMatter(header.String(), &fm); err != nil {
				return FrontMatter{}, text, err
			}
			return fm, next, nil
		}
		if !more {
			return FrontMatter{}, text, nil
		}
		header.WriteString(line)
		header.WriteByte('\n')
		rest = next
	}
}

func decodeFrontMatter(header string, fm *FrontMatter) error {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader([]byte(header)))
	dec.KnownFields(true)
	return dec.Decode(fm)
}

// cutLine splits text after its first newline. ok is false when text has no
// newline, in which case line is all of text.
func cutLine(text string) (line, rest string, ok bool) {
	i := strings.IndexByte(text, '\n')
	if i < 0 {
		return text, "", false
	}
	return text[:i], text[i+1:], true
}

// fromText builds a template from file text, falling back to fallbackName
// when the front matter has no name.
func fromText(text, fallbackName string, origin Origin, path string) (*Template, error) {
	fm, body, err := ParseFrontMatter(text)
	if err != nil {
		return nil, &InvalidFrontMatterError{Path: path, Err: err}
	}
	name := strings.TrimSpace(fm.Name)
	if name == "" {
		name = fallbackName
	}
	return &Template{
		Name:        name,
		Description: strings.TrimSpace(fm.Description),
		Tags:        fm.Tags,
		Origin:      origin,
		Path:        path,
		Body:        body,
	}, nil
}
