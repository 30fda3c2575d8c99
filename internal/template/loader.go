package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tormodhaugland/pf/internal/debug"
)

//go:embed starters/*.md
var starterFS embed.FS

// LibraryExtension is the extension of template files in the library.
const LibraryExtension = ".md"

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Starters returns the built-in templates sorted by name.
func Starters() []Template {
	entries, err := fs.ReadDir(starterFS, "starters")
	if err != nil {
		return nil
	}

	var out []Template
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != LibraryExtension {
			continue
		}
		data, err := fs.ReadFile(starterFS, "starters/"+e.Name())
		if err != nil {
			continue
		}
		tmpl, err := fromText(string(data), baseName(e.Name()), OriginStarter, "")
		if err != nil {
			debug.Debug("template: starter %s: %v", e.Name(), err)
			continue
		}
		out = append(out, *tmpl)
	}
	sortTemplates(out)
	return out
}

// ListLibrary returns the templates in dir. A missing directory is empty.
// Files with invalid front matter are skipped.
func ListLibrary(dir string) ([]Template, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading template library %s: %w", dir, err)
	}

	var out []Template
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), LibraryExtension) {
			continue
		}
		tmpl, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			debug.Debug("template: skipping %s: %v", name, err)
			continue
		}
		tmpl.Origin = OriginLibrary
		out = append(out, *tmpl)
	}
	sortTemplates(out)
	return out, nil
}

// LoadFile reads a single template file from disk.
func LoadFile(path string) (*Template, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return fromText(string(data), baseName(abs), OriginLibrary, abs)
}

// List returns library templates and starters together. A library template
// hides a starter with the same name.
func List(libraryDir string) ([]Template, error) {
	library, err := ListLibrary(libraryDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(library))
	out := make([]Template, 0, len(library))
	for _, t := range library {
		seen[t.Name] = true
		out = append(out, t)
	}
	for _, t := range Starters() {
		if !seen[t.Name] {
			out = append(out, t)
		}
	}
	sortTemplates(out)
	return out, nil
}

// Find looks a template up by exact name, then by fuzzy match. ambiguous is
// true when the best fuzzy match tied with the runner-up.
func Find(templates []Template, query string) (tmpl *Template, ambiguous bool, err error) {
	for i := range templates {
		if templates[i].Name == query {
			return &templates[i], false, nil
		}
	}

	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 || matches[0].Score < -10 {
		return nil, false, &TemplateNotFoundError{Name: query}
	}

	best := matches[0]
	ambiguous = len(matches) > 1 && matches[1].Score == best.Score
	return &templates[best.Index], ambiguous, nil
}

func sortTemplates(ts []Template) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Name != ts[j].Name {
			return ts[i].Name < ts[j].Name
		}
		return ts[i].Origin < ts[j].Origin
	})
}
