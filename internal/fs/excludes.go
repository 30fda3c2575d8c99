package fs

import (
	"bufio"
	"os"
	"path"
	"strings"
)

// BuiltinExcludes lists entries hidden from directory browsing and bulk folder
// selection. Directory patterns end in "/".
var BuiltinExcludes = []string{
	// Version control
	".git/",
	".hg/",
	".svn/",

	// Dependencies
	"node_modules/",
	"vendor/",
	".pnpm-store/",
	"bower_components/",

	// Build output
	"target/",
	"dist/",
	"build/",
	"out/",
	"bin/",
	"obj/",
	"_build/",
	".next/",
	".nuxt/",
	".svelte-kit/",

	// Caches and virtual environments
	".cache/",
	"__pycache__/",
	".pytest_cache/",
	".mypy_cache/",
	".turbo/",
	".venv/",
	"venv/",
	"coverage/",
	"*.pyc",

	// Editors and OS artifacts
	".idea/",
	".vscode/",
	"*.swp",
	"*~",
	".DS_Store",
	"Thumbs.db",

	// Secrets
	".env",
	".env.*",
	"*.pem",
	"*.key",
}

// EnvExcludePatterns are dropped from the list when IncludeEnv is set.
var EnvExcludePatterns = []string{
	".env",
	".env.*",
}

// ExcludeList is the effective set of patterns. A nil *ExcludeList excludes nothing.
type ExcludeList struct {
	Patterns []string
}

// ExcludeOptions configures how the exclude list is built.
type ExcludeOptions struct {
	Additional []string
	Remove     []string
	NoBuiltin  bool
	IncludeEnv bool
}

// BuildExcludeList computes the effective exclude list.
func BuildExcludeList(opts ExcludeOptions) *ExcludeList {
	removeSet := make(map[string]bool, len(opts.Remove)+len(EnvExcludePatterns))
	for _, p := range opts.Remove {
		removeSet[p] = true
	}
	if opts.IncludeEnv {
		for _, p := range EnvExcludePatterns {
			removeSet[p] = true
		}
	}

	patterns := make([]string, 0, len(BuiltinExcludes)+len(opts.Additional))
	if !opts.NoBuiltin {
		for _, p := range BuiltinExcludes {
			if !removeSet[p] {
				patterns = append(patterns, p)
			}
		}
	}
	for _, p := range opts.Additional {
		if p = strings.TrimSpace(p); p != "" && !removeSet[p] {
			patterns = append(patterns, p)
		}
	}

	return &ExcludeList{Patterns: dedupePatterns(patterns)}
}

// Match reports whether the entry at relPath (slash separated, relative to the
// browsing root) is excluded. Patterns containing "/" in their body are anchored
// to the root; all others match the base name at any depth.
func (e *ExcludeList) Match(relPath string, isDir bool) bool {
	if e == nil {
		return false
	}
	relPath = strings.Trim(relPath, "/")
	base := path.Base(relPath)

	for _, p := range e.Patterns {
		dirOnly := strings.HasSuffix(p, "/")
		body := strings.TrimSuffix(p, "/")
		if dirOnly && !isDir {
			continue
		}
		if strings.Contains(body, "/") {
			if ok, _ := path.Match(strings.TrimPrefix(body, "/"), relPath); ok {
				return true
			}
			continue
		}
		if ok, _ := path.Match(body, base); ok {
			return true
		}
	}
	return false
}

// ParseExcludeFile reads exclude patterns from a file.
// Lines starting with # are comments, blank lines are ignored.
func ParseExcludeFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

func dedupePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}
	return result
}
