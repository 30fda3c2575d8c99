package changes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/pf/internal/debug"
)

// ApplyOptions configures Apply.
type ApplyOptions struct {
	DryRun bool
}

// ApplyResult records what happened to each change. Failed entries did not
// stop the rest of the batch.
type ApplyResult struct {
	Root     string         `json:"root"`
	DryRun   bool           `json:"dry_run"`
	Created  []string       `json:"created"`
	Updated  []string       `json:"updated"`
	Deleted  []string       `json:"deleted"`
	Skipped  []string       `json:"skipped"`
	Warnings []string       `json:"warnings,omitempty"`
	Failed   []*ChangeError `json:"-"`
}

// HasFailures reports whether any change failed.
func (r *ApplyResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// Apply performs changes below root. Every change is attempted. Paths must be
// relative and resolve inside root.
func Apply(root string, changes []Change, opts ApplyOptions) (*ApplyResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving target path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return nil, &TargetNotFoundError{Path: absRoot}
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving target path: %w", err)
	}

	result := &ApplyResult{
		Root:    absRoot,
		DryRun:  opts.DryRun,
		Created: []string{},
		Updated: []string{},
		Deleted: []string{},
		Skipped: []string{},
	}

	for _, c := range changes {
		target, err := resolvePath(absRoot, c.Path)
		if err == nil {
			err = checkLinks(realRoot, target, c.Path)
		}
		if err != nil {
			result.Failed = append(result.Failed, &ChangeError{Op: c.Operation, Path: c.Path, Err: err})
			continue
		}
		if err := applyOne(result, target, c, opts.DryRun); err != nil {
			result.Failed = append(result.Failed, &ChangeError{Op: c.Operation, Path: c.Path, Err: err})
		}
	}

	debug.Debug("changes: applied to %s: %d created, %d updated, %d deleted, %d failed",
		absRoot, len(result.Created), len(result.Updated), len(result.Deleted), len(result.Failed))
	return result, nil
}

func applyOne(result *ApplyResult, target string, c Change, dryRun bool) error {
	existing, statErr := os.Stat(target)
	exists := statErr == nil
	if exists && existing.IsDir() {
		return fmt.Errorf("is a directory")
	}

	switch c.Operation {
	case OpCreate, OpUpdate:
		if c.Operation == OpCreate && exists {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s already exists, overwriting", c.Path))
		}
		if c.Operation == OpUpdate && !exists {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s does not exist, creating", c.Path))
		}
		if !dryRun {
			mode := os.FileMode(0o644)
			if exists {
				mode = existing.Mode().Perm()
			}
			if err := writeFile(target, c.Code, mode); err != nil {
				return err
			}
		}
		if c.Operation == OpCreate {
			result.Created = append(result.Created, c.Path)
		} else {
			result.Updated = append(result.Updated, c.Path)
		}

	case OpDelete:
		if !exists {
			result.Skipped = append(result.Skipped, c.Path)
			return nil
		}
		if !dryRun {
			if err := os.Remove(target); err != nil {
				return err
			}
		}
		result.Deleted = append(result.Deleted, c.Path)

	default:
		return fmt.Errorf("unknown operation %q", c.Operation)
	}
	return nil
}

func writeFile(target, content string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}
	return os.WriteFile(target, []byte(content), mode)
}

// resolvePath joins rel onto root, refusing absolute paths and any path that
// climbs out of root.
func resolvePath(root, rel string) (string, error) {
	if rel == "" {
		return "", errors.New("empty path")
	}
	slashed := filepath.FromSlash(rel)
	if filepath.IsAbs(slashed) || strings.HasPrefix(rel, "/") {
		return "", &PathEscapeError{Path: rel}
	}
	target := filepath.Join(root, slashed)
	if target == root || !inside(root, target) {
		return "", &PathEscapeError{Path: rel}
	}
	return target, nil
}

// checkLinks refuses a target that reaches outside realRoot through a
// symlink. The deepest existing path on the way to target, target included,
// is resolved; anything below it does not exist yet.
func checkLinks(realRoot, target, rel string) error {
	existing := target
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return nil
		}
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", rel, err)
	}
	if !inside(realRoot, resolved) {
		return &PathEscapeError{Path: rel}
	}
	return nil
}

// inside reports whether path is root or lies below it.
func inside(root, path string) bool {
	within, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return within != ".." && !strings.HasPrefix(within, ".."+string(filepath.Separator))
}
