// Package fs provides the file and directory handles a prompt session reads
// from, and the recursive enumeration built on top of them.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EntryKind discriminates the two things a directory listing can contain.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
)

func (k EntryKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// FileHandle is a live reference to a readable file. Reading it again later
// returns the file's current contents.
type FileHandle interface {
	Name() string
	Size(ctx context.Context) (int64, error)
	ReadText(ctx context.Context) (string, error)
}

// DirectoryHandle lists one level of a directory.
type DirectoryHandle interface {
	Name() string
	Entries(ctx context.Context) ([]Entry, error)
}

// Entry is one child of a directory. Exactly one of File and Dir is set,
// matching Kind.
type Entry struct {
	Name string
	Kind EntryKind
	File FileHandle
	Dir  DirectoryHandle
}

// File is a FileHandle backed by a path on the local filesystem.
type File struct {
	path string
}

// OpenFile returns a handle for the regular file at path.
func OpenFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	return &File{path: abs}, nil
}

func (f *File) Name() string { return filepath.Base(f.path) }

// Path returns the absolute path of the file.
func (f *File) Path() string { return f.path }

func (f *File) Size(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return 0, &ReadError{Path: f.path, Err: err}
	}
	return info.Size(), nil
}

func (f *File) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", &ReadError{Path: f.path, Err: err}
	}
	return string(data), nil
}

// Dir is a DirectoryHandle backed by a local directory.
type Dir struct {
	path string
}

// OpenDir returns a handle for the directory at path.
func OpenDir(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("not a directory")}
	}
	return &Dir{path: abs}, nil
}

func (d *Dir) Name() string { return filepath.Base(d.path) }

// Path returns the absolute path of the directory.
func (d *Dir) Path() string { return d.path }

// Entries lists the directory, directories first, then by name. Symlinks are
// reported as files so enumeration never follows them.
func (d *Dir) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, &ReadError{Path: d.path, Err: err}
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		child := filepath.Join(d.path, de.Name())
		if de.IsDir() && de.Type()&os.ModeSymlink == 0 {
			entries = append(entries, Entry{Name: de.Name(), Kind: KindDirectory, Dir: &Dir{path: child}})
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Kind: KindFile, File: &File{path: child}})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind == KindDirectory
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
