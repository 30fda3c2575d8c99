package prompt

import (
	"context"
	"strings"

	"github.com/tormodhaugland/pf/internal/fs"
)

// Pick is a file chosen for a slot, with the path it is recorded under.
type Pick struct {
	Handle fs.FileHandle
	Path   string
}

// LoadResult collects the outcome of loading a batch of picks.
type LoadResult struct {
	Records []FileRecord
	Skipped []string
	Errors  []fs.ItemError
}

// LoadFiles gates and reads each pick in order. Oversized files wait on gate
// one at a time; a refused file is listed in Skipped and never read. Read
// failures are collected and the batch continues. A nil gate refuses every
// oversized file.
func LoadFiles(ctx context.Context, picks []Pick, gate Gate) LoadResult {
	if gate == nil {
		gate = RejectLarge
	}

	var res LoadResult
	for _, p := range picks {
		size, err := p.Handle.Size(ctx)
		if err != nil {
			res.Errors = append(res.Errors, fs.ItemError{Path: p.Path, Err: err})
			continue
		}

		if NeedsConfirmation(size) {
			ok, err := gate.ConfirmLarge(ctx, Candidate{Name: p.Path, Size: size})
			if err != nil {
				res.Errors = append(res.Errors, fs.ItemError{Path: p.Path, Err: err})
				continue
			}
			if !ok {
				res.Skipped = append(res.Skipped, p.Path)
				continue
			}
		}

		text, err := p.Handle.ReadText(ctx)
		if err != nil {
			res.Errors = append(res.Errors, fs.ItemError{Path: p.Path, Err: err})
			continue
		}
		res.Records = append(res.Records, FileRecord{
			Path:     p.Path,
			Size:     int64(len(text)),
			Contents: text,
			Source:   p.Handle,
		})
	}
	return res
}

// BulkResult is the outcome of a folder-level add or remove.
type BulkResult struct {
	Added   []string
	Removed []string
	Skipped []string
	Errors  []fs.ItemError
}

func dirPicks(files []fs.ListedFile, base string) []Pick {
	picks := make([]Pick, 0, len(files))
	for _, f := range files {
		picks = append(picks, Pick{Handle: f.Handle, Path: fs.JoinRel(base, f.RelPath)})
	}
	return picks
}

// ListPicks lists every file under dir as picks recorded under base, the
// directory's path relative to the selection root.
func ListPicks(ctx context.Context, dir fs.DirectoryHandle, base string, excludes *fs.ExcludeList) ([]Pick, []fs.ItemError) {
	listed, errs := fs.ListAllFiles(ctx, dir, excludes)
	return dirPicks(listed, base), prefixErrors(errs, base)
}

func unbound(store *Store, slot string, picks []Pick) []Pick {
	var fresh []Pick
	for _, p := range picks {
		if !store.HasPath(slot, p.Path) {
			fresh = append(fresh, p)
		}
	}
	return fresh
}

// AddDirectory adds every file under dir to the slot. base is dir's path
// relative to the selection root and prefixes each recorded path. Files
// already bound under the same path are left alone. The slot is written once,
// after the whole batch has been read.
func AddDirectory(ctx context.Context, store *Store, slot string, dir fs.DirectoryHandle, base string, excludes *fs.ExcludeList, gate Gate) BulkResult {
	picks, listErrs := ListPicks(ctx, dir, base, excludes)
	res := BulkResult{Errors: listErrs}

	loaded := LoadFiles(ctx, unbound(store, slot, picks), gate)
	res.Skipped = loaded.Skipped
	res.Errors = append(res.Errors, loaded.Errors...)
	if len(loaded.Records) == 0 {
		return res
	}

	records := append(store.Files(slot), loaded.Records...)
	store.SetFileSlot(slot, records)
	for _, r := range loaded.Records {
		res.Added = append(res.Added, r.Path)
	}
	return res
}

// MarkDirectory binds every unbound file under dir to the slot without
// reading it. Each record holds only its path and handle; LoadFiles reads
// them once the choice is final.
func MarkDirectory(ctx context.Context, store *Store, slot string, dir fs.DirectoryHandle, base string, excludes *fs.ExcludeList) BulkResult {
	picks, listErrs := ListPicks(ctx, dir, base, excludes)
	res := BulkResult{Errors: listErrs}

	fresh := unbound(store, slot, picks)
	if len(fresh) == 0 {
		return res
	}
	records := store.Files(slot)
	for _, p := range fresh {
		records = append(records, FileRecord{Path: p.Path, Source: p.Handle})
		res.Added = append(res.Added, p.Path)
	}
	store.SetFileSlot(slot, records)
	return res
}

// RemoveDirectory drops every record under base from the slot, including
// files that no longer exist on disk.
func RemoveDirectory(ctx context.Context, store *Store, slot string, dir fs.DirectoryHandle, base string, excludes *fs.ExcludeList) BulkResult {
	picks, listErrs := ListPicks(ctx, dir, base, excludes)
	res := BulkResult{Errors: listErrs}

	under := make(map[string]bool, len(picks))
	for _, p := range picks {
		under[p.Path] = true
	}
	prefix := base + "/"

	var kept []FileRecord
	for _, r := range store.Files(slot) {
		if base == "" || under[r.Path] || strings.HasPrefix(r.Path, prefix) {
			res.Removed = append(res.Removed, r.Path)
			continue
		}
		kept = append(kept, r)
	}
	if len(res.Removed) > 0 {
		store.SetFileSlot(slot, kept)
	}
	return res
}

// TriState is the aggregate selection state of a directory.
type TriState int

const (
	TriNone TriState = iota
	TriSome
	TriAll
)

func (t TriState) String() string {
	switch t {
	case TriAll:
		return "all"
	case TriSome:
		return "some"
	default:
		return "none"
	}
}

// FolderState reports whether none, some or all files under dir are bound to
// the slot. It lists dir afresh on every call. An empty directory is TriNone.
func FolderState(ctx context.Context, store *Store, slot string, dir fs.DirectoryHandle, base string, excludes *fs.ExcludeList) (TriState, []fs.ItemError) {
	picks, errs := ListPicks(ctx, dir, base, excludes)
	return folderStateOf(store, slot, picks), errs
}

func folderStateOf(store *Store, slot string, picks []Pick) TriState {
	if len(picks) == 0 {
		return TriNone
	}
	present := 0
	for _, p := range picks {
		if store.HasPath(slot, p.Path) {
			present++
		}
	}
	switch {
	case present == 0:
		return TriNone
	case present == len(picks):
		return TriAll
	default:
		return TriSome
	}
}

func prefixErrors(errs []fs.ItemError, base string) []fs.ItemError {
	if base == "" || len(errs) == 0 {
		return errs
	}
	out := make([]fs.ItemError, len(errs))
	for i, e := range errs {
		if e.Path == "." {
			e.Path = base
		} else {
			e.Path = fs.JoinRel(base, e.Path)
		}
		out[i] = e
	}
	return out
}
