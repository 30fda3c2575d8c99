package prompt

import (
	"sort"

	"github.com/tormodhaugland/pf/internal/fs"
)

// FileRecord is one file bound to a file slot. Source is nil when the file
// cannot be re-read automatically.
type FileRecord struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Contents string        `json:"contents"`
	Source   fs.FileHandle `json:"-"`
}

// Refreshable reports whether the record has a live source.
func (r FileRecord) Refreshable() bool {
	return r.Source != nil
}

// Store maps slot IDs to resolved content. An absent entry reads as empty.
// Writes are total replacements. Store is not safe for concurrent use; a
// Session serialises access to the one it owns.
type Store struct {
	files  map[string][]FileRecord
	inputs map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		files:  make(map[string][]FileRecord),
		inputs: make(map[string]string),
	}
}

// SetFileSlot replaces the record list bound to id. The slice is copied.
func (s *Store) SetFileSlot(id string, records []FileRecord) {
	s.files[id] = append([]FileRecord(nil), records...)
}

// SetInputSlot replaces the value bound to id.
func (s *Store) SetInputSlot(id, value string) {
	s.inputs[id] = value
}

// ClearAll removes every binding.
func (s *Store) ClearAll() {
	s.files = make(map[string][]FileRecord)
	s.inputs = make(map[string]string)
}

// Files returns a copy of the records bound to id, or nil.
func (s *Store) Files(id string) []FileRecord {
	if s == nil {
		return nil
	}
	recs := s.files[id]
	if len(recs) == 0 {
		return nil
	}
	return append([]FileRecord(nil), recs...)
}

// Input returns the value bound to id, or "".
func (s *Store) Input(id string) string {
	if s == nil {
		return ""
	}
	return s.inputs[id]
}

// HasInput reports whether id has an input binding, even an empty one.
func (s *Store) HasInput(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.inputs[id]
	return ok
}

// FileSlotIDs returns the IDs with a file binding, sorted.
func (s *Store) FileSlotIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// InputSlotIDs returns the IDs with an input binding, sorted.
func (s *Store) InputSlotIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.inputs))
	for id := range s.inputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	out := NewStore()
	if s == nil {
		return out
	}
	for id, recs := range s.files {
		out.files[id] = append([]FileRecord(nil), recs...)
	}
	for id, v := range s.inputs {
		out.inputs[id] = v
	}
	return out
}

// AddFile appends rec to the slot's list.
func (s *Store) AddFile(id string, rec FileRecord) {
	recs := s.Files(id)
	s.SetFileSlot(id, append(recs, rec))
}

// RemovePath drops every record with the given path from the slot and
// reports how many were removed.
func (s *Store) RemovePath(id, path string) int {
	recs := s.files[id]
	kept := make([]FileRecord, 0, len(recs))
	for _, r := range recs {
		if r.Path != path {
			kept = append(kept, r)
		}
	}
	removed := len(recs) - len(kept)
	if removed > 0 {
		s.SetFileSlot(id, kept)
	}
	return removed
}

// HasPath reports whether any record bound to id has the given path.
func (s *Store) HasPath(id, path string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.files[id] {
		if r.Path == path {
			return true
		}
	}
	return false
}

// TotalSize sums the sizes of every file bound to id.
func (s *Store) TotalSize(id string) int64 {
	var total int64
	if s == nil {
		return 0
	}
	for _, r := range s.files[id] {
		total += r.Size
	}
	return total
}
