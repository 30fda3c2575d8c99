package prompt

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tormodhaugland/pf/internal/debug"
	"github.com/tormodhaugland/pf/internal/fs"
)

// TextWriter receives composed output, typically a clipboard.
type TextWriter interface {
	WriteText(text string) error
}

// TokenCounter counts model tokens in a string.
type TokenCounter interface {
	Count(text string) int
}

// Session owns the segments, the selection store and the optional template
// source of one loaded template. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id       string
	name     string
	segments []Segment
	store    *Store
	template fs.FileHandle

	lastOutput string
	hasOutput  bool

	busy map[string]bool
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Segments    []Segment `json:"segments"`
	Store       *Store    `json:"-"`
	Refreshable bool      `json:"refreshable"`
	Loaded      bool      `json:"loaded"`
}

// RefreshReport summarises a Refresh.
type RefreshReport struct {
	RefreshedTemplate bool        `json:"refreshed_template"`
	RefreshedAnyFile  bool        `json:"refreshed_any_file"`
	TemplateErr       error       `json:"-"`
	FileErrors        []FileError `json:"file_errors,omitempty"`
}

// NewSession returns an empty session with no template loaded.
func NewSession() *Session {
	return &Session{
		id:    uuid.NewString(),
		store: NewStore(),
		busy:  make(map[string]bool),
	}
}

// ID returns the identifier of the currently loaded template, regenerated on
// every Replace.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// LoadTemplate reads a template through h and replaces the session with it.
// The handle is kept so Refresh can re-read it. On any failure the session is
// unchanged.
func (s *Session) LoadTemplate(ctx context.Context, h fs.FileHandle) error {
	if err := ValidateTemplateName(h.Name()); err != nil {
		return err
	}
	text, err := h.ReadText(ctx)
	if err != nil {
		return fmt.Errorf("loading template: %w", err)
	}
	s.Replace(h.Name(), text, h)
	return nil
}

// Replace installs a freshly scanned template and clears every selection.
// source may be nil for templates that cannot be re-read.
func (s *Session) Replace(name, text string, source fs.FileHandle) {
	segments := Scan(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	s.name = name
	s.segments = segments
	s.store = NewStore()
	s.template = source
	s.lastOutput, s.hasOutput = "", false
	debug.Debug("session %s: loaded %q, %d segments", s.id, name, len(segments))
}

// Remove unloads the template and clears every selection.
func (s *Session) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = ""
	s.segments = nil
	s.store = NewStore()
	s.template = nil
	s.lastOutput, s.hasOutput = "", false
}

// Loaded reports whether a template is loaded.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments != nil || s.name != ""
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.id,
		Name:        s.name,
		Segments:    append([]Segment(nil), s.segments...),
		Store:       s.store.Clone(),
		Refreshable: s.template != nil,
		Loaded:      s.segments != nil || s.name != "",
	}
}

// SetFileSlot replaces the files bound to a slot.
func (s *Session) SetFileSlot(id string, records []FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetFileSlot(id, records)
}

// SetInputSlot replaces the value bound to a slot.
func (s *Session) SetInputSlot(id, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetInputSlot(id, value)
}

// ClearAll drops every selection but keeps the template.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ClearAll()
}

// Update runs fn against the live store under the session lock.
func (s *Session) Update(fn func(store *Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.store)
}

// Refresh re-reads the template and every refreshable file, then swaps in the
// result in one step. Other calls block until it finishes.
func (s *Session) Refresh(ctx context.Context) RefreshReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Reconcile(ctx, s.store, s.segments, s.template)
	s.store = res.Store
	s.segments = res.Segments

	return RefreshReport{
		RefreshedTemplate: res.RefreshedTemplate,
		RefreshedAnyFile:  res.RefreshedAnyFile,
		TemplateErr:       res.TemplateErr,
		FileErrors:        res.FileErrors,
	}
}

// Compose renders the current state and remembers the result.
func (s *Session) Compose() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composeLocked()
}

func (s *Session) composeLocked() string {
	out := Compose(s.segments, s.store)
	s.lastOutput, s.hasOutput = out, true
	return out
}

// TokenCount counts the tokens in the composed output.
func (s *Session) TokenCount(c TokenCounter) int {
	s.mu.Lock()
	out := Compose(s.segments, s.store)
	s.mu.Unlock()
	return c.Count(out)
}

// Copy composes the output and writes it to w. If the write fails the output
// is kept for Retry and a *ClipboardError is returned.
func (s *Session) Copy(w TextWriter) (string, error) {
	s.mu.Lock()
	out := s.composeLocked()
	s.mu.Unlock()

	if err := w.WriteText(out); err != nil {
		return out, &ClipboardError{Err: err}
	}
	return out, nil
}

// Retry writes the last composed output again without recomposing.
func (s *Session) Retry(w TextWriter) error {
	out, ok := s.LastOutput()
	if !ok {
		return ErrNothingToCopy
	}
	if err := w.WriteText(out); err != nil {
		return &ClipboardError{Err: err}
	}
	return nil
}

// LastOutput returns the most recently composed output.
func (s *Session) LastOutput() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutput, s.hasOutput
}

// BeginSlot marks a slot busy for the duration of an operation. It returns
// false if another operation holds the slot. The release func is idempotent.
func (s *Session) BeginSlot(id string) (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[id] {
		return func() {}, false
	}
	s.busy[id] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.busy, id)
			s.mu.Unlock()
		})
	}, true
}

// SlotBusy reports whether an operation holds the slot.
func (s *Session) SlotBusy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[id]
}

// WithSlot runs fn while holding the slot. It returns *SlotBusyError when the
// slot is already held.
func (s *Session) WithSlot(id string, fn func() error) error {
	release, ok := s.BeginSlot(id)
	if !ok {
		return &SlotBusyError{Slot: id}
	}
	defer release()
	return fn()
}
