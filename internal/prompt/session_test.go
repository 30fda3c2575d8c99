package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLoadTemplate(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Loaded())

	tmpl := newMemFile("review.md", "Review {{FILE}} for {{INPUT}}")
	require.NoError(t, s.LoadTemplate(context.Background(), tmpl))

	snap := s.Snapshot()
	assert.True(t, snap.Loaded)
	assert.True(t, snap.Refreshable)
	assert.Equal(t, "review.md", snap.Name)
	assert.Len(t, snap.Segments, 4)
	assert.NotEmpty(t, snap.ID)
}

func TestSessionLoadTemplateRejectsExtension(t *testing.T) {
	s := NewSession()
	s.Replace("keep.md", "{{INPUT}}", nil)
	s.SetInputSlot("input-0", "value")

	err := s.LoadTemplate(context.Background(), newMemFile("image.png", "{{FILE}}"))
	var invalid *InvalidTemplateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "image.png", invalid.Name)

	snap := s.Snapshot()
	assert.Equal(t, "keep.md", snap.Name)
	assert.Equal(t, "value", snap.Store.Input("input-0"))
}

func TestSessionLoadTemplateReadFailure(t *testing.T) {
	s := NewSession()
	s.Replace("keep.md", "x", nil)
	bad := newMemFile("t.md", "")
	bad.breakIt()

	require.Error(t, s.LoadTemplate(context.Background(), bad))
	assert.Equal(t, "keep.md", s.Snapshot().Name)
}

func TestSessionReplaceClears(t *testing.T) {
	s := NewSession()
	s.Replace("a.md", "{{FILE}}", nil)
	firstID := s.ID()
	s.SetFileSlot("file-0", []FileRecord{{Path: "x"}})
	s.Compose()

	s.Replace("b.md", "{{FILE}}", nil)
	assert.NotEqual(t, firstID, s.ID())
	assert.Empty(t, s.Snapshot().Store.Files("file-0"))
	_, ok := s.LastOutput()
	assert.False(t, ok)

	s.Remove()
	assert.False(t, s.Loaded())
	assert.False(t, s.Snapshot().Refreshable)
}

func TestSessionRefresh(t *testing.T) {
	tmpl := newMemFile("t.md", "{{FILE}}")
	f := newMemFile("a.txt", "one")

	s := NewSession()
	require.NoError(t, s.LoadTemplate(context.Background(), tmpl))
	res := LoadFiles(context.Background(), []Pick{{Handle: f, Path: "a.txt"}}, nil)
	s.SetFileSlot("file-0", res.Records)
	s.SetInputSlot("input-0", "later")

	tmpl.set("Now: {{FILE}} {{INPUT}}")
	f.set("two")
	report := s.Refresh(context.Background())

	assert.True(t, report.RefreshedTemplate)
	assert.True(t, report.RefreshedAnyFile)
	assert.Equal(t, "Now: -- a.txt --\ntwo\n later", s.Compose())
}

func TestSessionRefreshNoSources(t *testing.T) {
	s := NewSession()
	s.Replace("starter", "plain {{INPUT}}", nil)
	s.SetInputSlot("input-0", "x")

	report := s.Refresh(context.Background())
	assert.False(t, report.RefreshedTemplate)
	assert.False(t, report.RefreshedAnyFile)
	assert.NoError(t, report.TemplateErr)
	assert.Equal(t, "plain x", s.Compose())
}

func TestSessionCopyAndRetry(t *testing.T) {
	s := NewSession()
	s.Replace("t.md", "Hello {{INPUT}}", nil)
	s.SetInputSlot("input-0", "world")

	w := &recordingWriter{}
	require.ErrorIs(t, s.Retry(w), ErrNothingToCopy)

	denied := errors.New("permission denied")
	w.err = denied
	out, err := s.Copy(w)
	var clipErr *ClipboardError
	require.ErrorAs(t, err, &clipErr)
	assert.ErrorIs(t, err, denied)
	assert.Equal(t, "Hello world", out)

	last, ok := s.LastOutput()
	require.True(t, ok)
	assert.Equal(t, "Hello world", last)

	// Later edits do not change what Retry writes.
	s.SetInputSlot("input-0", "changed")
	w.err = nil
	require.NoError(t, s.Retry(w))
	assert.Equal(t, []string{"Hello world"}, w.written)
}

func TestSessionTokenCount(t *testing.T) {
	s := NewSession()
	s.Replace("t.md", "ab{{INPUT}}", nil)
	s.SetInputSlot("input-0", "cd")
	assert.Equal(t, 4, s.TokenCount(lenCounter{}))
}

func TestSessionBeginSlot(t *testing.T) {
	s := NewSession()

	release, ok := s.BeginSlot("file-0")
	require.True(t, ok)
	assert.True(t, s.SlotBusy("file-0"))

	_, ok = s.BeginSlot("file-0")
	assert.False(t, ok)

	other, ok := s.BeginSlot("file-1")
	require.True(t, ok)
	other()

	err := s.WithSlot("file-0", func() error { return nil })
	var busy *SlotBusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, "file-0", busy.Slot)

	release()
	release()
	assert.False(t, s.SlotBusy("file-0"))
	assert.NoError(t, s.WithSlot("file-0", func() error { return nil }))
}

func TestValidateTemplateName(t *testing.T) {
	for _, name := range []string{"a.md", "B.MARKDOWN", "notes.txt"} {
		assert.NoError(t, ValidateTemplateName(name), name)
	}
	for _, name := range []string{"a.pdf", "md", "a.md.bak", ""} {
		assert.Error(t, ValidateTemplateName(name), name)
	}
}
