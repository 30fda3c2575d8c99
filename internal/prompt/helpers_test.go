package prompt

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tormodhaugland/pf/internal/fs"
)

var errGone = errors.New("file moved or deleted")

// memFile is an in-memory fs.FileHandle whose contents can change between
// reads, or start failing.
type memFile struct {
	mu    sync.Mutex
	name  string
	text  string
	size  int64 // overrides len(text) when non-zero
	fail  bool
	reads int
}

func newMemFile(name, text string) *memFile {
	return &memFile{name: name, text: text}
}

func (m *memFile) Name() string { return m.name }

func (m *memFile) Size(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 0, errGone
	}
	if m.size != 0 {
		return m.size, nil
	}
	return int64(len(m.text)), nil
}

func (m *memFile) ReadText(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.fail {
		return "", errGone
	}
	return m.text, nil
}

func (m *memFile) set(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

func (m *memFile) breakIt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = true
}

func (m *memFile) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// memDir is an in-memory fs.DirectoryHandle.
type memDir struct {
	name     string
	files    map[string]*memFile
	dirs     map[string]*memDir
	failList bool
}

func newMemDir(name string) *memDir {
	return &memDir{name: name, files: map[string]*memFile{}, dirs: map[string]*memDir{}}
}

// add creates a file at a "/"-separated path below d.
func (d *memDir) add(path, text string) *memFile {
	parts := strings.Split(path, "/")
	cur := d
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur.dirs[p]
		if !ok {
			next = newMemDir(p)
			cur.dirs[p] = next
		}
		cur = next
	}
	f := newMemFile(parts[len(parts)-1], text)
	cur.files[f.name] = f
	return f
}

func (d *memDir) Name() string { return d.name }

func (d *memDir) Entries(ctx context.Context) ([]fs.Entry, error) {
	if d.failList {
		return nil, errors.New("permission denied")
	}
	var out []fs.Entry
	for name, sub := range d.dirs {
		out = append(out, fs.Entry{Name: name, Kind: fs.KindDirectory, Dir: sub})
	}
	for name, f := range d.files {
		out = append(out, fs.Entry{Name: name, Kind: fs.KindFile, File: f})
	}
	return out, nil
}

type recordingWriter struct {
	written []string
	err     error
}

func (w *recordingWriter) WriteText(text string) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, text)
	return nil
}

type lenCounter struct{}

func (lenCounter) Count(text string) int { return len(text) }

func recordPaths(recs []FileRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Path)
	}
	return out
}
