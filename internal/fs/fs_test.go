package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestOpenFileReadsCurrentContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	mustWrite(t, path, "first")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if f.Name() != "a.txt" {
		t.Errorf("Name() = %q, want a.txt", f.Name())
	}

	mustWrite(t, path, "second version")
	got, err := f.ReadText(context.Background())
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if got != "second version" {
		t.Errorf("ReadText() = %q, want %q", got, "second version")
	}
	size, err := f.Size(context.Background())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != int64(len("second version")) {
		t.Errorf("Size() = %d, want %d", size, len("second version"))
	}
}

func TestFileReadAfterDeleteFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.txt")
	mustWrite(t, path, "x")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	_, err = f.ReadText(context.Background())
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestOpenFileRejectsDirectory(t *testing.T) {
	if _, err := OpenFile(t.TempDir()); err == nil {
		t.Fatal("expected error opening a directory as a file")
	}
	path := filepath.Join(t.TempDir(), "f.txt")
	mustWrite(t, path, "x")
	if _, err := OpenDir(path); err == nil {
		t.Fatal("expected error opening a file as a directory")
	}
}

func TestDirEntriesSortedDirsFirst(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "b.txt"), "b")
	mustWrite(t, filepath.Join(root, "a.txt"), "a")
	mustWrite(t, filepath.Join(root, "zdir", "x.txt"), "x")
	if err := os.Symlink(filepath.Join(root, "zdir"), filepath.Join(root, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	d, err := OpenDir(root)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	entries, err := d.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"zdir", "a.txt", "b.txt", "link"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
	if entries[0].Kind != KindDirectory || entries[0].Dir == nil {
		t.Errorf("zdir should be a directory entry")
	}
	if entries[3].Kind != KindFile || entries[3].File == nil {
		t.Errorf("symlink should be reported as a file entry")
	}
}

func TestCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	mustWrite(t, path, "a")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.ReadText(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadText with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestIsAborted(t *testing.T) {
	wrapped := errors.Join(errors.New("picker"), ErrAborted)
	if !IsAborted(wrapped) {
		t.Error("expected wrapped ErrAborted to be detected")
	}
	if IsAborted(errors.New("other")) {
		t.Error("unrelated error reported as aborted")
	}
}
