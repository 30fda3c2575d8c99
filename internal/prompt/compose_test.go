package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeScenarios(t *testing.T) {
	t.Run("single file slot", func(t *testing.T) {
		segs := Scan("Intro\n{{FILE}}\nEnd")
		store := NewStore()
		store.SetFileSlot("file-0", []FileRecord{{Path: "a.txt", Contents: "hi"}})

		assert.Equal(t, "Intro\n-- a.txt --\nhi\n\nEnd", Compose(segs, store))
	})

	t.Run("multiple files one slot", func(t *testing.T) {
		segs := Scan("{{FILE}}")
		store := NewStore()
		store.SetFileSlot("file-0", []FileRecord{
			{Path: "a.txt", Contents: "A"},
			{Path: "b.txt", Contents: "B"},
		})

		assert.Equal(t, "-- a.txt --\nA\n-- b.txt --\nB\n", Compose(segs, store))
	})

	t.Run("input slot", func(t *testing.T) {
		segs := Scan("Name: {{INPUT}}.")
		store := NewStore()
		store.SetInputSlot("input-0", "Bob")

		assert.Equal(t, "Name: Bob.", Compose(segs, store))
	})

	t.Run("unbound slots compose empty", func(t *testing.T) {
		segs := Scan("[{{FILE}}][{{INPUT}}]")
		assert.Equal(t, "[][]", Compose(segs, NewStore()))
		assert.Equal(t, "[][]", Compose(segs, nil))
	})

	t.Run("duplicate paths are all rendered", func(t *testing.T) {
		segs := Scan("{{FILE}}")
		store := NewStore()
		store.SetFileSlot("file-0", []FileRecord{
			{Path: "a.txt", Contents: "1"},
			{Path: "a.txt", Contents: "2"},
		})
		assert.Equal(t, "-- a.txt --\n1\n-- a.txt --\n2\n", Compose(segs, store))
	})

	t.Run("stale entries ignored", func(t *testing.T) {
		segs := Scan("x")
		store := NewStore()
		store.SetFileSlot("file-7", []FileRecord{{Path: "old", Contents: "old"}})
		store.SetInputSlot("input-3", "old")
		assert.Equal(t, "x", Compose(segs, store))
	})
}

func TestComposeNoSlotPassthrough(t *testing.T) {
	for _, in := range []string{"", "# Title\n\nBody\n", "{not a tag}"} {
		segs := Scan(in)
		if in != "" {
			assert.Len(t, segs, 1)
		}
		assert.Equal(t, in, Compose(segs, NewStore()))
	}
}

func TestComposeIdempotent(t *testing.T) {
	segs := Scan("A {{FILE}} B {{INPUT}} C {{FILE}}")
	store := NewStore()
	store.SetFileSlot("file-0", []FileRecord{{Path: "x.go", Contents: "package x"}})
	store.SetFileSlot("file-1", []FileRecord{{Path: "y.go", Contents: "package y\n"}})
	store.SetInputSlot("input-0", "value")

	first := Compose(segs, store)
	assert.Equal(t, first, Compose(segs, store))
	assert.Equal(t, "A -- x.go --\npackage x\n B value C -- y.go --\npackage y\n\n", first)
}

func TestFormatFileBlock(t *testing.T) {
	assert.Equal(t, "-- dir/f.txt --\n\n", FormatFileBlock(FileRecord{Path: "dir/f.txt"}))
}
