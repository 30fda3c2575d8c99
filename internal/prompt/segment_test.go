package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Segment
	}{
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "no tags",
			in:   "just text\n",
			want: []Segment{{Kind: KindText, Content: "just text\n"}},
		},
		{
			name: "single file tag",
			in:   "Intro\n{{FILE}}\nEnd",
			want: []Segment{
				{Kind: KindText, Content: "Intro\n"},
				{Kind: KindFileSlot, ID: "file-0"},
				{Kind: KindText, Content: "\nEnd"},
			},
		},
		{
			name: "mixed kinds numbered independently",
			in:   "{{INPUT}}a{{FILE}}{{FILE}}b{{INPUT}}",
			want: []Segment{
				{Kind: KindInputSlot, ID: "input-0"},
				{Kind: KindText, Content: "a"},
				{Kind: KindFileSlot, ID: "file-0"},
				{Kind: KindFileSlot, ID: "file-1"},
				{Kind: KindText, Content: "b"},
				{Kind: KindInputSlot, ID: "input-1"},
			},
		},
		{
			name: "partial literals stay text",
			in:   "{{FIL {{INPUT} {FILE}}",
			want: []Segment{{Kind: KindText, Content: "{{FIL {{INPUT} {FILE}}"}},
		},
		{
			name: "case sensitive",
			in:   "{{file}}",
			want: []Segment{{Kind: KindText, Content: "{{file}}"}},
		},
		{
			name: "overlap resolves left to right",
			in:   "{{{{FILE}}}}",
			want: []Segment{
				{Kind: KindText, Content: "{{"},
				{Kind: KindFileSlot, ID: "file-0"},
				{Kind: KindText, Content: "}}"},
			},
		},
		{
			name: "tag inside code fence is still a slot",
			in:   "```\n{{INPUT}}\n```",
			want: []Segment{
				{Kind: KindText, Content: "```\n"},
				{Kind: KindInputSlot, ID: "input-0"},
				{Kind: KindText, Content: "\n```"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, Join(got), "Join must rebuild the template")
		})
	}
}

func TestScanDeterministic(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"{{FILE}}",
		"a {{FILE}} b {{INPUT}} c {{FILE}} d",
		"{{INPUT}}{{INPUT}}{{INPUT}}",
	}
	for _, in := range inputs {
		assert.Equal(t, Scan(in), Scan(in), "scan of %q", in)
	}
}

func TestScanIDsUnique(t *testing.T) {
	in := "{{FILE}}x{{INPUT}}{{FILE}}y{{FILE}}{{INPUT}}z{{FILE}}"
	segs := Scan(in)

	for _, kind := range []SegmentKind{KindFileSlot, KindInputSlot} {
		seen := map[string]bool{}
		for _, id := range SlotIDs(segs, kind) {
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
	assert.Equal(t, []string{"file-0", "file-1", "file-2", "file-3"}, SlotIDs(segs, KindFileSlot))
	assert.Equal(t, []string{"input-0", "input-1"}, SlotIDs(segs, KindInputSlot))

	files, inputs := Counts(segs)
	assert.Equal(t, 4, files)
	assert.Equal(t, 2, inputs)
}

func TestScanNeverEmitsEmptyText(t *testing.T) {
	for _, seg := range Scan("{{FILE}}{{INPUT}}{{FILE}}") {
		assert.True(t, seg.IsSlot(), "unexpected text segment %+v", seg)
	}
}

func TestScanRestartsNumbering(t *testing.T) {
	first := Scan("{{FILE}}{{FILE}}")
	second := Scan("{{FILE}}")
	assert.Equal(t, "file-1", first[1].ID)
	assert.Equal(t, "file-0", second[0].ID)
}

func TestSegmentKindText(t *testing.T) {
	b, err := KindInputSlot.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "inputSlot", string(b))
	assert.Equal(t, "SegmentKind(9)", SegmentKind(9).String())
}
