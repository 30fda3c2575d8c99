// Package prompt implements template segmentation, slot resolution and
// output composition for a prompt session.
package prompt

import (
	"fmt"
	"strings"
)

// Tag literals recognised by Scan.
const (
	FileTag  = "{{FILE}}"
	InputTag = "{{INPUT}}"
)

// SegmentKind discriminates the variants of a Segment.
type SegmentKind int

const (
	KindText SegmentKind = iota
	KindFileSlot
	KindInputSlot
)

func (k SegmentKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFileSlot:
		return "fileSlot"
	case KindInputSlot:
		return "inputSlot"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// MarshalText lets SegmentKind appear by name in JSON output.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment is one piece of a scanned template. Text segments carry Content;
// slot segments carry ID.
type Segment struct {
	Kind    SegmentKind `json:"kind"`
	Content string      `json:"content,omitempty"`
	ID      string      `json:"id,omitempty"`
}

// Source returns the template text this segment was scanned from.
func (s Segment) Source() string {
	switch s.Kind {
	case KindFileSlot:
		return FileTag
	case KindInputSlot:
		return InputTag
	default:
		return s.Content
	}
}

// IsSlot reports whether the segment is a placeholder.
func (s Segment) IsSlot() bool {
	return s.Kind == KindFileSlot || s.Kind == KindInputSlot
}

func fileSlotID(n int) string  { return fmt.Sprintf("file-%d", n) }
func inputSlotID(n int) string { return fmt.Sprintf("input-%d", n) }

// Scan splits text into segments. Tags are matched left to right as literal,
// non-overlapping substrings; each slot kind is numbered from zero in the
// order encountered. Empty text segments are never emitted.
func Scan(text string) []Segment {
	var (
		segments  []Segment
		fileCount int
		inCount   int
	)

	rest := text
	for {
		fi := strings.Index(rest, FileTag)
		ii := strings.Index(rest, InputTag)
		if fi < 0 && ii < 0 {
			break
		}

		var (
			at     int
			tagLen int
			seg    Segment
		)
		if fi >= 0 && (ii < 0 || fi < ii) {
			at, tagLen = fi, len(FileTag)
			seg = Segment{Kind: KindFileSlot, ID: fileSlotID(fileCount)}
			fileCount++
		} else {
			at, tagLen = ii, len(InputTag)
			seg = Segment{Kind: KindInputSlot, ID: inputSlotID(inCount)}
			inCount++
		}

		if at > 0 {
			segments = append(segments, Segment{Kind: KindText, Content: rest[:at]})
		}
		segments = append(segments, seg)
		rest = rest[at+tagLen:]
	}

	if rest != "" {
		segments = append(segments, Segment{Kind: KindText, Content: rest})
	}
	return segments
}

// Join is the inverse of Scan: it rebuilds the template text from segments.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Source())
	}
	return b.String()
}

// SlotIDs returns the IDs of the slots of the given kind, in segment order.
func SlotIDs(segments []Segment, kind SegmentKind) []string {
	var ids []string
	for _, s := range segments {
		if s.Kind == kind {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Counts returns how many file and input slots segments contain.
func Counts(segments []Segment) (files, inputs int) {
	for _, s := range segments {
		switch s.Kind {
		case KindFileSlot:
			files++
		case KindInputSlot:
			inputs++
		}
	}
	return files, inputs
}
