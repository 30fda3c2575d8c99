package prompt

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TagOccurrence is one tag literal found in template text.
type TagOccurrence struct {
	Tag     string `json:"tag"`
	SlotID  string `json:"slot_id"`
	Line    int    `json:"line"`   // 1-indexed
	Column  int    `json:"column"` // 1-indexed, in bytes
	InCode  bool   `json:"in_code"`
	Context string `json:"context"`
}

// DiagnosticReport describes the slots of a template and flags tags that sit
// inside code blocks. Those tags are still replaced by Compose.
type DiagnosticReport struct {
	FileSlots  int             `json:"file_slots"`
	InputSlots int             `json:"input_slots"`
	Tags       []TagOccurrence `json:"tags"`
}

// TagsInCode returns the occurrences located inside fenced or indented code.
func (r *DiagnosticReport) TagsInCode() []TagOccurrence {
	var out []TagOccurrence
	for _, t := range r.Tags {
		if t.InCode {
			out = append(out, t)
		}
	}
	return out
}

// HasTagsInCode returns true if any tag sits inside a code block.
func (r *DiagnosticReport) HasTagsInCode() bool {
	return len(r.TagsInCode()) > 0
}

type byteRange struct{ start, stop int }

// Diagnose locates every tag literal in src, numbered the way Scan numbers
// them, and marks the ones inside markdown code blocks.
func Diagnose(src string) *DiagnosticReport {
	report := &DiagnosticReport{Tags: []TagOccurrence{}}
	code := codeRanges(src)

	offset := 0
	for _, seg := range Scan(src) {
		if seg.IsSlot() {
			occ := TagOccurrence{Tag: seg.Source(), SlotID: seg.ID}
			occ.Line, occ.Column = lineColumn(src, offset)
			occ.InCode = inRanges(code, offset)
			occ.Context = truncateLine(lineAt(src, offset), 80)
			report.Tags = append(report.Tags, occ)

			if seg.Kind == KindFileSlot {
				report.FileSlots++
			} else {
				report.InputSlots++
			}
		}
		offset += len(seg.Source())
	}
	return report
}

func codeRanges(src string) []byteRange {
	source := []byte(src)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var ranges []byteRange
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				ranges = append(ranges, byteRange{start: seg.Start, stop: seg.Stop})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	return ranges
}

func inRanges(ranges []byteRange, offset int) bool {
	for _, r := range ranges {
		if offset >= r.start && offset < r.stop {
			return true
		}
	}
	return false
}

func lineColumn(src string, offset int) (int, int) {
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndex(before, "\n")
	return line, col
}

func lineAt(src string, offset int) string {
	start := strings.LastIndex(src[:offset], "\n") + 1
	end := strings.IndexByte(src[offset:], '\n')
	if end < 0 {
		return src[start:]
	}
	return src[start : offset+end]
}

func truncateLine(line string, maxLen int) string {
	line = strings.TrimSpace(line)
	if len(line) <= maxLen {
		return line
	}
	return line[:maxLen-3] + "..."
}
