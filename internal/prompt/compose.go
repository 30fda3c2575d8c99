package prompt

import "strings"

// FormatFileBlock renders one bound file the way it appears in the output.
func FormatFileBlock(rec FileRecord) string {
	return "-- " + rec.Path + " --\n" + rec.Contents + "\n"
}

// Compose renders segments against store. Text passes through unchanged, a
// file slot becomes its file blocks in list order, an input slot its value.
// Nothing is added between segments. A nil store composes every slot as empty.
func Compose(segments []Segment, store *Store) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case KindText:
			b.WriteString(seg.Content)
		case KindFileSlot:
			for _, rec := range store.Files(seg.ID) {
				b.WriteString(FormatFileBlock(rec))
			}
		case KindInputSlot:
			b.WriteString(store.Input(seg.ID))
		}
	}
	return b.String()
}
