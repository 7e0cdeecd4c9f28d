package revisions

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Span kinds of a rendered diff.
const (
	SpanEqual  = "equal"
	SpanInsert = "insert"
	SpanDelete = "delete"
)

// Span is a run of text that was kept, added or removed.
type Span struct {
	Kind string
	Text string
}

// FieldComparison is the diff of one content field between two revisions.
type FieldComparison struct {
	Field string
	Label string
	Spans []Span
}

// Changed reports whether the field differs between the two revisions.
func (f FieldComparison) Changed() bool {
	for _, s := range f.Spans {
		if s.Kind != SpanEqual {
			return true
		}
	}
	return false
}

// Compare diffs the content of a against b, field by field.
func Compare(a, b Revision) []FieldComparison {
	return []FieldComparison{
		{Field: "title", Label: "Title", Spans: diffText(a.Content.Title, b.Content.Title)},
		{Field: "body", Label: "Body", Spans: diffText(a.Content.Body, b.Content.Body)},
	}
}

// diffText diffs line by line, then merges runs for readability.
func diffText(a, b string) []Span {
	dmp := diffmatchpatch.New()
	runesA, runesB, lines := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffMainRunes(runesA, runesB, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	diffs = dmp.DiffCleanupSemantic(diffs)

	spans := make([]Span, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		kind := SpanEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = SpanInsert
		case diffmatchpatch.DiffDelete:
			kind = SpanDelete
		}
		spans = append(spans, Span{Kind: kind, Text: d.Text})
	}
	return spans
}
