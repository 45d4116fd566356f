package linediff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Span is a run of characters within one side of a modified line.
type Span struct {
	Text    string
	Changed bool // deleted (old side) or inserted (new side)
}

// Inline splits a modified line pair into spans so the changed characters can be
// highlighted. Concatenating the spans of each side reproduces oldLine and newLine.
//
// Inline only affects presentation; row classification is done by Diff.
func Inline(oldLine, newLine string) (oldSpans, newSpans []Span) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldLine, newLine, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldSpans = appendSpan(oldSpans, d.Text, false)
			newSpans = appendSpan(newSpans, d.Text, false)
		case diffmatchpatch.DiffDelete:
			oldSpans = appendSpan(oldSpans, d.Text, true)
		case diffmatchpatch.DiffInsert:
			newSpans = appendSpan(newSpans, d.Text, true)
		}
	}
	return oldSpans, newSpans
}

// appendSpan merges text into the last span when the change state matches.
func appendSpan(spans []Span, text string, changed bool) []Span {
	if text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].Changed == changed {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Text: text, Changed: changed})
}
