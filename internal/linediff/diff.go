package linediff

import "strings"

// similarityThreshold is the minimum share of the longer line that the character LCS
// must exceed for two lines to count as a modification of each other.
const similarityThreshold = 0.5

// Diff aligns oldText and newText line by line.
//
// Both texts are split on "\n" only; a trailing "\r" stays part of the line and an
// empty text is a single empty line. Lines matched by the line-level LCS become
// Unchanged rows. Unmatched lines are emitted in source order: when both sides have a
// pending line on the same row they are paired as ModifiedOld/ModifiedNew (if
// IsSimilar) or Removed/Added, otherwise the side without a line gets a placeholder.
//
// Diff is pure and safe for concurrent use. Time and memory are O(m*n) in the number
// of lines.
func Diff(oldText, newText string) Result {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	c := newCursor(oldLines, newLines, lcsPairs(oldLines, newLines, equal[string]))

	res := Result{
		OldItems: make([]LineItem, 0, max(len(oldLines), len(newLines))),
		NewItems: make([]LineItem, 0, max(len(oldLines), len(newLines))),
	}
	for !c.done() {
		o, n := c.step()
		res.OldItems = append(res.OldItems, o)
		res.NewItems = append(res.NewItems, n)
	}
	return res
}

// IsSimilar reports whether a and b look like edits of the same line: both non-empty,
// not identical, and sharing a rune-level common subsequence longer than half of the
// longer string.
func IsSimilar(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	ra, rb := []rune(a), []rune(b)
	lcs := LCSLength(ra, rb)
	return float64(lcs)/float64(max(len(ra), len(rb))) > similarityThreshold
}

// cursor walks both line slices in lockstep, consuming LCS pairs in order.
type cursor struct {
	oldLines []string
	newLines []string
	pairs    []pair

	oldIdx int
	newIdx int
	lcsIdx int
}

func newCursor(oldLines, newLines []string, pairs []pair) *cursor {
	return &cursor{oldLines: oldLines, newLines: newLines, pairs: pairs}
}

func (c *cursor) done() bool {
	return c.oldIdx == len(c.oldLines) && c.newIdx == len(c.newLines)
}

// step emits exactly one alignment row and advances the cursor. It must not be
// called once done reports true.
func (c *cursor) step() (LineItem, LineItem) {
	if c.lcsIdx < len(c.pairs) {
		p := c.pairs[c.lcsIdx]
		if p.a == c.oldIdx && p.b == c.newIdx {
			o := LineItem{Content: c.oldLines[c.oldIdx], Type: Unchanged, OriginalIndex: c.oldIdx}
			n := LineItem{Content: c.newLines[c.newIdx], Type: Unchanged, OriginalIndex: c.newIdx}
			c.oldIdx++
			c.newIdx++
			c.lcsIdx++
			return o, n
		}
	}

	oldDue := c.oldIdx < len(c.oldLines) && (c.lcsIdx >= len(c.pairs) || c.pairs[c.lcsIdx].a > c.oldIdx)
	newDue := c.newIdx < len(c.newLines) && (c.lcsIdx >= len(c.pairs) || c.pairs[c.lcsIdx].b > c.newIdx)

	switch {
	case oldDue && newDue:
		oldLine, newLine := c.oldLines[c.oldIdx], c.newLines[c.newIdx]
		o := LineItem{Content: oldLine, Type: Removed, OriginalIndex: c.oldIdx}
		n := LineItem{Content: newLine, Type: Added, OriginalIndex: c.newIdx}
		if IsSimilar(oldLine, newLine) {
			o.Type = ModifiedOld
			n.Type = ModifiedNew
		}
		c.oldIdx++
		c.newIdx++
		return o, n

	case oldDue:
		o := LineItem{Content: c.oldLines[c.oldIdx], Type: Removed, OriginalIndex: c.oldIdx}
		c.oldIdx++
		return o, placeholder()

	case newDue:
		n := LineItem{Content: c.newLines[c.newIdx], Type: Added, OriginalIndex: c.newIdx}
		c.newIdx++
		return placeholder(), n
	}

	// Unreachable while the pairs are strictly increasing on both sides: a pointer that
	// is not at the next pair is always behind it.
	panic("linediff: cursor stalled")
}
