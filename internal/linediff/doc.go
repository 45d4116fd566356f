// Package linediff computes a two-column, row-aligned line diff between two versions of
// a note.
//
// Every row of a Result holds one item per side. Lines matched by the line-level
// longest common subsequence are Unchanged; other lines keep their source order and are
// either paired with the opposite side's pending line (ModifiedOld/ModifiedNew when
// IsSimilar, else Removed/Added) or padded with a placeholder item whose OriginalIndex
// is PlaceholderIndex.
//
// Invariants:
//   - len(OldItems) == len(NewItems)
//   - the non-placeholder contents of OldItems, in order, are exactly the lines of the old text
//   - likewise for NewItems and the new text
//
//	res := linediff.Diff(previous, current)
//	for i := 0; i < res.Rows(); i++ {
//		o, n := res.Row(i)
//		...
//	}
package linediff
