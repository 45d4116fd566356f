package linediff

import "fmt"

// LineType classifies one side of an alignment row
type LineType int

const (
	// Unchanged lines are identical on both sides and matched by the LCS.
	// Placeholders also carry this type.
	Unchanged LineType = iota
	// Added lines exist only in the new text at this row
	Added
	// Removed lines exist only in the old text at this row
	Removed
	// ModifiedOld is the old half of a pair of similar, non-identical lines
	ModifiedOld
	// ModifiedNew is the new half of a pair of similar, non-identical lines
	ModifiedNew
)

var lineTypeNames = [...]string{
	Unchanged:   "unchanged",
	Added:       "added",
	Removed:     "removed",
	ModifiedOld: "modified_old",
	ModifiedNew: "modified_new",
}

func (t LineType) String() string {
	if t < 0 || int(t) >= len(lineTypeNames) {
		return fmt.Sprintf("LineType(%d)", int(t))
	}
	return lineTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t LineType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(lineTypeNames) {
		return nil, fmt.Errorf("invalid line type %d", int(t))
	}
	return []byte(lineTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *LineType) UnmarshalText(text []byte) error {
	for i, name := range lineTypeNames {
		if name == string(text) {
			*t = LineType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown line type %q", text)
}

// PlaceholderIndex is the OriginalIndex of an item that only pads its column so both
// sides stay row-aligned.
const PlaceholderIndex = -1

// LineItem is one side of an alignment row.
type LineItem struct {
	Content       string   `json:"content"`
	Type          LineType `json:"type"`
	OriginalIndex int      `json:"original_index"` // zero-based line index in its source text, or PlaceholderIndex
}

// IsPlaceholder reports whether the item is padding rather than a source line
func (it LineItem) IsPlaceholder() bool {
	return it.OriginalIndex == PlaceholderIndex
}

func placeholder() LineItem {
	return LineItem{Content: "", Type: Unchanged, OriginalIndex: PlaceholderIndex}
}

// Result is a two-column, row-aligned diff. OldItems and NewItems always have the
// same length. A Result must be treated as read-only; caches hand out shared copies.
type Result struct {
	OldItems []LineItem `json:"old_items"`
	NewItems []LineItem `json:"new_items"`
}

// Rows returns the number of alignment rows.
func (r Result) Rows() int {
	return len(r.OldItems)
}

// Row returns the old and new items displayed at row i.
func (r Result) Row(i int) (LineItem, LineItem) {
	return r.OldItems[i], r.NewItems[i]
}

// Equal reports whether both texts were identical line for line.
func (r Result) Equal() bool {
	return !r.Stats().Changed()
}

// Stats counts rows by kind. A modified pair counts as one modified row.
type Stats struct {
	Unchanged int `json:"unchanged"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Modified  int `json:"modified"`
}

// Changed reports whether any row differs between the two sides.
func (s Stats) Changed() bool {
	return s.Added+s.Removed+s.Modified > 0
}

// Stats tallies the rows of r.
//
// A paired removal/addition on one row counts once for each side.
func (r Result) Stats() Stats {
	var s Stats
	for i := range r.OldItems {
		o, n := r.OldItems[i], r.NewItems[i]
		switch {
		case o.Type == ModifiedOld:
			s.Modified++
		case o.Type == Unchanged && n.Type == Unchanged:
			s.Unchanged++
		default:
			if o.Type == Removed {
				s.Removed++
			}
			if n.Type == Added {
				s.Added++
			}
		}
	}
	return s
}
