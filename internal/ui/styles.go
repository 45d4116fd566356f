package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/epuerta/kori/internal/linediff"
)

var (
	red   = lipgloss.AdaptiveColor{Light: "160", Dark: "203"}
	green = lipgloss.AdaptiveColor{Light: "28", Dark: "114"}
	amber = lipgloss.AdaptiveColor{Light: "130", Dark: "179"}
	grey  = lipgloss.AdaptiveColor{Light: "245", Dark: "241"}
)

// palette holds the styles for one rendering. The zero palette renders plain text.
type palette struct {
	unchanged lipgloss.Style
	removed   lipgloss.Style
	added     lipgloss.Style
	modOld    lipgloss.Style
	modNew    lipgloss.Style
	changeOld lipgloss.Style // changed characters inside a ModifiedOld line
	changeNew lipgloss.Style // changed characters inside a ModifiedNew line
	lineNo    lipgloss.Style
	separator lipgloss.Style
	header    lipgloss.Style
}

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{
			unchanged: plain, removed: plain, added: plain, modOld: plain, modNew: plain,
			changeOld: plain, changeNew: plain, lineNo: plain, separator: plain, header: plain,
		}
	}
	return palette{
		unchanged: lipgloss.NewStyle().Faint(true),
		removed:   lipgloss.NewStyle().Foreground(red),
		added:     lipgloss.NewStyle().Foreground(green),
		modOld:    lipgloss.NewStyle().Foreground(amber),
		modNew:    lipgloss.NewStyle().Foreground(amber),
		changeOld: lipgloss.NewStyle().Foreground(red).Underline(true),
		changeNew: lipgloss.NewStyle().Foreground(green).Underline(true),
		lineNo:    lipgloss.NewStyle().Foreground(grey),
		separator: lipgloss.NewStyle().Foreground(grey),
		header:    lipgloss.NewStyle().Bold(true),
	}
}

// lineStyle returns the base style for an item's type.
func (p palette) lineStyle(t linediff.LineType) lipgloss.Style {
	switch t {
	case linediff.Removed:
		return p.removed
	case linediff.Added:
		return p.added
	case linediff.ModifiedOld:
		return p.modOld
	case linediff.ModifiedNew:
		return p.modNew
	default:
		return p.unchanged
	}
}

// marker is the one-character gutter symbol for an item.
func marker(it linediff.LineItem) string {
	if it.IsPlaceholder() {
		return " "
	}
	switch it.Type {
	case linediff.Removed:
		return "-"
	case linediff.Added:
		return "+"
	case linediff.ModifiedOld, linediff.ModifiedNew:
		return "~"
	default:
		return " "
	}
}
