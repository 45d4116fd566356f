package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/epuerta/kori/internal/config"
	"github.com/epuerta/kori/internal/linediff"
	"github.com/mattn/go-runewidth"
)

const (
	columnSeparator = " │ "
	minColumnWidth  = 10
	ellipsis        = "…"
)

// RenderOptions controls how a linediff.Result is drawn.
type RenderOptions struct {
	Mode        config.ViewMode
	Width       int // total columns available for side-by-side output
	LineNumbers bool
	Color       bool
	OldLabel    string // optional column headers
	NewLabel    string
}

// OptionsFromConfig copies the rendering settings from cfg.
func OptionsFromConfig(cfg *config.Config) RenderOptions {
	return RenderOptions{
		Mode:        cfg.View,
		Width:       cfg.Width,
		LineNumbers: cfg.LineNumbers,
		Color:       cfg.Color,
	}
}

// Render draws res in the layout selected by opts.Mode.
func Render(res linediff.Result, opts RenderOptions) string {
	if opts.Mode == config.Unified {
		return RenderUnified(res, opts)
	}
	return RenderSideBySide(res, opts)
}

// RenderSummary describes the row counts of a diff in one line.
func RenderSummary(st linediff.Stats) string {
	return fmt.Sprintf("%d unchanged, %d added, %d removed, %d modified",
		st.Unchanged, st.Added, st.Removed, st.Modified)
}

// RenderSideBySide draws the old text on the left and the new text on the right, one
// alignment row per output line. Cells are truncated or padded to equal display width.
func RenderSideBySide(res linediff.Result, opts RenderOptions) string {
	p := newPalette(opts.Color)

	colWidth := (opts.Width - runewidth.StringWidth(columnSeparator)) / 2
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}
	numWidth := 0
	if opts.LineNumbers {
		numWidth = lineNumberWidth(res)
	}
	sep := p.separator.Render(columnSeparator)

	var b strings.Builder
	if opts.OldLabel != "" || opts.NewLabel != "" {
		left := p.header.Render(fit(opts.OldLabel, colWidth))
		right := p.header.Render(fit(opts.NewLabel, colWidth))
		b.WriteString(left + sep + right + "\n")
	}

	for i := 0; i < res.Rows(); i++ {
		o, n := res.Row(i)
		oldSpans, newSpans := rowSpans(o, n)
		b.WriteString(cell(o, oldSpans, colWidth, numWidth, p))
		b.WriteString(sep)
		b.WriteString(strings.TrimRight(cell(n, newSpans, colWidth, numWidth, p), " "))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderUnified draws a single column: unchanged lines once, then for each changed
// row the old line ("- ") followed by the new line ("+ "). Placeholders are skipped.
func RenderUnified(res linediff.Result, opts RenderOptions) string {
	p := newPalette(opts.Color)
	numWidth := 0
	if opts.LineNumbers {
		numWidth = lineNumberWidth(res)
	}

	gutter := func(oldIdx, newIdx int) string {
		if numWidth == 0 {
			return ""
		}
		return p.lineNo.Render(lineNumber(oldIdx, numWidth)+" "+lineNumber(newIdx, numWidth)) + " "
	}

	var b strings.Builder
	if opts.OldLabel != "" || opts.NewLabel != "" {
		b.WriteString(p.removed.Render("--- "+opts.OldLabel) + "\n")
		b.WriteString(p.added.Render("+++ "+opts.NewLabel) + "\n")
	}

	for i := 0; i < res.Rows(); i++ {
		o, n := res.Row(i)
		if o.Type == linediff.Unchanged && n.Type == linediff.Unchanged && !o.IsPlaceholder() && !n.IsPlaceholder() {
			b.WriteString(gutter(o.OriginalIndex, n.OriginalIndex))
			b.WriteString(p.unchanged.Render("  " + sanitize(o.Content)))
			b.WriteString("\n")
			continue
		}

		oldSpans, newSpans := rowSpans(o, n)
		if !o.IsPlaceholder() {
			b.WriteString(gutter(o.OriginalIndex, linediff.PlaceholderIndex))
			b.WriteString(p.lineStyle(o.Type).Render("- "))
			b.WriteString(styleSpans(oldSpans, p.lineStyle(o.Type), p.changeOld))
			b.WriteString("\n")
		}
		if !n.IsPlaceholder() {
			b.WriteString(gutter(linediff.PlaceholderIndex, n.OriginalIndex))
			b.WriteString(p.lineStyle(n.Type).Render("+ "))
			b.WriteString(styleSpans(newSpans, p.lineStyle(n.Type), p.changeNew))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// rowSpans splits a row into spans; only modified pairs get intra-line detail.
func rowSpans(o, n linediff.LineItem) ([]linediff.Span, []linediff.Span) {
	if o.Type == linediff.ModifiedOld && n.Type == linediff.ModifiedNew {
		return linediff.Inline(o.Content, n.Content)
	}
	return wholeLine(o.Content), wholeLine(n.Content)
}

func wholeLine(s string) []linediff.Span {
	if s == "" {
		return nil
	}
	return []linediff.Span{{Text: s}}
}

// cell renders one side of a side-by-side row at exactly width display columns.
func cell(it linediff.LineItem, spans []linediff.Span, width, numWidth int, p palette) string {
	var b strings.Builder
	used := 0
	if numWidth > 0 {
		b.WriteString(p.lineNo.Render(lineNumber(it.OriginalIndex, numWidth)))
		b.WriteString(" ")
		used += numWidth + 1
	}
	base := p.lineStyle(it.Type)
	b.WriteString(base.Render(marker(it)))
	b.WriteString(" ")
	used += 2

	hi := p.changeOld
	if it.Type == linediff.ModifiedNew {
		hi = p.changeNew
	}
	b.WriteString(fitSpans(spans, max(width-used, 0), base, hi))
	return b.String()
}

// fitSpans styles spans and truncates them to width display columns, padding the
// remainder with spaces.
func fitSpans(spans []linediff.Span, width int, base, hi lipgloss.Style) string {
	var b strings.Builder
	remaining := width
	for _, sp := range spans {
		if remaining <= 0 {
			break
		}
		text := sanitize(sp.Text)
		w := runewidth.StringWidth(text)
		truncated := false
		if w > remaining {
			text = runewidth.Truncate(text, remaining, ellipsis)
			w = runewidth.StringWidth(text)
			truncated = true
		}
		style := base
		if sp.Changed {
			style = hi
		}
		b.WriteString(style.Render(text))
		remaining -= w
		if truncated {
			break
		}
	}
	b.WriteString(strings.Repeat(" ", max(remaining, 0)))
	return b.String()
}

func styleSpans(spans []linediff.Span, base, hi lipgloss.Style) string {
	var b strings.Builder
	for _, sp := range spans {
		if sp.Changed {
			b.WriteString(hi.Render(sanitize(sp.Text)))
		} else {
			b.WriteString(base.Render(sanitize(sp.Text)))
		}
	}
	return b.String()
}

// fit truncates or pads s to exactly width display columns.
func fit(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(sanitize(s), width, ellipsis), width)
}

// sanitize makes control characters visible without changing the column count
// assumptions: tabs become four spaces and carriage returns a visible symbol.
func sanitize(s string) string {
	if !strings.ContainsAny(s, "\t\r") {
		return s
	}
	return strings.NewReplacer("\t", "    ", "\r", "␍").Replace(s)
}

// lineNumber renders a 1-based line number right-aligned, or blanks for placeholders.
func lineNumber(idx, width int) string {
	if idx == linediff.PlaceholderIndex {
		return strings.Repeat(" ", width)
	}
	return fmt.Sprintf("%*d", width, idx+1)
}

func lineNumberWidth(res linediff.Result) int {
	maxIdx := 0
	for i := 0; i < res.Rows(); i++ {
		o, n := res.Row(i)
		maxIdx = max(maxIdx, o.OriginalIndex, n.OriginalIndex)
	}
	return len(strconv.Itoa(maxIdx + 1))
}
