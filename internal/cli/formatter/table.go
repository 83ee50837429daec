package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders an aligned table with a header separator line. Columns whose
// index appears in rightAlign are right-aligned, which keeps hour values
// readable under each other; everything else is left-aligned. Widths are
// measured with lipgloss so styled cells line up with plain ones.
type Table struct {
	Headers    []string
	Rows       [][]string
	RightAlign map[int]bool
}

const colGap = 2

// Render produces the table text.
func (t Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}
	cols := len(t.Headers)

	widths := make([]int, cols)
	for i, h := range t.Headers {
		if w := lipgloss.Width(h); w > widths[i] {
			widths[i] = w
		}
	}
	for _, row := range t.Rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder

	for i, h := range t.Headers {
		t.writeCell(&b, StyleHeader.Render(h), lipgloss.Width(h), widths[i], i == cols-1, t.RightAlign[i])
	}
	b.WriteString("\n")

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			t.writeCell(&b, cell, lipgloss.Width(cell), widths[i], i == cols-1, t.RightAlign[i])
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (t Table) writeCell(b *strings.Builder, cell string, visible, width int, last, right bool) {
	pad := width - visible
	if pad < 0 {
		pad = 0
	}
	if right {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(cell)
		if !last {
			b.WriteString(strings.Repeat(" ", colGap))
		}
		return
	}
	b.WriteString(cell)
	if !last {
		b.WriteString(strings.Repeat(" ", pad+colGap))
	}
}
