package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hourdeck/hourdeck/internal/cli/formatter"
	"github.com/hourdeck/hourdeck/internal/domain"
)

var styleCursor = lipgloss.NewStyle().Reverse(true)

func (m *gridModel) View() string {
	if m.loading {
		return "\n  " + formatter.Dim("Loading week...")
	}
	if m.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+m.err.Error()) +
			"\n\n  " + formatter.Dim("r reload · q quit")
	}

	s := m.rec.Session()
	rows, cols := m.navRows(), m.navCols()
	curRow, curCol := m.cursor()
	totals := s.Totals()

	widths := m.columnWidths(rows, cols)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(formatter.StyleHeader.Render(
		fmt.Sprintf("%s — week of %s", m.schema.Name, s.WeekStartISO())))
	b.WriteString("\n\n")

	for _, row := range rows {
		b.WriteString("  ")
		for i, col := range cols {
			text := m.cellView(row, col)
			pad := widths[i] - lipgloss.Width(text)
			if pad < 0 {
				pad = 0
			}
			if row == curRow && col == curCol {
				if m.editing {
					text = m.input.View()
					pad = 0
				} else {
					text = styleCursor.Render(m.plainCellView(row, col))
				}
			}
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(text)
			b.WriteString("  ")
		}
		if row > 0 {
			b.WriteString(formatter.StyleTotal.Render(domain.FormatHours(totals.RowTotal(row))))
		}
		b.WriteString("\n")
	}

	// Totals row.
	b.WriteString("  ")
	for i, col := range cols {
		text := ""
		if i == 0 {
			text = formatter.StyleTotal.Render("Total")
		} else if col >= m.schema.FirstCol() {
			text = formatter.StyleTotal.Render(domain.FormatHours(totals.ColTotal(col)))
		}
		pad := widths[i] - lipgloss.Width(text)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(text)
		b.WriteString("  ")
	}
	b.WriteString(formatter.StyleTotal.Render(domain.FormatHours(totals.Grand)))
	b.WriteString("\n\n")

	for _, banner := range s.Banners() {
		b.WriteString("  " + formatter.Banner(banner.Text) + "\n")
	}
	if m.status != "" {
		b.WriteString("  " + formatter.StyleYellow.Render(m.status) + "\n")
	}

	help := "arrows move · enter edit · x clear · r reload · q quit"
	if len(s.Banners()) > 0 {
		help += " · b dismiss"
	}
	b.WriteString("\n  " + formatter.Dim(help) + "\n")
	return b.String()
}

// cellView renders the addressed cell with its display styling.
func (m *gridModel) cellView(row, col int) string {
	s := m.rec.Session()
	switch {
	case row == 0 && col < m.schema.FirstCol():
		return ""
	case row == 0:
		if e, ok := s.ColEntity(col); ok {
			return formatter.StyleHeader.Render(e.DisplayName())
		}
		return formatter.Dim("+")
	case col < m.schema.FirstCol():
		if label := s.RowLabel(row, col); label != "" {
			return formatter.StyleGreen.Render(label)
		}
		return formatter.Dim("+")
	default:
		cell, ok := s.Cell(row, col)
		if !ok {
			return formatter.Dim("·")
		}
		text := domain.FormatHours(cell.Hours)
		if !cell.Published {
			return formatter.StyleYellow.Render(text)
		}
		return text
	}
}

// plainCellView is cellView without color, for the reversed cursor block.
func (m *gridModel) plainCellView(row, col int) string {
	if text := m.valueAt(row, col); text != "" {
		return text
	}
	return " "
}

func (m *gridModel) columnWidths(rows, cols []int) []int {
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = 3
		for _, row := range rows {
			if w := lipgloss.Width(m.cellView(row, col)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}
