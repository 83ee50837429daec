package formatter

import (
	"fmt"
	"strings"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/grid"
)

// FormatGrid renders the whole session as a table: one label column per row
// kind, one column per visible column entity, a trailing per-row total, and a
// closing totals row. Unpublished cells render yellow until the service
// confirms them.
func FormatGrid(s *grid.Session) string {
	schema := s.Schema()
	cols := s.OccupiedCols()
	rows := s.OccupiedRows()

	headers := make([]string, 0, len(schema.RowKinds)+len(cols)+1)
	for _, kind := range schema.RowKinds {
		headers = append(headers, kindTitle(kind))
	}
	for _, col := range cols {
		if e, ok := s.ColEntity(col); ok {
			headers = append(headers, e.DisplayName())
		} else {
			headers = append(headers, "")
		}
	}
	headers = append(headers, "Total")

	rightAlign := make(map[int]bool, len(cols)+1)
	for i := range cols {
		rightAlign[len(schema.RowKinds)+i] = true
	}
	rightAlign[len(headers)-1] = true

	totals := s.Totals()
	body := make([][]string, 0, len(rows)+1)
	for _, row := range rows {
		line := make([]string, 0, len(headers))
		for i := range schema.RowKinds {
			line = append(line, s.RowLabel(row, i))
		}
		for _, col := range cols {
			line = append(line, cellText(s, row, col))
		}
		line = append(line, StyleTotal.Render(domain.FormatHours(totals.RowTotal(row))))
		body = append(body, line)
	}

	totalLine := make([]string, 0, len(headers))
	totalLine = append(totalLine, StyleTotal.Render("Total"))
	for i := 1; i < len(schema.RowKinds); i++ {
		totalLine = append(totalLine, "")
	}
	for _, col := range cols {
		totalLine = append(totalLine, StyleTotal.Render(domain.FormatHours(totals.ColTotal(col))))
	}
	totalLine = append(totalLine, StyleTotal.Render(domain.FormatHours(totals.Grand)))
	body = append(body, totalLine)

	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("%s — week of %s", schema.Name, s.WeekStartISO())))
	b.WriteString("\n")
	b.WriteString(Table{Headers: headers, Rows: body, RightAlign: rightAlign}.Render())

	for _, banner := range s.Banners() {
		b.WriteString(Banner(banner.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func cellText(s *grid.Session, row, col int) string {
	cell, ok := s.Cell(row, col)
	if !ok {
		return Dim("·")
	}
	text := domain.FormatHours(cell.Hours)
	if !cell.Published {
		return StyleYellow.Render(text)
	}
	return text
}

// FormatTotals renders only the per-column and grand totals.
func FormatTotals(s *grid.Session) string {
	totals := s.Totals()
	headers := []string{kindTitle(s.Schema().ColKind), "Hours"}
	var rows [][]string
	for _, col := range s.OccupiedCols() {
		e, ok := s.ColEntity(col)
		if !ok {
			continue
		}
		rows = append(rows, []string{e.DisplayName(), domain.FormatHours(totals.ColTotal(col))})
	}
	rows = append(rows, []string{StyleTotal.Render("Total"), StyleTotal.Render(domain.FormatHours(totals.Grand))})

	return Table{Headers: headers, Rows: rows, RightAlign: map[int]bool{1: true}}.Render()
}

func kindTitle(kind domain.EntityKind) string {
	switch kind {
	case domain.KindProject:
		return "Project"
	case domain.KindPerson:
		return "Person"
	case domain.KindActivity:
		return "Activity"
	case domain.KindLocation:
		return "Location"
	case domain.KindPeriodDate:
		return "Date"
	}
	return string(kind)
}
