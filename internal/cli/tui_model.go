package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hourdeck/hourdeck/internal/grid"
)

// weekLoadedMsg signals that the week's payload has been loaded.
type weekLoadedMsg struct {
	err error
}

// editDoneMsg carries the outcome of one reconciled edit.
type editDoneMsg struct {
	outcome grid.Outcome
}

// gridModel is the interactive grid. The cursor moves over the header row,
// the label columns, the occupied cells, and one trailing empty slot per
// axis so new rows and columns can be typed in place.
type gridModel struct {
	app    *App
	schema grid.Schema
	rec    *grid.Reconciler

	loading bool
	err     error

	// cursor indexes into navRows()/navCols(), not grid coordinates.
	curRow int
	curCol int

	editing bool
	input   textinput.Model
	status  string
}

func newGridModel(app *App, schema grid.Schema, week time.Time) *gridModel {
	input := textinput.New()
	input.CharLimit = 64
	input.Width = 24

	return &gridModel{
		app:     app,
		schema:  schema,
		rec:     grid.NewReconciler(grid.NewSession(schema, week), app.Client, app.Observers...),
		loading: true,
		input:   input,
	}
}

func (m *gridModel) Init() tea.Cmd {
	return m.loadWeek()
}

func (m *gridModel) loadWeek() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		payload, err := m.app.Client.FetchWeek(ctx, m.rec.Session().WeekStart())
		if err != nil {
			return weekLoadedMsg{err: err}
		}
		if err := m.rec.Session().LoadWeek(payload); err != nil {
			return weekLoadedMsg{err: err}
		}
		m.app.snapshot(ctx, m.schema, m.rec.Session().WeekStart(), payload)
		return weekLoadedMsg{}
	}
}

// navRows lists the navigable row coordinates: header, every occupied row,
// and the next empty slot.
func (m *gridModel) navRows() []int {
	s := m.rec.Session()
	rows := []int{0}
	rows = append(rows, s.OccupiedRows()...)
	return append(rows, s.NextRow())
}

// navCols lists the navigable column coordinates: the label columns, every
// occupied column, and (on editable-column grids) the next empty slot.
func (m *gridModel) navCols() []int {
	s := m.rec.Session()
	var cols []int
	for i := 0; i < m.schema.FirstCol(); i++ {
		cols = append(cols, i)
	}
	cols = append(cols, s.OccupiedCols()...)
	if m.schema.ColEditable {
		cols = append(cols, s.NextCol())
	}
	return cols
}

func (m *gridModel) cursor() (row, col int) {
	rows, cols := m.navRows(), m.navCols()
	if m.curRow >= len(rows) {
		m.curRow = len(rows) - 1
	}
	if m.curCol >= len(cols) {
		m.curCol = len(cols) - 1
	}
	return rows[m.curRow], cols[m.curCol]
}

// valueAt returns the current display value of the addressed cell, header
// label included.
func (m *gridModel) valueAt(row, col int) string {
	s := m.rec.Session()
	switch {
	case row == 0 && col < m.schema.FirstCol():
		return ""
	case row == 0:
		if e, ok := s.ColEntity(col); ok {
			return e.DisplayName()
		}
		return ""
	case col < m.schema.FirstCol():
		return s.RowLabel(row, col)
	default:
		return s.CellValue(row, col)
	}
}

func (m *gridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case weekLoadedMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case editDoneMsg:
		out := msg.outcome
		if out.Err != nil {
			m.status = out.Err.Error()
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *gridModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		// The session is being replaced; only quitting is allowed.
		if s := msg.String(); s == "q" || s == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.curRow > 0 {
			m.curRow--
		}
	case "down", "j":
		if m.curRow < len(m.navRows())-1 {
			m.curRow++
		}
	case "left", "h":
		if m.curCol > 0 {
			m.curCol--
		}
	case "right", "l":
		if m.curCol < len(m.navCols())-1 {
			m.curCol++
		}

	case "enter", "i":
		row, col := m.cursor()
		if row == 0 && col < m.schema.FirstCol() {
			return m, nil // the corner is not editable
		}
		m.editing = true
		m.input.SetValue(m.valueAt(row, col))
		m.input.CursorEnd()
		m.input.Focus()
		return m, textinput.Blink

	case "x":
		// Clear the cell under the cursor.
		row, col := m.cursor()
		if row > 0 && col >= m.schema.FirstCol() {
			return m, m.applyEdit(row, col, m.valueAt(row, col), "")
		}

	case "b":
		s := m.rec.Session()
		if banners := s.Banners(); len(banners) > 0 {
			s.DismissBanner(banners[0].ID)
		}

	case "r":
		m.loading = true
		return m, m.loadWeek()
	}
	return m, nil
}

func (m *gridModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		row, col := m.cursor()
		before := m.valueAt(row, col)
		after := m.input.Value()
		m.editing = false
		m.input.Blur()
		return m, m.applyEdit(row, col, before, after)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *gridModel) applyEdit(row, col int, before, after string) tea.Cmd {
	rec := m.rec
	return func() tea.Msg {
		out := rec.Apply(context.Background(), grid.Edit{
			Row:    row,
			Col:    col,
			Before: before,
			After:  after,
		})
		return editDoneMsg{outcome: out}
	}
}
