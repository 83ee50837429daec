// Package grid holds the client-side model of an hours grid: entity
// catalogs, the visible row/column sets, the cell store, and the
// reconciliation engine that keeps them in sync with the remote hours
// service one edit at a time.
package grid

import (
	"fmt"
	"sort"
	"time"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/hours"
	"github.com/hourdeck/hourdeck/internal/registry"
)

// CellKey addresses one grid intersection.
type CellKey struct {
	Row int
	Col int
}

// Banner is a dismissable user-facing message.
type Banner struct {
	ID   int
	Text string
}

// Session is the in-memory state of one loaded week. It owns the registries,
// coordinate mappers, and cells; only the Reconciler writes to it. The view
// layer reads it and never mutates.
type Session struct {
	schema    Schema
	weekStart time.Time

	catalogs map[domain.EntityKind]*registry.Registry[domain.Entity]
	visible  map[domain.EntityKind]*registry.Registry[domain.Entity]

	rows      *registry.Mapper
	rowTuples *registry.TupleIndex
	cols      *registry.Mapper

	// pendingRows holds tuple rows whose labels are partially typed: the row
	// exists visually but has no identity until every row kind is bound.
	pendingRows map[int]map[domain.EntityKind]string

	cells  map[CellKey]*domain.TimeCell
	totals Totals

	banners      []Banner
	nextBannerID int
}

// NewSession creates an empty session for the week starting at weekStart.
func NewSession(schema Schema, weekStart time.Time) *Session {
	s := &Session{
		schema:      schema,
		weekStart:   domain.WeekStart(weekStart),
		catalogs:    make(map[domain.EntityKind]*registry.Registry[domain.Entity]),
		visible:     make(map[domain.EntityKind]*registry.Registry[domain.Entity]),
		cols:        registry.NewMapper(domain.AxisCol, schema.FirstCol()),
		pendingRows: make(map[int]map[domain.EntityKind]string),
		cells:       make(map[CellKey]*domain.TimeCell),
	}
	if schema.TupleRows() {
		s.rowTuples = registry.NewTupleIndex(schema.FirstRow())
	} else {
		s.rows = registry.NewMapper(domain.AxisRow, schema.FirstRow())
	}
	for _, kind := range schema.Kinds() {
		s.catalogs[kind] = registry.New[domain.Entity]()
		s.visible[kind] = registry.New[domain.Entity]()
	}
	return s
}

func (s *Session) Schema() Schema       { return s.schema }
func (s *Session) WeekStart() time.Time { return s.weekStart }
func (s *Session) WeekStartISO() string { return s.weekStart.Format(domain.DateLayout) }

// Catalog returns the full entity set of one kind, for autocomplete.
func (s *Session) Catalog(kind domain.EntityKind) *registry.Registry[domain.Entity] {
	return s.catalogs[kind]
}

// Visible returns the subset of one kind currently placed on the grid.
func (s *Session) Visible(kind domain.EntityKind) *registry.Registry[domain.Entity] {
	return s.visible[kind]
}

// Cell returns the TimeCell at (row, col), if any.
func (s *Session) Cell(row, col int) (*domain.TimeCell, bool) {
	c, ok := s.cells[CellKey{Row: row, Col: col}]
	return c, ok
}

// CellValue returns the displayed value of the cell at (row, col).
func (s *Session) CellValue(row, col int) string {
	c, ok := s.Cell(row, col)
	if !ok {
		return ""
	}
	return domain.FormatHours(c.Hours)
}

// CellCount returns the number of cells currently held.
func (s *Session) CellCount() int { return len(s.cells) }

// Totals returns the most recently computed totals.
func (s *Session) Totals() Totals { return s.totals }

// ColEntity returns the entity occupying the given column.
func (s *Session) ColEntity(col int) (domain.Entity, bool) {
	return registry.ByCoordinate(s.visible[s.schema.ColKind], s.cols, col)
}

// RowOwners returns the entity id bound to each row kind for the given row.
// ok is false unless the row's identity is complete.
func (s *Session) RowOwners(row int) (map[domain.EntityKind]string, bool) {
	owners := make(map[domain.EntityKind]string, len(s.schema.RowKinds))
	if s.schema.TupleRows() {
		ids, ok := s.rowTuples.IDsAt(row)
		if !ok {
			return nil, false
		}
		for i, kind := range s.schema.RowKinds {
			owners[kind] = ids[i]
		}
		return owners, true
	}
	id, ok := s.rows.IDAt(row)
	if !ok {
		return nil, false
	}
	owners[s.schema.RowKinds[0]] = id
	return owners, true
}

// RowLabel returns the label text for the label cell at (row, col), which
// must be left of FirstCol.
func (s *Session) RowLabel(row, col int) string {
	if col >= s.schema.FirstCol() {
		return ""
	}
	kind := s.schema.RowKinds[col]
	owners, ok := s.RowOwners(row)
	if !ok {
		// A pending tuple row may have some labels typed already.
		if pending, exists := s.pendingRows[row]; exists {
			if id, bound := pending[kind]; bound {
				if e, found := s.catalogs[kind].GetByID(id); found {
					return e.DisplayName()
				}
			}
		}
		return ""
	}
	e, found := s.visible[kind].GetByID(owners[kind])
	if !found {
		return ""
	}
	return e.DisplayName()
}

// OccupiedRows returns the assigned row coordinates in ascending order.
func (s *Session) OccupiedRows() []int {
	if s.schema.TupleRows() {
		rows := make(map[int]bool)
		for key := range s.cells {
			rows[key.Row] = true
		}
		// Rows can exist without cells; walk the tuple index too.
		for _, kind := range s.schema.RowKinds {
			for _, e := range s.visible[kind].All() {
				for _, r := range s.rowTuples.CoordinatesOf(e.EntityID()) {
					rows[r] = true
				}
			}
		}
		out := make([]int, 0, len(rows))
		for r := range rows {
			out = append(out, r)
		}
		sort.Ints(out)
		return out
	}
	return s.rows.Occupied()
}

// OccupiedCols returns the assigned column coordinates in ascending order.
func (s *Session) OccupiedCols() []int {
	return s.cols.Occupied()
}

// NextRow returns the coordinate the next new row would receive.
func (s *Session) NextRow() int {
	if s.schema.TupleRows() {
		next := s.rowTuples.Next()
		for r := range s.pendingRows {
			if r >= next {
				next = r + 1
			}
		}
		return next
	}
	return s.rows.Next()
}

// NextCol returns the coordinate the next new column would receive.
func (s *Session) NextCol() int { return s.cols.Next() }

// Banners returns the current banner messages, oldest first.
func (s *Session) Banners() []Banner {
	out := make([]Banner, len(s.banners))
	copy(out, s.banners)
	return out
}

// PushBanner appends a dismissable message and returns its id.
func (s *Session) PushBanner(text string) int {
	s.nextBannerID++
	s.banners = append(s.banners, Banner{ID: s.nextBannerID, Text: text})
	return s.nextBannerID
}

// DismissBanner removes the banner with the given id, if present.
func (s *Session) DismissBanner(id int) {
	for i, b := range s.banners {
		if b.ID == id {
			s.banners = append(s.banners[:i], s.banners[i+1:]...)
			return
		}
	}
}

// LoadWeek replaces the session contents with the given bulk payload:
// catalogs are filled, every entry is placed on the grid (assigning row and
// column coordinates in first-appearance order), and totals are recomputed
// once at the end. Duplicate (row, col) entries accumulate into one cell.
func (s *Session) LoadWeek(payload *hours.WeekPayload) error {
	s.reset()
	s.loadCatalogs(payload)

	if !s.schema.ColEditable {
		// Fixed columns: every period date is placed up front.
		for _, e := range s.catalogs[domain.KindPeriodDate].All() {
			s.visible[domain.KindPeriodDate].AddIfAbsent(e)
			s.cols.Assign(e.EntityID())
		}
	}

	for _, rec := range payload.Entries {
		if err := s.placeEntry(rec); err != nil {
			return err
		}
	}

	s.recomputeTotals()
	return nil
}

func (s *Session) reset() {
	for _, kind := range s.schema.Kinds() {
		s.catalogs[kind] = registry.New[domain.Entity]()
		s.visible[kind] = registry.New[domain.Entity]()
	}
	s.cols = registry.NewMapper(domain.AxisCol, s.schema.FirstCol())
	if s.schema.TupleRows() {
		s.rowTuples = registry.NewTupleIndex(s.schema.FirstRow())
	} else {
		s.rows = registry.NewMapper(domain.AxisRow, s.schema.FirstRow())
	}
	s.pendingRows = make(map[int]map[domain.EntityKind]string)
	s.cells = make(map[CellKey]*domain.TimeCell)
	s.totals = Totals{}
}

func (s *Session) loadCatalogs(payload *hours.WeekPayload) {
	for _, rec := range payload.AllProjects {
		s.addToCatalog(&domain.Project{ID: rec.ID, FullName: rec.Name})
	}
	for _, rec := range payload.AllUsers {
		s.addToCatalog(&domain.Person{ID: rec.ID, FirstName: rec.FirstName, LastName: rec.LastName})
	}
	for _, rec := range payload.AllActivities {
		s.addToCatalog(&domain.Activity{ID: rec.ID, FullName: rec.Name, Code: rec.Code})
	}
	for _, rec := range payload.AllLocations {
		s.addToCatalog(&domain.Location{ID: rec.ID, FullName: rec.Name})
	}
	for _, rec := range payload.PeriodDates {
		date, err := time.Parse(domain.DateLayout, rec.Date)
		if err != nil {
			continue
		}
		s.addToCatalog(&domain.PeriodDate{Date: date, Display: rec.Display, Weekday: rec.Weekday})
	}
}

func (s *Session) addToCatalog(e domain.Entity) {
	if cat, ok := s.catalogs[e.Kind()]; ok {
		cat.AddIfAbsent(e)
	}
}

// entryOwnerID returns the id the record carries for the given kind.
func entryOwnerID(rec hours.EntryRecord, kind domain.EntityKind) string {
	switch kind {
	case domain.KindProject:
		return rec.Project
	case domain.KindPerson:
		return rec.User
	case domain.KindActivity:
		return rec.Activity
	case domain.KindLocation:
		return rec.Location
	case domain.KindPeriodDate:
		return rec.Date
	}
	return ""
}

func (s *Session) placeEntry(rec hours.EntryRecord) error {
	owners := make(map[domain.EntityKind]string, len(s.schema.RowKinds)+1)

	// Resolve and place the row identity.
	rowIDs := make([]string, 0, len(s.schema.RowKinds))
	for _, kind := range s.schema.RowKinds {
		id := entryOwnerID(rec, kind)
		e, ok := s.catalogs[kind].GetByID(id)
		if !ok {
			return fmt.Errorf("entry %s references unknown %s %q", rec.ID, kind, id)
		}
		s.visible[kind].AddIfAbsent(e)
		owners[kind] = id
		rowIDs = append(rowIDs, id)
	}

	var row int
	if s.schema.TupleRows() {
		row = s.rowTuples.Assign(rowIDs...)
	} else {
		row = s.rows.Assign(rowIDs[0])
	}

	// Resolve and place the column identity.
	colID := entryOwnerID(rec, s.schema.ColKind)
	colEntity, ok := s.catalogs[s.schema.ColKind].GetByID(colID)
	if !ok {
		return fmt.Errorf("entry %s references unknown %s %q", rec.ID, s.schema.ColKind, colID)
	}
	s.visible[s.schema.ColKind].AddIfAbsent(colEntity)
	col := s.cols.Assign(colID)
	owners[s.schema.ColKind] = colID

	key := CellKey{Row: row, Col: col}
	value := domain.RoundQuarter(rec.Hours)

	if existing, found := s.cells[key]; found {
		existing.Hours = domain.RoundQuarter(existing.Hours + value)
		return nil
	}

	s.cells[key] = &domain.TimeCell{
		ID:        rec.ID,
		Row:       row,
		Col:       col,
		Hours:     value,
		Comment:   rec.Comment,
		Published: rec.Published,
		Owners:    owners,
	}
	return nil
}

// cellsInCol returns the cells in a column ordered by row.
func (s *Session) cellsInCol(col int) []*domain.TimeCell {
	var out []*domain.TimeCell
	for key, cell := range s.cells {
		if key.Col == col {
			out = append(out, cell)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// cellsInRow returns the cells in a row ordered by column.
func (s *Session) cellsInRow(row int) []*domain.TimeCell {
	var out []*domain.TimeCell
	for key, cell := range s.cells {
		if key.Row == row {
			out = append(out, cell)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Col < out[j].Col })
	return out
}

func (s *Session) putCell(cell *domain.TimeCell) {
	s.cells[CellKey{Row: cell.Row, Col: cell.Col}] = cell
}

func (s *Session) removeCell(cell *domain.TimeCell) {
	delete(s.cells, CellKey{Row: cell.Row, Col: cell.Col})
}

func (s *Session) recomputeTotals() {
	s.totals = ComputeTotals(s.cells)
}
