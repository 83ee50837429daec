package grid

import (
	"github.com/hourdeck/hourdeck/internal/domain"
)

// Schema makes the axis semantics of a grid variant configuration rather
// than code. RowKinds lists the entity kinds composing a row's identity, in
// label-column order; a row exists once every kind is bound. ColKind is the
// single entity kind identifying a column.
type Schema struct {
	Name     string
	RowKinds []domain.EntityKind
	ColKind  domain.EntityKind

	// ColEditable reports whether column identities may be added and removed
	// through header edits. Date columns are fixed at load time.
	ColEditable bool
}

// FirstCol returns the first data column. Columns left of it hold row labels
// (one per row kind); the corner spans them on the header row.
func (s Schema) FirstCol() int { return len(s.RowKinds) }

// FirstRow returns the first data row. Row 0 is the header row.
func (s Schema) FirstRow() int { return 1 }

// TupleRows reports whether row identity is a multi-entity combination.
func (s Schema) TupleRows() bool { return len(s.RowKinds) > 1 }

// Kinds returns every entity kind the schema references.
func (s Schema) Kinds() []domain.EntityKind {
	out := make([]domain.EntityKind, 0, len(s.RowKinds)+1)
	out = append(out, s.RowKinds...)
	return append(out, s.ColKind)
}

// ProjectHoursSchema is the project-hours grid: one project per row, one
// person per column.
func ProjectHoursSchema() Schema {
	return Schema{
		Name:        "project_hours",
		RowKinds:    []domain.EntityKind{domain.KindProject},
		ColKind:     domain.KindPerson,
		ColEditable: true,
	}
}

// ScheduleSchema is the weekly schedule grid. Identical shape to project
// hours; kept separate so the two variants can diverge in configuration
// instead of code.
func ScheduleSchema() Schema {
	return Schema{
		Name:        "schedule",
		RowKinds:    []domain.EntityKind{domain.KindProject},
		ColKind:     domain.KindPerson,
		ColEditable: true,
	}
}

// ChargedHoursSchema is the charged-hours grid: each row is identified by a
// (project, activity, location) triple and each column is a fixed day of the
// period.
func ChargedHoursSchema() Schema {
	return Schema{
		Name: "charged_hours",
		RowKinds: []domain.EntityKind{
			domain.KindProject,
			domain.KindActivity,
			domain.KindLocation,
		},
		ColKind:     domain.KindPeriodDate,
		ColEditable: false,
	}
}
