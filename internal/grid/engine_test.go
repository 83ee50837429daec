package grid

import (
	"context"
	"testing"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/hours"
	"github.com/hourdeck/hourdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T, schema Schema, payload *hours.WeekPayload) (*Reconciler, *testutil.FakeHoursService) {
	t.Helper()
	fake := testutil.NewFakeHoursService()
	fake.Payload = payload
	rec := NewReconciler(NewSession(schema, testutil.Monday), fake)
	require.NoError(t, rec.Load(context.Background()))
	return rec, fake
}

// loadedReconciler is the standard project-hours fixture: Alpha and Beta on
// rows 1 and 2, Ada and Grace on columns 1 and 2, with cells at (1,1)=4 and
// (2,2)=2.
func loadedReconciler(t *testing.T) (*Reconciler, *testutil.FakeHoursService) {
	t.Helper()
	return newTestReconciler(t, ProjectHoursSchema(), projectHoursPayload(
		hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 4},
		hours.EntryRecord{ID: "42", Project: "p2", User: "u2", Hours: 2},
	))
}

func TestApply_NoChangeIsNoop(t *testing.T) {
	rec, fake := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: "4"})

	assert.True(t, out.Committed())
	assert.Equal(t, ActionNone, out.Action)
	assert.Equal(t, "4", out.Display)
	assert.Len(t, fake.Calls(), 1, "only the initial fetch")
}

func TestApply_BatchRejected(t *testing.T) {
	rec, fake := loadedReconciler(t)

	out := rec.Apply(context.Background(),
		Edit{Row: 1, Col: 1, Before: "4", After: "5"},
		Edit{Row: 2, Col: 2, Before: "2", After: "3"},
	)

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectBatch, RejectKindOf(out.Err))
	assert.Len(t, rec.Session().Banners(), 1)
	assert.Len(t, fake.Calls(), 1)
	assert.Equal(t, "4", rec.Session().CellValue(1, 1))
}

func TestApply_CornerRejectedSilently(t *testing.T) {
	rec, fake := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 0, Before: "", After: "x"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectInvalidValue, RejectKindOf(out.Err))
	assert.Empty(t, rec.Session().Banners(), "the corner is rejected without a banner")
	assert.Len(t, fake.Calls(), 1)
}

// ── header: add ──────────────────────────────────────────────────────────────

func TestApply_AddColumn(t *testing.T) {
	rec, fake := newTestReconciler(t, ProjectHoursSchema(), projectHoursPayload(
		hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 4},
	))
	s := rec.Session()

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: s.NextCol(), After: "Grace Hopper"})

	require.True(t, out.Committed())
	assert.Equal(t, ActionAddColumn, out.Action)
	assert.Equal(t, "Grace H.", out.Display)

	e, ok := s.ColEntity(2)
	require.True(t, ok)
	assert.Equal(t, "u2", e.EntityID())
	assert.Len(t, fake.Calls(), 1, "adding an empty header makes no remote call")
}

func TestApply_AddColumn_UnknownEntity(t *testing.T) {
	rec, fake := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 3, After: "Nobody Special"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectUnknownEntity, RejectKindOf(out.Err))
	assert.Equal(t, "", out.Display)
	assert.Len(t, rec.Session().Banners(), 1)
	assert.Len(t, fake.Calls(), 1)
}

func TestApply_AddColumn_Duplicate(t *testing.T) {
	rec, _ := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 3, After: "Ada Lovelace"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectDuplicateEntity, RejectKindOf(out.Err))
}

func TestApply_AddColumn_WrongSlot(t *testing.T) {
	rec, _ := newTestReconciler(t, ProjectHoursSchema(), projectHoursPayload(
		hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 4},
	))

	// Next free column is 2; writing a header into column 5 is rejected.
	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 5, After: "Grace Hopper"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectInvalidValue, RejectKindOf(out.Err))
}

func TestApply_AddRow(t *testing.T) {
	rec, fake := newTestReconciler(t, ProjectHoursSchema(), projectHoursPayload(
		hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 4},
	))
	s := rec.Session()

	out := rec.Apply(context.Background(), Edit{Row: s.NextRow(), Col: 0, After: "Beta"})

	require.True(t, out.Committed())
	assert.Equal(t, ActionAddRow, out.Action)
	assert.Equal(t, "Beta", out.Display)

	owners, ok := s.RowOwners(2)
	require.True(t, ok)
	assert.Equal(t, "p2", owners[domain.KindProject])
	assert.Len(t, fake.Calls(), 1)
}

func TestApply_FixedColumnsCannotBeEdited(t *testing.T) {
	rec, _ := newTestReconciler(t, ChargedHoursSchema(), chargedHoursPayload())

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 8, After: "2012-07-23"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectInvalidValue, RejectKindOf(out.Err))
}

// ── header: replace ──────────────────────────────────────────────────────────

func TestApply_ReplaceColumn(t *testing.T) {
	rec, fake := newTestReconciler(t, ProjectHoursSchema(), projectHoursPayload(
		hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 4},
	))
	s := rec.Session()

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 1, Before: "Ada Lovelace", After: "Grace Hopper"})

	require.True(t, out.Committed())
	assert.Equal(t, ActionReplaceColumn, out.Action)
	assert.Equal(t, "Grace H.", out.Display)

	reassigns := fake.CallsOf(hours.OpReassign)
	require.Len(t, reassigns, 1)
	assert.Equal(t, "person", reassigns[0].Reassign.Kind)
	assert.Equal(t, "u1", reassigns[0].Reassign.FromID)
	assert.Equal(t, "u2", reassigns[0].Reassign.ToID)
	assert.Equal(t, "2012-07-16", reassigns[0].Reassign.WeekStart)

	// The column keeps its coordinate; the cell follows the new owner.
	e, ok := s.ColEntity(1)
	require.True(t, ok)
	assert.Equal(t, "u2", e.EntityID())
	cell, ok := s.Cell(1, 1)
	require.True(t, ok)
	assert.Equal(t, "u2", cell.Owner(domain.KindPerson))
	assert.Equal(t, 4.0, s.Totals().ColTotal(1))
}

func TestApply_ReplaceColumn_TargetAlreadyVisible(t *testing.T) {
	rec, fake := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 1, Before: "Ada Lovelace", After: "Grace Hopper"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectDuplicateEntity, RejectKindOf(out.Err))
	assert.Empty(t, fake.CallsOf(hours.OpReassign))
}

func TestApply_HeaderUnknownBefore(t *testing.T) {
	rec, _ := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 1, Before: "Nobody Special", After: ""})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectUnknownEntity, RejectKindOf(out.Err))
}

// ── cells: create ────────────────────────────────────────────────────────────

func TestApply_CreateCell(t *testing.T) {
	rec, fake := loadedReconciler(t)
	s := rec.Session()

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 2, Before: "", After: "3"})

	require.True(t, out.Committed())
	assert.Equal(t, ActionCreateCell, out.Action)
	assert.Equal(t, "3", out.Display)
	assert.NotEmpty(t, out.EditID)

	creates := fake.CallsOf(hours.OpCreate)
	require.Len(t, creates, 1)
	assert.Equal(t, "", creates[0].Request.ID)
	assert.Equal(t, "p1", creates[0].Request.Project)
	assert.Equal(t, "u2", creates[0].Request.User)
	assert.Equal(t, 3.0, creates[0].Request.Hours)
	assert.Equal(t, out.EditID, creates[0].Request.EditID)

	cell, ok := s.Cell(1, 2)
	require.True(t, ok)
	assert.True(t, cell.Confirmed(), "cell carries the server-assigned id")
	assert.Equal(t, 3.0, cell.Hours)
	assert.Equal(t, 7.0, s.Totals().RowTotal(1))
	assert.Equal(t, 5.0, s.Totals().ColTotal(2))
}

func TestApply_CreateCell_IncompleteIdentity(t *testing.T) {
	rec, fake := loadedReconciler(t)

	// Row 5 has no project bound to it.
	out := rec.Apply(context.Background(), Edit{Row: 5, Col: 1, Before: "", After: "2"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, RejectIncompleteRowColumn, RejectKindOf(out.Err))
	assert.Equal(t, "", out.Display)
	assert.Len(t, rec.Session().Banners(), 1)
	assert.Len(t, fake.Calls(), 1)
}

// ── cells: update ────────────────────────────────────────────────────────────

func TestApply_UpdateCell(t *testing.T) {
	rec, fake := loadedReconciler(t)
	s := rec.Session()

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: "6"})

	require.True(t, out.Committed())
	assert.Equal(t, ActionUpdateCell, out.Action)
	assert.Equal(t, "6", out.Display)

	updates := fake.CallsOf(hours.OpUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, "41", updates[0].Request.ID)
	assert.Equal(t, 6.0, updates[0].Request.Hours)

	assert.Equal(t, "6", s.CellValue(1, 1))
	assert.Equal(t, 6.0, s.Totals().ColTotal(1))
	assert.Equal(t, 8.0, s.Totals().Grand)
}

func TestApply_UpdateCell_NormalizedValueIsNoop(t *testing.T) {
	rec, fake := loadedReconciler(t)

	// "4.1" rounds to the quarter hour the cell already holds.
	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: "4.1"})

	assert.True(t, out.Committed())
	assert.Equal(t, ActionNone, out.Action)
	assert.Equal(t, "4", out.Display)
	assert.Len(t, fake.Calls(), 1)
}

func TestApply_UpdateCell_RoundsToQuarter(t *testing.T) {
	rec, fake := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: "6.2"})

	require.True(t, out.Committed())
	assert.Equal(t, "6.25", out.Display)
	updates := fake.CallsOf(hours.OpUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, 6.25, updates[0].Request.Hours)
}

func TestApply_InvalidValue(t *testing.T) {
	rec, fake := loadedReconciler(t)

	for _, bad := range []string{"abc", "-1", "1/2", "4h"} {
		out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: bad})
		assert.Equal(t, StateRolledBack, out.State, "value %q", bad)
		assert.Equal(t, RejectInvalidValue, RejectKindOf(out.Err), "value %q", bad)
		assert.Equal(t, "4", out.Display, "value %q", bad)
	}
	assert.Len(t, fake.Calls(), 1)
	assert.Equal(t, "4", rec.Session().CellValue(1, 1))
}

// ── cells: delete ────────────────────────────────────────────────────────────

func TestApply_ClearCellDeletes(t *testing.T) {
	rec, fake := loadedReconciler(t)
	s := rec.Session()

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: ""})

	require.True(t, out.Committed())
	assert.Equal(t, ActionDeleteCell, out.Action)
	assert.Equal(t, "", out.Display)

	deletes := fake.CallsOf(hours.OpDelete)
	require.Len(t, deletes, 1)
	assert.Equal(t, "41", deletes[0].EntryID)

	_, ok := s.Cell(1, 1)
	assert.False(t, ok)
	// The row and column identities survive the cell.
	_, ok = s.RowOwners(1)
	assert.True(t, ok)
}

func TestApply_ZeroClearsCell(t *testing.T) {
	rec, fake := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: "0"})

	require.True(t, out.Committed())
	assert.Equal(t, ActionDeleteCell, out.Action)
	assert.Len(t, fake.CallsOf(hours.OpDelete), 1)
}

func TestApply_ZeroOnEmptyCellIsNoop(t *testing.T) {
	rec, fake := loadedReconciler(t)

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 2, Before: "", After: "0"})

	assert.True(t, out.Committed())
	assert.Equal(t, ActionNone, out.Action)
	assert.Equal(t, "", out.Display)
	assert.Len(t, fake.Calls(), 1)
}
