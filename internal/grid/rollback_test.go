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

var serverDown = &hours.RemoteError{StatusCode: 500, Body: "internal error"}

func TestRollback_CreateFails(t *testing.T) {
	rec, fake := loadedReconciler(t)
	s := rec.Session()
	fake.Fail = map[hours.Op]error{hours.OpCreate: serverDown}

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 2, Before: "", After: "3"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, ActionCreateCell, out.Action)
	assert.Equal(t, RejectRemoteFailure, RejectKindOf(out.Err))
	assert.Equal(t, "", out.Display, "the cell shows its previous value again")

	_, ok := s.Cell(1, 2)
	assert.False(t, ok, "no cell materializes on failure")
	assert.Equal(t, 6.0, s.Totals().Grand)

	banners := s.Banners()
	require.Len(t, banners, 1)
	assert.Equal(t, "Could not reach the hours service. Please notify an administrator.", banners[0].Text)
}

func TestRollback_UpdateFails(t *testing.T) {
	rec, fake := loadedReconciler(t)
	s := rec.Session()
	fake.Fail = map[hours.Op]error{hours.OpUpdate: serverDown}

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: "6"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, "4", out.Display)
	assert.Equal(t, "4", s.CellValue(1, 1))
	assert.Equal(t, 6.0, s.Totals().Grand)
}

func TestRollback_DeleteFails(t *testing.T) {
	rec, fake := loadedReconciler(t)
	s := rec.Session()
	fake.Fail = map[hours.Op]error{hours.OpDelete: serverDown}

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: ""})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, ActionDeleteCell, out.Action)
	assert.Equal(t, "4", out.Display)

	cell, ok := s.Cell(1, 1)
	require.True(t, ok, "the cell is retained on delete failure")
	assert.Equal(t, 4.0, cell.Hours)
	assert.Equal(t, 6.0, s.Totals().Grand)
}

func TestRollback_ValidationErrorShownVerbatim(t *testing.T) {
	rec, fake := loadedReconciler(t)
	fake.Fail = map[hours.Op]error{
		hours.OpUpdate: &hours.RemoteError{StatusCode: 400, Body: "Hours may not exceed 24 per day."},
	}

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: "6"})

	assert.Equal(t, StateRolledBack, out.State)
	banners := rec.Session().Banners()
	require.Len(t, banners, 1)
	assert.Equal(t, "Hours may not exceed 24 per day.", banners[0].Text)
}

func TestRollback_ReplaceColumnFails(t *testing.T) {
	rec, fake := newTestReconciler(t, ProjectHoursSchema(), projectHoursPayload(
		hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 4},
	))
	s := rec.Session()
	fake.Fail = map[hours.Op]error{hours.OpReassign: serverDown}

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 1, Before: "Ada Lovelace", After: "Grace Hopper"})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, "Ada Lovelace", out.Display)

	// The column and its cells are untouched.
	e, ok := s.ColEntity(1)
	require.True(t, ok)
	assert.Equal(t, "u1", e.EntityID())
	cell, ok := s.Cell(1, 1)
	require.True(t, ok)
	assert.Equal(t, "u1", cell.Owner(domain.KindPerson))
	_, visible := s.Visible(domain.KindPerson).GetByID("u2")
	assert.False(t, visible)
}

func TestRollback_PartialCascadeKeepsDeletions(t *testing.T) {
	rec, fake := newTestReconciler(t, ProjectHoursSchema(), cascadePayload())
	s := rec.Session()

	// The fetch was call 1; the column's deletes are calls 2 and 3. Fail the
	// second delete.
	fake.FailOnCall = 3
	fake.FailErr = serverDown

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 1, Before: "Ada Lovelace", After: ""})

	assert.Equal(t, StateRolledBack, out.State)
	assert.Equal(t, ActionRemoveColumn, out.Action)
	assert.Equal(t, "Ada Lovelace", out.Display)

	// The first cell's delete landed and stays gone; the rest survive.
	_, ok := s.Cell(1, 1)
	assert.False(t, ok)
	cell, ok := s.Cell(2, 1)
	require.True(t, ok)
	assert.Equal(t, 3.0, cell.Hours)

	// The column identity survives the partial failure.
	e, ok := s.ColEntity(1)
	require.True(t, ok)
	assert.Equal(t, "u1", e.EntityID())
	_, visible := s.Visible(domain.KindPerson).GetByID("u1")
	assert.True(t, visible)

	// Totals reflect what actually happened, not the pre-edit state.
	totals := s.Totals()
	assert.Equal(t, 3.0, totals.ColTotal(1))
	assert.Equal(t, 5.0, totals.Grand)

	require.Len(t, s.Banners(), 1)
}

func TestRollback_LoadFailurePushesBanner(t *testing.T) {
	fake := testutil.NewFakeHoursService()
	fake.Fail = map[hours.Op]error{hours.OpFetch: serverDown}
	rec := NewReconciler(NewSession(ProjectHoursSchema(), testutil.Monday), fake)

	err := rec.Load(context.Background())

	require.Error(t, err)
	banners := rec.Session().Banners()
	require.Len(t, banners, 1)
	assert.Equal(t, "Could not reach the hours service. Please notify an administrator.", banners[0].Text)
}
