package grid

import (
	"context"
	"testing"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/hours"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	cells := map[CellKey]*domain.TimeCell{
		{Row: 1, Col: 1}: {Row: 1, Col: 1, Hours: 4},
		{Row: 1, Col: 2}: {Row: 1, Col: 2, Hours: 1.5},
		{Row: 2, Col: 1}: {Row: 2, Col: 1, Hours: 2.25},
	}

	totals := ComputeTotals(cells)

	assert.Equal(t, 6.25, totals.ColTotal(1))
	assert.Equal(t, 1.5, totals.ColTotal(2))
	assert.Equal(t, 5.5, totals.RowTotal(1))
	assert.Equal(t, 2.25, totals.RowTotal(2))
	assert.Equal(t, 7.75, totals.Grand)
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.Equal(t, 0.0, totals.Grand)
	assert.Equal(t, 0.0, totals.ColTotal(1))
	assert.Equal(t, 0.0, totals.RowTotal(1))
}

// A deleted cell must leave the totals immediately, not linger until the next
// unrelated edit recomputes them.
func TestTotals_RecomputedAfterDelete(t *testing.T) {
	rec, _ := loadedReconciler(t)
	s := rec.Session()
	require.Equal(t, 6.0, s.Totals().Grand)

	out := rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: ""})
	require.True(t, out.Committed())

	totals := s.Totals()
	assert.Equal(t, 0.0, totals.ColTotal(1))
	assert.Equal(t, 0.0, totals.RowTotal(1))
	assert.Equal(t, 2.0, totals.Grand)
}

func TestTotals_RecomputedAfterCascade(t *testing.T) {
	rec, _ := newTestReconciler(t, ProjectHoursSchema(), cascadePayload())
	s := rec.Session()
	require.Equal(t, 9.0, s.Totals().Grand)

	out := rec.Apply(context.Background(), Edit{Row: 0, Col: 1, Before: "Ada Lovelace", After: ""})
	require.True(t, out.Committed())

	totals := s.Totals()
	assert.Equal(t, 0.0, totals.ColTotal(1))
	assert.Equal(t, 2.0, totals.Grand)
}

func TestTotals_FollowEveryCommit(t *testing.T) {
	rec, _ := loadedReconciler(t)
	s := rec.Session()
	ctx := context.Background()

	require.True(t, rec.Apply(ctx, Edit{Row: 1, Col: 1, Before: "4", After: "6"}).Committed())
	assert.Equal(t, 8.0, s.Totals().Grand)

	require.True(t, rec.Apply(ctx, Edit{Row: 1, Col: 2, Before: "", After: "1.5"}).Committed())
	assert.Equal(t, 9.5, s.Totals().Grand)

	require.True(t, rec.Apply(ctx, Edit{Row: 2, Col: 2, Before: "2", After: ""}).Committed())
	assert.Equal(t, 7.5, s.Totals().Grand)
}

func TestTotals_UnchangedOnRollback(t *testing.T) {
	rec, fake := loadedReconciler(t)
	s := rec.Session()
	fake.Fail = map[hours.Op]error{hours.OpUpdate: serverDown}

	rec.Apply(context.Background(), Edit{Row: 1, Col: 1, Before: "4", After: "6"})

	assert.Equal(t, 6.0, s.Totals().Grand)
}
