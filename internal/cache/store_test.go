package cache

import (
	"context"
	"testing"
	"time"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/hours"
	"github.com/hourdeck/hourdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestStore_PutCatalogs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := testutil.NewWeekPayload(
		testutil.WithProjects(
			&domain.Project{ID: "p1", FullName: "Alpha"},
			&domain.Project{ID: "p2", FullName: "Beta"},
		),
		testutil.WithPeople(&domain.Person{ID: "u1", FirstName: "Ada", LastName: "Lovelace"}),
	)
	require.NoError(t, store.PutCatalogs(ctx, payload))

	projects, err := store.Entities(ctx, domain.KindProject)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "Beta", projects[1].Name)

	people, err := store.Entities(ctx, domain.KindPerson)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Ada Lovelace", people[0].Name)
	assert.Equal(t, "Ada L.", people[0].Display)
}

func TestStore_PutCatalogs_UpsertsWithoutErasing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutCatalogs(ctx, testutil.NewWeekPayload(
		testutil.WithProjects(
			&domain.Project{ID: "p1", FullName: "Alpha"},
			&domain.Project{ID: "p2", FullName: "Beta"},
		),
	)))

	// A later, narrower payload renames one project and omits the other.
	require.NoError(t, store.PutCatalogs(ctx, testutil.NewWeekPayload(
		testutil.WithProjects(&domain.Project{ID: "p1", FullName: "Alpha Renamed"}),
	)))

	projects, err := store.Entities(ctx, domain.KindProject)
	require.NoError(t, err)
	require.Len(t, projects, 2, "the omitted project survives")
	assert.Equal(t, "Alpha Renamed", projects[0].Name)
	assert.Equal(t, "Beta", projects[1].Name)
}

func TestStore_WeekSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := testutil.NewWeekPayload(
		testutil.WithProjects(&domain.Project{ID: "p1", FullName: "Alpha"}),
		testutil.WithPeople(&domain.Person{ID: "u1", FirstName: "Ada", LastName: "Lovelace"}),
		testutil.WithEntries(hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 4}),
	)
	require.NoError(t, store.PutWeek(ctx, "project_hours", testutil.Monday, payload))

	got, fetchedAt, err := store.Week(ctx, "project_hours", testutil.Monday)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), fetchedAt, 5*time.Second)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "41", got.Entries[0].ID)
	assert.Equal(t, 4.0, got.Entries[0].Hours)
}

func TestStore_WeekSnapshotReplaced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testutil.NewWeekPayload(
		testutil.WithEntries(hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 4}),
	)
	second := testutil.NewWeekPayload(
		testutil.WithEntries(hours.EntryRecord{ID: "41", Project: "p1", User: "u1", Hours: 6}),
	)
	require.NoError(t, store.PutWeek(ctx, "project_hours", testutil.Monday, first))
	require.NoError(t, store.PutWeek(ctx, "project_hours", testutil.Monday, second))

	got, _, err := store.Week(ctx, "project_hours", testutil.Monday)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, 6.0, got.Entries[0].Hours)
}

func TestStore_WeekNormalizesToWeekStart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := testutil.NewWeekPayload()
	require.NoError(t, store.PutWeek(ctx, "project_hours", testutil.Monday, payload))

	// Asking with a mid-week day resolves to the same snapshot.
	wednesday := testutil.Monday.AddDate(0, 0, 2)
	_, _, err := store.Week(ctx, "project_hours", wednesday)
	assert.NoError(t, err)
}

func TestStore_WeekNotFound(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Week(context.Background(), "project_hours", testutil.Monday)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_State(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.State(ctx, StateLastWeek)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetState(ctx, StateLastWeek, "2012-07-16"))
	got, err := store.State(ctx, StateLastWeek)
	require.NoError(t, err)
	assert.Equal(t, "2012-07-16", got)

	require.NoError(t, store.SetState(ctx, StateLastWeek, "2012-07-23"))
	got, err = store.State(ctx, StateLastWeek)
	require.NoError(t, err)
	assert.Equal(t, "2012-07-23", got)
}
