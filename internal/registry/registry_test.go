package registry

import (
	"testing"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddIfAbsent(t *testing.T) {
	r := New[*domain.Project]()
	p := &domain.Project{ID: "1", FullName: "Timepiece"}

	assert.True(t, r.AddIfAbsent(p))
	assert.False(t, r.AddIfAbsent(p), "second add of same id must be rejected")
	assert.Equal(t, 1, r.Len())

	// Same id, different struct: still rejected.
	assert.False(t, r.AddIfAbsent(&domain.Project{ID: "1", FullName: "Other"}))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetByID(t *testing.T) {
	r := New[*domain.Project]()
	r.AddIfAbsent(&domain.Project{ID: "1", FullName: "Alpha"})
	r.AddIfAbsent(&domain.Project{ID: "2", FullName: "Beta"})

	p, ok := r.GetByID("2")
	require.True(t, ok)
	assert.Equal(t, "Beta", p.FullName)

	_, ok = r.GetByID("3")
	assert.False(t, ok)
}

func TestRegistry_GetByLabel_MatchesCanonicalAndDisplay(t *testing.T) {
	r := New[*domain.Person]()
	r.AddIfAbsent(&domain.Person{ID: "7", FirstName: "Ada", LastName: "Lovelace"})

	byCanonical, ok := r.GetByLabel("Ada Lovelace")
	require.True(t, ok)
	byDisplay, ok2 := r.GetByLabel("Ada L.")
	require.True(t, ok2)
	assert.Equal(t, byCanonical, byDisplay)

	_, ok = r.GetByLabel("Grace H.")
	assert.False(t, ok)
}

func TestRegistry_Remove(t *testing.T) {
	r := New[*domain.Project]()
	a := &domain.Project{ID: "1", FullName: "Alpha"}
	b := &domain.Project{ID: "2", FullName: "Beta"}
	r.AddIfAbsent(a)
	r.AddIfAbsent(b)

	assert.True(t, r.Remove(a))
	assert.Equal(t, 1, r.Len())
	_, ok := r.GetByID("1")
	assert.False(t, ok)

	// Removing an absent entity is a no-op.
	assert.False(t, r.Remove(a))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_All_PreservesInsertionOrder(t *testing.T) {
	r := New[*domain.Project]()
	for _, id := range []string{"3", "1", "2"} {
		r.AddIfAbsent(&domain.Project{ID: id, FullName: "P" + id})
	}
	var ids []string
	for _, p := range r.All() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestMapper_AssignIsStableAndMonotonic(t *testing.T) {
	m := NewMapper(domain.AxisCol, 1)

	assert.Equal(t, 1, m.Assign("u1"))
	assert.Equal(t, 2, m.Assign("u2"))
	assert.Equal(t, 1, m.Assign("u1"), "re-assign must return the held coordinate")

	id, ok := m.IDAt(2)
	require.True(t, ok)
	assert.Equal(t, "u2", id)
}

func TestMapper_ReleaseDoesNotRecycle(t *testing.T) {
	m := NewMapper(domain.AxisRow, 1)
	m.Assign("p1")
	m.Assign("p2")

	m.Release("p1")
	_, ok := m.IDAt(1)
	assert.False(t, ok)

	// Next assignment continues past the freed slot.
	assert.Equal(t, 3, m.Assign("p3"))
	assert.Equal(t, []int{2, 3}, m.Occupied())
}

func TestMapper_ReleaseUnknownIsNoop(t *testing.T) {
	m := NewMapper(domain.AxisRow, 1)
	m.Assign("p1")
	m.Release("missing")
	assert.Equal(t, 1, m.Len())
}

func TestByCoordinate(t *testing.T) {
	r := New[*domain.Person]()
	m := NewMapper(domain.AxisCol, 1)
	p := &domain.Person{ID: "7", FirstName: "Ada", LastName: "Lovelace"}
	r.AddIfAbsent(p)
	col := m.Assign(p.ID)

	got, ok := ByCoordinate(r, m, col)
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = ByCoordinate(r, m, 99)
	assert.False(t, ok)
}

func TestTupleIndex_SharedEntityAcrossRows(t *testing.T) {
	idx := NewTupleIndex(3)

	r1 := idx.Assign("proj1", "act1", "loc1")
	r2 := idx.Assign("proj1", "act2", "loc1")
	assert.Equal(t, 3, r1)
	assert.Equal(t, 4, r2)

	// Same tuple maps to the same row.
	again, ok := idx.Lookup("proj1", "act1", "loc1")
	require.True(t, ok)
	assert.Equal(t, r1, again)

	// proj1 appears on both rows; act2 on one.
	assert.Equal(t, []int{3, 4}, idx.CoordinatesOf("proj1"))
	assert.Equal(t, []int{4}, idx.CoordinatesOf("act2"))
	assert.Empty(t, idx.CoordinatesOf("loc9"))
}

func TestTupleIndex_Release(t *testing.T) {
	idx := NewTupleIndex(1)
	c := idx.Assign("a", "b", "c")
	idx.Release(c)

	_, ok := idx.Lookup("a", "b", "c")
	assert.False(t, ok)

	// Freed coordinate stays vacant.
	assert.Equal(t, 2, idx.Assign("a", "b", "c"))
}
