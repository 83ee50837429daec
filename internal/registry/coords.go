package registry

import (
	"sort"

	"github.com/hourdeck/hourdeck/internal/domain"
)

// Mapper assigns grid coordinates on one axis. An entity receives a
// coordinate the first time it is placed on the grid and keeps it for its
// lifetime there. Coordinates grow monotonically and are never reused within
// a session, so a released coordinate stays vacant.
type Mapper struct {
	axis    domain.Axis
	next    int
	byID    map[string]int
	byCoord map[int]string
}

// NewMapper creates a Mapper whose first assigned coordinate is first.
// Grids reserve coordinate 0 for the header axis, so first is typically 1
// (or 3 for charged-hours grids with three label columns).
func NewMapper(axis domain.Axis, first int) *Mapper {
	return &Mapper{
		axis:    axis,
		next:    first,
		byID:    make(map[string]int),
		byCoord: make(map[int]string),
	}
}

// Axis returns the axis this mapper covers.
func (m *Mapper) Axis() domain.Axis { return m.axis }

// Assign returns the coordinate already held by the entity id, or assigns
// and records the next unused one.
func (m *Mapper) Assign(id string) int {
	if c, ok := m.byID[id]; ok {
		return c
	}
	c := m.next
	m.next++
	m.byID[id] = c
	m.byCoord[c] = id
	return c
}

// Coordinate returns the coordinate held by id, if any.
func (m *Mapper) Coordinate(id string) (int, bool) {
	c, ok := m.byID[id]
	return c, ok
}

// IDAt returns the entity id occupying coord, if any.
func (m *Mapper) IDAt(coord int) (string, bool) {
	id, ok := m.byCoord[coord]
	return id, ok
}

// Release frees the coordinate held by id. The coordinate is not recycled.
func (m *Mapper) Release(id string) {
	c, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	delete(m.byCoord, c)
}

// Rebind transfers oldID's coordinate to newID, keeping the slot stable
// while the identity behind it changes. No-op if oldID holds nothing.
func (m *Mapper) Rebind(oldID, newID string) {
	c, ok := m.byID[oldID]
	if !ok {
		return
	}
	delete(m.byID, oldID)
	m.byID[newID] = c
	m.byCoord[c] = newID
}

// Next returns the coordinate the next assignment would receive.
func (m *Mapper) Next() int { return m.next }

// Len returns the number of occupied coordinates.
func (m *Mapper) Len() int { return len(m.byID) }

// Occupied returns the occupied coordinates in ascending order.
func (m *Mapper) Occupied() []int {
	out := make([]int, 0, len(m.byCoord))
	for c := range m.byCoord {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}
