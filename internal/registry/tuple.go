package registry

import (
	"sort"
	"strings"
)

const tupleSep = "\x1f"

// TupleIndex assigns row coordinates to entity combinations rather than
// single entities. The charged-hours grid keys each row by the
// (project, activity, location) triple: two rows may share a project as long
// as the full tuple differs. Coordinates are monotonic and never reused.
type TupleIndex struct {
	next    int
	byKey   map[string]int
	byCoord map[int][]string
}

// NewTupleIndex creates a TupleIndex whose first assigned coordinate is first.
func NewTupleIndex(first int) *TupleIndex {
	return &TupleIndex{
		next:    first,
		byKey:   make(map[string]int),
		byCoord: make(map[int][]string),
	}
}

func tupleKey(ids []string) string {
	return strings.Join(ids, tupleSep)
}

// Assign returns the coordinate already held by the id tuple, or assigns and
// records the next unused one. Tuple order is significant.
func (t *TupleIndex) Assign(ids ...string) int {
	key := tupleKey(ids)
	if c, ok := t.byKey[key]; ok {
		return c
	}
	c := t.next
	t.next++
	t.byKey[key] = c
	stored := make([]string, len(ids))
	copy(stored, ids)
	t.byCoord[c] = stored
	return c
}

// AssignAt records the id tuple at an explicit coordinate, advancing the
// monotonic counter past it. Used when a row was reserved visually before its
// identity completed. Returns the existing coordinate if the tuple is
// already assigned.
func (t *TupleIndex) AssignAt(coord int, ids ...string) int {
	key := tupleKey(ids)
	if c, ok := t.byKey[key]; ok {
		return c
	}
	if coord >= t.next {
		t.next = coord + 1
	}
	t.byKey[key] = coord
	stored := make([]string, len(ids))
	copy(stored, ids)
	t.byCoord[coord] = stored
	return coord
}

// Lookup returns the coordinate held by the id tuple, if any.
func (t *TupleIndex) Lookup(ids ...string) (int, bool) {
	c, ok := t.byKey[tupleKey(ids)]
	return c, ok
}

// IDsAt returns the id tuple occupying coord, if any.
func (t *TupleIndex) IDsAt(coord int) ([]string, bool) {
	ids, ok := t.byCoord[coord]
	if !ok {
		return nil, false
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, true
}

// Release frees the coordinate. It is not recycled.
func (t *TupleIndex) Release(coord int) {
	ids, ok := t.byCoord[coord]
	if !ok {
		return
	}
	delete(t.byKey, tupleKey(ids))
	delete(t.byCoord, coord)
}

// CoordinatesOf returns, in ascending order, every coordinate whose tuple
// contains the given entity id. Used for cascade removal when a shared
// entity leaves the grid.
func (t *TupleIndex) CoordinatesOf(id string) []int {
	var out []int
	for c, ids := range t.byCoord {
		for _, member := range ids {
			if member == id {
				out = append(out, c)
				break
			}
		}
	}
	sort.Ints(out)
	return out
}

// Next returns the coordinate the next assignment would receive.
func (t *TupleIndex) Next() int { return t.next }

// Len returns the number of occupied coordinates.
func (t *TupleIndex) Len() int { return len(t.byKey) }
