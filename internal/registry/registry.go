// Package registry provides the in-memory entity collections and grid
// coordinate bookkeeping that back a grid session. Two registries exist per
// entity kind: the catalog (everything available for autocomplete, loaded
// once) and the visible subset (entities currently placed on the grid).
package registry

import (
	"github.com/hourdeck/hourdeck/internal/domain"
)

// Registry is an ordered set of entities of one kind, keyed by id. No two
// members share an id. Insertion order is preserved.
type Registry[T domain.Entity] struct {
	members []T
}

// New creates an empty registry.
func New[T domain.Entity]() *Registry[T] {
	return &Registry[T]{}
}

// AddIfAbsent inserts e iff no existing member has the same id.
// Returns true iff e was inserted.
func (r *Registry[T]) AddIfAbsent(e T) bool {
	if _, ok := r.GetByID(e.EntityID()); ok {
		return false
	}
	r.members = append(r.members, e)
	return true
}

// GetByID returns the member with the given id.
func (r *Registry[T]) GetByID(id string) (T, bool) {
	for _, m := range r.members {
		if m.EntityID() == id {
			return m, true
		}
	}
	var zero T
	return zero, false
}

// GetByLabel returns the member whose canonical name or display name exactly
// matches label.
func (r *Registry[T]) GetByLabel(label string) (T, bool) {
	for _, m := range r.members {
		if m.Name() == label || m.DisplayName() == label {
			return m, true
		}
	}
	var zero T
	return zero, false
}

// Index returns the position of the member with e's id, or -1.
func (r *Registry[T]) Index(e T) int {
	for i, m := range r.members {
		if m.EntityID() == e.EntityID() {
			return i
		}
	}
	return -1
}

// Remove deletes the member with e's id. Removing an absent entity is a
// no-op; the bool reports whether anything was removed.
func (r *Registry[T]) Remove(e T) bool {
	i := r.Index(e)
	if i < 0 {
		return false
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	return true
}

// Len returns the number of members.
func (r *Registry[T]) Len() int {
	return len(r.members)
}

// All returns the members in insertion order. The slice is a copy; mutating
// it does not affect the registry.
func (r *Registry[T]) All() []T {
	out := make([]T, len(r.members))
	copy(out, r.members)
	return out
}

// ByCoordinate resolves the entity occupying the given coordinate on m's
// axis, if any member of r owns it.
func ByCoordinate[T domain.Entity](r *Registry[T], m *Mapper, coord int) (T, bool) {
	id, ok := m.IDAt(coord)
	if !ok {
		var zero T
		return zero, false
	}
	return r.GetByID(id)
}
