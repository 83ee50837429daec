package domain

// TimeCell is the hours value stored at one row/column intersection of the
// grid, together with the entity ids it belongs to. ID is server-assigned and
// stays empty until the first successful create call confirms the cell.
type TimeCell struct {
	ID      string
	Row     int
	Col     int
	Hours   float64
	Comment string

	// Published reports whether the server has confirmed the current value.
	// A locally edited cell is unpublished until the in-flight call commits.
	Published bool

	// Owners maps each axis entity kind to the owning entity id, e.g.
	// {project: "12", person: "7"} or {project, activity, location, period_date}.
	Owners map[EntityKind]string
}

// Confirmed reports whether the cell exists on the server.
func (c *TimeCell) Confirmed() bool {
	return c.ID != ""
}

// Owner returns the owning entity id for the given kind, or "".
func (c *TimeCell) Owner(kind EntityKind) string {
	return c.Owners[kind]
}

// CloneOwners returns a copy of the owner map. Rollback paths restore from
// such copies so a failed edit cannot leave shared map state behind.
func (c *TimeCell) CloneOwners() map[EntityKind]string {
	out := make(map[EntityKind]string, len(c.Owners))
	for k, v := range c.Owners {
		out[k] = v
	}
	return out
}
