package hours

// WeekPayload is the bulk response to a week fetch. The catalog sections list
// everything available for autocomplete; Entries carries the persisted cells,
// each referencing catalog ids. Sections the current grid variant does not
// use are simply absent.
type WeekPayload struct {
	AllProjects   []ProjectRecord    `json:"all_projects"`
	AllUsers      []UserRecord       `json:"all_users"`
	AllActivities []ActivityRecord   `json:"all_activities,omitempty"`
	AllLocations  []LocationRecord   `json:"all_locations,omitempty"`
	PeriodDates   []PeriodDateRecord `json:"period_dates,omitempty"`
	Entries       []EntryRecord      `json:"entries"`
}

type ProjectRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserRecord struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ActivityRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

type LocationRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PeriodDateRecord struct {
	Date    string `json:"date"`
	Display string `json:"display"`
	Weekday string `json:"weekday"`
}

// EntryRecord is one persisted hours entry. Only the id fields relevant to
// the grid variant are populated.
type EntryRecord struct {
	ID        string  `json:"id"`
	Project   string  `json:"project"`
	User      string  `json:"user,omitempty"`
	Activity  string  `json:"activity,omitempty"`
	Location  string  `json:"location,omitempty"`
	Date      string  `json:"date,omitempty"`
	Hours     float64 `json:"hours"`
	Published bool    `json:"published"`
	Comment   string  `json:"comment,omitempty"`
}

// EntryRequest is the body of a create or update call. An empty ID means
// create; the service echoes the stored entry back, assigning the id on
// create. EditID is a client-generated idempotency token so a retried create
// cannot produce duplicate entries.
type EntryRequest struct {
	ID        string  `json:"id,omitempty"`
	EditID    string  `json:"edit_id"`
	Project   string  `json:"project"`
	User      string  `json:"user,omitempty"`
	Activity  string  `json:"activity,omitempty"`
	Location  string  `json:"location,omitempty"`
	Date      string  `json:"date,omitempty"`
	Hours     float64 `json:"hours"`
	Comment   string  `json:"comment,omitempty"`
	WeekStart string  `json:"week_start"`
}

// ReassignRequest rebinds every entry owned by FromID to ToID for the given
// entity kind within one week. Used when a header identity is replaced.
type ReassignRequest struct {
	EditID    string `json:"edit_id"`
	Kind      string `json:"kind"`
	FromID    string `json:"from"`
	ToID      string `json:"to"`
	WeekStart string `json:"week_start"`
}
