package domain

type EntityKind string

const (
	KindProject    EntityKind = "project"
	KindPerson     EntityKind = "person"
	KindActivity   EntityKind = "activity"
	KindLocation   EntityKind = "location"
	KindPeriodDate EntityKind = "period_date"
)

type Axis string

const (
	AxisRow Axis = "row"
	AxisCol Axis = "col"
)

// ValidEntityKinds is the canonical set of accepted entity kinds.
var ValidEntityKinds = map[EntityKind]bool{
	KindProject: true, KindPerson: true, KindActivity: true,
	KindLocation: true, KindPeriodDate: true,
}
