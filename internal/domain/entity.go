package domain

import (
	"fmt"
	"time"
)

// Entity is a uniquely identified domain object that can be placed on a grid
// axis. The ID is immutable; the display name may differ from the canonical
// name (people are shown as "First L." but resolved by either form).
type Entity interface {
	EntityID() string
	Name() string
	DisplayName() string
	Kind() EntityKind
}

type Project struct {
	ID        string
	ShortName string
	FullName  string
}

func (p *Project) EntityID() string    { return p.ID }
func (p *Project) Name() string        { return p.FullName }
func (p *Project) DisplayName() string { return p.FullName }
func (p *Project) Kind() EntityKind    { return KindProject }

type Person struct {
	ID        string
	FirstName string
	LastName  string
}

func (p *Person) EntityID() string { return p.ID }

// Name returns the canonical "First Last" form.
func (p *Person) Name() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// DisplayName returns the abbreviated "First L." form used in column headers.
func (p *Person) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return fmt.Sprintf("%s %s.", p.FirstName, p.LastName[:1])
}

func (p *Person) Kind() EntityKind { return KindPerson }

type Activity struct {
	ID       string
	Code     string
	FullName string
}

func (a *Activity) EntityID() string    { return a.ID }
func (a *Activity) Name() string        { return a.FullName }
func (a *Activity) DisplayName() string { return a.FullName }
func (a *Activity) Kind() EntityKind    { return KindActivity }

type Location struct {
	ID       string
	FullName string
}

func (l *Location) EntityID() string    { return l.ID }
func (l *Location) Name() string        { return l.FullName }
func (l *Location) DisplayName() string { return l.FullName }
func (l *Location) Kind() EntityKind    { return KindLocation }

// PeriodDate is a single day column in the charged-hours grid. Its entity ID
// is the ISO date string, so lookups by id and by label coincide.
type PeriodDate struct {
	Date    time.Time
	Display string
	Weekday string
}

func (d *PeriodDate) EntityID() string { return d.Date.Format(DateLayout) }
func (d *PeriodDate) Name() string     { return d.Date.Format(DateLayout) }

func (d *PeriodDate) DisplayName() string {
	if d.Display != "" {
		return d.Display
	}
	return d.Date.Format(DateLayout)
}

func (d *PeriodDate) Kind() EntityKind { return KindPeriodDate }
