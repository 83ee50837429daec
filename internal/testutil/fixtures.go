package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/hours"
)

var testIDCounter atomic.Int64

func nextID() string {
	return fmt.Sprintf("%d", testIDCounter.Add(1))
}

// NewTestProject builds a project with a fresh id.
func NewTestProject(name string) *domain.Project {
	return &domain.Project{ID: nextID(), FullName: name}
}

// NewTestPerson builds a person with a fresh id.
func NewTestPerson(first, last string) *domain.Person {
	return &domain.Person{ID: nextID(), FirstName: first, LastName: last}
}

// NewTestActivity builds an activity with a fresh id.
func NewTestActivity(name string) *domain.Activity {
	return &domain.Activity{ID: nextID(), FullName: name}
}

// NewTestLocation builds a location with a fresh id.
func NewTestLocation(name string) *domain.Location {
	return &domain.Location{ID: nextID(), FullName: name}
}

// Monday is a fixed week start used across tests.
var Monday = time.Date(2012, 7, 16, 0, 0, 0, 0, time.UTC)

// PayloadOption mutates a WeekPayload under construction.
type PayloadOption func(*hours.WeekPayload)

// WithProjects adds projects to the payload catalog.
func WithProjects(projects ...*domain.Project) PayloadOption {
	return func(p *hours.WeekPayload) {
		for _, proj := range projects {
			p.AllProjects = append(p.AllProjects, hours.ProjectRecord{ID: proj.ID, Name: proj.FullName})
		}
	}
}

// WithPeople adds people to the payload catalog.
func WithPeople(people ...*domain.Person) PayloadOption {
	return func(p *hours.WeekPayload) {
		for _, person := range people {
			p.AllUsers = append(p.AllUsers, hours.UserRecord{
				ID: person.ID, FirstName: person.FirstName, LastName: person.LastName,
			})
		}
	}
}

// WithActivities adds activities to the payload catalog.
func WithActivities(activities ...*domain.Activity) PayloadOption {
	return func(p *hours.WeekPayload) {
		for _, a := range activities {
			p.AllActivities = append(p.AllActivities, hours.ActivityRecord{ID: a.ID, Name: a.FullName})
		}
	}
}

// WithLocations adds locations to the payload catalog.
func WithLocations(locations ...*domain.Location) PayloadOption {
	return func(p *hours.WeekPayload) {
		for _, l := range locations {
			p.AllLocations = append(p.AllLocations, hours.LocationRecord{ID: l.ID, Name: l.FullName})
		}
	}
}

// WithWeekDates adds the five weekdays starting at Monday as period dates.
func WithWeekDates() PayloadOption {
	return func(p *hours.WeekPayload) {
		for i := 0; i < 5; i++ {
			d := Monday.AddDate(0, 0, i)
			p.PeriodDates = append(p.PeriodDates, hours.PeriodDateRecord{
				Date:    d.Format(domain.DateLayout),
				Display: d.Format("Mon 1/2"),
				Weekday: d.Format("Monday"),
			})
		}
	}
}

// WithEntries adds persisted entries to the payload.
func WithEntries(entries ...hours.EntryRecord) PayloadOption {
	return func(p *hours.WeekPayload) {
		p.Entries = append(p.Entries, entries...)
	}
}

// NewWeekPayload builds a bulk payload from the given options.
func NewWeekPayload(opts ...PayloadOption) *hours.WeekPayload {
	p := &hours.WeekPayload{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
