package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hourdeck/hourdeck/internal/hours"
)

// CallRecord captures one call made against the fake service.
type CallRecord struct {
	Op       hours.Op
	EntryID  string
	Request  hours.EntryRequest
	Reassign hours.ReassignRequest
}

// FakeHoursService is an in-memory hours.Client for engine tests. It stores
// entries, assigns ids on create, and records every call. Failures are
// injected at precise points: per-operation via Fail, or on the Nth call
// overall via FailOnCall, enabling rollback and partial-cascade tests
// without a real server.
type FakeHoursService struct {
	mu      sync.Mutex
	nextID  int
	entries map[string]hours.EntryRecord

	// Payload is returned by FetchWeek.
	Payload *hours.WeekPayload

	// Fail injects an error for every call of the given operation.
	Fail map[hours.Op]error

	// FailOnCall injects FailErr when the running call count (starting at 1)
	// reaches it. Zero disables.
	FailOnCall int
	FailErr    error

	// Gate, when non-nil, blocks SaveEntry and DeleteEntry until the channel
	// is closed. Used to hold a call in flight.
	Gate chan struct{}

	calls []CallRecord
	count int
}

// NewFakeHoursService creates an empty fake service.
func NewFakeHoursService() *FakeHoursService {
	return &FakeHoursService{
		nextID:  100,
		entries: make(map[string]hours.EntryRecord),
	}
}

// Calls returns a copy of the recorded calls in order.
func (f *FakeHoursService) Calls() []CallRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CallRecord, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsOf returns the recorded calls of one operation.
func (f *FakeHoursService) CallsOf(op hours.Op) []CallRecord {
	var out []CallRecord
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Entry returns the stored entry with the given id.
func (f *FakeHoursService) Entry(id string) (hours.EntryRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.entries[id]
	return rec, ok
}

// EntryCount returns the number of stored entries.
func (f *FakeHoursService) EntryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// failFor returns the injected error for this call, if any. Caller holds mu.
func (f *FakeHoursService) failFor(op hours.Op) error {
	f.count++
	if f.FailOnCall > 0 && f.count == f.FailOnCall {
		if f.FailErr != nil {
			return f.FailErr
		}
		return fmt.Errorf("injected failure on call %d", f.count)
	}
	if err, ok := f.Fail[op]; ok && err != nil {
		return err
	}
	return nil
}

func (f *FakeHoursService) waitGate() {
	if f.Gate != nil {
		<-f.Gate
	}
}

func (f *FakeHoursService) FetchWeek(ctx context.Context, weekStart time.Time) (*hours.WeekPayload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, CallRecord{Op: hours.OpFetch})
	err := f.failFor(hours.OpFetch)
	payload := f.Payload
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if payload == nil {
		return &hours.WeekPayload{}, nil
	}
	return payload, nil
}

func (f *FakeHoursService) SaveEntry(ctx context.Context, req hours.EntryRequest) (*hours.EntryRecord, error) {
	op := hours.OpCreate
	if req.ID != "" {
		op = hours.OpUpdate
	}

	f.mu.Lock()
	f.calls = append(f.calls, CallRecord{Op: op, Request: req})
	err := f.failFor(op)
	f.mu.Unlock()

	f.waitGate()

	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := req.ID
	if id == "" {
		f.nextID++
		id = fmt.Sprintf("%d", f.nextID)
	}
	rec := hours.EntryRecord{
		ID:        id,
		Project:   req.Project,
		User:      req.User,
		Activity:  req.Activity,
		Location:  req.Location,
		Date:      req.Date,
		Hours:     req.Hours,
		Comment:   req.Comment,
		Published: true,
	}
	f.entries[id] = rec
	return &rec, nil
}

func (f *FakeHoursService) DeleteEntry(ctx context.Context, id string) error {
	f.mu.Lock()
	f.calls = append(f.calls, CallRecord{Op: hours.OpDelete, EntryID: id})
	err := f.failFor(hours.OpDelete)
	f.mu.Unlock()

	f.waitGate()

	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, id)
	return nil
}

func (f *FakeHoursService) ReassignOwner(ctx context.Context, req hours.ReassignRequest) error {
	f.mu.Lock()
	f.calls = append(f.calls, CallRecord{Op: hours.OpReassign, Reassign: req})
	err := f.failFor(hours.OpReassign)
	f.mu.Unlock()

	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rec := range f.entries {
		switch req.Kind {
		case "project":
			if rec.Project == req.FromID {
				rec.Project = req.ToID
			}
		case "person":
			if rec.User == req.FromID {
				rec.User = req.ToID
			}
		case "activity":
			if rec.Activity == req.FromID {
				rec.Activity = req.ToID
			}
		case "location":
			if rec.Location == req.FromID {
				rec.Location = req.ToID
			}
		}
		f.entries[id] = rec
	}
	return nil
}

func (f *FakeHoursService) Available(ctx context.Context) bool { return true }
