package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hourdeck/hourdeck/internal/cache"
	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/grid"
	"github.com/hourdeck/hourdeck/internal/hours"
)

func schemaFor(name string) (grid.Schema, error) {
	switch name {
	case "project_hours":
		return grid.ProjectHoursSchema(), nil
	case "schedule":
		return grid.ScheduleSchema(), nil
	case "charged_hours":
		return grid.ChargedHoursSchema(), nil
	}
	return grid.Schema{}, fmt.Errorf("unknown grid %q (want project_hours, schedule, or charged_hours)", name)
}

// resolveWeek turns the --week flag into a week start. An empty flag falls
// back to HOURDECK_WEEK_START, then the last viewed week, then the current
// week.
func (app *App) resolveWeek(ctx context.Context, flag string) (time.Time, error) {
	if flag == "" {
		flag = os.Getenv("HOURDECK_WEEK_START")
	}
	if flag == "" && app.Cache != nil {
		if stored, err := app.Cache.State(ctx, cache.StateLastWeek); err == nil {
			flag = stored
		}
	}
	if flag == "" {
		return domain.WeekStart(time.Now()), nil
	}
	day, err := time.Parse(domain.DateLayout, flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week %q (want YYYY-MM-DD)", flag)
	}
	return domain.WeekStart(day), nil
}

// loadReconciler builds a reconciler for the given schema and week and loads
// it. When the service cannot be reached and a cached snapshot of the week
// exists, the snapshot is loaded instead and stale is true; edits against a
// stale session still go to the live service.
func (app *App) loadReconciler(ctx context.Context, schema grid.Schema, week time.Time) (rec *grid.Reconciler, stale bool, err error) {
	rec = grid.NewReconciler(grid.NewSession(schema, week), app.Client, app.Observers...)

	payload, fetchErr := app.Client.FetchWeek(ctx, week)
	if fetchErr == nil {
		if err := rec.Session().LoadWeek(payload); err != nil {
			return nil, false, err
		}
		app.snapshot(ctx, schema, week, payload)
		return rec, false, nil
	}
	rec.Session().PushBanner(hours.UserMessage(fetchErr))

	if app.Cache == nil {
		return nil, false, fetchErr
	}
	cached, fetchedAt, cacheErr := app.Cache.Week(ctx, schema.Name, week)
	if cacheErr != nil {
		if errors.Is(cacheErr, cache.ErrNotFound) {
			return nil, false, fetchErr
		}
		return nil, false, cacheErr
	}
	if loadErr := rec.Session().LoadWeek(cached); loadErr != nil {
		return nil, false, loadErr
	}
	rec.Session().PushBanner(fmt.Sprintf("Showing a cached copy fetched %s.", fetchedAt.Format("Jan 2 15:04")))
	return rec, true, nil
}

// snapshot persists the loaded week for offline use. Cache writes are best
// effort.
func (app *App) snapshot(ctx context.Context, schema grid.Schema, week time.Time, payload *hours.WeekPayload) {
	if app.Cache == nil {
		return
	}
	_ = app.Cache.PutCatalogs(ctx, payload)
	_ = app.Cache.PutWeek(ctx, schema.Name, week, payload)
	_ = app.Cache.SetState(ctx, cache.StateLastWeek, domain.WeekStart(week).Format(domain.DateLayout))
}

// splitLabels splits a comma-separated row identity argument.
func splitLabels(arg string) []string {
	parts := strings.Split(arg, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// findRow resolves a row identity argument (one label per row kind, comma
// separated) to the row coordinate holding it.
func findRow(s *grid.Session, arg string) (int, error) {
	kinds := s.Schema().RowKinds
	parts := splitLabels(arg)
	if len(parts) != len(kinds) {
		return 0, fmt.Errorf("row %q: want %d comma-separated labels", arg, len(kinds))
	}

	want := make([]string, len(kinds))
	for i, kind := range kinds {
		e, ok := s.Visible(kind).GetByLabel(parts[i])
		if !ok {
			return 0, fmt.Errorf("no %s named %q on the grid", kind, parts[i])
		}
		want[i] = e.EntityID()
	}

	for _, row := range s.OccupiedRows() {
		owners, ok := s.RowOwners(row)
		if !ok {
			continue
		}
		match := true
		for i, kind := range kinds {
			if owners[kind] != want[i] {
				match = false
				break
			}
		}
		if match {
			return row, nil
		}
	}
	return 0, fmt.Errorf("no row %q on the grid", arg)
}

// findCol resolves a column label to its coordinate.
func findCol(s *grid.Session, label string) (int, error) {
	kind := s.Schema().ColKind
	e, ok := s.Visible(kind).GetByLabel(label)
	if !ok {
		return 0, fmt.Errorf("no %s named %q on the grid", kind, label)
	}
	for _, col := range s.OccupiedCols() {
		if got, found := s.ColEntity(col); found && got.EntityID() == e.EntityID() {
			return col, nil
		}
	}
	return 0, fmt.Errorf("no column %q on the grid", label)
}

// cellsOnCol counts the confirmed cells a column removal would cascade over.
func cellsOnCol(s *grid.Session, col int) int {
	n := 0
	for _, row := range s.OccupiedRows() {
		if _, ok := s.Cell(row, col); ok {
			n++
		}
	}
	return n
}

// cellsOnRow counts the confirmed cells a row removal would cascade over.
func cellsOnRow(s *grid.Session, row int) int {
	n := 0
	for _, col := range s.OccupiedCols() {
		if _, ok := s.Cell(row, col); ok {
			n++
		}
	}
	return n
}
