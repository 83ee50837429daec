package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/hours"
)

// ErrNotFound indicates the requested cache row does not exist.
var ErrNotFound = errors.New("not found in cache")

// EntityRow is one cached catalog entity.
type EntityRow struct {
	Kind    domain.EntityKind
	ID      string
	Name    string
	Display string
}

// Store reads and writes the cache database.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an opened cache database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// PutCatalogs upserts every catalog entity the payload carries. Entities
// absent from the payload are left in place so a narrow fetch cannot erase
// the catalog.
func (s *Store) PutCatalogs(ctx context.Context, payload *hours.WeekPayload) error {
	rows := catalogRows(payload)
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting catalog transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO entities (kind, id, name, display_name, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE
		SET name = excluded.name, display_name = excluded.display_name, updated_at = excluded.updated_at`
	now := nowUTC()
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, query, string(row.Kind), row.ID, row.Name, row.Display, now); err != nil {
			return fmt.Errorf("upserting %s %s: %w", row.Kind, row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog transaction: %w", err)
	}
	committed = true
	return nil
}

func catalogRows(payload *hours.WeekPayload) []EntityRow {
	var rows []EntityRow
	for _, rec := range payload.AllProjects {
		e := &domain.Project{ID: rec.ID, FullName: rec.Name}
		rows = append(rows, EntityRow{Kind: e.Kind(), ID: e.ID, Name: e.Name(), Display: e.DisplayName()})
	}
	for _, rec := range payload.AllUsers {
		e := &domain.Person{ID: rec.ID, FirstName: rec.FirstName, LastName: rec.LastName}
		rows = append(rows, EntityRow{Kind: e.Kind(), ID: e.ID, Name: e.Name(), Display: e.DisplayName()})
	}
	for _, rec := range payload.AllActivities {
		e := &domain.Activity{ID: rec.ID, FullName: rec.Name, Code: rec.Code}
		rows = append(rows, EntityRow{Kind: e.Kind(), ID: e.ID, Name: e.Name(), Display: e.DisplayName()})
	}
	for _, rec := range payload.AllLocations {
		e := &domain.Location{ID: rec.ID, FullName: rec.Name}
		rows = append(rows, EntityRow{Kind: e.Kind(), ID: e.ID, Name: e.Name(), Display: e.DisplayName()})
	}
	return rows
}

// Entities lists the cached entities of one kind ordered by name.
func (s *Store) Entities(ctx context.Context, kind domain.EntityKind) ([]EntityRow, error) {
	query := `SELECT kind, id, name, display_name FROM entities WHERE kind = ? ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing %s entities: %w", kind, err)
	}
	defer rows.Close()

	var out []EntityRow
	for rows.Next() {
		var row EntityRow
		var k string
		if err := rows.Scan(&k, &row.ID, &row.Name, &row.Display); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		row.Kind = domain.EntityKind(k)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return out, nil
}

// PutWeek stores the payload snapshot for one grid and week, replacing any
// previous snapshot.
func (s *Store) PutWeek(ctx context.Context, grid string, weekStart time.Time, payload *hours.WeekPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding week payload: %w", err)
	}

	query := `INSERT INTO weeks (grid, week_start, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(grid, week_start) DO UPDATE
		SET payload = excluded.payload, fetched_at = excluded.fetched_at`
	_, err = s.db.ExecContext(ctx, query,
		grid,
		domain.WeekStart(weekStart).Format(domain.DateLayout),
		string(body),
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("storing week snapshot: %w", err)
	}
	return nil
}

// Week loads the stored snapshot for one grid and week. Returns ErrNotFound
// when no snapshot exists.
func (s *Store) Week(ctx context.Context, grid string, weekStart time.Time) (*hours.WeekPayload, time.Time, error) {
	query := `SELECT payload, fetched_at FROM weeks WHERE grid = ? AND week_start = ?`
	row := s.db.QueryRowContext(ctx, query, grid, domain.WeekStart(weekStart).Format(domain.DateLayout))

	var body, fetched string
	if err := row.Scan(&body, &fetched); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("loading week snapshot: %w", err)
	}

	var payload hours.WeekPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, time.Time{}, fmt.Errorf("decoding week snapshot: %w", err)
	}
	fetchedAt, err := time.Parse(time.RFC3339, fetched)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parsing snapshot timestamp: %w", err)
	}
	return &payload, fetchedAt, nil
}

// SetState stores one key/value pair of application state.
func (s *Store) SetState(ctx context.Context, key, value string) error {
	query := `INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("storing state %q: %w", key, err)
	}
	return nil
}

// State loads one application state value. Returns ErrNotFound when the key
// has never been set.
func (s *Store) State(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("loading state %q: %w", key, err)
	}
	return value, nil
}

// StateLastWeek is the app_state key remembering the last viewed week start.
const StateLastWeek = "last_week"
