package grid

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// EditEvent captures lightweight execution telemetry for one reconciliation.
type EditEvent struct {
	Grid     string
	Action   Action
	State    EditState
	Row      int
	Col      int
	Duration time.Duration
	Err      error
}

// EditObserver receives reconciliation events.
type EditObserver interface {
	ObserveEdit(ctx context.Context, event EditEvent)
}

// NoopEditObserver ignores all events.
type NoopEditObserver struct{}

func (NoopEditObserver) ObserveEdit(context.Context, EditEvent) {}

type logEditObserver struct {
	logger *slog.Logger
}

// NewLogEditObserver writes reconciliation events to the provided writer.
func NewLogEditObserver(w io.Writer) EditObserver {
	if w == nil {
		return NoopEditObserver{}
	}
	return &logEditObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logEditObserver) ObserveEdit(ctx context.Context, event EditEvent) {
	attrs := []any{
		"grid", event.Grid,
		"action", string(event.Action),
		"state", string(event.State),
		"row", event.Row,
		"col", event.Col,
		"duration_ms", event.Duration.Milliseconds(),
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "grid_edit", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "grid_edit", attrs...)
}

func editObserverOrNoop(observers []EditObserver) EditObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopEditObserver{}
}
