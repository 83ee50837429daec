package hours

import (
	"io"
	"log/slog"
)

// Op identifies the kind of remote call being made.
type Op string

const (
	OpFetch    Op = "fetch"
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpReassign Op = "reassign"
)

// CallEvent records metadata about a single hours service call.
type CallEvent struct {
	Op        Op
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about remote calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that writes call events to w.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"op", string(event.Op),
		"latency_ms", event.LatencyMs,
		"success", event.Success,
	}
	if !event.Success {
		attrs = append(attrs, "error_code", event.ErrorCode)
		o.logger.Error("hours_call", attrs...)
		return
	}
	o.logger.Info("hours_call", attrs...)
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event CallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}
