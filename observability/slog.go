package observability

import (
	"context"
	"log/slog"
)

// SlogObserver writes every event to a slog.Logger, so a turn shows up in the
// log as a sequence of records named after the event types the engine and the
// compactor emit ("graph.turn.start", "graph.tool.call",
// "summarize.compact.complete", ...). The emitting subsystem travels as a
// "source" attribute and each Data key becomes its own attribute.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver wraps logger as an Observer.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	o.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}
