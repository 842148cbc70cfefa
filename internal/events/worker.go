package events

import (
	"context"
	"log/slog"
)

// Worker decouples event emission from delivery. Services write to a buffered
// channel through the returned Publisher; the worker drains it into the real
// sink so a slow broker never blocks a store mutation.
type Worker struct {
	sink   Publisher
	inbox  chan Event
	logger *slog.Logger
}

func NewWorker(sink Publisher, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = 256
	}
	return &Worker{
		sink:   sink,
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Publisher returns the non-blocking front the services emit through. When the
// inbox is full the event is dropped and logged; notification is best-effort
// by design and must not fail the originating operation.
func (w *Worker) Publisher() Publisher {
	return publisherFunc(func(ctx context.Context, event Event) error {
		select {
		case w.inbox <- event:
		default:
			if w.logger != nil {
				w.logger.WarnContext(ctx, "event inbox full, dropping event",
					"type", event.Type,
					"request_id", event.RequestID,
				)
			}
		}
		return nil
	})
}

// Run drains the inbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Emit(ctx, event); err != nil && w.logger != nil {
				w.logger.ErrorContext(ctx, "event delivery failed",
					"type", event.Type,
					"error", err,
				)
			}
		}
	}
}

type publisherFunc func(ctx context.Context, event Event) error

func (f publisherFunc) Emit(ctx context.Context, event Event) error {
	return f(ctx, event)
}
