// Package notify delivers committed ledger postings to downstream consumers off the request path.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID        uuid.UUID         `json:"id"`
	Topic     string            `json:"topic"`
	Data      any               `json:"data,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventOption func(*Event)

func WithTopic(topic string) EventOption {
	return func(e *Event) {
		e.Topic = topic
	}
}

func WithData(data any) EventOption {
	return func(e *Event) {
		e.Data = data
	}
}

func WithMetadata(key, value string) EventOption {
	return func(e *Event) {
		e.Metadata[key] = value
	}
}

func WithTime(t time.Time) EventOption {
	return func(e *Event) {
		e.CreatedAt = t
	}
}

func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Metadata:  make(map[string]string),
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

// Sink is where the worker hands events.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

// LogSink writes events to the structured log. Used when no broker is configured.
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, e Event) error {
	slog.Info("event", "topic", e.Topic, "id", e.ID, "data", e.Data)
	return nil
}
