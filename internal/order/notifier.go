package order

import (
	"context"
	"time"
)

type EventType string

const (
	EventPlaced        EventType = "order.placed"
	EventStatusUpdated EventType = "order.status_updated"
	EventCancelled     EventType = "order.cancelled"
)

type Event struct {
	Type           EventType `json:"type"`
	Order          Order     `json:"order"`
	PreviousStatus Status    `json:"previousStatus,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Notifier hands lifecycle events to the notification pipeline. Errors are
// reported to the caller for logging only; they never fail the operation
// that raised the event.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }
