package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityInfo     = "info"
)

// EventPayload captures the canonical data we emit for job lifecycle notifications.
type EventPayload struct {
	JobID      string
	EventType  string
	Detail     json.RawMessage
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// DeliveryFailurePayload describes an outbox event whose delivery kept failing.
type DeliveryFailurePayload struct {
	EventID    string
	JobID      string
	EventType  string
	Attempts   int
	Error      string
	ErrorClass string
	OccurredAt time.Time
}

// Sink describes a destination capable of consuming job lifecycle notifications.
type Sink interface {
	SendEvent(ctx context.Context, payload EventPayload) error
}

// FailureSink receives escalations for events that exhausted their delivery
// attempts.
type FailureSink interface {
	SendDeliveryFailure(ctx context.Context, payload DeliveryFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload EventPayload) error

// SendEvent implements the Sink interface.
func (f SinkFunc) SendEvent(ctx context.Context, payload EventPayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
