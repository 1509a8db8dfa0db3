package metrics

import (
	"time"

	obserrors "github.com/pressrun/backoffice/internal/observability/errors"
	"github.com/pressrun/backoffice/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// DeliveryMetric captures details about one outbox delivery attempt.
type DeliveryMetric struct {
	EventType string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitDelivery emits standardised outbox delivery metrics.
func EmitDelivery(sink statsd.Sink, in DeliveryMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"event_type": in.EventType,
		"result":     in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("outbox.delivery", 1, tags)

	if in.Duration > 0 {
		sink.Timing("outbox.delivery_duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
