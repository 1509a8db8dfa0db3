package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pressrun/backoffice/config"
	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/domain/model"
	obserrors "github.com/pressrun/backoffice/internal/observability/errors"
	"github.com/pressrun/backoffice/internal/observability/metrics"
	"github.com/pressrun/backoffice/internal/observability/notify"
	"github.com/pressrun/backoffice/internal/observability/statsd"
)

// OutboxDispatcherOptions groups dependencies for OutboxDispatcher.
type OutboxDispatcherOptions struct {
	Outbox   core.OutboxRepository
	Sink     notify.Sink
	Failures notify.FailureSink
	Config   config.DispatcherConfig
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// OutboxDispatcher drains pending outbox events to the notification sink.
// Events were appended in the same transaction as the mutation they describe,
// so delivery is at-least-once: a crash after sending but before marking
// delivered re-sends on the next tick. Sinks must tolerate duplicates.
type OutboxDispatcher struct {
	outbox   core.OutboxRepository
	sink     notify.Sink
	failures notify.FailureSink
	config   config.DispatcherConfig
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewOutboxDispatcher constructs a new OutboxDispatcher.
func NewOutboxDispatcher(opts OutboxDispatcherOptions) (*OutboxDispatcher, error) {
	if opts.Outbox == nil {
		return nil, errors.New("OutboxRepository is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("notification sink is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OutboxDispatcher{
		outbox:   opts.Outbox,
		sink:     opts.Sink,
		failures: opts.Failures,
		config:   opts.Config,
		logger:   logger.With("component", "outbox_dispatcher"),
		metrics:  opts.Metrics,
	}, nil
}

// Run starts the dispatch loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (d *OutboxDispatcher) Run(ctx context.Context) error {
	d.logger.InfoContext(ctx, "starting outbox dispatcher",
		"interval", d.config.Interval, "batch_size", d.config.BatchSize)

	// Jitter spreads out ticks when several instances start together.
	d.waitWithJitter(ctx)

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	if _, err := d.DispatchPending(ctx); err != nil && !isContextCancellation(err) {
		d.logger.ErrorContext(ctx, "initial dispatch failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.InfoContext(ctx, "outbox dispatcher stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if _, err := d.DispatchPending(ctx); err != nil && !isContextCancellation(err) {
				d.logger.ErrorContext(ctx, "dispatch failed", "error", err)
			}
		}
	}
}

// DispatchPending claims one batch of pending events and delivers them,
// returning the number delivered. Claimed rows that fail stay pending with
// their error recorded and are retried next tick.
func (d *OutboxDispatcher) DispatchPending(ctx context.Context) (int, error) {
	events, err := d.outbox.ClaimPending(ctx, d.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim pending events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	// Batch ID correlates per-event log lines across a single claim.
	batchID := uuid.NewString()
	delivered := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if d.deliver(ctx, event, batchID) {
			delivered++
		}
	}

	if delivered > 0 {
		d.logger.InfoContext(ctx, "dispatched outbox events",
			"batch_id", batchID, "claimed", len(events), "delivered", delivered)
	}
	return delivered, nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, event *model.OutboxEvent, batchID string) bool {
	start := time.Now()
	err := d.sink.SendEvent(ctx, notify.EventPayload{
		JobID:      event.JobID,
		EventType:  string(event.EventType),
		Detail:     event.Payload,
		Severity:   notify.SeverityInfo,
		OccurredAt: event.CreatedAt,
	})
	elapsed := time.Since(start)

	if err != nil {
		d.logger.WarnContext(ctx, "event delivery failed",
			"batch_id", batchID, "event_id", event.ID, "event_type", event.EventType,
			"attempts", event.Attempts, "error", err)
		metrics.EmitDelivery(d.metrics, metrics.DeliveryMetric{
			EventType: string(event.EventType),
			Result:    metrics.ResultError,
			Duration:  elapsed,
			Err:       err,
		})
		if recordErr := d.outbox.RecordFailure(ctx, event.ID, err.Error()); recordErr != nil {
			d.logger.ErrorContext(ctx, "failed to record delivery failure",
				"event_id", event.ID, "error", recordErr)
		}
		d.escalate(ctx, event, err)
		return false
	}

	if markErr := d.outbox.MarkDelivered(ctx, event.ID); markErr != nil {
		// The send succeeded; the row stays pending and the sink sees the
		// event again next tick.
		d.logger.ErrorContext(ctx, "failed to mark event delivered",
			"event_id", event.ID, "error", markErr)
		return false
	}

	metrics.EmitDelivery(d.metrics, metrics.DeliveryMetric{
		EventType: string(event.EventType),
		Result:    metrics.ResultSuccess,
		Duration:  elapsed,
	})
	return true
}

// escalate pages once an event burns through its attempt budget. The row is
// left pending; operators decide whether to retry or discard.
func (d *OutboxDispatcher) escalate(ctx context.Context, event *model.OutboxEvent, cause error) {
	if d.failures == nil || d.config.MaxAttempts <= 0 || event.Attempts < d.config.MaxAttempts {
		return
	}
	err := d.failures.SendDeliveryFailure(ctx, notify.DeliveryFailurePayload{
		EventID:    event.ID,
		JobID:      event.JobID,
		EventType:  string(event.EventType),
		Attempts:   event.Attempts,
		Error:      cause.Error(),
		ErrorClass: obserrors.Classify(cause),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to escalate delivery failure",
			"event_id", event.ID, "error", err)
	}
}

func (d *OutboxDispatcher) waitWithJitter(ctx context.Context) {
	maxJitter := int64(d.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		d.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
