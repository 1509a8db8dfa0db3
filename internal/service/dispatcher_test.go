package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pressrun/backoffice/config"
	"github.com/pressrun/backoffice/internal/domain/model"
	"github.com/pressrun/backoffice/internal/mocks"
	"github.com/pressrun/backoffice/internal/observability/notify"
	"github.com/pressrun/backoffice/internal/testutil"
)

// failureSinkFunc adapts a function to notify.FailureSink.
type failureSinkFunc func(ctx context.Context, payload notify.DeliveryFailurePayload) error

func (f failureSinkFunc) SendDeliveryFailure(ctx context.Context, payload notify.DeliveryFailurePayload) error {
	return f(ctx, payload)
}

// recordingSink collects delivered payloads.
type recordingSink struct {
	mu       sync.Mutex
	payloads []notify.EventPayload
	err      error
}

func (r *recordingSink) SendEvent(_ context.Context, payload notify.EventPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, payload)
	return nil
}

func dispatcherConfig() config.DispatcherConfig {
	return config.DispatcherConfig{
		Interval:    10 * time.Millisecond,
		BatchSize:   50,
		MaxAttempts: 3,
	}
}

func pendingEvent(id string, attempts int) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        id,
		JobID:     "job-1",
		EventType: model.EventJobBecameReady,
		Payload:   []byte(`{"job_id":"job-1"}`),
		Status:    model.OutboxPending,
		Attempts:  attempts,
		CreatedAt: testutil.TestTime(),
	}
}

func TestDispatchPendingDelivers(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	sink := &recordingSink{}

	outbox.EXPECT().ClaimPending(gomock.Any(), 50).
		Return([]*model.OutboxEvent{pendingEvent("evt-1", 1), pendingEvent("evt-2", 1)}, nil)
	outbox.EXPECT().MarkDelivered(gomock.Any(), "evt-1").Return(nil)
	outbox.EXPECT().MarkDelivered(gomock.Any(), "evt-2").Return(nil)

	d, err := NewOutboxDispatcher(OutboxDispatcherOptions{
		Outbox: outbox,
		Sink:   sink,
		Config: dispatcherConfig(),
	})
	require.NoError(t, err)

	delivered, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)

	require.Len(t, sink.payloads, 2)
	assert.Equal(t, "job-1", sink.payloads[0].JobID)
	assert.Equal(t, string(model.EventJobBecameReady), sink.payloads[0].EventType)
	assert.Equal(t, notify.SeverityInfo, sink.payloads[0].Severity)
}

func TestDispatchPendingEmptyBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	outbox.EXPECT().ClaimPending(gomock.Any(), 50).Return(nil, nil)

	d, err := NewOutboxDispatcher(OutboxDispatcherOptions{
		Outbox: outbox,
		Sink:   &recordingSink{},
		Config: dispatcherConfig(),
	})
	require.NoError(t, err)

	delivered, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestDispatchPendingRecordsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	sink := &recordingSink{err: assert.AnError}

	outbox.EXPECT().ClaimPending(gomock.Any(), 50).
		Return([]*model.OutboxEvent{pendingEvent("evt-1", 1)}, nil)
	outbox.EXPECT().RecordFailure(gomock.Any(), "evt-1", gomock.Any()).Return(nil)
	// No MarkDelivered: the row stays pending for the next tick.

	d, err := NewOutboxDispatcher(OutboxDispatcherOptions{
		Outbox: outbox,
		Sink:   sink,
		Config: dispatcherConfig(),
	})
	require.NoError(t, err)

	delivered, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestDispatchPendingEscalatesExhaustedEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	sink := &recordingSink{err: assert.AnError}

	var escalated []notify.DeliveryFailurePayload
	failures := failureSinkFunc(func(_ context.Context, payload notify.DeliveryFailurePayload) error {
		escalated = append(escalated, payload)
		return nil
	})

	outbox.EXPECT().ClaimPending(gomock.Any(), 50).
		Return([]*model.OutboxEvent{pendingEvent("evt-stuck", 3)}, nil)
	outbox.EXPECT().RecordFailure(gomock.Any(), "evt-stuck", gomock.Any()).Return(nil)

	d, err := NewOutboxDispatcher(OutboxDispatcherOptions{
		Outbox:   outbox,
		Sink:     sink,
		Failures: failures,
		Config:   dispatcherConfig(),
	})
	require.NoError(t, err)

	_, err = d.DispatchPending(context.Background())
	require.NoError(t, err)
	require.Len(t, escalated, 1)
	assert.Equal(t, "evt-stuck", escalated[0].EventID)
	assert.Equal(t, 3, escalated[0].Attempts)
}

func TestDispatchPendingNoEscalationBelowBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	sink := &recordingSink{err: assert.AnError}

	failures := failureSinkFunc(func(_ context.Context, _ notify.DeliveryFailurePayload) error {
		t.Fatal("escalated before the attempt budget was exhausted")
		return nil
	})

	outbox.EXPECT().ClaimPending(gomock.Any(), 50).
		Return([]*model.OutboxEvent{pendingEvent("evt-1", 2)}, nil)
	outbox.EXPECT().RecordFailure(gomock.Any(), "evt-1", gomock.Any()).Return(nil)

	d, err := NewOutboxDispatcher(OutboxDispatcherOptions{
		Outbox:   outbox,
		Sink:     sink,
		Failures: failures,
		Config:   dispatcherConfig(),
	})
	require.NoError(t, err)

	_, err = d.DispatchPending(context.Background())
	require.NoError(t, err)
}

func TestDispatchPendingMarkDeliveredFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	sink := &recordingSink{}

	outbox.EXPECT().ClaimPending(gomock.Any(), 50).
		Return([]*model.OutboxEvent{pendingEvent("evt-1", 1)}, nil)
	outbox.EXPECT().MarkDelivered(gomock.Any(), "evt-1").Return(assert.AnError)

	d, err := NewOutboxDispatcher(OutboxDispatcherOptions{
		Outbox: outbox,
		Sink:   sink,
		Config: dispatcherConfig(),
	})
	require.NoError(t, err)

	delivered, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivered, "an unmarkable row is not counted delivered")
	assert.Len(t, sink.payloads, 1, "the sink still saw the event and will again")
}

func TestNewOutboxDispatcherRequiresDependencies(t *testing.T) {
	_, err := NewOutboxDispatcher(OutboxDispatcherOptions{Sink: &recordingSink{}})
	require.Error(t, err)

	ctrl := gomock.NewController(t)
	_, err = NewOutboxDispatcher(OutboxDispatcherOptions{Outbox: mocks.NewMockOutboxRepository(ctrl)})
	require.Error(t, err)
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	outbox.EXPECT().ClaimPending(gomock.Any(), 50).Return(nil, nil).AnyTimes()

	d, err := NewOutboxDispatcher(OutboxDispatcherOptions{
		Outbox: outbox,
		Sink:   &recordingSink{},
		Config: dispatcherConfig(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case runErr := <-done:
		assert.NoError(t, runErr, "cancellation is a graceful shutdown")
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}
}
