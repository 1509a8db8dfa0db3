package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a notification-worthy lifecycle event.
type EventType string

const (
	// EventJobBecameReady fires once when all required files are attached.
	EventJobBecameReady EventType = "job.became_ready"
	// EventProofApproved fires when the current proof version is approved.
	EventProofApproved EventType = "job.proof_approved"
	// EventSettlementFrozen fires when the amount snapshot is frozen.
	EventSettlementFrozen EventType = "job.settlement_frozen"
	// EventChainDocumentEmitted fires per emitted chain document.
	EventChainDocumentEmitted EventType = "chain.document_emitted"
	// EventJobCancelled fires on cancellation.
	EventJobCancelled EventType = "job.cancelled"
	// EventJobCompleted fires on fulfillment confirmation.
	EventJobCompleted EventType = "job.completed"
)

// ChainDocumentEventType builds the per-document event type so the
// once-per-job dedupe key distinguishes documents on different boundaries.
func ChainDocumentEventType(boundary Boundary, docType DocumentType) EventType {
	return EventType(fmt.Sprintf("%s:%s:%s", EventChainDocumentEmitted, boundary, docType))
}

// OutboxStatus tracks delivery state of an outbox row.
type OutboxStatus string

const (
	// OutboxPending awaits delivery by the dispatcher.
	OutboxPending OutboxStatus = "pending"
	// OutboxDelivered has been handed to the notifier sink.
	OutboxDelivered OutboxStatus = "delivered"
)

// OutboxEvent is an event row appended in the same transaction as the
// business mutation it describes. A separate dispatcher delivers it
// at-least-once; delivery never couples to the owning transaction.
type OutboxEvent struct {
	ID          string          `json:"id"         db:"id"`
	JobID       string          `json:"job_id"     db:"job_id"`
	EventType   EventType       `json:"event_type" db:"event_type"`
	Payload     json.RawMessage `json:"payload"    db:"payload"`
	Status      OutboxStatus    `json:"status"     db:"status"`
	Attempts    int             `json:"attempts"   db:"attempts"`
	LastError   *string         `json:"last_error,omitempty"   db:"last_error"`
	CreatedAt   time.Time       `json:"created_at"             db:"created_at"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
}
