package model

import "time"

// AuditEntry is one immutable record of a monetary or status mutation.
// Entries are append-only; the schema rejects updates and deletes.
type AuditEntry struct {
	ID        string    `json:"id"         db:"id"`
	EntityRef string    `json:"entity_ref" db:"entity_ref"`
	Field     string    `json:"field"      db:"field"`
	OldValue  *string   `json:"old_value,omitempty" db:"old_value"`
	NewValue  *string   `json:"new_value,omitempty" db:"new_value"`
	// TriggerEvent names the operation that caused the mutation.
	TriggerEvent string    `json:"trigger_event" db:"trigger_event"`
	Actor        string    `json:"actor"         db:"actor"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
}

// JobEntityRef builds the canonical entity reference for a job row.
func JobEntityRef(jobID string) string { return "job:" + jobID }

// ChainLinkEntityRef builds the canonical entity reference for a chain link row.
func ChainLinkEntityRef(linkID string) string { return "chain_link:" + linkID }

// Trigger event names recorded on audit entries.
const (
	TriggerJobCreated          = "job.created"
	TriggerStatusTransition    = "job.status_transition"
	TriggerFileAttached        = "job.file_attached"
	TriggerManualOverride      = "job.readiness_override"
	TriggerProofAttached       = "job.proof_attached"
	TriggerSettlementFrozen    = "job.settlement_frozen"
	TriggerChainDocumentEmit   = "chain.document_emitted"
	TriggerChainDocumentCancel = "chain.document_cancelled"
	TriggerJobSoftDeleted      = "job.soft_deleted"
)
