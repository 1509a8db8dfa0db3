// Package core defines the repository and collaborator ports between the
// service layer and the data layer. Services depend on these interfaces,
// never on concrete implementations.
package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressrun/backoffice/internal/domain/model"
)

// Transactor runs a function inside one atomic transaction. A single job row
// and its directly-owned children are the unit of serialization; services
// take the job row lock first and perform every dependent write through the
// same transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// SetStatusParams groups the fields a status transition may write.
type SetStatusParams struct {
	JobID                string
	Status               model.JobStatus
	ApprovedProofVersion *int
	FulfilledAt          *time.Time
}

// UpdateDetailsParams groups the mutable intake detail fields.
type UpdateDetailsParams struct {
	JobID                   string
	CustomerReferenceNumber *string
	Quantity                *int64
	SizeKey                 *string
}

// SetReadinessParams groups the readiness counter mutation fields.
type SetReadinessParams struct {
	JobID             string
	UploadedArtwork   int
	UploadedDataFiles int
	Ready             bool
	ReadySubmittedAt  *time.Time
}

// JobRepository defines job row persistence. Mutating methods take the
// enclosing transaction; the job row must already be locked via
// GetForUpdateInTx.
type JobRepository interface {
	InsertInTx(ctx context.Context, tx *sql.Tx, job *model.Job) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	GetForUpdateInTx(ctx context.Context, tx *sql.Tx, id string) (*model.Job, error)
	SetStatusInTx(ctx context.Context, tx *sql.Tx, params SetStatusParams) error
	SetReadinessInTx(ctx context.Context, tx *sql.Tx, params SetReadinessParams) error
	// AttachProofInTx bumps the current proof version and clears any prior
	// approval, returning the new version.
	AttachProofInTx(ctx context.Context, tx *sql.Tx, jobID string) (int, error)
	// SaveSettlementInTx persists the frozen snapshot. Freezing is one-shot;
	// implementations reject a second freeze.
	SaveSettlementInTx(ctx context.Context, tx *sql.Tx, jobID string, snap *model.SettlementSnapshot, frozen bool) error
	UpdateDetailsInTx(ctx context.Context, tx *sql.Tx, params UpdateDetailsParams) error
	SoftDeleteInTx(ctx context.Context, tx *sql.Tx, jobID string) error
}

// ChainLinkRepository defines chain document persistence and numbering.
type ChainLinkRepository interface {
	// FindActiveInTx returns the non-cancelled link for (job, boundary,
	// docType), or nil when none exists.
	FindActiveInTx(ctx context.Context, tx *sql.Tx, jobID string, boundary model.Boundary, docType model.DocumentType) (*model.ChainLink, error)
	InsertInTx(ctx context.Context, tx *sql.Tx, link *model.ChainLink) (*model.ChainLink, error)
	// NextDocumentNumberInTx atomically increments and returns the sequence
	// value for a counterparty code and document type.
	NextDocumentNumberInTx(ctx context.Context, tx *sql.Tx, counterpartyCode string, docType model.DocumentType) (int64, error)
	// ExistsForJobInTx reports whether any chain document references the job,
	// which freezes the job's reference number and quantity.
	ExistsForJobInTx(ctx context.Context, tx *sql.Tx, jobID string) (bool, error)
	CancelInTx(ctx context.Context, tx *sql.Tx, linkID string) error
	ListByJob(ctx context.Context, jobID string) ([]*model.ChainLink, error)
}

// AuditRepository is the append-only audit ledger. Append is paired, in the
// same transaction, with every mutating write that changes a persisted
// monetary or status field.
type AuditRepository interface {
	AppendInTx(ctx context.Context, tx *sql.Tx, entry *model.AuditEntry) error
	TrailForJob(ctx context.Context, jobID string) ([]*model.AuditEntry, error)
}

// OutboxRepository persists notification events alongside business mutations.
type OutboxRepository interface {
	// AppendInTx inserts an event row in the mutating transaction. It
	// returns false when the (job, event type) pair already exists, which
	// keeps one-shot events idempotent.
	AppendInTx(ctx context.Context, tx *sql.Tx, jobID string, eventType model.EventType, payload []byte) (bool, error)
	// ClaimPending reserves up to limit undelivered events for this
	// dispatcher, bumping their attempt counters.
	ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id, errMsg string) error
}

// PricingRuleRepository defines pricing rule persistence.
type PricingRuleRepository interface {
	// GetBySizeKey returns model.ErrNoPricingRule when no rule exists.
	GetBySizeKey(ctx context.Context, sizeKey string) (*model.PricingRule, error)
	Upsert(ctx context.Context, rule *model.PricingRule) (*model.PricingRule, error)
	List(ctx context.Context) ([]*model.PricingRule, error)
}

// CounterpartyRepository defines counterparty persistence.
type CounterpartyRepository interface {
	Create(ctx context.Context, req *model.CreateCounterpartyRequest) (*model.Counterparty, error)
	GetByID(ctx context.Context, id string) (*model.Counterparty, error)
	List(ctx context.Context) ([]*model.Counterparty, error)
}

// JobFileRepository records attached deliverable files.
type JobFileRepository interface {
	InsertInTx(ctx context.Context, tx *sql.Tx, file *model.JobFile) (*model.JobFile, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.JobFile, error)
}

// DocumentParser is the untrusted external field-extraction collaborator.
// All returned fields are optional and must be validated before use.
type DocumentParser interface {
	Parse(ctx context.Context, raw []byte) (*model.PartialJobFields, error)
}

// BlobStore stores attached document bytes outside the relational store.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, handle string) ([]byte, error)
}
