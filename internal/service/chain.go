package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
)

// BrokerPartyName is the fixed name of our side of every boundary.
const BrokerPartyName = "broker"

// ChainServiceOptions groups dependencies for ChainService.
type ChainServiceOptions struct {
	Tx      core.Transactor
	Jobs    core.JobRepository
	Links   core.ChainLinkRepository
	Parties core.CounterpartyRepository
	Audit   core.AuditRepository
	Outbox  core.OutboxRepository
	Logger  *slog.Logger
}

// ChainService emits and cancels the purchase order and invoice documents
// that settle a job's boundaries. Emission is idempotent per (job, boundary,
// document type): re-emitting returns the existing live document.
type ChainService struct {
	tx      core.Transactor
	jobs    core.JobRepository
	links   core.ChainLinkRepository
	parties core.CounterpartyRepository
	audit   core.AuditRepository
	outbox  core.OutboxRepository
	logger  *slog.Logger
}

// NewChainService constructs a new ChainService.
func NewChainService(opts ChainServiceOptions) *ChainService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainService{
		tx:      opts.Tx,
		jobs:    opts.Jobs,
		links:   opts.Links,
		parties: opts.Parties,
		audit:   opts.Audit,
		outbox:  opts.Outbox,
		logger:  logger.With("component", "chain"),
	}
}

// EmitResult reports the document an emission resolved to and whether this
// call created it.
type EmitResult struct {
	Link    *model.ChainLink
	Created bool
}

// EmitDocument emits a chain document for one boundary of a job, or returns
// the already-issued document unchanged.
func (s *ChainService) EmitDocument(ctx context.Context, jobID string, boundary model.Boundary, docType model.DocumentType, actor string) (*EmitResult, error) {
	var result *EmitResult
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		job, err := s.jobs.GetForUpdateInTx(ctx, tx, jobID)
		if err != nil {
			return mapJobErr(err)
		}
		result, err = s.EmitInTx(ctx, tx, job, boundary, docType, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EmitInTx performs the emission inside the caller's transaction. The caller
// must hold the job row lock.
func (s *ChainService) EmitInTx(ctx context.Context, tx *sql.Tx, job *model.Job, boundary model.Boundary, docType model.DocumentType, actor string) (*EmitResult, error) {
	if !docType.Valid() {
		return nil, apperrors.ValidationField(apperrors.ReasonBoundaryMismatch, "doc_type",
			fmt.Sprintf("unknown document type %q", docType))
	}
	if !boundaryApplies(job.RoutingType, boundary) {
		return nil, apperrors.Statef(apperrors.ReasonBoundaryMismatch,
			"boundary %s does not exist on a %s job", boundary, job.RoutingType)
	}
	if job.Status == model.JobStatusCancelled {
		return nil, apperrors.State(apperrors.ReasonInvalidTransition,
			"cannot emit documents for a cancelled job")
	}

	existing, err := s.links.FindActiveInTx(ctx, tx, job.ID, boundary, docType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &EmitResult{Link: existing, Created: false}, nil
	}

	amount, original, margin, err := boundaryAmounts(job, boundary)
	if err != nil {
		return nil, err
	}

	number, partyName, err := s.documentNumber(ctx, tx, job, boundary, docType)
	if err != nil {
		return nil, err
	}

	link := &model.ChainLink{
		JobID:           job.ID,
		Boundary:        boundary,
		DocType:         docType,
		Status:          model.ChainLinkIssued,
		DocumentNumber:  number,
		ReferenceNumber: job.CustomerReferenceNumber,
		Amount:          amount,
		OriginalAmount:  original,
		MarginAmount:    margin,
	}
	orientDocument(link, docType, partyName)

	inserted, err := s.links.InsertInTx(ctx, tx, link)
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			// Lost a race despite the job lock; the winner's row is canonical.
			winner, findErr := s.links.FindActiveInTx(ctx, tx, job.ID, boundary, docType)
			if findErr == nil && winner != nil {
				return &EmitResult{Link: winner, Created: false}, nil
			}
		}
		return nil, err
	}

	newAmount := inserted.Amount.StringFixed(2)
	if auditErr := s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
		EntityRef:    model.ChainLinkEntityRef(inserted.ID),
		Field:        "amount",
		NewValue:     &newAmount,
		TriggerEvent: model.TriggerChainDocumentEmit,
		Actor:        actor,
	}); auditErr != nil {
		return nil, auditErr
	}

	payload, err := json.Marshal(map[string]any{
		"job_id":          job.ID,
		"link_id":         inserted.ID,
		"boundary":        boundary,
		"doc_type":        docType,
		"document_number": inserted.DocumentNumber,
		"amount":          inserted.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal document event: %w", err)
	}
	if _, appendErr := s.outbox.AppendInTx(ctx, tx, job.ID, model.ChainDocumentEventType(boundary, docType), payload); appendErr != nil {
		return nil, appendErr
	}

	s.logger.InfoContext(ctx, "chain document emitted",
		"job_id", job.ID, "boundary", boundary, "doc_type", docType, "document_number", inserted.DocumentNumber)
	return &EmitResult{Link: inserted, Created: true}, nil
}

// CancelDocument voids a live document so a corrected one can be emitted.
func (s *ChainService) CancelDocument(ctx context.Context, jobID, linkID, actor string) error {
	return s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.jobs.GetForUpdateInTx(ctx, tx, jobID); err != nil {
			return mapJobErr(err)
		}
		if err := s.links.CancelInTx(ctx, tx, linkID); err != nil {
			if errors.Is(err, core.ErrChainLinkNotFound) {
				return apperrors.NotFound("chain document not found")
			}
			return apperrors.MapDBError(err)
		}
		oldStatus := string(model.ChainLinkIssued)
		newStatus := string(model.ChainLinkCancelled)
		return s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.ChainLinkEntityRef(linkID),
			Field:        "status",
			OldValue:     &oldStatus,
			NewValue:     &newStatus,
			TriggerEvent: model.TriggerChainDocumentCancel,
			Actor:        actor,
		})
	})
}

// ListDocuments returns every chain document for a job, cancelled included.
func (s *ChainService) ListDocuments(ctx context.Context, jobID string) ([]*model.ChainLink, error) {
	return s.links.ListByJob(ctx, jobID)
}

// documentNumber resolves the document number. Counterparties with a
// registered code draw from their per-code sequence; everything else uses the
// deterministic job-number form.
func (s *ChainService) documentNumber(ctx context.Context, tx *sql.Tx, job *model.Job, boundary model.Boundary, docType model.DocumentType) (string, *string, error) {
	partyID := counterpartyID(job, boundary)
	if partyID == nil {
		return model.FallbackDocumentNumber(docType, job.JobNumber), nil, nil
	}

	party, err := s.parties.GetByID(ctx, *partyID)
	if err != nil {
		return "", nil, apperrors.Dependency(apperrors.ReasonMissingCounterparty,
			fmt.Sprintf("counterparty %s not found", *partyID), err)
	}
	if party.Code == nil {
		return model.FallbackDocumentNumber(docType, job.JobNumber), &party.Name, nil
	}

	seq, err := s.links.NextDocumentNumberInTx(ctx, tx, *party.Code, docType)
	if err != nil {
		return "", nil, err
	}
	return model.FormatSequencedNumber(*party.Code, seq), &party.Name, nil
}

// orientDocument sets the parties by flow direction. Purchase orders flow
// from the broker outward; invoices flow back in.
func orientDocument(link *model.ChainLink, docType model.DocumentType, partyName *string) {
	if docType == model.DocumentInvoice {
		if partyName != nil {
			link.OriginParty = *partyName
		} else {
			link.OriginParty = string(link.Boundary)
		}
		broker := BrokerPartyName
		link.ReceivingParty = &broker
		return
	}
	link.OriginParty = BrokerPartyName
	link.ReceivingParty = partyName
}

func boundaryApplies(rt model.RoutingType, boundary model.Boundary) bool {
	for _, b := range model.BoundariesFor(rt) {
		if b == boundary {
			return true
		}
	}
	return false
}

func counterpartyID(job *model.Job, boundary model.Boundary) *string {
	if boundary == model.BoundaryBrokerVendor {
		return job.VendorID
	}
	return job.ManufacturerID
}

// boundaryAmounts picks the obligation for a boundary from the frozen or
// derived snapshot. The amount, the customer-tier original, and the retained
// margin always come from the same snapshot so the sum invariant holds.
func boundaryAmounts(job *model.Job, boundary model.Boundary) (decimal.Decimal, *decimal.Decimal, *decimal.Decimal, error) {
	snap := job.Settlement
	if snap == nil {
		return decimal.Decimal{}, nil, nil, apperrors.State(apperrors.ReasonAmountsNotDerived,
			"job amounts have not been derived")
	}
	switch boundary {
	case model.BoundaryBrokerVendor:
		if snap.VendorAmount == nil {
			return decimal.Decimal{}, nil, nil, apperrors.State(apperrors.ReasonAmountsNotDerived,
				"vendor amount has not been recorded")
		}
		// The retained margin is everything the customer pays above the vendor
		// amount: the recorded cut plus any slack under the customer total.
		margin := snap.BrokerCut
		if snap.CustomerTotal != nil {
			m := snap.CustomerTotal.Sub(*snap.VendorAmount)
			margin = &m
		}
		return *snap.VendorAmount, snap.CustomerTotal, margin, nil
	case model.BoundaryBrokerManufacturer:
		if snap.ManufacturerTotal == nil {
			return decimal.Decimal{}, nil, nil, apperrors.State(apperrors.ReasonAmountsNotDerived,
				"manufacturer total has not been derived")
		}
		return *snap.ManufacturerTotal, snap.CustomerTotal, snap.BrokerMarginTotal, nil
	default:
		return decimal.Decimal{}, nil, nil, apperrors.Statef(apperrors.ReasonBoundaryMismatch,
			"unknown boundary %q", boundary)
	}
}
