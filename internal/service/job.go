package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/data"
	"github.com/pressrun/backoffice/internal/domain/lifecycle"
	"github.com/pressrun/backoffice/internal/domain/model"
	"github.com/pressrun/backoffice/internal/domain/settle"
	apperrors "github.com/pressrun/backoffice/internal/errors"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Tx         core.Transactor
	Jobs       core.JobRepository
	Links      core.ChainLinkRepository
	Audit      core.AuditRepository
	Outbox     core.OutboxRepository
	Settlement *SettlementService
	Chain      *ChainService
	Parser     core.DocumentParser
	Time       data.TimeProvider
	Logger     *slog.Logger
}

// JobService orchestrates the job lifecycle: intake, guarded status
// transitions, proof tracking, the one-shot settlement freeze, and soft
// deletion. Every mutation locks the job row first, so a single job is the
// unit of serialization.
type JobService struct {
	tx         core.Transactor
	jobs       core.JobRepository
	links      core.ChainLinkRepository
	audit      core.AuditRepository
	outbox     core.OutboxRepository
	settlement *SettlementService
	chain      *ChainService
	parser     core.DocumentParser
	timeProv   data.TimeProvider
	logger     *slog.Logger
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) *JobService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	return &JobService{
		tx:         opts.Tx,
		jobs:       opts.Jobs,
		links:      opts.Links,
		audit:      opts.Audit,
		outbox:     opts.Outbox,
		settlement: opts.Settlement,
		chain:      opts.Chain,
		parser:     opts.Parser,
		timeProv:   tp,
		logger:     logger.With("component", "jobs"),
	}
}

// CreateJobResult carries the stored job plus any non-fatal pricing finding.
type CreateJobResult struct {
	Job *model.Job
	// FirstDocument is the purchase order emitted on the job's first boundary
	// when amounts were derivable at creation, nil otherwise.
	FirstDocument *model.ChainLink
	Diagnostic    *settle.Diagnostic
}

// CreateJob validates intake, derives amounts where possible, stores the job,
// and emits the first-boundary purchase order in the same transaction.
func (s *JobService) CreateJob(ctx context.Context, req *model.CreateJobRequest) (*CreateJobResult, error) {
	if req == nil {
		return nil, apperrors.Validation("", "create job request is required")
	}
	if strings.TrimSpace(req.CustomerReferenceNumber) == "" {
		return nil, apperrors.ValidationField(apperrors.ReasonMissingReferenceNumber,
			"customer_reference_number", "customer reference number is required")
	}
	if req.Routing.Type == model.RoutingThreeTierVendor && req.Routing.Vendor == nil {
		return nil, apperrors.Validation(apperrors.ReasonMissingVendorFields,
			"vendor id, vendor amount, and broker cut are required together")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job request")
	}

	snap, diag, err := s.deriveForCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	job := &model.Job{
		CustomerID:              req.CustomerID,
		RoutingType:             req.Routing.Type,
		CustomerReferenceNumber: req.CustomerReferenceNumber,
		SizeKey:                 req.SizeKey,
		Quantity:                req.Quantity,
		ManufacturerID:          req.ManufacturerID,
		RequiredArtwork:         req.RequiredArtwork,
		RequiredDataFiles:       req.RequiredDataFiles,
		Settlement:              snap,
	}
	if req.Routing.Vendor != nil {
		vendorID := req.Routing.Vendor.VendorID
		job.VendorID = &vendorID
	}
	job.Status = lifecycle.AutoAdvanceTarget(model.JobStatusPending, evidenceFor(job, model.TransitionContext{}))

	result := &CreateJobResult{Diagnostic: diag}
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		stored, insertErr := s.jobs.InsertInTx(ctx, tx, job)
		if insertErr != nil {
			return apperrors.MapDBError(insertErr)
		}
		result.Job = stored

		status := string(stored.Status)
		if auditErr := s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(stored.ID),
			Field:        "status",
			NewValue:     &status,
			TriggerEvent: model.TriggerJobCreated,
			Actor:        req.Actor,
		}); auditErr != nil {
			return auditErr
		}

		// Emit the first-boundary purchase order now when amounts already
		// exist, so the obligation and the job commit together.
		boundaries := model.BoundariesFor(stored.RoutingType)
		if len(boundaries) > 0 && boundaryAmountKnown(stored, boundaries[0]) {
			emitted, emitErr := s.chain.EmitInTx(ctx, tx, stored, boundaries[0], model.DocumentPurchaseOrder, req.Actor)
			if emitErr != nil {
				return emitErr
			}
			result.FirstDocument = emitted.Link
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "job created",
		"job_id", result.Job.ID, "job_number", result.Job.JobNumber,
		"routing_type", result.Job.RoutingType, "status", result.Job.Status)
	return result, nil
}

// GetJob returns a job by ID.
func (s *JobService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, mapJobErr(err)
	}
	return job, nil
}

// TransitionStatus applies a guarded status transition. The guard is
// evaluated against the persisted row under its lock, never against
// caller-supplied state. Approving a proof freezes the settlement snapshot in
// the same transaction.
func (s *JobService) TransitionStatus(ctx context.Context, jobID string, to model.JobStatus, tctx model.TransitionContext) (*model.Job, *settle.Diagnostic, error) {
	var diag *settle.Diagnostic
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		job, err := s.jobs.GetForUpdateInTx(ctx, tx, jobID)
		if err != nil {
			return mapJobErr(err)
		}

		if err := lifecycle.CanTransition(job.Status, to, evidenceFor(job, tctx)); err != nil {
			return &apperrors.AppError{
				Code:    apperrors.ErrCodeState,
				Reason:  apperrors.ReasonInvalidTransition,
				Message: err.Error(),
				Cause:   err,
			}
		}

		params := core.SetStatusParams{JobID: job.ID, Status: to}
		switch to {
		case model.JobStatusProofApproved:
			version := tctx.ProofVersion
			params.ApprovedProofVersion = &version
			frozenDiag, freezeErr := s.freezeSettlementInTx(ctx, tx, job, tctx.Actor)
			if freezeErr != nil {
				return freezeErr
			}
			diag = frozenDiag
		case model.JobStatusCompleted:
			now := s.timeProv.Now().UTC()
			params.FulfilledAt = &now
		}

		if err := s.jobs.SetStatusInTx(ctx, tx, params); err != nil {
			return mapJobErr(err)
		}

		oldStatus := string(job.Status)
		newStatus := string(to)
		if auditErr := s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        "status",
			OldValue:     &oldStatus,
			NewValue:     &newStatus,
			TriggerEvent: model.TriggerStatusTransition,
			Actor:        tctx.Actor,
		}); auditErr != nil {
			return auditErr
		}
		if to == model.JobStatusCancelled && tctx.Reason != "" {
			reason := tctx.Reason
			if auditErr := s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
				EntityRef:    model.JobEntityRef(job.ID),
				Field:        "cancel_reason",
				NewValue:     &reason,
				TriggerEvent: model.TriggerStatusTransition,
				Actor:        tctx.Actor,
			}); auditErr != nil {
				return auditErr
			}
		}

		return s.appendTransitionEvent(ctx, tx, job.ID, to)
	})
	if err != nil {
		return nil, nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, mapJobErr(err)
	}
	s.logger.InfoContext(ctx, "job status changed", "job_id", jobID, "status", to)
	return job, diag, nil
}

// AttachProof records a new proof version, invalidating any prior approval.
func (s *JobService) AttachProof(ctx context.Context, jobID, actor string) (*model.Job, error) {
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		job, err := s.jobs.GetForUpdateInTx(ctx, tx, jobID)
		if err != nil {
			return mapJobErr(err)
		}
		if job.Status.Terminal() {
			return apperrors.Statef(apperrors.ReasonInvalidTransition,
				"cannot attach a proof to a %s job", job.Status)
		}

		version, err := s.jobs.AttachProofInTx(ctx, tx, job.ID)
		if err != nil {
			return mapJobErr(err)
		}

		oldVersion := fmt.Sprintf("%d", job.CurrentProofVersion)
		newVersion := fmt.Sprintf("%d", version)
		return s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        "current_proof_version",
			OldValue:     &oldVersion,
			NewValue:     &newVersion,
			TriggerEvent: model.TriggerProofAttached,
			Actor:        actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(ctx, jobID)
}

// ApproveProof approves a specific proof version, advancing the job and
// freezing its settlement snapshot. An approval for a superseded version is
// rejected.
func (s *JobService) ApproveProof(ctx context.Context, jobID string, proofVersion int, actor string) (*model.Job, *settle.Diagnostic, error) {
	return s.TransitionStatus(ctx, jobID, model.JobStatusProofApproved, model.TransitionContext{
		ProofVersion: proofVersion,
		Actor:        actor,
	})
}

// RecordFulfillment confirms fulfillment and completes the job.
func (s *JobService) RecordFulfillment(ctx context.Context, jobID, actor string) (*model.Job, error) {
	job, _, err := s.TransitionStatus(ctx, jobID, model.JobStatusCompleted, model.TransitionContext{
		FulfillmentConfirmed: true,
		Actor:                actor,
	})
	return job, err
}

// CancelJob cancels a job from any non-terminal status.
func (s *JobService) CancelJob(ctx context.Context, jobID, reason, actor string) (*model.Job, error) {
	job, _, err := s.TransitionStatus(ctx, jobID, model.JobStatusCancelled, model.TransitionContext{
		Reason: reason,
		Actor:  actor,
	})
	return job, err
}

// UpdateJobDetailsRequest carries the mutable intake fields. Nil fields are
// left unchanged.
type UpdateJobDetailsRequest struct {
	CustomerReferenceNumber *string
	Quantity                *int64
	SizeKey                 *string
	Actor                   string
}

// UpdateJobDetails edits intake fields. Once a chain document exists, the
// reference number and quantity it was issued against are immutable.
func (s *JobService) UpdateJobDetails(ctx context.Context, jobID string, req UpdateJobDetailsRequest) (*model.Job, *settle.Diagnostic, error) {
	if req.CustomerReferenceNumber != nil && strings.TrimSpace(*req.CustomerReferenceNumber) == "" {
		return nil, nil, apperrors.ValidationField(apperrors.ReasonMissingReferenceNumber,
			"customer_reference_number", "customer reference number cannot be cleared")
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, nil, apperrors.ValidationField(apperrors.ReasonNegativeAmount,
			"quantity", "quantity must be positive")
	}

	var diag *settle.Diagnostic
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		job, err := s.jobs.GetForUpdateInTx(ctx, tx, jobID)
		if err != nil {
			return mapJobErr(err)
		}
		if job.Status.Terminal() {
			return apperrors.Statef(apperrors.ReasonInvalidTransition,
				"cannot edit a %s job", job.Status)
		}

		if req.CustomerReferenceNumber != nil || req.Quantity != nil {
			hasDocs, existsErr := s.links.ExistsForJobInTx(ctx, tx, job.ID)
			if existsErr != nil {
				return existsErr
			}
			if hasDocs {
				field := "quantity"
				if req.CustomerReferenceNumber != nil {
					field = "customer_reference_number"
				}
				return &apperrors.AppError{
					Code:    apperrors.ErrCodeState,
					Reason:  apperrors.ReasonImmutableField,
					Field:   field,
					Message: "field is immutable once chain documents exist",
				}
			}
		}

		if err := s.jobs.UpdateDetailsInTx(ctx, tx, core.UpdateDetailsParams{
			JobID:                   job.ID,
			CustomerReferenceNumber: req.CustomerReferenceNumber,
			Quantity:                req.Quantity,
			SizeKey:                 req.SizeKey,
		}); err != nil {
			return mapJobErr(err)
		}

		if auditErr := s.auditDetailChanges(ctx, tx, job, req); auditErr != nil {
			return auditErr
		}

		// Re-derive unfrozen amounts when pricing inputs moved.
		if job.SettlementFrozenAt == nil && (req.Quantity != nil || req.SizeKey != nil) {
			sizeKey := job.SizeKey
			if req.SizeKey != nil {
				sizeKey = *req.SizeKey
			}
			if job.RoutingType == model.RoutingTwoTier && sizeKey != "" {
				quantity := job.Quantity
				if req.Quantity != nil {
					quantity = req.Quantity
				}
				snap, deriveDiag, deriveErr := s.settlement.Derive(ctx, sizeKey, quantity)
				if deriveErr != nil {
					return deriveErr
				}
				diag = deriveDiag
				if saveErr := s.jobs.SaveSettlementInTx(ctx, tx, job.ID, snap, false); saveErr != nil {
					return mapJobErr(saveErr)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, mapJobErr(err)
	}
	return job, diag, nil
}

// SoftDeleteJob hides a terminal job from reads. The row and its audit trail
// are retained.
func (s *JobService) SoftDeleteJob(ctx context.Context, jobID, actor string) error {
	return s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		job, err := s.jobs.GetForUpdateInTx(ctx, tx, jobID)
		if err != nil {
			return mapJobErr(err)
		}
		if !job.Status.Terminal() {
			return apperrors.Statef(apperrors.ReasonInvalidTransition,
				"only completed or cancelled jobs may be deleted, job is %s", job.Status)
		}
		if err := s.jobs.SoftDeleteInTx(ctx, tx, job.ID); err != nil {
			return mapJobErr(err)
		}
		status := string(job.Status)
		return s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        "deleted_at",
			OldValue:     &status,
			TriggerEvent: model.TriggerJobSoftDeleted,
			Actor:        actor,
		})
	})
}

// IntakeFromDocument runs an uploaded order document through the external
// parser and creates a job from whatever fields it could extract. Parser
// output is untrusted; anything missing or invalid falls back to the caller's
// defaults and the usual intake validation.
func (s *JobService) IntakeFromDocument(ctx context.Context, raw []byte, actor string) (*CreateJobResult, error) {
	if s.parser == nil {
		return nil, apperrors.Dependency(apperrors.ReasonParserFailure,
			"no document parser configured", nil)
	}
	fields, err := s.parser.Parse(ctx, raw)
	if err != nil {
		return nil, apperrors.Dependency(apperrors.ReasonParserFailure,
			"document parser failed", err)
	}
	if fields == nil {
		return nil, apperrors.Dependency(apperrors.ReasonParserFailure,
			"document parser returned nothing", nil)
	}

	req := &model.CreateJobRequest{
		Routing: model.NewTwoTierPlan(),
		Actor:   actor,
	}
	if fields.CustomerID != nil {
		req.CustomerID = *fields.CustomerID
	}
	if fields.CustomerReferenceNumber != nil {
		req.CustomerReferenceNumber = *fields.CustomerReferenceNumber
	}
	if fields.SizeKey != nil {
		req.SizeKey = *fields.SizeKey
	}
	req.Quantity = fields.Quantity
	req.RequiredArtwork = fields.RequiredArtwork
	req.RequiredDataFiles = fields.RequiredDataFiles

	return s.CreateJob(ctx, req)
}

// freezeSettlementInTx recomputes and freezes the snapshot at proof approval.
// Freezing is one-shot; an already-frozen snapshot is left untouched.
func (s *JobService) freezeSettlementInTx(ctx context.Context, tx *sql.Tx, job *model.Job, actor string) (*settle.Diagnostic, error) {
	if job.SettlementFrozenAt != nil {
		return nil, nil
	}

	snap, diag, err := s.settlement.Recompute(ctx, job)
	if err != nil {
		return nil, err
	}
	if !snap.HasTotals() {
		return nil, apperrors.State(apperrors.ReasonAmountsNotDerived,
			"cannot freeze settlement before quantity is known")
	}

	if err := s.jobs.SaveSettlementInTx(ctx, tx, job.ID, snap, true); err != nil {
		if errors.Is(err, core.ErrSettlementAlreadyFrozen) {
			return nil, apperrors.State(apperrors.ReasonSettlementFrozen,
				"settlement snapshot is already frozen")
		}
		return nil, mapJobErr(err)
	}

	for field, value := range frozenAmounts(snap) {
		v := value
		if auditErr := s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        field,
			NewValue:     &v,
			TriggerEvent: model.TriggerSettlementFrozen,
			Actor:        actor,
		}); auditErr != nil {
			return nil, auditErr
		}
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal settlement event: %w", err)
	}
	if _, appendErr := s.outbox.AppendInTx(ctx, tx, job.ID, model.EventSettlementFrozen, payload); appendErr != nil {
		return nil, appendErr
	}
	return diag, nil
}

func (s *JobService) appendTransitionEvent(ctx context.Context, tx *sql.Tx, jobID string, to model.JobStatus) error {
	var eventType model.EventType
	switch to {
	case model.JobStatusProofApproved:
		eventType = model.EventProofApproved
	case model.JobStatusCompleted:
		eventType = model.EventJobCompleted
	case model.JobStatusCancelled:
		eventType = model.EventJobCancelled
	default:
		return nil
	}
	payload, err := json.Marshal(map[string]string{"job_id": jobID, "status": string(to)})
	if err != nil {
		return fmt.Errorf("marshal transition event: %w", err)
	}
	_, err = s.outbox.AppendInTx(ctx, tx, jobID, eventType, payload)
	return err
}

func (s *JobService) auditDetailChanges(ctx context.Context, tx *sql.Tx, job *model.Job, req UpdateJobDetailsRequest) error {
	record := func(field, oldValue, newValue string) error {
		return s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        field,
			OldValue:     &oldValue,
			NewValue:     &newValue,
			TriggerEvent: model.TriggerStatusTransition,
			Actor:        req.Actor,
		})
	}
	if req.CustomerReferenceNumber != nil && *req.CustomerReferenceNumber != job.CustomerReferenceNumber {
		if err := record("customer_reference_number", job.CustomerReferenceNumber, *req.CustomerReferenceNumber); err != nil {
			return err
		}
	}
	if req.Quantity != nil && (job.Quantity == nil || *req.Quantity != *job.Quantity) {
		oldQty := ""
		if job.Quantity != nil {
			oldQty = fmt.Sprintf("%d", *job.Quantity)
		}
		if err := record("quantity", oldQty, fmt.Sprintf("%d", *req.Quantity)); err != nil {
			return err
		}
	}
	if req.SizeKey != nil && *req.SizeKey != job.SizeKey {
		if err := record("size_key", job.SizeKey, *req.SizeKey); err != nil {
			return err
		}
	}
	return nil
}

func (s *JobService) deriveForCreate(ctx context.Context, req *model.CreateJobRequest) (*model.SettlementSnapshot, *settle.Diagnostic, error) {
	if req.Routing.Type == model.RoutingThreeTierVendor {
		snap, err := s.settlement.DeriveVendor(req.Routing.Vendor)
		return snap, nil, err
	}
	if req.SizeKey == "" {
		return nil, nil, nil
	}
	return s.settlement.Derive(ctx, req.SizeKey, req.Quantity)
}

// evidenceFor assembles guard evidence from the persisted row plus the
// caller's transition context.
func evidenceFor(job *model.Job, tctx model.TransitionContext) lifecycle.Evidence {
	return lifecycle.Evidence{
		HasIntakeFields: strings.TrimSpace(job.CustomerID) != "" &&
			strings.TrimSpace(job.CustomerReferenceNumber) != "" &&
			(job.Quantity != nil || job.SizeKey != ""),
		CurrentProofVersion:  job.CurrentProofVersion,
		ApprovalProofVersion: tctx.ProofVersion,
		FulfillmentConfirmed: tctx.FulfillmentConfirmed,
	}
}

func boundaryAmountKnown(job *model.Job, boundary model.Boundary) bool {
	_, _, _, err := boundaryAmounts(job, boundary)
	return err == nil
}

// frozenAmounts lists the monetary fields worth an audit entry at freeze time.
func frozenAmounts(snap *model.SettlementSnapshot) map[string]string {
	out := make(map[string]string)
	if snap.CustomerTotal != nil {
		out["customer_total"] = snap.CustomerTotal.StringFixed(2)
	}
	if snap.ManufacturerTotal != nil {
		out["manufacturer_total"] = snap.ManufacturerTotal.StringFixed(2)
	}
	if snap.CostTotal != nil {
		out["cost_total"] = snap.CostTotal.StringFixed(2)
	}
	if snap.VendorAmount != nil {
		out["vendor_amount"] = snap.VendorAmount.StringFixed(2)
	}
	if snap.BrokerCut != nil {
		out["broker_cut"] = snap.BrokerCut.StringFixed(2)
	}
	return out
}

// mapJobErr converts repository sentinels into the application taxonomy.
func mapJobErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrJobNotFound) {
		return apperrors.NotFound("job not found")
	}
	return apperrors.MapDBError(err)
}
