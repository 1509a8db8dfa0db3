package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/domain/model"
)

// JobRepo provides database operations for job rows. Mutating methods run
// inside a caller-owned transaction; the caller locks the job row first via
// GetForUpdateInTx so a single job is the unit of serialization.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// JobRepoConfig holds optional dependencies for JobRepo.
type JobRepoConfig struct {
	TimeProvider TimeProvider
	Logger       *slog.Logger
}

// NewJobRepo creates a JobRepo with the given database handle.
func NewJobRepo(db *sql.DB, cfg JobRepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &JobRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

const jobColumns = `
  id,
  job_number,
  customer_id,
  routing_type,
  status,
  customer_reference_number,
  size_key,
  quantity,
  vendor_id,
  manufacturer_id,
  required_artwork,
  uploaded_artwork,
  required_data_files,
  uploaded_data_files,
  is_ready_for_production,
  ready_submitted_at,
  current_proof_version,
  approved_proof_version,
  customer_cpm,
  manufacturer_cpm,
  cost_cpm,
  broker_margin_cpm,
  manufacturer_margin_cpm,
  customer_total,
  manufacturer_total,
  cost_total,
  broker_margin_total,
  manufacturer_margin_total,
  vendor_amount,
  broker_cut,
  settlement_frozen_at,
  fulfilled_at,
  created_at,
  updated_at,
  deleted_at
`

// InsertInTx inserts a job row and returns the stored entity, including its
// assigned identity and job number.
func (r *JobRepo) InsertInTx(ctx context.Context, tx *sql.Tx, job *model.Job) (*model.Job, error) {
	if tx == nil {
		return nil, errors.New("transaction is required")
	}
	if job == nil {
		return nil, errors.New("job is required")
	}

	now := r.timeProvider.Now().UTC()
	row := tx.QueryRowContext(ctx, `
      INSERT INTO jobs (
        customer_id, routing_type, status, customer_reference_number,
        size_key, quantity, vendor_id, manufacturer_id,
        required_artwork, required_data_files,
        customer_cpm, manufacturer_cpm, cost_cpm,
        broker_margin_cpm, manufacturer_margin_cpm,
        customer_total, manufacturer_total, cost_total,
        broker_margin_total, manufacturer_margin_total,
        vendor_amount, broker_cut,
        created_at, updated_at
      )
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$23)
      RETURNING `+jobColumns,
		job.CustomerID,
		job.RoutingType,
		job.Status,
		job.CustomerReferenceNumber,
		nullString(job.SizeKey),
		job.Quantity,
		job.VendorID,
		job.ManufacturerID,
		job.RequiredArtwork,
		job.RequiredDataFiles,
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.CustomerCPM })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.ManufacturerCPM })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.CostCPM })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.BrokerMarginCPM })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.ManufacturerMarginCPM })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.CustomerTotal })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.ManufacturerTotal })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.CostTotal })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.BrokerMarginTotal })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.ManufacturerMarginTotal })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.VendorAmount })),
		nullDecimalPtr(settlementField(job.Settlement, func(s *model.SettlementSnapshot) *decimal.Decimal { return s.BrokerCut })),
		now,
	)

	inserted, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return inserted, nil
}

// GetByID retrieves a job by ID, excluding soft-deleted rows.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// GetForUpdateInTx locks and returns the job row. Every mutating operation
// starts here; concurrent mutations of the same job serialize on this lock.
func (r *JobRepo) GetForUpdateInTx(ctx context.Context, tx *sql.Tx, id string) (*model.Job, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock job: %w", err)
	}
	return job, nil
}

// SetStatusInTx writes the new status and any transition side fields.
func (r *JobRepo) SetStatusInTx(ctx context.Context, tx *sql.Tx, params core.SetStatusParams) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2,
		    approved_proof_version = COALESCE($3, approved_proof_version),
		    fulfilled_at = COALESCE($4, fulfilled_at),
		    updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`, params.JobID, params.Status, params.ApprovedProofVersion, params.FulfilledAt, r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	return requireOneRow(res, ErrJobNotFound)
}

// SetReadinessInTx writes the readiness counters and the one-shot ready flag.
func (r *JobRepo) SetReadinessInTx(ctx context.Context, tx *sql.Tx, params core.SetReadinessParams) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET uploaded_artwork = $2,
		    uploaded_data_files = $3,
		    is_ready_for_production = $4,
		    ready_submitted_at = COALESCE($5, ready_submitted_at),
		    updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`, params.JobID, params.UploadedArtwork, params.UploadedDataFiles, params.Ready,
		params.ReadySubmittedAt, r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("set job readiness: %w", err)
	}
	return requireOneRow(res, ErrJobNotFound)
}

// AttachProofInTx bumps the proof version and invalidates any prior approval.
func (r *JobRepo) AttachProofInTx(ctx context.Context, tx *sql.Tx, jobID string) (int, error) {
	var version int
	err := tx.QueryRowContext(ctx, `
		UPDATE jobs
		SET current_proof_version = current_proof_version + 1,
		    approved_proof_version = NULL,
		    updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING current_proof_version
	`, jobID, r.timeProvider.Now().UTC()).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrJobNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("attach proof: %w", err)
	}
	return version, nil
}

// SaveSettlementInTx persists the snapshot. When frozen is true the write is
// one-shot: a second freeze fails with ErrSettlementAlreadyFrozen.
func (r *JobRepo) SaveSettlementInTx(ctx context.Context, tx *sql.Tx, jobID string, snap *model.SettlementSnapshot, frozen bool) error {
	if snap == nil {
		return errors.New("settlement snapshot is required")
	}

	query := `
		UPDATE jobs
		SET customer_cpm = $2,
		    manufacturer_cpm = $3,
		    cost_cpm = $4,
		    broker_margin_cpm = $5,
		    manufacturer_margin_cpm = $6,
		    customer_total = $7,
		    manufacturer_total = $8,
		    cost_total = $9,
		    broker_margin_total = $10,
		    manufacturer_margin_total = $11,
		    vendor_amount = $12,
		    broker_cut = $13,
		    settlement_frozen_at = CASE WHEN $14 THEN $15::timestamptz ELSE settlement_frozen_at END,
		    updated_at = $15
		WHERE id = $1 AND deleted_at IS NULL AND settlement_frozen_at IS NULL
	`
	res, err := tx.ExecContext(ctx, query,
		jobID,
		nullDecimalPtr(snap.CustomerCPM),
		nullDecimalPtr(snap.ManufacturerCPM),
		nullDecimalPtr(snap.CostCPM),
		nullDecimalPtr(snap.BrokerMarginCPM),
		nullDecimalPtr(snap.ManufacturerMarginCPM),
		nullDecimalPtr(snap.CustomerTotal),
		nullDecimalPtr(snap.ManufacturerTotal),
		nullDecimalPtr(snap.CostTotal),
		nullDecimalPtr(snap.BrokerMarginTotal),
		nullDecimalPtr(snap.ManufacturerMarginTotal),
		nullDecimalPtr(snap.VendorAmount),
		nullDecimalPtr(snap.BrokerCut),
		frozen,
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save settlement: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save settlement rows affected: %w", err)
	}
	if rows == 0 {
		// Either the job is gone or the snapshot was already frozen;
		// distinguish so callers can absorb the idempotent case.
		if _, getErr := r.GetByID(ctx, jobID); getErr != nil {
			return getErr
		}
		return ErrSettlementAlreadyFrozen
	}
	return nil
}

// UpdateDetailsInTx writes intake detail changes. The service layer rejects
// reference-number and quantity changes once chain documents exist.
func (r *JobRepo) UpdateDetailsInTx(ctx context.Context, tx *sql.Tx, params core.UpdateDetailsParams) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET customer_reference_number = COALESCE($2, customer_reference_number),
		    quantity = COALESCE($3, quantity),
		    size_key = COALESCE($4, size_key),
		    updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`, params.JobID, params.CustomerReferenceNumber, params.Quantity,
		params.SizeKey, r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("update job details: %w", err)
	}
	return requireOneRow(res, ErrJobNotFound)
}

// SoftDeleteInTx marks the job deleted. Rows are never hard-deleted so the
// audit trail keeps referential integrity.
func (r *JobRepo) SoftDeleteInTx(ctx context.Context, tx *sql.Tx, jobID string) error {
	now := r.timeProvider.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, jobID, now)
	if err != nil {
		return fmt.Errorf("soft delete job: %w", err)
	}
	return requireOneRow(res, ErrJobNotFound)
}

func requireOneRow(res sql.Result, missing error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return missing
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner) (*model.Job, error) {
	var (
		job                                 model.Job
		sizeKey                             sql.NullString
		vendorID, manufacturerID            sql.NullString
		quantity                            sql.NullInt64
		requiredArtwork, requiredDataFiles  sql.NullInt32
		approvedProofVersion                sql.NullInt32
		readySubmittedAt, frozenAt          sql.NullTime
		fulfilledAt, deletedAt              sql.NullTime
		customerCPM, mfgCPM, costCPM        decimal.NullDecimal
		brokerMarginCPM, mfgMarginCPM       decimal.NullDecimal
		customerTotal, mfgTotal, costTotal  decimal.NullDecimal
		brokerMarginTotal, mfgMarginTotal   decimal.NullDecimal
		vendorAmount, brokerCut             decimal.NullDecimal
	)

	if err := scanner.Scan(
		&job.ID,
		&job.JobNumber,
		&job.CustomerID,
		&job.RoutingType,
		&job.Status,
		&job.CustomerReferenceNumber,
		&sizeKey,
		&quantity,
		&vendorID,
		&manufacturerID,
		&requiredArtwork,
		&job.UploadedArtwork,
		&requiredDataFiles,
		&job.UploadedDataFiles,
		&job.IsReadyForProduction,
		&readySubmittedAt,
		&job.CurrentProofVersion,
		&approvedProofVersion,
		&customerCPM,
		&mfgCPM,
		&costCPM,
		&brokerMarginCPM,
		&mfgMarginCPM,
		&customerTotal,
		&mfgTotal,
		&costTotal,
		&brokerMarginTotal,
		&mfgMarginTotal,
		&vendorAmount,
		&brokerCut,
		&frozenAt,
		&fulfilledAt,
		&job.CreatedAt,
		&job.UpdatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	job.SizeKey = sizeKey.String
	job.VendorID = nullableString(vendorID)
	job.ManufacturerID = nullableString(manufacturerID)
	job.Quantity = nullableInt64(quantity)
	job.RequiredArtwork = nullableInt(requiredArtwork)
	job.RequiredDataFiles = nullableInt(requiredDataFiles)
	job.ApprovedProofVersion = nullableInt(approvedProofVersion)
	job.ReadySubmittedAt = nullableTime(readySubmittedAt)
	job.SettlementFrozenAt = nullableTime(frozenAt)
	job.FulfilledAt = nullableTime(fulfilledAt)
	job.DeletedAt = nullableTime(deletedAt)

	snap := model.SettlementSnapshot{
		CustomerCPM:             nullableDecimal(customerCPM),
		ManufacturerCPM:         nullableDecimal(mfgCPM),
		CostCPM:                 nullableDecimal(costCPM),
		BrokerMarginCPM:         nullableDecimal(brokerMarginCPM),
		ManufacturerMarginCPM:   nullableDecimal(mfgMarginCPM),
		CustomerTotal:           nullableDecimal(customerTotal),
		ManufacturerTotal:       nullableDecimal(mfgTotal),
		CostTotal:               nullableDecimal(costTotal),
		BrokerMarginTotal:       nullableDecimal(brokerMarginTotal),
		ManufacturerMarginTotal: nullableDecimal(mfgMarginTotal),
		VendorAmount:            nullableDecimal(vendorAmount),
		BrokerCut:               nullableDecimal(brokerCut),
	}
	if snap != (model.SettlementSnapshot{}) {
		job.Settlement = &snap
	}

	return &job, nil
}

func settlementField(s *model.SettlementSnapshot, pick func(*model.SettlementSnapshot) *decimal.Decimal) *decimal.Decimal {
	if s == nil {
		return nil
	}
	return pick(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDecimalPtr(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullableDecimal(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	d := nd.Decimal
	return &d
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func nullableInt(ni sql.NullInt32) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int32)
	return &v
}

func nullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
