package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pressrun/backoffice/internal/domain/model"
)

// ChainLinkRepo provides database operations for chain documents and
// per-counterparty document numbering.
type ChainLinkRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewChainLinkRepo creates a ChainLinkRepo with the given database handle.
func NewChainLinkRepo(db *sql.DB, tp TimeProvider) *ChainLinkRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &ChainLinkRepo{DB: db, timeProvider: tp}
}

const chainLinkColumns = `
  id,
  job_id,
  boundary,
  doc_type,
  status,
  document_number,
  reference_number,
  origin_party,
  receiving_party,
  amount,
  original_amount,
  margin_amount,
  created_at,
  updated_at
`

// FindActiveInTx returns the non-cancelled document for (job, boundary,
// docType), or nil when none exists. Duplicate emission checks run against
// this row while the job row lock is held.
func (r *ChainLinkRepo) FindActiveInTx(ctx context.Context, tx *sql.Tx, jobID string, boundary model.Boundary, docType model.DocumentType) (*model.ChainLink, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+chainLinkColumns+`
		FROM chain_links
		WHERE job_id = $1 AND boundary = $2 AND doc_type = $3 AND status <> $4
	`, jobID, boundary, docType, model.ChainLinkCancelled)
	link, err := scanChainLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active chain link: %w", err)
	}
	return link, nil
}

// InsertInTx inserts one chain document row. A partial unique index on
// (job_id, boundary, doc_type) where status is not cancelled backstops the
// at-most-one-active invariant at the schema level.
func (r *ChainLinkRepo) InsertInTx(ctx context.Context, tx *sql.Tx, link *model.ChainLink) (*model.ChainLink, error) {
	if link == nil {
		return nil, errors.New("chain link is required")
	}

	now := r.timeProvider.Now().UTC()
	row := tx.QueryRowContext(ctx, `
		INSERT INTO chain_links (
			job_id, boundary, doc_type, status,
			document_number, reference_number,
			origin_party, receiving_party,
			amount, original_amount, margin_amount,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
		RETURNING `+chainLinkColumns,
		link.JobID,
		link.Boundary,
		link.DocType,
		link.Status,
		link.DocumentNumber,
		link.ReferenceNumber,
		link.OriginParty,
		link.ReceivingParty,
		link.Amount,
		nullDecimalPtr(link.OriginalAmount),
		nullDecimalPtr(link.MarginAmount),
		now,
	)
	inserted, err := scanChainLink(row)
	if err != nil {
		return nil, fmt.Errorf("insert chain link: %w", err)
	}
	return inserted, nil
}

// NextDocumentNumberInTx atomically increments and returns the sequence for a
// counterparty code and document type. The sequence lives in its own row, not
// an in-process counter, so numbering survives restarts and concurrent
// emitters.
func (r *ChainLinkRepo) NextDocumentNumberInTx(ctx context.Context, tx *sql.Tx, counterpartyCode string, docType model.DocumentType) (int64, error) {
	if counterpartyCode == "" {
		return 0, errors.New("counterparty code is required")
	}
	var next int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO document_sequences (counterparty_code, doc_type, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (counterparty_code, doc_type)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value
	`, counterpartyCode, docType).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next document number: %w", err)
	}
	return next, nil
}

// ExistsForJobInTx reports whether any non-cancelled chain document
// references the job.
func (r *ChainLinkRepo) ExistsForJobInTx(ctx context.Context, tx *sql.Tx, jobID string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM chain_links
			WHERE job_id = $1 AND status <> $2
		)
	`, jobID, model.ChainLinkCancelled).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check chain links for job: %w", err)
	}
	return exists, nil
}

// CancelInTx voids one chain document. A replacement may then be emitted for
// the same boundary.
func (r *ChainLinkRepo) CancelInTx(ctx context.Context, tx *sql.Tx, linkID string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE chain_links
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status <> $2
	`, linkID, model.ChainLinkCancelled, r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("cancel chain link: %w", err)
	}
	return requireOneRow(res, ErrChainLinkNotFound)
}

// ListByJob returns all chain documents for a job, oldest first.
func (r *ChainLinkRepo) ListByJob(ctx context.Context, jobID string) ([]*model.ChainLink, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+chainLinkColumns+`
		FROM chain_links
		WHERE job_id = $1
		ORDER BY created_at ASC, id ASC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list chain links: %w", err)
	}
	defer rows.Close()

	var links []*model.ChainLink
	for rows.Next() {
		link, scanErr := scanChainLink(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan chain link: %w", scanErr)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chain links: %w", err)
	}
	return links, nil
}

func scanChainLink(scanner rowScanner) (*model.ChainLink, error) {
	var (
		link           model.ChainLink
		receivingParty sql.NullString
		originalAmount decimal.NullDecimal
		marginAmount   decimal.NullDecimal
	)
	if err := scanner.Scan(
		&link.ID,
		&link.JobID,
		&link.Boundary,
		&link.DocType,
		&link.Status,
		&link.DocumentNumber,
		&link.ReferenceNumber,
		&link.OriginParty,
		&receivingParty,
		&link.Amount,
		&originalAmount,
		&marginAmount,
		&link.CreatedAt,
		&link.UpdatedAt,
	); err != nil {
		return nil, err
	}
	link.ReceivingParty = nullableString(receivingParty)
	link.OriginalAmount = nullableDecimal(originalAmount)
	link.MarginAmount = nullableDecimal(marginAmount)
	return &link, nil
}
