package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressrun/backoffice/internal/domain/model"
)

// AuditRepo is the append-only audit ledger. The schema rejects updates and
// deletes; this repo only ever inserts and reads.
type AuditRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAuditRepo creates an AuditRepo with the given database handle.
func NewAuditRepo(db *sql.DB, tp TimeProvider) *AuditRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &AuditRepo{DB: db, timeProvider: tp}
}

// AppendInTx inserts one audit entry in the caller's transaction so the
// entry commits or aborts with the mutation it describes.
func (r *AuditRepo) AppendInTx(ctx context.Context, tx *sql.Tx, entry *model.AuditEntry) error {
	if entry == nil {
		return errors.New("audit entry is required")
	}
	if entry.EntityRef == "" || entry.Field == "" || entry.TriggerEvent == "" {
		return errors.New("entity ref, field, and trigger event are required")
	}

	actor := entry.Actor
	if actor == "" {
		actor = "system"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_entries (entity_ref, field, old_value, new_value, trigger_event, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.EntityRef, entry.Field, entry.OldValue, entry.NewValue,
		entry.TriggerEvent, actor, r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// TrailForJob returns every audit entry touching the job or its chain
// documents, oldest first.
func (r *AuditRepo) TrailForJob(ctx context.Context, jobID string) ([]*model.AuditEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.entity_ref, a.field, a.old_value, a.new_value, a.trigger_event, a.actor, a.created_at
		FROM audit_entries a
		WHERE a.entity_ref = $1
		   OR a.entity_ref IN (
		        SELECT 'chain_link:' || c.id FROM chain_links c WHERE c.job_id = $2
		      )
		ORDER BY a.created_at ASC, a.id ASC
	`, model.JobEntityRef(jobID), jobID)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	defer rows.Close()

	var entries []*model.AuditEntry
	for rows.Next() {
		var (
			entry    model.AuditEntry
			oldValue sql.NullString
			newValue sql.NullString
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.EntityRef,
			&entry.Field,
			&oldValue,
			&newValue,
			&entry.TriggerEvent,
			&entry.Actor,
			&entry.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan audit entry: %w", scanErr)
		}
		entry.OldValue = nullableString(oldValue)
		entry.NewValue = nullableString(newValue)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
