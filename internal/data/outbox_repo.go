package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pressrun/backoffice/internal/data/pgxutil"
	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
)

// OutboxRepo persists notification events. Rows are appended inside the
// business transaction; a separate dispatcher claims and delivers them, so a
// slow sink can never hold a job's row lock.
type OutboxRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewOutboxRepo creates an OutboxRepo with the given database handle.
func NewOutboxRepo(db *sql.DB, tp TimeProvider) *OutboxRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &OutboxRepo{DB: db, timeProvider: tp}
}

// AppendInTx inserts one event row. A unique (job_id, event_type) constraint
// makes repeated appends a no-op so one-shot events stay one-shot; the bool
// result reports whether a new row was written.
func (r *OutboxRepo) AppendInTx(ctx context.Context, tx *sql.Tx, jobID string, eventType model.EventType, payload []byte) (bool, error) {
	if jobID == "" || eventType == "" {
		return false, errors.New("job id and event type are required")
	}
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO outbox_events (job_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id, event_type) DO NOTHING
	`, jobID, eventType, payload, model.OutboxPending, r.timeProvider.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("append outbox event: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("outbox rows affected: %w", err)
	}
	return rows > 0, nil
}

// ClaimPending reserves up to limit undelivered events, skipping rows held by
// concurrent dispatchers, and bumps their attempt counters.
func (r *OutboxRepo) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	var events []*model.OutboxEvent
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			rows, err := tx.QueryContext(ctx, `
				WITH claimed AS (
					SELECT id FROM outbox_events
					WHERE status = $1
					ORDER BY created_at ASC
					LIMIT $2
					FOR UPDATE SKIP LOCKED
				)
				UPDATE outbox_events o
				SET attempts = o.attempts + 1
				FROM claimed
				WHERE o.id = claimed.id
				RETURNING o.id, o.job_id, o.event_type, o.payload, o.status, o.attempts, o.last_error, o.created_at, o.delivered_at
			`, model.OutboxPending, limit)
			if err != nil {
				return fmt.Errorf("claim outbox events: %w", err)
			}
			defer rows.Close()

			for rows.Next() {
				ev, scanErr := scanOutboxEvent(rows)
				if scanErr != nil {
					return fmt.Errorf("scan outbox event: %w", scanErr)
				}
				events = append(events, ev)
			}
			return rows.Err()
		},
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return events, nil
}

// ListPending returns up to limit undelivered events without claiming them.
// Used for operational inspection; the dispatcher uses ClaimPending.
func (r *OutboxRepo) ListPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, job_id, event_type, payload, status, attempts, last_error, created_at, delivered_at
		FROM outbox_events
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, model.OutboxPending, limit)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var events []*model.OutboxEvent
	for rows.Next() {
		ev, scanErr := scanOutboxEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan outbox event: %w", scanErr)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MarkDelivered records a successful hand-off to the notifier sink.
func (r *OutboxRepo) MarkDelivered(ctx context.Context, id string) error {
	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE outbox_events
		SET status = $2, delivered_at = $3, last_error = NULL
		WHERE id = $1
	`, id, model.OutboxDelivered, now)
	if err != nil {
		return fmt.Errorf("mark outbox delivered: %w", err)
	}
	return requireOneRow(res, apperrors.NotFoundf("outbox event %s not found", id))
}

// RecordFailure notes a failed delivery attempt; the row stays pending and
// will be re-claimed, giving at-least-once delivery.
func (r *OutboxRepo) RecordFailure(ctx context.Context, id, errMsg string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE outbox_events
		SET last_error = $2
		WHERE id = $1
	`, id, errMsg)
	if err != nil {
		return fmt.Errorf("record outbox failure: %w", err)
	}
	return requireOneRow(res, apperrors.NotFoundf("outbox event %s not found", id))
}

func scanOutboxEvent(scanner rowScanner) (*model.OutboxEvent, error) {
	var (
		ev          model.OutboxEvent
		payload     []byte
		lastError   sql.NullString
		deliveredAt sql.NullTime
	)
	if err := scanner.Scan(
		&ev.ID,
		&ev.JobID,
		&ev.EventType,
		&payload,
		&ev.Status,
		&ev.Attempts,
		&lastError,
		&ev.CreatedAt,
		&deliveredAt,
	); err != nil {
		return nil, err
	}
	ev.Payload = append(json.RawMessage(nil), payload...)
	ev.LastError = nullableString(lastError)
	ev.DeliveredAt = nullableTime(deliveredAt)
	return &ev, nil
}
