package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressrun/backoffice/internal/domain/model"
)

// JobFileRepo records deliverable files attached to jobs. File bytes live in
// the blob store; rows here only carry the handle.
type JobFileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobFileRepo creates a JobFileRepo with the given database handle.
func NewJobFileRepo(db *sql.DB, tp TimeProvider) *JobFileRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &JobFileRepo{DB: db, timeProvider: tp}
}

// InsertInTx records a file attachment in the caller's transaction so the
// record commits with the readiness counter bump it caused.
func (r *JobFileRepo) InsertInTx(ctx context.Context, tx *sql.Tx, file *model.JobFile) (*model.JobFile, error) {
	if file == nil {
		return nil, errors.New("job file is required")
	}
	if !file.Kind.Valid() {
		return nil, fmt.Errorf("invalid file kind: %q", file.Kind)
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO job_files (job_id, kind, handle, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, job_id, kind, handle, name, created_at
	`, file.JobID, file.Kind, file.Handle, file.Name, r.timeProvider.Now().UTC())

	var stored model.JobFile
	if err := row.Scan(&stored.ID, &stored.JobID, &stored.Kind, &stored.Handle, &stored.Name, &stored.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert job file: %w", err)
	}
	return &stored, nil
}

// ListByJob returns attached files for a job, oldest first.
func (r *JobFileRepo) ListByJob(ctx context.Context, jobID string) ([]*model.JobFile, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, job_id, kind, handle, name, created_at
		FROM job_files
		WHERE job_id = $1
		ORDER BY created_at ASC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job files: %w", err)
	}
	defer rows.Close()

	var files []*model.JobFile
	for rows.Next() {
		var f model.JobFile
		if scanErr := rows.Scan(&f.ID, &f.JobID, &f.Kind, &f.Handle, &f.Name, &f.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("scan job file: %w", scanErr)
		}
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job files: %w", err)
	}
	return files, nil
}
