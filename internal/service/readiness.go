package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/data"
	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
)

// ReadinessServiceOptions groups dependencies for ReadinessService.
type ReadinessServiceOptions struct {
	Tx     core.Transactor
	Jobs   core.JobRepository
	Files  core.JobFileRepository
	Blobs  core.BlobStore
	Audit  core.AuditRepository
	Outbox core.OutboxRepository
	Time   data.TimeProvider
	Logger *slog.Logger
}

// ReadinessService tracks deliverable file counters and the one-shot
// became-ready flip. Files only accumulate, so readiness is monotonic: once a
// job flips ready it stays ready and the event never fires again.
type ReadinessService struct {
	tx       core.Transactor
	jobs     core.JobRepository
	files    core.JobFileRepository
	blobs    core.BlobStore
	audit    core.AuditRepository
	outbox   core.OutboxRepository
	timeProv data.TimeProvider
	logger   *slog.Logger
}

// NewReadinessService constructs a new ReadinessService.
func NewReadinessService(opts ReadinessServiceOptions) *ReadinessService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	return &ReadinessService{
		tx:       opts.Tx,
		jobs:     opts.Jobs,
		files:    opts.Files,
		blobs:    opts.Blobs,
		audit:    opts.Audit,
		outbox:   opts.Outbox,
		timeProv: tp,
		logger:   logger.With("component", "readiness"),
	}
}

// AttachFileRequest carries one deliverable file upload.
type AttachFileRequest struct {
	JobID string
	Kind  model.FileKind
	Name  string
	Data  []byte
	Actor string
}

// RecordFileAttached stores the file, bumps the matching counter, and flips
// the job ready when every declared requirement is now met.
func (s *ReadinessService) RecordFileAttached(ctx context.Context, req AttachFileRequest) (*model.ReadinessProgress, error) {
	if !req.Kind.Valid() {
		return nil, apperrors.ValidationField(apperrors.ReasonInvalidFileKind, "kind",
			fmt.Sprintf("unknown file kind %q", req.Kind))
	}

	// Blob write happens before the transaction; an orphaned blob on a later
	// failure is harmless, a row without its bytes is not.
	handle, err := s.blobs.Put(ctx, req.Data)
	if err != nil {
		return nil, apperrors.Dependency("blob_store_failure", "store file contents", err)
	}

	var progress *model.ReadinessProgress
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		job, err := s.jobs.GetForUpdateInTx(ctx, tx, req.JobID)
		if err != nil {
			return mapJobErr(err)
		}
		if job.Status.Terminal() {
			return apperrors.Statef(apperrors.ReasonInvalidTransition,
				"cannot attach files to a %s job", job.Status)
		}

		if _, err := s.files.InsertInTx(ctx, tx, &model.JobFile{
			JobID:  job.ID,
			Kind:   req.Kind,
			Handle: handle,
			Name:   req.Name,
		}); err != nil {
			return err
		}

		uploadedArtwork := job.UploadedArtwork
		uploadedData := job.UploadedDataFiles
		var counterField string
		var oldCount, newCount int
		switch req.Kind {
		case model.FileKindArtwork:
			oldCount, uploadedArtwork = uploadedArtwork, uploadedArtwork+1
			newCount = uploadedArtwork
			counterField = "uploaded_artwork"
		case model.FileKindData:
			oldCount, uploadedData = uploadedData, uploadedData+1
			newCount = uploadedData
			counterField = "uploaded_data_files"
		}

		after := *job
		after.UploadedArtwork = uploadedArtwork
		after.UploadedDataFiles = uploadedData
		becameReady := !job.IsReadyForProduction && after.DerivedReady()

		params := core.SetReadinessParams{
			JobID:             job.ID,
			UploadedArtwork:   uploadedArtwork,
			UploadedDataFiles: uploadedData,
			Ready:             job.IsReadyForProduction || becameReady,
		}
		if becameReady {
			now := s.timeProv.Now().UTC()
			params.ReadySubmittedAt = &now
		}
		if err := s.jobs.SetReadinessInTx(ctx, tx, params); err != nil {
			return mapJobErr(err)
		}

		oldVal := fmt.Sprintf("%d", oldCount)
		newVal := fmt.Sprintf("%d", newCount)
		if auditErr := s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        counterField,
			OldValue:     &oldVal,
			NewValue:     &newVal,
			TriggerEvent: model.TriggerFileAttached,
			Actor:        req.Actor,
		}); auditErr != nil {
			return auditErr
		}

		if becameReady {
			if err := s.recordBecameReady(ctx, tx, job.ID, model.TriggerFileAttached, req.Actor); err != nil {
				return err
			}
		}

		progress = &model.ReadinessProgress{
			Ready:             params.Ready,
			BecameReady:       becameReady,
			UploadedArtwork:   uploadedArtwork,
			RequiredArtwork:   job.RequiredArtwork,
			UploadedDataFiles: uploadedData,
			RequiredDataFiles: job.RequiredDataFiles,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if progress.BecameReady {
		s.logger.InfoContext(ctx, "job became ready for production", "job_id", req.JobID)
	}
	return progress, nil
}

// ManualOverride forces the ready flag. Jobs with no declared requirements
// never flip automatically, so this is their only path to ready.
func (s *ReadinessService) ManualOverride(ctx context.Context, jobID string, ready bool, actor string) (*model.Job, error) {
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		job, err := s.jobs.GetForUpdateInTx(ctx, tx, jobID)
		if err != nil {
			return mapJobErr(err)
		}
		if job.Status.Terminal() {
			return apperrors.Statef(apperrors.ReasonInvalidTransition,
				"cannot override readiness on a %s job", job.Status)
		}
		if job.IsReadyForProduction == ready {
			return nil
		}

		params := core.SetReadinessParams{
			JobID:             job.ID,
			UploadedArtwork:   job.UploadedArtwork,
			UploadedDataFiles: job.UploadedDataFiles,
			Ready:             ready,
		}
		becameReady := ready && !job.IsReadyForProduction
		if becameReady {
			now := s.timeProv.Now().UTC()
			params.ReadySubmittedAt = &now
		}
		if err := s.jobs.SetReadinessInTx(ctx, tx, params); err != nil {
			return mapJobErr(err)
		}

		oldVal := fmt.Sprintf("%t", job.IsReadyForProduction)
		newVal := fmt.Sprintf("%t", ready)
		if auditErr := s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        "is_ready_for_production",
			OldValue:     &oldVal,
			NewValue:     &newVal,
			TriggerEvent: model.TriggerManualOverride,
			Actor:        actor,
		}); auditErr != nil {
			return auditErr
		}

		if becameReady {
			return s.appendReadyEvent(ctx, tx, job.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapJobErr(err)
	}
	return job, nil
}

// ListFiles returns the files attached to a job, oldest first.
func (s *ReadinessService) ListFiles(ctx context.Context, jobID string) ([]*model.JobFile, error) {
	return s.files.ListByJob(ctx, jobID)
}

// FetchFile returns the stored bytes for a file handle.
func (s *ReadinessService) FetchFile(ctx context.Context, handle string) ([]byte, error) {
	b, err := s.blobs.Get(ctx, handle)
	if err != nil {
		return nil, apperrors.Dependency("blob_store_failure", "fetch file contents", err)
	}
	return b, nil
}

func (s *ReadinessService) recordBecameReady(ctx context.Context, tx *sql.Tx, jobID, trigger, actor string) error {
	oldVal := "false"
	newVal := "true"
	if err := s.audit.AppendInTx(ctx, tx, &model.AuditEntry{
		EntityRef:    model.JobEntityRef(jobID),
		Field:        "is_ready_for_production",
		OldValue:     &oldVal,
		NewValue:     &newVal,
		TriggerEvent: trigger,
		Actor:        actor,
	}); err != nil {
		return err
	}
	return s.appendReadyEvent(ctx, tx, jobID)
}

func (s *ReadinessService) appendReadyEvent(ctx context.Context, tx *sql.Tx, jobID string) error {
	payload, err := json.Marshal(map[string]string{"job_id": jobID})
	if err != nil {
		return fmt.Errorf("marshal ready event: %w", err)
	}
	// The unique (job, event type) key makes this a true one-shot even if two
	// paths race to flip the flag.
	_, err = s.outbox.AppendInTx(ctx, tx, jobID, model.EventJobBecameReady, payload)
	return err
}
