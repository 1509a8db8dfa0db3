package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/data"
	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
	"github.com/pressrun/backoffice/internal/mocks"
	"github.com/pressrun/backoffice/internal/testutil"
)

type readinessFixture struct {
	tx     *mocks.MockTransactor
	jobs   *mocks.MockJobRepository
	files  *mocks.MockJobFileRepository
	blobs  *mocks.MockBlobStore
	audit  *mocks.MockAuditRepository
	outbox *mocks.MockOutboxRepository

	entries []*model.AuditEntry
	events  []model.EventType

	svc *ReadinessService
}

func newReadinessFixture(t *testing.T) *readinessFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &readinessFixture{
		tx:     mocks.NewMockTransactor(ctrl),
		jobs:   mocks.NewMockJobRepository(ctrl),
		files:  mocks.NewMockJobFileRepository(ctrl),
		blobs:  mocks.NewMockBlobStore(ctrl),
		audit:  mocks.NewMockAuditRepository(ctrl),
		outbox: mocks.NewMockOutboxRepository(ctrl),
	}
	f.tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(*sql.Tx) error) error {
			return fn(nil)
		}).AnyTimes()
	f.audit.EXPECT().AppendInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, e *model.AuditEntry) error {
			f.entries = append(f.entries, e)
			return nil
		}).AnyTimes()
	f.outbox.EXPECT().AppendInTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, _ string, eventType model.EventType, _ []byte) (bool, error) {
			f.events = append(f.events, eventType)
			return true, nil
		}).AnyTimes()

	f.svc = NewReadinessService(ReadinessServiceOptions{
		Tx:     f.tx,
		Jobs:   f.jobs,
		Files:  f.files,
		Blobs:  f.blobs,
		Audit:  f.audit,
		Outbox: f.outbox,
		Time:   data.NewFixedTimeProvider(testutil.TestTime()),
	})
	return f
}

// countedJob declares one artwork and one data file, with the artwork already
// uploaded, so the next data file flips the job ready.
func countedJob() *model.Job {
	return &model.Job{
		ID:                      "job-1",
		CustomerID:              "cust-001",
		RoutingType:             model.RoutingTwoTier,
		Status:                  model.JobStatusInProduction,
		CustomerReferenceNumber: "PO-TEST-1001",
		RequiredArtwork:         testutil.IntPtr(1),
		UploadedArtwork:         1,
		RequiredDataFiles:       testutil.IntPtr(1),
		UploadedDataFiles:       0,
	}
}

func attachReq(kind model.FileKind) AttachFileRequest {
	return AttachFileRequest{
		JobID: "job-1",
		Kind:  kind,
		Name:  "list.csv",
		Data:  []byte("row1\nrow2\n"),
		Actor: "ops",
	}
}

func TestRecordFileAttachedFlipsReadyOnce(t *testing.T) {
	f := newReadinessFixture(t)
	f.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("handle-1", nil)
	f.jobs.EXPECT().GetForUpdateInTx(gomock.Any(), gomock.Any(), "job-1").Return(countedJob(), nil)
	f.files.EXPECT().InsertInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, file *model.JobFile) (*model.JobFile, error) {
			assert.Equal(t, "handle-1", file.Handle)
			assert.Equal(t, model.FileKindData, file.Kind)
			return file, nil
		})
	f.jobs.EXPECT().SetReadinessInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, params core.SetReadinessParams) error {
			assert.True(t, params.Ready)
			require.NotNil(t, params.ReadySubmittedAt)
			assert.Equal(t, testutil.TestTime(), *params.ReadySubmittedAt)
			return nil
		})

	progress, err := f.svc.RecordFileAttached(context.Background(), attachReq(model.FileKindData))
	require.NoError(t, err)
	assert.True(t, progress.Ready)
	assert.True(t, progress.BecameReady)
	assert.Equal(t, 1, progress.UploadedDataFiles)

	fields := []string{}
	for _, e := range f.entries {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"uploaded_data_files", "is_ready_for_production"}, fields)
	assert.Equal(t, []model.EventType{model.EventJobBecameReady}, f.events)
}

func TestRecordFileAttachedBelowThreshold(t *testing.T) {
	f := newReadinessFixture(t)
	job := countedJob()
	job.RequiredDataFiles = testutil.IntPtr(3)
	f.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("handle-1", nil)
	f.jobs.EXPECT().GetForUpdateInTx(gomock.Any(), gomock.Any(), "job-1").Return(job, nil)
	f.files.EXPECT().InsertInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, file *model.JobFile) (*model.JobFile, error) {
			return file, nil
		})
	f.jobs.EXPECT().SetReadinessInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, params core.SetReadinessParams) error {
			assert.False(t, params.Ready)
			assert.Nil(t, params.ReadySubmittedAt)
			return nil
		})

	progress, err := f.svc.RecordFileAttached(context.Background(), attachReq(model.FileKindData))
	require.NoError(t, err)
	assert.False(t, progress.Ready)
	assert.False(t, progress.BecameReady)
	assert.Empty(t, f.events, "no ready event below the threshold")
}

func TestRecordFileAttachedAlreadyReadyStaysReady(t *testing.T) {
	f := newReadinessFixture(t)
	job := countedJob()
	job.UploadedDataFiles = 1
	job.IsReadyForProduction = true
	f.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("handle-2", nil)
	f.jobs.EXPECT().GetForUpdateInTx(gomock.Any(), gomock.Any(), "job-1").Return(job, nil)
	f.files.EXPECT().InsertInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, file *model.JobFile) (*model.JobFile, error) {
			return file, nil
		})
	f.jobs.EXPECT().SetReadinessInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, params core.SetReadinessParams) error {
			assert.True(t, params.Ready, "extra files never un-ready a job")
			assert.Nil(t, params.ReadySubmittedAt)
			return nil
		})

	progress, err := f.svc.RecordFileAttached(context.Background(), attachReq(model.FileKindData))
	require.NoError(t, err)
	assert.True(t, progress.Ready)
	assert.False(t, progress.BecameReady, "the flip fires at most once")
	assert.Empty(t, f.events)
}

func TestRecordFileAttachedInvalidKind(t *testing.T) {
	f := newReadinessFixture(t)

	_, err := f.svc.RecordFileAttached(context.Background(), attachReq(model.FileKind("spreadsheet")))
	require.Error(t, err)
	assert.Equal(t, apperrors.ReasonInvalidFileKind, apperrors.GetReason(err))
}

func TestRecordFileAttachedTerminalJob(t *testing.T) {
	f := newReadinessFixture(t)
	job := countedJob()
	job.Status = model.JobStatusCompleted
	f.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("handle-1", nil)
	f.jobs.EXPECT().GetForUpdateInTx(gomock.Any(), gomock.Any(), "job-1").Return(job, nil)

	_, err := f.svc.RecordFileAttached(context.Background(), attachReq(model.FileKindArtwork))
	require.Error(t, err)
	assert.True(t, apperrors.IsState(err))
}

func TestRecordFileAttachedBlobFailure(t *testing.T) {
	f := newReadinessFixture(t)
	f.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("", assert.AnError)

	_, err := f.svc.RecordFileAttached(context.Background(), attachReq(model.FileKindArtwork))
	require.Error(t, err)
	assert.True(t, apperrors.IsDependency(err))
}

func TestManualOverrideFlipsReady(t *testing.T) {
	f := newReadinessFixture(t)
	// No declared requirements: the override is the only path to ready.
	job := &model.Job{
		ID:          "job-1",
		CustomerID:  "cust-001",
		RoutingType: model.RoutingTwoTier,
		Status:      model.JobStatusInProduction,
	}
	f.jobs.EXPECT().GetForUpdateInTx(gomock.Any(), gomock.Any(), "job-1").Return(job, nil)
	f.jobs.EXPECT().SetReadinessInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, params core.SetReadinessParams) error {
			assert.True(t, params.Ready)
			require.NotNil(t, params.ReadySubmittedAt)
			return nil
		})
	ready := *job
	ready.IsReadyForProduction = true
	f.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&ready, nil)

	got, err := f.svc.ManualOverride(context.Background(), "job-1", true, "ops")
	require.NoError(t, err)
	assert.True(t, got.IsReadyForProduction)
	assert.Equal(t, []model.EventType{model.EventJobBecameReady}, f.events)
}

func TestManualOverrideNoChange(t *testing.T) {
	f := newReadinessFixture(t)
	job := countedJob()
	f.jobs.EXPECT().GetForUpdateInTx(gomock.Any(), gomock.Any(), "job-1").Return(job, nil)
	// No SetReadinessInTx: same flag value is a no-op.
	f.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := f.svc.ManualOverride(context.Background(), "job-1", false, "ops")
	require.NoError(t, err)
	assert.Empty(t, f.entries)
}

func TestManualOverrideUnready(t *testing.T) {
	f := newReadinessFixture(t)
	job := countedJob()
	job.IsReadyForProduction = true
	f.jobs.EXPECT().GetForUpdateInTx(gomock.Any(), gomock.Any(), "job-1").Return(job, nil)
	f.jobs.EXPECT().SetReadinessInTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sql.Tx, params core.SetReadinessParams) error {
			assert.False(t, params.Ready)
			assert.Nil(t, params.ReadySubmittedAt)
			return nil
		})
	f.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := f.svc.ManualOverride(context.Background(), "job-1", false, "ops")
	require.NoError(t, err)
	assert.Empty(t, f.events, "only becoming ready emits an event")
}

func TestFetchFileWrapsStoreError(t *testing.T) {
	f := newReadinessFixture(t)
	f.blobs.EXPECT().Get(gomock.Any(), "handle-1").Return(nil, assert.AnError)

	_, err := f.svc.FetchFile(context.Background(), "handle-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsDependency(err))
}

func TestDerivedReady(t *testing.T) {
	job := countedJob()
	assert.False(t, job.DerivedReady())

	job.UploadedDataFiles = 1
	assert.True(t, job.DerivedReady())

	bare := &model.Job{}
	assert.False(t, bare.DerivedReady(), "undeclared requirements never auto-flip")
}
