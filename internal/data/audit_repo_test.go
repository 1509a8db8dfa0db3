package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressrun/backoffice/internal/domain/model"
	"github.com/pressrun/backoffice/internal/testutil"
)

func appendEntry(t *testing.T, db *sql.DB, entry *model.AuditEntry) {
	t.Helper()
	repo := NewAuditRepo(db, nil)
	require.NoError(t, NewSQLTransactor(db).WithTx(context.Background(), func(tx *sql.Tx) error {
		return repo.AppendInTx(context.Background(), tx, entry)
	}))
}

func TestAuditRepoAppendAndTrail(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)
		repo := NewAuditRepo(db, nil)

		appendEntry(t, db, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        "status",
			OldValue:     testutil.StringPtr("pending"),
			NewValue:     testutil.StringPtr("in_production"),
			TriggerEvent: model.TriggerStatusTransition,
			Actor:        "ops@pressrun",
		})
		appendEntry(t, db, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        "amount",
			NewValue:     testutil.StringPtr("450.00"),
			TriggerEvent: model.TriggerStatusTransition,
		})

		trail, err := repo.TrailForJob(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, trail, 2)
		assert.Equal(t, "status", trail[0].Field)
		assert.Equal(t, "ops@pressrun", trail[0].Actor)
		assert.Equal(t, "in_production", *trail[0].NewValue)
		assert.Equal(t, "system", trail[1].Actor, "blank actors default to system")
		assert.Nil(t, trail[1].OldValue)
	})
}

func TestAuditRepoTrailIncludesChainDocuments(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)
		auditRepo := NewAuditRepo(db, nil)
		chainRepo := NewChainLinkRepo(db, nil)

		var link *model.ChainLink
		require.NoError(t, NewSQLTransactor(db).WithTx(ctx, func(tx *sql.Tx) error {
			var txErr error
			link, txErr = chainRepo.InsertInTx(ctx, tx, newChainLink(job.ID))
			return txErr
		}))

		appendEntry(t, db, &model.AuditEntry{
			EntityRef:    model.ChainLinkEntityRef(link.ID),
			Field:        "status",
			NewValue:     testutil.StringPtr("issued"),
			TriggerEvent: model.TriggerChainDocumentEmit,
		})

		trail, err := auditRepo.TrailForJob(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, trail, 1)
		assert.Equal(t, model.ChainLinkEntityRef(link.ID), trail[0].EntityRef)
	})
}

func TestAuditRepoRejectsIncompleteEntries(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAuditRepo(db, nil)

		err := NewSQLTransactor(db).WithTx(ctx, func(tx *sql.Tx) error {
			return repo.AppendInTx(ctx, tx, &model.AuditEntry{Field: "status"})
		})
		assert.Error(t, err)
	})
}

func TestAuditRowsAreAppendOnly(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)

		appendEntry(t, db, &model.AuditEntry{
			EntityRef:    model.JobEntityRef(job.ID),
			Field:        "status",
			NewValue:     testutil.StringPtr("in_production"),
			TriggerEvent: model.TriggerStatusTransition,
		})

		_, err := db.ExecContext(ctx, "UPDATE audit_entries SET new_value = 'forged'")
		require.Error(t, err, "database trigger blocks updates")
		assert.Contains(t, err.Error(), "append-only")

		_, err = db.ExecContext(ctx, "DELETE FROM audit_entries")
		require.Error(t, err, "database trigger blocks deletes")
	})
}
