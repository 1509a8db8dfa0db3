package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
	"github.com/pressrun/backoffice/internal/testutil"
)

func newChainLink(jobID string) *model.ChainLink {
	return &model.ChainLink{
		JobID:           jobID,
		Boundary:        model.BoundaryBrokerManufacturer,
		DocType:         model.DocumentPurchaseOrder,
		Status:          model.ChainLinkIssued,
		DocumentNumber:  "PO-1042",
		ReferenceNumber: "PO-IT-1001",
		OriginParty:     "Pressrun Brokerage",
		ReceivingParty:  testutil.StringPtr("Lakeshore Press"),
		Amount:          decimal.RequireFromString("375.00"),
		OriginalAmount:  decPtrVal("450.00"),
		MarginAmount:    decPtrVal("75.00"),
	}
}

func decPtrVal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestChainLinkRepoInsertAndFindActive(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)
		repo := NewChainLinkRepo(db, nil)

		var stored, found *model.ChainLink
		err := NewSQLTransactor(db).WithTx(ctx, func(tx *sql.Tx) error {
			var txErr error
			stored, txErr = repo.InsertInTx(ctx, tx, newChainLink(job.ID))
			if txErr != nil {
				return txErr
			}
			found, txErr = repo.FindActiveInTx(ctx, tx, job.ID, model.BoundaryBrokerManufacturer, model.DocumentPurchaseOrder)
			return txErr
		})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, stored.ID, found.ID)
		assert.Equal(t, "PO-1042", found.DocumentNumber)
		assert.True(t, found.Amount.Equal(decimal.RequireFromString("375.00")))
		require.NotNil(t, found.MarginAmount)
		assert.True(t, found.OriginalAmount.Sub(*found.MarginAmount).Equal(found.Amount))
	})
}

func TestChainLinkRepoFindActiveIgnoresCancelled(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)
		repo := NewChainLinkRepo(db, nil)
		transactor := NewSQLTransactor(db)

		var stored *model.ChainLink
		require.NoError(t, transactor.WithTx(ctx, func(tx *sql.Tx) error {
			var txErr error
			stored, txErr = repo.InsertInTx(ctx, tx, newChainLink(job.ID))
			return txErr
		}))
		require.NoError(t, transactor.WithTx(ctx, func(tx *sql.Tx) error {
			return repo.CancelInTx(ctx, tx, stored.ID)
		}))

		err := transactor.WithTx(ctx, func(tx *sql.Tx) error {
			found, txErr := repo.FindActiveInTx(ctx, tx, job.ID, model.BoundaryBrokerManufacturer, model.DocumentPurchaseOrder)
			if txErr != nil {
				return txErr
			}
			assert.Nil(t, found)

			// A replacement for the same boundary is now allowed.
			replacement := newChainLink(job.ID)
			replacement.DocumentNumber = "PO-1043"
			_, txErr = repo.InsertInTx(ctx, tx, replacement)
			return txErr
		})
		require.NoError(t, err)
	})
}

func TestChainLinkRepoActiveUniquePerBoundary(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)
		repo := NewChainLinkRepo(db, nil)
		transactor := NewSQLTransactor(db)

		require.NoError(t, transactor.WithTx(ctx, func(tx *sql.Tx) error {
			_, txErr := repo.InsertInTx(ctx, tx, newChainLink(job.ID))
			return txErr
		}))

		err := transactor.WithTx(ctx, func(tx *sql.Tx) error {
			dup := newChainLink(job.ID)
			dup.DocumentNumber = "PO-1099"
			_, txErr := repo.InsertInTx(ctx, tx, dup)
			return txErr
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsUniqueViolation(err), "schema backstops the one-active-document invariant: %v", err)

		// A different doc type on the same boundary is a separate document.
		require.NoError(t, transactor.WithTx(ctx, func(tx *sql.Tx) error {
			inv := newChainLink(job.ID)
			inv.DocType = model.DocumentInvoice
			inv.DocumentNumber = "INV-77"
			_, txErr := repo.InsertInTx(ctx, tx, inv)
			return txErr
		}))
	})
}

func TestChainLinkRepoDocumentSequence(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewChainLinkRepo(db, nil)

		err := NewSQLTransactor(db).WithTx(ctx, func(tx *sql.Tx) error {
			for i := int64(1); i <= 3; i++ {
				next, txErr := repo.NextDocumentNumberInTx(ctx, tx, "LKP", model.DocumentPurchaseOrder)
				if txErr != nil {
					return txErr
				}
				assert.Equal(t, i, next)
			}

			// Each (code, doc type) pair owns its own counter.
			next, txErr := repo.NextDocumentNumberInTx(ctx, tx, "LKP", model.DocumentInvoice)
			if txErr != nil {
				return txErr
			}
			assert.Equal(t, int64(1), next)

			next, txErr = repo.NextDocumentNumberInTx(ctx, tx, "CRB", model.DocumentPurchaseOrder)
			if txErr != nil {
				return txErr
			}
			assert.Equal(t, int64(1), next)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestChainLinkRepoExistsForJob(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)
		repo := NewChainLinkRepo(db, nil)
		transactor := NewSQLTransactor(db)

		var stored *model.ChainLink
		require.NoError(t, transactor.WithTx(ctx, func(tx *sql.Tx) error {
			exists, txErr := repo.ExistsForJobInTx(ctx, tx, job.ID)
			if txErr != nil {
				return txErr
			}
			assert.False(t, exists)

			stored, txErr = repo.InsertInTx(ctx, tx, newChainLink(job.ID))
			if txErr != nil {
				return txErr
			}
			exists, txErr = repo.ExistsForJobInTx(ctx, tx, job.ID)
			assert.True(t, exists)
			return txErr
		}))

		// Cancelling the only document releases the immutability hold.
		require.NoError(t, transactor.WithTx(ctx, func(tx *sql.Tx) error {
			if txErr := repo.CancelInTx(ctx, tx, stored.ID); txErr != nil {
				return txErr
			}
			exists, txErr := repo.ExistsForJobInTx(ctx, tx, job.ID)
			assert.False(t, exists)
			return txErr
		}))
	})
}

func TestChainLinkRepoCancelTwice(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)
		repo := NewChainLinkRepo(db, nil)
		transactor := NewSQLTransactor(db)

		var stored *model.ChainLink
		require.NoError(t, transactor.WithTx(ctx, func(tx *sql.Tx) error {
			var txErr error
			stored, txErr = repo.InsertInTx(ctx, tx, newChainLink(job.ID))
			return txErr
		}))

		require.NoError(t, transactor.WithTx(ctx, func(tx *sql.Tx) error {
			return repo.CancelInTx(ctx, tx, stored.ID)
		}))
		err := transactor.WithTx(ctx, func(tx *sql.Tx) error {
			return repo.CancelInTx(ctx, tx, stored.ID)
		})
		assert.ErrorIs(t, err, ErrChainLinkNotFound)
	})
}

func TestChainLinkRepoListByJob(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		job := insertJob(t, db, nil)
		other := insertJob(t, db, func(j *model.Job) {
			j.CustomerReferenceNumber = "PO-IT-2002"
		})
		repo := NewChainLinkRepo(db, nil)

		require.NoError(t, NewSQLTransactor(db).WithTx(ctx, func(tx *sql.Tx) error {
			po := newChainLink(job.ID)
			if _, txErr := repo.InsertInTx(ctx, tx, po); txErr != nil {
				return txErr
			}
			inv := newChainLink(job.ID)
			inv.DocType = model.DocumentInvoice
			inv.DocumentNumber = "INV-1"
			if _, txErr := repo.InsertInTx(ctx, tx, inv); txErr != nil {
				return txErr
			}
			stray := newChainLink(other.ID)
			_, txErr := repo.InsertInTx(ctx, tx, stray)
			return txErr
		}))

		links, err := repo.ListByJob(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, links, 2)
		for _, link := range links {
			assert.Equal(t, job.ID, link.JobID)
		}
	})
}
