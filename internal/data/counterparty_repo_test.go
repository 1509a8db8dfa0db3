package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pressrun/backoffice/internal/errors"
	"github.com/pressrun/backoffice/internal/testutil"
)

func TestCounterpartyRepoCreateNormalizesCode(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCounterpartyRepo(db, nil)

		req := testutil.ManufacturerParty("Lakeshore Press", " lkp ")
		cp, err := repo.Create(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, cp.Code)
		assert.Equal(t, "LKP", *cp.Code)

		got, err := repo.GetByID(ctx, cp.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lakeshore Press", got.Name)
	})
}

func TestCounterpartyRepoCodeCollision(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCounterpartyRepo(db, nil)

		_, err := repo.Create(ctx, testutil.ManufacturerParty("Lakeshore Press", "LKP"))
		require.NoError(t, err)

		_, err = repo.Create(ctx, testutil.ManufacturerParty("Lakewood Printing", "lkp"))
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err), "case-folded codes collide: %v", err)
		assert.Equal(t, "code", apperrors.GetField(err))
	})
}

func TestCounterpartyRepoVendorsNeedNoCode(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCounterpartyRepo(db, nil)

		first, err := repo.Create(ctx, testutil.VendorParty("Crestline Bindery"))
		require.NoError(t, err)
		assert.Nil(t, first.Code)

		// NULL codes do not collide with each other.
		_, err = repo.Create(ctx, testutil.VendorParty("Harbor Mailing"))
		require.NoError(t, err)
	})
}

func TestCounterpartyRepoGetMissing(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewCounterpartyRepo(db, nil)
		_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrCounterpartyNotFound)
	})
}

func TestCounterpartyRepoListOrdersByName(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCounterpartyRepo(db, nil)

		_, err := repo.Create(ctx, testutil.VendorParty("Zenith Mailing"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, testutil.ManufacturerParty("Apex Print Co", "APX"))
		require.NoError(t, err)

		cps, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, cps, 2)
		assert.Equal(t, "Apex Print Co", cps[0].Name)
		assert.Equal(t, "Zenith Mailing", cps[1].Name)
	})
}
