package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressrun/backoffice/internal/domain/model"
	"github.com/pressrun/backoffice/internal/testutil"
)

func TestPricingRuleRepoUpsertAndGet(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewPricingRuleRepo(db, nil)

		stored, err := repo.Upsert(ctx, testutil.LetterPricingRule())
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)

		got, err := repo.GetBySizeKey(ctx, "8.5x11")
		require.NoError(t, err)
		assert.True(t, got.ManufacturingCPM.Equal(decimal.RequireFromString("50")))
		assert.True(t, got.BrokerMarkupPct.Equal(decimal.RequireFromString("20")))
	})
}

func TestPricingRuleRepoUpsertReplacesInPlace(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewPricingRuleRepo(db, nil)

		first, err := repo.Upsert(ctx, testutil.LetterPricingRule())
		require.NoError(t, err)

		updated := testutil.LetterPricingRule()
		updated.ManufacturingCPM = decimal.RequireFromString("55")
		second, err := repo.Upsert(ctx, updated)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID, "same size key keeps the same row")
		assert.True(t, second.ManufacturingCPM.Equal(decimal.RequireFromString("55")))

		rules, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, rules, 1)
	})
}

func TestPricingRuleRepoGetMissing(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewPricingRuleRepo(db, nil)
		_, err := repo.GetBySizeKey(context.Background(), "11x17")
		assert.ErrorIs(t, err, model.ErrNoPricingRule)
	})
}

func TestPricingRuleRepoRejectsInvalidRule(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewPricingRuleRepo(db, nil)
		bad := testutil.LetterPricingRule()
		bad.ManufacturingCPM = decimal.RequireFromString("-1")
		_, err := repo.Upsert(context.Background(), bad)
		assert.Error(t, err)
	})
}
