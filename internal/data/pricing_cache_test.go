package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressrun/backoffice/internal/domain/model"
	"github.com/pressrun/backoffice/internal/testutil"
)

// countingRuleRepo counts inner-repository loads so tests can observe cache
// hits without a database.
type countingRuleRepo struct {
	rule *model.PricingRule
	gets int
}

func (r *countingRuleRepo) GetBySizeKey(_ context.Context, sizeKey string) (*model.PricingRule, error) {
	r.gets++
	if r.rule == nil || r.rule.SizeKey != sizeKey {
		return nil, model.ErrNoPricingRule
	}
	return r.rule, nil
}

func (r *countingRuleRepo) Upsert(_ context.Context, rule *model.PricingRule) (*model.PricingRule, error) {
	r.rule = rule
	return rule, nil
}

func (r *countingRuleRepo) List(_ context.Context) ([]*model.PricingRule, error) {
	if r.rule == nil {
		return nil, nil
	}
	return []*model.PricingRule{r.rule}, nil
}

func TestCachedPricingRuleRepoReadThrough(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	inner := &countingRuleRepo{rule: testutil.LetterPricingRule()}
	cached := NewCachedPricingRuleRepo(CachedPricingRuleRepoOptions{
		Inner:  inner,
		Client: client,
		TTL:    time.Minute,
	})

	first, err := cached.GetBySizeKey(ctx, "8.5x11")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)

	second, err := cached.GetBySizeKey(ctx, "8.5x11")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets, "second read is served from the cache")
	assert.True(t, first.ManufacturingCPM.Equal(second.ManufacturingCPM))
}

func TestCachedPricingRuleRepoMissIsNotCached(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	inner := &countingRuleRepo{}
	cached := NewCachedPricingRuleRepo(CachedPricingRuleRepoOptions{
		Inner:  inner,
		Client: client,
	})

	_, err := cached.GetBySizeKey(ctx, "8.5x11")
	assert.ErrorIs(t, err, model.ErrNoPricingRule)
	_, err = cached.GetBySizeKey(ctx, "8.5x11")
	assert.ErrorIs(t, err, model.ErrNoPricingRule)
	assert.Equal(t, 2, inner.gets, "misses always consult the inner repository")
}

func TestCachedPricingRuleRepoUpsertInvalidates(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	inner := &countingRuleRepo{rule: testutil.LetterPricingRule()}
	cached := NewCachedPricingRuleRepo(CachedPricingRuleRepoOptions{
		Inner:  inner,
		Client: client,
		TTL:    time.Minute,
	})

	_, err := cached.GetBySizeKey(ctx, "8.5x11")
	require.NoError(t, err)

	updated := testutil.LetterPricingRule()
	updated.ManufacturingCPM = updated.ManufacturingCPM.Add(updated.ManufacturingCPM)
	_, err = cached.Upsert(ctx, updated)
	require.NoError(t, err)

	got, err := cached.GetBySizeKey(ctx, "8.5x11")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.gets, "invalidation forces a reload")
	assert.True(t, got.ManufacturingCPM.Equal(updated.ManufacturingCPM))
}

func TestCachedPricingRuleRepoCorruptEntryRepopulates(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	inner := &countingRuleRepo{rule: testutil.LetterPricingRule()}
	cached := NewCachedPricingRuleRepo(CachedPricingRuleRepoOptions{
		Inner:  inner,
		Client: client,
		TTL:    time.Minute,
	})

	require.NoError(t, client.Set(ctx, "pricing_rule:8.5x11", "not-json", time.Minute).Err())

	got, err := cached.GetBySizeKey(ctx, "8.5x11")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)
	assert.True(t, got.ManufacturingCPM.Equal(inner.rule.ManufacturingCPM))
}
