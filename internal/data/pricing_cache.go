package data

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/domain/model"
)

// CachedPricingRuleRepo is a Redis read-through decorator over a
// PricingRuleRepository. Cache misses and Redis failures fall through to the
// inner repository; a stale cache can never affect frozen jobs because jobs
// store computed numbers, not rule references.
type CachedPricingRuleRepo struct {
	inner  core.PricingRuleRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// CachedPricingRuleRepoOptions groups constructor dependencies.
type CachedPricingRuleRepoOptions struct {
	Inner  core.PricingRuleRepository
	Client redis.UniversalClient
	TTL    time.Duration
	Logger *slog.Logger
}

// NewCachedPricingRuleRepo wraps inner with a Redis cache.
func NewCachedPricingRuleRepo(opts CachedPricingRuleRepoOptions) *CachedPricingRuleRepo {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedPricingRuleRepo{
		inner:  opts.Inner,
		client: opts.Client,
		ttl:    ttl,
		logger: opts.Logger,
	}
}

func pricingRuleCacheKey(sizeKey string) string {
	return "pricing_rule:" + sizeKey
}

// GetBySizeKey returns the cached rule when present, otherwise loads from the
// inner repository and populates the cache.
func (r *CachedPricingRuleRepo) GetBySizeKey(ctx context.Context, sizeKey string) (*model.PricingRule, error) {
	key := pricingRuleCacheKey(sizeKey)

	raw, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var rule model.PricingRule
		if unmarshalErr := json.Unmarshal([]byte(raw), &rule); unmarshalErr == nil {
			return &rule, nil
		}
		// Corrupt cache entry; fall through and repopulate.
		r.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) && r.logger != nil {
		r.logger.WarnContext(ctx, "pricing rule cache read failed", "size_key", sizeKey, "error", err)
	}

	rule, err := r.inner.GetBySizeKey(ctx, sizeKey)
	if err != nil {
		return nil, err
	}

	if encoded, marshalErr := json.Marshal(rule); marshalErr == nil {
		if setErr := r.client.Set(ctx, key, encoded, r.ttl).Err(); setErr != nil && r.logger != nil {
			r.logger.WarnContext(ctx, "pricing rule cache write failed", "size_key", sizeKey, "error", setErr)
		}
	}
	return rule, nil
}

// Upsert writes through to the inner repository and invalidates the cache.
func (r *CachedPricingRuleRepo) Upsert(ctx context.Context, rule *model.PricingRule) (*model.PricingRule, error) {
	stored, err := r.inner.Upsert(ctx, rule)
	if err != nil {
		return nil, err
	}
	if delErr := r.client.Del(ctx, pricingRuleCacheKey(stored.SizeKey)).Err(); delErr != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "pricing rule cache invalidation failed", "size_key", stored.SizeKey, "error", delErr)
	}
	return stored, nil
}

// List delegates to the inner repository; listings are admin-path only and
// not worth caching.
func (r *CachedPricingRuleRepo) List(ctx context.Context) ([]*model.PricingRule, error) {
	return r.inner.List(ctx)
}
