package service

import (
	"context"
	"errors"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Pricing core.PricingRuleRepository
	Parties core.CounterpartyRepository
}

// CatalogService administers the pricing rule catalog and the counterparty
// registry. Rule edits never rewrite frozen job snapshots.
type CatalogService struct {
	pricing core.PricingRuleRepository
	parties core.CounterpartyRepository
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	return &CatalogService{pricing: opts.Pricing, parties: opts.Parties}
}

// UpsertPricingRule creates or replaces the rule for a size key.
func (s *CatalogService) UpsertPricingRule(ctx context.Context, rule *model.PricingRule) (*model.PricingRule, error) {
	if rule == nil {
		return nil, apperrors.Validation("", "pricing rule is required")
	}
	if err := rule.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid pricing rule")
	}
	stored, err := s.pricing.Upsert(ctx, rule)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return stored, nil
}

// GetPricingRule returns the rule for a size key.
func (s *CatalogService) GetPricingRule(ctx context.Context, sizeKey string) (*model.PricingRule, error) {
	rule, err := s.pricing.GetBySizeKey(ctx, sizeKey)
	if err != nil {
		if errors.Is(err, model.ErrNoPricingRule) {
			return nil, apperrors.NotFoundf("no pricing rule for size key %q", sizeKey)
		}
		return nil, apperrors.MapDBError(err)
	}
	return rule, nil
}

// ListPricingRules returns every rule in the catalog.
func (s *CatalogService) ListPricingRules(ctx context.Context) ([]*model.PricingRule, error) {
	return s.pricing.List(ctx)
}

// CreateCounterparty registers a manufacturer or vendor.
func (s *CatalogService) CreateCounterparty(ctx context.Context, req *model.CreateCounterpartyRequest) (*model.Counterparty, error) {
	if req == nil {
		return nil, apperrors.Validation("", "create counterparty request is required")
	}
	party, err := s.parties.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return party, nil
}

// GetCounterparty returns a counterparty by ID.
func (s *CatalogService) GetCounterparty(ctx context.Context, id string) (*model.Counterparty, error) {
	party, err := s.parties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrCounterpartyNotFound) {
			return nil, apperrors.NotFound("counterparty not found")
		}
		return nil, apperrors.MapDBError(err)
	}
	return party, nil
}

// ListCounterparties returns every registered counterparty.
func (s *CatalogService) ListCounterparties(ctx context.Context) ([]*model.Counterparty, error) {
	return s.parties.List(ctx)
}
