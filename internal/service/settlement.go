package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/domain/model"
	"github.com/pressrun/backoffice/internal/domain/settle"
	apperrors "github.com/pressrun/backoffice/internal/errors"
)

// SettlementServiceOptions groups dependencies for SettlementService.
type SettlementServiceOptions struct {
	Pricing core.PricingRuleRepository
	// PerUnitFloor is the sanity floor for implied per-unit customer pricing.
	// Zero disables the check.
	PerUnitFloor decimal.Decimal
}

// SettlementService derives per-tier amount snapshots from the pricing
// catalog. It is pure orchestration over the settle package; nothing here
// writes rows.
type SettlementService struct {
	pricing core.PricingRuleRepository
	floor   decimal.Decimal
}

// NewSettlementService constructs a new SettlementService.
func NewSettlementService(opts SettlementServiceOptions) *SettlementService {
	return &SettlementService{pricing: opts.Pricing, floor: opts.PerUnitFloor}
}

// Derive builds the snapshot for a size-priced job. Quantity may be nil, in
// which case only the CPM figures are populated.
func (s *SettlementService) Derive(ctx context.Context, sizeKey string, quantity *int64) (*model.SettlementSnapshot, *settle.Diagnostic, error) {
	rule, err := s.pricing.GetBySizeKey(ctx, sizeKey)
	if err != nil {
		if errors.Is(err, model.ErrNoPricingRule) {
			return nil, nil, apperrors.ValidationField(apperrors.ReasonNoPricingRule, "size_key",
				fmt.Sprintf("no pricing rule for size key %q", sizeKey))
		}
		return nil, nil, fmt.Errorf("look up pricing rule: %w", err)
	}

	snap, diag, err := settle.ComputeSizeBased(settle.SizeBasedInput{
		Rule:         rule,
		Quantity:     quantity,
		PerUnitFloor: s.floor,
	})
	if err != nil {
		return nil, nil, err
	}
	return snap, diag, nil
}

// DeriveVendor validates vendor-supplied amounts and returns the snapshot
// holding them. The customer total is an independent input; the vendor amount
// plus the broker's cut must fit inside it.
func (s *SettlementService) DeriveVendor(vendor *model.VendorRouting) (*model.SettlementSnapshot, error) {
	if vendor == nil {
		return nil, apperrors.Validation(apperrors.ReasonMissingVendorFields,
			"vendor routing fields are required")
	}
	snap, err := settle.ComputeVendor(settle.VendorInput{
		VendorAmount:  vendor.VendorAmount,
		BrokerCut:     vendor.BrokerCut,
		CustomerTotal: vendor.CustomerTotal,
	})
	if errors.Is(err, settle.ErrAmountsExceedTotal) {
		return nil, apperrors.ValidationField(apperrors.ReasonAmountExceedsTotal, "vendor_amount", err.Error())
	}
	if err != nil {
		return nil, apperrors.Validation(apperrors.ReasonNegativeAmount, err.Error())
	}
	return snap, nil
}

// Recompute rebuilds the snapshot for a job from the current catalog. Vendor
// jobs keep their stored amounts; size-priced jobs are re-derived so a frozen
// snapshot always reflects the rule in force at freeze time.
func (s *SettlementService) Recompute(ctx context.Context, job *model.Job) (*model.SettlementSnapshot, *settle.Diagnostic, error) {
	if job.RoutingType == model.RoutingThreeTierVendor {
		if job.Settlement == nil || job.Settlement.VendorAmount == nil || job.Settlement.BrokerCut == nil {
			return nil, nil, apperrors.State(apperrors.ReasonAmountsNotDerived,
				"vendor amounts have not been recorded")
		}
		return job.Settlement, nil, nil
	}

	if job.SizeKey == "" {
		return nil, nil, apperrors.State(apperrors.ReasonAmountsNotDerived,
			"job has no size key to price")
	}
	return s.Derive(ctx, job.SizeKey, job.Quantity)
}
