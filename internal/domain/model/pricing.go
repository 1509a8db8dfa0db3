package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoPricingRule is returned when no pricing rule exists for a size key.
// Amount derivation never silently defaults.
var ErrNoPricingRule = errors.New("no pricing rule for size key")

// PricingRule prices a size key. Rules are read into a frozen job snapshot at
// settlement time; later edits never retroactively alter historical jobs.
type PricingRule struct {
	ID string `json:"id" db:"id"`
	// SizeKey identifies the piece format, e.g. "8.5x11".
	SizeKey string `json:"size_key" db:"size_key"`
	// ManufacturingCPM is the raw press cost per thousand pieces.
	ManufacturingCPM decimal.Decimal `json:"manufacturing_cpm" db:"manufacturing_cpm"`
	// PaperWeightPerM is the paper weight in pounds per thousand pieces.
	PaperWeightPerM decimal.Decimal `json:"paper_weight_per_m" db:"paper_weight_per_m"`
	// PaperCostPerLb is the paper cost per pound.
	PaperCostPerLb decimal.Decimal `json:"paper_cost_per_lb" db:"paper_cost_per_lb"`
	// ManufacturerMarkupPct is the manufacturer's margin over raw cost, in percent.
	ManufacturerMarkupPct decimal.Decimal `json:"manufacturer_markup_pct" db:"manufacturer_markup_pct"`
	// BrokerMarkupPct is the broker's margin over the manufacturer price, in percent.
	BrokerMarkupPct decimal.Decimal `json:"broker_markup_pct" db:"broker_markup_pct"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// PaperCPM is the paper cost per thousand pieces.
func (r *PricingRule) PaperCPM() decimal.Decimal {
	return r.PaperWeightPerM.Mul(r.PaperCostPerLb)
}

// Validate checks rule coefficients for sanity before persistence.
func (r *PricingRule) Validate() error {
	if r.SizeKey == "" {
		return errors.New("size key is required")
	}
	if r.ManufacturingCPM.IsNegative() || r.PaperWeightPerM.IsNegative() || r.PaperCostPerLb.IsNegative() {
		return errors.New("cost coefficients must be non-negative")
	}
	if r.ManufacturerMarkupPct.IsNegative() || r.BrokerMarkupPct.IsNegative() {
		return errors.New("markup percentages must be non-negative")
	}
	return nil
}

// SettlementSnapshot is the frozen per-tier amount set for a job. CPM fields
// are populated for size-priced jobs; totals stay nil until quantity is known.
// Vendor-routed jobs carry only the absolute amounts.
type SettlementSnapshot struct {
	// Per-thousand figures, customer tier down to raw cost.
	CustomerCPM     *decimal.Decimal `json:"customer_cpm,omitempty"     db:"customer_cpm"`
	ManufacturerCPM *decimal.Decimal `json:"manufacturer_cpm,omitempty" db:"manufacturer_cpm"`
	CostCPM         *decimal.Decimal `json:"cost_cpm,omitempty"         db:"cost_cpm"`
	// Margin CPMs, derived top-down.
	BrokerMarginCPM       *decimal.Decimal `json:"broker_margin_cpm,omitempty"       db:"broker_margin_cpm"`
	ManufacturerMarginCPM *decimal.Decimal `json:"manufacturer_margin_cpm,omitempty" db:"manufacturer_margin_cpm"`

	// Absolute totals rounded to the cent.
	CustomerTotal           *decimal.Decimal `json:"customer_total,omitempty"            db:"customer_total"`
	ManufacturerTotal       *decimal.Decimal `json:"manufacturer_total,omitempty"        db:"manufacturer_total"`
	CostTotal               *decimal.Decimal `json:"cost_total,omitempty"                db:"cost_total"`
	BrokerMarginTotal       *decimal.Decimal `json:"broker_margin_total,omitempty"       db:"broker_margin_total"`
	ManufacturerMarginTotal *decimal.Decimal `json:"manufacturer_margin_total,omitempty" db:"manufacturer_margin_total"`

	// Vendor routing amounts, stored directly without decomposition.
	VendorAmount *decimal.Decimal `json:"vendor_amount,omitempty" db:"vendor_amount"`
	BrokerCut    *decimal.Decimal `json:"broker_cut,omitempty"    db:"broker_cut"`
}

// HasTotals reports whether absolute amounts have been derived.
func (s *SettlementSnapshot) HasTotals() bool {
	if s == nil {
		return false
	}
	return s.CustomerTotal != nil
}
