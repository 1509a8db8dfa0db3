// Package settle derives per-tier CPM figures and absolute totals for a job.
// The math is pure: inputs in, snapshot out, no persistence. Every rounded
// figure uses banker's rounding (round half to even) so aggregated reports
// never drift from what was invoiced.
package settle

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pressrun/backoffice/internal/domain/model"
)

var (
	oneHundred  = decimal.NewFromInt(100)
	oneThousand = decimal.NewFromInt(1000)
)

// centPlaces is the scale all absolute amounts are rounded to.
const centPlaces = 2

// cpmPlaces is the scale per-thousand figures are carried at. Four places
// keeps sub-cent CPM precision without accumulating representation noise.
const cpmPlaces = 4

// Diagnostic is a non-fatal finding raised during amount derivation. It rides
// along with an otherwise-successful result and never blocks the mutation.
type Diagnostic struct {
	Code    string
	Message string
}

// DiagnosticSuspiciousPricing flags an implied per-unit price below the
// configured floor. Legitimately low per-unit pricing exists for very large
// runs, so this warns rather than rejects.
const DiagnosticSuspiciousPricing = "suspicious_pricing"

// ErrAmountsExceedTotal reports that the vendor amount plus the broker cut
// overshoots the customer total.
var ErrAmountsExceedTotal = errors.New("vendor amount plus broker cut exceeds customer total")

// SizeBasedInput carries the inputs for rule-driven decomposition.
type SizeBasedInput struct {
	Rule *model.PricingRule
	// Quantity may be nil; totals are then left unset until it is known.
	Quantity *int64
	// PerUnitFloor is the sanity floor for the implied customer per-unit
	// price. Zero disables the check.
	PerUnitFloor decimal.Decimal
}

// VendorInput carries the inputs for vendor-routed amounts.
type VendorInput struct {
	VendorAmount  decimal.Decimal
	BrokerCut     decimal.Decimal
	CustomerTotal decimal.Decimal
}

// RoundCents rounds an amount to the cent using banker's rounding.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(centPlaces)
}

// Total converts a CPM figure to an absolute amount for quantity pieces,
// rounded to the cent.
func Total(cpm decimal.Decimal, quantity int64) decimal.Decimal {
	return RoundCents(cpm.Mul(decimal.NewFromInt(quantity)).Div(oneThousand))
}

// ComputeSizeBased decomposes a pricing rule into the per-tier snapshot.
//
// The CPM chain is built cost-up and reported top-down:
//
//	cost      = manufacturing + paper
//	mfg sell  = cost × (1 + manufacturer markup)
//	customer  = mfg sell × (1 + broker markup)
//
// so that each tier's CPM equals the upstream CPM minus that tier's margin
// CPM, terminating at raw manufacturing plus paper cost. Margin totals are
// computed as differences of the already-rounded tier totals, which makes
// margins plus the terminal amount sum to the customer total to the cent by
// construction.
func ComputeSizeBased(in SizeBasedInput) (*model.SettlementSnapshot, *Diagnostic, error) {
	if in.Rule == nil {
		return nil, nil, model.ErrNoPricingRule
	}
	if err := in.Rule.Validate(); err != nil {
		return nil, nil, fmt.Errorf("pricing rule %q: %w", in.Rule.SizeKey, err)
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, nil, errors.New("quantity must be positive")
	}

	costCPM := in.Rule.ManufacturingCPM.Add(in.Rule.PaperCPM()).Round(cpmPlaces)
	mfgCPM := applyMarkup(costCPM, in.Rule.ManufacturerMarkupPct)
	customerCPM := applyMarkup(mfgCPM, in.Rule.BrokerMarkupPct)

	brokerMarginCPM := customerCPM.Sub(mfgCPM)
	mfgMarginCPM := mfgCPM.Sub(costCPM)

	snap := &model.SettlementSnapshot{
		CustomerCPM:           &customerCPM,
		ManufacturerCPM:       &mfgCPM,
		CostCPM:               &costCPM,
		BrokerMarginCPM:       &brokerMarginCPM,
		ManufacturerMarginCPM: &mfgMarginCPM,
	}

	var diag *Diagnostic
	if in.Quantity != nil {
		qty := *in.Quantity
		customerTotal := Total(customerCPM, qty)
		mfgTotal := Total(mfgCPM, qty)
		costTotal := Total(costCPM, qty)
		brokerMarginTotal := customerTotal.Sub(mfgTotal)
		mfgMarginTotal := mfgTotal.Sub(costTotal)

		snap.CustomerTotal = &customerTotal
		snap.ManufacturerTotal = &mfgTotal
		snap.CostTotal = &costTotal
		snap.BrokerMarginTotal = &brokerMarginTotal
		snap.ManufacturerMarginTotal = &mfgMarginTotal

		diag = checkPerUnitFloor(customerCPM, in.PerUnitFloor)
	}

	return snap, diag, nil
}

// ComputeVendor validates and stores vendor-supplied amounts directly as the
// chain's tier amounts. No decomposition is performed.
func ComputeVendor(in VendorInput) (*model.SettlementSnapshot, error) {
	if in.VendorAmount.IsNegative() {
		return nil, errors.New("vendor amount must be non-negative")
	}
	if in.BrokerCut.IsNegative() {
		return nil, errors.New("broker cut must be non-negative")
	}
	if in.CustomerTotal.IsNegative() {
		return nil, errors.New("customer total must be non-negative")
	}
	if in.VendorAmount.Add(in.BrokerCut).GreaterThan(in.CustomerTotal) {
		return nil, fmt.Errorf("%w: %s + %s > %s", ErrAmountsExceedTotal,
			in.VendorAmount.StringFixed(centPlaces),
			in.BrokerCut.StringFixed(centPlaces),
			in.CustomerTotal.StringFixed(centPlaces))
	}

	vendorAmount := RoundCents(in.VendorAmount)
	brokerCut := RoundCents(in.BrokerCut)
	customerTotal := RoundCents(in.CustomerTotal)

	return &model.SettlementSnapshot{
		CustomerTotal: &customerTotal,
		VendorAmount:  &vendorAmount,
		BrokerCut:     &brokerCut,
	}, nil
}

// applyMarkup increases a CPM by pct percent, keeping CPM precision.
func applyMarkup(cpm, pct decimal.Decimal) decimal.Decimal {
	return cpm.Mul(oneHundred.Add(pct)).Div(oneHundred).Round(cpmPlaces)
}

func checkPerUnitFloor(customerCPM, floor decimal.Decimal) *Diagnostic {
	if floor.IsZero() || !floor.IsPositive() {
		return nil
	}
	perUnit := customerCPM.Div(oneThousand)
	if perUnit.GreaterThanOrEqual(floor) {
		return nil
	}
	return &Diagnostic{
		Code: DiagnosticSuspiciousPricing,
		Message: fmt.Sprintf("implied per-unit price %s is below the configured floor %s",
			perUnit.String(), floor.String()),
	}
}
