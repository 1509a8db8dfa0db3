package config

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SettlementConfig contains settlement calculator guardrails.
type SettlementConfig struct {
	// PerUnitFloor is the minimum plausible implied per-unit customer price,
	// expressed as a decimal string in dollars. Derivations below the floor
	// still succeed but carry a suspicious-pricing diagnostic.
	PerUnitFloor string `env:"SETTLEMENT_PER_UNIT_FLOOR" envDefault:"0.01"`
}

// Sanitize normalises the floor value and rejects unparseable input by
// falling back to the default.
func (s *SettlementConfig) Sanitize() {
	s.PerUnitFloor = strings.TrimSpace(s.PerUnitFloor)
	if _, err := decimal.NewFromString(s.PerUnitFloor); err != nil {
		s.PerUnitFloor = "0.01"
	}
}

// PerUnitFloorAmount returns the floor as a decimal. Sanitize must have run
// first; a still-invalid value yields zero, which disables the check.
func (s *SettlementConfig) PerUnitFloorAmount() decimal.Decimal {
	amount, err := decimal.NewFromString(s.PerUnitFloor)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
