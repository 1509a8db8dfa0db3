package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressrun/backoffice/internal/domain/model"
)

// PricingRuleRepo provides database operations for pricing rules. Jobs never
// hold a live reference to a rule; they freeze computed numbers, so rule
// edits here cannot retroactively alter historical jobs.
type PricingRuleRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPricingRuleRepo creates a PricingRuleRepo with the given database handle.
func NewPricingRuleRepo(db *sql.DB, tp TimeProvider) *PricingRuleRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &PricingRuleRepo{DB: db, timeProvider: tp}
}

const pricingRuleColumns = `
  id,
  size_key,
  manufacturing_cpm,
  paper_weight_per_m,
  paper_cost_per_lb,
  manufacturer_markup_pct,
  broker_markup_pct,
  created_at,
  updated_at
`

// GetBySizeKey returns the rule pricing a size key. Absence is
// model.ErrNoPricingRule; amount derivation never silently defaults.
func (r *PricingRuleRepo) GetBySizeKey(ctx context.Context, sizeKey string) (*model.PricingRule, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+pricingRuleColumns+`
		FROM pricing_rules
		WHERE size_key = $1
	`, sizeKey)
	rule, err := scanPricingRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNoPricingRule
	}
	if err != nil {
		return nil, fmt.Errorf("get pricing rule: %w", err)
	}
	return rule, nil
}

// Upsert creates or replaces the rule for a size key.
func (r *PricingRuleRepo) Upsert(ctx context.Context, rule *model.PricingRule) (*model.PricingRule, error) {
	if rule == nil {
		return nil, errors.New("pricing rule is required")
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO pricing_rules (
			size_key, manufacturing_cpm, paper_weight_per_m, paper_cost_per_lb,
			manufacturer_markup_pct, broker_markup_pct, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		ON CONFLICT (size_key) DO UPDATE SET
			manufacturing_cpm = EXCLUDED.manufacturing_cpm,
			paper_weight_per_m = EXCLUDED.paper_weight_per_m,
			paper_cost_per_lb = EXCLUDED.paper_cost_per_lb,
			manufacturer_markup_pct = EXCLUDED.manufacturer_markup_pct,
			broker_markup_pct = EXCLUDED.broker_markup_pct,
			updated_at = EXCLUDED.updated_at
		RETURNING `+pricingRuleColumns,
		rule.SizeKey,
		rule.ManufacturingCPM,
		rule.PaperWeightPerM,
		rule.PaperCostPerLb,
		rule.ManufacturerMarkupPct,
		rule.BrokerMarkupPct,
		now,
	)
	stored, err := scanPricingRule(row)
	if err != nil {
		return nil, fmt.Errorf("upsert pricing rule: %w", err)
	}
	return stored, nil
}

// List returns all pricing rules ordered by size key.
func (r *PricingRuleRepo) List(ctx context.Context) ([]*model.PricingRule, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+pricingRuleColumns+`
		FROM pricing_rules
		ORDER BY size_key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pricing rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.PricingRule
	for rows.Next() {
		rule, scanErr := scanPricingRule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan pricing rule: %w", scanErr)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pricing rules: %w", err)
	}
	return rules, nil
}

func scanPricingRule(scanner rowScanner) (*model.PricingRule, error) {
	var rule model.PricingRule
	if err := scanner.Scan(
		&rule.ID,
		&rule.SizeKey,
		&rule.ManufacturingCPM,
		&rule.PaperWeightPerM,
		&rule.PaperCostPerLb,
		&rule.ManufacturerMarkupPct,
		&rule.BrokerMarkupPct,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}
