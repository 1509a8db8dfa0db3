// Package devseed populates a development database with a baseline pricing
// catalog and counterparty registry so jobs can be created immediately.
package devseed

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pressrun/backoffice/internal/data"
	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
	"github.com/pressrun/backoffice/internal/service"
)

// Services groups the services needed for seeding.
type Services struct {
	Catalog *service.CatalogService
}

// NewServices builds seed services directly over the database handle.
func NewServices(db *sql.DB) Services {
	tp := &data.RealTimeProvider{}
	return Services{
		Catalog: service.NewCatalogService(service.CatalogServiceOptions{
			Pricing: data.NewPricingRuleRepo(db, tp),
			Parties: data.NewCounterpartyRepo(db, tp),
		}),
	}
}

// Run seeds pricing rules and counterparties. Seeding is idempotent: rules
// upsert by size key and counterparties that already exist are skipped.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	rules := seedPricingRules(ctx, svcs.Catalog, logger)
	parties := seedCounterparties(ctx, svcs.Catalog, logger)

	logger.InfoContext(ctx, "dev seed complete",
		"pricing_rules", rules,
		"counterparties", parties,
	)
	return nil
}

func seedPricingRules(ctx context.Context, svc *service.CatalogService, logger *slog.Logger) int {
	count := 0
	for _, rule := range defaultPricingRules() {
		if _, err := svc.UpsertPricingRule(ctx, rule); err != nil {
			logger.ErrorContext(ctx, "seed pricing rule failed", "size_key", rule.SizeKey, "error", err)
			continue
		}
		count++
	}
	return count
}

func defaultPricingRules() []*model.PricingRule {
	return []*model.PricingRule{
		{
			SizeKey:               "8.5x11",
			ManufacturingCPM:      decimal.RequireFromString("50"),
			PaperWeightPerM:       decimal.RequireFromString("10"),
			PaperCostPerLb:        decimal.RequireFromString("1"),
			ManufacturerMarkupPct: decimal.RequireFromString("25"),
			BrokerMarkupPct:       decimal.RequireFromString("20"),
		},
		{
			SizeKey:               "6x9",
			ManufacturingCPM:      decimal.RequireFromString("32"),
			PaperWeightPerM:       decimal.RequireFromString("6.5"),
			PaperCostPerLb:        decimal.RequireFromString("1.1"),
			ManufacturerMarkupPct: decimal.RequireFromString("22"),
			BrokerMarkupPct:       decimal.RequireFromString("18"),
		},
		{
			SizeKey:               "11x17",
			ManufacturingCPM:      decimal.RequireFromString("88"),
			PaperWeightPerM:       decimal.RequireFromString("20"),
			PaperCostPerLb:        decimal.RequireFromString("0.95"),
			ManufacturerMarkupPct: decimal.RequireFromString("25"),
			BrokerMarkupPct:       decimal.RequireFromString("20"),
		},
	}
}

func seedCounterparties(ctx context.Context, svc *service.CatalogService, logger *slog.Logger) int {
	count := 0
	for _, req := range defaultCounterparties() {
		if _, err := svc.CreateCounterparty(ctx, req); err != nil {
			if apperrors.IsConflict(err) {
				continue
			}
			logger.ErrorContext(ctx, "seed counterparty failed", "name", req.Name, "error", err)
			continue
		}
		count++
	}
	return count
}

func defaultCounterparties() []*model.CreateCounterpartyRequest {
	codeOf := func(c string) *string { return &c }
	return []*model.CreateCounterpartyRequest{
		{Name: "Lakeshore Press", Kind: model.CounterpartyManufacturer, Code: codeOf("LKP")},
		{Name: "Summit Print Works", Kind: model.CounterpartyManufacturer, Code: codeOf("SPW")},
		{Name: "Harbor Mailing Services", Kind: model.CounterpartyVendor, Code: codeOf("HMS")},
		{Name: "Crestline Bindery", Kind: model.CounterpartyVendor},
	}
}
