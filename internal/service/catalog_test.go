package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pressrun/backoffice/internal/core"
	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
	"github.com/pressrun/backoffice/internal/mocks"
	"github.com/pressrun/backoffice/internal/testutil"
)

func newCatalogService(t *testing.T) (*CatalogService, *mocks.MockPricingRuleRepository, *mocks.MockCounterpartyRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	pricing := mocks.NewMockPricingRuleRepository(ctrl)
	parties := mocks.NewMockCounterpartyRepository(ctrl)
	return NewCatalogService(CatalogServiceOptions{Pricing: pricing, Parties: parties}), pricing, parties
}

func TestUpsertPricingRule(t *testing.T) {
	svc, pricing, _ := newCatalogService(t)
	rule := testutil.LetterPricingRule()
	pricing.EXPECT().Upsert(gomock.Any(), rule).Return(rule, nil)

	stored, err := svc.UpsertPricingRule(context.Background(), rule)
	require.NoError(t, err)
	assert.Equal(t, "8.5x11", stored.SizeKey)
}

func TestUpsertPricingRuleRejectsInvalid(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	rule := testutil.LetterPricingRule()
	rule.ManufacturingCPM = decimal.RequireFromString("-1")
	_, err := svc.UpsertPricingRule(context.Background(), rule)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.UpsertPricingRule(context.Background(), nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetPricingRuleNotFound(t *testing.T) {
	svc, pricing, _ := newCatalogService(t)
	pricing.EXPECT().GetBySizeKey(gomock.Any(), "3x5").Return(nil, model.ErrNoPricingRule)

	_, err := svc.GetPricingRule(context.Background(), "3x5")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateCounterparty(t *testing.T) {
	svc, _, parties := newCatalogService(t)
	req := testutil.ManufacturerParty("Lakeshore Press", "LKP")
	parties.EXPECT().Create(gomock.Any(), req).
		Return(&model.Counterparty{ID: "mfg-1", Name: "Lakeshore Press", Kind: model.CounterpartyManufacturer, Code: testutil.StringPtr("LKP")}, nil)

	party, err := svc.CreateCounterparty(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "mfg-1", party.ID)
	require.NotNil(t, party.Code)
	assert.Equal(t, "LKP", *party.Code)
}

func TestGetCounterpartyNotFound(t *testing.T) {
	svc, _, parties := newCatalogService(t)
	parties.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, core.ErrCounterpartyNotFound)

	_, err := svc.GetCounterparty(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetAuditTrail(t *testing.T) {
	ctrl := gomock.NewController(t)
	audit := mocks.NewMockAuditRepository(ctrl)
	trail := []*model.AuditEntry{
		{EntityRef: model.JobEntityRef("job-1"), Field: "status", TriggerEvent: model.TriggerJobCreated},
		{EntityRef: model.JobEntityRef("job-1"), Field: "customer_total", TriggerEvent: model.TriggerSettlementFrozen},
	}
	audit.EXPECT().TrailForJob(gomock.Any(), "job-1").Return(trail, nil)

	svc := NewAuditService(AuditServiceOptions{Audit: audit})
	got, err := svc.GetAuditTrail(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, trail, got)
}
