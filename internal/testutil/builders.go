package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/pressrun/backoffice/internal/domain/model"
)

// JobRequestBuilder builds CreateJobRequest values for tests.
type JobRequestBuilder struct {
	req model.CreateJobRequest
}

// NewJobRequest starts a builder with a valid two-tier baseline.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: model.CreateJobRequest{
			CustomerID:              "cust-001",
			CustomerReferenceNumber: "PO-TEST-1001",
			Routing:                 model.NewTwoTierPlan(),
			SizeKey:                 "8.5x11",
			Quantity:                Int64Ptr(5000),
			Actor:                   "test",
		},
	}
}

// WithCustomer sets the customer ID.
func (b *JobRequestBuilder) WithCustomer(id string) *JobRequestBuilder {
	b.req.CustomerID = id
	return b
}

// WithReferenceNumber sets the customer reference number.
func (b *JobRequestBuilder) WithReferenceNumber(ref string) *JobRequestBuilder {
	b.req.CustomerReferenceNumber = ref
	return b
}

// WithSize sets the size key and quantity.
func (b *JobRequestBuilder) WithSize(sizeKey string, quantity int64) *JobRequestBuilder {
	b.req.SizeKey = sizeKey
	b.req.Quantity = Int64Ptr(quantity)
	return b
}

// WithoutPricingInputs clears the size key and quantity.
func (b *JobRequestBuilder) WithoutPricingInputs() *JobRequestBuilder {
	b.req.SizeKey = ""
	b.req.Quantity = nil
	return b
}

// WithRequiredFiles sets the artwork and data file requirements.
func (b *JobRequestBuilder) WithRequiredFiles(artwork, dataFiles int) *JobRequestBuilder {
	b.req.RequiredArtwork = IntPtr(artwork)
	b.req.RequiredDataFiles = IntPtr(dataFiles)
	return b
}

// WithManufacturer sets the manufacturer counterparty ID.
func (b *JobRequestBuilder) WithManufacturer(id string) *JobRequestBuilder {
	b.req.ManufacturerID = StringPtr(id)
	return b
}

// WithVendorRouting switches the request to a three-tier vendor plan.
func (b *JobRequestBuilder) WithVendorRouting(vendorID string, vendorAmount, brokerCut, customerTotal string) *JobRequestBuilder {
	plan, err := model.NewVendorPlan(vendorID,
		decimal.RequireFromString(vendorAmount),
		decimal.RequireFromString(brokerCut),
		decimal.RequireFromString(customerTotal))
	if err != nil {
		panic(err)
	}
	b.req.Routing = plan
	return b
}

// WithActor sets the acting principal recorded in the audit trail.
func (b *JobRequestBuilder) WithActor(actor string) *JobRequestBuilder {
	b.req.Actor = actor
	return b
}

// Build returns the assembled request.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	req := b.req
	return &req
}

// LetterPricingRule returns the catalog rule for 8.5x11 used across tests:
// raw cost 60 CPM, manufacturer price 75 CPM, customer price 90 CPM.
func LetterPricingRule() *model.PricingRule {
	return &model.PricingRule{
		SizeKey:               "8.5x11",
		ManufacturingCPM:      decimal.RequireFromString("50"),
		PaperWeightPerM:       decimal.RequireFromString("10"),
		PaperCostPerLb:        decimal.RequireFromString("1"),
		ManufacturerMarkupPct: decimal.RequireFromString("25"),
		BrokerMarkupPct:       decimal.RequireFromString("20"),
	}
}

// ManufacturerParty returns a coded manufacturer registration request.
func ManufacturerParty(name, code string) *model.CreateCounterpartyRequest {
	return &model.CreateCounterpartyRequest{
		Name: name,
		Kind: model.CounterpartyManufacturer,
		Code: StringPtr(code),
	}
}

// VendorParty returns a vendor registration request without a code.
func VendorParty(name string) *model.CreateCounterpartyRequest {
	return &model.CreateCounterpartyRequest{
		Name: name,
		Kind: model.CounterpartyVendor,
	}
}
