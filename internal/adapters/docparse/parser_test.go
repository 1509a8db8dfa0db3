package docparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultShape(t *testing.T) {
	p, err := New(DefaultMappings())
	require.NoError(t, err)

	fields, err := p.Parse(context.Background(), []byte(`{
		"customer_id": "cust-007",
		"reference_number": "PO-2031",
		"size": "8.5x11",
		"quantity": 5000,
		"required_files": {"artwork": 1, "data": 2}
	}`))
	require.NoError(t, err)

	require.NotNil(t, fields.CustomerID)
	assert.Equal(t, "cust-007", *fields.CustomerID)
	require.NotNil(t, fields.CustomerReferenceNumber)
	assert.Equal(t, "PO-2031", *fields.CustomerReferenceNumber)
	require.NotNil(t, fields.SizeKey)
	assert.Equal(t, "8.5x11", *fields.SizeKey)
	require.NotNil(t, fields.Quantity)
	assert.Equal(t, int64(5000), *fields.Quantity)
	require.NotNil(t, fields.RequiredArtwork)
	assert.Equal(t, 1, *fields.RequiredArtwork)
	require.NotNil(t, fields.RequiredDataFiles)
	assert.Equal(t, 2, *fields.RequiredDataFiles)
}

func TestParseAlternateFieldLocations(t *testing.T) {
	p, err := New(DefaultMappings())
	require.NoError(t, err)

	fields, err := p.Parse(context.Background(), []byte(`{
		"customer": {"id": "cust-009"},
		"po_number": "88231",
		"spec": {"size": "6x9"}
	}`))
	require.NoError(t, err)

	require.NotNil(t, fields.CustomerID)
	assert.Equal(t, "cust-009", *fields.CustomerID)
	require.NotNil(t, fields.CustomerReferenceNumber)
	assert.Equal(t, "88231", *fields.CustomerReferenceNumber)
	require.NotNil(t, fields.SizeKey)
	assert.Equal(t, "6x9", *fields.SizeKey)
	assert.Nil(t, fields.Quantity)
}

func TestParseUnusableValues(t *testing.T) {
	p, err := New(DefaultMappings())
	require.NoError(t, err)

	// A fractional quantity and an empty size are dropped, not errors.
	fields, err := p.Parse(context.Background(), []byte(`{
		"customer_id": "cust-007",
		"quantity": 12.5,
		"size": "   "
	}`))
	require.NoError(t, err)
	assert.Nil(t, fields.Quantity)
	assert.Nil(t, fields.SizeKey)
}

func TestParseNumericReferenceNumber(t *testing.T) {
	p, err := New(DefaultMappings())
	require.NoError(t, err)

	fields, err := p.Parse(context.Background(), []byte(`{"reference_number": 10452}`))
	require.NoError(t, err)
	require.NotNil(t, fields.CustomerReferenceNumber)
	assert.Equal(t, "10452", *fields.CustomerReferenceNumber)
}

func TestParseStringQuantity(t *testing.T) {
	p, err := New(DefaultMappings())
	require.NoError(t, err)

	fields, err := p.Parse(context.Background(), []byte(`{"quantity": " 2500 "}`))
	require.NoError(t, err)
	require.NotNil(t, fields.Quantity)
	assert.Equal(t, int64(2500), *fields.Quantity)
}

func TestParseMalformedDocument(t *testing.T) {
	p, err := New(DefaultMappings())
	require.NoError(t, err)

	_, err = p.Parse(context.Background(), []byte(`%PDF-1.7 not json`))
	require.Error(t, err)
}

func TestNewRejectsBadExpression(t *testing.T) {
	m := DefaultMappings()
	m.Quantity = "quantity["
	_, err := New(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity")
}

func TestEmptyMappingLeavesFieldUnset(t *testing.T) {
	m := DefaultMappings()
	m.RequiredArtwork = ""
	p, err := New(m)
	require.NoError(t, err)

	fields, err := p.Parse(context.Background(), []byte(`{"required_files": {"artwork": 3}}`))
	require.NoError(t, err)
	assert.Nil(t, fields.RequiredArtwork)
}
