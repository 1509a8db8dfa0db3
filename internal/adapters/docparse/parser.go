// Package docparse extracts job intake fields from customer order documents.
// Document shapes vary per customer, so field locations are configured as
// JMESPath expressions rather than hard-coded.
package docparse

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/pressrun/backoffice/internal/domain/model"
)

// Mappings holds one JMESPath expression per intake field. Empty expressions
// leave the field unset.
type Mappings struct {
	CustomerID              string
	CustomerReferenceNumber string
	SizeKey                 string
	Quantity                string
	RequiredArtwork         string
	RequiredDataFiles       string
}

// DefaultMappings covers the common order document shape.
func DefaultMappings() Mappings {
	return Mappings{
		CustomerID:              "customer_id || customer.id",
		CustomerReferenceNumber: "reference_number || po_number",
		SizeKey:                 "size || spec.size",
		Quantity:                "quantity",
		RequiredArtwork:         "required_files.artwork",
		RequiredDataFiles:       "required_files.data",
	}
}

// Parser maps JSON order documents to partial intake fields. Output is
// best-effort: a field whose expression fails or returns an unusable type is
// simply absent, never a parse failure.
type Parser struct {
	customerID      jmespath.JMESPath
	referenceNumber jmespath.JMESPath
	sizeKey         jmespath.JMESPath
	quantity        jmespath.JMESPath
	requiredArtwork jmespath.JMESPath
	requiredData    jmespath.JMESPath
}

// New compiles the configured expressions. Invalid expressions fail fast at
// construction so a bad config never reaches intake traffic.
func New(m Mappings) (*Parser, error) {
	p := &Parser{}
	for _, field := range []struct {
		name string
		expr string
		dst  *jmespath.JMESPath
	}{
		{"customer_id", m.CustomerID, &p.customerID},
		{"customer_reference_number", m.CustomerReferenceNumber, &p.referenceNumber},
		{"size_key", m.SizeKey, &p.sizeKey},
		{"quantity", m.Quantity, &p.quantity},
		{"required_artwork", m.RequiredArtwork, &p.requiredArtwork},
		{"required_data_files", m.RequiredDataFiles, &p.requiredData},
	} {
		if strings.TrimSpace(field.expr) == "" {
			continue
		}
		compiled, err := jmespath.Compile(field.expr)
		if err != nil {
			return nil, fmt.Errorf("compile %s mapping %q: %w", field.name, field.expr, err)
		}
		*field.dst = compiled
	}
	return p, nil
}

// Parse extracts whatever intake fields the document yields.
func (p *Parser) Parse(_ context.Context, raw []byte) (*model.PartialJobFields, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode order document: %w", err)
	}

	fields := &model.PartialJobFields{
		CustomerID:              searchString(p.customerID, doc),
		CustomerReferenceNumber: searchString(p.referenceNumber, doc),
		SizeKey:                 searchString(p.sizeKey, doc),
		Quantity:                searchInt64(p.quantity, doc),
		RequiredArtwork:         searchInt(p.requiredArtwork, doc),
		RequiredDataFiles:       searchInt(p.requiredData, doc),
	}
	return fields, nil
}

func search(expr jmespath.JMESPath, doc any) any {
	if expr == nil {
		return nil
	}
	result, err := expr.Search(doc)
	if err != nil {
		return nil
	}
	return result
}

func searchString(expr jmespath.JMESPath, doc any) *string {
	switch v := search(expr, doc).(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		return &trimmed
	case float64:
		// Reference numbers sometimes arrive as bare numbers.
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}

func searchInt64(expr jmespath.JMESPath, doc any) *int64 {
	switch v := search(expr, doc).(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil
		}
		n := int64(v)
		return &n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func searchInt(expr jmespath.JMESPath, doc any) *int {
	n := searchInt64(expr, doc)
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}
