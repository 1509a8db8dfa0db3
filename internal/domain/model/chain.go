package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Boundary identifies one pairwise relationship in the settlement chain.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Boundary string

// DocumentType identifies the kind of chain document flowing across a boundary.
type DocumentType string

// ChainLinkStatus is the lifecycle status of a chain document row.
type ChainLinkStatus string

const (
	// BoundaryBrokerManufacturer is the single boundary of a two-tier job.
	BoundaryBrokerManufacturer Boundary = "broker_manufacturer"
	// BoundaryBrokerVendor is the single boundary of a vendor-routed job.
	BoundaryBrokerVendor Boundary = "broker_vendor"

	// DocumentPurchaseOrder is a purchase order issued downstream.
	DocumentPurchaseOrder DocumentType = "purchase_order"
	// DocumentInvoice is an invoice flowing back upstream.
	DocumentInvoice DocumentType = "invoice"

	// ChainLinkIssued is the live status of an emitted document.
	ChainLinkIssued ChainLinkStatus = "issued"
	// ChainLinkCancelled marks a voided document; a replacement may be emitted.
	ChainLinkCancelled ChainLinkStatus = "cancelled"
)

// UnmarshalText implements encoding.TextUnmarshaler for Boundary.
func (b *Boundary) UnmarshalText(text []byte) error {
	v := Boundary(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid Boundary: %q", string(text))
	}
	*b = v
	return nil
}

// Valid returns true if the Boundary is known.
func (b Boundary) Valid() bool {
	return b == BoundaryBrokerManufacturer || b == BoundaryBrokerVendor
}

// Valid returns true if the DocumentType is known.
func (d DocumentType) Valid() bool {
	return d == DocumentPurchaseOrder || d == DocumentInvoice
}

// NumberPrefix returns the prefix used for job-number-derived document numbers.
func (d DocumentType) NumberPrefix() string {
	if d == DocumentInvoice {
		return "INV"
	}
	return "PO"
}

// BoundariesFor enumerates the ordered tier boundaries for a routing type.
func BoundariesFor(rt RoutingType) []Boundary {
	switch rt {
	case RoutingThreeTierVendor:
		return []Boundary{BoundaryBrokerVendor}
	case RoutingTwoTier:
		return []Boundary{BoundaryBrokerManufacturer}
	default:
		return nil
	}
}

// ChainLink is one purchase order or invoice row representing a boundary's
// financial obligation for a job. At most one non-cancelled link of a given
// document type exists per (job, boundary).
type ChainLink struct {
	ID       string          `json:"id"        db:"id"`
	JobID    string          `json:"job_id"    db:"job_id"`
	Boundary Boundary        `json:"boundary"  db:"boundary"`
	DocType  DocumentType    `json:"doc_type"  db:"doc_type"`
	Status   ChainLinkStatus `json:"status"    db:"status"`

	// DocumentNumber is unique per document type.
	DocumentNumber string `json:"document_number" db:"document_number"`
	// ReferenceNumber is copied from the job's customer reference number,
	// never from a prior document, so any party traces back in one hop.
	ReferenceNumber string `json:"reference_number" db:"reference_number"`

	// OriginParty and ReceivingParty name the two sides of the boundary.
	OriginParty    string  `json:"origin_party"              db:"origin_party"`
	ReceivingParty *string `json:"receiving_party,omitempty" db:"receiving_party"`

	// Amount is the obligation flowing across this boundary.
	Amount decimal.Decimal `json:"amount" db:"amount"`
	// OriginalAmount is the customer-tier total for traceability.
	OriginalAmount *decimal.Decimal `json:"original_amount,omitempty" db:"original_amount"`
	// MarginAmount is the margin retained upstream of this boundary.
	MarginAmount *decimal.Decimal `json:"margin_amount,omitempty" db:"margin_amount"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FallbackDocumentNumber builds the deterministic job-number-derived document
// number used when the counterparty has no registered code. Job numbers are
// unique, so no second uniqueness round-trip is needed.
func FallbackDocumentNumber(docType DocumentType, jobNumber int64) string {
	return fmt.Sprintf("%s-%d", docType.NumberPrefix(), jobNumber)
}

// FormatSequencedNumber renders a counterparty-coded document number.
func FormatSequencedNumber(code string, seq int64) string {
	return fmt.Sprintf("%s-%06d", code, seq)
}
