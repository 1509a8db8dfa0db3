// Package model defines the core data types shared across the pressrun back office.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RoutingType describes the shape of a job's settlement chain.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type RoutingType string

// JobStatus represents the current lifecycle status of a job.
type JobStatus string

const (
	// RoutingTwoTier routes broker → primary manufacturer.
	RoutingTwoTier RoutingType = "two-tier"
	// RoutingThreeTierVendor routes broker → third-party vendor.
	RoutingThreeTierVendor RoutingType = "three-tier-vendor"

	// JobStatusPending indicates a job has been created but production has not started.
	JobStatusPending JobStatus = "pending"
	// JobStatusInProduction indicates a job has all intake fields and is in production.
	JobStatusInProduction JobStatus = "in_production"
	// JobStatusReadyForProof indicates a proof document has been attached.
	JobStatusReadyForProof JobStatus = "ready_for_proof"
	// JobStatusProofApproved indicates the current proof version has been approved.
	JobStatusProofApproved JobStatus = "proof_approved"
	// JobStatusCompleted indicates fulfillment has been confirmed.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusCancelled is reachable from any non-terminal status.
	JobStatusCancelled JobStatus = "cancelled"
)

// UnmarshalText implements encoding.TextUnmarshaler for RoutingType to allow env/JSON parsing.
func (rt *RoutingType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	r := RoutingType(v)
	if r.Valid() {
		*rt = r
		return nil
	}
	return fmt.Errorf("invalid RoutingType: %q", v)
}

// Valid returns true if the RoutingType is one of the supported chain shapes.
func (rt RoutingType) Valid() bool {
	return rt == RoutingTwoTier || rt == RoutingThreeTierVendor
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusInProduction, JobStatusReadyForProof,
		JobStatusProofApproved, JobStatusCompleted, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// FileKind identifies a deliverable file category tracked by the readiness counters.
type FileKind string

const (
	// FileKindArtwork is a print-ready artwork file.
	FileKindArtwork FileKind = "artwork"
	// FileKindData is a mailing/personalization data file.
	FileKindData FileKind = "data"
)

// Valid returns true if the FileKind is a tracked category.
func (k FileKind) Valid() bool {
	return k == FileKindArtwork || k == FileKindData
}

// VendorRouting carries the mandatory-together inputs for a vendor-routed job.
// CustomerTotal is what the end customer pays and is supplied independently;
// derivation rejects the plan when the vendor amount plus the broker cut
// overshoots it.
type VendorRouting struct {
	VendorID      string          `json:"vendor_id"`
	VendorAmount  decimal.Decimal `json:"vendor_amount"`
	BrokerCut     decimal.Decimal `json:"broker_cut"`
	CustomerTotal decimal.Decimal `json:"customer_total"`
}

// RoutingPlan is the validated tagged union of chain shapes. Vendor is non-nil
// exactly when Type is RoutingThreeTierVendor.
type RoutingPlan struct {
	Type   RoutingType    `json:"type"`
	Vendor *VendorRouting `json:"vendor,omitempty"`
}

// NewTwoTierPlan builds the plan for a broker → manufacturer job.
func NewTwoTierPlan() RoutingPlan {
	return RoutingPlan{Type: RoutingTwoTier}
}

// NewVendorPlan builds the plan for a vendor-routed job. All inputs are
// required together; partial presence is rejected before any row is written.
// Whether the amounts fit inside the customer total is checked at derivation,
// not here.
func NewVendorPlan(vendorID string, vendorAmount, brokerCut, customerTotal decimal.Decimal) (RoutingPlan, error) {
	if strings.TrimSpace(vendorID) == "" {
		return RoutingPlan{}, errors.New("vendor id is required for vendor routing")
	}
	if vendorAmount.IsNegative() {
		return RoutingPlan{}, errors.New("vendor amount must be non-negative")
	}
	if brokerCut.IsNegative() {
		return RoutingPlan{}, errors.New("broker cut must be non-negative")
	}
	if customerTotal.IsNegative() {
		return RoutingPlan{}, errors.New("customer total must be non-negative")
	}
	return RoutingPlan{
		Type: RoutingThreeTierVendor,
		Vendor: &VendorRouting{
			VendorID:      vendorID,
			VendorAmount:  vendorAmount,
			BrokerCut:     brokerCut,
			CustomerTotal: customerTotal,
		},
	}, nil
}

// Validate checks the plan's internal consistency.
func (p RoutingPlan) Validate() error {
	switch p.Type {
	case RoutingTwoTier:
		if p.Vendor != nil {
			return errors.New("two-tier plan must not carry vendor routing")
		}
	case RoutingThreeTierVendor:
		if p.Vendor == nil {
			return errors.New("vendor routing fields are required")
		}
		if strings.TrimSpace(p.Vendor.VendorID) == "" {
			return errors.New("vendor id is required")
		}
		if p.Vendor.VendorAmount.IsNegative() || p.Vendor.BrokerCut.IsNegative() || p.Vendor.CustomerTotal.IsNegative() {
			return errors.New("vendor amounts must be non-negative")
		}
	default:
		return fmt.Errorf("invalid routing type: %q", p.Type)
	}
	return nil
}

// Job is the canonical job entity. Monetary figures live in the frozen
// settlement snapshot; the job stores computed numbers, never a live pricing
// rule reference.
type Job struct {
	ID                      string      `json:"id"                        db:"id"`
	JobNumber               int64       `json:"job_number"                db:"job_number"`
	CustomerID              string      `json:"customer_id"               db:"customer_id"`
	RoutingType             RoutingType `json:"routing_type"              db:"routing_type"`
	Status                  JobStatus   `json:"status"                    db:"status"`
	CustomerReferenceNumber string      `json:"customer_reference_number" db:"customer_reference_number"`
	SizeKey                 string      `json:"size_key,omitempty"        db:"size_key"`
	Quantity                *int64      `json:"quantity,omitempty"        db:"quantity"`

	// Vendor routing counterparty; set only for three-tier-vendor jobs.
	VendorID *string `json:"vendor_id,omitempty" db:"vendor_id"`
	// Manufacturer counterparty for two-tier jobs; optional.
	ManufacturerID *string `json:"manufacturer_id,omitempty" db:"manufacturer_id"`

	// Readiness counters. A nil requirement means the category was never
	// declared and the job must be marked ready manually.
	RequiredArtwork      *int       `json:"required_artwork,omitempty"    db:"required_artwork"`
	UploadedArtwork      int        `json:"uploaded_artwork"              db:"uploaded_artwork"`
	RequiredDataFiles    *int       `json:"required_data_files,omitempty" db:"required_data_files"`
	UploadedDataFiles    int        `json:"uploaded_data_files"           db:"uploaded_data_files"`
	IsReadyForProduction bool       `json:"is_ready_for_production"       db:"is_ready_for_production"`
	ReadySubmittedAt     *time.Time `json:"ready_submitted_at,omitempty"  db:"ready_submitted_at"`

	// Proof tracking. A newer proof version invalidates prior approvals.
	CurrentProofVersion  int  `json:"current_proof_version"            db:"current_proof_version"`
	ApprovedProofVersion *int `json:"approved_proof_version,omitempty" db:"approved_proof_version"`

	// Settlement snapshot, frozen once. Nil until amounts are derived.
	Settlement *SettlementSnapshot `json:"settlement,omitempty"`
	// SettlementFrozenAt is set when proof approval freezes the snapshot.
	SettlementFrozenAt *time.Time `json:"settlement_frozen_at,omitempty" db:"settlement_frozen_at"`

	FulfilledAt *time.Time `json:"fulfilled_at,omitempty" db:"fulfilled_at"`
	CreatedAt   time.Time  `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"             db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"   db:"deleted_at"`
}

// ReadyByCount reports whether a single counter category is satisfied.
// A nil requirement is never auto-satisfied.
func ReadyByCount(required *int, uploaded int) bool {
	return required != nil && uploaded >= *required
}

// DerivedReady reports whether both declared categories are satisfied.
// Jobs with no declared requirements at all never auto-flip; they need the
// manual override path.
func (j *Job) DerivedReady() bool {
	if j.RequiredArtwork == nil && j.RequiredDataFiles == nil {
		return false
	}
	artworkOK := j.RequiredArtwork == nil || j.UploadedArtwork >= *j.RequiredArtwork
	dataOK := j.RequiredDataFiles == nil || j.UploadedDataFiles >= *j.RequiredDataFiles
	return artworkOK && dataOK
}

// CreateJobRequest carries intake inputs for job creation.
type CreateJobRequest struct {
	CustomerID              string      `json:"customer_id"`
	CustomerReferenceNumber string      `json:"customer_reference_number"`
	Routing                 RoutingPlan `json:"routing"`
	SizeKey                 string      `json:"size_key,omitempty"`
	Quantity                *int64      `json:"quantity,omitempty"`
	RequiredArtwork         *int        `json:"required_artwork,omitempty"`
	RequiredDataFiles       *int        `json:"required_data_files,omitempty"`
	// ManufacturerID identifies the counterparty on the broker → manufacturer
	// boundary for two-tier jobs. Optional; document numbering falls back to
	// the job-number form when absent or uncoded.
	ManufacturerID *string `json:"manufacturer_id,omitempty"`
	Actor          string  `json:"actor,omitempty"`
}

// Validate performs structural validation of the request. Business validation
// (reference number presence, vendor field completeness) lives in the service
// layer so it can map to machine-readable rejection codes.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return errors.New("customer id is required")
	}
	if err := r.Routing.Validate(); err != nil {
		return err
	}
	if r.Quantity != nil && *r.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if r.RequiredArtwork != nil && *r.RequiredArtwork < 0 {
		return errors.New("required artwork count must be >= 0")
	}
	if r.RequiredDataFiles != nil && *r.RequiredDataFiles < 0 {
		return errors.New("required data files count must be >= 0")
	}
	return nil
}

// ReadinessProgress is returned by RecordFileAttached.
type ReadinessProgress struct {
	Ready             bool `json:"ready"`
	BecameReady       bool `json:"became_ready"`
	UploadedArtwork   int  `json:"uploaded_artwork"`
	RequiredArtwork   *int `json:"required_artwork,omitempty"`
	UploadedDataFiles int  `json:"uploaded_data_files"`
	RequiredDataFiles *int `json:"required_data_files,omitempty"`
}

// TransitionContext carries the evidence a guarded status transition needs.
type TransitionContext struct {
	// ProofVersion is the proof version an approval refers to.
	ProofVersion int `json:"proof_version,omitempty"`
	// FulfillmentConfirmed must be true for the transition to completed.
	FulfillmentConfirmed bool `json:"fulfillment_confirmed,omitempty"`
	// Actor is recorded on the audit trail.
	Actor string `json:"actor,omitempty"`
	// Reason is recorded for cancellations.
	Reason string `json:"reason,omitempty"`
}
