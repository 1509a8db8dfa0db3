package model

import (
	"errors"
	"strings"
	"time"
)

// CounterpartyKind distinguishes the downstream party types on a boundary.
type CounterpartyKind string

const (
	// CounterpartyManufacturer is a primary print manufacturer.
	CounterpartyManufacturer CounterpartyKind = "manufacturer"
	// CounterpartyVendor is a third-party subcontractor.
	CounterpartyVendor CounterpartyKind = "vendor"
)

// Valid returns true if the kind is known.
func (k CounterpartyKind) Valid() bool {
	return k == CounterpartyManufacturer || k == CounterpartyVendor
}

// Counterparty is a downstream party documents are issued to. Code, when
// registered, drives the per-counterparty document numbering sequence.
type Counterparty struct {
	ID        string           `json:"id"             db:"id"`
	Name      string           `json:"name"           db:"name"`
	Kind      CounterpartyKind `json:"kind"           db:"kind"`
	Code      *string          `json:"code,omitempty" db:"code"`
	CreatedAt time.Time        `json:"created_at"     db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"     db:"updated_at"`
}

// CreateCounterpartyRequest carries inputs for registering a counterparty.
type CreateCounterpartyRequest struct {
	Name string           `json:"name"`
	Kind CounterpartyKind `json:"kind"`
	Code *string          `json:"code,omitempty"`
}

// Validate checks the request fields.
func (r *CreateCounterpartyRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if !r.Kind.Valid() {
		return errors.New("invalid counterparty kind")
	}
	if r.Code != nil && strings.TrimSpace(*r.Code) == "" {
		return errors.New("code must be non-empty when provided")
	}
	return nil
}
