package core

import "errors"

// Sentinel errors shared across repository implementations. Services match on
// these with errors.Is without depending on a concrete data layer.
var (
	// ErrJobNotFound is returned when a job does not exist or is soft-deleted.
	ErrJobNotFound = errors.New("job not found")
	// ErrSettlementAlreadyFrozen is returned when a second freeze is attempted.
	ErrSettlementAlreadyFrozen = errors.New("settlement snapshot is already frozen")
	// ErrCounterpartyNotFound is returned when a counterparty does not exist.
	ErrCounterpartyNotFound = errors.New("counterparty not found")
	// ErrChainLinkNotFound is returned when a chain document does not exist.
	ErrChainLinkNotFound = errors.New("chain document not found")
)
