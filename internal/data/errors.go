package data

import "github.com/pressrun/backoffice/internal/core"

// Sentinel errors are defined in core so callers can match them without
// importing this package. The aliases keep repository code terse.
var (
	ErrJobNotFound             = core.ErrJobNotFound
	ErrSettlementAlreadyFrozen = core.ErrSettlementAlreadyFrozen
	ErrCounterpartyNotFound    = core.ErrCounterpartyNotFound
	ErrChainLinkNotFound       = core.ErrChainLinkNotFound
)
