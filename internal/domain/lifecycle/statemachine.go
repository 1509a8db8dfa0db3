// Package lifecycle holds the pure job status state machine. It is free of
// persistence so transition rules can be tested in isolation; the service
// layer re-checks every transition against the persisted status inside one
// transaction.
package lifecycle

import (
	"fmt"

	"github.com/pressrun/backoffice/internal/domain/model"
)

// InvalidTransitionError reports a rejected status transition. The persisted
// status is left unchanged.
type InvalidTransitionError struct {
	From   model.JobStatus
	To     model.JobStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// Evidence is the subset of job state a guard inspects.
type Evidence struct {
	// HasIntakeFields is true when customer, quantity-or-spec, and the
	// customer reference number are all present.
	HasIntakeFields bool
	// CurrentProofVersion is the latest attached proof version; zero means
	// no proof has been attached.
	CurrentProofVersion int
	// ApprovalProofVersion is the proof version an approval refers to.
	ApprovalProofVersion int
	// FulfillmentConfirmed is true when fulfillment has been confirmed.
	FulfillmentConfirmed bool
}

// adjacency is the sequential transition table. Cancellation is handled
// separately since it is reachable from any non-terminal status.
var adjacency = map[model.JobStatus]model.JobStatus{
	model.JobStatusPending:       model.JobStatusInProduction,
	model.JobStatusInProduction:  model.JobStatusReadyForProof,
	model.JobStatusReadyForProof: model.JobStatusProofApproved,
	model.JobStatusProofApproved: model.JobStatusCompleted,
}

// CanTransition validates a from → to edge against the transition table and
// its guard, returning an *InvalidTransitionError when the edge is rejected.
func CanTransition(from, to model.JobStatus, ev Evidence) error {
	if !to.Valid() {
		return &InvalidTransitionError{From: from, To: to, Reason: "unknown target status"}
	}
	if from.Terminal() {
		return &InvalidTransitionError{From: from, To: to, Reason: "status is terminal"}
	}
	if to == model.JobStatusCancelled {
		return nil
	}
	if adjacency[from] != to {
		return &InvalidTransitionError{From: from, To: to, Reason: "not an adjacent status"}
	}
	return checkGuard(from, to, ev)
}

func checkGuard(from, to model.JobStatus, ev Evidence) error {
	switch to {
	case model.JobStatusInProduction:
		if !ev.HasIntakeFields {
			return &InvalidTransitionError{From: from, To: to, Reason: "intake fields incomplete"}
		}
	case model.JobStatusReadyForProof:
		if ev.CurrentProofVersion == 0 {
			return &InvalidTransitionError{From: from, To: to, Reason: "no proof document attached"}
		}
	case model.JobStatusProofApproved:
		if ev.CurrentProofVersion == 0 {
			return &InvalidTransitionError{From: from, To: to, Reason: "no proof document attached"}
		}
		if ev.ApprovalProofVersion != ev.CurrentProofVersion {
			return &InvalidTransitionError{
				From: from, To: to,
				Reason: fmt.Sprintf("approval is for proof version %d, current is %d",
					ev.ApprovalProofVersion, ev.CurrentProofVersion),
			}
		}
	case model.JobStatusCompleted:
		if !ev.FulfillmentConfirmed {
			return &InvalidTransitionError{From: from, To: to, Reason: "fulfillment not confirmed"}
		}
	}
	return nil
}

// AutoAdvanceTarget returns the status a pending job should advance to once
// intake fields are complete, or the current status when no auto-advance
// applies.
func AutoAdvanceTarget(current model.JobStatus, ev Evidence) model.JobStatus {
	if current == model.JobStatusPending && ev.HasIntakeFields {
		return model.JobStatusInProduction
	}
	return current
}
