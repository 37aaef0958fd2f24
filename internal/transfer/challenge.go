// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
)

// ErrChallengeActive signals that a challenge-creation call is already in
// flight or an issued challenge is still pending for this attempt. A second
// request must be ignored, never queued.
var ErrChallengeActive = errors.New("transfer: a challenge is already active for this attempt")

// ChallengeState is the explicit finite-state machine for one second-factor
// orchestration. Illegal combinations ("validating and sending at once") are
// unrepresentable by construction.
type ChallengeState string

const (
	// StateIdle: no challenge requested yet.
	StateIdle ChallengeState = "idle"
	// StateRequested: creation call in flight with the core.
	StateRequested ChallengeState = "requested"
	// StateAwaitingProof: challenge issued, waiting for the user's code(s).
	StateAwaitingProof ChallengeState = "awaiting_proof"
	// StateValidated: proof accepted; the handle may be consumed exactly once.
	StateValidated ChallengeState = "validated"
	// StateConfirmed: handle consumed by a submission. Terminal.
	StateConfirmed ChallengeState = "confirmed"
	// StateRejected: attempt cap exhausted on wrong codes. Terminal.
	StateRejected ChallengeState = "rejected"
	// StateExpired: server-declared deadline passed. Terminal; restart from Idle.
	StateExpired ChallengeState = "expired"
	// StateDiscarded: attempt cancelled by the user. Terminal.
	StateDiscarded ChallengeState = "discarded"
)

// terminal reports whether no further transitions are possible.
func (s ChallengeState) terminal() bool {
	switch s {
	case StateConfirmed, StateRejected, StateExpired, StateDiscarded:
		return true
	}
	return false
}

// Challenge is the server-issued second-factor artifact. All limits are the
// server's; the client never extends them.
type Challenge struct {
	PublicID           string        `json:"public_id"`
	ProofKinds         []string      `json:"proof_kinds"`
	ExpiresAt          time.Time     `json:"expires_at"`
	MaxAttempts        int           `json:"max_attempts"`
	ConfirmationWindow time.Duration `json:"-"`
}

// ProofOutcome is the core's verdict on a submitted code.
type ProofOutcome int

const (
	// ProofValidated: the code matched.
	ProofValidated ProofOutcome = iota
	// ProofRejected: wrong code; retryable up to the attempt cap.
	ProofRejected
	// ProofExpired: the challenge lapsed server-side. Terminal.
	ProofExpired
)

// Challenger is the core banking port for challenge issuance and validation.
type Challenger interface {
	Create(ctx context.Context, operation OperationType, metadata map[string]string, clientIP string) (*Challenge, error)
	Validate(ctx context.Context, publicID, otpCode, emailCode string) (ProofOutcome, error)
}

// CapabilityChecker answers whether an operation type requires a challenge.
// Satisfied by [*CapabilityCache].
type CapabilityChecker interface {
	RequiresChallenge(ctx context.Context, operation OperationType) (bool, error)
}

// # Orchestrator

// Orchestrator runs the second-factor state machine for ONE transfer attempt.
//
// # Lifecycle
//
//	Idle → Requested → AwaitingProof → Validated → Confirmed
//	                        │              └────── (consume)
//	                        ├→ Rejected  (attempt cap exhausted)
//	                        └→ Expired   (server deadline passed)
//	any non-terminal state → Discarded  (user cancelled)
//
// # Concurrency
//
// Methods are mutex-guarded: a second Begin while one is in flight returns
// [ErrChallengeActive] instead of queueing a duplicate creation call.
type Orchestrator struct {
	challenger   Challenger
	capabilities CapabilityChecker

	mu           sync.Mutex
	state        ChallengeState
	challenge    *Challenge
	attemptsUsed int

	// now is swapped in tests to drive the deadline check.
	now func() time.Time
}

// NewOrchestrator constructs an [Orchestrator] in the Idle state.
func NewOrchestrator(challenger Challenger, capabilities CapabilityChecker) *Orchestrator {
	return &Orchestrator{
		challenger:   challenger,
		capabilities: capabilities,
		state:        StateIdle,
		now:          time.Now,
	}
}

// State returns the current machine state.
func (orchestrator *Orchestrator) State() ChallengeState {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	return orchestrator.state
}

// Current returns the issued challenge, or nil before issuance.
func (orchestrator *Orchestrator) Current() *Challenge {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	return orchestrator.challenge
}

/*
Begin decides whether a challenge is needed and, if so, requests one.

Description: Consults the per-session capability table first. When the
operation type needs no challenge the machine is not entered at all and
(false, nil, nil) is returned — the caller may submit immediately. Otherwise
the creation call runs and the machine lands in AwaitingProof.

Parameters:
  - ctx: context.Context (cancellation point).
  - operation: The classified operation type (opaque key).
  - metadata: Channel metadata forwarded to the core.
  - clientIP: Originating client IP, required by the core's risk checks.

Returns:
  - required: Whether a challenge gates this operation type.
  - challenge: The issued challenge when required.
  - err: ErrChallengeActive on double-entry, capability/creation failures.
*/
func (orchestrator *Orchestrator) Begin(ctx context.Context, operation OperationType, metadata map[string]string, clientIP string) (bool, *Challenge, error) {
	orchestrator.mu.Lock()
	if orchestrator.state != StateIdle {
		orchestrator.mu.Unlock()
		return false, nil, ErrChallengeActive
	}

	// Hold the Requested state while the creation call is in flight so a
	// concurrent Begin is rejected, then release the lock for the I/O.
	orchestrator.state = StateRequested
	orchestrator.mu.Unlock()

	rollback := func() {
		orchestrator.mu.Lock()
		if orchestrator.state == StateRequested {
			orchestrator.state = StateIdle
		}
		orchestrator.mu.Unlock()
	}

	required, err := orchestrator.capabilities.RequiresChallenge(ctx, operation)
	if err != nil {
		rollback()
		return false, nil, err
	}

	if !required {
		// Short-circuit: the machine is not entered for unchallenged operations.
		rollback()
		return false, nil, nil
	}

	challenge, err := orchestrator.challenger.Create(ctx, operation, metadata, clientIP)
	if err != nil {
		rollback()
		return true, nil, err
	}

	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	// Cancel may have fired while the call was in flight; the issued handle
	// must then be dropped on the floor, never surfaced.
	if orchestrator.state != StateRequested {
		return true, nil, ErrChallengeActive
	}

	orchestrator.challenge = challenge
	orchestrator.state = StateAwaitingProof
	return true, challenge, nil
}

/*
SubmitProof validates the user's second-factor code(s).

Description: The server's expiry timestamp is authoritative — proof arriving
after the deadline transitions to Expired locally without a network call,
even if the local clock disagrees elsewhere. A rejection is retryable up to
the server-declared attempt cap; expiry is terminal and requires restarting
the orchestration from Idle.

Returns:
  - nil on validation success (machine lands in Validated).
  - apperr.ChallengeRejected (with remaining attempts) on a wrong code.
  - apperr.ChallengeExpired after the deadline or an expired verdict.
*/
func (orchestrator *Orchestrator) SubmitProof(ctx context.Context, otpCode, emailCode string) error {
	orchestrator.mu.Lock()
	if orchestrator.state != StateAwaitingProof {
		orchestrator.mu.Unlock()
		return apperr.Conflict("No challenge is awaiting proof for this attempt.")
	}

	challenge := orchestrator.challenge

	// Server-declared deadline, checked before spending a network call.
	if orchestrator.now().After(challenge.ExpiresAt) {
		orchestrator.state = StateExpired
		orchestrator.mu.Unlock()
		return apperr.ChallengeExpired()
	}
	orchestrator.mu.Unlock()

	outcome, err := orchestrator.challenger.Validate(ctx, challenge.PublicID, otpCode, emailCode)
	if err != nil {
		// Transport failure: the machine stays in AwaitingProof; the user
		// may retry once connectivity returns.
		return err
	}

	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	// Cancelled mid-flight: discard the verdict.
	if orchestrator.state != StateAwaitingProof {
		return apperr.Conflict("The challenge was cancelled.")
	}

	switch outcome {
	case ProofValidated:
		orchestrator.state = StateValidated
		return nil

	case ProofExpired:
		orchestrator.state = StateExpired
		return apperr.ChallengeExpired()

	default: // ProofRejected
		orchestrator.attemptsUsed++
		remaining := challenge.MaxAttempts - orchestrator.attemptsUsed
		if remaining <= 0 {
			orchestrator.state = StateRejected
			return apperr.ChallengeRejected(0)
		}
		return apperr.ChallengeRejected(remaining)
	}
}

/*
Consume hands the validated challenge to the submission step, exactly once.

Description: The Validated → Confirmed transition is implicit — there is no
separate confirm endpoint; the backend's acceptance of the handle during
submission is the confirmation. Once consumed, the handle is gone: whatever
the submission outcome, a retry needs a fresh orchestration from Idle.

Returns:
  - The challenge public ID to attach to the submission.
  - apperr.Conflict if the machine is not in Validated (including a second
    Consume on the same instance).
*/
func (orchestrator *Orchestrator) Consume() (string, error) {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	if orchestrator.state != StateValidated {
		return "", apperr.Conflict("No validated challenge is available for submission.")
	}

	orchestrator.state = StateConfirmed
	return orchestrator.challenge.PublicID, nil
}

// Cancel discards the orchestration (user navigated away or reset the form).
// A discarded handle must never reach the submitter; terminal states are
// left untouched.
func (orchestrator *Orchestrator) Cancel() {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	if !orchestrator.state.terminal() {
		orchestrator.state = StateDiscarded
	}
}
