// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
)

// challengerStub scripts the core's challenge behavior.
type challengerStub struct {
	mu        sync.Mutex
	creates   int
	validates int

	challenge  *Challenge
	createErr  error
	outcomes   []ProofOutcome // consumed in order by Validate
	createGate chan struct{}  // when non-nil, Create waits until closed
}

func (stub *challengerStub) Create(ctx context.Context, operation OperationType, metadata map[string]string, clientIP string) (*Challenge, error) {
	stub.mu.Lock()
	stub.creates++
	gate := stub.createGate
	stub.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if stub.createErr != nil {
		return nil, stub.createErr
	}
	challenge := *stub.challenge
	return &challenge, nil
}

func (stub *challengerStub) Validate(ctx context.Context, publicID, otpCode, emailCode string) (ProofOutcome, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.validates++
	outcome := stub.outcomes[0]
	if len(stub.outcomes) > 1 {
		stub.outcomes = stub.outcomes[1:]
	}
	return outcome, nil
}

// alwaysRequired is a capability table where every operation needs a challenge.
type alwaysRequired struct{}

func (alwaysRequired) RequiresChallenge(context.Context, OperationType) (bool, error) {
	return true, nil
}

type neverRequired struct{}

func (neverRequired) RequiresChallenge(context.Context, OperationType) (bool, error) {
	return false, nil
}

func issuedChallenge(expiresIn time.Duration) *Challenge {
	return &Challenge{
		PublicID:    "ch-001",
		ProofKinds:  []string{"OTP"},
		ExpiresAt:   time.Now().Add(expiresIn),
		MaxAttempts: 3,
	}
}

func TestOrchestrator_ShortCircuitWhenNotRequired(t *testing.T) {
	stub := &challengerStub{challenge: issuedChallenge(time.Minute)}
	orchestrator := NewOrchestrator(stub, neverRequired{})

	required, challenge, err := orchestrator.Begin(context.Background(), OpInternaCuentaPropia, nil, "10.0.0.1")

	require.NoError(t, err)
	assert.False(t, required)
	assert.Nil(t, challenge)

	// The machine is never entered for unchallenged operations.
	assert.Equal(t, StateIdle, orchestrator.State())
	assert.Equal(t, 0, stub.creates)
}

func TestOrchestrator_HappyPath(t *testing.T) {
	stub := &challengerStub{
		challenge: issuedChallenge(time.Minute),
		outcomes:  []ProofOutcome{ProofValidated},
	}
	orchestrator := NewOrchestrator(stub, alwaysRequired{})

	required, challenge, err := orchestrator.Begin(context.Background(), OpMonederoDigitado, nil, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, required)
	assert.Equal(t, "ch-001", challenge.PublicID)
	assert.Equal(t, StateAwaitingProof, orchestrator.State())

	require.NoError(t, orchestrator.SubmitProof(context.Background(), "123456", ""))
	assert.Equal(t, StateValidated, orchestrator.State())

	handle, err := orchestrator.Consume()
	require.NoError(t, err)
	assert.Equal(t, "ch-001", handle)
	assert.Equal(t, StateConfirmed, orchestrator.State())
}

func TestOrchestrator_DoubleBeginRejected(t *testing.T) {
	gate := make(chan struct{})
	stub := &challengerStub{challenge: issuedChallenge(time.Minute), createGate: gate}
	orchestrator := NewOrchestrator(stub, alwaysRequired{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = orchestrator.Begin(context.Background(), OpMonederoDigitado, nil, "10.0.0.1")
	}()

	require.Eventually(t, func() bool {
		return orchestrator.State() == StateRequested
	}, time.Second, 5*time.Millisecond)

	// A second tap while creation is pending is ignored, not queued.
	_, _, err := orchestrator.Begin(context.Background(), OpMonederoDigitado, nil, "10.0.0.1")
	require.ErrorIs(t, err, ErrChallengeActive)

	close(gate)
	<-done
	assert.Equal(t, 1, stub.creates)
}

func TestOrchestrator_ProofAfterDeadlineExpiresLocally(t *testing.T) {
	stub := &challengerStub{
		challenge: issuedChallenge(time.Minute),
		outcomes:  []ProofOutcome{ProofValidated},
	}
	orchestrator := NewOrchestrator(stub, alwaysRequired{})

	_, _, err := orchestrator.Begin(context.Background(), OpMonederoDigitado, nil, "10.0.0.1")
	require.NoError(t, err)

	// Move the clock past the server-declared deadline.
	orchestrator.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	err = orchestrator.SubmitProof(context.Background(), "123456", "")

	require.Error(t, err)
	assert.Equal(t, "CHALLENGE_EXPIRED", apperr.As(err).Code)
	assert.Equal(t, StateExpired, orchestrator.State())

	// The deadline check must not have spent a network call.
	assert.Equal(t, 0, stub.validates)
}

func TestOrchestrator_RejectionRetryableUntilCap(t *testing.T) {
	stub := &challengerStub{
		challenge: issuedChallenge(time.Minute),
		outcomes:  []ProofOutcome{ProofRejected, ProofRejected, ProofRejected},
	}
	orchestrator := NewOrchestrator(stub, alwaysRequired{})

	_, _, err := orchestrator.Begin(context.Background(), OpMonederoDigitado, nil, "10.0.0.1")
	require.NoError(t, err)

	// Attempts 1 and 2: rejected but retryable, machine stays put.
	for _, wantRemaining := range []bool{true, true} {
		err = orchestrator.SubmitProof(context.Background(), "000000", "")
		require.Error(t, err)

		ae := apperr.As(err)
		assert.Equal(t, "CHALLENGE_REJECTED", ae.Code)
		assert.Equal(t, wantRemaining, ae.Retryable)
		assert.Equal(t, StateAwaitingProof, orchestrator.State())
	}

	// Attempt 3 exhausts the cap: terminal rejection.
	err = orchestrator.SubmitProof(context.Background(), "000000", "")
	require.Error(t, err)
	assert.False(t, apperr.As(err).Retryable)
	assert.Equal(t, StateRejected, orchestrator.State())
}

func TestOrchestrator_ExpiredVerdictIsTerminal(t *testing.T) {
	stub := &challengerStub{
		challenge: issuedChallenge(time.Minute),
		outcomes:  []ProofOutcome{ProofExpired},
	}
	orchestrator := NewOrchestrator(stub, alwaysRequired{})

	_, _, err := orchestrator.Begin(context.Background(), OpMonederoDigitado, nil, "10.0.0.1")
	require.NoError(t, err)

	err = orchestrator.SubmitProof(context.Background(), "123456", "")
	require.Error(t, err)
	assert.Equal(t, "CHALLENGE_EXPIRED", apperr.As(err).Code)
	assert.Equal(t, StateExpired, orchestrator.State())

	// Expiry requires restarting the whole orchestration; proof is refused.
	err = orchestrator.SubmitProof(context.Background(), "123456", "")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestOrchestrator_ConsumeIsSingleUse(t *testing.T) {
	stub := &challengerStub{
		challenge: issuedChallenge(time.Minute),
		outcomes:  []ProofOutcome{ProofValidated},
	}
	orchestrator := NewOrchestrator(stub, alwaysRequired{})

	_, _, err := orchestrator.Begin(context.Background(), OpMonederoDigitado, nil, "10.0.0.1")
	require.NoError(t, err)
	require.NoError(t, orchestrator.SubmitProof(context.Background(), "123456", ""))

	_, err = orchestrator.Consume()
	require.NoError(t, err)

	// Whatever the submission outcome, the handle is gone.
	_, err = orchestrator.Consume()
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestOrchestrator_CancelDiscards(t *testing.T) {
	stub := &challengerStub{challenge: issuedChallenge(time.Minute)}
	orchestrator := NewOrchestrator(stub, alwaysRequired{})

	_, _, err := orchestrator.Begin(context.Background(), OpMonederoDigitado, nil, "10.0.0.1")
	require.NoError(t, err)

	orchestrator.Cancel()
	assert.Equal(t, StateDiscarded, orchestrator.State())

	// A discarded attempt accepts no proof and yields no handle.
	require.Error(t, orchestrator.SubmitProof(context.Background(), "123456", ""))
	_, err = orchestrator.Consume()
	require.Error(t, err)
}
