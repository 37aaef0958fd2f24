// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

/*
Package transfer implements the transfer authorization engine.

It drives every money-moving flow in the mobile channel through one fixed
sequence: destination resolution → operation classification → second-factor
challenge (when the operation type requires one) → terminal submission on
one of five rails. Correctness failures here mean money moves incorrectly,
so each step is a separately testable component:

  - Resolver: Turns a user selection into a backend-confirmed destination.
  - Classify: Pure mapping from (rail, destination kind) to an operation type.
  - CapabilityCache: Per-session "which operations need a challenge" table.
  - Orchestrator: Finite-state machine for challenge issuance and proof.
  - Submitter: Per-rail submission with response normalization.
  - Service: Owns per-attempt state and wires the steps together.

Only the Service holds mutable state across calls; every other component
operates on values scoped to a single transfer attempt.
*/
package transfer

// Rail identifies one of the five transfer product types.
type Rail string

const (
	// RailInternal moves funds between cooperative accounts.
	RailInternal Rail = "internal"
	// RailSinpeImmediate is SINPE "pagos inmediatos" (real-time credit push).
	RailSinpeImmediate Rail = "sinpe_immediate"
	// RailSinpeCredit is SINPE "créditos directos" (batched credit push).
	RailSinpeCredit Rail = "sinpe_credit"
	// RailSinpeDebit is SINPE "débitos tiempo real" (real-time debit pull).
	RailSinpeDebit Rail = "sinpe_debit"
	// RailMovil is the SINPE Móvil wallet rail. Colones only.
	RailMovil Rail = "movil"
)

// Rails enumerates every supported rail.
var Rails = []Rail{RailInternal, RailSinpeImmediate, RailSinpeCredit, RailSinpeDebit, RailMovil}

// IsValid reports whether the rail is one of the supported five.
func (r Rail) IsValid() bool {
	switch r {
	case RailInternal, RailSinpeImmediate, RailSinpeCredit, RailSinpeDebit, RailMovil:
		return true
	}
	return false
}

// DestinationKind describes how the transfer target was chosen.
type DestinationKind string

const (
	// KindFavorite references a saved destination by ID.
	KindFavorite DestinationKind = "favorite"
	// KindManual is a hand-typed identifier (IBAN or wallet number).
	KindManual DestinationKind = "manual"
	// KindOwnAccount targets another account of the same member.
	// Only valid on the internal rail.
	KindOwnAccount DestinationKind = "own_account"
)

// IsValid reports whether the destination kind is recognized.
func (k DestinationKind) IsValid() bool {
	switch k {
	case KindFavorite, KindManual, KindOwnAccount:
		return true
	}
	return false
}
