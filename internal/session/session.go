// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

/*
Package session owns the authentication state of the device installation.

It implements the session token lifecycle that gates every money-moving
call: login (credential exchange), silent restore at process start, and
logout with a fan-out that wipes every sibling component's user data.

Architecture:

  - Store: The single source of truth for "is this client authenticated."
  - TokenVault: Persistence port for the bearer credential (Redis-backed).
  - Resettable: Fan-out contract siblings register to be wiped on logout.

The token itself is validated by the side-effect-free internal/platform/sec
package; this package owns all purging.
*/
package session

import "time"

// Status describes the observable authentication state.
type Status string

const (
	// StatusAbsent means no credential is present (fresh install or after logout).
	StatusAbsent Status = "absent"
	// StatusValid means a decoded, unexpired credential is loaded.
	StatusValid Status = "valid"
	// StatusExpired means a credential was present but failed validation.
	StatusExpired Status = "expired"
)

// State is a read-only snapshot of the session, safe to hand to callers.
type State struct {
	Status          Status
	IsAuthenticated bool
	Subject         string
	Name            string
	ExpiresAt       time.Time
}
