// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

// Package sec provides bearer-credential inspection for the mobile channel.
//
// # Architecture
//
// This package isolates token handling from the session lifecycle. It is a
// pure function layer: it never touches storage, so the session store can be
// tested independently of it and vice versa.
//
// # Trust Model
//
// The client deliberately does NOT verify the token signature. Signature
// verification belongs to the core banking servers that issued the token;
// this side only inspects the `exp` claim to avoid firing requests with a
// credential that will be rejected mid-flight. Do not "harden" this by adding
// local signature checks — the server owns that trust boundary.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpirySafetyMargin is subtracted from the token lifetime when checking
// expiry: a token expiring within the margin is treated as already expired so
// that in-flight requests never carry a credential about to lapse.
const ExpirySafetyMargin = 60 * time.Second

// # Error Family
//
// Malformed and expired tokens must be indistinguishable to policy code
// (fail closed), so both sentinels match [ErrTokenInvalid] via [errors.Is].
// They stay separate values so logs can tell the two apart.

var (
	// ErrTokenInvalid is the family root for every unusable credential.
	ErrTokenInvalid = errors.New("sec: token is not usable")

	// ErrTokenExpired marks a structurally valid token past its safety margin.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrTokenInvalid)

	// ErrTokenMalformed marks a token that could not be decoded at all
	// (wrong segment count, invalid base64url, non-JSON payload, missing exp).
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrTokenInvalid)
)

// Claims is the decoded identity carried by a core banking bearer token.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims maps the raw JWT payload. The embedded RegisteredClaims handles
// the standard fields; the custom fields follow the core's naming.
type tokenClaims struct {
	jwt.RegisteredClaims

	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// unverifiedParser decodes without validating. Padding tolerance matters:
// some core banking gateways emit padded base64url segments.
var unverifiedParser = jwt.NewParser(jwt.WithPaddingAllowed())

// ValidateToken decodes the bearer credential and checks its expiry against
// the current wall clock. See [ValidateTokenAt] for the full contract.
func ValidateToken(rawToken string) (*Claims, error) {
	return ValidateTokenAt(rawToken, time.Now())
}

// ValidateTokenAt decodes the middle segment of the three-part credential and
// checks the `exp` claim against the provided instant plus [ExpirySafetyMargin].
//
// # Returns
//   - The decoded [*Claims] if the token is usable.
//   - [ErrTokenMalformed] for any decode failure (fail closed).
//   - [ErrTokenExpired] if `exp <= now + margin` (the boundary instant is
//     already expired).
//
// # Side Effects
//
// None. On failure the CALLER must purge any persisted copy of the
// credential; this function stays side-effect free so it is independently
// testable.
func ValidateTokenAt(rawToken string, now time.Time) (*Claims, error) {
	if rawToken == "" {
		return nil, ErrTokenMalformed
	}

	payload := &tokenClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(rawToken, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	// A token without an expiry cannot be bounded, so it is unusable.
	if payload.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrTokenMalformed)
	}

	if !payload.ExpiresAt.Time.After(now.Add(ExpirySafetyMargin)) {
		return nil, ErrTokenExpired
	}

	claims := &Claims{
		Subject:   payload.Subject,
		Email:     payload.Email,
		Name:      payload.Name,
		Roles:     payload.Roles,
		ExpiresAt: payload.ExpiresAt.Time,
	}
	if payload.IssuedAt != nil {
		claims.IssuedAt = payload.IssuedAt.Time
	}

	return claims, nil
}
