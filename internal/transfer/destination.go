// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/constants"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/validate"
)

// ErrResolutionPending signals that a remote lookup for the same identifier
// is already in flight. The caller keeps the form open and retries; a second
// lookup is suppressed, never queued.
var ErrResolutionPending = errors.New("transfer: destination resolution already in flight")

// lookupRate bounds how often the resolver may hit the remote directory for
// one attempt, regardless of how fast inputs arrive.
var lookupRate = rate.Limit(2)

const lookupBurst = 3

// DestinationSelection is how the user chose a transfer target. Exactly one
// group of fields is set, according to Kind.
type DestinationSelection struct {
	Kind DestinationKind

	// FavoriteID references a saved destination (Kind == KindFavorite).
	FavoriteID string
	// RawIdentifier is the hand-typed IBAN or wallet number (Kind == KindManual).
	RawIdentifier string
	// OwnAccountID references another account of the member (Kind == KindOwnAccount).
	OwnAccountID string
}

// ValidatedDestination is the resolved, backend-confirmed transfer target.
type ValidatedDestination struct {
	Kind        DestinationKind `json:"kind"`
	Identifier  string          `json:"identifier"`
	DisplayName string          `json:"display_name"`
	Currency    string          `json:"currency"`
	BankCode    string          `json:"bank_code,omitempty"`
}

// Favorite is a locally known saved destination.
type Favorite struct {
	ID          string
	Alias       string
	Identifier  string
	DisplayName string
	Currency    string
	BankCode    string
}

// Account is one of the member's own accounts.
type Account struct {
	ID       string
	Number   string
	Currency string
	Balance  int64
}

// RemoteLookup resolves a format-valid manual identifier against the core's
// per-rail directory endpoints. Implementations return the channel error
// taxonomy (DestinationNotFound, RemoteUnavailable, SessionExpired).
type RemoteLookup interface {
	Lookup(ctx context.Context, rail Rail, identifier string) (*ValidatedDestination, error)
}

// # Resolver

// Resolver turns a [DestinationSelection] into a [ValidatedDestination] for
// one transfer attempt.
//
// # Invariants
//
//   - Favorite and own-account selections NEVER trigger a remote call.
//   - A manual identifier must pass its local format precondition before any
//     network traffic is allowed.
//   - Remote results are cached against the exact normalized input for the
//     lifetime of the attempt; re-resolving the same input is free.
//   - At most one remote lookup per identifier is in flight at a time.
type Resolver struct {
	rail           Rail
	sourceCurrency string
	favorites      []Favorite
	ownAccounts    []Account
	lookup         RemoteLookup

	mu       sync.Mutex
	cache    map[string]*ValidatedDestination
	inflight map[string]bool
	limiter  *rate.Limiter
}

// NewResolver constructs a [Resolver] scoped to one transfer attempt.
//
// # Parameters
//   - rail: The rail the attempt targets.
//   - sourceCurrency: ISO 4217 currency of the chosen source account.
//   - favorites, ownAccounts: Already-fetched local directories.
//   - lookup: Remote directory port for manual identifiers.
func NewResolver(rail Rail, sourceCurrency string, favorites []Favorite, ownAccounts []Account, lookup RemoteLookup) *Resolver {
	return &Resolver{
		rail:           rail,
		sourceCurrency: sourceCurrency,
		favorites:      favorites,
		ownAccounts:    ownAccounts,
		lookup:         lookup,
		cache:          make(map[string]*ValidatedDestination),
		inflight:       make(map[string]bool),
		limiter:        rate.NewLimiter(lookupRate, lookupBurst),
	}
}

/*
Resolve dispatches on the selection variant and produces a validated
destination.

Description: Favorites and own accounts resolve synchronously from local
lists. Manual entries run the two-phase check: local format precondition
first, then a single cached remote lookup.

Returns:
  - *ValidatedDestination on success.
  - apperr.CurrencyMismatch: Móvil rail with a non-colones source account.
  - apperr.MalformedDestination: Identifier fails the format precondition.
  - apperr.NotFound / apperr.DestinationNotFound: Unknown local reference /
    remote directory miss.
  - ErrResolutionPending: An identical lookup is already in flight.
*/
func (resolver *Resolver) Resolve(ctx context.Context, selection DestinationSelection) (*ValidatedDestination, error) {

	// The Móvil rail only moves colones. Reject before any other work so a
	// mismatched source account never generates network traffic.
	if resolver.rail == RailMovil && resolver.sourceCurrency != constants.LocalCurrency {
		return nil, apperr.CurrencyMismatch("SINPE Móvil transfers require a colones source account.")
	}

	switch selection.Kind {
	case KindFavorite:
		return resolver.resolveFavorite(selection.FavoriteID)
	case KindOwnAccount:
		return resolver.resolveOwnAccount(selection.OwnAccountID)
	case KindManual:
		return resolver.resolveManual(ctx, selection.RawIdentifier)
	default:
		return nil, apperr.ValidationError("Unknown destination kind")
	}
}

// resolveFavorite resolves from the already-fetched favorites list. The list
// may have been refreshed concurrently, so a missing ID is a user-facing
// not-found, not a programming error.
func (resolver *Resolver) resolveFavorite(favoriteID string) (*ValidatedDestination, error) {
	for _, favorite := range resolver.favorites {
		if favorite.ID == favoriteID {
			return &ValidatedDestination{
				Kind:        KindFavorite,
				Identifier:  favorite.Identifier,
				DisplayName: favorite.DisplayName,
				Currency:    favorite.Currency,
				BankCode:    favorite.BankCode,
			}, nil
		}
	}
	return nil, apperr.NotFound("Favorite destination")
}

// resolveOwnAccount resolves from the member's own account list.
func (resolver *Resolver) resolveOwnAccount(accountID string) (*ValidatedDestination, error) {
	for _, account := range resolver.ownAccounts {
		if account.ID == accountID {
			return &ValidatedDestination{
				Kind:       KindOwnAccount,
				Identifier: account.Number,
				Currency:   account.Currency,
			}, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

// resolveManual runs the two-phase check for hand-typed identifiers.
func (resolver *Resolver) resolveManual(ctx context.Context, rawIdentifier string) (*ValidatedDestination, error) {

	// ── 1. Local format precondition (no network below this line until it holds) ──

	identifier, err := resolver.normalizeIdentifier(rawIdentifier)
	if err != nil {
		return nil, err
	}

	// ── 2. Cache / in-flight bookkeeping ───────────────────────────────────

	resolver.mu.Lock()
	if destination, ok := resolver.cache[identifier]; ok {
		resolver.mu.Unlock()
		return destination, nil
	}
	if resolver.inflight[identifier] {
		resolver.mu.Unlock()
		return nil, ErrResolutionPending
	}
	if !resolver.limiter.Allow() {
		resolver.mu.Unlock()
		return nil, ErrResolutionPending
	}
	resolver.inflight[identifier] = true
	resolver.mu.Unlock()

	defer func() {
		resolver.mu.Lock()
		delete(resolver.inflight, identifier)
		resolver.mu.Unlock()
	}()

	// ── 3. Remote lookup (exactly one per stabilized input) ────────────────

	destination, err := resolver.lookup.Lookup(ctx, resolver.rail, identifier)
	if err != nil {
		return nil, err
	}
	destination.Kind = KindManual

	resolver.mu.Lock()
	resolver.cache[identifier] = destination
	resolver.mu.Unlock()

	return destination, nil
}

// normalizeIdentifier applies the rail's format precondition: a Costa Rican
// IBAN for account rails, an 8-digit wallet number for the Móvil rail.
func (resolver *Resolver) normalizeIdentifier(rawIdentifier string) (string, error) {
	if resolver.rail == RailMovil {
		wallet := validate.NormalizeWalletNumber(rawIdentifier)
		if !validate.IsWalletNumber(wallet) {
			return "", apperr.MalformedDestination("The wallet number must be an 8-digit phone number.")
		}
		return wallet, nil
	}

	iban := validate.NormalizeIBAN(rawIdentifier)
	if !validate.IsIBANCR(iban) {
		return "", apperr.MalformedDestination("The account number must be a 24-character Costa Rican IBAN.")
	}
	return iban, nil
}
