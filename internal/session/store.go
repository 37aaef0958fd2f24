// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/sec"
)

// ErrNoToken is returned by a [TokenVault] when no credential is persisted.
var ErrNoToken = errors.New("session: no persisted token")

// TokenVault persists the bearer credential across process restarts.
//
// Implementations are keyed per device installation at construction time;
// the store never sees the key.
type TokenVault interface {
	Save(ctx context.Context, rawToken string, ttl time.Duration) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Resettable is implemented by sibling components holding per-user state.
// Every session teardown — logout or expiry-driven purge — calls Reset on
// each registered sibling BEFORE clearing the session, so no residual user
// data survives the session that produced it.
type Resettable interface {
	Reset()
}

// # Definitions & Constructors

// Store is the single source of truth for authentication state.
//
// # Concurrency
//
// All methods are safe for concurrent use. The store is the only shared
// mutable state in the transfer flow; everything else is scoped to one
// attempt and one owner.
type Store struct {
	mu       sync.RWMutex
	rawToken string
	claims   *sec.Claims
	status   Status

	vault    TokenVault
	logger   *slog.Logger
	siblings []Resettable
}

// NewStore constructs a session [Store] in the Absent state.
func NewStore(vault TokenVault, logger *slog.Logger) *Store {
	return &Store{
		vault:  vault,
		logger: logger,
		status: StatusAbsent,
	}
}

// RegisterResettable enrolls a sibling component in the logout fan-out.
// Must be called during wiring, before the server starts serving.
func (store *Store) RegisterResettable(sibling Resettable) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.siblings = append(store.siblings, sibling)
}

// # Lifecycle

/*
Login validates and adopts a freshly exchanged bearer token.

Description: Runs the offline token validation; on success the token is
persisted to the vault and the store becomes authenticated. On failure any
previously stored token is cleared and a typed InvalidCredential error is
returned — a broken credential must never survive a failed login.

Parameters:
  - ctx: context.Context
  - rawToken: The bearer credential returned by the credential exchange.

Returns:
  - err: apperr.InvalidCredential on validation failure, vault errors otherwise.
*/
func (store *Store) Login(ctx context.Context, rawToken string) error {
	claims, err := sec.ValidateToken(rawToken)
	if err != nil {
		// Fail closed: purge whatever is persisted before reporting.
		store.purge(ctx)
		store.logger.WarnContext(ctx, "session_login_rejected", slog.Any("error", err))
		return apperr.InvalidCredential()
	}

	ttl := time.Until(claims.ExpiresAt)
	if err := store.vault.Save(ctx, rawToken, ttl); err != nil {
		return err
	}

	store.mu.Lock()
	store.rawToken = rawToken
	store.claims = claims
	store.status = StatusValid
	store.mu.Unlock()

	store.logger.InfoContext(ctx, "session_established",
		slog.String("subject", claims.Subject),
		slog.Time("expires_at", claims.ExpiresAt),
	)

	return nil
}

/*
Initialize restores a persisted session at process start.

Description: Loads the vaulted token if present and runs the same validation
path as Login. An absent token leaves the store unauthenticated with no
error; an invalid or expired token is purged silently — this is a background
restore check, not a user action, so no user-visible error is raised.

Parameters:
  - ctx: context.Context

Returns:
  - err: Only infrastructure (vault) failures. Validation failures are silent.
*/
func (store *Store) Initialize(ctx context.Context) error {
	rawToken, err := store.vault.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		store.setAbsent()
		return nil
	}
	if err != nil {
		return err
	}

	claims, err := sec.ValidateToken(rawToken)
	if err != nil {
		store.purge(ctx)
		store.logger.InfoContext(ctx, "session_restore_discarded", slog.Any("reason", err))
		return nil
	}

	store.mu.Lock()
	store.rawToken = rawToken
	store.claims = claims
	store.status = StatusValid
	store.mu.Unlock()

	store.logger.InfoContext(ctx, "session_restored", slog.String("subject", claims.Subject))
	return nil
}

/*
Logout tears down the session and every sibling's user-scoped state.

Description: Resets all registered siblings FIRST, then clears the vault and
the in-memory session. After this returns, no component may expose data
belonging to the previous user.
*/
func (store *Store) Logout(ctx context.Context) {
	store.purge(ctx)
	store.setAbsent()
	store.logger.InfoContext(ctx, "session_terminated")
}

// # Credential Access

// Authenticate verifies a presented bearer against the active session.
//
// The presented token must match the stored one exactly and must still clear
// the expiry safety margin. Any failure purges the session (fail closed) and
// returns a typed SessionExpired error.
//
// Implements the HTTP middleware's session authority contract.
func (store *Store) Authenticate(rawToken string) (*sec.Claims, error) {
	store.mu.RLock()
	stored := store.rawToken
	store.mu.RUnlock()

	if stored == "" || stored != rawToken {
		return nil, apperr.SessionExpired()
	}

	claims, err := sec.ValidateToken(rawToken)
	if err != nil {
		// The stored credential lapsed between requests.
		store.purge(context.Background())
		return nil, apperr.SessionExpired()
	}

	return claims, nil
}

// Token returns the active bearer credential for outbound core banking calls.
//
// Implements the core banking client's token source contract. Re-validates
// on every call so a request is never fired with a credential inside the
// expiry safety margin.
func (store *Store) Token() (string, error) {
	store.mu.RLock()
	rawToken := store.rawToken
	store.mu.RUnlock()

	if rawToken == "" {
		return "", apperr.SessionExpired()
	}

	if _, err := sec.ValidateToken(rawToken); err != nil {
		store.purge(context.Background())
		return "", apperr.SessionExpired()
	}

	return rawToken, nil
}

// # Observability

// State returns a read-only snapshot of the session.
func (store *Store) State() State {
	store.mu.RLock()
	defer store.mu.RUnlock()

	state := State{
		Status:          store.status,
		IsAuthenticated: store.status == StatusValid,
	}
	if store.claims != nil {
		state.Subject = store.claims.Subject
		state.Name = store.claims.Name
		state.ExpiresAt = store.claims.ExpiresAt
	}
	return state
}

// Claims returns the decoded identity, or nil when unauthenticated.
func (store *Store) Claims() *sec.Claims {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.claims
}

// # Internal

// purge tears down the session: siblings are reset FIRST, then the vault and
// the in-memory state are cleared. Every teardown path goes through here —
// logout and expiry alike — so an in-flight transfer attempt can never
// outlive the session that authorized it.
func (store *Store) purge(ctx context.Context) {
	store.mu.RLock()
	siblings := make([]Resettable, len(store.siblings))
	copy(siblings, store.siblings)
	store.mu.RUnlock()

	for _, sibling := range siblings {
		sibling.Reset()
	}

	if err := store.vault.Clear(ctx); err != nil {
		store.logger.WarnContext(ctx, "session_vault_clear_failed", slog.Any("error", err))
	}

	store.mu.Lock()
	store.rawToken = ""
	store.claims = nil
	store.status = StatusExpired
	store.mu.Unlock()
}

// setAbsent marks the store as never-authenticated.
func (store *Store) setAbsent() {
	store.mu.Lock()
	store.rawToken = ""
	store.claims = nil
	store.status = StatusAbsent
	store.mu.Unlock()
}
