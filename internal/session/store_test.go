// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package session_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/session"
)

// memoryVault is an in-memory TokenVault for tests.
type memoryVault struct {
	token  string
	saves  int
	clears int
}

func (v *memoryVault) Save(_ context.Context, rawToken string, _ time.Duration) error {
	v.token = rawToken
	v.saves++
	return nil
}

func (v *memoryVault) Load(_ context.Context) (string, error) {
	if v.token == "" {
		return "", session.ErrNoToken
	}
	return v.token, nil
}

func (v *memoryVault) Clear(_ context.Context) error {
	v.token = ""
	v.clears++
	return nil
}

// resetSpy records whether Reset was invoked, standing in for a sibling
// component holding per-user state.
type resetSpy struct {
	wasReset bool
}

func (r *resetSpy) Reset() { r.wasReset = true }

// buildToken assembles an unsigned JWT with the given expiry.
func buildToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{
		"sub": subject,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	})
	require.NoError(t, err)

	body := base64.RawURLEncoding.EncodeToString(payload)
	signature := base64.RawURLEncoding.EncodeToString([]byte("not-a-signature"))
	return fmt.Sprintf("%s.%s.%s", header, body, signature)
}

func TestStore_Login(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		expectError bool
	}{
		{"valid_token", "", false},
		{"expired_token", "", true},
		{"garbage_token", "not.a.jwt!!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vault := &memoryVault{}
			store := session.NewStore(vault, slog.Default())

			token := tt.token
			switch tt.name {
			case "valid_token":
				token = buildToken(t, "member-001", time.Now().Add(30*time.Minute))
			case "expired_token":
				token = buildToken(t, "member-001", time.Now().Add(-time.Minute))
			}

			err := store.Login(context.Background(), token)

			if tt.expectError {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "INVALID_CREDENTIAL", ae.Code)

				// A failed login must leave no persisted credential behind.
				assert.Empty(t, vault.token)
				assert.False(t, store.State().IsAuthenticated)
			} else {
				require.NoError(t, err)
				assert.Equal(t, token, vault.token)

				state := store.State()
				assert.True(t, state.IsAuthenticated)
				assert.Equal(t, session.StatusValid, state.Status)
				assert.Equal(t, "member-001", state.Subject)
			}
		})
	}
}

func TestStore_Login_SafetyMargin(t *testing.T) {
	// A token expiring inside the 60s margin is already unusable.
	vault := &memoryVault{}
	store := session.NewStore(vault, slog.Default())

	token := buildToken(t, "member-001", time.Now().Add(30*time.Second))
	err := store.Login(context.Background(), token)

	require.Error(t, err)
	assert.False(t, store.State().IsAuthenticated)
}

func TestStore_Initialize(t *testing.T) {
	t.Run("absent_token_is_not_an_error", func(t *testing.T) {
		store := session.NewStore(&memoryVault{}, slog.Default())

		require.NoError(t, store.Initialize(context.Background()))

		state := store.State()
		assert.Equal(t, session.StatusAbsent, state.Status)
		assert.False(t, state.IsAuthenticated)
	})

	t.Run("valid_token_restores_silently", func(t *testing.T) {
		vault := &memoryVault{token: buildToken(t, "member-001", time.Now().Add(time.Hour))}
		store := session.NewStore(vault, slog.Default())

		require.NoError(t, store.Initialize(context.Background()))
		assert.True(t, store.State().IsAuthenticated)
	})

	t.Run("expired_token_purged_silently", func(t *testing.T) {
		vault := &memoryVault{token: buildToken(t, "member-001", time.Now().Add(-time.Hour))}
		store := session.NewStore(vault, slog.Default())

		// No error: background restore is not a user action.
		require.NoError(t, store.Initialize(context.Background()))

		assert.False(t, store.State().IsAuthenticated)
		assert.Empty(t, vault.token)
		assert.Equal(t, 1, vault.clears)
	})
}

func TestStore_Logout_FanOut(t *testing.T) {
	vault := &memoryVault{}
	store := session.NewStore(vault, slog.Default())

	// Populate sibling components with fixture state.
	accounts := &resetSpy{}
	movements := &resetSpy{}
	transfers := &resetSpy{}
	store.RegisterResettable(accounts)
	store.RegisterResettable(movements)
	store.RegisterResettable(transfers)

	token := buildToken(t, "member-001", time.Now().Add(time.Hour))
	require.NoError(t, store.Login(context.Background(), token))

	store.Logout(context.Background())

	// Every sibling store must report wiped state.
	assert.True(t, accounts.wasReset)
	assert.True(t, movements.wasReset)
	assert.True(t, transfers.wasReset)

	// And the session itself is gone, vault included.
	state := store.State()
	assert.Equal(t, session.StatusAbsent, state.Status)
	assert.False(t, state.IsAuthenticated)
	assert.Empty(t, vault.token)
}

func TestStore_ExpiryPurgeFansOut(t *testing.T) {
	// A lapsed credential tears down sibling state exactly like an explicit
	// logout: an in-flight transfer attempt must not survive a forced expiry.
	vault := &memoryVault{}
	store := session.NewStore(vault, slog.Default())

	transfers := &resetSpy{}
	store.RegisterResettable(transfers)

	token := buildToken(t, "member-001", time.Now().Add(time.Hour))
	require.NoError(t, store.Login(context.Background(), token))
	require.False(t, transfers.wasReset)

	// The credential stops clearing the safety margin.
	lapsed := buildToken(t, "member-001", time.Now().Add(-time.Minute))
	require.Error(t, store.Login(context.Background(), lapsed))

	assert.True(t, transfers.wasReset)
	assert.Empty(t, vault.token)
	assert.False(t, store.State().IsAuthenticated)
}

func TestStore_Authenticate(t *testing.T) {
	vault := &memoryVault{}
	store := session.NewStore(vault, slog.Default())

	token := buildToken(t, "member-001", time.Now().Add(time.Hour))
	require.NoError(t, store.Login(context.Background(), token))

	t.Run("matching_token_accepted", func(t *testing.T) {
		claims, err := store.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, "member-001", claims.Subject)
	})

	t.Run("foreign_token_rejected", func(t *testing.T) {
		other := buildToken(t, "someone-else", time.Now().Add(time.Hour))
		_, err := store.Authenticate(other)

		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "SESSION_EXPIRED", ae.Code)
	})
}

func TestStore_Token(t *testing.T) {
	t.Run("unauthenticated_store_has_no_token", func(t *testing.T) {
		store := session.NewStore(&memoryVault{}, slog.Default())

		_, err := store.Token()

		require.Error(t, err)
		assert.Equal(t, "SESSION_EXPIRED", apperr.As(err).Code)
	})

	t.Run("valid_session_yields_bearer", func(t *testing.T) {
		store := session.NewStore(&memoryVault{}, slog.Default())
		token := buildToken(t, "member-001", time.Now().Add(time.Hour))
		require.NoError(t, store.Login(context.Background(), token))

		got, err := store.Token()
		require.NoError(t, err)
		assert.Equal(t, token, got)
	})
}
