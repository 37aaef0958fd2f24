// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package corebank_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/corebank"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token() (string, error) { return s.token, s.err }

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens corebank.TokenSource) *corebank.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return corebank.NewClient(server.URL, "test-api-key", "APP_MOVIL", tokens, slog.Default())
}

func TestClient_ExchangeToken(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/token", request.URL.Path)
		assert.Equal(t, "test-api-key", request.Header.Get("X-Api-Key"))
		assert.Equal(t, "APP_MOVIL", request.Header.Get("X-Canal"))
		// Credential exchange must not carry a bearer.
		assert.Empty(t, request.Header.Get("Authorization"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"tokenAcceso":"header.payload.sig","fechaExpiracion":"2026-08-29T12:00:00Z"}`))
	}, staticTokens{})

	response, err := client.ExchangeToken(context.Background(), corebank.TokenRequest{
		Usuario:       "member-001",
		Contrasena:    "s3cret",
		IDInstalacion: "install-abc",
		Canal:         "APP_MOVIL",
	})

	require.NoError(t, err)
	assert.Equal(t, "header.payload.sig", response.TokenAcceso)
}

func TestClient_BearerAttached(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer session-token", request.Header.Get("Authorization"))
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"tiposOperacion":["TransferenciaMonedero"]}`))
	}, staticTokens{token: "session-token"})

	operations, err := client.ChallengeOperations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"TransferenciaMonedero"}, operations)
}

func TestClient_TokenSourceErrorPropagates(t *testing.T) {
	sessionErr := errors.New("session absent")

	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		t.Fatal("no request should be issued without a token")
	}, staticTokens{err: sessionErr})

	_, err := client.ChallengeOperations(context.Background())

	// The session failure must come back untouched so callers keep its type.
	require.ErrorIs(t, err, sessionErr)
}

func TestClient_ErrorEnvelopeDecoded(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = writer.Write([]byte(`{"codigo":"FONDOS_INSUFICIENTES","descripcion":"Saldo insuficiente"}`))
	}, staticTokens{token: "session-token"})

	_, err := client.SubmitMovil(context.Background(), corebank.MovilTransferRequest{
		CuentaOrigen:   "CR9900000000000000000001",
		NumeroMonedero: "88881234",
		Monto:          150000,
		Detalle:        "Pago",
	})

	require.Error(t, err)

	var apiError *corebank.APIError
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, http.StatusUnprocessableEntity, apiError.StatusCode)
	assert.Equal(t, "FONDOS_INSUFICIENTES", apiError.Codigo)
	assert.Equal(t, "Saldo insuficiente", apiError.Descripcion)
}

func TestClient_ErrorEnvelopeUndecodableBody(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
		_, _ = writer.Write([]byte("<html>gateway error</html>"))
	}, staticTokens{token: "session-token"})

	_, err := client.OwnAccounts(context.Background())

	var apiError *corebank.APIError
	require.ErrorAs(t, err, &apiError)
	assert.Equal(t, http.StatusBadGateway, apiError.StatusCode)
	assert.Empty(t, apiError.Codigo)
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // close immediately so the address refuses connections

	client := corebank.NewClient(server.URL, "key", "APP_MOVIL", staticTokens{token: "tk"}, slog.Default())

	_, err := client.LookupWallet(context.Background(), "88881234")

	require.ErrorIs(t, err, corebank.ErrUnreachable)
}
