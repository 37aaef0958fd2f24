// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

/*
Package corebank is the REST client for the core banking collaborator.

It wraps the bank's mobile-channel API: credential exchange, destination
lookups, second-factor challenges, and the five transfer rails. Wire field
names are the core's own (Spanish), preserved verbatim in the DTOs; the
domain layer translates them into channel types.

# Architecture

The client is a thin transport: it shapes requests, decodes responses, and
turns non-2xx envelopes into [*APIError] values. It performs no business
validation and no retries — retry policy belongs to the user-facing layer.
*/
package corebank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	requestTimeout = 25 * time.Second

	headerAPIKey  = "X-Api-Key"
	headerChannel = "X-Canal"
)

// ErrUnreachable wraps transport-level failures (DNS, refused connections,
// timeouts). Callers map it to a retryable service-unavailable condition.
var ErrUnreachable = errors.New("corebank: unreachable")

// TokenSource supplies the bearer credential attached to authenticated calls.
//
// The session store implements this; an absent or expired session returns an
// error, which the client surfaces without issuing the request.
type TokenSource interface {
	Token() (string, error)
}

// APIError is a non-2xx response decoded from the core's error envelope.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Codigo is the core's machine-readable error code (e.g. "FONDOS_INSUFICIENTES").
	Codigo string
	// Descripcion is the core's human-readable message.
	Descripcion string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("corebank: %d %s: %s", e.StatusCode, e.Codigo, e.Descripcion)
}

// # Definitions & Constructors

// Client calls the core banking mobile-channel API.
type Client struct {
	baseURL     string
	apiKey      string
	channelCode string
	tokens      TokenSource
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient constructs a core banking [Client].
//
// # Parameters
//   - baseURL: Root URL of the core's mobile-channel API (no trailing slash).
//   - apiKey: Channel API key sent on every request.
//   - channelCode: Channel identifier (e.g. "APP_MOVIL").
//   - tokens: Source of the per-session bearer credential.
//   - logger: Structured logger for request-level events.
func NewClient(baseURL, apiKey, channelCode string, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		channelCode: channelCode,
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: requestTimeout},
		logger:      logger,
	}
}

// # Credential Exchange

/*
ExchangeToken trades user credentials for a bearer token.

POST /token

This is the only unauthenticated call in the client: no bearer is attached.
The returned token is opaque to this package; the session layer decodes it.
*/
func (client *Client) ExchangeToken(ctx context.Context, input TokenRequest) (*TokenResponse, error) {
	var output TokenResponse
	if err := client.do(ctx, http.MethodPost, "/token", input, &output, false); err != nil {
		return nil, err
	}
	return &output, nil
}

// # Transport Core

// do executes one request/response cycle against the core.
//
// Non-2xx responses are returned as [*APIError]; transport failures are
// wrapped in [ErrUnreachable]. When authenticated is true, the bearer from
// the token source is attached (and its error propagated verbatim so session
// failures keep their type).
func (client *Client) do(ctx context.Context, method, path string, body, target any, authenticated bool) error {

	// ── 1. Shape the request ───────────────────────────────────────────────

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("corebank: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("corebank: failed to build request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set(headerAPIKey, client.apiKey)
	request.Header.Set(headerChannel, client.channelCode)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		token, err := client.tokens.Token()
		if err != nil {
			return err
		}
		request.Header.Set("Authorization", "Bearer "+token)
	}

	// ── 2. Execute ─────────────────────────────────────────────────────────

	start := time.Now()
	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.WarnContext(ctx, "corebank_request_failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = response.Body.Close() }()

	client.logger.DebugContext(ctx, "corebank_request_finished",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()),
	)

	// ── 3. Decode the outcome ──────────────────────────────────────────────

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return client.decodeError(response)
	}

	if target == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("corebank: failed to decode response: %w", err)
	}

	return nil
}

// errorEnvelope is the core's standard error body.
type errorEnvelope struct {
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
}

// decodeError converts a non-2xx response into an [*APIError]. A body that
// cannot be decoded still yields a usable error keyed by status code.
func (client *Client) decodeError(response *http.Response) error {
	apiError := &APIError{StatusCode: response.StatusCode}

	var envelope errorEnvelope
	if err := json.NewDecoder(response.Body).Decode(&envelope); err == nil {
		apiError.Codigo = envelope.Codigo
		apiError.Descripcion = envelope.Descripcion
	}

	return apiError
}
