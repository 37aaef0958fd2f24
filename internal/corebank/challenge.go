// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package corebank

import (
	"context"
	"net/http"
)

// # Challenge Endpoints

/*
ChallengeOperations returns the operation types that require a second-factor
challenge.

GET /operations-with-challenge

Fetched once per session and cached by the capability table; every transfer
then consults the cached copy.
*/
func (client *Client) ChallengeOperations(ctx context.Context) ([]string, error) {
	var output struct {
		TiposOperacion []string `json:"tiposOperacion"`
	}
	if err := client.do(ctx, http.MethodGet, "/operations-with-challenge", nil, &output, true); err != nil {
		return nil, err
	}
	return output.TiposOperacion, nil
}

/*
CreateChallenge asks the core to issue a second-factor challenge.

POST /challenge/create

The response's expiry and attempt cap are authoritative for the whole
orchestration; the client never extends them locally.
*/
func (client *Client) CreateChallenge(ctx context.Context, input ChallengeCreateRequest) (*ChallengeCreateResponse, error) {
	var output ChallengeCreateResponse
	if err := client.do(ctx, http.MethodPost, "/challenge/create", input, &output, true); err != nil {
		return nil, err
	}
	return &output, nil
}

/*
ValidateChallenge submits second-factor proof for an issued challenge.

POST /challenge/validate

A wrong code and an expired challenge come back as distinct Estado values
(RECHAZADO vs EXPIRADO); the orchestrator branches on them, never on text.
*/
func (client *Client) ValidateChallenge(ctx context.Context, input ChallengeValidateRequest) (*ChallengeValidateResponse, error) {
	var output ChallengeValidateResponse
	if err := client.do(ctx, http.MethodPost, "/challenge/validate", input, &output, true); err != nil {
		return nil, err
	}
	return &output, nil
}
