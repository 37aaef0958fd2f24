// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package corebank

import (
	"context"
	"net/http"
)

// # Destination Lookup Endpoints
//
// One endpoint per identifier family. Each takes a raw identifier already
// format-checked by the resolver and returns a titleholder descriptor, or a
// 404 envelope when no match exists.

type lookupRequest struct {
	Identificador string `json:"identificador"`
}

/*
LookupInternalAccount resolves a cooperative account number.

POST /destinations/internal/lookup
*/
func (client *Client) LookupInternalAccount(ctx context.Context, identifier string) (*DestinationResponse, error) {
	var output DestinationResponse
	err := client.do(ctx, http.MethodPost, "/destinations/internal/lookup", lookupRequest{Identificador: identifier}, &output, true)
	if err != nil {
		return nil, err
	}
	return &output, nil
}

/*
LookupSinpeAccount resolves an external IBAN through the SINPE directory.

POST /destinations/sinpe/lookup
*/
func (client *Client) LookupSinpeAccount(ctx context.Context, iban string) (*DestinationResponse, error) {
	var output DestinationResponse
	err := client.do(ctx, http.MethodPost, "/destinations/sinpe/lookup", lookupRequest{Identificador: iban}, &output, true)
	if err != nil {
		return nil, err
	}
	return &output, nil
}

/*
LookupWallet resolves a SINPE Móvil wallet phone number.

POST /destinations/movil/lookup
*/
func (client *Client) LookupWallet(ctx context.Context, walletNumber string) (*DestinationResponse, error) {
	var output DestinationResponse
	err := client.do(ctx, http.MethodPost, "/destinations/movil/lookup", lookupRequest{Identificador: walletNumber}, &output, true)
	if err != nil {
		return nil, err
	}
	return &output, nil
}
