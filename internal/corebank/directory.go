// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package corebank

import (
	"context"
	"net/http"
)

// # Directory Endpoints
//
// Own accounts and favorites back the local (zero-network) side of
// destination resolution.

/*
OwnAccounts lists the member's accounts at the cooperative.

GET /accounts
*/
func (client *Client) OwnAccounts(ctx context.Context) ([]AccountSummary, error) {
	var output struct {
		Cuentas []AccountSummary `json:"cuentas"`
	}
	if err := client.do(ctx, http.MethodGet, "/accounts", nil, &output, true); err != nil {
		return nil, err
	}
	return output.Cuentas, nil
}

/*
Favorites lists the member's saved destinations for one rail.

GET /favorites?rail=<rail>
*/
func (client *Client) Favorites(ctx context.Context, rail string) ([]FavoriteEntry, error) {
	var output struct {
		Favoritos []FavoriteEntry `json:"favoritos"`
	}
	if err := client.do(ctx, http.MethodGet, "/favorites?rail="+rail, nil, &output, true); err != nil {
		return nil, err
	}
	return output.Favoritos, nil
}
