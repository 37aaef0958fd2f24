// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package corebank

import (
	"context"
	"net/http"
)

// # Transfer Submission Endpoints
//
// One terminal endpoint per rail. These are the only money-moving calls in
// the client; everything upstream (resolution, classification, challenge)
// exists to make these safe to fire.

/*
SubmitInternal executes a transfer between cooperative accounts.

POST /transfers/internal
*/
func (client *Client) SubmitInternal(ctx context.Context, input InternalTransferRequest) (*InternalTransferResponse, error) {
	var output InternalTransferResponse
	if err := client.do(ctx, http.MethodPost, "/transfers/internal", input, &output, true); err != nil {
		return nil, err
	}
	return &output, nil
}

/*
SubmitSinpeImmediate executes a SINPE "pagos inmediatos" transfer.

POST /transfers/sinpe/immediate
*/
func (client *Client) SubmitSinpeImmediate(ctx context.Context, input SinpeImmediateRequest) (*SinpeImmediateResponse, error) {
	var output SinpeImmediateResponse
	if err := client.do(ctx, http.MethodPost, "/transfers/sinpe/immediate", input, &output, true); err != nil {
		return nil, err
	}
	return &output, nil
}

/*
SubmitSinpeCredit executes a SINPE direct credit.

POST /transfers/sinpe/credit
*/
func (client *Client) SubmitSinpeCredit(ctx context.Context, input SinpeCreditRequest) (*SinpeCreditResponse, error) {
	var output SinpeCreditResponse
	if err := client.do(ctx, http.MethodPost, "/transfers/sinpe/credit", input, &output, true); err != nil {
		return nil, err
	}
	return &output, nil
}

/*
SubmitSinpeDebit executes a SINPE real-time debit.

POST /transfers/sinpe/debit
*/
func (client *Client) SubmitSinpeDebit(ctx context.Context, input SinpeDebitRequest) (*SinpeDebitResponse, error) {
	var output SinpeDebitResponse
	if err := client.do(ctx, http.MethodPost, "/transfers/sinpe/debit", input, &output, true); err != nil {
		return nil, err
	}
	return &output, nil
}

/*
SubmitMovil executes a SINPE Móvil wallet transfer.

POST /transfers/movil
*/
func (client *Client) SubmitMovil(ctx context.Context, input MovilTransferRequest) (*MovilTransferResponse, error) {
	var output MovilTransferResponse
	if err := client.do(ctx, http.MethodPost, "/transfers/movil", input, &output, true); err != nil {
		return nil, err
	}
	return &output, nil
}
