// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"time"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/corebank"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/pkg/asciifold"
)

// TransferRequest is the assembled, immutable submission value. It is built
// only after resolution, classification, and (when required) a validated
// challenge — the submitter performs no business validation of its own.
type TransferRequest struct {
	Rail          Rail
	SourceAccount string
	Destination   ValidatedDestination
	Amount        int64 // minor units
	Currency      string
	Detail        string
	ChallengeID   string // empty when the operation type needs no challenge
}

// TransferResult is the normalized outcome unifying the five rail-specific
// response shapes.
type TransferResult struct {
	Success         bool      `json:"success"`
	Rail            Rail      `json:"rail"`
	ReferenceNumber string    `json:"reference_number"`
	Commission      int64     `json:"commission,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// # Submitter

// Submitter fires the terminal per-rail submission and normalizes the
// heterogeneous response shapes into one [TransferResult].
type Submitter struct {
	bank CoreBank
}

// NewSubmitter constructs a [Submitter].
func NewSubmitter(bank CoreBank) *Submitter {
	return &Submitter{bank: bank}
}

/*
Submit executes the transfer on its rail.

Description: Dispatches on the rail, folds the free-text detail to ASCII
(the SINPE wire formats carry no accents), attaches the single-use challenge
handle when present, and maps the rail-specific response into the canonical
result. Backend rejections come back as typed channel errors, never as raw
core strings used for branching.

Returns:
  - *TransferResult with the rail's reference field normalized.
  - Typed errors per the channel taxonomy (InsufficientFunds,
    ChallengeExpired, RemoteUnavailable, BackendRejected, ...).
*/
func (submitter *Submitter) Submit(ctx context.Context, request TransferRequest) (*TransferResult, error) {
	detail := asciifold.Fold(request.Detail)

	switch request.Rail {
	case RailInternal:
		response, err := submitter.bank.SubmitInternal(ctx, corebank.InternalTransferRequest{
			CuentaOrigen:  request.SourceAccount,
			CuentaDestino: request.Destination.Identifier,
			Monto:         request.Amount,
			Moneda:        request.Currency,
			Detalle:       detail,
			IDReto:        request.ChallengeID,
		})
		if err != nil {
			return nil, mapBankError(err)
		}
		return &TransferResult{
			Success:         true,
			Rail:            request.Rail,
			ReferenceNumber: response.NumeroDocumentoCore,
			SubmittedAt:     response.FechaCreacion,
		}, nil

	case RailSinpeImmediate:
		response, err := submitter.bank.SubmitSinpeImmediate(ctx, corebank.SinpeImmediateRequest{
			CuentaOrigen:  request.SourceAccount,
			CuentaDestino: request.Destination.Identifier,
			Monto:         request.Amount,
			Moneda:        request.Currency,
			Detalle:       detail,
			IDReto:        request.ChallengeID,
		})
		if err != nil {
			return nil, mapBankError(err)
		}
		return &TransferResult{
			Success:         true,
			Rail:            request.Rail,
			ReferenceNumber: response.ReferenciaSinpe,
			Commission:      response.Comision,
			SubmittedAt:     response.FechaCreacion,
		}, nil

	case RailSinpeCredit:
		response, err := submitter.bank.SubmitSinpeCredit(ctx, corebank.SinpeCreditRequest{
			CuentaOrigen:  request.SourceAccount,
			CuentaDestino: request.Destination.Identifier,
			Monto:         request.Amount,
			Moneda:        request.Currency,
			Detalle:       detail,
			IDReto:        request.ChallengeID,
		})
		if err != nil {
			return nil, mapBankError(err)
		}
		return &TransferResult{
			Success:         true,
			Rail:            request.Rail,
			ReferenceNumber: response.NumeroTransaccionCore,
			Commission:      response.Comision,
			SubmittedAt:     response.FechaCreacion,
		}, nil

	case RailSinpeDebit:
		response, err := submitter.bank.SubmitSinpeDebit(ctx, corebank.SinpeDebitRequest{
			CuentaOrigen:  request.SourceAccount,
			CuentaDestino: request.Destination.Identifier,
			Monto:         request.Amount,
			Moneda:        request.Currency,
			Detalle:       detail,
			IDReto:        request.ChallengeID,
		})
		if err != nil {
			return nil, mapBankError(err)
		}
		return &TransferResult{
			Success:         true,
			Rail:            request.Rail,
			ReferenceNumber: response.ReferenciaSinpe,
			Commission:      response.Comision,
			SubmittedAt:     response.FechaCreacion,
		}, nil

	case RailMovil:
		response, err := submitter.bank.SubmitMovil(ctx, corebank.MovilTransferRequest{
			CuentaOrigen:   request.SourceAccount,
			NumeroMonedero: request.Destination.Identifier,
			Monto:          request.Amount,
			Detalle:        detail,
			IDReto:         request.ChallengeID,
		})
		if err != nil {
			return nil, mapBankError(err)
		}
		return &TransferResult{
			Success:         true,
			Rail:            request.Rail,
			ReferenceNumber: response.ReferenciaMovil,
			SubmittedAt:     response.FechaCreacion,
		}, nil
	}

	// The HTTP layer validates rails before an attempt exists.
	panic("transfer: unsupported rail " + string(request.Rail))
}
