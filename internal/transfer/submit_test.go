// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/corebank"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/transfer"
)

// fakeBank is a scripted CoreBank double. Each submission method records the
// request it received and returns the scripted response or error.
type fakeBank struct {
	err error

	internalReq  *corebank.InternalTransferRequest
	internalResp *corebank.InternalTransferResponse

	immediateReq  *corebank.SinpeImmediateRequest
	immediateResp *corebank.SinpeImmediateResponse

	creditResp *corebank.SinpeCreditResponse
	debitResp  *corebank.SinpeDebitResponse

	movilReq  *corebank.MovilTransferRequest
	movilResp *corebank.MovilTransferResponse
}

func (bank *fakeBank) OwnAccounts(context.Context) ([]corebank.AccountSummary, error) {
	return nil, nil
}

func (bank *fakeBank) Favorites(context.Context, string) ([]corebank.FavoriteEntry, error) {
	return nil, nil
}

func (bank *fakeBank) LookupInternalAccount(context.Context, string) (*corebank.DestinationResponse, error) {
	return nil, nil
}

func (bank *fakeBank) LookupSinpeAccount(context.Context, string) (*corebank.DestinationResponse, error) {
	return nil, nil
}

func (bank *fakeBank) LookupWallet(context.Context, string) (*corebank.DestinationResponse, error) {
	return nil, nil
}

func (bank *fakeBank) ChallengeOperations(context.Context) ([]string, error) {
	return nil, nil
}

func (bank *fakeBank) CreateChallenge(context.Context, corebank.ChallengeCreateRequest) (*corebank.ChallengeCreateResponse, error) {
	return nil, nil
}

func (bank *fakeBank) ValidateChallenge(context.Context, corebank.ChallengeValidateRequest) (*corebank.ChallengeValidateResponse, error) {
	return nil, nil
}

func (bank *fakeBank) SubmitInternal(_ context.Context, input corebank.InternalTransferRequest) (*corebank.InternalTransferResponse, error) {
	bank.internalReq = &input
	return bank.internalResp, bank.err
}

func (bank *fakeBank) SubmitSinpeImmediate(_ context.Context, input corebank.SinpeImmediateRequest) (*corebank.SinpeImmediateResponse, error) {
	bank.immediateReq = &input
	return bank.immediateResp, bank.err
}

func (bank *fakeBank) SubmitSinpeCredit(_ context.Context, input corebank.SinpeCreditRequest) (*corebank.SinpeCreditResponse, error) {
	return bank.creditResp, bank.err
}

func (bank *fakeBank) SubmitSinpeDebit(_ context.Context, input corebank.SinpeDebitRequest) (*corebank.SinpeDebitResponse, error) {
	return bank.debitResp, bank.err
}

func (bank *fakeBank) SubmitMovil(_ context.Context, input corebank.MovilTransferRequest) (*corebank.MovilTransferResponse, error) {
	bank.movilReq = &input
	return bank.movilResp, bank.err
}

func baseRequest(rail transfer.Rail) transfer.TransferRequest {
	return transfer.TransferRequest{
		Rail:          rail,
		SourceAccount: "CR9900000000000000000001",
		Destination: transfer.ValidatedDestination{
			Kind:       transfer.KindManual,
			Identifier: "CR9900000000000000000002",
		},
		Amount:      250000,
		Currency:    "CRC",
		Detail:      "Pago de matrícula universitaria",
		ChallengeID: "ch-001",
	}
}

func TestSubmitter_NormalizesRailResponses(t *testing.T) {
	submittedAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		rail          transfer.Rail
		bank          *fakeBank
		wantReference string
		wantComision  int64
	}{
		{
			name: "internal_uses_core_document_number",
			rail: transfer.RailInternal,
			bank: &fakeBank{internalResp: &corebank.InternalTransferResponse{
				NumeroDocumentoCore: "DOC-778812", FechaCreacion: submittedAt, Monto: 250000,
			}},
			wantReference: "DOC-778812",
		},
		{
			name: "sinpe_immediate_uses_network_reference",
			rail: transfer.RailSinpeImmediate,
			bank: &fakeBank{immediateResp: &corebank.SinpeImmediateResponse{
				ReferenciaSinpe: "SINPE-20260829-001", FechaCreacion: submittedAt, Comision: 500,
			}},
			wantReference: "SINPE-20260829-001",
			wantComision:  500,
		},
		{
			name: "sinpe_credit_uses_core_transaction_number",
			rail: transfer.RailSinpeCredit,
			bank: &fakeBank{creditResp: &corebank.SinpeCreditResponse{
				NumeroTransaccionCore: "TRX-55000", FechaCreacion: submittedAt, Comision: 300,
			}},
			wantReference: "TRX-55000",
			wantComision:  300,
		},
		{
			name: "sinpe_debit_uses_network_reference",
			rail: transfer.RailSinpeDebit,
			bank: &fakeBank{debitResp: &corebank.SinpeDebitResponse{
				ReferenciaSinpe: "SINPE-DTR-9001", FechaCreacion: submittedAt, Comision: 700,
			}},
			wantReference: "SINPE-DTR-9001",
			wantComision:  700,
		},
		{
			name: "movil_uses_wallet_reference",
			rail: transfer.RailMovil,
			bank: &fakeBank{movilResp: &corebank.MovilTransferResponse{
				ReferenciaMovil: "MOV-3321", FechaCreacion: submittedAt,
			}},
			wantReference: "MOV-3321",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := transfer.NewSubmitter(tt.bank)

			request := baseRequest(tt.rail)
			if tt.rail == transfer.RailMovil {
				request.Destination.Identifier = "88881234"
			}

			result, err := submitter.Submit(context.Background(), request)

			require.NoError(t, err)
			assert.True(t, result.Success)
			assert.Equal(t, tt.rail, result.Rail)
			assert.Equal(t, tt.wantReference, result.ReferenceNumber)
			assert.Equal(t, tt.wantComision, result.Commission)
			assert.Equal(t, submittedAt, result.SubmittedAt)
		})
	}
}

func TestSubmitter_FoldsDetailToASCII(t *testing.T) {
	bank := &fakeBank{internalResp: &corebank.InternalTransferResponse{NumeroDocumentoCore: "DOC-1"}}
	submitter := transfer.NewSubmitter(bank)

	_, err := submitter.Submit(context.Background(), baseRequest(transfer.RailInternal))

	require.NoError(t, err)
	require.NotNil(t, bank.internalReq)
	assert.Equal(t, "Pago de matricula universitaria", bank.internalReq.Detalle)
	assert.Equal(t, "ch-001", bank.internalReq.IDReto)
}

func TestSubmitter_MapsBackendErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		retryable bool
	}{
		{
			name:     "insufficient_funds",
			err:      &corebank.APIError{StatusCode: 422, Codigo: "FONDOS_INSUFICIENTES", Descripcion: "Saldo insuficiente"},
			wantCode: "INSUFFICIENT_FUNDS",
		},
		{
			name:     "challenge_expired_at_submission",
			err:      &corebank.APIError{StatusCode: 410, Codigo: "RETO_EXPIRADO"},
			wantCode: "CHALLENGE_EXPIRED",
		},
		{
			name:     "session_lapsed",
			err:      &corebank.APIError{StatusCode: 401, Codigo: "TOKEN_INVALIDO"},
			wantCode: "SESSION_EXPIRED",
		},
		{
			name:      "core_outage",
			err:       &corebank.APIError{StatusCode: 503},
			wantCode:  "REMOTE_UNAVAILABLE",
			retryable: true,
		},
		{
			name:     "business_rule_rejection",
			err:      &corebank.APIError{StatusCode: 422, Codigo: "LIMITE_DIARIO", Descripcion: "Límite diario excedido"},
			wantCode: "BACKEND_REJECTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := transfer.NewSubmitter(&fakeBank{err: tt.err})

			_, err := submitter.Submit(context.Background(), baseRequest(transfer.RailSinpeImmediate))

			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.Code)
			assert.Equal(t, tt.retryable, ae.Retryable)

			// The display message for business rejections is the core's own.
			if tt.wantCode == "BACKEND_REJECTED" {
				assert.Equal(t, "Límite diario excedido", ae.Message)
			}
		})
	}
}
