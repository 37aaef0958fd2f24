// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/corebank"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
)

// CoreBank is the slice of the core banking client the transfer engine
// consumes. Satisfied by [*corebank.Client]; narrowed here so tests can
// substitute a scripted fake.
type CoreBank interface {
	// Directory
	OwnAccounts(ctx context.Context) ([]corebank.AccountSummary, error)
	Favorites(ctx context.Context, rail string) ([]corebank.FavoriteEntry, error)

	// Destination lookups
	LookupInternalAccount(ctx context.Context, identifier string) (*corebank.DestinationResponse, error)
	LookupSinpeAccount(ctx context.Context, iban string) (*corebank.DestinationResponse, error)
	LookupWallet(ctx context.Context, walletNumber string) (*corebank.DestinationResponse, error)

	// Challenges
	ChallengeOperations(ctx context.Context) ([]string, error)
	CreateChallenge(ctx context.Context, input corebank.ChallengeCreateRequest) (*corebank.ChallengeCreateResponse, error)
	ValidateChallenge(ctx context.Context, input corebank.ChallengeValidateRequest) (*corebank.ChallengeValidateResponse, error)

	// Terminal submissions
	SubmitInternal(ctx context.Context, input corebank.InternalTransferRequest) (*corebank.InternalTransferResponse, error)
	SubmitSinpeImmediate(ctx context.Context, input corebank.SinpeImmediateRequest) (*corebank.SinpeImmediateResponse, error)
	SubmitSinpeCredit(ctx context.Context, input corebank.SinpeCreditRequest) (*corebank.SinpeCreditResponse, error)
	SubmitSinpeDebit(ctx context.Context, input corebank.SinpeDebitRequest) (*corebank.SinpeDebitResponse, error)
	SubmitMovil(ctx context.Context, input corebank.MovilTransferRequest) (*corebank.MovilTransferResponse, error)
}

// # Error Mapping

// Core error codes with dedicated channel semantics.
const (
	coreCodeInsufficientFunds = "FONDOS_INSUFICIENTES"
	coreCodeChallengeInvalid  = "RETO_INVALIDO"
	coreCodeChallengeExpired  = "RETO_EXPIRADO"
)

// mapBankError translates core banking failures into the channel taxonomy.
// Branching keys off status codes and the core's machine codes — raw message
// text is carried for display only, never used as control data.
func mapBankError(err error) error {
	if err == nil {
		return nil
	}

	// Session failures from the token source arrive pre-typed.
	if appError := apperr.As(err); appError != nil {
		return appError
	}

	if errors.Is(err, corebank.ErrUnreachable) {
		return apperr.RemoteUnavailable(err)
	}

	var apiError *corebank.APIError
	if !errors.As(err, &apiError) {
		return apperr.Internal(err)
	}

	switch {
	case apiError.StatusCode == http.StatusUnauthorized:
		return apperr.SessionExpired()
	case apiError.StatusCode >= 500:
		return apperr.RemoteUnavailable(err)
	}

	switch apiError.Codigo {
	case coreCodeInsufficientFunds:
		return apperr.InsufficientFunds()
	case coreCodeChallengeExpired:
		return apperr.ChallengeExpired()
	case coreCodeChallengeInvalid:
		return apperr.ChallengeRejected(0)
	}

	return apperr.BackendRejected(apiError.Descripcion)
}

// # Lookup Adapter

// bankLookup adapts the per-rail lookup endpoints to the resolver's
// [RemoteLookup] port.
type bankLookup struct {
	bank CoreBank
}

// NewBankLookup wraps the core banking client as a [RemoteLookup].
func NewBankLookup(bank CoreBank) RemoteLookup {
	return &bankLookup{bank: bank}
}

func (adapter *bankLookup) Lookup(ctx context.Context, rail Rail, identifier string) (*ValidatedDestination, error) {
	var response *corebank.DestinationResponse
	var err error

	switch rail {
	case RailInternal:
		response, err = adapter.bank.LookupInternalAccount(ctx, identifier)
	case RailMovil:
		response, err = adapter.bank.LookupWallet(ctx, identifier)
	default:
		response, err = adapter.bank.LookupSinpeAccount(ctx, identifier)
	}

	if err != nil {
		// A confirmed directory miss is distinguishable from an outage:
		// NotFound means "this account does not exist", unavailable means
		// "try again" — the UI treats them differently on purpose.
		var apiError *corebank.APIError
		if errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound {
			return nil, apperr.DestinationNotFound()
		}
		return nil, mapBankError(err)
	}

	return &ValidatedDestination{
		Identifier:  response.Identificador,
		DisplayName: response.Titular,
		Currency:    response.Moneda,
		BankCode:    response.CodigoBanco,
	}, nil
}

// # Challenger Adapter

// bankChallenger adapts the challenge endpoints to the orchestrator's
// [Challenger] port.
type bankChallenger struct {
	bank        CoreBank
	channelCode string
}

// NewBankChallenger wraps the core banking client as a [Challenger].
func NewBankChallenger(bank CoreBank, channelCode string) Challenger {
	return &bankChallenger{bank: bank, channelCode: channelCode}
}

func (adapter *bankChallenger) Create(ctx context.Context, operation OperationType, metadata map[string]string, clientIP string) (*Challenge, error) {
	response, err := adapter.bank.CreateChallenge(ctx, corebank.ChallengeCreateRequest{
		TipoOperacion: string(operation),
		Metadata:      metadata,
		Canal:         adapter.channelCode,
		IPCliente:     clientIP,
	})
	if err != nil {
		return nil, mapBankError(err)
	}

	return &Challenge{
		PublicID:           response.IDPublico,
		ProofKinds:         response.FactoresSolicitados,
		ExpiresAt:          response.FechaExpiracion,
		MaxAttempts:        response.IntentosMaximos,
		ConfirmationWindow: time.Duration(response.TiempoMaximoConfirmacionSegundos) * time.Second,
	}, nil
}

func (adapter *bankChallenger) Validate(ctx context.Context, publicID, otpCode, emailCode string) (ProofOutcome, error) {
	response, err := adapter.bank.ValidateChallenge(ctx, corebank.ChallengeValidateRequest{
		IDPublico:    publicID,
		CodigoOTP:    otpCode,
		CodigoCorreo: emailCode,
	})
	if err != nil {
		return ProofRejected, mapBankError(err)
	}

	switch response.Estado {
	case corebank.ChallengeStateValidated:
		return ProofValidated, nil
	case corebank.ChallengeStateExpired:
		return ProofExpired, nil
	default:
		return ProofRejected, nil
	}
}
