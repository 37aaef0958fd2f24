// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/corebank"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/transfer"
)

// serviceBank is a scripted CoreBank double for the full attempt lifecycle.
// Unlike fakeBank it carries a member directory and challenge responses.
type serviceBank struct {
	fakeBank

	accounts  []corebank.AccountSummary
	favorites []corebank.FavoriteEntry

	challengeCreates int
	lastImmediateReq *corebank.SinpeImmediateRequest
}

func (bank *serviceBank) OwnAccounts(context.Context) ([]corebank.AccountSummary, error) {
	return bank.accounts, nil
}

func (bank *serviceBank) Favorites(context.Context, string) ([]corebank.FavoriteEntry, error) {
	return bank.favorites, nil
}

func (bank *serviceBank) CreateChallenge(_ context.Context, input corebank.ChallengeCreateRequest) (*corebank.ChallengeCreateResponse, error) {
	bank.challengeCreates++
	return &corebank.ChallengeCreateResponse{
		IDPublico:           "reto-001",
		FactoresSolicitados: []string{"OTP"},
		FechaExpiracion:     time.Now().Add(5 * time.Minute),
		IntentosMaximos:     3,
	}, nil
}

func (bank *serviceBank) ValidateChallenge(_ context.Context, input corebank.ChallengeValidateRequest) (*corebank.ChallengeValidateResponse, error) {
	return &corebank.ChallengeValidateResponse{
		IDPublico: input.IDPublico,
		Estado:    corebank.ChallengeStateValidated,
		Validado:  true,
	}, nil
}

func (bank *serviceBank) SubmitSinpeImmediate(_ context.Context, input corebank.SinpeImmediateRequest) (*corebank.SinpeImmediateResponse, error) {
	bank.lastImmediateReq = &input
	return &corebank.SinpeImmediateResponse{
		ReferenciaSinpe: "SINPE-REF-100",
		FechaCreacion:   time.Now(),
		Monto:           input.Monto,
		Comision:        500,
	}, nil
}

func newServiceBank() *serviceBank {
	return &serviceBank{
		accounts: []corebank.AccountSummary{
			{IDCuenta: "acc-1", Numero: "CR9900000000000000000001", Moneda: "CRC", Saldo: 1000000},
		},
		favorites: []corebank.FavoriteEntry{
			{IDFavorito: "fav-1", Alias: "Mamá", Identificador: "CR9900000000000000000002", Titular: "Ana Vargas", Moneda: "CRC", CodigoBanco: "151"},
		},
	}
}

// challengePolicy is a fixed capability table.
type challengePolicy bool

func (required challengePolicy) RequiresChallenge(context.Context, transfer.OperationType) (bool, error) {
	return bool(required), nil
}

// memoryJournal collects entries in memory.
type memoryJournal struct {
	mu      sync.Mutex
	entries []transfer.JournalEntry
}

func (journal *memoryJournal) Record(_ context.Context, entry transfer.JournalEntry) error {
	journal.mu.Lock()
	defer journal.mu.Unlock()
	journal.entries = append(journal.entries, entry)
	return nil
}

func (journal *memoryJournal) Recent(context.Context, string, int) ([]transfer.JournalEntry, error) {
	journal.mu.Lock()
	defer journal.mu.Unlock()
	return journal.entries, nil
}

// recordingPublisher captures event routing keys.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (publisher *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	publisher.keys = append(publisher.keys, routingKey)
	return nil
}

func (publisher *recordingPublisher) Close() {}

type fixedTokens string

func (token fixedTokens) Token() (string, error) {
	return string(token), nil
}

func newTestService(bank *serviceBank, required bool) (*transfer.Service, *memoryJournal, *recordingPublisher) {
	journal := &memoryJournal{}
	publisher := &recordingPublisher{}
	service := transfer.NewService(
		bank,
		challengePolicy(required),
		journal,
		publisher,
		fixedTokens("header.payload.signature"),
		"APP_MOVIL",
		slog.Default(),
	)
	return service, journal, publisher
}

func TestService_FullLifecycleWithChallenge(t *testing.T) {
	ctx := context.Background()
	bank := newServiceBank()
	service, journal, publisher := newTestService(bank, true)

	view, err := service.StartAttempt(ctx, "user-1", transfer.StartAttemptInput{
		Rail:            transfer.RailSinpeImmediate,
		SourceAccountID: "acc-1",
		Amount:          250000,
		Detail:          "Pago de alquiler septiembre",
	})
	require.NoError(t, err)
	require.NotEmpty(t, view.ID)
	assert.Equal(t, "CRC", view.SourceCurrency)

	destination, err := service.ResolveDestination(ctx, "user-1", view.ID, transfer.DestinationSelection{
		Kind:       transfer.KindFavorite,
		FavoriteID: "fav-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Vargas", destination.DisplayName)

	challenge, err := service.RequestChallenge(ctx, "user-1", view.ID, "10.0.0.8")
	require.NoError(t, err)
	require.True(t, challenge.Required)
	assert.Equal(t, "reto-001", challenge.PublicID)
	assert.Equal(t, 1, bank.challengeCreates)

	require.NoError(t, service.SubmitChallengeProof(ctx, "user-1", view.ID, "123456", ""))

	result, err := service.Submit(ctx, "user-1", view.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "SINPE-REF-100", result.ReferenceNumber)
	assert.Equal(t, int64(500), result.Commission)

	// The validated handle rode along on the wire request.
	require.NotNil(t, bank.lastImmediateReq)
	assert.Equal(t, "reto-001", bank.lastImmediateReq.IDReto)

	// Outcome journaled with the token fingerprint, never the token.
	require.Len(t, journal.entries, 1)
	entry := journal.entries[0]
	assert.Equal(t, transfer.OutcomeSettled, entry.Outcome)
	assert.Equal(t, "SINPE-REF-100", entry.ReferenceNumber)
	assert.NotEmpty(t, entry.TokenFingerprint)
	assert.NotContains(t, entry.TokenFingerprint, "header.payload")

	assert.Equal(t, []string{"transfer.settled"}, publisher.keys)
}

func TestService_NoChallengeShortCircuit(t *testing.T) {
	ctx := context.Background()
	bank := newServiceBank()
	service, _, _ := newTestService(bank, false)

	view, err := service.StartAttempt(ctx, "user-1", transfer.StartAttemptInput{
		Rail:            transfer.RailSinpeImmediate,
		SourceAccountID: "acc-1",
		Amount:          10000,
		Detail:          "Pago de servicios municipales",
	})
	require.NoError(t, err)

	_, err = service.ResolveDestination(ctx, "user-1", view.ID, transfer.DestinationSelection{
		Kind:       transfer.KindFavorite,
		FavoriteID: "fav-1",
	})
	require.NoError(t, err)

	challenge, err := service.RequestChallenge(ctx, "user-1", view.ID, "10.0.0.8")
	require.NoError(t, err)
	assert.False(t, challenge.Required)
	assert.Zero(t, bank.challengeCreates)

	result, err := service.Submit(ctx, "user-1", view.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	// No challenge was issued, so none is referenced.
	require.NotNil(t, bank.lastImmediateReq)
	assert.Empty(t, bank.lastImmediateReq.IDReto)
}

func TestService_SubmitEnforcesSequencing(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(newServiceBank(), true)

	view, err := service.StartAttempt(ctx, "user-1", transfer.StartAttemptInput{
		Rail:            transfer.RailSinpeImmediate,
		SourceAccountID: "acc-1",
		Amount:          10000,
		Detail:          "Pago de mensualidad gimnasio",
	})
	require.NoError(t, err)

	// No destination yet.
	_, err = service.Submit(ctx, "user-1", view.ID)
	requireAppCode(t, err, "CONFLICT")

	_, err = service.ResolveDestination(ctx, "user-1", view.ID, transfer.DestinationSelection{
		Kind:       transfer.KindFavorite,
		FavoriteID: "fav-1",
	})
	require.NoError(t, err)

	// Destination resolved but the challenge decision was never requested.
	_, err = service.Submit(ctx, "user-1", view.ID)
	requireAppCode(t, err, "CONFLICT")
}

func TestService_SubmitIsSingleShot(t *testing.T) {
	ctx := context.Background()
	service, journal, _ := newTestService(newServiceBank(), false)

	view, err := service.StartAttempt(ctx, "user-1", transfer.StartAttemptInput{
		Rail:            transfer.RailSinpeImmediate,
		SourceAccountID: "acc-1",
		Amount:          10000,
		Detail:          "Pago de poliza de vehiculo",
	})
	require.NoError(t, err)

	_, err = service.ResolveDestination(ctx, "user-1", view.ID, transfer.DestinationSelection{
		Kind:       transfer.KindFavorite,
		FavoriteID: "fav-1",
	})
	require.NoError(t, err)

	_, err = service.RequestChallenge(ctx, "user-1", view.ID, "10.0.0.8")
	require.NoError(t, err)

	_, err = service.Submit(ctx, "user-1", view.ID)
	require.NoError(t, err)

	_, err = service.Submit(ctx, "user-1", view.ID)
	requireAppCode(t, err, "CONFLICT")
	assert.Len(t, journal.entries, 1)
}

func TestService_AttemptsAreSubjectScoped(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(newServiceBank(), true)

	view, err := service.StartAttempt(ctx, "user-1", transfer.StartAttemptInput{
		Rail:            transfer.RailInternal,
		SourceAccountID: "acc-1",
		Amount:          10000,
		Detail:          "Ahorro programado del mes",
	})
	require.NoError(t, err)

	// Another member cannot see or drive the attempt.
	_, err = service.Attempt("user-2", view.ID)
	requireAppCode(t, err, "NOT_FOUND")

	_, err = service.Submit(ctx, "user-2", view.ID)
	requireAppCode(t, err, "NOT_FOUND")
}

func TestService_ResetDiscardsOpenAttempts(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(newServiceBank(), true)

	view, err := service.StartAttempt(ctx, "user-1", transfer.StartAttemptInput{
		Rail:            transfer.RailInternal,
		SourceAccountID: "acc-1",
		Amount:          10000,
		Detail:          "Transferencia entre mis cuentas",
	})
	require.NoError(t, err)

	service.Reset()

	_, err = service.Attempt("user-1", view.ID)
	requireAppCode(t, err, "NOT_FOUND")
}

func TestService_CancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(newServiceBank(), true)

	view, err := service.StartAttempt(ctx, "user-1", transfer.StartAttemptInput{
		Rail:            transfer.RailInternal,
		SourceAccountID: "acc-1",
		Amount:          10000,
		Detail:          "Transferencia entre mis cuentas",
	})
	require.NoError(t, err)

	service.CancelAttempt(ctx, "user-1", view.ID)
	service.CancelAttempt(ctx, "user-1", view.ID)

	_, err = service.Attempt("user-1", view.ID)
	requireAppCode(t, err, "NOT_FOUND")
}

func TestService_UnknownSourceAccount(t *testing.T) {
	service, _, _ := newTestService(newServiceBank(), true)

	_, err := service.StartAttempt(context.Background(), "user-1", transfer.StartAttemptInput{
		Rail:            transfer.RailInternal,
		SourceAccountID: "acc-missing",
		Amount:          10000,
		Detail:          "Transferencia entre mis cuentas",
	})
	requireAppCode(t, err, "NOT_FOUND")
}

func requireAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, code, appError.Code)
}
