// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/corebank"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/constants"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/events"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/metrics"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/sec"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/pkg/uuidv7"
)

// attempt is the per-transfer working state. One owner, one rail, one
// orchestrator; discarded after submission or cancellation.
type attempt struct {
	id                string
	subject           string
	rail              Rail
	source            Account
	amount            int64
	detail            string
	resolver          *Resolver
	orchestrator      *Orchestrator
	destination       *ValidatedDestination
	operation         OperationType
	challengeAsked    bool
	challengeRequired bool
	done              bool
	createdAt         time.Time
}

// # Definitions & Constructors

// Service drives transfer attempts end to end.
//
// It is the only component holding state across calls: a map of in-flight
// attempts keyed by ID. Everything else (resolver, orchestrator) lives
// inside the attempt it serves.
//
// # Review Process
//
// This service moves money. Changes to the sequencing (resolve → classify →
// challenge → submit) require a second reviewer from the payments team.
type Service struct {
	bank         CoreBank
	capabilities CapabilityChecker
	submitter    *Submitter
	journal      Journal
	publisher    events.Publisher
	tokens       corebank.TokenSource
	channelCode  string
	logger       *slog.Logger

	mu       sync.Mutex
	attempts map[string]*attempt
}

// NewService constructs the transfer [Service].
func NewService(
	bank CoreBank,
	capabilities CapabilityChecker,
	journal Journal,
	publisher events.Publisher,
	tokens corebank.TokenSource,
	channelCode string,
	logger *slog.Logger,
) *Service {
	return &Service{
		bank:         bank,
		capabilities: capabilities,
		submitter:    NewSubmitter(bank),
		journal:      journal,
		publisher:    publisher,
		tokens:       tokens,
		channelCode:  channelCode,
		logger:       logger,
		attempts:     make(map[string]*attempt),
	}
}

// Reset implements the session logout fan-out: every in-flight attempt is
// discarded so nothing survives into the next user's session.
func (service *Service) Reset() {
	service.mu.Lock()
	defer service.mu.Unlock()

	for _, a := range service.attempts {
		a.orchestrator.Cancel()
	}
	service.attempts = make(map[string]*attempt)
}

// # Attempt Lifecycle

// StartAttemptInput describes a new transfer attempt.
type StartAttemptInput struct {
	Rail            Rail
	SourceAccountID string
	Amount          int64 // minor units
	Detail          string
}

// AttemptView is the client-facing snapshot of an attempt.
type AttemptView struct {
	ID             string                `json:"id"`
	Rail           Rail                  `json:"rail"`
	SourceAccount  string                `json:"source_account"`
	SourceCurrency string                `json:"source_currency"`
	Amount         int64                 `json:"amount"`
	Detail         string                `json:"detail"`
	Destination    *ValidatedDestination `json:"destination,omitempty"`
	Operation      OperationType         `json:"operation,omitempty"`
	ChallengeState ChallengeState        `json:"challenge_state"`
}

/*
StartAttempt opens a transfer attempt on one rail.

Description: Fetches the member's accounts and (for the rail) favorites,
binds the chosen source account, and builds the attempt-scoped resolver and
challenge orchestrator. Nothing is submitted yet.

Returns:
  - AttemptView with the new attempt ID.
  - apperr.NotFound if the source account does not exist.
*/
func (service *Service) StartAttempt(ctx context.Context, subject string, input StartAttemptInput) (*AttemptView, error) {

	// ── 1. Fetch the local directories ─────────────────────────────────────

	accountRows, err := service.bank.OwnAccounts(ctx)
	if err != nil {
		return nil, mapBankError(err)
	}

	favoriteRows, err := service.bank.Favorites(ctx, string(input.Rail))
	if err != nil {
		return nil, mapBankError(err)
	}

	accounts := make([]Account, 0, len(accountRows))
	var source *Account
	for _, row := range accountRows {
		account := Account{
			ID:       row.IDCuenta,
			Number:   row.Numero,
			Currency: row.Moneda,
			Balance:  row.Saldo,
		}
		accounts = append(accounts, account)
		if account.ID == input.SourceAccountID {
			found := account
			source = &found
		}
	}
	if source == nil {
		return nil, apperr.NotFound("Source account")
	}

	favorites := make([]Favorite, 0, len(favoriteRows))
	for _, row := range favoriteRows {
		favorites = append(favorites, Favorite{
			ID:          row.IDFavorito,
			Alias:       row.Alias,
			Identifier:  row.Identificador,
			DisplayName: row.Titular,
			Currency:    row.Moneda,
			BankCode:    row.CodigoBanco,
		})
	}

	// ── 2. Build the attempt-scoped machinery ──────────────────────────────

	a := &attempt{
		id:           uuidv7.New(),
		subject:      subject,
		rail:         input.Rail,
		source:       *source,
		amount:       input.Amount,
		detail:       input.Detail,
		resolver:     NewResolver(input.Rail, source.Currency, favorites, accounts, NewBankLookup(service.bank)),
		orchestrator: NewOrchestrator(NewBankChallenger(service.bank, service.channelCode), service.capabilities),
		createdAt:    time.Now(),
	}

	service.mu.Lock()
	service.attempts[a.id] = a
	service.mu.Unlock()

	service.logger.InfoContext(ctx, "transfer_attempt_started",
		slog.String("attempt_id", a.id),
		slog.String("rail", string(input.Rail)),
	)

	return service.view(a), nil
}

/*
ResolveDestination resolves the attempt's transfer target.

Description: Runs the resolver's variant dispatch. On success the operation
type is classified immediately — it is fixed by (rail, destination kind) and
every later challenge decision keys off it.
*/
func (service *Service) ResolveDestination(ctx context.Context, subject, attemptID string, selection DestinationSelection) (*ValidatedDestination, error) {
	a, err := service.lookupAttempt(subject, attemptID)
	if err != nil {
		return nil, err
	}

	if !selection.Kind.IsValid() {
		return nil, apperr.ValidationError("Unknown destination kind")
	}
	if _, ok := operationTable[a.rail][selection.Kind]; !ok {
		return nil, apperr.ValidationError("This destination kind is not available on the selected rail")
	}

	destination, err := a.resolver.Resolve(ctx, selection)
	if err != nil {
		if selection.Kind == KindManual && !errors.Is(err, ErrResolutionPending) {
			metrics.DestinationLookups.WithLabelValues(string(a.rail), lookupOutcome(err)).Inc()
		}
		return nil, err
	}

	if selection.Kind == KindManual {
		metrics.DestinationLookups.WithLabelValues(string(a.rail), "found").Inc()
	}

	service.mu.Lock()
	a.destination = destination
	a.operation = Classify(a.rail, selection.Kind)
	service.mu.Unlock()

	return destination, nil
}

// ChallengeView is the client-facing slice of an issued challenge.
type ChallengeView struct {
	Required    bool       `json:"required"`
	PublicID    string     `json:"public_id,omitempty"`
	ProofKinds  []string   `json:"proof_kinds,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxAttempts int        `json:"max_attempts,omitempty"`
}

/*
RequestChallenge enters the second-factor orchestration for the attempt.

Description: Requires a resolved destination (the operation type drives the
capability check). When the operation type needs no challenge, the response
says so and the attempt may be submitted immediately.
*/
func (service *Service) RequestChallenge(ctx context.Context, subject, attemptID, clientIP string) (*ChallengeView, error) {
	a, err := service.lookupAttempt(subject, attemptID)
	if err != nil {
		return nil, err
	}

	service.mu.Lock()
	destination := a.destination
	service.mu.Unlock()

	if destination == nil {
		return nil, apperr.Conflict("Resolve a destination before requesting a challenge.")
	}

	metadata := map[string]string{
		"monto":  formatAmount(a.amount),
		"moneda": a.source.Currency,
	}

	required, challenge, err := a.orchestrator.Begin(ctx, a.operation, metadata, clientIP)
	if errors.Is(err, ErrChallengeActive) {
		return nil, apperr.Conflict("A challenge is already in progress for this transfer.")
	}
	if err != nil {
		return nil, err
	}

	service.mu.Lock()
	a.challengeAsked = true
	a.challengeRequired = required
	service.mu.Unlock()

	if !required {
		return &ChallengeView{Required: false}, nil
	}

	return &ChallengeView{
		Required:    true,
		PublicID:    challenge.PublicID,
		ProofKinds:  challenge.ProofKinds,
		ExpiresAt:   &challenge.ExpiresAt,
		MaxAttempts: challenge.MaxAttempts,
	}, nil
}

/*
SubmitChallengeProof validates the user's second-factor code(s).

Description: Thin pass-through to the orchestrator, plus validation metrics.
Rejection stays retryable up to the server cap; expiry forces a fresh
challenge request.
*/
func (service *Service) SubmitChallengeProof(ctx context.Context, subject, attemptID, otpCode, emailCode string) error {
	a, err := service.lookupAttempt(subject, attemptID)
	if err != nil {
		return err
	}

	err = a.orchestrator.SubmitProof(ctx, otpCode, emailCode)
	metrics.ChallengeValidations.WithLabelValues(proofResult(err)).Inc()
	return err
}

/*
Submit fires the terminal submission for the attempt.

Description: Requires the challenge decision to have been made. A required
challenge is consumed here — exactly once; whatever the outcome, the handle
is spent and a retry needs a fresh orchestration. The outcome is journaled
and published before being returned.
*/
func (service *Service) Submit(ctx context.Context, subject, attemptID string) (*TransferResult, error) {
	a, err := service.lookupAttempt(subject, attemptID)
	if err != nil {
		return nil, err
	}

	service.mu.Lock()
	if a.done {
		service.mu.Unlock()
		return nil, apperr.Conflict("This transfer attempt has already been submitted.")
	}
	destination := a.destination
	challengeAsked := a.challengeAsked
	challengeRequired := a.challengeRequired
	service.mu.Unlock()

	if destination == nil {
		return nil, apperr.Conflict("Resolve a destination before submitting.")
	}
	if !challengeAsked {
		return nil, apperr.Conflict("Request the challenge decision before submitting.")
	}

	// ── 1. Consume the single-use challenge handle when one gates us ───────

	var challengeID string
	if challengeRequired {
		challengeID, err = a.orchestrator.Consume()
		if err != nil {
			return nil, err
		}
	}

	// ── 2. Fire the rail submission ────────────────────────────────────────

	request := TransferRequest{
		Rail:          a.rail,
		SourceAccount: a.source.Number,
		Destination:   *destination,
		Amount:        a.amount,
		Currency:      a.source.Currency,
		Detail:        a.detail,
		ChallengeID:   challengeID,
	}

	start := time.Now()
	result, submitErr := service.submitter.Submit(ctx, request)
	metrics.SubmitLatency.WithLabelValues(string(a.rail)).Observe(time.Since(start).Seconds())
	metrics.TransfersTotal.WithLabelValues(string(a.rail), submitOutcome(submitErr)).Inc()

	// ── 3. Journal and publish the terminal outcome ────────────────────────

	service.recordOutcome(ctx, a, result, submitErr)

	service.mu.Lock()
	a.done = true
	service.mu.Unlock()

	if submitErr != nil {
		return nil, submitErr
	}

	service.logger.InfoContext(ctx, "transfer_settled",
		slog.String("attempt_id", a.id),
		slog.String("rail", string(a.rail)),
		slog.String("reference", result.ReferenceNumber),
	)

	return result, nil
}

// CancelAttempt discards the attempt and its challenge, if any. Cancelling
// an unknown attempt is not an error — the client may retry cancellation.
func (service *Service) CancelAttempt(ctx context.Context, subject, attemptID string) {
	service.mu.Lock()
	a, ok := service.attempts[attemptID]
	if ok && a.subject == subject {
		a.orchestrator.Cancel()
		delete(service.attempts, attemptID)
	}
	service.mu.Unlock()

	if ok {
		service.logger.InfoContext(ctx, "transfer_attempt_cancelled", slog.String("attempt_id", attemptID))
	}
}

// RecentActivity returns the member's latest journal entries.
func (service *Service) RecentActivity(ctx context.Context, subject string, limit int) ([]JournalEntry, error) {
	return service.journal.Recent(ctx, subject, limit)
}

// Attempt returns the client-facing snapshot of one attempt.
func (service *Service) Attempt(subject, attemptID string) (*AttemptView, error) {
	a, err := service.lookupAttempt(subject, attemptID)
	if err != nil {
		return nil, err
	}
	return service.view(a), nil
}

// # Internal

// lookupAttempt finds an attempt owned by subject. A foreign or unknown ID
// is the same NotFound — attempt IDs are not probeable.
func (service *Service) lookupAttempt(subject, attemptID string) (*attempt, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	a, ok := service.attempts[attemptID]
	if !ok || a.subject != subject {
		return nil, apperr.NotFound("Transfer attempt")
	}
	return a, nil
}

func (service *Service) view(a *attempt) *AttemptView {
	service.mu.Lock()
	defer service.mu.Unlock()

	return &AttemptView{
		ID:             a.id,
		Rail:           a.rail,
		SourceAccount:  a.source.Number,
		SourceCurrency: a.source.Currency,
		Amount:         a.amount,
		Detail:         a.detail,
		Destination:    a.destination,
		Operation:      a.operation,
		ChallengeState: a.orchestrator.State(),
	}
}

// recordOutcome journals the terminal outcome and publishes the matching
// event. Both are best effort: the submission verdict stands regardless.
func (service *Service) recordOutcome(ctx context.Context, a *attempt, result *TransferResult, submitErr error) {
	entry := JournalEntry{
		Subject:       a.subject,
		Rail:          a.rail,
		Operation:     a.operation,
		SourceAccount: a.source.Number,
		Destination:   a.destination.Identifier,
		Amount:        a.amount,
		Currency:      a.source.Currency,
	}

	if rawToken, err := service.tokens.Token(); err == nil {
		entry.TokenFingerprint = sec.TokenFingerprint(rawToken)
	}

	routingKey := constants.EventTransferSettled
	if submitErr != nil {
		entry.Outcome = OutcomeFailed
		routingKey = constants.EventTransferFailed
		if appError := apperr.As(submitErr); appError != nil {
			entry.ErrorCode = appError.Code
		}
	} else {
		entry.Outcome = OutcomeSettled
		entry.ReferenceNumber = result.ReferenceNumber
	}

	if err := service.journal.Record(ctx, entry); err != nil {
		service.logger.ErrorContext(ctx, "transfer_journal_write_failed",
			slog.String("attempt_id", a.id),
			slog.Any("error", err),
		)
	}

	event := transferEvent{
		AttemptID:       a.id,
		Subject:         a.subject,
		Rail:            a.rail,
		Operation:       a.operation,
		Amount:          a.amount,
		Currency:        a.source.Currency,
		ReferenceNumber: entry.ReferenceNumber,
		ErrorCode:       entry.ErrorCode,
		OccurredAt:      time.Now(),
	}
	if err := service.publisher.Publish(ctx, routingKey, event); err != nil {
		service.logger.WarnContext(ctx, "transfer_event_publish_failed",
			slog.String("attempt_id", a.id),
			slog.Any("error", err),
		)
	}
}

// transferEvent is the payload published on terminal outcomes.
type transferEvent struct {
	AttemptID       string        `json:"attempt_id"`
	Subject         string        `json:"subject"`
	Rail            Rail          `json:"rail"`
	Operation       OperationType `json:"operation"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	ReferenceNumber string        `json:"reference_number,omitempty"`
	ErrorCode       string        `json:"error_code,omitempty"`
	OccurredAt      time.Time     `json:"occurred_at"`
}

// # Metric Label Helpers

func lookupOutcome(err error) string {
	if appError := apperr.As(err); appError != nil {
		switch appError.Code {
		case "DESTINATION_NOT_FOUND":
			return "not_found"
		case "REMOTE_UNAVAILABLE":
			return "unavailable"
		}
	}
	return "error"
}

func proofResult(err error) string {
	if err == nil {
		return "validated"
	}
	if appError := apperr.As(err); appError != nil {
		switch appError.Code {
		case "CHALLENGE_REJECTED":
			return "rejected"
		case "CHALLENGE_EXPIRED":
			return "expired"
		}
	}
	return "error"
}

func submitOutcome(err error) string {
	if err == nil {
		return "accepted"
	}
	if appError := apperr.As(err); appError != nil && appError.Code == "REMOTE_UNAVAILABLE" {
		return "unavailable"
	}
	return "rejected"
}

func formatAmount(minorUnits int64) string {
	// The core expects the amount as a plain integer string of minor units.
	return strconv.FormatInt(minorUnits, 10)
}
