// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/constants"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/ctxutil"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/middleware"
	requestutil "github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/request"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/respond"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/validate"
)

const defaultActivityLimit = 20

// # Definitions & Constructors

// Handler implements the transfer attempt HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the attempt lifecycle endpoints.
//
// # Endpoints
//   - POST   /                        : Opens a transfer attempt.
//   - GET    /activity                : Lists recent journal entries.
//   - GET    /{attemptID}             : Returns the attempt snapshot.
//   - POST   /{attemptID}/destination : Resolves the transfer target.
//   - POST   /{attemptID}/challenge   : Enters the second-factor flow.
//   - POST   /{attemptID}/challenge/proof : Validates the user's code(s).
//   - POST   /{attemptID}/submit      : Fires the terminal submission.
//   - DELETE /{attemptID}             : Cancels the attempt.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.startAttempt)
	router.Get("/activity", handler.activity)
	router.Get("/{attemptID}", handler.attempt)
	router.Post("/{attemptID}/destination", handler.resolveDestination)
	router.Post("/{attemptID}/challenge", handler.requestChallenge)
	router.Post("/{attemptID}/challenge/proof", handler.submitProof)
	router.Post("/{attemptID}/submit", handler.submit)
	router.Delete("/{attemptID}", handler.cancel)

	return router
}

// # Request Payloads

type startAttemptRequest struct {
	Rail            string `json:"rail"`
	SourceAccountID string `json:"source_account_id"`
	Amount          int64  `json:"amount"`
	Detail          string `json:"detail"`
}

type destinationRequest struct {
	Kind          string `json:"kind"`
	FavoriteID    string `json:"favorite_id,omitempty"`
	RawIdentifier string `json:"raw_identifier,omitempty"`
	OwnAccountID  string `json:"own_account_id,omitempty"`
}

type proofRequest struct {
	OTPCode   string `json:"otp_code,omitempty"`
	EmailCode string `json:"email_code,omitempty"`
}

/*
StartAttempt opens a transfer attempt.

POST /api/v1/transfers

Description: Validates the form-level preconditions (positive amount,
detail length per rail) and builds the attempt-scoped machinery. The detail
minimum applies to the account rails; SINPE Móvil only needs a non-empty
detail.

Response:
  - 201: AttemptView
  - 400: Validation failure
  - 404: Unknown source account
*/
func (handler *Handler) startAttempt(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input startAttemptRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	rail := Rail(input.Rail)

	validator := &validate.Validator{}
	validator.Custom("rail", !rail.IsValid(), "Must be one of the supported transfer rails").
		Required("source_account_id", input.SourceAccountID).
		Positive("amount", input.Amount).
		Required("detail", input.Detail)

	// Account rails carry the detail onto core statements, which demand a
	// minimum length. The wallet rail has no such rule.
	if rail.IsValid() && rail != RailMovil {
		validator.MinLen("detail", input.Detail, constants.DetailMinLength)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.StartAttempt(request.Context(), claims.Subject, StartAttemptInput{
		Rail:            rail,
		SourceAccountID: input.SourceAccountID,
		Amount:          input.Amount,
		Detail:          input.Detail,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, view)
}

/*
Attempt returns the current snapshot of one attempt.

GET /api/v1/transfers/{attemptID}
*/
func (handler *Handler) attempt(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Attempt(claims.Subject, requestutil.Param(request, "attemptID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
ResolveDestination resolves the transfer target for an attempt.

POST /api/v1/transfers/{attemptID}/destination

Description: Dispatches on the destination kind. While a manual lookup for
the same identifier is still in flight the endpoint answers 202 and the
client keeps the form open — the duplicate is suppressed, not queued.

Response:
  - 200: ValidatedDestination
  - 202: Lookup in flight; retry shortly
  - 400: Malformed identifier / invalid kind for the rail
  - 404: No match in the directory
  - 422: Currency gate (Móvil rail, non-colones source)
*/
func (handler *Handler) resolveDestination(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input destinationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	destination, err := handler.service.ResolveDestination(
		request.Context(),
		claims.Subject,
		requestutil.Param(request, "attemptID"),
		DestinationSelection{
			Kind:          DestinationKind(input.Kind),
			FavoriteID:    input.FavoriteID,
			RawIdentifier: input.RawIdentifier,
			OwnAccountID:  input.OwnAccountID,
		},
	)
	if errors.Is(err, ErrResolutionPending) {
		respond.Accepted(writer, map[string]bool{"pending": true})
		return
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, destination)
}

/*
RequestChallenge enters the second-factor flow for an attempt.

POST /api/v1/transfers/{attemptID}/challenge

Response:
  - 200: ChallengeView (required=false means submit directly)
  - 409: Destination unresolved, or a challenge is already in progress
*/
func (handler *Handler) requestChallenge(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.RequestChallenge(
		request.Context(),
		claims.Subject,
		requestutil.Param(request, "attemptID"),
		ctxutil.GetClientIP(request.Context()),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
SubmitProof validates the user's second-factor code(s).

POST /api/v1/transfers/{attemptID}/challenge/proof

Response:
  - 204: Proof accepted; the attempt may be submitted
  - 410: Challenge expired — restart the challenge flow
  - 422: Wrong code (retryable while attempts remain)
*/
func (handler *Handler) submitProof(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input proofRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Custom("otp_code", input.OTPCode == "" && input.EmailCode == "", "At least one proof code is required")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.SubmitChallengeProof(
		request.Context(),
		claims.Subject,
		requestutil.Param(request, "attemptID"),
		input.OTPCode,
		input.EmailCode,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Submit fires the terminal submission.

POST /api/v1/transfers/{attemptID}/submit

Response:
  - 200: TransferResult
  - 409: Sequencing violation (unresolved destination, unconsumed challenge,
    or the attempt was already submitted)
  - 422: Business rejection (insufficient funds, backend rule)
  - 503: Core unavailable — user may retry
*/
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Submit(request.Context(), claims.Subject, requestutil.Param(request, "attemptID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
Cancel discards an attempt and any pending challenge.

DELETE /api/v1/transfers/{attemptID}

Response:
  - 204: Attempt discarded (idempotent)
*/
func (handler *Handler) cancel(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.service.CancelAttempt(request.Context(), claims.Subject, requestutil.Param(request, "attemptID"))
	respond.NoContent(writer)
}

/*
Activity lists the member's recent journal entries.

GET /api/v1/transfers/activity
*/
func (handler *Handler) activity(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.service.RecentActivity(request.Context(), claims.Subject, defaultActivityLimit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}
