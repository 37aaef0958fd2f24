// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/corebank"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/middleware"
	requestutil "github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/request"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/respond"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/validate"
)

// TokenExchanger is the slice of the core banking client the handler needs.
type TokenExchanger interface {
	ExchangeToken(ctx context.Context, input corebank.TokenRequest) (*corebank.TokenResponse, error)
}

// # Definitions & Constructors

// Handler implements the session lifecycle HTTP endpoints.
type Handler struct {
	store          *Store
	bank           TokenExchanger
	channelCode    string
	installationID string
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(store *Store, bank TokenExchanger, channelCode, installationID string) *Handler {
	return &Handler{
		store:          store,
		bank:           bank,
		channelCode:    channelCode,
		installationID: installationID,
	}
}

// Routes returns a [chi.Router] configured with session routes.
//
// # Endpoints
//   - POST /login  : Exchanges credentials and establishes the session.
//   - POST /logout : Tears down the session and wipes sibling state.
//   - GET  /me     : Returns the authenticated identity snapshot.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request / Response Payloads

type loginRequest struct {
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contrasena"`
}

type sessionResponse struct {
	Status          Status    `json:"status"`
	IsAuthenticated bool      `json:"is_authenticated"`
	Subject         string    `json:"subject,omitempty"`
	Name            string    `json:"name,omitempty"`
	ExpiresAt       time.Time `json:"expires_at,omitempty"`
}

func toSessionResponse(state State) sessionResponse {
	return sessionResponse{
		Status:          state.Status,
		IsAuthenticated: state.IsAuthenticated,
		Subject:         state.Subject,
		Name:            state.Name,
		ExpiresAt:       state.ExpiresAt,
	}
}

/*
Login exchanges member credentials for a session.

POST /api/v1/session/login

Description: Trades the credentials for a bearer token at the core, runs the
offline validation, and persists the token for silent restore.

Request:
  - Body: loginRequest (Usuario, Contrasena)

Response:
  - 200: sessionResponse: Established session snapshot
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401: InvalidCredential: Core rejected the credentials or token unusable
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("usuario", input.Usuario).
		Required("contrasena", input.Contrasena)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.bank.ExchangeToken(request.Context(), corebank.TokenRequest{
		Usuario:       input.Usuario,
		Contrasena:    input.Contrasena,
		IDInstalacion: handler.installationID,
		Canal:         handler.channelCode,
	})
	if err != nil {
		respond.Error(writer, request, mapExchangeError(err))
		return
	}

	if err := handler.store.Login(request.Context(), token.TokenAcceso); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toSessionResponse(handler.store.State()))
}

/*
Logout terminates the session.

POST /api/v1/session/logout

Description: Wipes every registered sibling's user data, clears the vault,
and returns the store to the Absent state.

Response:
  - 204: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.store.Logout(request.Context())
	respond.NoContent(writer)
}

/*
Me returns the authenticated identity snapshot.

GET /api/v1/session/me

Response:
  - 200: sessionResponse
  - 401: Unauthorized
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, toSessionResponse(handler.store.State()))
}

// # Error Mapping

// mapExchangeError converts core banking failures during credential exchange
// into the channel taxonomy. Branching keys off status codes, never off the
// core's message text.
func mapExchangeError(err error) error {
	if errors.Is(err, corebank.ErrUnreachable) {
		return apperr.RemoteUnavailable(err)
	}

	var apiError *corebank.APIError
	if errors.As(err, &apiError) {
		switch {
		case apiError.StatusCode == http.StatusUnauthorized,
			apiError.StatusCode == http.StatusForbidden,
			apiError.StatusCode == http.StatusUnprocessableEntity:
			return apperr.InvalidCredential()
		case apiError.StatusCode >= 500:
			return apperr.RemoteUnavailable(err)
		}
	}

	return apperr.Internal(err)
}
