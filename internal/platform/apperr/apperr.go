// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

/*
Package apperr defines the centralized error handling framework for the mobile channel.

It provides a rich error type that bridges the gap between low-level collaborator
errors (core banking REST calls, storage) and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: One factory per terminal error kind of the transfer authorization
    engine, so the UI can branch on Code and never on raw backend strings.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the mobile channel API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., upstream payloads).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "SESSION_EXPIRED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// Retryable signals that the user may safely retry the same action.
	// The mobile UI uses it to decide whether to show a retry affordance.
	Retryable bool `json:"retryable,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// As extracts an [*AppError] from an error chain, or returns nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}

// # Session Errors

// SessionExpired creates a 401 [AppError]. Any component receiving this must
// short-circuit the in-progress flow and send the user back to authentication.
func SessionExpired() *AppError {
	return &AppError{
		Code:       "SESSION_EXPIRED",
		Message:    "Your session has expired. Please sign in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidCredential creates a 401 [AppError] for a login with an unusable token.
func InvalidCredential() *AppError {
	return &AppError{
		Code:       "INVALID_CREDENTIAL",
		Message:    "The provided credential is not valid.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthorized creates a generic 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Destination Errors

// MalformedDestination creates a 400 [AppError] for an identifier that fails
// the local format precondition (wrong length, non-numeric wallet, etc.).
func MalformedDestination(msg string) *AppError {
	return &AppError{
		Code:       "MALFORMED_DESTINATION",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// DestinationNotFound creates a 404 [AppError]: the remote lookup confirmed
// that no account or wallet exists for the identifier.
func DestinationNotFound() *AppError {
	return &AppError{
		Code:       "DESTINATION_NOT_FOUND",
		Message:    "No account was found for the given identifier.",
		HTTPStatus: http.StatusNotFound,
	}
}

// CurrencyMismatch creates a 422 [AppError] for rail/currency rule violations.
func CurrencyMismatch(msg string) *AppError {
	return &AppError{
		Code:       "CURRENCY_MISMATCH",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Challenge Errors

// ChallengeRejected creates a 422 [AppError] for an incorrect second-factor
// code. It is retryable while the server-declared attempt cap is not exhausted.
func ChallengeRejected(attemptsLeft int) *AppError {
	message := "The verification code is incorrect."
	retryable := attemptsLeft > 0
	if retryable {
		message = fmt.Sprintf("The verification code is incorrect. %d attempts remaining.", attemptsLeft)
	}
	return &AppError{
		Code:       "CHALLENGE_REJECTED",
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Retryable:  retryable,
	}
}

// ChallengeExpired creates a 410 [AppError]. Terminal for the attempt: the
// whole challenge orchestration must be restarted from scratch.
func ChallengeExpired() *AppError {
	return &AppError{
		Code:       "CHALLENGE_EXPIRED",
		Message:    "The verification code has expired. Please request a new one.",
		HTTPStatus: http.StatusGone,
	}
}

// # Submission Errors

// InsufficientFunds creates a 422 [AppError].
func InsufficientFunds() *AppError {
	return &AppError{
		Code:       "INSUFFICIENT_FUNDS",
		Message:    "The source account does not have sufficient funds.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// RemoteUnavailable creates a 503 [AppError] for network failures or core
// banking 5xx responses. Retryable by the user, never automatically.
func RemoteUnavailable(cause error) *AppError {
	return &AppError{
		Code:       "REMOTE_UNAVAILABLE",
		Message:    "The service is temporarily unavailable. Please try again.",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
		Retryable:  true,
	}
}

// BackendRejected creates a 422 [AppError] carrying the server-supplied
// business-rule message. The message is display-only: branching logic must
// key off the Code, never off this text.
func BackendRejected(serverMessage string) *AppError {
	if serverMessage == "" {
		serverMessage = "The transfer was rejected by the core banking system."
	}
	return &AppError{
		Code:       "BACKEND_REJECTED",
		Message:    serverMessage,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Generic Errors

// NotFound creates a 404 [AppError] for a named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError] for operations that collide with an
// in-flight state (e.g. a second challenge request for the same attempt).
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}
