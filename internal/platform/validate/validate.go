// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError], plus the pure format
// predicates the destination resolver uses as its pre-network precondition.
//
// # Architecture
//
// This package is used exclusively in the service layer — never in storage.
// It ensures that business logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/apperr"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/constants"
)

var (
	// ibanCRRegex matches a normalized Costa Rican IBAN: country code,
	// two check digits, and a 20-digit BBAN.
	ibanCRRegex = regexp.MustCompile(`^CR\d{22}$`)

	// walletRegex matches a SINPE Móvil wallet number (8-digit phone).
	walletRegex = regexp.MustCompile(`^[2678]\d{7}$`)

	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// # Format Predicates
//
// These are the two-phase check's "phase one": cheap, local, and called on
// every keystroke-stabilized input before any network lookup is allowed.

// NormalizeIBAN uppercases an IBAN and strips the spaces users type in
// ("CR99 0000 ..." → "CR990000...").
func NormalizeIBAN(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}

// IsIBANCR reports whether the normalized value is a plausible Costa Rican
// IBAN. Only shape is checked here; existence is the remote lookup's job.
func IsIBANCR(normalized string) bool {
	return len(normalized) == constants.IBANLength && ibanCRRegex.MatchString(normalized)
}

// NormalizeWalletNumber strips spaces and dashes from a wallet phone number.
func NormalizeWalletNumber(raw string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	return cleaned
}

// IsWalletNumber reports whether the normalized value is a plausible SINPE
// Móvil wallet number.
func IsWalletNumber(normalized string) bool {
	return len(normalized) == constants.WalletNumberLength && walletRegex.MatchString(normalized)
}

// # Chainable Validator

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Positive fails if the amount is not strictly greater than zero.
func (v *Validator) Positive(field string, amount int64) *Validator {
	if amount <= 0 {
		v.add(field, "Must be a positive amount")
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	lower := strings.ToLower(value)
	if !uuidRegex.MatchString(lower) {
		v.add(field, "Must be a valid UUID")
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// IBANCR fails if the value (after normalization) is not a Costa Rican IBAN.
func (v *Validator) IBANCR(field, value string) *Validator {
	if !IsIBANCR(NormalizeIBAN(value)) {
		v.add(field, "Must be a 24-character Costa Rican IBAN")
	}
	return v
}

// WalletNumber fails if the value is not a SINPE Móvil wallet number.
func (v *Validator) WalletNumber(field, value string) *Validator {
	if !IsWalletNumber(NormalizeWalletNumber(value)) {
		v.add(field, "Must be an 8-digit phone number")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("amount", amount > balance, "Exceeds the available balance")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
