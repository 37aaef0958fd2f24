// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"time"
)

// Outcome is the terminal journal verdict for one submission.
type Outcome string

const (
	OutcomeSettled Outcome = "settled"
	OutcomeFailed  Outcome = "failed"
)

// JournalEntry is the audit record persisted for every terminal submission,
// successful or not. The session credential is never stored — only a short
// fingerprint for correlating entries with support tickets.
type JournalEntry struct {
	ID               string        `json:"id"`
	Subject          string        `json:"subject"`
	Rail             Rail          `json:"rail"`
	Operation        OperationType `json:"operation"`
	SourceAccount    string        `json:"source_account"`
	Destination      string        `json:"destination"`
	Amount           int64         `json:"amount"`
	Currency         string        `json:"currency"`
	Outcome          Outcome       `json:"outcome"`
	ReferenceNumber  string        `json:"reference_number,omitempty"`
	ErrorCode        string        `json:"error_code,omitempty"`
	TokenFingerprint string        `json:"-"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Journal persists terminal submission outcomes.
//
// Recording is best effort relative to the user flow: a journal write
// failure is logged but never turns a settled transfer into a user-facing
// error — the money has already moved.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
	Recent(ctx context.Context, subject string, limit int) ([]JournalEntry, error)
}
