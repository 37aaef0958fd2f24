// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/pkg/uuidv7"
)

// PostgresJournal persists journal entries via pgx.
type PostgresJournal struct {
	pool *pgxpool.Pool
}

// NewPostgresJournal constructs a [PostgresJournal].
func NewPostgresJournal(pool *pgxpool.Pool) *PostgresJournal {
	return &PostgresJournal{pool: pool}
}

// Record implements [Journal]. The entry ID and timestamp are assigned here
// when absent so callers can pass a bare outcome.
func (journal *PostgresJournal) Record(ctx context.Context, entry JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuidv7.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO transfer_journal (
			id, subject, rail, operation, source_account, destination,
			amount, currency, outcome, reference_number, error_code,
			token_fingerprint, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := journal.pool.Exec(ctx, query,
		entry.ID,
		entry.Subject,
		string(entry.Rail),
		string(entry.Operation),
		entry.SourceAccount,
		entry.Destination,
		entry.Amount,
		entry.Currency,
		string(entry.Outcome),
		entry.ReferenceNumber,
		entry.ErrorCode,
		entry.TokenFingerprint,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("transfer: failed to record journal entry: %w", err)
	}

	return nil
}

// Recent implements [Journal]: the newest entries for one member, newest
// first. UUIDv7 IDs sort by time, so ordering by ID is ordering by creation.
func (journal *PostgresJournal) Recent(ctx context.Context, subject string, limit int) ([]JournalEntry, error) {
	const query = `
		SELECT id, subject, rail, operation, source_account, destination,
		       amount, currency, outcome, reference_number, error_code,
		       token_fingerprint, created_at
		FROM transfer_journal
		WHERE subject = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := journal.pool.Query(ctx, query, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var entry JournalEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Subject,
			&entry.Rail,
			&entry.Operation,
			&entry.SourceAccount,
			&entry.Destination,
			&entry.Amount,
			&entry.Currency,
			&entry.Outcome,
			&entry.ReferenceNumber,
			&entry.ErrorCode,
			&entry.TokenFingerprint,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("transfer: failed to scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transfer: journal iteration failed: %w", err)
	}

	return entries, nil
}
