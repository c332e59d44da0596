package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// EnqueueOutbox stores a mirror event for later delivery.
func EnqueueOutbox(ctx context.Context, db *sql.DB, eventID, kind string, payload []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO mirror_outbox (event_id, kind, payload) VALUES (?, ?, ?)`,
		eventID, kind, string(payload),
	)
	if err != nil {
		return fmt.Errorf("enqueueing %s event: %w", kind, err)
	}
	return nil
}

// ListDeliverableOutbox returns up to limit undelivered events that have been
// tried fewer than maxAttempts times, oldest first.
func ListDeliverableOutbox(ctx context.Context, db *sql.DB, maxAttempts, limit int) ([]model.OutboxEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, event_id, kind, payload, status, attempts, last_error, created_at, updated_at
		 FROM mirror_outbox
		 WHERE status IN (?, ?) AND attempts < ?
		 ORDER BY id
		 LIMIT ?`,
		model.OutboxCreated, model.OutboxFailed, maxAttempts, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing outbox: %w", err)
	}
	defer rows.Close()

	var entries []model.OutboxEntry
	for rows.Next() {
		var e model.OutboxEntry
		var payload string
		var lastError sql.NullString
		if err := rows.Scan(&e.ID, &e.EventID, &e.Kind, &payload, &e.Status, &e.Attempts,
			&lastError, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning outbox entry: %w", err)
		}
		e.Payload = []byte(payload)
		e.LastError = lastError.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkOutboxDone records a successful delivery.
func MarkOutboxDone(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE mirror_outbox SET status = ?, attempts = attempts + 1, last_error = NULL,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		model.OutboxDone, id,
	)
	if err != nil {
		return fmt.Errorf("marking outbox entry done: %w", err)
	}
	return nil
}

// MarkOutboxFailed records a failed delivery attempt.
func MarkOutboxFailed(ctx context.Context, db *sql.DB, id int64, reason string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE mirror_outbox SET status = ?, attempts = attempts + 1, last_error = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		model.OutboxFailed, reason, id,
	)
	if err != nil {
		return fmt.Errorf("marking outbox entry failed: %w", err)
	}
	return nil
}

// CountOutbox returns the number of entries in each status.
func CountOutbox(ctx context.Context, db *sql.DB) (map[model.OutboxStatus]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM mirror_outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting outbox: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.OutboxStatus]int)
	for rows.Next() {
		var status model.OutboxStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning outbox count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
