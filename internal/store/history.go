package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

type actorKey struct{}

// WithActor attributes item transitions written with the returned context to
// the given user. Transitions written without an actor are system changes.
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

func actorFrom(ctx context.Context) *int64 {
	id, ok := ctx.Value(actorKey{}).(int64)
	if !ok {
		return nil
	}
	return &id
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// recordTransition appends a history row. from is empty for a newly reported
// item and changedBy is nil for system changes.
func recordTransition(ctx context.Context, ex execer, itemID int64, from, to model.ItemStatus, foundationID *int64, note string, changedBy *int64) error {
	var fromStatus sql.NullString
	if from != "" {
		fromStatus = sql.NullString{String: string(from), Valid: true}
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO item_transitions (item_id, from_status, to_status, foundation_id, note, changed_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		itemID, fromStatus, to, foundationID, note, changedBy,
	)
	if err != nil {
		return fmt.Errorf("recording item transition: %w", err)
	}
	return nil
}

// currentState reads the status and foundation an item has inside tx.
func currentState(ctx context.Context, tx *sql.Tx, id int64) (model.ItemStatus, *int64, error) {
	var status model.ItemStatus
	var foundationID *int64
	err := tx.QueryRowContext(ctx,
		`SELECT status, foundation_id FROM items WHERE id = ?`, id,
	).Scan(&status, &foundationID)
	if err == sql.ErrNoRows {
		return "", nil, model.NotFoundf("item")
	}
	if err != nil {
		return "", nil, fmt.Errorf("reading item state: %w", err)
	}
	return status, foundationID, nil
}

// ListItemHistory returns an item's transitions, oldest first.
func ListItemHistory(ctx context.Context, db *sql.DB, itemID int64) ([]model.ItemTransition, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT h.id, h.item_id, h.from_status, h.to_status, h.foundation_id, h.note,
		        h.changed_by, h.changed_at, f.name AS foundation_name
		 FROM item_transitions h
		 LEFT JOIN foundations f ON f.id = h.foundation_id
		 WHERE h.item_id = ?
		 ORDER BY h.id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item history: %w", err)
	}
	defer rows.Close()

	var history []model.ItemTransition
	for rows.Next() {
		var h model.ItemTransition
		var from, foundationName sql.NullString
		if err := rows.Scan(&h.ID, &h.ItemID, &from, &h.ToStatus, &h.FoundationID, &h.Note,
			&h.ChangedBy, &h.ChangedAt, &foundationName); err != nil {
			return nil, fmt.Errorf("scanning item transition: %w", err)
		}
		h.FromStatus = model.ItemStatus(from.String)
		h.FoundationName = foundationName.String
		history = append(history, h)
	}
	return history, rows.Err()
}

func sameFoundation(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
