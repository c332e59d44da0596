package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const foundationColumns = `id, name, type, description, link, contact, status, start_date, end_date, created_at`

func scanFoundation(s rowScanner) (*model.Foundation, error) {
	f := &model.Foundation{}
	err := s.Scan(&f.ID, &f.Name, &f.Type, &f.Description, &f.Link, &f.Contact, &f.Status,
		&f.StartDate, &f.EndDate, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// CreateFoundation inserts a foundation. Windows are stored as given; an
// inverted window is kept but never matched.
func CreateFoundation(ctx context.Context, db *sql.DB, in *model.Foundation) (*model.Foundation, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO foundations (name, type, description, link, contact, status, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Type, in.Description, in.Link, in.Contact, in.Status, in.StartDate, in.EndDate,
	)
	if err != nil {
		return nil, fmt.Errorf("creating foundation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting foundation id: %w", err)
	}

	return GetFoundation(ctx, db, id)
}

// GetFoundation returns a foundation by ID.
func GetFoundation(ctx context.Context, db *sql.DB, id int64) (*model.Foundation, error) {
	f, err := scanFoundation(db.QueryRowContext(ctx,
		`SELECT `+foundationColumns+` FROM foundations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting foundation: %w", err)
	}
	return f, nil
}

// ListFoundations returns every foundation in creation order. Matching
// relies on this order: the first foundation whose window fits wins.
func ListFoundations(ctx context.Context, db *sql.DB) ([]model.Foundation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+foundationColumns+` FROM foundations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing foundations: %w", err)
	}
	defer rows.Close()

	var foundations []model.Foundation
	for rows.Next() {
		f, err := scanFoundation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning foundation: %w", err)
		}
		foundations = append(foundations, *f)
	}
	return foundations, rows.Err()
}

// UpdateFoundation overwrites a foundation's fields.
func UpdateFoundation(ctx context.Context, db *sql.DB, in *model.Foundation) error {
	result, err := db.ExecContext(ctx,
		`UPDATE foundations SET name = ?, type = ?, description = ?, link = ?, contact = ?,
		     status = ?, start_date = ?, end_date = ?
		 WHERE id = ?`,
		in.Name, in.Type, in.Description, in.Link, in.Contact, in.Status, in.StartDate, in.EndDate,
		in.ID,
	)
	if err != nil {
		return fmt.Errorf("updating foundation: %w", err)
	}
	return expectOneRow(result, "foundation")
}

// SetFoundationStatus changes only the free-form status of a foundation.
func SetFoundationStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE foundations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("setting foundation status: %w", err)
	}
	return expectOneRow(result, "foundation")
}

// DeleteFoundation removes a foundation. Items donated to it go back to
// unclaimed with no foundation so the next reconciliation can place them
// again; other items only lose the reference.
func DeleteFoundation(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO item_transitions (item_id, from_status, to_status, foundation_id, note, changed_by)
		 SELECT id, status, ?, NULL, ?, ? FROM items WHERE foundation_id = ? AND status = ?`,
		model.ItemUnclaimed, model.NoteFoundationRemove, actorFrom(ctx), id, model.ItemDonated,
	)
	if err != nil {
		return fmt.Errorf("recording released items: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET foundation_id = NULL,
		     status = CASE WHEN status = ? THEN ? ELSE status END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE foundation_id = ?`,
		model.ItemDonated, model.ItemUnclaimed, id,
	)
	if err != nil {
		return fmt.Errorf("releasing donated items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM foundations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting foundation: %w", err)
	}
	if err := expectOneRow(result, "foundation"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing foundation delete: %w", err)
	}
	return nil
}
