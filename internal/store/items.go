package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const itemColumns = `i.id, i.finder, i.finder_type, i.item, i.item_type, i.description, i.image_url,
	i.finder_contact, i.date_found, i.general_location, i.found_location, i.time_returned,
	i.owner, i.owner_college, i.owner_contact, i.owner_image, i.date_claimed, i.time_claimed,
	i.status, i.foundation_id, i.post_id, i.duration, i.image_mime, i.created_at, i.updated_at,
	f.name AS foundation_name`

const itemFrom = ` FROM items i LEFT JOIN foundations f ON f.id = i.foundation_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var imageMime, foundationName sql.NullString
	err := s.Scan(&item.ID, &item.Finder, &item.FinderType, &item.Item, &item.ItemType,
		&item.Description, &item.ImageURL, &item.FinderContact, &item.DateFound,
		&item.GeneralLocation, &item.FoundLocation, &item.TimeReturned,
		&item.Owner, &item.OwnerCollege, &item.OwnerContact, &item.OwnerImage,
		&item.DateClaimed, &item.TimeClaimed, &item.Status, &item.FoundationID,
		&item.PostID, &item.Duration, &imageMime, &item.CreatedAt, &item.UpdatedAt,
		&foundationName)
	if err != nil {
		return nil, err
	}
	item.ImageMime = imageMime.String
	item.FoundationName = foundationName.String
	return item, nil
}

// CreateItem inserts a found item and its first history row. An empty status
// is stored as unclaimed.
func CreateItem(ctx context.Context, db *sql.DB, in *model.Item) (*model.Item, error) {
	status := in.Status
	if status == "" {
		status = model.ItemUnclaimed
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (finder, finder_type, item, item_type, description, image_url,
		     finder_contact, date_found, general_location, found_location, time_returned,
		     owner, owner_college, owner_contact, owner_image, date_claimed, time_claimed,
		     status, foundation_id, post_id, duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Finder, in.FinderType, in.Item, in.ItemType, in.Description, in.ImageURL,
		in.FinderContact, in.DateFound, in.GeneralLocation, in.FoundLocation, in.TimeReturned,
		in.Owner, in.OwnerCollege, in.OwnerContact, in.OwnerImage, in.DateClaimed, in.TimeClaimed,
		status, in.FoundationID, in.PostID, in.Duration,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if err := recordTransition(ctx, tx, id, "", status, in.FoundationID, model.NoteReported, actorFrom(ctx)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with its foundation name resolved.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items in insertion order, optionally filtered by status.
func ListItems(ctx context.Context, db *sql.DB, status model.ItemStatus) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + itemFrom
	var args []any
	if status != "" {
		query += ` WHERE i.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY i.id`
	return queryItems(ctx, db, query, args...)
}

// ListUnclaimedItems returns the items reconciliation looks at.
func ListUnclaimedItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return ListItems(ctx, db, model.ItemUnclaimed)
}

// ListItemsByFoundation returns items donated to the given foundation.
func ListItemsByFoundation(ctx context.Context, db *sql.DB, foundationID int64) ([]model.Item, error) {
	return queryItems(ctx, db,
		`SELECT `+itemColumns+itemFrom+` WHERE i.foundation_id = ? ORDER BY i.id`, foundationID)
}

func queryItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem overwrites an item's editable fields, including status and
// foundation. A change of either is appended to the item's history.
// Returns model.ErrNotFound if the item does not exist.
func UpdateItem(ctx context.Context, db *sql.DB, in *model.Item) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	from, fromFoundation, err := currentState(ctx, tx, in.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET finder = ?, finder_type = ?, item = ?, item_type = ?, description = ?,
		     image_url = ?, finder_contact = ?, date_found = ?, general_location = ?,
		     found_location = ?, time_returned = ?, owner = ?, owner_college = ?,
		     owner_contact = ?, owner_image = ?, date_claimed = ?, time_claimed = ?,
		     status = ?, foundation_id = ?, post_id = ?, duration = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		in.Finder, in.FinderType, in.Item, in.ItemType, in.Description,
		in.ImageURL, in.FinderContact, in.DateFound, in.GeneralLocation,
		in.FoundLocation, in.TimeReturned, in.Owner, in.OwnerCollege,
		in.OwnerContact, in.OwnerImage, in.DateClaimed, in.TimeClaimed,
		in.Status, in.FoundationID, in.PostID, in.Duration,
		in.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}

	if from != in.Status || !sameFoundation(fromFoundation, in.FoundationID) {
		if err := recordTransition(ctx, tx, in.ID, from, in.Status, in.FoundationID, model.NoteEdited, actorFrom(ctx)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item update: %w", err)
	}
	return nil
}

// AssignFoundation marks an unclaimed item as donated to foundationID. The
// history row it writes is a system change whatever actor ctx carries.
// It reports false without error when the item is no longer unclaimed, so a
// claim recorded after the reconciliation snapshot is never overwritten.
func AssignFoundation(ctx context.Context, db *sql.DB, id, foundationID int64) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET foundation_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		foundationID, model.ItemDonated, id, model.ItemUnclaimed,
	)
	if err != nil {
		return false, fmt.Errorf("assigning foundation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("assigning foundation: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	err = recordTransition(ctx, tx, id, model.ItemUnclaimed, model.ItemDonated, &foundationID,
		model.NoteWindowMatched, nil)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing foundation assignment: %w", err)
	}
	return true, nil
}

// SetItemStatus changes only the status column. Setting the status an item
// already has writes no history.
func SetItemStatus(ctx context.Context, db *sql.DB, id int64, status model.ItemStatus) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	from, foundationID, err := currentState(ctx, tx, id)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}

	if from != status {
		if err := recordTransition(ctx, tx, id, from, status, foundationID, model.NoteStatusSet, actorFrom(ctx)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item status: %w", err)
	}
	return nil
}

// DeleteItem permanently removes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return expectOneRow(result, "item")
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return expectOneRow(result, "item")
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	return getBlob(ctx, db, `SELECT image, image_mime FROM items WHERE id = ?`, id)
}
