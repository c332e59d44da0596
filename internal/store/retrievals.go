package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const requestColumns = `id, claimer_name, claimer_college, claimer_level, contact_number,
	date_complained, time_complained, item_name, description, general_location,
	specific_location, date_lost, time_lost, item_id, owner_image_mime, status, user_id,
	created_at, updated_at`

func scanRequest(s rowScanner) (*model.RetrievalRequest, error) {
	r := &model.RetrievalRequest{}
	var imageMime sql.NullString
	err := s.Scan(&r.ID, &r.ClaimerName, &r.ClaimerCollege, &r.ClaimerLevel, &r.ContactNumber,
		&r.DateComplained, &r.TimeComplained, &r.ItemName, &r.Description, &r.GeneralLocation,
		&r.SpecificLocation, &r.DateLost, &r.TimeLost, &r.ItemID, &imageMime, &r.Status, &r.UserID,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.OwnerImageMime = imageMime.String
	return r, nil
}

// CreateRetrievalRequest inserts a claim. The status column is always written
// as pending; in.Status is ignored.
func CreateRetrievalRequest(ctx context.Context, db *sql.DB, in *model.RetrievalRequest) (*model.RetrievalRequest, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO retrieval_requests (claimer_name, claimer_college, claimer_level,
		     contact_number, date_complained, time_complained, item_name, description,
		     general_location, specific_location, date_lost, time_lost, item_id, status, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ClaimerName, in.ClaimerCollege, in.ClaimerLevel,
		in.ContactNumber, in.DateComplained, in.TimeComplained, in.ItemName, in.Description,
		in.GeneralLocation, in.SpecificLocation, in.DateLost, in.TimeLost, in.ItemID,
		model.RequestPending, in.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating retrieval request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting retrieval request id: %w", err)
	}

	return GetRetrievalRequest(ctx, db, id)
}

// GetRetrievalRequest returns a retrieval request by ID.
func GetRetrievalRequest(ctx context.Context, db *sql.DB, id int64) (*model.RetrievalRequest, error) {
	r, err := scanRequest(db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM retrieval_requests WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting retrieval request: %w", err)
	}
	return r, nil
}

// ListRetrievalRequests returns all requests, optionally filtered by status.
func ListRetrievalRequests(ctx context.Context, db *sql.DB, status model.RequestStatus) ([]model.RetrievalRequest, error) {
	if status != "" {
		return queryRequests(ctx, db,
			`SELECT `+requestColumns+` FROM retrieval_requests WHERE status = ? ORDER BY id`, status)
	}
	return queryRequests(ctx, db, `SELECT `+requestColumns+` FROM retrieval_requests ORDER BY id`)
}

// ListRetrievalRequestsByUser returns the requests one user has filed.
func ListRetrievalRequestsByUser(ctx context.Context, db *sql.DB, userID int64) ([]model.RetrievalRequest, error) {
	return queryRequests(ctx, db,
		`SELECT `+requestColumns+` FROM retrieval_requests WHERE user_id = ? ORDER BY id`, userID)
}

func queryRequests(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.RetrievalRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing retrieval requests: %w", err)
	}
	defer rows.Close()

	var requests []model.RetrievalRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning retrieval request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// UpdateRetrievalRequestFields applies the owner-editable subset. Identity,
// item reference and status cannot be changed here.
func UpdateRetrievalRequestFields(ctx context.Context, db *sql.DB, id int64, f model.RequestFields) error {
	result, err := db.ExecContext(ctx,
		`UPDATE retrieval_requests SET
		     item_name = COALESCE(?, item_name),
		     description = COALESCE(?, description),
		     general_location = COALESCE(?, general_location),
		     specific_location = COALESCE(?, specific_location),
		     date_lost = COALESCE(?, date_lost),
		     time_lost = COALESCE(?, time_lost),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		f.ItemName, f.Description, f.GeneralLocation, f.SpecificLocation, f.DateLost, f.TimeLost,
		id,
	)
	if err != nil {
		return fmt.Errorf("updating retrieval request: %w", err)
	}
	return expectOneRow(result, "retrieval request")
}

// SetRetrievalRequestStatus writes a new review status.
func SetRetrievalRequestStatus(ctx context.Context, db *sql.DB, id int64, status model.RequestStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE retrieval_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting retrieval request status: %w", err)
	}
	return expectOneRow(result, "retrieval request")
}

// DeleteRetrievalRequest permanently removes a request.
func DeleteRetrievalRequest(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM retrieval_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting retrieval request: %w", err)
	}
	return expectOneRow(result, "retrieval request")
}

// SetRetrievalRequestImage stores the claimant's proof-of-ownership photo.
func SetRetrievalRequestImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE retrieval_requests SET owner_image = ?, owner_image_mime = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting retrieval request image: %w", err)
	}
	return expectOneRow(result, "retrieval request")
}

// GetRetrievalRequestImage returns the stored proof-of-ownership photo.
func GetRetrievalRequestImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	return getBlob(ctx, db, `SELECT owner_image, owner_image_mime FROM retrieval_requests WHERE id = ?`, id)
}
