package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const complaintColumns = `id, complainer, college, year_level, item_name, item_type, description,
	contact, general_location, location, time_lost, date_lost, date_complained, time_complained,
	status, finder, duration, user_id, item_image_mime, created_at`

func scanComplaint(s rowScanner) (*model.Complaint, error) {
	c := &model.Complaint{}
	var imageMime sql.NullString
	err := s.Scan(&c.ID, &c.Complainer, &c.College, &c.YearLevel, &c.ItemName, &c.ItemType,
		&c.Description, &c.Contact, &c.GeneralLocation, &c.Location, &c.TimeLost, &c.DateLost,
		&c.DateComplained, &c.TimeComplained, &c.Status, &c.Finder, &c.Duration, &c.UserID,
		&imageMime, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.ItemImageMime = imageMime.String
	return c, nil
}

// CreateComplaint files a lost-item report. The finder always starts as
// model.DefaultFinder whatever the caller supplied.
func CreateComplaint(ctx context.Context, db *sql.DB, in *model.Complaint) (*model.Complaint, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO complaints (complainer, college, year_level, item_name, item_type, description,
		     contact, general_location, location, time_lost, date_lost, date_complained,
		     time_complained, status, finder, duration, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Complainer, in.College, in.YearLevel, in.ItemName, in.ItemType, in.Description,
		in.Contact, in.GeneralLocation, in.Location, in.TimeLost, in.DateLost, in.DateComplained,
		in.TimeComplained, in.Status, model.DefaultFinder, in.Duration, in.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating complaint: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting complaint id: %w", err)
	}

	return GetComplaint(ctx, db, id)
}

// GetComplaint returns a complaint by ID.
func GetComplaint(ctx context.Context, db *sql.DB, id int64) (*model.Complaint, error) {
	c, err := scanComplaint(db.QueryRowContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting complaint: %w", err)
	}
	return c, nil
}

// ListComplaints returns all complaints, newest first.
func ListComplaints(ctx context.Context, db *sql.DB) ([]model.Complaint, error) {
	return queryComplaints(ctx, db,
		`SELECT `+complaintColumns+` FROM complaints ORDER BY id DESC`)
}

// ListComplaintsByUser returns the complaints filed by one user.
func ListComplaintsByUser(ctx context.Context, db *sql.DB, userID int64) ([]model.Complaint, error) {
	return queryComplaints(ctx, db,
		`SELECT `+complaintColumns+` FROM complaints WHERE user_id = ? ORDER BY id DESC`, userID)
}

func queryComplaints(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Complaint, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing complaints: %w", err)
	}
	defer rows.Close()

	var complaints []model.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

// UpdateComplaint overwrites a complaint's fields. The owner and creation
// time are not touched.
func UpdateComplaint(ctx context.Context, db *sql.DB, in *model.Complaint) error {
	finder := in.Finder
	if finder == "" {
		finder = model.DefaultFinder
	}
	result, err := db.ExecContext(ctx,
		`UPDATE complaints SET complainer = ?, college = ?, year_level = ?, item_name = ?,
		     item_type = ?, description = ?, contact = ?, general_location = ?, location = ?,
		     time_lost = ?, date_lost = ?, date_complained = ?, time_complained = ?,
		     status = ?, finder = ?, duration = ?
		 WHERE id = ?`,
		in.Complainer, in.College, in.YearLevel, in.ItemName,
		in.ItemType, in.Description, in.Contact, in.GeneralLocation, in.Location,
		in.TimeLost, in.DateLost, in.DateComplained, in.TimeComplained,
		in.Status, finder, in.Duration,
		in.ID,
	)
	if err != nil {
		return fmt.Errorf("updating complaint: %w", err)
	}
	return expectOneRow(result, "complaint")
}

// DeleteComplaint permanently removes a complaint.
func DeleteComplaint(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM complaints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting complaint: %w", err)
	}
	return expectOneRow(result, "complaint")
}

// SetComplaintImage stores a photo of the lost item.
func SetComplaintImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE complaints SET item_image = ?, item_image_mime = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting complaint image: %w", err)
	}
	return expectOneRow(result, "complaint")
}

// GetComplaintImage returns the stored lost-item photo.
func GetComplaintImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	return getBlob(ctx, db, `SELECT item_image, item_image_mime FROM complaints WHERE id = ?`, id)
}
