package model

import "time"

// DefaultFinder is stored on complaints until a finder is known.
const DefaultFinder = "N/A"

// Complaint is a lost-item report filed by a claimant.
type Complaint struct {
	ID              int64     `json:"id"`
	Complainer      string    `json:"complainer"`
	College         string    `json:"college,omitempty"`
	YearLevel       string    `json:"year_level,omitempty"`
	ItemName        string    `json:"item_name,omitempty"`
	ItemType        string    `json:"item_type,omitempty"`
	Description     string    `json:"description,omitempty"`
	Contact         string    `json:"contact,omitempty"`
	GeneralLocation string    `json:"general_location,omitempty"`
	Location        string    `json:"location,omitempty"`
	TimeLost        string    `json:"time_lost,omitempty"`
	DateLost        string    `json:"date_lost,omitempty"`
	DateComplained  string    `json:"date_complained,omitempty"`
	TimeComplained  string    `json:"time_complained,omitempty"`
	Status          string    `json:"status,omitempty"`
	Finder          string    `json:"finder"`
	Duration        string    `json:"duration,omitempty"`
	UserID          *int64    `json:"user_id,omitempty"`
	ItemImageMime   string    `json:"item_image_mime,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
