package model

import (
	"strings"
	"time"
)

// Item is a found physical object reported by a finder.
type Item struct {
	ID              int64      `json:"id"`
	Finder          string     `json:"finder"`
	FinderType      string     `json:"finder_type,omitempty"`
	Item            string     `json:"item"`
	ItemType        string     `json:"item_type,omitempty"`
	Description     string     `json:"description,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	FinderContact   string     `json:"finder_contact,omitempty"`
	DateFound       Date       `json:"date_found"`
	GeneralLocation string     `json:"general_location,omitempty"`
	FoundLocation   string     `json:"found_location,omitempty"`
	TimeReturned    string     `json:"time_returned,omitempty"`
	Owner           string     `json:"owner,omitempty"`
	OwnerCollege    string     `json:"owner_college,omitempty"`
	OwnerContact    string     `json:"owner_contact,omitempty"`
	OwnerImage      string     `json:"owner_image,omitempty"`
	DateClaimed     string     `json:"date_claimed,omitempty"`
	TimeClaimed     string     `json:"time_claimed,omitempty"`
	Status          ItemStatus `json:"status"`
	FoundationID    *int64     `json:"foundation_id"`
	PostID          string     `json:"post_id,omitempty"`
	Duration        string     `json:"duration,omitempty"`
	ImageMime       string     `json:"image_mime,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Joined fields (not always populated).
	FoundationName string `json:"foundation_name,omitempty"`
}

// ItemStatus is the lifecycle state of a found item.
type ItemStatus string

// Item statuses.
const (
	ItemUnclaimed ItemStatus = "unclaimed"
	ItemClaimed   ItemStatus = "claimed"
	ItemDonated   ItemStatus = "donated"
)

// ParseItemStatus normalises s to one of the known item statuses.
func ParseItemStatus(s string) (ItemStatus, error) {
	switch st := ItemStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case ItemUnclaimed, ItemClaimed, ItemDonated:
		return st, nil
	}
	return "", Invalidf("unknown item status %q", s)
}

// ParseManualItemStatus is ParseItemStatus restricted to the values an
// operator may set directly. Donated is only ever assigned by reconciliation.
func ParseManualItemStatus(s string) (ItemStatus, error) {
	st, err := ParseItemStatus(s)
	if err != nil {
		return "", err
	}
	if st == ItemDonated {
		return "", Invalidf("status %q is assigned by foundation matching only", s)
	}
	return st, nil
}
