package model

import (
	"strings"
	"time"
)

// RetrievalRequest is a formal claim against a specific found item.
type RetrievalRequest struct {
	ID               int64         `json:"id"`
	ClaimerName      string        `json:"claimer_name"`
	ClaimerCollege   string        `json:"claimer_college,omitempty"`
	ClaimerLevel     string        `json:"claimer_level,omitempty"`
	ContactNumber    string        `json:"contact_number,omitempty"`
	DateComplained   string        `json:"date_complained,omitempty"`
	TimeComplained   string        `json:"time_complained,omitempty"`
	ItemName         string        `json:"item_name,omitempty"`
	Description      string        `json:"description,omitempty"`
	GeneralLocation  string        `json:"general_location,omitempty"`
	SpecificLocation string        `json:"specific_location,omitempty"`
	DateLost         string        `json:"date_lost,omitempty"`
	TimeLost         string        `json:"time_lost,omitempty"`
	ItemID           int64         `json:"item_id"`
	OwnerImageMime   string        `json:"owner_image_mime,omitempty"`
	Status           RequestStatus `json:"status"`
	UserID           *int64        `json:"user_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// RequestFields are the parts of a retrieval request its owner may edit.
// Nil fields are left unchanged.
type RequestFields struct {
	ItemName         *string `json:"item_name"`
	Description      *string `json:"description"`
	GeneralLocation  *string `json:"general_location"`
	SpecificLocation *string `json:"specific_location"`
	DateLost         *string `json:"date_lost"`
	TimeLost         *string `json:"time_lost"`
}

// RequestStatus is the review state of a retrieval request.
type RequestStatus string

// Retrieval request statuses.
const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ParseRequestStatus normalises s to a request status. "resolved" is accepted
// as a synonym for approved.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case string(RequestPending), string(RequestApproved), string(RequestRejected):
		return RequestStatus(v), nil
	case "resolved":
		return RequestApproved, nil
	}
	return "", Invalidf("unknown retrieval request status %q", s)
}
