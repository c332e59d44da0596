package model

import "time"

// ItemTransition records one change of an item's status or foundation.
type ItemTransition struct {
	ID           int64      `json:"id"`
	ItemID       int64      `json:"item_id"`
	FromStatus   ItemStatus `json:"from_status,omitempty"`
	ToStatus     ItemStatus `json:"to_status"`
	FoundationID *int64     `json:"foundation_id"`
	Note         string     `json:"note,omitempty"`
	ChangedBy    *int64     `json:"changed_by"`
	ChangedAt    time.Time  `json:"changed_at"`

	// Joined fields (not always populated).
	FoundationName string `json:"foundation_name,omitempty"`
}

// Transition notes written by the store.
const (
	NoteReported         = "reported"
	NoteEdited           = "edited"
	NoteStatusSet        = "status set"
	NoteWindowMatched    = "foundation window matched"
	NoteFoundationRemove = "foundation removed"
)
