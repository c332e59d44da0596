package model

import (
	"strings"
	"time"
)

// Foundation is a donation drive that accepts unclaimed items found within
// its window.
type Foundation struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	Contact     string    `json:"contact,omitempty"`
	Status      string    `json:"status,omitempty"`
	StartDate   Date      `json:"start_date"`
	EndDate     Date      `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidWindow reports whether the acceptance window is usable for matching.
// A window whose start falls after its end is never matched.
func (f *Foundation) ValidWindow() bool {
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return false
	}
	return !f.StartDate.After(f.EndDate)
}

// Accepts reports whether d lies inside the closed window [start, end].
func (f *Foundation) Accepts(d Date) bool {
	if d.IsZero() || !f.ValidWindow() {
		return false
	}
	return !d.Before(f.StartDate) && !d.After(f.EndDate)
}

// Validate checks the fields required to create or replace a foundation.
// An inverted window is allowed.
func (f *Foundation) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return Invalidf("foundation name is required")
	}
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return Invalidf("start_date and end_date are required")
	}
	return nil
}
