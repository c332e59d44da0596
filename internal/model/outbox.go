package model

import (
	"encoding/json"
	"time"
)

// OutboxStatus tracks delivery of a mirror event.
type OutboxStatus string

// Outbox statuses.
const (
	OutboxCreated OutboxStatus = "created"
	OutboxFailed  OutboxStatus = "failed"
	OutboxDone    OutboxStatus = "done"
)

// OutboxEntry is a pending or delivered mirror event.
type OutboxEntry struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Status    OutboxStatus    `json:"status"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
