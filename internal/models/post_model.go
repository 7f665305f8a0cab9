package models

import "time"

type Post struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Content      string     `json:"content"`
	MediaRefs    []string   `json:"media_refs,omitempty"`
	Status       string     `json:"status"` // draft, ready, scheduled, sending, sent, error
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	ThreadOrder  int        `json:"thread_order"`
	ParentID     string     `json:"parent_id,omitempty"`
	PostedID     string     `json:"posted_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusReady     = "ready"
	PostStatusScheduled = "scheduled"
	PostStatusSending   = "sending"
	PostStatusSent      = "sent"
	PostStatusError     = "error"
)
