package chat

import (
	"time"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// Session is one in-memory conversation.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	// Connected reports whether a usage snapshot was loaded.
	Connected bool `json:"connected"`

	Snapshot *analytics.Snapshot `json:"-"`
}
