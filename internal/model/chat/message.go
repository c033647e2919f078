package chat

import (
	"time"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// Message is one transcript entry. It is never edited after being appended.
type Message struct {
	ID        string             `json:"id"`
	SessionID string             `json:"sessionId"`
	Role      Role               `json:"role"`
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
	UserID    string             `json:"userId,omitempty"`
	Analytics *analytics.Payload `json:"analyticsPayload,omitempty"`
	IsLoading bool               `json:"isLoading,omitempty"`
}
