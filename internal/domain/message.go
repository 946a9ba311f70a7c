package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents one turn in a session. Sentiment is only set for
// user-authored messages and is bounded to [-1, 1].
type Message struct {
	ID        uuid.UUID   `json:"id"`
	SessionID uuid.UUID   `json:"session_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Mode      Mode        `json:"mode"`
	Sentiment *float64    `json:"sentiment,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	// ListBySession returns the most recent limit messages for a session
	// in chronological order.
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]Message, error)
	// CountUserMessages counts role=user messages authored by userID whose
	// creation timestamp falls in [from, to).
	CountUserMessages(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
}
