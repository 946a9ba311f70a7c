package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChatSession represents one ongoing support conversation.
// CurrentMode is always a valid Mode value and MessageCount only grows.
type ChatSession struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	CurrentMode  Mode      `json:"current_mode"`
	MessageCount int       `json:"message_count"`
	Completed    bool      `json:"completed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, session *ChatSession) error
	Get(ctx context.Context, id uuid.UUID) (*ChatSession, error)
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*ChatSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, offset int) ([]ChatSession, error)
	Update(ctx context.Context, session *ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
}
