package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ModeTransition is an audit record written exactly once per detected mode
// change. FromMode is never equal to ToMode.
type ModeTransition struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	FromMode  Mode      `json:"from_mode"`
	ToMode    Mode      `json:"to_mode"`
	CreatedAt time.Time `json:"created_at"`
}

// TransitionRepository defines the interface for mode transition audit storage
type TransitionRepository interface {
	Create(ctx context.Context, transition *ModeTransition) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]ModeTransition, error)
}
