package postgres

import (
	"context"
	"fmt"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/google/uuid"
)

// TransitionRepository implements domain.TransitionRepository
type TransitionRepository struct {
	db *DB
}

// NewTransitionRepository creates a new mode transition repository
func NewTransitionRepository(db *DB) *TransitionRepository {
	return &TransitionRepository{db: db}
}

// Create inserts a mode transition audit record
func (r *TransitionRepository) Create(ctx context.Context, transition *domain.ModeTransition) error {
	query := `
		INSERT INTO mode_transitions (id, session_id, user_id, from_mode, to_mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		transition.ID,
		transition.SessionID,
		transition.UserID,
		transition.FromMode,
		transition.ToMode,
		transition.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create mode transition: %w", err)
	}
	return nil
}

// ListBySession retrieves transitions for a session in chronological order
func (r *TransitionRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.ModeTransition, error) {
	query := `
		SELECT id, session_id, user_id, from_mode, to_mode, created_at
		FROM mode_transitions
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mode transitions: %w", err)
	}
	defer rows.Close()

	var transitions []domain.ModeTransition
	for rows.Next() {
		var t domain.ModeTransition
		var from, to string
		if err := rows.Scan(
			&t.ID,
			&t.SessionID,
			&t.UserID,
			&from,
			&to,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mode transition: %w", err)
		}
		t.FromMode = domain.ParseMode(from)
		t.ToMode = domain.ParseMode(to)
		transitions = append(transitions, t)
	}
	return transitions, nil
}
