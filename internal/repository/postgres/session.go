package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, title, current_mode, message_count, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Title,
		session.CurrentMode,
		session.MessageCount,
		session.Completed,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ChatSession, error) {
	query := `
		SELECT id, user_id, title, current_mode, message_count, completed, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

// GetLatestByUser returns the most recently updated session for a user, or
// nil when the user has none.
func (r *SessionRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	query := `
		SELECT id, user_id, title, current_mode, message_count, completed, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, userID))
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, offset int) ([]domain.ChatSession, error) {
	query := `
		SELECT id, user_id, title, current_mode, message_count, completed, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession
	for rows.Next() {
		var s domain.ChatSession
		var mode string
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Title,
			&mode,
			&s.MessageCount,
			&s.Completed,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.CurrentMode = domain.ParseMode(mode)
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *SessionRepository) Update(ctx context.Context, session *domain.ChatSession) error {
	query := `
		UPDATE chat_sessions
		SET title = $1, current_mode = $2, message_count = $3, completed = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := r.db.Pool.Exec(ctx, query,
		session.Title,
		session.CurrentMode,
		session.MessageCount,
		session.Completed,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", session.ID)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM chat_sessions WHERE id = $1`
	_, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) scanOne(row pgx.Row) (*domain.ChatSession, error) {
	var s domain.ChatSession
	var mode string
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Title,
		&mode,
		&s.MessageCount,
		&s.Completed,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.CurrentMode = domain.ParseMode(mode)
	return &s, nil
}
