package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/google/uuid"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO chat_messages (id, session_id, user_id, role, content, mode, sentiment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		message.ID,
		message.SessionID,
		message.UserID,
		message.Role,
		message.Content,
		message.Mode,
		message.Sentiment,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListBySession retrieves the most recent limit messages for a session.
// The query orders by recency to pick the latest N, then the slice is
// reversed so callers always see chronological order.
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, session_id, user_id, role, content, mode, sentiment, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var roleStr, modeStr string
		if err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.UserID,
			&roleStr,
			&m.Content,
			&modeStr,
			&m.Sentiment,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(roleStr)
		m.Mode = domain.ParseMode(modeStr)
		messages = append(messages, m)
	}

	// Reverse to return chronological order (oldest first)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// CountUserMessages counts user-authored messages in [from, to)
func (r *MessageRepository) CountUserMessages(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM chat_messages
		WHERE user_id = $1 AND role = 'user' AND created_at >= $2 AND created_at < $3
	`
	var count int
	if err := r.db.Pool.QueryRow(ctx, query, userID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
