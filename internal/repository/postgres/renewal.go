package postgres

import (
	"context"
	"fmt"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/google/uuid"
)

// RenewalStore implements domain.RenewalStore
type RenewalStore struct {
	db *DB
}

// NewRenewalStore creates a new renewal store
func NewRenewalStore(db *DB) *RenewalStore {
	return &RenewalStore{db: db}
}

// CreateSessionRedeemingCredit runs the renewal write in one transaction.
// The conditional UPDATE on the credit's status makes redemption happen at
// most once: a concurrent renewal of the same credit finds zero matching
// rows and rolls everything back, leaving neither a session nor a spent
// credit.
func (r *RenewalStore) CreateSessionRedeemingCredit(ctx context.Context, session *domain.ChatSession, opening *domain.Message, creditID *uuid.UUID) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin renewal transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if creditID != nil {
		tag, err := tx.Exec(ctx, `
			UPDATE session_credits
			SET status = 'redeemed', redeemed_at = now()
			WHERE id = $1 AND status = 'unredeemed'
		`, *creditID)
		if err != nil {
			return fmt.Errorf("failed to redeem credit: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("credit %s already redeemed or missing", *creditID)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_sessions (id, user_id, title, current_mode, message_count, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
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

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_messages (id, session_id, user_id, role, content, mode, sentiment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		opening.ID,
		opening.SessionID,
		opening.UserID,
		opening.Role,
		opening.Content,
		opening.Mode,
		opening.Sentiment,
		opening.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create opening message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit renewal transaction: %w", err)
	}
	return nil
}
