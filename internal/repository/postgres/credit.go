package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreditRepository implements domain.CreditRepository
type CreditRepository struct {
	db *DB
}

// NewCreditRepository creates a new session credit repository
func NewCreditRepository(db *DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// Create inserts a new unredeemed credit
func (r *CreditRepository) Create(ctx context.Context, credit *domain.SessionCredit) error {
	query := `
		INSERT INTO session_credits (id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		credit.ID,
		credit.UserID,
		credit.Status,
		credit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create credit: %w", err)
	}
	return nil
}

// GetUnredeemedByUser returns the oldest unredeemed credit for a user, or
// nil when none exists.
func (r *CreditRepository) GetUnredeemedByUser(ctx context.Context, userID uuid.UUID) (*domain.SessionCredit, error) {
	query := `
		SELECT id, user_id, status, created_at, redeemed_at
		FROM session_credits
		WHERE user_id = $1 AND status = 'unredeemed'
		ORDER BY created_at ASC
		LIMIT 1
	`
	var c domain.SessionCredit
	var status string
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&c.ID,
		&c.UserID,
		&status,
		&c.CreatedAt,
		&c.RedeemedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credit: %w", err)
	}
	c.Status = domain.CreditStatus(status)
	return &c, nil
}
