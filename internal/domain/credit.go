package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreditStatus is the redemption state of a session credit.
type CreditStatus string

const (
	CreditUnredeemed CreditStatus = "unredeemed"
	CreditRedeemed   CreditStatus = "redeemed"
)

// SessionCredit is one prepaid unit entitling the holder to start one
// additional paid session. A credit moves unredeemed -> redeemed at most once.
type SessionCredit struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	Status     CreditStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	RedeemedAt *time.Time   `json:"redeemed_at,omitempty"`
}

// CreditRepository defines the interface for session credit storage
type CreditRepository interface {
	Create(ctx context.Context, credit *SessionCredit) error
	GetUnredeemedByUser(ctx context.Context, userID uuid.UUID) (*SessionCredit, error)
}

// RenewalStore performs the renewal write as one atomic unit: the credit
// moves to redeemed, the session row and its opening message are inserted,
// and all three succeed or fail together. A credit is never consumed without
// a session to show for it. creditID is nil for premium renewals, which do
// not spend a credit. Redemption must only succeed while the credit is still
// unredeemed; a concurrent redemption of the same credit fails the whole
// operation.
type RenewalStore interface {
	CreateSessionRedeemingCredit(ctx context.Context, session *ChatSession, opening *Message, creditID *uuid.UUID) error
}
