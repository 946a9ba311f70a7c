package domain

import (
	"time"

	"github.com/google/uuid"
)

// TurnRequest is one inbound user message for a session.
type TurnRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// TurnResult is the outcome of one accepted turn.
type TurnResult struct {
	Reply             string  `json:"reply"`
	Mode              Mode    `json:"mode"`
	Sentiment         float64 `json:"sentiment"`
	RemainingMessages int     `json:"remaining_messages"`
}

// DailyUsage reports a user's consumption against the daily ceiling.
type DailyUsage struct {
	MessageCount      int  `json:"message_count"`
	RemainingMessages int  `json:"remaining_messages"`
	IsLimitReached    bool `json:"is_limit_reached"`
}

// RenewalStatus reports whether a user may start a new paid session.
// NextEligibleAt is set only when the cooldown is still running. Resumable
// means the latest session is fresh enough to continue instead of renewing.
type RenewalStatus struct {
	Eligible        bool       `json:"eligible"`
	Resumable       bool       `json:"resumable"`
	CreditAvailable bool       `json:"credit_available"`
	NextEligibleAt  *time.Time `json:"next_eligible_at,omitempty"`
}

// RenewalResult is the outcome of a successful renewal.
type RenewalResult struct {
	SessionID      uuid.UUID `json:"session_id"`
	OpeningMessage string    `json:"opening_message"`
}
