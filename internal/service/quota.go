package service

import (
	"context"
	"time"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/google/uuid"
)

// QuotaService enforces the per-user daily message ceiling. Days are UTC
// calendar days and the count covers user-authored messages across all of a
// user's sessions. Premium accounts are never limited.
type QuotaService struct {
	messageRepo domain.MessageRepository
	userRepo    domain.UserRepository
	dailyLimit  int
	now         func() time.Time
}

// NewQuotaService creates a quota service with the given daily limit.
func NewQuotaService(messageRepo domain.MessageRepository, userRepo domain.UserRepository, dailyLimit int) *QuotaService {
	return &QuotaService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		dailyLimit:  dailyLimit,
		now:         time.Now,
	}
}

// GetDailyUsage reports the user's consumption for the current UTC day.
// The count is read from the store on every call so that concurrent turns
// never see a stale cached value. Premium users always report the limit as
// not reached.
func (s *QuotaService) GetDailyUsage(ctx context.Context, userID uuid.UUID) (*domain.DailyUsage, error) {
	from, to := s.dayWindow()
	count, err := s.messageRepo.CountUserMessages(ctx, userID, from, to)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to count daily messages", err)
	}

	remaining := s.dailyLimit - count
	if remaining < 0 {
		remaining = 0
	}

	usage := &domain.DailyUsage{
		MessageCount:      count,
		RemainingMessages: remaining,
		IsLimitReached:    count >= s.dailyLimit,
	}

	if usage.IsLimitReached {
		premium, err := s.isPremium(ctx, userID)
		if err != nil {
			return nil, err
		}
		if premium {
			usage.IsLimitReached = false
		}
	}

	return usage, nil
}

// CheckDailyLimit returns the current usage, or a quota error when the user
// has exhausted the day's allowance. A store failure fails closed: the turn
// is rejected rather than admitted on an unknown count.
func (s *QuotaService) CheckDailyLimit(ctx context.Context, userID uuid.UUID) (*domain.DailyUsage, error) {
	usage, err := s.GetDailyUsage(ctx, userID)
	if err != nil {
		return nil, err
	}
	if usage.IsLimitReached {
		return nil, domain.ED(domain.KindQuotaExceeded, "daily message limit reached", usage)
	}
	return usage, nil
}

// isPremium reports whether the user is on the premium tier. Lookup failure
// fails closed, same as an unavailable count.
func (s *QuotaService) isPremium(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, domain.WrapE(domain.KindStoreUnavailable, "failed to get user", err)
	}
	return user != nil && user.Tier == domain.TierPremium, nil
}

// dayWindow returns [midnight, next midnight) for the current UTC day.
func (s *QuotaService) dayWindow() (time.Time, time.Time) {
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.Add(24 * time.Hour)
}
