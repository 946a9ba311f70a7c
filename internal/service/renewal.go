package service

import (
	"context"
	"strings"
	"time"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/mode"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RenewalService gates the start of new paid sessions. Free-tier users wait
// out a cooldown measured from their latest session's last activity and spend
// one credit per renewal. Premium users renew at any time without credits.
type RenewalService struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	creditRepo  domain.CreditRepository
	store       domain.RenewalStore
	router      *llm.Router
	cooldown    time.Duration
	resume      time.Duration
	now         func() time.Time
}

// NewRenewalService creates a renewal service.
func NewRenewalService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	creditRepo domain.CreditRepository,
	store domain.RenewalStore,
	router *llm.Router,
	cooldown, resume time.Duration,
) *RenewalService {
	return &RenewalService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		creditRepo:  creditRepo,
		store:       store,
		router:      router,
		cooldown:    cooldown,
		resume:      resume,
		now:         time.Now,
	}
}

// GetStatus reports whether the user may renew right now. NextEligibleAt is
// set only when the cooldown is still running for a free-tier user.
func (s *RenewalService) GetStatus(ctx context.Context, userID uuid.UUID) (*domain.RenewalStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to get user", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}

	credit, err := s.creditRepo.GetUnredeemedByUser(ctx, userID)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to check credits", err)
	}

	status := &domain.RenewalStatus{CreditAvailable: credit != nil}

	if user.Tier == domain.TierPremium {
		status.Eligible = true
		return status, nil
	}

	latest, err := s.sessionRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to get latest session", err)
	}
	if latest == nil {
		// First session is always allowed.
		status.Eligible = true
		return status, nil
	}

	since := s.now().Sub(latest.UpdatedAt)
	switch {
	case since < s.resume && !latest.Completed:
		// Fresh, unfinished session: continue it instead of starting a
		// new one. A completed session is never resumable.
		status.Resumable = true
		next := latest.UpdatedAt.Add(s.cooldown)
		status.NextEligibleAt = &next
	case since >= s.cooldown:
		status.Eligible = true
	default:
		next := latest.UpdatedAt.Add(s.cooldown)
		status.NextEligibleAt = &next
	}

	return status, nil
}

// Renew starts a new session for the user. Free-tier users must be past the
// cooldown and hold an unredeemed credit. The credit redemption, the session
// row, and the opening message are written as one atomic unit, so a failed
// renewal never consumes the credit. The opening message comes from the
// default provider, falling back to the static greeting when the provider
// fails.
func (s *RenewalService) Renew(ctx context.Context, userID uuid.UUID) (*domain.RenewalResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to get user", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}

	status, err := s.GetStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.Eligible {
		return nil, domain.ED(domain.KindRenewalNotEligible, "renewal cooldown has not elapsed", status)
	}

	var creditID *uuid.UUID
	if user.Tier != domain.TierPremium {
		credit, err := s.creditRepo.GetUnredeemedByUser(ctx, userID)
		if err != nil {
			return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to check credits", err)
		}
		if credit == nil {
			return nil, domain.E(domain.KindPaymentRequired, "no session credit available")
		}
		creditID = &credit.ID
	}

	opening := s.openingMessage(ctx, user.Tier)

	now := s.now()
	session := &domain.ChatSession{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "New Session",
		CurrentMode:  domain.DefaultMode,
		MessageCount: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	msg := &domain.Message{
		ID:        uuid.New(),
		SessionID: session.ID,
		UserID:    userID,
		Role:      domain.RoleAssistant,
		Content:   opening,
		Mode:      domain.DefaultMode,
		CreatedAt: now,
	}

	if err := s.store.CreateSessionRedeemingCredit(ctx, session, msg, creditID); err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to create renewed session", err)
	}

	return &domain.RenewalResult{
		SessionID:      session.ID,
		OpeningMessage: opening,
	}, nil
}

// GrantCredit issues one unredeemed session credit to the user.
func (s *RenewalService) GrantCredit(ctx context.Context, userID uuid.UUID) (*domain.SessionCredit, error) {
	credit := &domain.SessionCredit{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.CreditUnredeemed,
		CreatedAt: s.now(),
	}
	if err := s.creditRepo.Create(ctx, credit); err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to create credit", err)
	}
	return credit, nil
}

// openingMessage generates the session opener via the default provider.
// Provider failures are logged and the tier greeting is used verbatim so a
// renewed session always starts with an assistant message.
func (s *RenewalService) openingMessage(ctx context.Context, tier domain.Tier) string {
	greeting := mode.Greeting(tier)

	provider, err := s.router.GetProvider("")
	if err != nil {
		log.Warn().Err(err).Msg("No provider for opening message, using static greeting")
		return greeting
	}

	resp, err := provider.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: mode.SystemPrompt(domain.DefaultMode)},
			{Role: llm.RoleUser, Content: greeting},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	}, "")
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		log.Warn().Err(err).Msg("Opening message generation failed, using static greeting")
		return greeting
	}

	return strings.TrimSpace(resp.Text)
}
