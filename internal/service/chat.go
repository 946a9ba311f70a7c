package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/mode"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/sentiment"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxTitleLength = 30

// ChatService drives one conversation turn end to end: quota check, mode
// classification, sentiment scoring, context assembly, completion, and
// persistence. Turns within one session are serialized; turns across
// sessions run concurrently.
type ChatService struct {
	sessionRepo    domain.SessionRepository
	messageRepo    domain.MessageRepository
	transitionRepo domain.TransitionRepository
	classifier     mode.Classifier
	assembler      *ContextAssembler
	quota          *QuotaService
	router         *llm.Router
	temperature    float64
	maxTokens      int

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewChatService creates a chat service.
func NewChatService(
	sessionRepo domain.SessionRepository,
	messageRepo domain.MessageRepository,
	transitionRepo domain.TransitionRepository,
	classifier mode.Classifier,
	assembler *ContextAssembler,
	quota *QuotaService,
	router *llm.Router,
	temperature float64,
	maxTokens int,
) *ChatService {
	return &ChatService{
		sessionRepo:    sessionRepo,
		messageRepo:    messageRepo,
		transitionRepo: transitionRepo,
		classifier:     classifier,
		assembler:      assembler,
		quota:          quota,
		router:         router,
		temperature:    temperature,
		maxTokens:      maxTokens,
		locks:          make(map[uuid.UUID]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing turns for one session.
func (s *ChatService) sessionLock(sessionID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// SendTurn processes one user message in a session and returns the
// assistant's reply. The quota gate runs before any mutation, so a rejected
// turn leaves no trace. If the completion provider fails after the user
// message is persisted, the message stays so a retry does not lose input.
func (s *ChatService) SendTurn(ctx context.Context, userID, sessionID uuid.UUID, req domain.TurnRequest) (*domain.TurnResult, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.E(domain.KindInvalidInput, "message content is empty")
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to get session", err)
	}
	if session == nil || session.UserID != userID {
		return nil, domain.E(domain.KindNotFound, "session not found")
	}

	usage, err := s.quota.CheckDailyLimit(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Classification and scoring only read the message text, so they run
	// side by side.
	var (
		detected domain.Mode
		score    float64
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		detected = s.classifier.Classify(ctx, content)
	}()
	go func() {
		defer wg.Done()
		score = sentiment.Score(content)
	}()
	wg.Wait()

	effective := session.CurrentMode
	if detected != effective {
		if err := s.changeMode(ctx, session, detected); err != nil {
			return nil, err
		}
		effective = detected
	}

	now := time.Now()
	userMsg := &domain.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      domain.RoleUser,
		Content:   content,
		Mode:      effective,
		Sentiment: &score,
		CreatedAt: now,
	}
	if err := s.messageRepo.Create(ctx, userMsg); err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to persist user message", err)
	}

	messages, err := s.assembler.Build(ctx, sessionID, effective)
	if err != nil {
		return nil, err
	}

	provider, err := s.router.GetProvider("")
	if err != nil {
		return nil, domain.WrapE(domain.KindUpstreamUnavailable, "no completion provider available", err)
	}

	resp, err := provider.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}, "")
	if err != nil {
		return nil, domain.WrapE(domain.KindUpstreamUnavailable, "completion failed", err)
	}
	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		return nil, domain.E(domain.KindUpstreamUnavailable, "provider returned an empty reply")
	}

	assistantMsg := &domain.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		Mode:      effective,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, assistantMsg); err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to persist reply", err)
	}

	session.MessageCount += 2
	session.UpdatedAt = time.Now()
	if session.Title == "" || session.Title == "New Session" {
		session.Title = deriveTitle(content)
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		// The turn itself succeeded; stale counters are tolerable.
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to update session after turn")
	}

	remaining := usage.RemainingMessages - 1
	if remaining < 0 {
		remaining = 0
	}

	return &domain.TurnResult{
		Reply:             reply,
		Mode:              effective,
		Sentiment:         score,
		RemainingMessages: remaining,
	}, nil
}

// changeMode records the transition and moves the session to the new mode.
// Both writes go through here so a transition row always accompanies a mode
// change.
func (s *ChatService) changeMode(ctx context.Context, session *domain.ChatSession, to domain.Mode) error {
	transition := &domain.ModeTransition{
		ID:        uuid.New(),
		SessionID: session.ID,
		UserID:    session.UserID,
		FromMode:  session.CurrentMode,
		ToMode:    to,
		CreatedAt: time.Now(),
	}
	if err := s.transitionRepo.Create(ctx, transition); err != nil {
		return domain.WrapE(domain.KindStoreUnavailable, "failed to record mode transition", err)
	}

	session.CurrentMode = to
	session.UpdatedAt = time.Now()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return domain.WrapE(domain.KindStoreUnavailable, "failed to update session mode", err)
	}

	return nil
}

// CreateSession starts a new session in the default mode.
func (s *ChatService) CreateSession(ctx context.Context, userID uuid.UUID, title string) (*domain.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Session"
	}

	now := time.Now()
	session := &domain.ChatSession{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		CurrentMode: domain.DefaultMode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to create session", err)
	}
	return session, nil
}

// GetSession retrieves a session owned by the user.
func (s *ChatService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.ChatSession, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to get session", err)
	}
	if session == nil || session.UserID != userID {
		return nil, domain.E(domain.KindNotFound, "session not found")
	}
	return session, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (s *ChatService) ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.ChatSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	sessions, err := s.sessionRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to list sessions", err)
	}
	return sessions, nil
}

// GetHistory returns up to limit most recent messages of a session in
// chronological order.
func (s *ChatService) GetHistory(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]domain.Message, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	messages, err := s.messageRepo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to load messages", err)
	}
	return messages, nil
}

// GetTransitions returns a session's mode transitions, oldest first.
func (s *ChatService) GetTransitions(ctx context.Context, userID, sessionID uuid.UUID) ([]domain.ModeTransition, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	transitions, err := s.transitionRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to load transitions", err)
	}
	return transitions, nil
}

// CompleteSession marks a session finished. A completed session stays
// readable but no longer counts as resumable for renewal.
func (s *ChatService) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.ChatSession, error) {
	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return session, nil
	}

	session.Completed = true
	session.UpdatedAt = time.Now()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, domain.WrapE(domain.KindStoreUnavailable, "failed to complete session", err)
	}
	return session, nil
}

// DeleteSession removes a session owned by the user.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return domain.WrapE(domain.KindStoreUnavailable, "failed to delete session", err)
	}

	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()

	return nil
}

// deriveTitle builds a session title from the first user message. Truncation
// counts runes so multi-byte characters are never split.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= maxTitleLength {
		return content
	}
	return string(runes[:maxTitleLength]) + "..."
}
