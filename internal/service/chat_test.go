package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/mode"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type chatFixture struct {
	svc                *ChatService
	mockSessionRepo    *MockSessionRepository
	mockMessageRepo    *MockMessageRepository
	mockTransitionRepo *MockTransitionRepository
	mockProvider       *MockProvider
}

func newChatFixture() *chatFixture {
	mockSessionRepo := new(MockSessionRepository)
	mockMessageRepo := new(MockMessageRepository)
	mockTransitionRepo := new(MockTransitionRepository)
	mockProvider := new(MockProvider)

	router := llm.NewRouter("mock")
	mockProvider.On("Name").Return("mock").Maybe()
	mockProvider.On("IsConfigured").Return(true).Maybe()
	router.RegisterProvider(mockProvider)

	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByID", mock.Anything, mock.Anything).
		Return(&domain.User{Tier: domain.TierFree}, nil).Maybe()
	quota := NewQuotaService(mockMessageRepo, mockUserRepo, 50)
	assembler := NewContextAssembler(mockMessageRepo, 10)
	svc := NewChatService(
		mockSessionRepo,
		mockMessageRepo,
		mockTransitionRepo,
		mode.NewKeywordClassifier(),
		assembler,
		quota,
		router,
		0.7,
		600,
	)

	return &chatFixture{
		svc:                svc,
		mockSessionRepo:    mockSessionRepo,
		mockMessageRepo:    mockMessageRepo,
		mockTransitionRepo: mockTransitionRepo,
		mockProvider:       mockProvider,
	}
}

func (f *chatFixture) expectQuotaCount(ctx context.Context, userID uuid.UUID, count int) {
	f.mockMessageRepo.On("CountUserMessages", ctx, userID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(count, nil)
}

func TestChatService_SendTurn(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("classifies the message and switches mode", func(t *testing.T) {
		f := newChatFixture()

		session := &domain.ChatSession{
			ID:          sessionID,
			UserID:      userID,
			Title:       "New Session",
			CurrentMode: domain.ModeReflect,
		}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(session, nil)
		f.expectQuotaCount(ctx, userID, 5)
		f.mockTransitionRepo.On("Create", ctx, mock.AnythingOfType("*domain.ModeTransition")).Return(nil).Once()
		f.mockSessionRepo.On("Update", ctx, session).Return(nil)
		f.mockMessageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)
		f.mockMessageRepo.On("ListBySession", ctx, sessionID, 10).Return([]domain.Message{}, nil)
		f.mockProvider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "").
			Return(&llm.Response{Text: "What would growing toward that goal look like?"}, nil)

		result, err := f.svc.SendTurn(ctx, userID, sessionID, domain.TurnRequest{
			Content: "I feel confused about my goals",
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.ModeEvolve, result.Mode)
		assert.Equal(t, 44, result.RemainingMessages)
		assert.NotEmpty(t, result.Reply)

		f.mockTransitionRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("no transition when the mode is unchanged", func(t *testing.T) {
		f := newChatFixture()

		session := &domain.ChatSession{
			ID:          sessionID,
			UserID:      userID,
			Title:       "Goals",
			CurrentMode: domain.ModeEvolve,
		}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(session, nil)
		f.expectQuotaCount(ctx, userID, 5)
		f.mockSessionRepo.On("Update", ctx, session).Return(nil)
		f.mockMessageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)
		f.mockMessageRepo.On("ListBySession", ctx, sessionID, 10).Return([]domain.Message{}, nil)
		f.mockProvider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "").
			Return(&llm.Response{Text: "Tell me more about those goals."}, nil)

		result, err := f.svc.SendTurn(ctx, userID, sessionID, domain.TurnRequest{
			Content: "Still thinking about my goals for next year",
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.ModeEvolve, result.Mode)

		f.mockTransitionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("quota rejection happens before any write", func(t *testing.T) {
		f := newChatFixture()

		session := &domain.ChatSession{ID: sessionID, UserID: userID, CurrentMode: domain.ModeReflect}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(session, nil)
		f.expectQuotaCount(ctx, userID, 50)

		result, err := f.svc.SendTurn(ctx, userID, sessionID, domain.TurnRequest{Content: "hello"})
		assert.Nil(t, result)
		assert.Equal(t, domain.KindQuotaExceeded, domain.KindOf(err))

		f.mockMessageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.mockSessionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		f := newChatFixture()

		result, err := f.svc.SendTurn(ctx, userID, sessionID, domain.TurnRequest{Content: "   "})
		assert.Nil(t, result)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	})

	t.Run("session owned by someone else is not found", func(t *testing.T) {
		f := newChatFixture()

		other := &domain.ChatSession{ID: sessionID, UserID: uuid.New(), CurrentMode: domain.ModeReflect}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(other, nil)

		result, err := f.svc.SendTurn(ctx, userID, sessionID, domain.TurnRequest{Content: "hello"})
		assert.Nil(t, result)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("provider failure keeps the user message", func(t *testing.T) {
		f := newChatFixture()

		session := &domain.ChatSession{ID: sessionID, UserID: userID, CurrentMode: domain.ModeReflect}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(session, nil)
		f.expectQuotaCount(ctx, userID, 5)
		f.mockMessageRepo.On("Create", ctx, mock.MatchedBy(func(m *domain.Message) bool {
			return m.Role == domain.RoleUser
		})).Return(nil).Once()
		f.mockMessageRepo.On("ListBySession", ctx, sessionID, 10).Return([]domain.Message{}, nil)
		f.mockProvider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "").
			Return(nil, assert.AnError)

		result, err := f.svc.SendTurn(ctx, userID, sessionID, domain.TurnRequest{
			Content: "I just feel tired today",
		})
		assert.Nil(t, result)
		assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))

		f.mockMessageRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("user message carries the sentiment score", func(t *testing.T) {
		f := newChatFixture()

		session := &domain.ChatSession{ID: sessionID, UserID: userID, Title: "Check-in", CurrentMode: domain.ModeReflect}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(session, nil)
		f.expectQuotaCount(ctx, userID, 0)
		f.mockSessionRepo.On("Update", ctx, session).Return(nil)

		var userMsg *domain.Message
		f.mockMessageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Run(func(args mock.Arguments) {
				m := args.Get(1).(*domain.Message)
				if m.Role == domain.RoleUser {
					userMsg = m
				}
			}).Return(nil)
		f.mockMessageRepo.On("ListBySession", ctx, sessionID, 10).Return([]domain.Message{}, nil)
		f.mockProvider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "").
			Return(&llm.Response{Text: "I'm glad to hear that."}, nil)

		_, err := f.svc.SendTurn(ctx, userID, sessionID, domain.TurnRequest{
			Content: "I feel happy and calm and grateful",
		})
		assert.NoError(t, err)
		if assert.NotNil(t, userMsg) && assert.NotNil(t, userMsg.Sentiment) {
			assert.Greater(t, *userMsg.Sentiment, 0.0)
			assert.LessOrEqual(t, *userMsg.Sentiment, 1.0)
		}
	})
}

func TestChatService_Sessions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("create uses the default mode and title", func(t *testing.T) {
		f := newChatFixture()
		f.mockSessionRepo.On("Create", ctx, mock.AnythingOfType("*domain.ChatSession")).Return(nil)

		session, err := f.svc.CreateSession(ctx, userID, "")
		assert.NoError(t, err)
		assert.Equal(t, "New Session", session.Title)
		assert.Equal(t, domain.DefaultMode, session.CurrentMode)
		assert.Equal(t, 0, session.MessageCount)
	})

	t.Run("delete releases the session lock", func(t *testing.T) {
		f := newChatFixture()
		sessionID := uuid.New()
		session := &domain.ChatSession{ID: sessionID, UserID: userID}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(session, nil)
		f.mockSessionRepo.On("Delete", ctx, sessionID).Return(nil)

		f.svc.sessionLock(sessionID)
		err := f.svc.DeleteSession(ctx, userID, sessionID)
		assert.NoError(t, err)

		f.svc.mu.Lock()
		_, ok := f.svc.locks[sessionID]
		f.svc.mu.Unlock()
		assert.False(t, ok)
	})

	t.Run("complete marks the session finished", func(t *testing.T) {
		f := newChatFixture()
		sessionID := uuid.New()
		session := &domain.ChatSession{ID: sessionID, UserID: userID}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(session, nil)
		f.mockSessionRepo.On("Update", ctx, mock.MatchedBy(func(s *domain.ChatSession) bool {
			return s.ID == sessionID && s.Completed
		})).Return(nil).Once()

		completed, err := f.svc.CompleteSession(ctx, userID, sessionID)
		assert.NoError(t, err)
		assert.True(t, completed.Completed)
	})

	t.Run("complete is idempotent", func(t *testing.T) {
		f := newChatFixture()
		sessionID := uuid.New()
		session := &domain.ChatSession{ID: sessionID, UserID: userID, Completed: true}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(session, nil)

		completed, err := f.svc.CompleteSession(ctx, userID, sessionID)
		assert.NoError(t, err)
		assert.True(t, completed.Completed)
		f.mockSessionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("complete requires ownership", func(t *testing.T) {
		f := newChatFixture()
		sessionID := uuid.New()
		other := &domain.ChatSession{ID: sessionID, UserID: uuid.New()}
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(other, nil)

		completed, err := f.svc.CompleteSession(ctx, userID, sessionID)
		assert.Nil(t, completed)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("history requires ownership", func(t *testing.T) {
		f := newChatFixture()
		sessionID := uuid.New()
		f.mockSessionRepo.On("Get", ctx, sessionID).Return(nil, nil)

		messages, err := f.svc.GetHistory(ctx, userID, sessionID, 50)
		assert.Nil(t, messages)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "short", deriveTitle("short"))

	long := "this message is definitely longer than thirty characters"
	title := deriveTitle(long)
	assert.Equal(t, long[:maxTitleLength]+"...", title)

	// Multi-byte input must be cut on rune boundaries, never mid-character.
	accented := "je me sens complètement épuisé après cette semaine difficile"
	title = deriveTitle(accented)
	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, string([]rune(accented)[:maxTitleLength])+"...", title)

	exact := strings.Repeat("é", maxTitleLength)
	assert.Equal(t, exact, deriveTitle(exact))
}

func TestChatService_SendTurn_SerializesWithinSession(t *testing.T) {
	f := newChatFixture()
	sessionID := uuid.New()

	first := f.svc.sessionLock(sessionID)
	second := f.svc.sessionLock(sessionID)
	assert.Same(t, first, second)

	otherLock := f.svc.sessionLock(uuid.New())
	assert.NotSame(t, first, otherLock)

	// Locks must actually be usable without deadlock.
	done := make(chan struct{})
	first.Lock()
	go func() {
		second.Lock()
		second.Unlock()
		close(done)
	}()
	first.Unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second turn never acquired the session lock")
	}
}
