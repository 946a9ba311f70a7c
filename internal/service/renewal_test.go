package service

import (
	"context"
	"testing"
	"time"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/llm"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/mode"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testCooldown = 30 * 24 * time.Hour
	testResume   = 24 * time.Hour
)

func newRenewalFixture() (*RenewalService, *MockUserRepository, *MockSessionRepository, *MockCreditRepository, *MockRenewalStore, *MockProvider) {
	mockUserRepo := new(MockUserRepository)
	mockSessionRepo := new(MockSessionRepository)
	mockCreditRepo := new(MockCreditRepository)
	mockStore := new(MockRenewalStore)
	mockProvider := new(MockProvider)

	router := llm.NewRouter("mock")
	mockProvider.On("Name").Return("mock").Maybe()
	mockProvider.On("IsConfigured").Return(true).Maybe()
	router.RegisterProvider(mockProvider)

	svc := NewRenewalService(mockUserRepo, mockSessionRepo, mockCreditRepo, mockStore, router, testCooldown, testResume)
	return svc, mockUserRepo, mockSessionRepo, mockCreditRepo, mockStore, mockProvider
}

func freeUser(id uuid.UUID) *domain.User {
	return &domain.User{ID: id, Email: "user@example.com", Tier: domain.TierFree}
}

func TestRenewalService_GetStatus(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	t.Run("cooldown still running after ten days", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, _, _ := newRenewalFixture()
		svc.now = func() time.Time { return now }

		lastActive := now.Add(-10 * 24 * time.Hour)
		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(nil, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(&domain.ChatSession{UpdatedAt: lastActive}, nil)

		status, err := svc.GetStatus(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, status.Eligible)
		assert.False(t, status.Resumable)
		if assert.NotNil(t, status.NextEligibleAt) {
			assert.Equal(t, lastActive.Add(testCooldown), *status.NextEligibleAt)
		}
	})

	t.Run("eligible after thirty one days", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, _, _ := newRenewalFixture()
		svc.now = func() time.Time { return now }

		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(&domain.SessionCredit{ID: uuid.New()}, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(&domain.ChatSession{UpdatedAt: now.Add(-31 * 24 * time.Hour)}, nil)

		status, err := svc.GetStatus(ctx, userID)
		assert.NoError(t, err)
		assert.True(t, status.Eligible)
		assert.True(t, status.CreditAvailable)
		assert.Nil(t, status.NextEligibleAt)
	})

	t.Run("fresh session is resumable not renewable", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, _, _ := newRenewalFixture()
		svc.now = func() time.Time { return now }

		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(nil, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(&domain.ChatSession{UpdatedAt: now.Add(-2 * time.Hour)}, nil)

		status, err := svc.GetStatus(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, status.Eligible)
		assert.True(t, status.Resumable)
	})

	t.Run("completed fresh session is not resumable", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, _, _ := newRenewalFixture()
		svc.now = func() time.Time { return now }

		lastActive := now.Add(-2 * time.Hour)
		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(nil, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(&domain.ChatSession{UpdatedAt: lastActive, Completed: true}, nil)

		status, err := svc.GetStatus(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, status.Resumable)
		assert.False(t, status.Eligible)
		if assert.NotNil(t, status.NextEligibleAt) {
			assert.Equal(t, lastActive.Add(testCooldown), *status.NextEligibleAt)
		}
	})

	t.Run("premium is always eligible", func(t *testing.T) {
		svc, mockUserRepo, _, mockCreditRepo, _, _ := newRenewalFixture()
		svc.now = func() time.Time { return now }

		premium := &domain.User{ID: userID, Tier: domain.TierPremium}
		mockUserRepo.On("GetByID", ctx, userID).Return(premium, nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(nil, nil)

		status, err := svc.GetStatus(ctx, userID)
		assert.NoError(t, err)
		assert.True(t, status.Eligible)
	})

	t.Run("no prior session means eligible", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, _, _ := newRenewalFixture()
		svc.now = func() time.Time { return now }

		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(nil, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(nil, nil)

		status, err := svc.GetStatus(ctx, userID)
		assert.NoError(t, err)
		assert.True(t, status.Eligible)
	})
}

func TestRenewalService_Renew(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	t.Run("redeems one credit and opens the session", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, mockStore, mockProvider := newRenewalFixture()
		svc.now = func() time.Time { return now }

		credit := &domain.SessionCredit{ID: uuid.New(), UserID: userID, Status: domain.CreditUnredeemed}
		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(credit, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(nil, nil)
		mockProvider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "").
			Return(&llm.Response{Text: "Hello again. How have you been?"}, nil)
		mockStore.On("CreateSessionRedeemingCredit", ctx,
			mock.AnythingOfType("*domain.ChatSession"),
			mock.AnythingOfType("*domain.Message"),
			&credit.ID,
		).Return(nil).Once()

		result, err := svc.Renew(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, "Hello again. How have you been?", result.OpeningMessage)

		mockStore.AssertNumberOfCalls(t, "CreateSessionRedeemingCredit", 1)
	})

	t.Run("keeps the credit when the session write fails", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, mockStore, mockProvider := newRenewalFixture()
		svc.now = func() time.Time { return now }

		credit := &domain.SessionCredit{ID: uuid.New(), UserID: userID, Status: domain.CreditUnredeemed}
		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(credit, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(nil, nil)
		mockProvider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "").
			Return(&llm.Response{Text: "Hello again."}, nil)
		// Redemption and the session write are a single store operation: when
		// it fails, nothing is left behind and no separate redeem ever ran.
		mockStore.On("CreateSessionRedeemingCredit", ctx,
			mock.AnythingOfType("*domain.ChatSession"),
			mock.AnythingOfType("*domain.Message"),
			&credit.ID,
		).Return(assert.AnError).Once()

		result, err := svc.Renew(ctx, userID)
		assert.Nil(t, result)
		assert.Equal(t, domain.KindStoreUnavailable, domain.KindOf(err))
		mockStore.AssertExpectations(t)
	})

	t.Run("rejects before the cooldown elapses", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, mockStore, _ := newRenewalFixture()
		svc.now = func() time.Time { return now }

		lastActive := now.Add(-10 * 24 * time.Hour)
		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(&domain.SessionCredit{ID: uuid.New()}, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(&domain.ChatSession{UpdatedAt: lastActive}, nil)

		result, err := svc.Renew(ctx, userID)
		assert.Nil(t, result)
		assert.Equal(t, domain.KindRenewalNotEligible, domain.KindOf(err))
		if status, ok := domain.DetailsOf(err).(*domain.RenewalStatus); assert.True(t, ok) {
			if assert.NotNil(t, status.NextEligibleAt) {
				assert.Equal(t, lastActive.Add(testCooldown), *status.NextEligibleAt)
			}
		}
		mockStore.AssertNotCalled(t, "CreateSessionRedeemingCredit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects without a credit", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, mockStore, _ := newRenewalFixture()
		svc.now = func() time.Time { return now }

		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(nil, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(nil, nil)

		result, err := svc.Renew(ctx, userID)
		assert.Nil(t, result)
		assert.Equal(t, domain.KindPaymentRequired, domain.KindOf(err))
		mockStore.AssertNotCalled(t, "CreateSessionRedeemingCredit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("premium renews without a credit", func(t *testing.T) {
		svc, mockUserRepo, _, mockCreditRepo, mockStore, mockProvider := newRenewalFixture()
		svc.now = func() time.Time { return now }

		premium := &domain.User{ID: userID, Tier: domain.TierPremium}
		mockUserRepo.On("GetByID", ctx, userID).Return(premium, nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(nil, nil)
		mockProvider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "").
			Return(&llm.Response{Text: "Welcome back."}, nil)
		mockStore.On("CreateSessionRedeemingCredit", ctx,
			mock.AnythingOfType("*domain.ChatSession"),
			mock.AnythingOfType("*domain.Message"),
			(*uuid.UUID)(nil),
		).Return(nil).Once()

		result, err := svc.Renew(ctx, userID)
		assert.NoError(t, err)
		assert.NotNil(t, result)
		mockStore.AssertExpectations(t)
	})

	t.Run("falls back to static greeting when the provider fails", func(t *testing.T) {
		svc, mockUserRepo, mockSessionRepo, mockCreditRepo, mockStore, mockProvider := newRenewalFixture()
		svc.now = func() time.Time { return now }

		credit := &domain.SessionCredit{ID: uuid.New(), UserID: userID}
		mockUserRepo.On("GetByID", ctx, userID).Return(freeUser(userID), nil)
		mockCreditRepo.On("GetUnredeemedByUser", ctx, userID).Return(credit, nil)
		mockSessionRepo.On("GetLatestByUser", ctx, userID).Return(nil, nil)
		mockProvider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "").
			Return(nil, assert.AnError)
		mockStore.On("CreateSessionRedeemingCredit", ctx,
			mock.AnythingOfType("*domain.ChatSession"),
			mock.AnythingOfType("*domain.Message"),
			&credit.ID,
		).Return(nil)

		result, err := svc.Renew(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, mode.Greeting(domain.TierFree), result.OpeningMessage)
	})
}
