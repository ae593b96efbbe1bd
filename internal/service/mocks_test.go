package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/repository"
)

type MockJuniorRepo struct{ mock.Mock }

func (m *MockJuniorRepo) Create(ctx context.Context, j *domain.Junior) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJuniorRepo) GetByID(ctx context.Context, id int32) (*domain.Junior, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Junior), args.Error(1)
}

func (m *MockJuniorRepo) GetByStudentID(ctx context.Context, studentID string) (*domain.Junior, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Junior), args.Error(1)
}

func (m *MockJuniorRepo) GetByEmail(ctx context.Context, email string) (*domain.Junior, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Junior), args.Error(1)
}

func (m *MockJuniorRepo) List(ctx context.Context, isMatched *bool, page, pageSize int32) ([]domain.Junior, int32, error) {
	args := m.Called(ctx, isMatched, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Junior), args.Get(1).(int32), args.Error(2)
}

func (m *MockJuniorRepo) Update(ctx context.Context, j *domain.Junior) error {
	return m.Called(ctx, j).Error(0)
}

type MockSeniorRepo struct{ mock.Mock }

func (m *MockSeniorRepo) Create(ctx context.Context, s *domain.Senior) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSeniorRepo) GetByID(ctx context.Context, id int32) (*domain.Senior, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Senior), args.Error(1)
}

func (m *MockSeniorRepo) GetByStudentID(ctx context.Context, studentID string) (*domain.Senior, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Senior), args.Error(1)
}

func (m *MockSeniorRepo) GetBySlackUserID(ctx context.Context, slackUserID string) (*domain.Senior, error) {
	args := m.Called(ctx, slackUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Senior), args.Error(1)
}

func (m *MockSeniorRepo) ListEligible(ctx context.Context, category string) ([]domain.Senior, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Senior), args.Error(1)
}

func (m *MockSeniorRepo) Update(ctx context.Context, s *domain.Senior) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSeniorRepo) GetAcceptedCount(ctx context.Context, seniorID int32) (int, error) {
	args := m.Called(ctx, seniorID)
	return args.Int(0), args.Error(1)
}

type MockMatchingRepo struct{ mock.Mock }

func (m *MockMatchingRepo) CreateSession(ctx context.Context, session *domain.OfferSession, offers []domain.SubOffer) error {
	return m.Called(ctx, session, offers).Error(0)
}

func (m *MockMatchingRepo) GetSession(ctx context.Context, id int32) (*domain.OfferSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OfferSession), args.Error(1)
}

func (m *MockMatchingRepo) GetSubOffers(ctx context.Context, sessionID int32) ([]domain.SubOffer, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubOffer), args.Error(1)
}

func (m *MockMatchingRepo) GetSubOffer(ctx context.Context, sessionID, seniorID int32) (*domain.SubOffer, error) {
	args := m.Called(ctx, sessionID, seniorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubOffer), args.Error(1)
}

func (m *MockMatchingRepo) SetSubOfferMessage(ctx context.Context, subOfferID int32, channelID, messageTS string) error {
	return m.Called(ctx, subOfferID, channelID, messageTS).Error(0)
}

func (m *MockMatchingRepo) ListByJunior(ctx context.Context, juniorID int32) ([]domain.OfferSession, error) {
	args := m.Called(ctx, juniorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OfferSession), args.Error(1)
}

func (m *MockMatchingRepo) ListBySenior(ctx context.Context, seniorID int32) ([]domain.OfferSession, error) {
	args := m.Called(ctx, seniorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OfferSession), args.Error(1)
}

func (m *MockMatchingRepo) SeniorStats(ctx context.Context, seniorID int32) (*repository.SeniorStats, error) {
	args := m.Called(ctx, seniorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SeniorStats), args.Error(1)
}

func (m *MockMatchingRepo) ListAcceptedNeedingFeedback(ctx context.Context, acceptedBefore time.Time) ([]domain.OfferSession, error) {
	args := m.Called(ctx, acceptedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OfferSession), args.Error(1)
}

func (m *MockMatchingRepo) MarkFeedbackSent(ctx context.Context, sessionID int32, at time.Time) error {
	return m.Called(ctx, sessionID, at).Error(0)
}

func (m *MockMatchingRepo) CompleteSession(ctx context.Context, sessionID int32, rating int, content string, at time.Time) error {
	return m.Called(ctx, sessionID, rating, content, at).Error(0)
}

func (m *MockMatchingRepo) LockSession(ctx context.Context, sessionID int32) (repository.SessionTx, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.SessionTx), args.Error(1)
}

type MockSessionTx struct{ mock.Mock }

func (m *MockSessionTx) Session() *domain.OfferSession {
	return m.Called().Get(0).(*domain.OfferSession)
}

func (m *MockSessionTx) SubOffers(ctx context.Context) ([]domain.SubOffer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubOffer), args.Error(1)
}

func (m *MockSessionTx) CommitAcceptance(ctx context.Context, winnerSeniorID int32, at time.Time) error {
	return m.Called(ctx, winnerSeniorID, at).Error(0)
}

func (m *MockSessionTx) CommitCancellation(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSessionTx) Rollback() error {
	return m.Called().Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) PostOffer(ctx context.Context, senior *domain.Senior, junior *domain.Junior, sessionID int32, score float64) (string, string, error) {
	args := m.Called(ctx, senior, junior, sessionID, score)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockNotifier) UpdateToCancelled(ctx context.Context, channelID, messageTS, reason string) error {
	return m.Called(ctx, channelID, messageTS, reason).Error(0)
}

func (m *MockNotifier) UpdateToAccepted(ctx context.Context, channelID, messageTS string) error {
	return m.Called(ctx, channelID, messageTS).Error(0)
}

func (m *MockNotifier) PostWinnerDetail(ctx context.Context, senior *domain.Senior, junior *domain.Junior) error {
	return m.Called(ctx, senior, junior).Error(0)
}

func (m *MockNotifier) PostJuniorConfirmation(ctx context.Context, junior *domain.Junior, senior *domain.Senior) error {
	return m.Called(ctx, junior, senior).Error(0)
}

func (m *MockNotifier) PostFeedbackRequest(ctx context.Context, junior *domain.Junior, sessionID int32) error {
	return m.Called(ctx, junior, sessionID).Error(0)
}

func (m *MockNotifier) ResolveUserID(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendAdminAlert(ctx context.Context, subject, body string) error {
	return m.Called(ctx, subject, body).Error(0)
}
