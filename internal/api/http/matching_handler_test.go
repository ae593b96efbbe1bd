package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/repository"
	"muds-matching-backend/internal/security"
	"muds-matching-backend/internal/service"
)

type MockMatchingService struct{ mock.Mock }

func (m *MockMatchingService) CreateOfferSession(ctx context.Context, juniorID int32, topN int) (*service.CreateResult, error) {
	args := m.Called(ctx, juniorID, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreateResult), args.Error(1)
}

func (m *MockMatchingService) ClaimOffer(ctx context.Context, sessionID, seniorID int32) (*domain.ClaimResult, error) {
	args := m.Called(ctx, sessionID, seniorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimResult), args.Error(1)
}

func (m *MockMatchingService) GetSessionDetail(ctx context.Context, sessionID int32) (*service.SessionDetail, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionDetail), args.Error(1)
}

func (m *MockMatchingService) ListByJunior(ctx context.Context, juniorID int32) ([]domain.OfferSession, error) {
	args := m.Called(ctx, juniorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OfferSession), args.Error(1)
}

func (m *MockMatchingService) ListBySenior(ctx context.Context, seniorID int32) ([]domain.OfferSession, error) {
	args := m.Called(ctx, seniorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OfferSession), args.Error(1)
}

func (m *MockMatchingService) SeniorStats(ctx context.Context, seniorID int32) (*repository.SeniorStats, error) {
	args := m.Called(ctx, seniorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SeniorStats), args.Error(1)
}

func (m *MockMatchingService) CancelSession(ctx context.Context, sessionID int32) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockMatchingService) RecordFeedback(ctx context.Context, sessionID int32, rating int, content string) error {
	return m.Called(ctx, sessionID, rating, content).Error(0)
}

func (m *MockMatchingService) SendFeedbackRequests(ctx context.Context, acceptedBefore time.Time) (int, error) {
	args := m.Called(ctx, acceptedBefore)
	return args.Int(0), args.Error(1)
}

type MockSyncService struct{ mock.Mock }

func (m *MockSyncService) SyncJuniors(ctx context.Context) (*service.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncResult), args.Error(1)
}

func (m *MockSyncService) SyncSeniors(ctx context.Context) (*service.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncResult), args.Error(1)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) LoginURL() (string, string) {
	args := m.Called()
	return args.String(0), args.String(1)
}

func (m *MockAuthService) HandleCallback(ctx context.Context, state, expectedState, code string) (string, string, error) {
	args := m.Called(ctx, state, expectedState, code)
	return args.String(0), args.String(1), args.Error(2)
}

const testAdminToken = "test-admin-token"

func newTestRouter(t *testing.T, matchingSvc service.MatchingService) http.Handler {
	t.Helper()
	return NewRouter(RouterDeps{
		MatchingSvc:        matchingSvc,
		SyncSvc:            new(MockSyncService),
		AuthSvc:            new(MockAuthService),
		SeniorRepo:         nil,
		TokenManager:       security.NewTokenManager("0123456789abcdef0123456789abcdef", 60),
		AdminToken:         testAdminToken,
		SlackSigningSecret: "signing-secret",
	})
}

func adminRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Admin-Token", testAdminToken)
	return req
}

func TestMatchingHandler_Accept(t *testing.T) {
	t.Run("Won", func(t *testing.T) {
		svc := new(MockMatchingService)
		winner := &domain.SubOffer{ID: 1, SessionID: 100, SeniorID: 10, Status: domain.SubOfferStatusAccepted}
		svc.On("ClaimOffer", mock.Anything, int32(100), int32(10)).
			Return(&domain.ClaimResult{Outcome: domain.ClaimOutcomeWon, Winner: winner}, nil)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/100/accept", `{"senior_id":10}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var result domain.ClaimResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, domain.ClaimOutcomeWon, result.Outcome)
	})

	t.Run("LoserGets200NotError", func(t *testing.T) {
		svc := new(MockMatchingService)
		svc.On("ClaimOffer", mock.Anything, int32(100), int32(11)).
			Return(&domain.ClaimResult{Outcome: domain.ClaimOutcomeAlreadyAccepted}, nil)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/100/accept", `{"senior_id":11}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var result domain.ClaimResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, domain.ClaimOutcomeAlreadyAccepted, result.Outcome)
	})

	t.Run("Forbidden", func(t *testing.T) {
		svc := new(MockMatchingService)
		svc.On("ClaimOffer", mock.Anything, int32(100), int32(99)).
			Return(nil, domain.ErrForbidden)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/100/accept", `{"senior_id":99}`))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("MissingSeniorID", func(t *testing.T) {
		svc := new(MockMatchingService)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/100/accept", `{}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "ClaimOffer", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMatchingHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockMatchingService)
		svc.On("CreateOfferSession", mock.Anything, int32(1), 0).
			Return(&service.CreateResult{
				Session: domain.OfferSession{ID: 100, JuniorID: 1, Status: domain.SessionStatusPending},
			}, nil)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/create", `{"junior_id":1}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("AlreadyMatchedConflicts", func(t *testing.T) {
		svc := new(MockMatchingService)
		svc.On("CreateOfferSession", mock.Anything, int32(1), 0).
			Return(nil, domain.ErrAlreadyMatched)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/create", `{"junior_id":1}`))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("NoEligibleMentors", func(t *testing.T) {
		svc := new(MockMatchingService)
		svc.On("CreateOfferSession", mock.Anything, int32(1), 0).
			Return(nil, domain.ErrNoEligibleMentors)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/create", `{"junior_id":1}`))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("RequiresAdminToken", func(t *testing.T) {
		svc := new(MockMatchingService)

		req := httptest.NewRequest("POST", "/api/v1/matchings/create", strings.NewReader(`{"junior_id":1}`))
		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMatchingHandler_Feedback(t *testing.T) {
	t.Run("RatingOutOfRange", func(t *testing.T) {
		svc := new(MockMatchingService)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/100/feedback", `{"rating":6}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "RecordFeedback", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		svc := new(MockMatchingService)
		svc.On("RecordFeedback", mock.Anything, int32(100), 5, "最高でした").Return(nil)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, adminRequest("POST", "/api/v1/matchings/100/feedback", `{"rating":5,"content":"最高でした"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, new(MockMatchingService)).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
