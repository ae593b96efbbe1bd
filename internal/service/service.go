package service

import (
	"context"
	"time"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/matching"
	"muds-matching-backend/internal/repository"
)

// SessionDetail bundles a session with the people and offers behind it.
type SessionDetail struct {
	Session   domain.OfferSession `json:"session"`
	Junior    domain.Junior       `json:"junior"`
	SubOffers []domain.SubOffer   `json:"sub_offers"`
	Winner    *domain.Senior      `json:"winner,omitempty"`
}

// CreateResult reports what a new offer session solicited.
type CreateResult struct {
	Session domain.OfferSession     `json:"session"`
	Ranked  []matching.RankedMentor `json:"ranked"`
}

type MatchingService interface {
	// CreateOfferSession ranks mentors for the junior, persists the
	// session with one sub-offer per selected mentor, and posts the
	// offers out.
	CreateOfferSession(ctx context.Context, juniorID int32, topN int) (*CreateResult, error)
	// ClaimOffer resolves a senior's acceptance attempt. Exactly one
	// concurrent claimer wins; everyone else learns the outcome, never an
	// error, as long as they held an offer on the session.
	ClaimOffer(ctx context.Context, sessionID, seniorID int32) (*domain.ClaimResult, error)
	GetSessionDetail(ctx context.Context, sessionID int32) (*SessionDetail, error)
	ListByJunior(ctx context.Context, juniorID int32) ([]domain.OfferSession, error)
	ListBySenior(ctx context.Context, seniorID int32) ([]domain.OfferSession, error)
	SeniorStats(ctx context.Context, seniorID int32) (*repository.SeniorStats, error)
	// CancelSession aborts a still-pending session and withdraws its
	// outstanding offers.
	CancelSession(ctx context.Context, sessionID int32) error
	// RecordFeedback closes out an accepted session with the junior's
	// rating.
	RecordFeedback(ctx context.Context, sessionID int32, rating int, content string) error
	// SendFeedbackRequests prompts juniors whose sessions were accepted
	// before the cutoff and have not been asked yet. Returns how many
	// prompts went out.
	SendFeedbackRequests(ctx context.Context, acceptedBefore time.Time) (int, error)
}

// SyncResult reports one roster sync run.
type SyncResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type SyncService interface {
	SyncJuniors(ctx context.Context) (*SyncResult, error)
	SyncSeniors(ctx context.Context) (*SyncResult, error)
}

// AuthService handles staff login via Google OAuth.
type AuthService interface {
	// LoginURL returns the Google consent URL carrying a state nonce the
	// callback must echo back.
	LoginURL() (url, state string)
	// HandleCallback exchanges the authorization code, verifies the
	// account's domain, and returns a signed access token.
	HandleCallback(ctx context.Context, state, expectedState, code string) (token string, email string, err error)
}

// Notifier delivers offer-session messages to participants. Implemented
// against Slack; a disabled deployment gets a no-op.
type Notifier interface {
	// PostOffer sends one mentor their offer message and returns the
	// channel and message timestamp so the message can be edited later.
	PostOffer(ctx context.Context, senior *domain.Senior, junior *domain.Junior, sessionID int32, score float64) (channelID, messageTS string, err error)
	// UpdateToCancelled rewrites a losing or withdrawn offer message in
	// place.
	UpdateToCancelled(ctx context.Context, channelID, messageTS string, reason string) error
	// UpdateToAccepted rewrites the winner's offer message in place.
	UpdateToAccepted(ctx context.Context, channelID, messageTS string) error
	// PostWinnerDetail sends the winner the junior's full consultation
	// request.
	PostWinnerDetail(ctx context.Context, senior *domain.Senior, junior *domain.Junior) error
	// PostJuniorConfirmation tells the junior who accepted.
	PostJuniorConfirmation(ctx context.Context, junior *domain.Junior, senior *domain.Senior) error
	// PostFeedbackRequest asks the junior how the session went.
	PostFeedbackRequest(ctx context.Context, junior *domain.Junior, sessionID int32) error
	// ResolveUserID looks up a workspace user ID by email. Empty result
	// with nil error means not found.
	ResolveUserID(ctx context.Context, email string) (string, error)
}

// AdminMailer sends operational alerts to the program admins.
type AdminMailer interface {
	SendAdminAlert(ctx context.Context, subject, body string) error
}
