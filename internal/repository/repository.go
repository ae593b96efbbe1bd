package repository

import (
	"context"
	"time"

	"muds-matching-backend/internal/domain"
)

type JuniorRepository interface {
	Create(ctx context.Context, junior *domain.Junior) error
	GetByID(ctx context.Context, id int32) (*domain.Junior, error)
	GetByStudentID(ctx context.Context, studentID string) (*domain.Junior, error)
	GetByEmail(ctx context.Context, email string) (*domain.Junior, error)
	List(ctx context.Context, isMatched *bool, page, pageSize int32) ([]domain.Junior, int32, error)
	Update(ctx context.Context, junior *domain.Junior) error
}

type SeniorRepository interface {
	Create(ctx context.Context, senior *domain.Senior) error
	GetByID(ctx context.Context, id int32) (*domain.Senior, error)
	GetByStudentID(ctx context.Context, studentID string) (*domain.Senior, error)
	GetBySlackUserID(ctx context.Context, slackUserID string) (*domain.Senior, error)
	// ListEligible returns active seniors whose comma-joined category field
	// contains the given category (substring match, original roster
	// semantics).
	ListEligible(ctx context.Context, category string) ([]domain.Senior, error)
	Update(ctx context.Context, senior *domain.Senior) error
	GetAcceptedCount(ctx context.Context, seniorID int32) (int, error)
}

// SeniorStats summarizes one senior's matching history.
type SeniorStats struct {
	Total     int32 `json:"total"`
	Accepted  int32 `json:"accepted"`
	Completed int32 `json:"completed"`
	Cancelled int32 `json:"cancelled"`
}

type MatchingRepository interface {
	// CreateSession persists the session and all its sub-offers in one
	// transaction; either everything lands or nothing does.
	CreateSession(ctx context.Context, session *domain.OfferSession, offers []domain.SubOffer) error
	GetSession(ctx context.Context, id int32) (*domain.OfferSession, error)
	GetSubOffers(ctx context.Context, sessionID int32) ([]domain.SubOffer, error)
	GetSubOffer(ctx context.Context, sessionID, seniorID int32) (*domain.SubOffer, error)
	SetSubOfferMessage(ctx context.Context, subOfferID int32, channelID, messageTS string) error
	ListByJunior(ctx context.Context, juniorID int32) ([]domain.OfferSession, error)
	ListBySenior(ctx context.Context, seniorID int32) ([]domain.OfferSession, error)
	SeniorStats(ctx context.Context, seniorID int32) (*SeniorStats, error)

	// Feedback flow.
	ListAcceptedNeedingFeedback(ctx context.Context, acceptedBefore time.Time) ([]domain.OfferSession, error)
	MarkFeedbackSent(ctx context.Context, sessionID int32, at time.Time) error
	CompleteSession(ctx context.Context, sessionID int32, rating int, content string, at time.Time) error

	// LockSession opens a transaction holding an exclusive lock on the
	// session row. Nothing else can read-for-update or mutate that
	// session's sub-offers until the returned SessionTx commits or rolls
	// back. Returns domain.ErrSessionNotFound if the id does not exist.
	LockSession(ctx context.Context, sessionID int32) (SessionTx, error)
}

// SessionTx is the critical section of the exclusive-acceptance protocol.
// The session status it exposes was read under the lock, so a pending
// status cannot change out from under the holder. Exactly one of the
// Commit* methods or Rollback must be called.
type SessionTx interface {
	// Session returns the session row as read under the lock.
	Session() *domain.OfferSession
	// SubOffers returns the session's sub-offers, read inside the
	// transaction.
	SubOffers(ctx context.Context) ([]domain.SubOffer, error)
	// CommitAcceptance atomically marks the session accepted, the winner's
	// sub-offer accepted, every sibling sub-offer cancelled, the junior
	// matched, and increments the winner's accepted count, then commits.
	CommitAcceptance(ctx context.Context, winnerSeniorID int32, at time.Time) error
	// CommitCancellation atomically cancels the session and all its
	// still-sent sub-offers, then commits (admin abort of a pending
	// session that had zero acceptances).
	CommitCancellation(ctx context.Context) error
	Rollback() error
}
