package domain

import "time"

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusAccepted  SessionStatus = "accepted"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// IsValid reports whether s is one of the known session statuses.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusPending, SessionStatusAccepted, SessionStatusCompleted, SessionStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed out of s.
// accepted → completed is the one post-acceptance transition (feedback flow).
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// CanTransitionTo reports whether the session state machine permits s → next.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionStatusPending:
		return next == SessionStatusAccepted || next == SessionStatusCancelled
	case SessionStatusAccepted:
		return next == SessionStatusCompleted
	default:
		return false
	}
}

type SubOfferStatus string

const (
	SubOfferStatusSent      SubOfferStatus = "sent"
	SubOfferStatusAccepted  SubOfferStatus = "accepted"
	SubOfferStatusCancelled SubOfferStatus = "cancelled"
)

// IsValid reports whether s is one of the known sub-offer statuses.
func (s SubOfferStatus) IsValid() bool {
	switch s {
	case SubOfferStatusSent, SubOfferStatusAccepted, SubOfferStatusCancelled:
		return true
	default:
		return false
	}
}

// OfferSession is one junior's outstanding multi-mentor offer. At most one
// of its sub-offers ever reaches accepted; the rest are cancelled in the
// same transaction.
type OfferSession struct {
	ID              int32         `json:"id"`
	JuniorID        int32         `json:"junior_id"`
	Status          SessionStatus `json:"status"`
	AcceptedBy      *int32        `json:"accepted_by,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	AcceptedAt      *time.Time    `json:"accepted_at,omitempty"`
	FeedbackSentAt  *time.Time    `json:"feedback_sent_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	FeedbackRating  *int          `json:"feedback_rating,omitempty"`
	FeedbackContent string        `json:"feedback_content,omitempty"`
}

// SubOffer is one senior's slot within an offer session, carrying the
// composite score it was ranked with and the opaque handle of the chat
// message delivered for it. (SessionID, SeniorID) is unique.
type SubOffer struct {
	ID             int32          `json:"id"`
	SessionID      int32          `json:"session_id"`
	SeniorID       int32          `json:"senior_id"`
	Score          float64        `json:"score"`
	SlackChannelID string         `json:"slack_channel_id,omitempty"`
	MessageTS      string         `json:"message_ts,omitempty"`
	Status         SubOfferStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ClaimOutcome distinguishes the steady-state results of a claim race.
// These are successful responses, not errors: every loser sees
// AlreadyAccepted, never a failure.
type ClaimOutcome string

const (
	ClaimOutcomeWon              ClaimOutcome = "won"
	ClaimOutcomeAlreadyAccepted  ClaimOutcome = "already_accepted"
	ClaimOutcomeSessionCancelled ClaimOutcome = "session_cancelled"
)

// ClaimResult is what the acceptance resolver hands back to the caller so
// it can drive the post-commit notification side effects.
type ClaimResult struct {
	Outcome   ClaimOutcome  `json:"outcome"`
	Session   *OfferSession `json:"session,omitempty"`
	Winner    *SubOffer     `json:"winner,omitempty"`
	Cancelled []SubOffer    `json:"cancelled,omitempty"`
}
