package domain

import "errors"

// Input errors surfaced to callers verbatim. None of these are retried.
var (
	ErrSeekerNotFound    = errors.New("junior not found")
	ErrMentorNotFound    = errors.New("senior not found")
	ErrSessionNotFound   = errors.New("offer session not found")
	ErrAlreadyMatched    = errors.New("junior already matched")
	ErrNoEligibleMentors = errors.New("no eligible seniors for category")
	ErrForbidden         = errors.New("senior has no offer in this session")
	ErrSessionNotPending = errors.New("offer session is not pending")
)
