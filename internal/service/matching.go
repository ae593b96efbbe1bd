package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/logger"
	"muds-matching-backend/internal/matching"
	"muds-matching-backend/internal/repository"
)

type matchingService struct {
	juniorRepo   repository.JuniorRepository
	seniorRepo   repository.SeniorRepository
	matchingRepo repository.MatchingRepository
	ranker       *matching.Ranker
	notifier     Notifier
	mailer       AdminMailer
}

func NewMatchingService(
	juniorRepo repository.JuniorRepository,
	seniorRepo repository.SeniorRepository,
	matchingRepo repository.MatchingRepository,
	ranker *matching.Ranker,
	notifier Notifier,
	mailer AdminMailer,
) MatchingService {
	return &matchingService{
		juniorRepo:   juniorRepo,
		seniorRepo:   seniorRepo,
		matchingRepo: matchingRepo,
		ranker:       ranker,
		notifier:     notifier,
		mailer:       mailer,
	}
}

func (s *matchingService) CreateOfferSession(ctx context.Context, juniorID int32, topN int) (*CreateResult, error) {
	logger.EnterMethod("CreateOfferSession", "junior_id", juniorID)

	junior, err := s.juniorRepo.GetByID(ctx, juniorID)
	if err != nil {
		return nil, err
	}
	if junior.IsMatched {
		return nil, domain.ErrAlreadyMatched
	}

	seniors, err := s.seniorRepo.ListEligible(ctx, junior.ConsultationCategory)
	if err != nil {
		return nil, err
	}

	pool := make([]matching.Candidate, len(seniors))
	for i, sr := range seniors {
		pool[i] = matching.Candidate{Senior: sr, AcceptedCount: sr.AcceptedCount}
	}

	ranked, err := s.ranker.Rank(junior, pool, topN)
	if err != nil {
		return nil, err
	}

	session := &domain.OfferSession{
		JuniorID: junior.ID,
		Status:   domain.SessionStatusPending,
	}
	offers := make([]domain.SubOffer, len(ranked))
	for i, rm := range ranked {
		offers[i] = domain.SubOffer{
			SeniorID: rm.Senior.ID,
			Score:    rm.Score,
			Status:   domain.SubOfferStatusSent,
		}
	}
	if err := s.matchingRepo.CreateSession(ctx, session, offers); err != nil {
		return nil, err
	}

	// Delivery is best effort: the session stands even if a message
	// fails, and the handle comes back empty for undeliverable mentors.
	for i, rm := range ranked {
		channelID, messageTS, err := s.notifier.PostOffer(ctx, &ranked[i].Senior, junior, session.ID, rm.Score)
		if err != nil {
			logger.ErrorContext(ctx, "failed to deliver offer",
				"session_id", session.ID, "senior_id", rm.Senior.ID, "error", err)
			continue
		}
		if err := s.matchingRepo.SetSubOfferMessage(ctx, offers[i].ID, channelID, messageTS); err != nil {
			logger.ErrorContext(ctx, "failed to record offer message handle",
				"sub_offer_id", offers[i].ID, "error", err)
		}
	}

	logger.ExitMethod("CreateOfferSession", "session_id", session.ID, "offers", len(offers))
	return &CreateResult{Session: *session, Ranked: ranked}, nil
}

// ClaimOffer is the exclusive-acceptance resolver. The decision is made
// entirely under the session row lock: the first claimer to get the lock
// on a pending session wins, everyone after it sees the already-decided
// state. Losers get a ClaimResult, not an error.
func (s *matchingService) ClaimOffer(ctx context.Context, sessionID, seniorID int32) (*domain.ClaimResult, error) {
	logger.EnterMethod("ClaimOffer", "session_id", sessionID, "senior_id", seniorID)

	tx, err := s.matchingRepo.LockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session := tx.Session()
	switch session.Status {
	case domain.SessionStatusPending:
		// fall through to the claim path
	case domain.SessionStatusCancelled:
		tx.Rollback()
		return &domain.ClaimResult{Outcome: domain.ClaimOutcomeSessionCancelled, Session: session}, nil
	default:
		tx.Rollback()
		return &domain.ClaimResult{Outcome: domain.ClaimOutcomeAlreadyAccepted, Session: session}, nil
	}

	offers, err := tx.SubOffers(ctx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var winner *domain.SubOffer
	cancelled := make([]domain.SubOffer, 0, len(offers))
	for i := range offers {
		if offers[i].SeniorID == seniorID {
			winner = &offers[i]
		} else if offers[i].Status == domain.SubOfferStatusSent {
			cancelled = append(cancelled, offers[i])
		}
	}
	if winner == nil {
		tx.Rollback()
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if err := tx.CommitAcceptance(ctx, seniorID, now); err != nil {
		return nil, err
	}

	winner.Status = domain.SubOfferStatusAccepted
	for i := range cancelled {
		cancelled[i].Status = domain.SubOfferStatusCancelled
	}
	result := &domain.ClaimResult{
		Outcome:   domain.ClaimOutcomeWon,
		Session:   session,
		Winner:    winner,
		Cancelled: cancelled,
	}

	s.notifyAcceptance(ctx, result)

	logger.ExitMethod("ClaimOffer", "session_id", sessionID, "outcome", result.Outcome)
	return result, nil
}

// notifyAcceptance drives the post-commit side effects of a won claim.
// All of them are best effort; the acceptance is already durable.
func (s *matchingService) notifyAcceptance(ctx context.Context, result *domain.ClaimResult) {
	junior, err := s.juniorRepo.GetByID(ctx, result.Session.JuniorID)
	if err != nil {
		logger.ErrorContext(ctx, "acceptance notify: junior lookup failed",
			"session_id", result.Session.ID, "error", err)
		return
	}
	winner, err := s.seniorRepo.GetByID(ctx, result.Winner.SeniorID)
	if err != nil {
		logger.ErrorContext(ctx, "acceptance notify: senior lookup failed",
			"session_id", result.Session.ID, "error", err)
		return
	}

	if result.Winner.MessageTS != "" {
		if err := s.notifier.UpdateToAccepted(ctx, result.Winner.SlackChannelID, result.Winner.MessageTS); err != nil {
			logger.ErrorContext(ctx, "failed to update winner message", "error", err)
		}
	}
	for _, o := range result.Cancelled {
		if o.MessageTS == "" {
			continue
		}
		reason := fmt.Sprintf("%s さんが対応することになりました", winner.FullName())
		if err := s.notifier.UpdateToCancelled(ctx, o.SlackChannelID, o.MessageTS, reason); err != nil {
			logger.ErrorContext(ctx, "failed to withdraw sibling offer message",
				"sub_offer_id", o.ID, "error", err)
		}
	}
	if err := s.notifier.PostWinnerDetail(ctx, winner, junior); err != nil {
		logger.ErrorContext(ctx, "failed to send winner detail", "error", err)
	}
	if err := s.notifier.PostJuniorConfirmation(ctx, junior, winner); err != nil {
		logger.ErrorContext(ctx, "failed to send junior confirmation", "error", err)
	}

	_ = s.mailer.SendAdminAlert(ctx, "マッチング成立",
		fmt.Sprintf("session %d: %s → %s", result.Session.ID, junior.FullName(), winner.FullName()))
}

func (s *matchingService) GetSessionDetail(ctx context.Context, sessionID int32) (*SessionDetail, error) {
	session, err := s.matchingRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	junior, err := s.juniorRepo.GetByID(ctx, session.JuniorID)
	if err != nil {
		return nil, err
	}
	offers, err := s.matchingRepo.GetSubOffers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	detail := &SessionDetail{Session: *session, Junior: *junior, SubOffers: offers}
	if session.AcceptedBy != nil {
		winner, err := s.seniorRepo.GetByID(ctx, *session.AcceptedBy)
		if err != nil && !errors.Is(err, domain.ErrMentorNotFound) {
			return nil, err
		}
		detail.Winner = winner
	}
	return detail, nil
}

func (s *matchingService) ListByJunior(ctx context.Context, juniorID int32) ([]domain.OfferSession, error) {
	if _, err := s.juniorRepo.GetByID(ctx, juniorID); err != nil {
		return nil, err
	}
	return s.matchingRepo.ListByJunior(ctx, juniorID)
}

func (s *matchingService) ListBySenior(ctx context.Context, seniorID int32) ([]domain.OfferSession, error) {
	if _, err := s.seniorRepo.GetByID(ctx, seniorID); err != nil {
		return nil, err
	}
	return s.matchingRepo.ListBySenior(ctx, seniorID)
}

func (s *matchingService) SeniorStats(ctx context.Context, seniorID int32) (*repository.SeniorStats, error) {
	if _, err := s.seniorRepo.GetByID(ctx, seniorID); err != nil {
		return nil, err
	}
	return s.matchingRepo.SeniorStats(ctx, seniorID)
}

func (s *matchingService) CancelSession(ctx context.Context, sessionID int32) error {
	logger.EnterMethod("CancelSession", "session_id", sessionID)

	tx, err := s.matchingRepo.LockSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if tx.Session().Status != domain.SessionStatusPending {
		tx.Rollback()
		return domain.ErrSessionNotPending
	}

	offers, err := tx.SubOffers(ctx)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.CommitCancellation(ctx); err != nil {
		return err
	}

	for _, o := range offers {
		if o.Status != domain.SubOfferStatusSent || o.MessageTS == "" {
			continue
		}
		if err := s.notifier.UpdateToCancelled(ctx, o.SlackChannelID, o.MessageTS, "この相談は取り下げられました"); err != nil {
			logger.ErrorContext(ctx, "failed to withdraw offer message",
				"sub_offer_id", o.ID, "error", err)
		}
	}

	logger.ExitMethod("CancelSession", "session_id", sessionID)
	return nil
}

func (s *matchingService) RecordFeedback(ctx context.Context, sessionID int32, rating int, content string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	session, err := s.matchingRepo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Status.CanTransitionTo(domain.SessionStatusCompleted) {
		return domain.ErrSessionNotPending
	}
	return s.matchingRepo.CompleteSession(ctx, sessionID, rating, content, time.Now())
}

func (s *matchingService) SendFeedbackRequests(ctx context.Context, acceptedBefore time.Time) (int, error) {
	sessions, err := s.matchingRepo.ListAcceptedNeedingFeedback(ctx, acceptedBefore)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, session := range sessions {
		junior, err := s.juniorRepo.GetByID(ctx, session.JuniorID)
		if err != nil {
			logger.ErrorContext(ctx, "feedback request: junior lookup failed",
				"session_id", session.ID, "error", err)
			continue
		}
		if err := s.notifier.PostFeedbackRequest(ctx, junior, session.ID); err != nil {
			logger.ErrorContext(ctx, "feedback request delivery failed",
				"session_id", session.ID, "error", err)
			continue
		}
		// Marked only after a successful send, so a failed session is
		// retried on the next run.
		if err := s.matchingRepo.MarkFeedbackSent(ctx, session.ID, time.Now()); err != nil {
			logger.ErrorContext(ctx, "failed to mark feedback sent",
				"session_id", session.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
