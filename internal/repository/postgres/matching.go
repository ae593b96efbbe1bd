package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/repository"
)

const sessionColumns = `id, junior_id, status, accepted_by, created_at, accepted_at,
	feedback_sent_at, completed_at, feedback_rating, feedback_content`

const subOfferColumns = `id, session_id, senior_id, score, slack_channel_id,
	slack_message_ts, status, created_at`

type matchingRepository struct {
	db *sql.DB
}

func NewMatchingRepository(db *sql.DB) repository.MatchingRepository {
	return &matchingRepository{db: db}
}

func (r *matchingRepository) CreateSession(ctx context.Context, session *domain.OfferSession, offers []domain.SubOffer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO offer_sessions (junior_id, status, created_at) VALUES ($1, $2, $3) RETURNING id`,
		session.JuniorID, session.Status, now,
	).Scan(&session.ID)
	if err != nil {
		return err
	}
	session.CreatedAt = now

	for i := range offers {
		offers[i].SessionID = session.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO sub_offers (session_id, senior_id, score, status, created_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			offers[i].SessionID, offers[i].SeniorID, offers[i].Score, offers[i].Status, now,
		).Scan(&offers[i].ID)
		if err != nil {
			return err
		}
		offers[i].CreatedAt = now
	}

	return tx.Commit()
}

func scanSession(row interface{ Scan(...any) error }) (*domain.OfferSession, error) {
	s := &domain.OfferSession{}
	err := row.Scan(
		&s.ID, &s.JuniorID, &s.Status, &s.AcceptedBy, &s.CreatedAt, &s.AcceptedAt,
		&s.FeedbackSentAt, &s.CompletedAt, &s.FeedbackRating, &s.FeedbackContent,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanSubOffer(row interface{ Scan(...any) error }) (*domain.SubOffer, error) {
	o := &domain.SubOffer{}
	err := row.Scan(
		&o.ID, &o.SessionID, &o.SeniorID, &o.Score, &o.SlackChannelID,
		&o.MessageTS, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *matchingRepository) GetSession(ctx context.Context, id int32) (*domain.OfferSession, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM offer_sessions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	return s, err
}

func (r *matchingRepository) GetSubOffers(ctx context.Context, sessionID int32) ([]domain.SubOffer, error) {
	return querySubOffers(ctx, r.db, sessionID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func querySubOffers(ctx context.Context, q querier, sessionID int32) ([]domain.SubOffer, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+subOfferColumns+` FROM sub_offers WHERE session_id = $1 ORDER BY score DESC, id`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []domain.SubOffer
	for rows.Next() {
		o, err := scanSubOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func (r *matchingRepository) GetSubOffer(ctx context.Context, sessionID, seniorID int32) (*domain.SubOffer, error) {
	o, err := scanSubOffer(r.db.QueryRowContext(ctx,
		`SELECT `+subOfferColumns+` FROM sub_offers WHERE session_id = $1 AND senior_id = $2`,
		sessionID, seniorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrForbidden
	}
	return o, err
}

func (r *matchingRepository) SetSubOfferMessage(ctx context.Context, subOfferID int32, channelID, messageTS string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sub_offers SET slack_channel_id = $1, slack_message_ts = $2 WHERE id = $3`,
		channelID, messageTS, subOfferID)
	return err
}

func (r *matchingRepository) ListByJunior(ctx context.Context, juniorID int32) ([]domain.OfferSession, error) {
	return r.listSessions(ctx,
		`SELECT `+sessionColumns+` FROM offer_sessions WHERE junior_id = $1 ORDER BY created_at DESC`,
		juniorID)
}

func (r *matchingRepository) ListBySenior(ctx context.Context, seniorID int32) ([]domain.OfferSession, error) {
	return r.listSessions(ctx,
		`SELECT `+sessionColumns+` FROM offer_sessions s
		 WHERE EXISTS (SELECT 1 FROM sub_offers o WHERE o.session_id = s.id AND o.senior_id = $1)
		 ORDER BY s.created_at DESC`,
		seniorID)
}

func (r *matchingRepository) listSessions(ctx context.Context, query string, args ...any) ([]domain.OfferSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.OfferSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *matchingRepository) SeniorStats(ctx context.Context, seniorID int32) (*repository.SeniorStats, error) {
	stats := &repository.SeniorStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE s.accepted_by = $1 AND s.status = 'accepted'),
		        count(*) FILTER (WHERE s.accepted_by = $1 AND s.status = 'completed'),
		        count(*) FILTER (WHERE o.status = 'cancelled')
		 FROM sub_offers o
		 JOIN offer_sessions s ON s.id = o.session_id
		 WHERE o.senior_id = $1`,
		seniorID,
	).Scan(&stats.Total, &stats.Accepted, &stats.Completed, &stats.Cancelled)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *matchingRepository) ListAcceptedNeedingFeedback(ctx context.Context, acceptedBefore time.Time) ([]domain.OfferSession, error) {
	return r.listSessions(ctx,
		`SELECT `+sessionColumns+` FROM offer_sessions
		 WHERE status = 'accepted' AND feedback_sent_at IS NULL AND accepted_at < $1
		 ORDER BY accepted_at`,
		acceptedBefore)
}

func (r *matchingRepository) MarkFeedbackSent(ctx context.Context, sessionID int32, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE offer_sessions SET feedback_sent_at = $1 WHERE id = $2`, at, sessionID)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrSessionNotFound)
}

func (r *matchingRepository) CompleteSession(ctx context.Context, sessionID int32, rating int, content string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE offer_sessions
		 SET status = 'completed', feedback_rating = $1, feedback_content = $2, completed_at = $3
		 WHERE id = $4 AND status = 'accepted'`,
		rating, content, at, sessionID)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrSessionNotPending)
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

// LockSession begins a transaction and takes a FOR UPDATE lock on the
// session row. The claim decision that follows is made against the locked
// read, so two concurrent claimers serialize here.
func (r *matchingRepository) LockSession(ctx context.Context, sessionID int32) (repository.SessionTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	session, err := scanSession(tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM offer_sessions WHERE id = $1 FOR UPDATE`, sessionID))
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	return &sessionTx{tx: tx, session: session}, nil
}

type sessionTx struct {
	tx      *sql.Tx
	session *domain.OfferSession
}

func (t *sessionTx) Session() *domain.OfferSession { return t.session }

func (t *sessionTx) SubOffers(ctx context.Context) ([]domain.SubOffer, error) {
	return querySubOffers(ctx, t.tx, t.session.ID)
}

func (t *sessionTx) CommitAcceptance(ctx context.Context, winnerSeniorID int32, at time.Time) error {
	steps := []struct {
		query string
		args  []any
	}{
		{`UPDATE offer_sessions SET status = 'accepted', accepted_by = $1, accepted_at = $2 WHERE id = $3`,
			[]any{winnerSeniorID, at, t.session.ID}},
		{`UPDATE sub_offers SET status = 'accepted' WHERE session_id = $1 AND senior_id = $2`,
			[]any{t.session.ID, winnerSeniorID}},
		{`UPDATE sub_offers SET status = 'cancelled' WHERE session_id = $1 AND senior_id <> $2 AND status = 'sent'`,
			[]any{t.session.ID, winnerSeniorID}},
		{`UPDATE juniors SET is_matched = true, updated_at = $1 WHERE id = $2`,
			[]any{at, t.session.JuniorID}},
		{`UPDATE seniors SET accepted_count = accepted_count + 1, updated_at = $1 WHERE id = $2`,
			[]any{at, winnerSeniorID}},
	}
	for _, step := range steps {
		if _, err := t.tx.ExecContext(ctx, step.query, step.args...); err != nil {
			t.tx.Rollback()
			return fmt.Errorf("commit acceptance: %w", err)
		}
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit acceptance: %w", err)
	}
	t.session.Status = domain.SessionStatusAccepted
	t.session.AcceptedBy = &winnerSeniorID
	t.session.AcceptedAt = &at
	return nil
}

func (t *sessionTx) CommitCancellation(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE offer_sessions SET status = 'cancelled' WHERE id = $1`, t.session.ID); err != nil {
		t.tx.Rollback()
		return fmt.Errorf("commit cancellation: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE sub_offers SET status = 'cancelled' WHERE session_id = $1 AND status = 'sent'`,
		t.session.ID); err != nil {
		t.tx.Rollback()
		return fmt.Errorf("commit cancellation: %w", err)
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit cancellation: %w", err)
	}
	t.session.Status = domain.SessionStatusCancelled
	return nil
}

func (t *sessionTx) Rollback() error {
	return t.tx.Rollback()
}
