package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/repository"
)

const seniorColumns = `id, timestamp, email, student_id, last_name, first_name, grade,
	internship_experience, hackathon_experience, job_search_completed,
	paper_presentation_exp, interest_areas, consultation_categories,
	research_phases, availability_status, availability_start_date,
	availability_end_date, consent_flag, is_active, slack_user_id,
	is_graduate, accepted_count, created_at, updated_at`

type seniorRepository struct {
	db *sql.DB
}

func NewSeniorRepository(db *sql.DB) repository.SeniorRepository {
	return &seniorRepository{db: db}
}

func (r *seniorRepository) Create(ctx context.Context, s *domain.Senior) error {
	query := `INSERT INTO seniors (timestamp, email, student_id, last_name, first_name, grade,
	            internship_experience, hackathon_experience, job_search_completed,
	            paper_presentation_exp, interest_areas, consultation_categories,
	            research_phases, availability_status, availability_start_date,
	            availability_end_date, consent_flag, is_active, slack_user_id,
	            is_graduate, accepted_count, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	          RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		s.Timestamp, s.Email, s.StudentID, s.LastName, s.FirstName, s.Grade,
		s.InternshipExperience, s.HackathonExperience, s.JobSearchCompleted,
		s.PaperPresentationExp, s.InterestAreas, s.ConsultationCategories,
		s.ResearchPhases, s.AvailabilityStatus, s.AvailabilityStartDate,
		s.AvailabilityEndDate, s.ConsentFlag, s.IsActive, s.SlackUserID,
		s.IsGraduate, s.AcceptedCount, now, now,
	).Scan(&s.ID)
}

func scanSenior(row interface{ Scan(...any) error }) (*domain.Senior, error) {
	s := &domain.Senior{}
	err := row.Scan(
		&s.ID, &s.Timestamp, &s.Email, &s.StudentID, &s.LastName, &s.FirstName, &s.Grade,
		&s.InternshipExperience, &s.HackathonExperience, &s.JobSearchCompleted,
		&s.PaperPresentationExp, &s.InterestAreas, &s.ConsultationCategories,
		&s.ResearchPhases, &s.AvailabilityStatus, &s.AvailabilityStartDate,
		&s.AvailabilityEndDate, &s.ConsentFlag, &s.IsActive, &s.SlackUserID,
		&s.IsGraduate, &s.AcceptedCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *seniorRepository) GetByID(ctx context.Context, id int32) (*domain.Senior, error) {
	s, err := scanSenior(r.db.QueryRowContext(ctx,
		`SELECT `+seniorColumns+` FROM seniors WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMentorNotFound
	}
	return s, err
}

func (r *seniorRepository) GetByStudentID(ctx context.Context, studentID string) (*domain.Senior, error) {
	s, err := scanSenior(r.db.QueryRowContext(ctx,
		`SELECT `+seniorColumns+` FROM seniors WHERE student_id = $1`, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMentorNotFound
	}
	return s, err
}

func (r *seniorRepository) GetBySlackUserID(ctx context.Context, slackUserID string) (*domain.Senior, error) {
	s, err := scanSenior(r.db.QueryRowContext(ctx,
		`SELECT `+seniorColumns+` FROM seniors WHERE slack_user_id = $1`, slackUserID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMentorNotFound
	}
	return s, err
}

// ListEligible pre-filters in SQL with the same substring semantics the
// ranker re-applies: the category field is a comma-joined multi-select.
func (r *seniorRepository) ListEligible(ctx context.Context, category string) ([]domain.Senior, error) {
	query := `SELECT ` + seniorColumns + ` FROM seniors
	          WHERE is_active = true AND consultation_categories LIKE '%' || $1 || '%'
	          ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seniors []domain.Senior
	for rows.Next() {
		s, err := scanSenior(rows)
		if err != nil {
			return nil, err
		}
		seniors = append(seniors, *s)
	}
	return seniors, rows.Err()
}

func (r *seniorRepository) Update(ctx context.Context, s *domain.Senior) error {
	query := `UPDATE seniors SET timestamp=$1, email=$2, last_name=$3, first_name=$4, grade=$5,
	            internship_experience=$6, hackathon_experience=$7, job_search_completed=$8,
	            paper_presentation_exp=$9, interest_areas=$10, consultation_categories=$11,
	            research_phases=$12, availability_status=$13, availability_start_date=$14,
	            availability_end_date=$15, consent_flag=$16, is_active=$17, slack_user_id=$18,
	            is_graduate=$19, updated_at=$20
	          WHERE id=$21`
	_, err := r.db.ExecContext(ctx, query,
		s.Timestamp, s.Email, s.LastName, s.FirstName, s.Grade,
		s.InternshipExperience, s.HackathonExperience, s.JobSearchCompleted,
		s.PaperPresentationExp, s.InterestAreas, s.ConsultationCategories,
		s.ResearchPhases, s.AvailabilityStatus, s.AvailabilityStartDate,
		s.AvailabilityEndDate, s.ConsentFlag, s.IsActive, s.SlackUserID,
		s.IsGraduate, time.Now(), s.ID)
	return err
}

func (r *seniorRepository) GetAcceptedCount(ctx context.Context, seniorID int32) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT accepted_count FROM seniors WHERE id = $1`, seniorID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrMentorNotFound
	}
	return count, err
}
