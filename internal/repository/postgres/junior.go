package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/repository"
)

const juniorColumns = `id, timestamp, email, student_id, last_name, first_name, grade,
	programming_exp_before_uni, internship_experience, interest_areas,
	consultation_category, research_phase, job_search_area,
	consultation_title, consultation_content, consent_flag, is_matched,
	slack_user_id, created_at, updated_at`

type juniorRepository struct {
	db *sql.DB
}

func NewJuniorRepository(db *sql.DB) repository.JuniorRepository {
	return &juniorRepository{db: db}
}

func (r *juniorRepository) Create(ctx context.Context, j *domain.Junior) error {
	query := `INSERT INTO juniors (timestamp, email, student_id, last_name, first_name, grade,
	            programming_exp_before_uni, internship_experience, interest_areas,
	            consultation_category, research_phase, job_search_area,
	            consultation_title, consultation_content, consent_flag, is_matched,
	            slack_user_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	          RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		j.Timestamp, j.Email, j.StudentID, j.LastName, j.FirstName, j.Grade,
		j.ProgrammingExpBeforeUni, j.InternshipExperience, j.InterestAreas,
		j.ConsultationCategory, j.ResearchPhase, j.JobSearchArea,
		j.ConsultationTitle, j.ConsultationContent, j.ConsentFlag, j.IsMatched,
		j.SlackUserID, now, now,
	).Scan(&j.ID)
}

func scanJunior(row interface{ Scan(...any) error }) (*domain.Junior, error) {
	j := &domain.Junior{}
	err := row.Scan(
		&j.ID, &j.Timestamp, &j.Email, &j.StudentID, &j.LastName, &j.FirstName, &j.Grade,
		&j.ProgrammingExpBeforeUni, &j.InternshipExperience, &j.InterestAreas,
		&j.ConsultationCategory, &j.ResearchPhase, &j.JobSearchArea,
		&j.ConsultationTitle, &j.ConsultationContent, &j.ConsentFlag, &j.IsMatched,
		&j.SlackUserID, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (r *juniorRepository) GetByID(ctx context.Context, id int32) (*domain.Junior, error) {
	j, err := scanJunior(r.db.QueryRowContext(ctx,
		`SELECT `+juniorColumns+` FROM juniors WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSeekerNotFound
	}
	return j, err
}

func (r *juniorRepository) GetByStudentID(ctx context.Context, studentID string) (*domain.Junior, error) {
	j, err := scanJunior(r.db.QueryRowContext(ctx,
		`SELECT `+juniorColumns+` FROM juniors WHERE student_id = $1`, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSeekerNotFound
	}
	return j, err
}

func (r *juniorRepository) GetByEmail(ctx context.Context, email string) (*domain.Junior, error) {
	j, err := scanJunior(r.db.QueryRowContext(ctx,
		`SELECT `+juniorColumns+` FROM juniors WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSeekerNotFound
	}
	return j, err
}

func (r *juniorRepository) List(ctx context.Context, isMatched *bool, page, pageSize int32) ([]domain.Junior, int32, error) {
	query := `SELECT ` + juniorColumns + ` FROM juniors`
	countQuery := `SELECT count(*) FROM juniors`
	args := []interface{}{}
	if isMatched != nil {
		query += ` WHERE is_matched = $1`
		countQuery += ` WHERE is_matched = $1`
		args = append(args, *isMatched)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if isMatched != nil {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	}
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var juniors []domain.Junior
	for rows.Next() {
		j, err := scanJunior(rows)
		if err != nil {
			return nil, 0, err
		}
		juniors = append(juniors, *j)
	}
	return juniors, count, rows.Err()
}

func (r *juniorRepository) Update(ctx context.Context, j *domain.Junior) error {
	query := `UPDATE juniors SET timestamp=$1, email=$2, last_name=$3, first_name=$4, grade=$5,
	            programming_exp_before_uni=$6, internship_experience=$7, interest_areas=$8,
	            consultation_category=$9, research_phase=$10, job_search_area=$11,
	            consultation_title=$12, consultation_content=$13, consent_flag=$14,
	            slack_user_id=$15, updated_at=$16
	          WHERE id=$17`
	_, err := r.db.ExecContext(ctx, query,
		j.Timestamp, j.Email, j.LastName, j.FirstName, j.Grade,
		j.ProgrammingExpBeforeUni, j.InternshipExperience, j.InterestAreas,
		j.ConsultationCategory, j.ResearchPhase, j.JobSearchArea,
		j.ConsultationTitle, j.ConsultationContent, j.ConsentFlag,
		j.SlackUserID, time.Now(), j.ID)
	return err
}
