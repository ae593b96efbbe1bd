package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"muds-matching-backend/internal/config"
	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/logger"
	"muds-matching-backend/internal/repository"
)

// RowFetcher returns raw spreadsheet rows for a range. It exists so the
// parse/upsert path can be tested without the Sheets API.
type RowFetcher interface {
	FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

type sheetsFetcher struct {
	svc *sheets.Service
}

// NewSheetsFetcher builds a fetcher backed by the Google Sheets API using
// service-account credentials.
func NewSheetsFetcher(ctx context.Context, credentialsFile string) (RowFetcher, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to build sheets client: %w", err)
	}
	return &sheetsFetcher{svc: svc}, nil
}

func (f *sheetsFetcher) FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	logger.ExternalServiceCall("sheets", "FetchRows", "range", readRange)
	resp, err := f.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	logger.ExternalServiceResult("sheets", "FetchRows", err)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = strings.TrimSpace(fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type syncService struct {
	cfg        config.SheetsConfig
	fetcher    RowFetcher
	juniorRepo repository.JuniorRepository
	seniorRepo repository.SeniorRepository
	notifier   Notifier
}

func NewSyncService(
	cfg config.SheetsConfig,
	fetcher RowFetcher,
	juniorRepo repository.JuniorRepository,
	seniorRepo repository.SeniorRepository,
	notifier Notifier,
) SyncService {
	return &syncService{
		cfg:        cfg,
		fetcher:    fetcher,
		juniorRepo: juniorRepo,
		seniorRepo: seniorRepo,
		notifier:   notifier,
	}
}

// SyncJuniors pulls the intake form responses and upserts them keyed by
// student ID. Matched state is never touched by sync.
func (s *syncService) SyncJuniors(ctx context.Context) (*SyncResult, error) {
	logger.EnterMethod("SyncJuniors")

	rows, err := s.fetcher.FetchRows(ctx, s.cfg.JuniorSpreadsheetID, s.cfg.JuniorRange)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Fetched: len(rows)}
	for i, row := range rows {
		junior, err := parseJuniorRow(row)
		if err != nil {
			logger.WarnContext(ctx, "skipping malformed junior row", "row", i+2, "error", err)
			result.Skipped++
			continue
		}
		if !junior.ConsentFlag {
			result.Skipped++
			continue
		}
		if junior.SlackUserID == "" {
			if id, err := s.notifier.ResolveUserID(ctx, junior.Email); err == nil {
				junior.SlackUserID = id
			}
		}

		existing, err := s.juniorRepo.GetByStudentID(ctx, junior.StudentID)
		switch {
		case err == nil:
			junior.ID = existing.ID
			junior.IsMatched = existing.IsMatched
			if junior.SlackUserID == "" {
				junior.SlackUserID = existing.SlackUserID
			}
			if err := s.juniorRepo.Update(ctx, junior); err != nil {
				return nil, err
			}
			result.Updated++
		case errors.Is(err, domain.ErrSeekerNotFound):
			if err := s.juniorRepo.Create(ctx, junior); err != nil {
				return nil, err
			}
			result.Created++
		default:
			return nil, err
		}
	}

	logger.ExitMethod("SyncJuniors", "created", result.Created, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

// SyncSeniors pulls the mentor roster and upserts it keyed by student ID.
// AcceptedCount is owned by the acceptance flow and is preserved.
func (s *syncService) SyncSeniors(ctx context.Context) (*SyncResult, error) {
	logger.EnterMethod("SyncSeniors")

	rows, err := s.fetcher.FetchRows(ctx, s.cfg.SeniorSpreadsheetID, s.cfg.SeniorRange)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Fetched: len(rows)}
	for i, row := range rows {
		senior, err := parseSeniorRow(row)
		if err != nil {
			logger.WarnContext(ctx, "skipping malformed senior row", "row", i+2, "error", err)
			result.Skipped++
			continue
		}
		if !senior.ConsentFlag {
			result.Skipped++
			continue
		}
		if senior.SlackUserID == "" {
			if id, err := s.notifier.ResolveUserID(ctx, senior.Email); err == nil {
				senior.SlackUserID = id
			}
		}

		existing, err := s.seniorRepo.GetByStudentID(ctx, senior.StudentID)
		switch {
		case err == nil:
			senior.ID = existing.ID
			senior.AcceptedCount = existing.AcceptedCount
			if senior.SlackUserID == "" {
				senior.SlackUserID = existing.SlackUserID
			}
			if err := s.seniorRepo.Update(ctx, senior); err != nil {
				return nil, err
			}
			result.Updated++
		case errors.Is(err, domain.ErrMentorNotFound):
			if err := s.seniorRepo.Create(ctx, senior); err != nil {
				return nil, err
			}
			result.Created++
		default:
			return nil, err
		}
	}

	logger.ExitMethod("SyncSeniors", "created", result.Created, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

// Form response column layout. Positions follow the intake forms; a row
// shorter than the required prefix is malformed.
const (
	juniorRowMinLen = 14
	seniorRowMinLen = 16
)

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006/01/02 15:04:05", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseConsent(s string) bool {
	s = strings.ToLower(s)
	return s == "はい" || s == "yes" || s == "true" || s == "同意する"
}

func parseJuniorRow(row []string) (*domain.Junior, error) {
	if len(row) < juniorRowMinLen {
		return nil, fmt.Errorf("expected at least %d columns, got %d", juniorRowMinLen, len(row))
	}
	if cell(row, 1) == "" || cell(row, 2) == "" {
		return nil, fmt.Errorf("missing email or student id")
	}
	return &domain.Junior{
		Timestamp:               parseTimestamp(cell(row, 0)),
		Email:                   cell(row, 1),
		StudentID:               cell(row, 2),
		LastName:                cell(row, 3),
		FirstName:               cell(row, 4),
		Grade:                   cell(row, 5),
		ProgrammingExpBeforeUni: cell(row, 6),
		InternshipExperience:    cell(row, 7),
		InterestAreas:           cell(row, 8),
		ConsultationCategory:    cell(row, 9),
		ResearchPhase:           cell(row, 10),
		JobSearchArea:           cell(row, 11),
		ConsultationTitle:       cell(row, 12),
		ConsultationContent:     cell(row, 13),
		ConsentFlag:             parseConsent(cell(row, 14)),
	}, nil
}

func parseSeniorRow(row []string) (*domain.Senior, error) {
	if len(row) < seniorRowMinLen {
		return nil, fmt.Errorf("expected at least %d columns, got %d", seniorRowMinLen, len(row))
	}
	if cell(row, 1) == "" || cell(row, 2) == "" {
		return nil, fmt.Errorf("missing email or student id")
	}

	availability, err := strconv.Atoi(cell(row, 13))
	if err != nil || availability < domain.AvailabilityOpen || availability > domain.AvailabilityClosed {
		availability = domain.AvailabilityConstrained
	}

	senior := &domain.Senior{
		Timestamp:              parseTimestamp(cell(row, 0)),
		Email:                  cell(row, 1),
		StudentID:              cell(row, 2),
		LastName:               cell(row, 3),
		FirstName:              cell(row, 4),
		Grade:                  cell(row, 5),
		InternshipExperience:   cell(row, 6),
		HackathonExperience:    cell(row, 7),
		JobSearchCompleted:     cell(row, 8),
		PaperPresentationExp:   cell(row, 9),
		InterestAreas:          cell(row, 10),
		ConsultationCategories: cell(row, 11),
		ResearchPhases:         cell(row, 12),
		AvailabilityStatus:     availability,
		ConsentFlag:            parseConsent(cell(row, 15)),
		IsActive:               true,
		IsGraduate:             strings.Contains(cell(row, 5), "卒"),
	}
	if t, err := time.Parse("2006/01/02", cell(row, 14)); err == nil {
		senior.AvailabilityStartDate = &t
	}
	if t, err := time.Parse("2006/01/02", cell(row, 16)); err == nil {
		senior.AvailabilityEndDate = &t
	}
	return senior, nil
}
