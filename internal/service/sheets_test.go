package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"muds-matching-backend/internal/config"
	"muds-matching-backend/internal/domain"
)

type stubFetcher struct {
	rows map[string][][]string
	err  error
}

func (f *stubFetcher) FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[spreadsheetID], nil
}

func testSheetsConfig() config.SheetsConfig {
	return config.SheetsConfig{
		Enabled:             true,
		JuniorSpreadsheetID: "juniors-sheet",
		JuniorRange:         "A2:Q",
		SeniorSpreadsheetID: "seniors-sheet",
		SeniorRange:         "A2:T",
	}
}

func juniorRow(studentID string) []string {
	return []string{
		"2026/04/01 10:00:00", studentID + "@example.ac.jp", studentID,
		"田中", "花子", "B2", "なし", "なし", "機械学習",
		"研究相談", "テーマ検討中", "", "研究テーマの相談", "決め方がわかりません", "はい",
	}
}

func seniorRow(studentID string) []string {
	return []string{
		"2026/04/01 09:00:00", studentID + "@example.ac.jp", studentID,
		"佐藤", "一郎", "M2", "あり", "なし", "はい", "あり",
		"機械学習", "研究相談,就活相談", "テーマ決定済み", "0", "2026/04/01", "はい", "2027/03/31",
	}
}

func TestSyncService_SyncJuniors(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesNewAndUpdatesExisting", func(t *testing.T) {
		juniorRepo := new(MockJuniorRepo)
		notifier := new(MockNotifier)
		fetcher := &stubFetcher{rows: map[string][][]string{
			"juniors-sheet": {juniorRow("s001"), juniorRow("s002")},
		}}
		svc := NewSyncService(testSheetsConfig(), fetcher, juniorRepo, new(MockSeniorRepo), notifier)

		notifier.On("ResolveUserID", ctx, mock.AnythingOfType("string")).Return("U123", nil)
		juniorRepo.On("GetByStudentID", ctx, "s001").Return(nil, domain.ErrSeekerNotFound)
		juniorRepo.On("Create", ctx, mock.AnythingOfType("*domain.Junior")).Return(nil)
		existing := &domain.Junior{ID: 7, StudentID: "s002", IsMatched: true}
		juniorRepo.On("GetByStudentID", ctx, "s002").Return(existing, nil)
		juniorRepo.On("Update", ctx, mock.MatchedBy(func(j *domain.Junior) bool {
			// The matched flag survives the roster overwrite.
			return j.ID == 7 && j.IsMatched
		})).Return(nil)

		result, err := svc.SyncJuniors(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Fetched)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.Updated)
		assert.Zero(t, result.Skipped)
	})

	t.Run("SkipsMalformedAndNonConsenting", func(t *testing.T) {
		noConsent := juniorRow("s003")
		noConsent[14] = "いいえ"
		fetcher := &stubFetcher{rows: map[string][][]string{
			"juniors-sheet": {{"2026/04/01", "only@two.cols"}, noConsent},
		}}
		juniorRepo := new(MockJuniorRepo)
		svc := NewSyncService(testSheetsConfig(), fetcher, juniorRepo, new(MockSeniorRepo), new(MockNotifier))

		result, err := svc.SyncJuniors(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Skipped)
		juniorRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
	})
}

func TestSyncService_SyncSeniors(t *testing.T) {
	ctx := context.Background()

	t.Run("PreservesAcceptedCount", func(t *testing.T) {
		seniorRepo := new(MockSeniorRepo)
		notifier := new(MockNotifier)
		fetcher := &stubFetcher{rows: map[string][][]string{
			"seniors-sheet": {seniorRow("m001")},
		}}
		svc := NewSyncService(testSheetsConfig(), fetcher, new(MockJuniorRepo), seniorRepo, notifier)

		notifier.On("ResolveUserID", ctx, mock.AnythingOfType("string")).Return("", nil)
		existing := &domain.Senior{ID: 3, StudentID: "m001", AcceptedCount: 5, SlackUserID: "U_OLD"}
		seniorRepo.On("GetByStudentID", ctx, "m001").Return(existing, nil)
		seniorRepo.On("Update", ctx, mock.MatchedBy(func(s *domain.Senior) bool {
			return s.ID == 3 && s.AcceptedCount == 5 && s.SlackUserID == "U_OLD"
		})).Return(nil)

		result, err := svc.SyncSeniors(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
	})
}

func TestParseSeniorRow(t *testing.T) {
	senior, err := parseSeniorRow(seniorRow("m001"))
	require.NoError(t, err)

	assert.Equal(t, "m001", senior.StudentID)
	assert.Equal(t, "研究相談,就活相談", senior.ConsultationCategories)
	assert.Equal(t, domain.AvailabilityOpen, senior.AvailabilityStatus)
	assert.True(t, senior.ConsentFlag)
	assert.True(t, senior.IsActive)

	t.Run("InvalidAvailabilityFallsBack", func(t *testing.T) {
		row := seniorRow("m002")
		row[13] = "7"
		senior, err := parseSeniorRow(row)
		require.NoError(t, err)
		assert.Equal(t, domain.AvailabilityConstrained, senior.AvailabilityStatus)
	})

	t.Run("MissingStudentID", func(t *testing.T) {
		row := seniorRow("m003")
		row[2] = ""
		_, err := parseSeniorRow(row)
		assert.Error(t, err)
	})
}

func TestParseJuniorRow(t *testing.T) {
	junior, err := parseJuniorRow(juniorRow("s001"))
	require.NoError(t, err)

	assert.Equal(t, "s001", junior.StudentID)
	assert.Equal(t, "研究相談", junior.ConsultationCategory)
	assert.Equal(t, "研究テーマの相談", junior.ConsultationTitle)
	assert.True(t, junior.ConsentFlag)
	assert.False(t, junior.IsMatched)
}
