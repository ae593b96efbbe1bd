package jobs

import (
	"context"
	"time"

	"muds-matching-backend/internal/logger"
)

// SyncRosters pulls both rosters from the spreadsheets. Senior failures
// are still reported even when the junior sync already failed.
func (jr *JobRunner) SyncRosters() {
	jr.runWithRecovery("SyncRosters", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if result, err := jr.services.Sync.SyncJuniors(ctx); err != nil {
			logger.Error("junior roster sync failed", "error", err)
			jr.alert(ctx, "相談者リスト同期失敗", err.Error())
		} else {
			logger.Info("junior roster synced",
				"fetched", result.Fetched, "created", result.Created,
				"updated", result.Updated, "skipped", result.Skipped)
		}

		if result, err := jr.services.Sync.SyncSeniors(ctx); err != nil {
			logger.Error("senior roster sync failed", "error", err)
			jr.alert(ctx, "メンターリスト同期失敗", err.Error())
		} else {
			logger.Info("senior roster synced",
				"fetched", result.Fetched, "created", result.Created,
				"updated", result.Updated, "skipped", result.Skipped)
		}
	})
}

// SendFeedbackRequests prompts juniors whose sessions were accepted long
// enough ago and have not been asked yet.
func (jr *JobRunner) SendFeedbackRequests() {
	jr.runWithRecovery("SendFeedbackRequests", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cutoff := time.Now().Add(-time.Duration(jr.config.Matching.FeedbackDelayHours) * time.Hour)
		sent, err := jr.services.Matching.SendFeedbackRequests(ctx, cutoff)
		if err != nil {
			logger.Error("feedback request job failed", "error", err)
			jr.alert(ctx, "フィードバック依頼送信失敗", err.Error())
			return
		}
		logger.Info("feedback requests sent", "count", sent)
	})
}

func (jr *JobRunner) alert(ctx context.Context, subject, body string) {
	if err := jr.services.Mailer.SendAdminAlert(ctx, subject, body); err != nil {
		logger.Error("failed to send admin alert", "subject", subject, "error", err)
	}
}
