package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/slack-go/slack"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/logger"
	"muds-matching-backend/internal/repository"
	"muds-matching-backend/internal/service"
)

// SlackHandler receives interaction callbacks from the Slack workspace.
// The accept button on an offer message lands here.
type SlackHandler struct {
	signingSecret string
	matchingSvc   service.MatchingService
	seniorRepo    repository.SeniorRepository
}

func NewSlackHandler(signingSecret string, matchingSvc service.MatchingService, seniorRepo repository.SeniorRepository) *SlackHandler {
	return &SlackHandler{
		signingSecret: signingSecret,
		matchingSvc:   matchingSvc,
		seniorRepo:    seniorRepo,
	}
}

func (h *SlackHandler) Interactions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	verifier.Write(body)
	if err := verifier.Ensure(); err != nil {
		logger.Warn("slack interaction with bad signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(values.Get("payload")), &callback); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sessionID, ok := acceptSessionID(&callback)
	if !ok {
		// Not an accept click; acknowledge and ignore.
		w.WriteHeader(http.StatusOK)
		return
	}

	senior, err := h.seniorRepo.GetBySlackUserID(r.Context(), callback.User.ID)
	if err != nil {
		logger.Warn("accept click from unknown slack user", "slack_user_id", callback.User.ID)
		h.respond(w, callback.ResponseURL, "このアカウントはメンターとして登録されていません。")
		return
	}

	result, err := h.matchingSvc.ClaimOffer(r.Context(), sessionID, senior.ID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrSessionNotFound) {
			h.respond(w, callback.ResponseURL, "この相談への受諾権限がありません。")
			return
		}
		logger.Error("claim via slack failed", "session_id", sessionID, "error", err)
		h.respond(w, callback.ResponseURL, "エラーが発生しました。時間をおいて再度お試しください。")
		return
	}

	switch result.Outcome {
	case domain.ClaimOutcomeWon:
		// The winner's message is rewritten by the notifier; nothing
		// more to say here.
		w.WriteHeader(http.StatusOK)
	case domain.ClaimOutcomeSessionCancelled:
		h.respond(w, callback.ResponseURL, "この相談は取り下げられました。")
	default:
		h.respond(w, callback.ResponseURL, "この相談は既に他のメンターが担当しています。ありがとうございました。")
	}
}

// acceptSessionID pulls the session id out of an accept button click.
func acceptSessionID(callback *slack.InteractionCallback) (int32, bool) {
	if callback.Type != slack.InteractionTypeBlockActions {
		return 0, false
	}
	for _, action := range callback.ActionCallback.BlockActions {
		if action.ActionID != service.AcceptActionID {
			continue
		}
		raw := strings.TrimPrefix(action.Value, "accept_")
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || id <= 0 {
			return 0, false
		}
		return int32(id), true
	}
	return 0, false
}

// respond sends an ephemeral reply through the interaction response URL.
// Slack expects a 200 on the webhook itself regardless.
func (h *SlackHandler) respond(w http.ResponseWriter, responseURL, text string) {
	if responseURL != "" {
		payload, _ := json.Marshal(map[string]any{
			"response_type":    "ephemeral",
			"replace_original": false,
			"text":             text,
		})
		resp, err := http.Post(responseURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			logger.Error("failed to post interaction response", "error", err)
		} else {
			resp.Body.Close()
		}
	}
	w.WriteHeader(http.StatusOK)
}
