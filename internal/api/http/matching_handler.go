package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"muds-matching-backend/internal/service"
)

// MatchingHandler exposes the offer-session lifecycle over HTTP.
type MatchingHandler struct {
	matchingSvc service.MatchingService
}

func NewMatchingHandler(matchingSvc service.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingSvc: matchingSvc}
}

func pathID(r *http.Request, name string) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

type createMatchingRequest struct {
	JuniorID int32 `json:"junior_id"`
	TopN     int   `json:"top_n,omitempty"`
}

func (h *MatchingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMatchingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JuniorID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "junior_id is required"})
		return
	}

	result, err := h.matchingSvc.CreateOfferSession(r.Context(), req.JuniorID, req.TopN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type acceptRequest struct {
	SeniorID int32 `json:"senior_id"`
}

// Accept lets a senior claim a session through the API rather than the
// chat button. The race semantics are identical: losers get 200 with an
// already_accepted outcome, not an error.
func (h *MatchingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SeniorID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "senior_id is required"})
		return
	}

	result, err := h.matchingSvc.ClaimOffer(r.Context(), sessionID, req.SeniorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MatchingHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	detail, err := h.matchingSvc.GetSessionDetail(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *MatchingHandler) ListByJunior(w http.ResponseWriter, r *http.Request) {
	juniorID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid junior id"})
		return
	}
	sessions, err := h.matchingSvc.ListByJunior(r.Context(), juniorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *MatchingHandler) ListBySenior(w http.ResponseWriter, r *http.Request) {
	seniorID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid senior id"})
		return
	}
	sessions, err := h.matchingSvc.ListBySenior(r.Context(), seniorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *MatchingHandler) SeniorStats(w http.ResponseWriter, r *http.Request) {
	seniorID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid senior id"})
		return
	}
	stats, err := h.matchingSvc.SeniorStats(r.Context(), seniorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *MatchingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	if err := h.matchingSvc.CancelSession(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content,omitempty"`
}

func (h *MatchingHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "rating must be between 1 and 5"})
		return
	}
	if err := h.matchingSvc.RecordFeedback(r.Context(), sessionID, req.Rating, req.Content); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
