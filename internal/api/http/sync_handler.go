package http

import (
	"net/http"

	"muds-matching-backend/internal/service"
)

// SyncHandler exposes on-demand roster sync for admins; the scheduler
// drives the same service on a timer.
type SyncHandler struct {
	syncSvc service.SyncService
}

func NewSyncHandler(syncSvc service.SyncService) *SyncHandler {
	return &SyncHandler{syncSvc: syncSvc}
}

func (h *SyncHandler) SyncJuniors(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncSvc.SyncJuniors(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SyncHandler) SyncSeniors(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncSvc.SyncSeniors(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
