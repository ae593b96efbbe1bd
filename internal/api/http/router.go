package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"muds-matching-backend/internal/repository"
	"muds-matching-backend/internal/security"
	"muds-matching-backend/internal/service"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	MatchingSvc        service.MatchingService
	SyncSvc            service.SyncService
	AuthSvc            service.AuthService
	SeniorRepo         repository.SeniorRepository
	TokenManager       security.TokenManager
	AdminToken         string
	SlackSigningSecret string
}

// NewRouter wires up all routes. Matching reads require a staff JWT;
// mutations and sync require the admin token; the Slack webhook is
// guarded by signature verification instead.
func NewRouter(deps RouterDeps) *mux.Router {
	matchingHandler := NewMatchingHandler(deps.MatchingSvc)
	syncHandler := NewSyncHandler(deps.SyncSvc)
	authHandler := NewAuthHandler(deps.AuthSvc)
	slackHandler := NewSlackHandler(deps.SlackSigningSecret, deps.MatchingSvc, deps.SeniorRepo)

	adminOnly := AdminTokenMiddleware(deps.AdminToken)
	staffOnly := JWTAuthMiddleware(deps.TokenManager)

	router := mux.NewRouter()
	router.HandleFunc("/health", handleHealth).Methods("GET")

	// Auth
	router.HandleFunc("/api/v1/auth/google/login", authHandler.Login).Methods("GET")
	router.HandleFunc("/api/v1/auth/google/callback", authHandler.Callback).Methods("GET")
	router.Handle("/api/v1/auth/me", staffOnly(http.HandlerFunc(authHandler.Me))).Methods("GET")

	// Matching lifecycle
	admin := router.PathPrefix("/api/v1").Subrouter()
	admin.Use(adminOnly)
	admin.HandleFunc("/matchings/create", matchingHandler.Create).Methods("POST")
	admin.HandleFunc("/matchings/{id:[0-9]+}/accept", matchingHandler.Accept).Methods("POST")
	admin.HandleFunc("/matchings/{id:[0-9]+}/cancel", matchingHandler.Cancel).Methods("POST")
	admin.HandleFunc("/matchings/{id:[0-9]+}/feedback", matchingHandler.Feedback).Methods("POST")
	admin.HandleFunc("/sync/juniors", syncHandler.SyncJuniors).Methods("POST")
	admin.HandleFunc("/sync/seniors", syncHandler.SyncSeniors).Methods("POST")

	staff := router.PathPrefix("/api/v1").Subrouter()
	staff.Use(staffOnly)
	staff.HandleFunc("/matchings/{id:[0-9]+}", matchingHandler.Get).Methods("GET")
	staff.HandleFunc("/matchings/junior/{id:[0-9]+}", matchingHandler.ListByJunior).Methods("GET")
	staff.HandleFunc("/matchings/senior/{id:[0-9]+}", matchingHandler.ListBySenior).Methods("GET")
	staff.HandleFunc("/matchings/senior/{id:[0-9]+}/stats", matchingHandler.SeniorStats).Methods("GET")

	// Slack interaction webhook
	router.HandleFunc("/slack/interactions", slackHandler.Interactions).Methods("POST")

	return router
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
