package http

import (
	"errors"
	"net/http"

	"muds-matching-backend/internal/service"
)

const stateCookieName = "oauth_state"

// AuthHandler drives the staff Google OAuth login flow.
type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login redirects to the Google consent page, stashing the state nonce
// in a short-lived cookie for the callback to check.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	url, state := h.authSvc.LoginURL()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing oauth state"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	token, email, err := h.authSvc.HandleCallback(r.Context(),
		r.URL.Query().Get("state"), cookie.Value, r.URL.Query().Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStateMismatch):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrDomainNotAllowed):
			writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
		default:
			writeError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"email":        email,
	})
}

// Me echoes the authenticated staff identity; useful for frontends to
// validate a stored token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"email": claims.Email,
		"name":  claims.Name,
		"role":  string(claims.Role),
	})
}
