package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"muds-matching-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// AdminTokenMiddleware guards operational endpoints with the static
// admin API token. Comparison is constant time.
func AdminTokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Admin-Token")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid admin token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JWTAuthMiddleware guards staff endpoints with a bearer access token.
func JWTAuthMiddleware(tokenManager security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}
			claims, err := tokenManager.ValidateToken(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the validated claims placed by
// JWTAuthMiddleware, or nil outside an authenticated request.
func ClaimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsContextKey).(*security.UserClaims)
	return claims
}
