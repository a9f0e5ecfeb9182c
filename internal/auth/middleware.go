package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"call-rewind-go/internal/logger"
)

type contextKey string

const sessionContextKey contextKey = "session"

// TokenRefresher renews an access token from a refresh token. *Client
// satisfies it; tests substitute a stub.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (Token, error)
}

// Require rejects requests without a valid session cookie. An expired access
// token with a usable refresh token is renewed transparently and the session
// cookie re-issued; anything else is a 401 for the client to restart login.
func (s *Sessions) Require(refresher TokenRefresher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}
			claims, err := s.Parse(cookie.Value)
			if err != nil {
				unauthorized(w)
				return
			}

			if claims.TokenExpired(time.Now()) {
				if claims.RefreshToken == "" || refresher == nil {
					unauthorized(w)
					return
				}
				log := logger.New().WithComponent("auth.session")
				token, err := refresher.Refresh(r.Context(), claims.RefreshToken)
				if err != nil {
					log.WithError(err).Warn("session token refresh failed")
					unauthorized(w)
					return
				}
				claims.AccessToken = token.AccessToken
				if token.RefreshToken != "" {
					claims.RefreshToken = token.RefreshToken
				}
				claims.TokenExpiresAt = token.ExpiresAt(time.Now()).Unix()
				if signed, err := s.Issue(*claims); err == nil {
					http.SetCookie(w, s.Cookie(signed))
				} else {
					log.WithError(err).Warn("session re-issue failed")
				}
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the verified session claims, if any.
func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(sessionContextKey).(*SessionClaims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
