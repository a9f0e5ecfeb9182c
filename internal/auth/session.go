package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie carrying the signed session JWT.
const SessionCookie = "callrewind_session"

// ErrInvalidSession covers missing, malformed, and expired session tokens.
var ErrInvalidSession = errors.New("auth: invalid session")

// SessionClaims holds the sipgate token set and profile data inside the
// session JWT. The session strategy mirrors a JWT-cookie session: tokens
// stay server-signed and round-trip through the browser, no session store.
type SessionClaims struct {
	jwt.RegisteredClaims
	AccessToken    string `json:"act"`
	RefreshToken   string `json:"rft,omitempty"`
	TokenExpiresAt int64  `json:"tex,omitempty"` // unix seconds
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
}

// TokenExpired reports whether the embedded access token needs a refresh.
func (c SessionClaims) TokenExpired(now time.Time) bool {
	return c.TokenExpiresAt > 0 && now.Unix() >= c.TokenExpiresAt
}

// Sessions signs and verifies HS256 session JWTs.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// Issue signs claims into a session token, stamping issued-at and expiry.
func (s *Sessions) Issue(claims SessionClaims) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies a session token and returns its claims.
func (s *Sessions) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Cookie wraps a session token for the browser.
func (s *Sessions) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
