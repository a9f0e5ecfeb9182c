package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	sessions := NewSessions("secret", time.Hour)

	signed, err := sessions.Issue(SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "webuser-1"},
		AccessToken:      "access",
		RefreshToken:     "refresh",
		Name:             "Ada Lovelace",
	})
	require.NoError(t, err)

	claims, err := sessions.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "webuser-1", claims.Subject)
	assert.Equal(t, "access", claims.AccessToken)
	assert.Equal(t, "Ada Lovelace", claims.Name)
}

func TestSessionParseRejectsWrongSecret(t *testing.T) {
	signed, err := NewSessions("one", time.Hour).Issue(SessionClaims{AccessToken: "a"})
	require.NoError(t, err)

	_, err = NewSessions("two", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionParseRejectsExpired(t *testing.T) {
	sessions := NewSessions("secret", -time.Minute)
	signed, err := sessions.Issue(SessionClaims{AccessToken: "a"})
	require.NoError(t, err)

	_, err = sessions.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, SessionClaims{}.TokenExpired(now))
	assert.False(t, SessionClaims{TokenExpiresAt: now.Add(time.Hour).Unix()}.TokenExpired(now))
	assert.True(t, SessionClaims{TokenExpiresAt: now.Add(-time.Hour).Unix()}.TokenExpired(now))
}

type stubRefresher struct {
	calls int32
	token Token
	err   error
}

func (s *stubRefresher) Refresh(context.Context, string) (Token, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.token, s.err
}

func TestRequireRejectsMissingCookie(t *testing.T) {
	sessions := NewSessions("secret", time.Hour)
	rec := httptest.NewRecorder()

	sessions.Require(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/year-review", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePassesValidSession(t *testing.T) {
	sessions := NewSessions("secret", time.Hour)
	signed, err := sessions.Issue(SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "webuser-1"},
		AccessToken:      "access",
		TokenExpiresAt:   time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/year-review", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed})
	rec := httptest.NewRecorder()

	called := false
	sessions.Require(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "access", claims.AccessToken)
	})).ServeHTTP(rec, req)

	assert.True(t, called)
}

func TestRequireRefreshesExpiredAccessToken(t *testing.T) {
	sessions := NewSessions("secret", time.Hour)
	signed, err := sessions.Issue(SessionClaims{
		AccessToken:    "stale",
		RefreshToken:   "refresh",
		TokenExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)

	refresher := &stubRefresher{token: Token{AccessToken: "fresh", ExpiresIn: 3600}}
	req := httptest.NewRequest(http.MethodGet, "/api/year-review", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed})
	rec := httptest.NewRecorder()

	sessions.Require(refresher)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		claims, ok := SessionFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "fresh", claims.AccessToken)
	})).ServeHTTP(rec, req)

	assert.Equal(t, int32(1), refresher.calls)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestChallengeIsDeterministic(t *testing.T) {
	verifier, err := NewVerifier()
	require.NoError(t, err)
	assert.NotEmpty(t, verifier)
	assert.Equal(t, Challenge(verifier), Challenge(verifier))
	assert.NotEqual(t, verifier, Challenge(verifier))
}

func TestAuthCodeURL(t *testing.T) {
	client := NewClient(Config{
		ClientID:    "cid",
		AuthURL:     "https://login.example/authorize",
		RedirectURL: "https://app.example/auth/callback",
		Scope:       "history:read",
	})

	u := client.AuthCodeURL("state123", "challenge456")

	assert.Contains(t, u, "https://login.example/authorize?")
	assert.Contains(t, u, "client_id=cid")
	assert.Contains(t, u, "state=state123")
	assert.Contains(t, u, "code_challenge=challenge456")
	assert.Contains(t, u, "code_challenge_method=S256")
}

func TestExchangeRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":300}`))
	}))
	defer srv.Close()

	client := NewClient(Config{TokenURL: srv.URL})
	token, err := client.Exchange(context.Background(), "the-code", "the-verifier")

	require.NoError(t, err)
	assert.Equal(t, "at", token.AccessToken)
	assert.Equal(t, "rt", token.RefreshToken)
	assert.GreaterOrEqual(t, hits, int32(2))
}

func TestExchangeDoesNotRetryRejection(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(Config{TokenURL: srv.URL})
	_, err := client.Exchange(context.Background(), "bad-code", "v")

	require.Error(t, err)
	assert.Equal(t, int32(1), hits)
}
