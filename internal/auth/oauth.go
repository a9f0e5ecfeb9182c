package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"call-rewind-go/internal/logger"
)

// Config carries the OAuth endpoints and client credentials for the sipgate
// identity provider.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserinfoURL  string
	RedirectURL  string
	Scope        string
}

// Token is the provider's token response.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// ExpiresAt converts the relative expires_in into an absolute instant.
func (t Token) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Userinfo is the subset of the provider's userinfo payload the service uses.
type Userinfo struct {
	Sub       string `json:"sub"`
	Name      string `json:"name"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// DisplayName falls back through name, first+last, and email.
func (u Userinfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	full := strings.TrimSpace(strings.TrimSpace(u.Firstname) + " " + strings.TrimSpace(u.Lastname))
	if full != "" {
		return full
	}
	if u.Email != "" {
		return u.Email
	}
	return "sipgate user"
}

// Client performs the authorization-code-with-PKCE flow.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 12 * time.Second},
	}
}

// AuthCodeURL builds the provider authorization URL for a login redirect.
func (c *Client) AuthCodeURL(state, challenge string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURL)
	q.Set("scope", c.cfg.Scope)
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	q.Set("prompt", "consent")
	return c.cfg.AuthURL + "?" + q.Encode()
}

// Exchange trades an authorization code for a token set.
func (c *Client) Exchange(ctx context.Context, code, verifier string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURL)
	form.Set("code_verifier", verifier)
	return c.postToken(ctx, form)
}

// Refresh trades a refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.postToken(ctx, form)
}

// postToken posts to the token endpoint, retrying 5xx responses with
// exponential backoff. 4xx responses are terminal.
func (c *Client) postToken(ctx context.Context, form url.Values) (Token, error) {
	log := logger.New().WithComponent("auth.oauth")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	encoded := form.Encode()

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second

	var token Token
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(encoded))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

		if resp.StatusCode >= 500 {
			log.WithField("status", resp.StatusCode).Warn("token endpoint error, retrying")
			return fmt.Errorf("token endpoint error: status=%d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("token request rejected: status=%d body=%s", resp.StatusCode, string(body)))
		}
		if err := json.Unmarshal(body, &token); err != nil {
			return backoff.Permanent(fmt.Errorf("token decode: %w", err))
		}
		if token.AccessToken == "" {
			return backoff.Permanent(fmt.Errorf("token response missing access_token"))
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return Token{}, err
	}
	return token, nil
}

// Userinfo fetches the authenticated user's profile for session hydration.
func (c *Client) Userinfo(ctx context.Context, accessToken string) (Userinfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserinfoURL, nil)
	if err != nil {
		return Userinfo{}, fmt.Errorf("userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Userinfo{}, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Userinfo{}, fmt.Errorf("userinfo request failed: status=%d", resp.StatusCode)
	}

	var info Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Userinfo{}, fmt.Errorf("userinfo decode: %w", err)
	}
	return info, nil
}
