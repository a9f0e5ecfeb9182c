package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"call-rewind-go/internal/auth"
	"call-rewind-go/internal/cache"
	"call-rewind-go/internal/export"
	"call-rewind-go/internal/history"
	"call-rewind-go/internal/logger"
	"call-rewind-go/internal/metrics"
	"call-rewind-go/internal/share"
	"call-rewind-go/internal/sipgate"
	"call-rewind-go/internal/slides"
	"call-rewind-go/internal/types"
)

// ReviewBuilder assembles a user's yearly review from their access token.
// *history.Builder satisfies it; tests substitute a stub.
type ReviewBuilder interface {
	Build(ctx context.Context, token string, year int) (types.YearReview, error)
}

// Handler bundles the HTTP handlers and their dependencies.
type Handler struct {
	builder       ReviewBuilder
	shares        share.Store
	reviews       *cache.Cache
	sessions      *auth.Sessions
	oauth         *auth.Client
	publicBaseURL string
}

func NewHandler(builder ReviewBuilder, shares share.Store, reviews *cache.Cache, sessions *auth.Sessions, oauth *auth.Client, publicBaseURL string) *Handler {
	return &Handler{
		builder:       builder,
		shares:        shares,
		reviews:       reviews,
		sessions:      sessions,
		oauth:         oauth,
		publicBaseURL: publicBaseURL,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "ok")
}

// state and verifier cookies live only for the duration of the login redirect.
const (
	stateCookie    = "callrewind_oauth_state"
	verifierCookie = "callrewind_oauth_verifier"
	loginCookieAge = 10 * 60 // seconds
)

// Login starts the authorization-code flow: it stores the CSRF state and the
// PKCE verifier in short-lived cookies and redirects to the provider.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "login")

	state, err := auth.NewState()
	if err != nil {
		reqLog.WithError(err).Error("state generation failed")
		respondError(w, http.StatusInternalServerError, "login unavailable")
		return
	}
	verifier, err := auth.NewVerifier()
	if err != nil {
		reqLog.WithError(err).Error("verifier generation failed")
		respondError(w, http.StatusInternalServerError, "login unavailable")
		return
	}

	http.SetCookie(w, loginCookie(stateCookie, state))
	http.SetCookie(w, loginCookie(verifierCookie, verifier))

	reqLog.Info("redirecting to identity provider")
	http.Redirect(w, r, h.oauth.AuthCodeURL(state, auth.Challenge(verifier)), http.StatusFound)
}

// Callback completes the flow: state check, code exchange, profile fetch,
// session cookie.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "callback")

	stateParam := r.URL.Query().Get("state")
	stateCk, err := r.Cookie(stateCookie)
	if err != nil || stateParam == "" || stateParam != stateCk.Value {
		reqLog.Warn("state mismatch")
		respondError(w, http.StatusBadRequest, "invalid state")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing code")
		return
	}
	verifierCk, err := r.Cookie(verifierCookie)
	if err != nil || verifierCk.Value == "" {
		respondError(w, http.StatusBadRequest, "missing verifier")
		return
	}

	http.SetCookie(w, expiredCookie(stateCookie))
	http.SetCookie(w, expiredCookie(verifierCookie))

	token, err := h.oauth.Exchange(r.Context(), code, verifierCk.Value)
	if err != nil {
		reqLog.WithError(err).Error("code exchange failed")
		respondError(w, http.StatusBadGateway, "login failed")
		return
	}

	claims := auth.SessionClaims{
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: token.ExpiresAt(time.Now()).Unix(),
	}
	if info, err := h.oauth.Userinfo(r.Context(), token.AccessToken); err == nil {
		claims.Subject = info.Sub
		claims.Name = info.DisplayName()
		claims.Email = info.Email
	} else {
		reqLog.WithError(err).Warn("userinfo fetch failed, session without profile")
	}

	signed, err := h.sessions.Issue(claims)
	if err != nil {
		reqLog.WithError(err).Error("session issue failed")
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	http.SetCookie(w, h.sessions.Cookie(signed))

	reqLog.WithField("user", claims.Email).Info("login complete")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger.New().WithRequest(r).WithField("handler", "logout").Info("session cleared")
	http.SetCookie(w, h.sessions.ClearCookie())
	http.Redirect(w, r, "/", http.StatusFound)
}

// YearReview returns the caller's aggregated review for the requested year
// (defaults to the current year).
func (h *Handler) YearReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.buildReview(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, review)
}

// Slides returns the review rendered as a presentation deck.
func (h *Handler) Slides(w http.ResponseWriter, r *http.Request) {
	review, ok := h.buildReview(w, r)
	if !ok {
		return
	}
	name := ""
	if claims, ok := auth.SessionFromContext(r.Context()); ok {
		name = claims.Name
	}
	respondJSON(w, http.StatusOK, slides.Build(review, name))
}

// Export streams the review as an Excel workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "export")
	review, ok := h.buildReview(w, r)
	if !ok {
		return
	}
	f, err := export.WriteWorkbook(review)
	if err != nil {
		reqLog.WithError(err).Error("workbook build failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(review.Year)))
	if err := f.Write(w); err != nil {
		reqLog.WithError(err).Error("workbook write failed")
	}
}

// CreateShare stores a sanitized copy of a review under a fresh readable id.
// The route is public: the payload is the client's own review, and sanitizing
// strips every contact name before anything is persisted.
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "create_share")

	var review types.YearReview
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&review); err != nil {
		reqLog.WithError(err).Warn("bad share payload")
		respondError(w, http.StatusBadRequest, "invalid review payload")
		return
	}
	if review.Year == 0 {
		respondError(w, http.StatusBadRequest, "invalid review payload")
		return
	}

	id, err := share.NewID(h.shares.Exists)
	if err != nil {
		reqLog.WithError(err).Error("id allocation failed")
		respondError(w, http.StatusInternalServerError, "share failed")
		return
	}
	if err := h.shares.Save(id, share.Sanitize(review)); err != nil {
		reqLog.WithError(err).Error("share save failed")
		respondError(w, http.StatusInternalServerError, "share failed")
		return
	}
	metrics.SharesCreated.Inc()

	reqLog.WithField("share_id", id).Info("share created")
	respondJSON(w, http.StatusCreated, map[string]string{
		"id":  id,
		"url": h.publicBaseURL + "/api/share/" + id,
	})
}

func (h *Handler) GetShare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	review, err := h.shares.Get(id)
	if errors.Is(err, share.ErrNotFound) {
		respondError(w, http.StatusNotFound, "share not found")
		return
	}
	if err != nil {
		logger.New().WithRequest(r).WithError(err).Error("share lookup failed")
		respondError(w, http.StatusInternalServerError, "share lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, review)
}

// buildReview resolves the session, serves from the review cache when
// possible, and otherwise builds and caches the review. On false the response
// has already been written.
func (h *Handler) buildReview(w http.ResponseWriter, r *http.Request) (types.YearReview, bool) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "year_review")

	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return types.YearReview{}, false
	}

	year := time.Now().UTC().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 2000 || parsed > 2100 {
			respondError(w, http.StatusBadRequest, "invalid year")
			return types.YearReview{}, false
		}
		year = parsed
	}
	reqLog = reqLog.WithField("year", year)

	if review, hit := h.reviews.Get(r.Context(), claims.Subject, year); hit {
		reqLog.Info("review served from cache")
		return review, true
	}

	start := time.Now()
	review, err := h.builder.Build(r.Context(), claims.AccessToken, year)
	reqLog = reqLog.WithField("duration_ms", time.Since(start).Milliseconds())
	if errors.Is(err, sipgate.ErrUnauthorized) {
		reqLog.Warn("access token rejected upstream")
		http.SetCookie(w, h.sessions.ClearCookie())
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return types.YearReview{}, false
	}
	if err != nil {
		reqLog.WithError(err).Error("review build failed")
		respondError(w, http.StatusInternalServerError, "review build failed")
		return types.YearReview{}, false
	}
	reqLog.WithField("has_data", review.HasData).Info("review built")

	if claims.Subject != "" && review.HasData {
		h.reviews.Set(r.Context(), claims.Subject, year, review)
	}
	return review, true
}

var _ ReviewBuilder = (*history.Builder)(nil)

func loginCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   loginCookieAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.New().WithError(err).Error("failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
