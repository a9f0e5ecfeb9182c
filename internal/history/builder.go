package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"call-rewind-go/internal/logger"
	"call-rewind-go/internal/metrics"
	"call-rewind-go/internal/sipgate"
	"call-rewind-go/internal/types"
)

const unavailableMessage = "sipgate is temporarily unavailable (503). Please try again shortly."

// Builder assembles one YearReview per call: fetch, normalize, aggregate.
// It keeps no state between invocations, so one Builder can serve concurrent
// requests for different users.
type Builder struct {
	pager Pager
}

func NewBuilder(pager Pager) *Builder {
	return &Builder{pager: pager}
}

// Build produces the review for the UTC year window [Jan 1 year, Jan 1 year+1).
//
// An empty credential or a transport 401 returns sipgate.ErrUnauthorized so
// the caller can trigger re-authentication; every other failure is converted
// into an empty-year summary carrying a diagnostic message. A pagination
// failure partway through keeps the entries fetched so far.
func (b *Builder) Build(ctx context.Context, token string, year int) (types.YearReview, error) {
	log := logger.New().WithComponent("history.builder").WithField("year", year)

	if strings.TrimSpace(token) == "" {
		metrics.ReviewsBuilt.WithLabelValues("unauthorized").Inc()
		return types.YearReview{}, sipgate.ErrUnauthorized
	}

	from, to := yearBounds(year)
	entries, err := FetchAll(ctx, b.pager, token, from, to)
	if err != nil {
		if errors.Is(err, sipgate.ErrUnauthorized) {
			log.Warn("history fetch unauthorized")
			metrics.ReviewsBuilt.WithLabelValues("unauthorized").Inc()
			return types.YearReview{}, err
		}
		if len(entries) == 0 {
			log.WithError(err).Error("history fetch failed without data")
			metrics.ReviewsBuilt.WithLabelValues("degraded").Inc()
			review := EmptyYear(year)
			if errors.Is(err, sipgate.ErrUnavailable) {
				review.ErrorMessage = unavailableMessage
			} else {
				review.ErrorMessage = err.Error()
			}
			return review, nil
		}
		log.WithError(err).WithField("entries", len(entries)).
			Warn("continuing with partial history")
	}

	events := make([]Event, 0, len(entries))
	for _, entry := range entries {
		if ev, ok := Normalize(entry); ok {
			events = append(events, ev)
		}
	}

	review := Summarize(events, year)
	outcome := "ok"
	if !review.HasData {
		outcome = "empty"
	}
	metrics.ReviewsBuilt.WithLabelValues(outcome).Inc()
	log.WithField("events", len(events)).WithField("has_data", review.HasData).
		Info("year review built")
	return review, nil
}

func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, to
}
