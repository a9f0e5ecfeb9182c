package history

import (
	"context"
	"errors"
	"time"

	"call-rewind-go/internal/logger"
	"call-rewind-go/internal/metrics"
	"call-rewind-go/internal/sipgate"
)

const (
	// pageSize is the fixed chunk requested per round trip.
	pageSize = 50
	// maxEntries caps the total records materialized for one review.
	maxEntries = 6000
)

// Pager is the transport collaborator that serves bounded pages of raw
// history entries. *sipgate.Client satisfies it.
type Pager interface {
	FetchHistoryPage(ctx context.Context, token string, from, to time.Time, limit, offset int) ([]sipgate.HistoryEntry, error)
}

// fetchState names the exit conditions of the pagination loop.
type fetchState int

const (
	stateFetching fetchState = iota
	stateExhausted
	stateCapped
	stateUnauthorized
	statePartial
)

// FetchAll pages through the window strictly sequentially (each offset
// depends on the previous page) until the data runs out, the cap is hit, or
// the transport fails. On an authorization failure the error is returned
// with no entries; on any other failure the entries gathered so far are
// returned together with the terminal error so the caller can decide whether
// partial data is good enough.
func FetchAll(ctx context.Context, pager Pager, token string, from, to time.Time) ([]sipgate.HistoryEntry, error) {
	log := logger.New().WithComponent("history.fetcher")

	var entries []sipgate.HistoryEntry
	var failure error
	offset := 0
	state := stateFetching

	for state == stateFetching {
		page, err := pager.FetchHistoryPage(ctx, token, from, to, pageSize, offset)
		if err != nil {
			if errors.Is(err, sipgate.ErrUnauthorized) {
				state = stateUnauthorized
				failure = err
				break
			}
			log.WithField("offset", offset).WithField("error", err.Error()).
				Warn("history pagination failed, keeping partial data")
			state = statePartial
			failure = err
			break
		}
		metrics.HistoryPagesFetched.Inc()
		entries = append(entries, page...)

		switch {
		case len(entries) >= maxEntries:
			state = stateCapped
		case len(page) < pageSize:
			state = stateExhausted
		default:
			offset += pageSize
		}
	}

	if state == stateUnauthorized {
		return nil, failure
	}
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	log.WithField("entries", len(entries)).WithField("state", state.String()).
		Debug("history fetch finished")
	return entries, failure
}

func (s fetchState) String() string {
	switch s {
	case stateFetching:
		return "fetching"
	case stateExhausted:
		return "exhausted"
	case stateCapped:
		return "capped"
	case stateUnauthorized:
		return "unauthorized"
	case statePartial:
		return "partial"
	}
	return "unknown"
}
