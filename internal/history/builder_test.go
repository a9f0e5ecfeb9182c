package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-rewind-go/internal/sipgate"
)

func TestBuildRejectsEmptyCredential(t *testing.T) {
	b := NewBuilder(&fakePager{errAt: -1})

	_, err := b.Build(context.Background(), "   ", 2025)

	assert.ErrorIs(t, err, sipgate.ErrUnauthorized)
}

func TestBuildPropagatesUnauthorized(t *testing.T) {
	b := NewBuilder(&fakePager{err: sipgate.ErrUnauthorized, errAt: 0})

	_, err := b.Build(context.Background(), "token", 2025)

	assert.ErrorIs(t, err, sipgate.ErrUnauthorized)
}

func TestBuildDegradesOnUnavailableUpstream(t *testing.T) {
	b := NewBuilder(&fakePager{err: sipgate.ErrUnavailable, errAt: 0})

	review, err := b.Build(context.Background(), "token", 2025)

	require.NoError(t, err)
	assert.False(t, review.HasData)
	assert.Equal(t, 2025, review.Year)
	assert.Equal(t, unavailableMessage, review.ErrorMessage)
}

func TestBuildDegradesWithGenericMessage(t *testing.T) {
	b := NewBuilder(&fakePager{err: errors.New("dns lookup failed"), errAt: 0})

	review, err := b.Build(context.Background(), "token", 2025)

	require.NoError(t, err)
	assert.False(t, review.HasData)
	assert.Contains(t, review.ErrorMessage, "dns lookup failed")
}

func TestBuildKeepsPartialData(t *testing.T) {
	b := NewBuilder(&fakePager{
		pages: [][]sipgate.HistoryEntry{makePage(50, "p0")},
		err:   errors.New("connection reset"),
		errAt: 1,
	})

	review, err := b.Build(context.Background(), "token", 2025)

	require.NoError(t, err)
	assert.True(t, review.HasData)
	assert.Equal(t, 50, review.Totals.All)
	assert.Empty(t, review.ErrorMessage)
}

func TestBuildDropsMalformedRecords(t *testing.T) {
	page := makePage(3, "good")
	page = append(page, sipgate.HistoryEntry{ID: "bad"}) // no created timestamp
	b := NewBuilder(&fakePager{pages: [][]sipgate.HistoryEntry{page}, errAt: -1})

	review, err := b.Build(context.Background(), "token", 2025)

	require.NoError(t, err)
	assert.Equal(t, 3, review.Totals.All)
}

func TestBuildEmptyYearWhenNoEvents(t *testing.T) {
	b := NewBuilder(&fakePager{errAt: -1})

	review, err := b.Build(context.Background(), "token", 2024)

	require.NoError(t, err)
	assert.False(t, review.HasData)
	assert.Equal(t, EmptyYear(2024), review)
}

func TestYearBounds(t *testing.T) {
	from, to := yearBounds(2025)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), to)
}
