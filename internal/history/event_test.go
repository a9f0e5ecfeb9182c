package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-rewind-go/internal/sipgate"
)

func TestNormalizeDropsUnparsableCreated(t *testing.T) {
	_, ok := Normalize(sipgate.HistoryEntry{ID: "x", Type: sipgate.EntryTypeCall})
	assert.False(t, ok)
}

func TestNormalizeDuration(t *testing.T) {
	created := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	ev, ok := Normalize(sipgate.HistoryEntry{
		ID:           "call-1",
		Direction:    sipgate.DirectionIncoming,
		Type:         sipgate.EntryTypeCall,
		Created:      sipgate.NewFlexTime(created),
		LastModified: sipgate.NewFlexTime(created.Add(7*time.Minute + 30*time.Second)),
	})

	require.True(t, ok)
	assert.InDelta(t, 7.5, ev.DurationMinutes, 1e-9)
	assert.True(t, ev.Incoming)
	assert.Equal(t, created, ev.OccurredAt)
}

func TestNormalizeMissingLastModifiedMeansZeroDuration(t *testing.T) {
	created := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	ev, ok := Normalize(sipgate.HistoryEntry{
		ID:      "call-2",
		Created: sipgate.NewFlexTime(created),
	})

	require.True(t, ok)
	assert.Zero(t, ev.DurationMinutes)
}

func TestNormalizeFloorsNegativeDuration(t *testing.T) {
	created := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	ev, ok := Normalize(sipgate.HistoryEntry{
		ID:           "call-3",
		Created:      sipgate.NewFlexTime(created),
		LastModified: sipgate.NewFlexTime(created.Add(-time.Minute)),
	})

	require.True(t, ok)
	assert.Zero(t, ev.DurationMinutes)
}

func TestNormalizePicksOtherPartyAlias(t *testing.T) {
	created := sipgate.NewFlexTime(time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC))

	in, ok := Normalize(sipgate.HistoryEntry{
		ID:          "in",
		Direction:   sipgate.DirectionIncoming,
		SourceAlias: "  Ada Lovelace  ",
		TargetAlias: "Me",
		Created:     created,
	})
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", in.Counterparty)

	out, ok := Normalize(sipgate.HistoryEntry{
		ID:          "out",
		Direction:   sipgate.DirectionOutgoing,
		SourceAlias: "Me",
		TargetAlias: "Grace Hopper",
		Created:     created,
	})
	require.True(t, ok)
	assert.Equal(t, "Grace Hopper", out.Counterparty)
}

func TestNormalizePseudonymIsStable(t *testing.T) {
	created := sipgate.NewFlexTime(time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC))
	entry := sipgate.HistoryEntry{ID: "abc123", Created: created}

	first, ok := Normalize(entry)
	require.True(t, ok)
	require.NotEmpty(t, first.Counterparty)
	assert.Contains(t, placeholderNames, first.Counterparty)

	for i := 0; i < 10; i++ {
		again, ok := Normalize(entry)
		require.True(t, ok)
		assert.Equal(t, first.Counterparty, again.Counterparty)
	}
}

func TestNormalizePseudonymNeverEmpty(t *testing.T) {
	created := sipgate.NewFlexTime(time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC))
	for _, id := range []string{"", "a", "z9", "Ümlaut-id", "0000000000"} {
		ev, ok := Normalize(sipgate.HistoryEntry{ID: id, Created: created})
		require.True(t, ok)
		assert.NotEmpty(t, ev.Counterparty, "id %q", id)
	}
}

func TestHashStringMatchesRollingDefinition(t *testing.T) {
	// h_{i+1} = (h_i << 5) - h_i + ch, wrapped to 32-bit signed
	assert.Equal(t, int32(0), hashString(""))
	assert.Equal(t, int32('a'), hashString("a"))
	assert.Equal(t, int32('a')*31+int32('b'), hashString("ab"))
}

func TestHashStringUsesUTF16CodeUnits(t *testing.T) {
	// one code unit per BMP rune, not one per UTF-8 byte
	assert.Equal(t, int32('ü'), hashString("ü"))
	assert.Equal(t, int32('ü')*31+int32('b'), hashString("üb"))
	// astral runes hash as their surrogate pair
	assert.Equal(t, int32(0xD83D)*31+int32(0xDE00), hashString("\U0001F600"))
}
