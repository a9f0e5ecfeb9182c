package history

import (
	"strings"
	"time"
	"unicode/utf16"

	"call-rewind-go/internal/sipgate"
)

// placeholderNames is the fixed rotation used when an entry carries no alias
// for the other party. The index is derived from the entry id, so the same
// record maps to the same name on every run.
var placeholderNames = []string{
	"An anonymous llama",
	"Mystery caller",
	"Unnamed legend",
	"Secret hotline",
	"A stealthy penguin",
	"Shadowy sparrow",
	"Incognito otter",
	"Low-key lynx",
	"Secretive badger",
	"Silent hedgehog",
}

// Event is the engine's validated view of one history entry.
type Event struct {
	OccurredAt      time.Time
	DurationMinutes float64
	Incoming        bool
	Kind            string
	Counterparty    string
}

// Normalize converts one raw entry into an Event. The second return value is
// false when the entry must be dropped (unparsable creation timestamp).
// Durations are floored at zero so clock skew between created and
// lastModified cannot produce negative minutes.
func Normalize(entry sipgate.HistoryEntry) (Event, bool) {
	created := entry.Created.Time()
	if created.IsZero() {
		return Event{}, false
	}

	last := created
	if t := entry.LastModified.Time(); !t.IsZero() {
		last = t
	}
	minutes := last.Sub(created).Minutes()
	if minutes < 0 {
		minutes = 0
	}

	return Event{
		OccurredAt:      created,
		DurationMinutes: minutes,
		Incoming:        entry.Incoming(),
		Kind:            entry.Type,
		Counterparty:    counterpartyName(entry),
	}, true
}

// counterpartyName picks the other-party alias (source side for incoming,
// target side for outgoing) or, when blank, a stable pseudonym hashed from
// the entry id.
func counterpartyName(entry sipgate.HistoryEntry) string {
	alias := entry.TargetAlias
	if entry.Incoming() {
		alias = entry.SourceAlias
	}
	if trimmed := strings.TrimSpace(alias); trimmed != "" {
		return trimmed
	}
	idx := abs32(hashString(entry.ID)) % int64(len(placeholderNames))
	return placeholderNames[idx]
}

// hashString is the 32-bit rolling string hash (h = h*31 + ch expressed as
// shift-and-subtract, wrapping at 32 bits signed) over the string's UTF-16
// code units. Reproducibility across runs matters here, not collision
// resistance.
func hashString(s string) int32 {
	var hash int32
	for _, u := range utf16.Encode([]rune(s)) {
		hash = (hash << 5) - hash + int32(u)
	}
	return hash
}

func abs32(v int32) int64 {
	n := int64(v)
	if n < 0 {
		return -n
	}
	return n
}
