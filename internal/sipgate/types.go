package sipgate

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

const (
	DirectionIncoming = "INCOMING"
	DirectionOutgoing = "OUTGOING"

	EntryTypeCall = "CALL"
	EntryTypeSMS  = "SMS"
	EntryTypeFax  = "FAX"
)

// HistoryEntry is one call/SMS/fax event as the sipgate REST API reports it.
// The engine treats it as read-only input.
type HistoryEntry struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	SourceAlias  string   `json:"sourceAlias"`
	TargetAlias  string   `json:"targetAlias"`
	Type         string   `json:"type"`
	Direction    string   `json:"direction"`
	Created      FlexTime `json:"created"`
	LastModified FlexTime `json:"lastModified"`
}

// Incoming reports whether the entry was received rather than initiated.
func (e HistoryEntry) Incoming() bool {
	return e.Direction == DirectionIncoming
}

// FlexTime decodes the timestamp shapes the provider has been seen to emit:
// RFC3339 strings, epoch milliseconds, or nothing. Unparsable values decode
// to the zero time so the normalizer can drop the record instead of failing
// the whole page.
type FlexTime struct {
	t time.Time
}

func NewFlexTime(t time.Time) FlexTime { return FlexTime{t: t} }

func (f FlexTime) Time() time.Time { return f.t }

func (f FlexTime) IsZero() bool { return f.t.IsZero() }

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.t = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			f.t = time.Time{}
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				f.t = parsed
				return nil
			}
		}
		f.t = time.Time{}
		return nil
	}
	// epoch milliseconds
	millis, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f.t = time.Time{}
		return nil
	}
	f.t = time.UnixMilli(millis).UTC()
	return nil
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.t.Format(time.RFC3339))
}
