package types

// ContactStat accumulates how often one counterparty showed up and for how long.
type ContactStat struct {
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	TotalMinutes float64 `json:"totalMinutes"`
}

type Totals struct {
	All      int `json:"all"`
	Inbound  int `json:"inbound"`
	Outbound int `json:"outbound"`
	Minutes  int `json:"minutes"`
}

type MonthCount struct {
	Month string `json:"month"`
	Calls int    `json:"calls"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Calls int `json:"calls"`
}

type BusiestHour struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Streak is the longest run of consecutive calendar days with at least one event.
// EndedOn is the UTC date (YYYY-MM-DD) of the last day in the run, empty when
// there were no events at all.
type Streak struct {
	Days    int    `json:"days"`
	EndedOn string `json:"endedOn,omitempty"`
}

type LongestCall struct {
	Minutes int    `json:"minutes"`
	Contact string `json:"contact"`
}

// YearReview is the complete aggregated recap for one user and one calendar
// year. It is built once per request and never mutated afterwards; the share
// store persists a sanitized copy and the slide builder reads it as-is.
type YearReview struct {
	Year             int           `json:"year"`
	HasData          bool          `json:"hasData"`
	Totals           Totals        `json:"totals"`
	MonthlyBreakdown []MonthCount  `json:"monthlyBreakdown"`
	BusiestHour      BusiestHour   `json:"busiestHour"`
	HourlyBreakdown  []HourCount   `json:"hourlyBreakdown"`
	LongestStreak    Streak        `json:"longestStreak"`
	TopContacts      []ContactStat `json:"topContacts"`
	LongestCall      *LongestCall  `json:"longestCall,omitempty"`
	SMSReceived      int           `json:"smsReceived"`
	FaxReceived      int           `json:"faxReceived"`
	ErrorMessage     string        `json:"errorMessage,omitempty"`
}
