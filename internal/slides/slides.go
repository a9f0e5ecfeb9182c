package slides

import (
	"fmt"
	"strings"

	"call-rewind-go/internal/types"
)

// Slide is one card of the recap story. The frontend renders slides in
// order; everything here is display data, nothing feeds back into the engine.
type Slide struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle,omitempty"`
	Statistic      string   `json:"statistic,omitempty"`
	Description    string   `json:"description,omitempty"`
	Footer         string   `json:"footer,omitempty"`
	Accent         string   `json:"accent"`
	ListItems      []string `json:"listItems,omitempty"`
	Bars           []Bar    `json:"bars,omitempty"`
	BarsLabel      string   `json:"barsLabel,omitempty"`
	Animated       bool     `json:"animated,omitempty"`
	AnimationDelay int      `json:"animationDelay,omitempty"`
}

type Bar struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

var gradients = []string{
	"from-[#090979] via-[#7b2ff7] to-[#f953c6]",
	"from-[#0f172a] via-[#4f46e5] to-[#ec4899]",
	"from-[#111827] via-[#2563eb] to-[#22d3ee]",
	"from-[#1f2937] via-[#f97316] to-[#ef4444]",
	"from-[#0f172a] via-[#14b8a6] to-[#84cc16]",
}

// Build turns a review into the ordered slide sequence: intro, minutes,
// peak month, then the optional marathon-call, SMS/fax, and busiest-hour
// slides woven in around the top-collaborators finale.
func Build(review types.YearReview, displayName string) []Slide {
	firstName := strings.SplitN(strings.TrimSpace(displayName), " ", 2)[0]
	if firstName == "" {
		firstName = "You"
	}

	peak := peakMonth(review.MonthlyBreakdown)

	topList := make([]string, 0, len(review.TopContacts))
	for _, contact := range review.TopContacts {
		topList = append(topList, fmt.Sprintf("%s - %d calls", contact.Name, contact.Count))
	}

	monthlyBars := make([]Bar, 0, len(review.MonthlyBreakdown))
	for _, m := range review.MonthlyBreakdown {
		monthlyBars = append(monthlyBars, Bar{Label: m.Month, Value: m.Calls})
	}

	var hourlyBars []Bar
	anyBusinessHourCalls := false
	for _, h := range review.HourlyBreakdown {
		if h.Hour >= 8 && h.Hour <= 18 {
			hourlyBars = append(hourlyBars, Bar{Label: fmt.Sprintf("%d:00", h.Hour), Value: h.Calls})
			if h.Calls > 0 {
				anyBusinessHourCalls = true
			}
		}
	}

	intro := Slide{
		ID:          "intro",
		Title:       fmt.Sprintf("%s, your PBX made waves in %d.", firstName, review.Year),
		Subtitle:    "Tap through to relive the most iconic call moments.",
		Statistic:   fmt.Sprintf("%d calls", review.Totals.All),
		Description: "Every connection, answered or dialed, counted toward this number.",
		Footer:      "Slide 1",
		Accent:      gradients[0],
		Animated:    true,
	}
	if !review.HasData {
		intro.Subtitle = "Make your first call to unlock the full story."
		intro.Statistic = "-"
		intro.Description = "We'll craft your recap once sipgate starts sharing call history."
	}

	minutes := Slide{
		ID:        "minutes",
		Title:     "Total minutes on the line",
		Subtitle:  "From hello to goodbye, every second mattered.",
		Statistic: fmt.Sprintf("%d min", review.Totals.Minutes),
		Description: fmt.Sprintf("Inbound vs outbound split: %d inbound / %d outbound calls.",
			review.Totals.Inbound, review.Totals.Outbound),
		Footer:         "Slide 2",
		Accent:         gradients[1],
		Animated:       true,
		AnimationDelay: 150,
	}
	if !review.HasData {
		minutes.Statistic = "-"
		minutes.Description = "Place some calls to unlock this stat."
	}

	busiest := Slide{
		ID:             "busiest",
		Title:          fmt.Sprintf("Your peak month was %s", peak.Month),
		Subtitle:       fmt.Sprintf("It packed %d calls into 30-ish days.", peak.Calls),
		Statistic:      fmt.Sprintf("%d", peak.Calls),
		Description:    "Keep the lines buzzing to find your busiest streak.",
		Footer:         "Slide 3",
		Accent:         gradients[2],
		Bars:           monthlyBars,
		BarsLabel:      "Calls per month",
		Animated:       true,
		AnimationDelay: 300,
	}
	if review.HasData && review.LongestStreak.Days > 0 {
		busiest.Description = fmt.Sprintf("Longest streak: %d days straight.", review.LongestStreak.Days)
	}

	finale := Slide{
		ID:          "contacts",
		Title:       "Top collaborators await",
		Description: "Once you start calling, we'll highlight your go-to teammates.",
		Footer:      "Slide 5",
		Accent:      gradients[3],
	}
	if len(topList) > 0 {
		finale = Slide{
			ID:          "top_collabs",
			Title:       "Your top collaborators",
			Subtitle:    "You made room for more than one favorite.",
			Description: fmt.Sprintf("They owned %d.", review.Year),
			ListItems:   topList,
			Footer:      "Slide 5",
			Accent:      gradients[3],
		}
	}

	out := []Slide{intro, minutes, busiest, finale}

	if review.SMSReceived > 0 || review.FaxReceived > 0 {
		out = insert(out, 4, commsSlide(review, len(out)))
	}
	if anyBusinessHourCalls {
		out = insert(out, len(out)-1, Slide{
			ID:             "busiest-hour",
			Title:          "When the switchboard surged",
			Subtitle:       fmt.Sprintf("Peak hour: %d:00 with %d calls", review.BusiestHour.Hour, review.BusiestHour.Count),
			Description:    "This was the exact moment everyone rang at once.",
			Bars:           hourlyBars,
			BarsLabel:      "Calls per hour",
			Footer:         "Slide 6",
			Accent:         gradients[(len(out)+3)%len(gradients)],
			Animated:       true,
			AnimationDelay: 380,
		})
	}
	if review.LongestCall != nil {
		out = insert(out, 3, Slide{
			ID:             "longest-call",
			Title:          "The marathon call",
			Statistic:      fmt.Sprintf("%d min", review.LongestCall.Minutes),
			Subtitle:       fmt.Sprintf("with %s", review.LongestCall.Contact),
			Description:    "Deep-dive conversation of the year",
			Footer:         "Slide 4",
			Accent:         gradients[(len(out)+2)%len(gradients)],
			Animated:       true,
			AnimationDelay: 250,
		})
	}

	return out
}

func commsSlide(review types.YearReview, position int) Slide {
	extras := make([]string, 0, 2)
	signals := 0
	if review.SMSReceived > 0 {
		extras = append(extras, fmt.Sprintf("%d SMS", review.SMSReceived))
		signals = review.SMSReceived
	}
	if review.FaxReceived > 0 {
		extras = append(extras, fmt.Sprintf("%d faxes", review.FaxReceived))
		if signals == 0 {
			signals = review.FaxReceived
		}
	}
	description := "SMS kept the chatter flowing beyond calls - but hey, at least you didn't go full fax."
	if review.FaxReceived > 0 {
		description = "Seriously? Still rocking fax machines? Your PBX humored every retro request."
	}
	return Slide{
		ID:             "comms",
		Title:          "Signals in every format",
		Statistic:      fmt.Sprintf("%d signals", signals),
		Subtitle:       strings.Join(extras, " · "),
		Description:    description,
		Footer:         "Slide 8",
		Accent:         gradients[(position+1)%len(gradients)],
		Animated:       true,
		AnimationDelay: 350,
	}
}

// peakMonth picks the month with the most calls; the earliest month wins
// ties.
func peakMonth(monthly []types.MonthCount) types.MonthCount {
	if len(monthly) == 0 {
		return types.MonthCount{Month: "-"}
	}
	best := monthly[0]
	for _, m := range monthly[1:] {
		if m.Calls > best.Calls {
			best = m
		}
	}
	return best
}

func insert(slides []Slide, idx int, s Slide) []Slide {
	if idx < 0 {
		idx = 0
	}
	if idx > len(slides) {
		idx = len(slides)
	}
	out := make([]Slide, 0, len(slides)+1)
	out = append(out, slides[:idx]...)
	out = append(out, s)
	out = append(out, slides[idx:]...)
	return out
}
