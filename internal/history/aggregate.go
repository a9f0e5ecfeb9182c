package history

import (
	"math"
	"sort"
	"time"

	"call-rewind-go/internal/sipgate"
	"call-rewind-go/internal/types"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

const topContactCount = 3

// Summarize folds the materialized event set into a YearReview in a single
// pass. It is a pure function: running it twice on the same slice yields the
// same summary.
func Summarize(events []Event, year int) types.YearReview {
	if len(events) == 0 {
		return EmptyYear(year)
	}

	var (
		inbound            int
		outbound           int
		totalMinutes       float64
		longestCallMinutes float64
		longestCallContact string
		smsReceived        int
		faxReceived        int
	)

	monthly := make([]int, 12)
	hourly := make([]int, 24)
	dayKeys := map[int64]struct{}{}
	contacts := map[string]*types.ContactStat{}
	var contactOrder []string

	for _, ev := range events {
		totalMinutes += ev.DurationMinutes

		if ev.Incoming {
			inbound++
		} else {
			outbound++
		}

		if ev.Incoming && ev.Kind == sipgate.EntryTypeSMS {
			smsReceived++
		}
		if ev.Incoming && ev.Kind == sipgate.EntryTypeFax {
			faxReceived++
		}

		if month := int(ev.OccurredAt.Month()) - 1; month >= 0 && month < 12 {
			monthly[month]++
		}
		hourly[ev.OccurredAt.Hour()]++

		dayKeys[dayKey(ev.OccurredAt)] = struct{}{}

		stat, ok := contacts[ev.Counterparty]
		if !ok {
			stat = &types.ContactStat{Name: ev.Counterparty}
			contacts[ev.Counterparty] = stat
			contactOrder = append(contactOrder, ev.Counterparty)
		}
		stat.Count++
		stat.TotalMinutes += ev.DurationMinutes

		// strictly greater: the first event to reach the max wins, and an
		// all-zero-duration year reports no longest call at all
		if ev.DurationMinutes > longestCallMinutes {
			longestCallMinutes = ev.DurationMinutes
			longestCallContact = ev.Counterparty
		}
	}

	monthlyBreakdown := make([]types.MonthCount, 12)
	for i, label := range monthLabels {
		monthlyBreakdown[i] = types.MonthCount{Month: label, Calls: monthly[i]}
	}

	hourlyBreakdown := make([]types.HourCount, 24)
	for hour, calls := range hourly {
		hourlyBreakdown[hour] = types.HourCount{Hour: hour, Calls: calls}
	}

	busiestIdx := indexOfMax(hourly)

	topContacts := make([]types.ContactStat, 0, len(contactOrder))
	for _, name := range contactOrder {
		topContacts = append(topContacts, *contacts[name])
	}
	// count descending; SliceStable keeps first-seen order among equal counts
	sort.SliceStable(topContacts, func(i, j int) bool {
		return topContacts[i].Count > topContacts[j].Count
	})
	if len(topContacts) > topContactCount {
		topContacts = topContacts[:topContactCount]
	}

	review := types.YearReview{
		Year:    year,
		HasData: true,
		Totals: types.Totals{
			All:      len(events),
			Inbound:  inbound,
			Outbound: outbound,
			Minutes:  int(math.Round(totalMinutes)),
		},
		MonthlyBreakdown: monthlyBreakdown,
		BusiestHour:      types.BusiestHour{Hour: busiestIdx, Count: hourly[busiestIdx]},
		HourlyBreakdown:  hourlyBreakdown,
		LongestStreak:    longestStreak(dayKeys),
		TopContacts:      topContacts,
		SMSReceived:      smsReceived,
		FaxReceived:      faxReceived,
	}
	if longestCallMinutes > 0 {
		review.LongestCall = &types.LongestCall{
			Minutes: int(math.Round(longestCallMinutes)),
			Contact: longestCallContact,
		}
	}
	return review
}

// EmptyYear is the zero-event sentinel: hasData=false, zero-filled buckets,
// no contacts, no longest call.
func EmptyYear(year int) types.YearReview {
	monthly := make([]types.MonthCount, 12)
	for i, label := range monthLabels {
		monthly[i] = types.MonthCount{Month: label}
	}
	hourly := make([]types.HourCount, 24)
	for hour := range hourly {
		hourly[hour] = types.HourCount{Hour: hour}
	}
	return types.YearReview{
		Year:             year,
		HasData:          false,
		MonthlyBreakdown: monthly,
		HourlyBreakdown:  hourly,
		TopContacts:      []types.ContactStat{},
	}
}

// dayKey collapses a timestamp to its UTC epoch day.
func dayKey(t time.Time) int64 {
	return t.Unix() / 86400
}

func dateFromDayKey(key int64) string {
	return time.Unix(key*86400, 0).UTC().Format("2006-01-02")
}

// longestStreak finds the longest run of consecutive day keys. The first
// maximal run encountered in ascending order wins, so ties resolve to the
// earliest-ending streak.
func longestStreak(daySet map[int64]struct{}) types.Streak {
	days := make([]int64, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	var bestLen, curLen int
	var bestEnd, curEnd int64
	var prev int64
	havePrev := false

	for _, day := range days {
		if havePrev && day == prev+1 {
			curLen++
			curEnd = day
		} else {
			curLen = 1
			curEnd = day
		}
		if curLen > bestLen {
			bestLen = curLen
			bestEnd = curEnd
		}
		prev = day
		havePrev = true
	}

	streak := types.Streak{Days: bestLen}
	if bestLen > 0 {
		streak.EndedOn = dateFromDayKey(bestEnd)
	}
	return streak
}

// indexOfMax returns the lowest index holding the maximum value.
func indexOfMax(values []int) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
