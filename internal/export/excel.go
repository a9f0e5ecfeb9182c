package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"call-rewind-go/internal/types"
)

const sheetName = "Year in Review"

// WriteWorkbook renders a review as a spreadsheet for download: a totals
// block, the monthly and hourly breakdowns, and the top contacts.
func WriteWorkbook(review types.YearReview) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]any{
		{fmt.Sprintf("PBX Year in Review %d", review.Year)},
		{},
		{"Total events", review.Totals.All},
		{"Inbound", review.Totals.Inbound},
		{"Outbound", review.Totals.Outbound},
		{"Minutes on the line", review.Totals.Minutes},
		{"SMS received", review.SMSReceived},
		{"Faxes received", review.FaxReceived},
		{"Busiest hour", fmt.Sprintf("%d:00 (%d calls)", review.BusiestHour.Hour, review.BusiestHour.Count)},
		{"Longest streak (days)", review.LongestStreak.Days},
	}
	if review.LongestStreak.EndedOn != "" {
		rows = append(rows, []any{"Streak ended on", review.LongestStreak.EndedOn})
	}
	if review.LongestCall != nil {
		rows = append(rows, []any{"Longest call", fmt.Sprintf("%d min with %s", review.LongestCall.Minutes, review.LongestCall.Contact)})
	}

	rows = append(rows, []any{}, []any{"Month", "Calls"})
	for _, m := range review.MonthlyBreakdown {
		rows = append(rows, []any{m.Month, m.Calls})
	}

	rows = append(rows, []any{}, []any{"Hour", "Calls"})
	for _, h := range review.HourlyBreakdown {
		rows = append(rows, []any{fmt.Sprintf("%d:00", h.Hour), h.Calls})
	}

	rows = append(rows, []any{}, []any{"Contact", "Calls", "Minutes"})
	for _, contact := range review.TopContacts {
		rows = append(rows, []any{contact.Name, contact.Count, contact.TotalMinutes})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	return f, nil
}

// Filename suggests a download name for the workbook.
func Filename(year int) string {
	return fmt.Sprintf("year-in-review-%d.xlsx", year)
}
