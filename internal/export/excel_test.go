package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"call-rewind-go/internal/history"
	"call-rewind-go/internal/types"
)

func TestWriteWorkbook(t *testing.T) {
	review := history.EmptyYear(2025)
	review.HasData = true
	review.Totals = types.Totals{All: 42, Inbound: 30, Outbound: 12, Minutes: 300}
	review.TopContacts = []types.ContactStat{{Name: "Ada", Count: 9, TotalMinutes: 55}}
	review.LongestCall = &types.LongestCall{Minutes: 80, Contact: "Ada"}

	f, err := WriteWorkbook(review)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	// reopen and verify a few cells survived the round trip
	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	title, err := reopened.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "PBX Year in Review 2025", title)

	total, err := reopened.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "42", total)

	rows, err := reopened.GetRows(sheetName)
	require.NoError(t, err)
	var sawContact bool
	for _, row := range rows {
		if len(row) >= 2 && row[0] == "Ada" && row[1] == "9" {
			sawContact = true
		}
	}
	assert.True(t, sawContact, "top contact row missing")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "year-in-review-2025.xlsx", Filename(2025))
}
