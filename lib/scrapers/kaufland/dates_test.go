package kaufland

import (
	"dealcrawl-backend/lib/timezone"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractValidRange(t *testing.T) {
	now := timezone.Now()
	window := ExtractValidRange("Gültig vom 17.04. bis 23.04.", now)
	require.True(t, window.Known())

	year := now.Year()
	require.Equal(t, time.Date(year, time.April, 17, 0, 0, 0, 0, now.Location()), *window.From)
	require.Equal(t, time.Date(year, time.April, 23, 0, 0, 0, 0, now.Location()), *window.Until)
}

func TestExtractValidRangeVariants(t *testing.T) {
	now := timezone.Date(2024, time.May, 2)

	cases := []struct {
		text        string
		expectFrom  string
		expectUntil string
	}{
		{text: "Gültig vom 17.04. bis 23.04.", expectFrom: "2024-04-17", expectUntil: "2024-04-23"},
		{text: "gültig VOM 2.5. BIS 8.5.", expectFrom: "2024-05-02", expectUntil: "2024-05-08"},
		{text: "Angebote gültig vom 29.04.bis 04.05. in allen Filialen", expectFrom: "2024-04-29", expectUntil: "2024-05-04"},
		{text: "vom  06 . 05 .  bis  11 . 05", expectFrom: "2024-05-06", expectUntil: "2024-05-11"},
		{text: "Gültig vom 29.02. bis 02.03.", expectFrom: "2024-02-29", expectUntil: "2024-03-02"},
	}

	for _, test := range cases {
		window := ExtractValidRange(test.text, now)
		require.True(t, window.Known(), test.text)
		require.Equal(t, test.expectFrom, window.From.Format(time.DateOnly), test.text)
		require.Equal(t, test.expectUntil, window.Until.Format(time.DateOnly), test.text)
	}
}

func TestExtractValidRangeUnknown(t *testing.T) {
	now := timezone.Date(2023, time.May, 2)

	cases := []string{
		"no dates here",
		"",
		"Gültig ab 17.04.",
		"Gültig vom 17.04.",
		"Gültig vom 32.04. bis 23.04.",
		"Gültig vom 17.13. bis 23.04.",
		"Gültig vom 31.02. bis 03.03.",
		// 2023 is not a leap year
		"Gültig vom 29.02. bis 02.03.",
		"Gültig vom aa.bb. bis cc.dd.",
	}

	for _, text := range cases {
		window := ExtractValidRange(text, now)
		require.Nil(t, window.From, text)
		require.Nil(t, window.Until, text)
		require.False(t, window.Known(), text)
	}
}

func TestExtractValidRangeYearBoundary(t *testing.T) {
	cases := []struct {
		now         time.Time
		expectFrom  string
		expectUntil string
	}{
		{
			now:         timezone.Date(2024, time.December, 27),
			expectFrom:  "2024-12-28",
			expectUntil: "2025-01-03",
		},
		{
			now:         timezone.Date(2024, time.December, 30),
			expectFrom:  "2024-12-28",
			expectUntil: "2025-01-03",
		},
		{
			now:         timezone.Date(2025, time.January, 2),
			expectFrom:  "2024-12-28",
			expectUntil: "2025-01-03",
		},
	}

	for _, test := range cases {
		window := ExtractValidRange("Gültig vom 28.12. bis 03.01.", test.now)
		require.True(t, window.Known())
		require.Equal(t, test.expectFrom, window.From.Format(time.DateOnly))
		require.Equal(t, test.expectUntil, window.Until.Format(time.DateOnly))
	}
}
