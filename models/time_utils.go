package models

import "time"

// DefaultPeriodDays is used for unknown period codes.
const DefaultPeriodDays = 365

// PeriodDays converts a period code into the number of calendar days to look back.
func PeriodDays(period string) int {
	switch period {
	case "3m":
		return 90
	case "6m":
		return 180
	case "1y":
		return 365
	case "3y":
		return 365 * 3
	case "5y":
		return 365 * 5
	case "10y":
		return 365 * 10
	}
	return DefaultPeriodDays
}

// DateRangeFor returns the window ending today (UTC) that covers the period.
func DateRangeFor(period string, now time.Time) DateRange {
	end := now.UTC()
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return DateRange{
		Start: end.AddDate(0, 0, -PeriodDays(period)),
		End:   end,
	}
}
