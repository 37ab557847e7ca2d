package core

// timestamp.go parses the free-form date/time text found in incident
// exports.
//
// These functions handle the messy reality of exported timestamps:
//   - Multiple date formats (ISO, US, dotted, month names)
//   - Optional time of day in 24h or AM/PM form
//   - 2-digit years
//   - Offsets, which are converted to UTC
//
// Anything the layout list does not cover falls back to dateparse, month
// first and then day first.

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006", "02-Jan-2006",
		"20060102",
	}
	clockLayouts = []string{
		"",
		" 15:04", " 15:04:05", " 15:04:05.999999999",
		" 3:04 PM", " 3:04:05 PM", " 3:04PM", " 3:04:05PM",
		"T15:04", "T15:04:05", "T15:04:05.999999999",
	}
)

var (
	fourDigitTimestampLayouts = withClock(fourDigitYearLayouts)
	twoDigitTimestampLayouts  = withClock(twoDigitYearLayouts)
)

func withClock(dates []string) []string {
	out := make([]string, 0, len(dates)*len(clockLayouts))
	for _, c := range clockLayouts {
		for _, d := range dates {
			out = append(out, d+c)
		}
	}
	return out
}

// ParseTimestamp parses s tolerantly. It returns false for empty or
// unrecognized text and for digit strings that are not yyyymmdd, so
// spreadsheet serials and epoch numbers never become dates.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if isDigits(s) && len(s) != 8 {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	if isDigits(s) {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		// day-first text such as 13/01/2024
		t, err = dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	}
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

const (
	dateLayout         = "2006-01-02"
	dateTimeLayout     = "2006-01-02 15:04:05"
	dateTimeFracLayout = "2006-01-02 15:04:05.000000"
)

// timestampLayout picks one rendering for a whole column: date only when
// every value is midnight, microseconds when any value has a fraction.
func timestampLayout(ts []time.Time) string {
	layout := dateLayout
	for _, t := range ts {
		if t.Nanosecond() != 0 {
			return dateTimeFracLayout
		}
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
			layout = dateTimeLayout
		}
	}
	return layout
}
