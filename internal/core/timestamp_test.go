package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"iso date", "2024-01-15", date(2024, 1, 15, 0, 0, 0)},
		{"iso datetime", "2024-01-15 09:30:00", date(2024, 1, 15, 9, 30, 0)},
		{"iso with T", "2024-01-15T09:30", date(2024, 1, 15, 9, 30, 0)},
		{"rfc3339 utc", "2024-01-15T09:30:00Z", date(2024, 1, 15, 9, 30, 0)},
		{"rfc3339 offset converted", "2024-01-15T09:30:00+02:00", date(2024, 1, 15, 7, 30, 0)},
		{"us date", "01/15/2024", date(2024, 1, 15, 0, 0, 0)},
		{"us short date", "1/5/2024", date(2024, 1, 5, 0, 0, 0)},
		{"us with pm clock", "01/15/2024 2:30 PM", date(2024, 1, 15, 14, 30, 0)},
		{"us with 24h clock", "1/15/2024 17:45", date(2024, 1, 15, 17, 45, 0)},
		{"month name", "Jan 15, 2024", date(2024, 1, 15, 0, 0, 0)},
		{"day month year", "15-Jan-2024", date(2024, 1, 15, 0, 0, 0)},
		{"compact", "20240115", date(2024, 1, 15, 0, 0, 0)},
		{"two digit year", "1/5/24", date(2024, 1, 5, 0, 0, 0)},
		{"two digit year previous century", "1/5/99", date(1999, 1, 5, 0, 0, 0)},
		{"surrounding space", "  2024-01-15  ", date(2024, 1, 15, 0, 0, 0)},
		{"fallback parser", "Mon Jan 15 09:30:00 2024", date(2024, 1, 15, 9, 30, 0)},
		{"day first when month overflows", "13/01/2024", date(2024, 1, 13, 0, 0, 0)},
		{"day first with clock", "25/12/2023 18:05", date(2023, 12, 25, 18, 5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			require.True(t, ok, "ParseTimestamp(%q) failed", tt.in)
			assert.True(t, tt.want.Equal(got), "ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		})
	}
}

func TestParseTimestamp_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "45123", "1700000000", "not a date", "2024-13-45"} {
		t.Run(in, func(t *testing.T) {
			_, ok := ParseTimestamp(in)
			assert.False(t, ok, "ParseTimestamp(%q) should fail", in)
		})
	}
}

func TestTimestampLayout(t *testing.T) {
	midnight := date(2024, 1, 15, 0, 0, 0)
	clock := date(2024, 1, 15, 9, 30, 0)
	frac := time.Date(2024, 1, 15, 9, 30, 0, 250000000, time.UTC)

	assert.Equal(t, "2006-01-02", timestampLayout([]time.Time{midnight, midnight}))
	assert.Equal(t, "2006-01-02 15:04:05", timestampLayout([]time.Time{midnight, clock}))
	assert.Equal(t, "2006-01-02 15:04:05.000000", timestampLayout([]time.Time{clock, frac, midnight}))
}
