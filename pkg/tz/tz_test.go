package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDateCrossesMidnight(t *testing.T) {
	kolkata, err := Load("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC is already the next day in India (UTC+05:30).
	instant := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-10", LocalDate(instant, kolkata))
	assert.Equal(t, "2026-03-09", LocalDate(instant, time.UTC))
	assert.Equal(t, "10 Mar 2026, 01:30 AM", FormatDateTime(instant, kolkata))
}

func TestLoadEmptyIsUTC(t *testing.T) {
	loc, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = Load("Mars/Olympus")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	for _, bad := range []string{"9:30", "24:00", "12:60", "noon", ""} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestWorkdaysBetween(t *testing.T) {
	weekends := []time.Weekday{time.Saturday, time.Sunday}

	// Fri 2026-03-06 .. Tue 2026-03-10
	days, err := WorkdaysBetween("2026-03-06", "2026-03-10", weekends)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-06", "2026-03-09", "2026-03-10"}, days)

	days, err = WorkdaysBetween("2026-03-10", "2026-03-06", weekends)
	require.NoError(t, err)
	assert.Empty(t, days)

	_, err = WorkdaysBetween("2026-3-6", "2026-03-10", weekends)
	assert.Error(t, err)
}

func TestMonthBounds(t *testing.T) {
	from, to := MonthBounds(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, "2024-02-01", from)
	assert.Equal(t, "2024-02-29", to)
}

func TestAt(t *testing.T) {
	loc, err := Load("Asia/Kolkata")
	require.NoError(t, err)

	at, err := At("2026-03-09", 9*60+30, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 4, 0, 0, 0, time.UTC), at.UTC())
}
