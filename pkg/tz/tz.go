// Package tz holds the calendar and time-zone helpers.
//
// The database stores instants in UTC and calendar days as "YYYY-MM-DD"
// strings. Everything that depends on "which day is it" (check-in, lateness,
// leave day counts, reminders) converts through the configured office
// location first.
package tz

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // office zones must resolve in minimal containers
)

// DateLayout is the storage and wire format of a calendar day.
const DateLayout = "2006-01-02"

// DisplayLayout is the human readable date-time used in notifications and exports.
const DisplayLayout = "02 Jan 2006, 03:04 PM"

// Load resolves an IANA zone name. An empty name means UTC.
func Load(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

// LocalDate returns the calendar day of t in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Today is LocalDate(now, loc).
func Today(loc *time.Location, now time.Time) string {
	return LocalDate(now, loc)
}

// FormatDateTime renders t for people, in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}

// ParseDate parses a "YYYY-MM-DD" day at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// At returns the instant of day ("YYYY-MM-DD") + minutes past midnight in loc.
func At(day string, minutes int, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(day)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}

// DateRange lists every day from..to inclusive. It returns nil when to is before from.
func DateRange(from, to string) ([]string, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days, nil
}

// IsWeekend reports whether day falls on one of the weekend weekdays.
func IsWeekend(day string, weekends []time.Weekday) bool {
	d, err := ParseDate(day)
	if err != nil {
		return false
	}
	for _, w := range weekends {
		if d.Weekday() == w {
			return true
		}
	}
	return false
}

// WorkdaysBetween lists the non-weekend days of from..to inclusive.
func WorkdaysBetween(from, to string, weekends []time.Weekday) ([]string, error) {
	days, err := DateRange(from, to)
	if err != nil {
		return nil, err
	}
	work := days[:0]
	for _, d := range days {
		if !IsWeekend(d, weekends) {
			work = append(work, d)
		}
	}
	return work, nil
}

// MonthBounds returns the first and last day of the month containing t in loc.
func MonthBounds(t time.Time, loc *time.Location) (string, string) {
	local := t.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// Year returns the calendar year of a "YYYY-MM-DD" day.
func Year(day string) (int, error) {
	d, err := ParseDate(day)
	if err != nil {
		return 0, err
	}
	return d.Year(), nil
}
