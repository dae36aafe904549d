package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/missionctl/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayKey returns the YYYY-MM-DD key of t's calendar day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateFormat)
}

// ParseDayKey parses a YYYY-MM-DD key to midnight in loc. Keys that do not
// round-trip (e.g. 2026-02-30) are rejected.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// ValidDayKey reports whether key is a real calendar day in YYYY-MM-DD form.
func ValidDayKey(key string) bool {
	_, err := time.Parse(constants.DateFormat, key)
	return err == nil
}

// AddDays shifts a day key by n calendar days, rolling over months and years.
func AddDays(key string, n int) (string, error) {
	t, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		return "", fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat), nil
}

// TodayAndYesterday returns the two editable day keys relative to now.
func TodayAndYesterday(now time.Time, loc *time.Location) (string, string) {
	today := StartOfDay(now, loc)
	return today.Format(constants.DateFormat), today.AddDate(0, 0, -1).Format(constants.DateFormat)
}
