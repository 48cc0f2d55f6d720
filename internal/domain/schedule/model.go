package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// HorizonYears bounds how far past the start date plan generation may walk.
const HorizonYears = 2

// Domain errors
var (
	ErrEmptyDaySet     = errors.New("weekly day set cannot be empty")
	ErrInvalidDay      = errors.New("day must be a valid day of the week")
	ErrDuplicateDay    = errors.New("weekly day set cannot contain duplicates")
	ErrHorizonExceeded = errors.New("plan generation would exceed the 2-year scheduling horizon")
)

// DefaultLessonTimes maps each weekday to the default lesson start time.
// Planned times come from this table at generation time, not from user input.
var DefaultLessonTimes = map[string]string{
	Monday:    "18:00",
	Tuesday:   "18:00",
	Wednesday: "18:00",
	Thursday:  "18:00",
	Friday:    "17:00",
	Saturday:  "10:00",
	Sunday:    "10:00",
}

// WeekdayOf returns the lowercase weekday name for a date.
// INVARIANT: return value is always one of ValidDays
func WeekdayOf(date time.Time) string {
	return strings.ToLower(date.Weekday().String())
}

// LessonTimeFor returns the default start time (HH:MM) for a weekday.
// PRE: day is a valid weekday name
// POST: Returns the configured time, or an error for unknown days
func LessonTimeFor(day string) (string, error) {
	t, ok := DefaultLessonTimes[day]
	if !ok {
		return "", fmt.Errorf("no default lesson time for %q: %w", day, ErrInvalidDay)
	}
	return t, nil
}

// ValidateDaySet checks that a weekly day set is non-empty, contains only
// valid weekday names, and has no duplicates.
// PRE: none
// POST: Returns nil if valid, error otherwise
func ValidateDaySet(days []string) error {
	if len(days) == 0 {
		return ErrEmptyDaySet
	}
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if !isValidDay(d) {
			return ErrInvalidDay
		}
		if seen[d] {
			return ErrDuplicateDay
		}
		seen[d] = true
	}
	return nil
}

// EnumerateMatchingDates walks the calendar one day at a time from startDate
// and returns the first count dates whose weekday is in days. The start date
// itself is included when it matches. Dates come back strictly increasing.
// Walking day-by-day keeps irregular sets like {monday, wednesday, friday}
// correct without week-skipping arithmetic.
// PRE: days is a valid day set; count > 0
// POST: Returns exactly count dates, or ErrHorizonExceeded if the walk
// would pass HorizonYears beyond startDate
func EnumerateMatchingDates(startDate time.Time, days []string, count int) ([]time.Time, error) {
	if err := ValidateDaySet(days); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, errors.New("count must be positive")
	}

	wanted := make(map[string]bool, len(days))
	for _, d := range days {
		wanted[d] = true
	}

	horizon := startDate.AddDate(HorizonYears, 0, 0)
	dates := make([]time.Time, 0, count)
	current := DateOnly(startDate)

	for len(dates) < count {
		if current.After(horizon) {
			return nil, ErrHorizonExceeded
		}
		if wanted[WeekdayOf(current)] {
			dates = append(dates, current)
		}
		current = current.AddDate(0, 0, 1)
	}
	return dates, nil
}

// DateOnly truncates a time to midnight UTC, dropping the clock component.
// INVARIANT: year, month and day are preserved
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}
