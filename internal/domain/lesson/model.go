package lesson

import (
	"errors"
	"time"

	"yourtrainer/internal/domain/schedule"
)

// Lesson status constants
const (
	StatusPlanned   = "planned"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPlanned, StatusCompleted, StatusCancelled, StatusNoShow}

// Rating bounds for difficulty and performance.
const (
	MinRating = 1
	MaxRating = 10
)

// Domain errors
var (
	ErrEmptyClientID     = errors.New("lesson must be associated with a client")
	ErrEmptyTrainerID    = errors.New("lesson must be associated with a trainer")
	ErrEmptyPlannedDate  = errors.New("planned date must be set")
	ErrEmptyPlannedTime  = errors.New("planned time must be set")
	ErrWeekdayMismatch   = errors.New("planned weekday does not match planned date")
	ErrInvalidStatus     = errors.New("status must be one of: planned, completed, cancelled, no_show")
	ErrInvalidRating     = errors.New("ratings must be between 1 and 10")
	ErrInvalidTransition = errors.New("lesson is not in the planned state")
)

// Lesson is a single calendar lesson slot for a client. The planned slot
// (date, time, weekday) is fixed at creation; actual date and time are
// stamped on the first transition out of planned.
type Lesson struct {
	ID                string
	ClientID          string
	TrainerID         string
	PlannedDate       time.Time // date only, midnight UTC
	PlannedTime       string    // HH:MM format
	PlannedWeekday    string    // monday, tuesday, etc.
	ActualDate        time.Time // zero while planned
	ActualTime        string    // empty while planned
	Status            string
	Notes             string
	Exercises         []string
	DifficultyRating  int // 0 = not rated
	PerformanceRating int // 0 = not rated
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks if the Lesson has valid data.
// PRE: Lesson struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: PlannedWeekday always equals the weekday of PlannedDate
func (l *Lesson) Validate() error {
	if l.ClientID == "" {
		return ErrEmptyClientID
	}
	if l.TrainerID == "" {
		return ErrEmptyTrainerID
	}
	if l.PlannedDate.IsZero() {
		return ErrEmptyPlannedDate
	}
	if l.PlannedTime == "" {
		return ErrEmptyPlannedTime
	}
	if l.PlannedWeekday != schedule.WeekdayOf(l.PlannedDate) {
		return ErrWeekdayMismatch
	}
	if !isValidStatus(l.Status) {
		return ErrInvalidStatus
	}
	if !isValidRating(l.DifficultyRating) || !isValidRating(l.PerformanceRating) {
		return ErrInvalidRating
	}
	return nil
}

// IsPlanned returns true if the lesson has not yet left the planned state.
// INVARIANT: Lesson fields are not mutated
func (l *Lesson) IsPlanned() bool {
	return l.Status == StatusPlanned
}

// EventDate returns the date the lesson actually happened on, falling back
// to the planned date while no actual date is recorded.
// INVARIANT: Lesson fields are not mutated
func (l *Lesson) EventDate() time.Time {
	if !l.ActualDate.IsZero() {
		return l.ActualDate
	}
	return l.PlannedDate
}

// Complete transitions the lesson from planned to completed, stamping the
// actual date and time.
// PRE: Lesson is in the planned state
// POST: Status is completed, ActualDate/ActualTime are set
func (l *Lesson) Complete(actualDate time.Time, actualTime string) error {
	if l.Status != StatusPlanned {
		return ErrInvalidTransition
	}
	l.Status = StatusCompleted
	l.ActualDate = schedule.DateOnly(actualDate)
	l.ActualTime = actualTime
	return nil
}

// MarkNoShow transitions the lesson from planned to no_show, stamping the
// actual date and time the no-show was recorded.
// PRE: Lesson is in the planned state
// POST: Status is no_show, ActualDate/ActualTime are set, Notes hold the reason
func (l *Lesson) MarkNoShow(actualDate time.Time, actualTime string, reason string) error {
	if l.Status != StatusPlanned {
		return ErrInvalidTransition
	}
	l.Status = StatusNoShow
	l.ActualDate = schedule.DateOnly(actualDate)
	l.ActualTime = actualTime
	l.Notes = reason
	return nil
}

// Cancel transitions the lesson from planned to cancelled. Cancellation does
// not stamp an actual date or time.
// PRE: Lesson is in the planned state
// POST: Status is cancelled, Notes hold the reason
func (l *Lesson) Cancel(reason string) error {
	if l.Status != StatusPlanned {
		return ErrInvalidTransition
	}
	l.Status = StatusCancelled
	l.Notes = reason
	return nil
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func isValidRating(r int) bool {
	return r == 0 || (r >= MinRating && r <= MaxRating)
}
