package client

import (
	"errors"
	"strings"
	"time"

	"yourtrainer/internal/domain/schedule"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Client status constants
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Enrollment bounds
const (
	MinTotalLessons = 1
	MaxTotalLessons = 200
)

// Domain errors
var (
	ErrEmptyTrainerID  = errors.New("client must be associated with a trainer")
	ErrEmptyStartDate  = errors.New("enrollment start date cannot be zero")
	ErrInvalidTotal    = errors.New("total lessons must be between 1 and 200")
	ErrAlreadyArchived = errors.New("client is already archived")
	ErrNotArchived     = errors.New("client is not archived")
)

// Enrollment carries the lesson-plan parameters for a client: where the plan
// starts, how many lessons it contains, and which weekdays it recurs on.
type Enrollment struct {
	StartDate    time.Time // date only, midnight UTC
	TotalLessons int
	WeeklyDays   []string // monday, tuesday, etc.
}

// Validate checks if the Enrollment has valid data.
// PRE: Enrollment struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Enrollment) Validate() error {
	if e.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if e.TotalLessons < MinTotalLessons || e.TotalLessons > MaxTotalLessons {
		return ErrInvalidTotal
	}
	return schedule.ValidateDaySet(e.WeeklyDays)
}

// Client holds state for a trainer's client, including the enrollment the
// lesson plan is derived from.
type Client struct {
	ID         string
	TrainerID  string
	Name       string
	Email      string
	Phone      string
	Status     string
	Enrollment Enrollment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks if the Client has valid data.
// PRE: Client struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty, Email must contain '@' when set
func (c *Client) Validate() error {
	if c.TrainerID == "" {
		return ErrEmptyTrainerID
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("client name cannot be empty")
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("client name cannot exceed 100 characters")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return errors.New("client email must be valid")
	}
	if c.Status != StatusActive && c.Status != StatusArchived {
		return errors.New("status must be 'active' or 'archived'")
	}
	return c.Enrollment.Validate()
}

// IsArchived returns true if the client is archived.
// INVARIANT: Status field is not mutated
func (c *Client) IsArchived() bool {
	return c.Status == StatusArchived
}

// Archive sets the client status to archived.
// PRE: Client is not already archived
// POST: Status is set to archived
func (c *Client) Archive() error {
	if c.Status == StatusArchived {
		return ErrAlreadyArchived
	}
	c.Status = StatusArchived
	return nil
}

// Restore sets the client status back to active.
// PRE: Client is currently archived
// POST: Status is set to active
func (c *Client) Restore() error {
	if c.Status != StatusArchived {
		return ErrNotArchived
	}
	c.Status = StatusActive
	return nil
}
