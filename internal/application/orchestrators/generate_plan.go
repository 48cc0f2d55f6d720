package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"yourtrainer/internal/domain/client"
	"yourtrainer/internal/domain/lesson"
	"yourtrainer/internal/domain/schedule"
)

// ClientStoreForPlan defines the client store interface needed by plan orchestrators.
type ClientStoreForPlan interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
}

// LessonBatchStore defines the lesson store interface needed by plan generation.
type LessonBatchStore interface {
	SaveMany(ctx context.Context, lessons []lesson.Lesson) error
}

// GeneratePlanInput carries input for the plan generation orchestrator.
type GeneratePlanInput struct {
	ClientID string
}

// GeneratePlanResult carries the generated lessons.
type GeneratePlanResult struct {
	Lessons []lesson.Lesson
}

// GeneratePlanDeps holds dependencies for GeneratePlan.
type GeneratePlanDeps struct {
	ClientStore ClientStoreForPlan
	LessonStore LessonBatchStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteGeneratePlan creates the full planned-lesson series for a client's
// enrollment: one planned lesson per matching weekday starting at the
// enrollment start date, at the default time for that weekday.
// PRE: Client exists and has a valid enrollment
// POST: Either all TotalLessons lessons are persisted or none are
func ExecuteGeneratePlan(ctx context.Context, input GeneratePlanInput, deps GeneratePlanDeps) (GeneratePlanResult, error) {
	if input.ClientID == "" {
		return GeneratePlanResult{}, errors.New("client ID is required")
	}

	c, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return GeneratePlanResult{}, err
	}
	if err := c.Enrollment.Validate(); err != nil {
		return GeneratePlanResult{}, err
	}

	lessons, err := buildPlannedLessons(c, c.Enrollment.StartDate, c.Enrollment.TotalLessons, deps.GenerateID, deps.Now)
	if err != nil {
		return GeneratePlanResult{}, err
	}

	if err := deps.LessonStore.SaveMany(ctx, lessons); err != nil {
		return GeneratePlanResult{}, err
	}

	slog.Info("plan_event", "event", "plan_generated", "client_id", c.ID, "lessons", len(lessons))
	return GeneratePlanResult{Lessons: lessons}, nil
}

// buildPlannedLessons enumerates matching dates from an anchor and maps each to
// a planned lesson at that weekday's default time. No writes happen here, so a
// horizon failure leaves the store untouched.
func buildPlannedLessons(c client.Client, anchor time.Time, count int, generateID func() string, now func() time.Time) ([]lesson.Lesson, error) {
	dates, err := schedule.EnumerateMatchingDates(anchor, c.Enrollment.WeeklyDays, count)
	if err != nil {
		return nil, err
	}

	lessons := make([]lesson.Lesson, 0, len(dates))
	for _, date := range dates {
		weekday := schedule.WeekdayOf(date)
		plannedTime, err := schedule.LessonTimeFor(weekday)
		if err != nil {
			return nil, err
		}
		l := lesson.Lesson{
			ID:             generateID(),
			ClientID:       c.ID,
			TrainerID:      c.TrainerID,
			PlannedDate:    date,
			PlannedTime:    plannedTime,
			PlannedWeekday: weekday,
			Status:         lesson.StatusPlanned,
			CreatedAt:      now(),
		}
		if err := l.Validate(); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}
