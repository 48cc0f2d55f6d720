package projections

import (
	"context"
	"errors"
	"sort"
	"time"

	"yourtrainer/internal/domain/lesson"
	"yourtrainer/internal/domain/schedule"
)

// DefaultUpcomingDays is the lookahead window when the query doesn't set one.
const DefaultUpcomingDays = 7

// UpcomingLessonStore defines the lesson store interface needed by the upcoming projection.
type UpcomingLessonStore interface {
	ListByTrainerIDAndDateRange(ctx context.Context, trainerID string, startDate string, endDate string) ([]lesson.Lesson, error)
}

// GetUpcomingLessonsQuery carries input for the upcoming lessons projection.
type GetUpcomingLessonsQuery struct {
	TrainerID string
	Days      int       // lookahead window; defaults to DefaultUpcomingDays
	Now       time.Time // optional: if zero, time.Now() is used
}

// GetUpcomingLessonsDeps holds dependencies for the upcoming lessons projection.
type GetUpcomingLessonsDeps struct {
	LessonStore UpcomingLessonStore
}

// QueryGetUpcomingLessons returns planned lessons strictly after today, up to
// Days ahead. Today's lessons belong to the day schedule, not here.
// PRE: query.TrainerID is non-empty
// POST: Only planned-status lessons, ordered by (date, time), ties by id
func QueryGetUpcomingLessons(ctx context.Context, query GetUpcomingLessonsQuery, deps GetUpcomingLessonsDeps) ([]lesson.Lesson, error) {
	if query.TrainerID == "" {
		return nil, errors.New("trainer ID is required")
	}

	days := query.Days
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}

	today := schedule.DateOnly(now)
	start := today.AddDate(0, 0, 1).Format("2006-01-02")
	end := today.AddDate(0, 0, days).Format("2006-01-02")

	lessons, err := deps.LessonStore.ListByTrainerIDAndDateRange(ctx, query.TrainerID, start, end)
	if err != nil {
		return nil, err
	}

	upcoming := make([]lesson.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if l.IsPlanned() {
			upcoming = append(upcoming, l)
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		if !upcoming[i].PlannedDate.Equal(upcoming[j].PlannedDate) {
			return upcoming[i].PlannedDate.Before(upcoming[j].PlannedDate)
		}
		if upcoming[i].PlannedTime != upcoming[j].PlannedTime {
			return upcoming[i].PlannedTime < upcoming[j].PlannedTime
		}
		return upcoming[i].ID < upcoming[j].ID
	})

	return upcoming, nil
}
