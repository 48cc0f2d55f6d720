package projections

import (
	"context"
	"time"

	"yourtrainer/internal/domain/client"
	"yourtrainer/internal/domain/lesson"
)

// DayScheduleLessonStore defines the lesson store interface needed by the day schedule projection.
type DayScheduleLessonStore interface {
	ListByDate(ctx context.Context, date string) ([]lesson.Lesson, error)
	ListByTrainerIDAndDate(ctx context.Context, trainerID string, date string) ([]lesson.Lesson, error)
}

// DayScheduleClientStore defines the client store interface needed by the day schedule projection.
type DayScheduleClientStore interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
}

// GetDayScheduleQuery carries input for the day schedule projection.
// TrainerID is optional: when empty, lessons from every trainer are included.
type GetDayScheduleQuery struct {
	Date      time.Time
	TrainerID string
}

// DayScheduleEntry pairs a lesson with its client's display name.
type DayScheduleEntry struct {
	Lesson     lesson.Lesson
	ClientName string
}

// GetDayScheduleDeps holds dependencies for the day schedule projection.
type GetDayScheduleDeps struct {
	LessonStore DayScheduleLessonStore
	ClientStore DayScheduleClientStore
}

// QueryGetDaySchedule returns the lessons falling on a date, in session order.
// PRE: query.Date is set
// POST: Entries ordered by planned time, ties broken by lesson id
func QueryGetDaySchedule(ctx context.Context, query GetDayScheduleQuery, deps GetDayScheduleDeps) ([]DayScheduleEntry, error) {
	date := query.Date.Format("2006-01-02")

	var (
		lessons []lesson.Lesson
		err     error
	)
	if query.TrainerID != "" {
		lessons, err = deps.LessonStore.ListByTrainerIDAndDate(ctx, query.TrainerID, date)
	} else {
		lessons, err = deps.LessonStore.ListByDate(ctx, date)
	}
	if err != nil {
		return nil, err
	}

	// Client names are looked up once per client, not per lesson
	names := make(map[string]string)
	entries := make([]DayScheduleEntry, 0, len(lessons))
	for _, l := range lessons {
		name, ok := names[l.ClientID]
		if !ok {
			if c, err := deps.ClientStore.GetByID(ctx, l.ClientID); err == nil {
				name = c.Name
			}
			names[l.ClientID] = name
		}
		entries = append(entries, DayScheduleEntry{Lesson: l, ClientName: name})
	}

	return entries, nil
}
