package projections

import (
	"context"
	"errors"
	"time"

	"yourtrainer/internal/domain/client"
	"yourtrainer/internal/domain/lesson"
	"yourtrainer/internal/domain/schedule"
)

// DashboardClientStore defines the client store interface needed by the dashboard projection.
type DashboardClientStore interface {
	ListByTrainerID(ctx context.Context, trainerID string) ([]client.Client, error)
}

// DashboardLessonStore defines the lesson store interface needed by the dashboard projection.
type DashboardLessonStore interface {
	ListByTrainerIDAndDateRange(ctx context.Context, trainerID string, startDate string, endDate string) ([]lesson.Lesson, error)
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	TrainerID string
	Now       time.Time // optional: if zero, time.Now() is used
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	TodaysAgenda  []DayScheduleEntry
	ActiveClients int

	// Current week, Monday through Sunday
	WeekPlanned   int
	WeekCompleted int
	WeekNoShows   int
	WeekCancelled int
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	ScheduleDeps GetDayScheduleDeps
	ClientStore  DashboardClientStore
	LessonStore  DashboardLessonStore
}

// QueryGetDashboard aggregates the trainer's home screen: today's agenda,
// active client count, and this week's session totals.
// PRE: query.TrainerID is non-empty
// POST: Week totals cover Monday through Sunday of the current week
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	if query.TrainerID == "" {
		return DashboardResult{}, errors.New("trainer ID is required")
	}

	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := schedule.DateOnly(now)

	agenda, err := QueryGetDaySchedule(ctx, GetDayScheduleQuery{
		Date:      today,
		TrainerID: query.TrainerID,
	}, deps.ScheduleDeps)
	if err != nil {
		return DashboardResult{}, err
	}
	result := DashboardResult{TodaysAgenda: agenda}

	clients, err := deps.ClientStore.ListByTrainerID(ctx, query.TrainerID)
	if err != nil {
		return DashboardResult{}, err
	}
	for _, c := range clients {
		if !c.IsArchived() {
			result.ActiveClients++
		}
	}

	weekStart := today.AddDate(0, 0, -mondayOffset(today))
	weekEnd := weekStart.AddDate(0, 0, 6)
	week, err := deps.LessonStore.ListByTrainerIDAndDateRange(ctx, query.TrainerID,
		weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"))
	if err != nil {
		return DashboardResult{}, err
	}
	for _, l := range week {
		switch l.Status {
		case lesson.StatusPlanned:
			result.WeekPlanned++
		case lesson.StatusCompleted:
			result.WeekCompleted++
		case lesson.StatusNoShow:
			result.WeekNoShows++
		case lesson.StatusCancelled:
			result.WeekCancelled++
		}
	}

	return result, nil
}

// mondayOffset returns how many days back the week's Monday lies.
func mondayOffset(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 { // Sunday
		return 6
	}
	return wd - 1
}
