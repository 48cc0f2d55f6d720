package projections

import (
	"context"
	"errors"
	"sort"
	"time"

	"yourtrainer/internal/domain/client"
	"yourtrainer/internal/domain/lesson"
	"yourtrainer/internal/domain/schedule"
)

var fixedTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) // a Monday

// mockLessonStore implements the projection lesson store interfaces.
type mockLessonStore struct {
	lessons []lesson.Lesson
}

func (m *mockLessonStore) ListByDate(_ context.Context, date string) ([]lesson.Lesson, error) {
	var out []lesson.Lesson
	for _, l := range m.lessons {
		if l.PlannedDate.Format("2006-01-02") == date {
			out = append(out, l)
		}
	}
	sortByTimeThenID(out)
	return out, nil
}

func (m *mockLessonStore) ListByTrainerIDAndDate(_ context.Context, trainerID string, date string) ([]lesson.Lesson, error) {
	var out []lesson.Lesson
	for _, l := range m.lessons {
		if l.TrainerID == trainerID && l.PlannedDate.Format("2006-01-02") == date {
			out = append(out, l)
		}
	}
	sortByTimeThenID(out)
	return out, nil
}

func (m *mockLessonStore) ListByTrainerIDAndDateRange(_ context.Context, trainerID string, startDate string, endDate string) ([]lesson.Lesson, error) {
	var out []lesson.Lesson
	for _, l := range m.lessons {
		d := l.PlannedDate.Format("2006-01-02")
		if l.TrainerID == trainerID && d >= startDate && d <= endDate {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlannedDate.Equal(out[j].PlannedDate) {
			return out[i].PlannedDate.Before(out[j].PlannedDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockLessonStore) ListByClientID(_ context.Context, clientID string) ([]lesson.Lesson, error) {
	var out []lesson.Lesson
	for _, l := range m.lessons {
		if l.ClientID == clientID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLessonStore) ListByTrainerID(_ context.Context, trainerID string) ([]lesson.Lesson, error) {
	var out []lesson.Lesson
	for _, l := range m.lessons {
		if l.TrainerID == trainerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func sortByTimeThenID(lessons []lesson.Lesson) {
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].PlannedTime != lessons[j].PlannedTime {
			return lessons[i].PlannedTime < lessons[j].PlannedTime
		}
		return lessons[i].ID < lessons[j].ID
	})
}

// mockClientStore implements the projection client store interfaces.
type mockClientStore struct {
	clients map[string]client.Client
}

func (m *mockClientStore) GetByID(_ context.Context, id string) (client.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return client.Client{}, errors.New("client not found")
	}
	return c, nil
}

func (m *mockClientStore) ListByTrainerID(_ context.Context, trainerID string) ([]client.Client, error) {
	var out []client.Client
	for _, c := range m.clients {
		if c.TrainerID == trainerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func testLesson(id string, date time.Time, plannedTime string, status string) lesson.Lesson {
	return lesson.Lesson{
		ID:             id,
		ClientID:       "client-1",
		TrainerID:      "trainer-1",
		PlannedDate:    date,
		PlannedTime:    plannedTime,
		PlannedWeekday: schedule.WeekdayOf(date),
		Status:         status,
		CreatedAt:      fixedTime,
	}
}
