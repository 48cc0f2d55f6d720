package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	storagelesson "yourtrainer/internal/adapters/storage/lesson"
	"yourtrainer/internal/domain/client"
	"yourtrainer/internal/domain/lesson"
	"yourtrainer/internal/domain/schedule"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// seqIDGen returns a generator producing prefix-001, prefix-002, ...
func seqIDGen(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

// mockClientStore implements the client store interfaces for testing.
type mockClientStore struct {
	clients map[string]client.Client
}

func newMockClientStore() *mockClientStore {
	return &mockClientStore{clients: make(map[string]client.Client)}
}

func (m *mockClientStore) GetByID(_ context.Context, id string) (client.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return client.Client{}, errors.New("client not found")
	}
	return c, nil
}

func (m *mockClientStore) Save(_ context.Context, c client.Client) error {
	m.clients[c.ID] = c
	return nil
}

func (m *mockClientStore) Delete(_ context.Context, id string) error {
	if _, ok := m.clients[id]; !ok {
		return errors.New("client not found")
	}
	delete(m.clients, id)
	return nil
}

// mockLessonStore implements the lesson store interfaces for testing.
type mockLessonStore struct {
	lessons    map[string]lesson.Lesson
	saveErr    error
	replaceErr error
}

func newMockLessonStore() *mockLessonStore {
	return &mockLessonStore{lessons: make(map[string]lesson.Lesson)}
}

func (m *mockLessonStore) GetByID(_ context.Context, id string) (lesson.Lesson, error) {
	l, ok := m.lessons[id]
	if !ok {
		return lesson.Lesson{}, storagelesson.ErrNotFound
	}
	return l, nil
}

func (m *mockLessonStore) Save(_ context.Context, l lesson.Lesson) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.lessons[l.ID] = l
	return nil
}

func (m *mockLessonStore) SaveMany(_ context.Context, lessons []lesson.Lesson) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, l := range lessons {
		m.lessons[l.ID] = l
	}
	return nil
}

func (m *mockLessonStore) Delete(_ context.Context, id string) error {
	if _, ok := m.lessons[id]; !ok {
		return storagelesson.ErrNotFound
	}
	delete(m.lessons, id)
	return nil
}

func (m *mockLessonStore) DeleteByClientID(_ context.Context, clientID string) (int, error) {
	n := 0
	for id, l := range m.lessons {
		if l.ClientID == clientID {
			delete(m.lessons, id)
			n++
		}
	}
	return n, nil
}

func (m *mockLessonStore) ListByClientID(_ context.Context, clientID string) ([]lesson.Lesson, error) {
	var results []lesson.Lesson
	for _, l := range m.lessons {
		if l.ClientID == clientID {
			results = append(results, l)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].PlannedDate.Equal(results[j].PlannedDate) {
			return results[i].PlannedDate.Before(results[j].PlannedDate)
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

func (m *mockLessonStore) ListByTrainerIDAndDate(_ context.Context, trainerID string, date string) ([]lesson.Lesson, error) {
	var results []lesson.Lesson
	for _, l := range m.lessons {
		if l.TrainerID == trainerID && l.PlannedDate.Format("2006-01-02") == date {
			results = append(results, l)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].PlannedTime != results[j].PlannedTime {
			return results[i].PlannedTime < results[j].PlannedTime
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

func (m *mockLessonStore) ReplacePlanned(_ context.Context, clientID string, obsoleteIDs []string, replacements []lesson.Lesson) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	for _, id := range obsoleteIDs {
		l, ok := m.lessons[id]
		if !ok || l.ClientID != clientID || !l.IsPlanned() {
			return storagelesson.ErrReplaceConflict
		}
	}
	for _, id := range obsoleteIDs {
		delete(m.lessons, id)
	}
	for _, l := range replacements {
		m.lessons[l.ID] = l
	}
	return nil
}

// testClient builds an active client enrolled for Mondays and Wednesdays.
func testClient(id string, totalLessons int) client.Client {
	return client.Client{
		ID:        id,
		TrainerID: "trainer-1",
		Name:      "Jordan Baker",
		Status:    client.StatusActive,
		Enrollment: client.Enrollment{
			StartDate:    time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), // a Monday
			TotalLessons: totalLessons,
			WeeklyDays:   []string{schedule.Monday, schedule.Wednesday},
		},
	}
}

// TestExecuteGeneratePlan_Valid verifies the generated series lands on the
// enrollment weekdays at their default times.
func TestExecuteGeneratePlan_Valid(t *testing.T) {
	clients := newMockClientStore()
	lessons := newMockLessonStore()
	clients.clients["client-1"] = testClient("client-1", 4)

	result, err := ExecuteGeneratePlan(context.Background(), GeneratePlanInput{ClientID: "client-1"}, GeneratePlanDeps{
		ClientStore: clients,
		LessonStore: lessons,
		GenerateID:  seqIDGen("gen"),
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Lessons) != 4 {
		t.Fatalf("expected 4 lessons, got %d", len(result.Lessons))
	}

	wantDates := []string{"2024-06-03", "2024-06-05", "2024-06-10", "2024-06-12"}
	wantTimes := []string{"18:00", "18:00", "18:00", "18:00"}
	for i, l := range result.Lessons {
		if got := l.PlannedDate.Format("2006-01-02"); got != wantDates[i] {
			t.Errorf("lesson[%d] date = %s, want %s", i, got, wantDates[i])
		}
		if l.PlannedTime != wantTimes[i] {
			t.Errorf("lesson[%d] time = %s, want %s", i, l.PlannedTime, wantTimes[i])
		}
		if l.Status != lesson.StatusPlanned {
			t.Errorf("lesson[%d] status = %s, want planned", i, l.Status)
		}
		if l.PlannedWeekday != schedule.WeekdayOf(l.PlannedDate) {
			t.Errorf("lesson[%d] weekday mismatch: %s", i, l.PlannedWeekday)
		}
	}
	if len(lessons.lessons) != 4 {
		t.Errorf("expected 4 persisted lessons, got %d", len(lessons.lessons))
	}
}

// TestExecuteGeneratePlan_HorizonExceeded verifies nothing is written when the
// series cannot fit inside the scheduling horizon.
func TestExecuteGeneratePlan_HorizonExceeded(t *testing.T) {
	clients := newMockClientStore()
	lessons := newMockLessonStore()
	c := testClient("client-1", 200)
	c.Enrollment.WeeklyDays = []string{schedule.Sunday}
	clients.clients["client-1"] = c

	_, err := ExecuteGeneratePlan(context.Background(), GeneratePlanInput{ClientID: "client-1"}, GeneratePlanDeps{
		ClientStore: clients,
		LessonStore: lessons,
		GenerateID:  seqIDGen("gen"),
		Now:         fixedNow,
	})
	if !errors.Is(err, schedule.ErrHorizonExceeded) {
		t.Fatalf("expected ErrHorizonExceeded, got %v", err)
	}
	if len(lessons.lessons) != 0 {
		t.Errorf("store must stay empty on failure, got %d lessons", len(lessons.lessons))
	}
}

// TestExecuteGeneratePlan_ClientNotFound verifies missing clients are rejected.
func TestExecuteGeneratePlan_ClientNotFound(t *testing.T) {
	_, err := ExecuteGeneratePlan(context.Background(), GeneratePlanInput{ClientID: "ghost"}, GeneratePlanDeps{
		ClientStore: newMockClientStore(),
		LessonStore: newMockLessonStore(),
		GenerateID:  seqIDGen("gen"),
		Now:         fixedNow,
	})
	if err == nil {
		t.Error("expected error for missing client")
	}
}

// TestExecuteGeneratePlan_MissingID verifies empty input is rejected.
func TestExecuteGeneratePlan_MissingID(t *testing.T) {
	_, err := ExecuteGeneratePlan(context.Background(), GeneratePlanInput{}, GeneratePlanDeps{
		ClientStore: newMockClientStore(),
		LessonStore: newMockLessonStore(),
		GenerateID:  fixedID,
		Now:         fixedNow,
	})
	if err == nil {
		t.Error("expected error for missing client ID")
	}
}
