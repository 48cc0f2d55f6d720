package lesson

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"yourtrainer/internal/adapters/storage"
	domain "yourtrainer/internal/domain/lesson"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	// Lessons reference client rows, so seed the clients the fixtures use.
	for _, id := range []string{"client-1", "client-2"} {
		_, err := db.Exec(
			`INSERT INTO client (id, trainer_id, name, status, start_date, total_lessons, weekly_days, created_at)
			 VALUES (?, 'trainer-1', 'Test Client', 'active', '2026-03-02', 10, '["monday"]', '2026-01-01T00:00:00Z')`,
			id,
		)
		if err != nil {
			t.Fatalf("seed client %s: %v", id, err)
		}
	}
	return NewSQLiteStore(db)
}

func testLesson(id string, date time.Time, plannedTime string) domain.Lesson {
	return domain.Lesson{
		ID:             id,
		ClientID:       "client-1",
		TrainerID:      "trainer-1",
		PlannedDate:    date,
		PlannedTime:    plannedTime,
		PlannedWeekday: dayName(date),
		Status:         domain.StatusPlanned,
		Exercises:      []string{"squats", "push-ups"},
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func dayName(date time.Time) string {
	switch date.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// TestSQLiteStore_SaveAndGet verifies round-tripping a lesson through the store.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	l := testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	l.Notes = "first session"
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "l1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ClientID != "client-1" || got.PlannedTime != "18:00" || got.Notes != "first session" {
		t.Errorf("unexpected lesson: %+v", got)
	}
	if !got.PlannedDate.Equal(l.PlannedDate) {
		t.Errorf("PlannedDate = %v, want %v", got.PlannedDate, l.PlannedDate)
	}
	if len(got.Exercises) != 2 || got.Exercises[0] != "squats" {
		t.Errorf("Exercises = %v, want [squats push-ups]", got.Exercises)
	}
	if !got.ActualDate.IsZero() {
		t.Errorf("ActualDate should be zero, got %v", got.ActualDate)
	}
}

// TestSQLiteStore_Save_UnknownClient verifies the client foreign key is enforced.
func TestSQLiteStore_Save_UnknownClient(t *testing.T) {
	store := openTestStore(t)

	l := testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	l.ClientID = "no-such-client"
	if err := store.Save(context.Background(), l); err == nil {
		t.Error("expected foreign key violation for unknown client")
	}
}

// TestSQLiteStore_GetByID_NotFound verifies the not-found sentinel.
func TestSQLiteStore_GetByID_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestSQLiteStore_Save_Upsert verifies saving twice updates in place.
func TestSQLiteStore_Save_Upsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	l := testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	l.Status = domain.StatusCompleted
	l.ActualDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	l.ActualTime = "18:15"
	l.DifficultyRating = 7
	l.UpdatedAt = time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.GetByID(ctx, "l1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.ActualTime != "18:15" || got.DifficultyRating != 7 {
		t.Errorf("update not persisted: %+v", got)
	}

	lessons, err := store.ListByClientID(ctx, "client-1")
	if err != nil {
		t.Fatalf("ListByClientID: %v", err)
	}
	if len(lessons) != 1 {
		t.Errorf("expected 1 lesson after upsert, got %d", len(lessons))
	}
}

// TestSQLiteStore_SaveMany verifies batch inserts land together.
func TestSQLiteStore_SaveMany(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	batch := []domain.Lesson{
		testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00"),
		testLesson("l2", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "18:00"),
		testLesson("l3", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), "18:00"),
	}
	if err := store.SaveMany(ctx, batch); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	lessons, err := store.ListByClientID(ctx, "client-1")
	if err != nil {
		t.Fatalf("ListByClientID: %v", err)
	}
	if len(lessons) != 3 {
		t.Fatalf("expected 3 lessons, got %d", len(lessons))
	}
	// Ordered by planned date ascending
	if lessons[0].ID != "l1" || lessons[1].ID != "l2" || lessons[2].ID != "l3" {
		t.Errorf("unexpected order: %s, %s, %s", lessons[0].ID, lessons[1].ID, lessons[2].ID)
	}
}

// TestSQLiteStore_Delete verifies delete and its not-found sentinel.
func TestSQLiteStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	l := testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(ctx, "l1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "l1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

// TestSQLiteStore_DeleteMany verifies bulk delete returns the removed count.
func TestSQLiteStore_DeleteMany(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	batch := []domain.Lesson{
		testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00"),
		testLesson("l2", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "18:00"),
	}
	if err := store.SaveMany(ctx, batch); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	n, err := store.DeleteMany(ctx, []string{"l1", "l2", "missing"})
	if err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	n, err = store.DeleteMany(ctx, nil)
	if err != nil {
		t.Fatalf("DeleteMany(nil): %v", err)
	}
	if n != 0 {
		t.Errorf("deleted = %d, want 0", n)
	}
}

// TestSQLiteStore_DeleteByClientID verifies cascade-style cleanup for a client.
func TestSQLiteStore_DeleteByClientID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	l1 := testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	l2 := testLesson("l2", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "18:00")
	other := testLesson("l3", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "19:00")
	other.ClientID = "client-2"
	if err := store.SaveMany(ctx, []domain.Lesson{l1, l2, other}); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	n, err := store.DeleteByClientID(ctx, "client-1")
	if err != nil {
		t.Fatalf("DeleteByClientID: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	remaining, err := store.ListByClientID(ctx, "client-2")
	if err != nil {
		t.Fatalf("ListByClientID: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("other client's lessons should survive, got %d", len(remaining))
	}
}

// TestSQLiteStore_ListByTrainerIDAndDate verifies day filtering and time ordering
// with ties broken by id.
func TestSQLiteStore_ListByTrainerIDAndDate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	late := testLesson("b-late", day, "18:00")
	early := testLesson("a-early", day, "09:00")
	tieSecond := testLesson("z-tie", day, "09:00")
	otherDay := testLesson("other", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "09:00")
	if err := store.SaveMany(ctx, []domain.Lesson{late, early, tieSecond, otherDay}); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	lessons, err := store.ListByTrainerIDAndDate(ctx, "trainer-1", "2026-03-02")
	if err != nil {
		t.Fatalf("ListByTrainerIDAndDate: %v", err)
	}
	if len(lessons) != 3 {
		t.Fatalf("expected 3 lessons, got %d", len(lessons))
	}
	wantOrder := []string{"a-early", "z-tie", "b-late"}
	for i, want := range wantOrder {
		if lessons[i].ID != want {
			t.Errorf("lessons[%d].ID = %q, want %q", i, lessons[i].ID, want)
		}
	}
}

// TestSQLiteStore_ListByTrainerIDAndDateRange verifies inclusive range filtering.
func TestSQLiteStore_ListByTrainerIDAndDateRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inside1 := testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	inside2 := testLesson("l2", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), "18:00")
	outside := testLesson("l3", time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), "18:00")
	if err := store.SaveMany(ctx, []domain.Lesson{inside1, inside2, outside}); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	lessons, err := store.ListByTrainerIDAndDateRange(ctx, "trainer-1", "2026-03-02", "2026-03-09")
	if err != nil {
		t.Fatalf("ListByTrainerIDAndDateRange: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(lessons))
	}
	if lessons[0].ID != "l1" || lessons[1].ID != "l2" {
		t.Errorf("unexpected order: %s, %s", lessons[0].ID, lessons[1].ID)
	}
}

// TestSQLiteStore_ListByTrainerID verifies trainer-wide listing across clients.
func TestSQLiteStore_ListByTrainerID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	l1 := testLesson("l1", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "18:00")
	l2 := testLesson("l2", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	l2.ClientID = "client-2"
	foreign := testLesson("l3", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "09:00")
	foreign.TrainerID = "trainer-2"
	if err := store.SaveMany(ctx, []domain.Lesson{l1, l2, foreign}); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	lessons, err := store.ListByTrainerID(ctx, "trainer-1")
	if err != nil {
		t.Fatalf("ListByTrainerID: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(lessons))
	}
	if lessons[0].ID != "l2" || lessons[1].ID != "l1" {
		t.Errorf("unexpected order: %s, %s", lessons[0].ID, lessons[1].ID)
	}
}

func TestSQLiteStore_ListByDate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mine := testLesson("mine", day, "09:00")
	other := testLesson("other", day, "08:00")
	other.TrainerID = "trainer-2"
	offDay := testLesson("off-day", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), "09:00")
	if err := store.SaveMany(ctx, []domain.Lesson{mine, other, offDay}); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	// Ignores trainer, returns every lesson on the date ordered by time
	lessons, err := store.ListByDate(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(lessons))
	}
	if lessons[0].ID != "other" || lessons[1].ID != "mine" {
		t.Errorf("unexpected order: %s, %s", lessons[0].ID, lessons[1].ID)
	}
}

func TestSQLiteStore_List_StatusFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	planned := testLesson("l1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	completed := testLesson("l2", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "18:00")
	completed.Status = domain.StatusCompleted
	if err := store.SaveMany(ctx, []domain.Lesson{planned, completed}); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	all, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 lessons, got %d", len(all))
	}

	onlyCompleted, err := store.List(ctx, ListFilter{Status: domain.StatusCompleted})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(onlyCompleted) != 1 || onlyCompleted[0].ID != "l2" {
		t.Errorf("status filter returned %d lessons", len(onlyCompleted))
	}
}

// TestSQLiteStore_ReplacePlanned swaps planned lessons atomically.
func TestSQLiteStore_ReplacePlanned(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old1 := testLesson("old1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	old2 := testLesson("old2", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), "18:00")
	done := testLesson("done", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC), "18:00")
	done.Status = domain.StatusCompleted
	if err := store.SaveMany(ctx, []domain.Lesson{old1, old2, done}); err != nil {
		t.Fatalf("SaveMany: %v", err)
	}

	replacements := []domain.Lesson{
		testLesson("new1", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), "17:00"),
		testLesson("new2", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), "17:00"),
	}
	err := store.ReplacePlanned(ctx, "client-1", []string{"old1", "old2"}, replacements)
	if err != nil {
		t.Fatalf("ReplacePlanned: %v", err)
	}

	lessons, err := store.ListByClientID(ctx, "client-1")
	if err != nil {
		t.Fatalf("ListByClientID: %v", err)
	}
	if len(lessons) != 3 {
		t.Fatalf("expected 3 lessons (1 completed + 2 new), got %d", len(lessons))
	}
	ids := map[string]bool{}
	for _, l := range lessons {
		ids[l.ID] = true
	}
	if !ids["done"] || !ids["new1"] || !ids["new2"] {
		t.Errorf("unexpected survivors: %v", ids)
	}
}

// TestSQLiteStore_ReplacePlanned_Conflict verifies the swap aborts untouched when
// a targeted lesson was completed (or deleted) by a concurrent writer.
func TestSQLiteStore_ReplacePlanned_Conflict(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	l := testLesson("old1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "18:00")
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Simulate a concurrent completion between read and replace
	l.Status = domain.StatusCompleted
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	replacements := []domain.Lesson{
		testLesson("new1", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), "17:00"),
	}
	err := store.ReplacePlanned(ctx, "client-1", []string{"old1"}, replacements)
	if !errors.Is(err, ErrReplaceConflict) {
		t.Fatalf("expected ErrReplaceConflict, got %v", err)
	}

	// Database must be unchanged: completed lesson intact, no new rows
	lessons, err := store.ListByClientID(ctx, "client-1")
	if err != nil {
		t.Fatalf("ListByClientID: %v", err)
	}
	if len(lessons) != 1 || lessons[0].ID != "old1" || lessons[0].Status != domain.StatusCompleted {
		t.Errorf("store mutated after conflict: %+v", lessons)
	}
}

// TestSQLiteStore_ReplacePlanned_NoObsolete verifies a pure-insert replace.
func TestSQLiteStore_ReplacePlanned_NoObsolete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	replacements := []domain.Lesson{
		testLesson("new1", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), "17:00"),
	}
	if err := store.ReplacePlanned(ctx, "client-1", nil, replacements); err != nil {
		t.Fatalf("ReplacePlanned: %v", err)
	}

	lessons, err := store.ListByClientID(ctx, "client-1")
	if err != nil {
		t.Fatalf("ListByClientID: %v", err)
	}
	if len(lessons) != 1 {
		t.Errorf("expected 1 lesson, got %d", len(lessons))
	}
}
