package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"yourtrainer/internal/domain/lesson"
	"yourtrainer/internal/domain/schedule"
)

// LessonStoreForLifecycle defines the lesson store interface needed by lifecycle orchestrators.
type LessonStoreForLifecycle interface {
	GetByID(ctx context.Context, id string) (lesson.Lesson, error)
	Save(ctx context.Context, l lesson.Lesson) error
	Delete(ctx context.Context, id string) error
}

// --- Complete Lesson ---

// CompleteLessonInput carries input for the complete lesson orchestrator.
// ActualDate and ActualTime default to the current date and time when unset.
type CompleteLessonInput struct {
	LessonID   string
	ActualDate time.Time
	ActualTime string
}

// CompleteLessonDeps holds dependencies for CompleteLesson.
type CompleteLessonDeps struct {
	LessonStore LessonStoreForLifecycle
	Now         func() time.Time
}

// ExecuteCompleteLesson marks a planned lesson as completed.
// PRE: Lesson exists and has planned status
// POST: Lesson is completed with actual date/time stamped
func ExecuteCompleteLesson(ctx context.Context, input CompleteLessonInput, deps CompleteLessonDeps) (lesson.Lesson, error) {
	if input.LessonID == "" {
		return lesson.Lesson{}, errors.New("lesson ID is required")
	}

	l, err := deps.LessonStore.GetByID(ctx, input.LessonID)
	if err != nil {
		return lesson.Lesson{}, err
	}

	actualDate, actualTime := actualOrNow(input.ActualDate, input.ActualTime, deps.Now)
	if err := l.Complete(actualDate, actualTime); err != nil {
		return lesson.Lesson{}, err
	}
	l.UpdatedAt = deps.Now()

	if err := deps.LessonStore.Save(ctx, l); err != nil {
		return lesson.Lesson{}, err
	}

	slog.Info("lesson_event", "event", "lesson_completed", "lesson_id", l.ID, "client_id", l.ClientID)
	return l, nil
}

// --- Cancel Lesson ---

// CancelLessonInput carries input for the cancel lesson orchestrator.
type CancelLessonInput struct {
	LessonID string
	Reason   string
}

// CancelLessonDeps holds dependencies for CancelLesson.
type CancelLessonDeps struct {
	LessonStore LessonStoreForLifecycle
	Now         func() time.Time
}

// ExecuteCancelLesson cancels a planned lesson.
// PRE: Lesson exists and has planned status
// POST: Lesson is cancelled; no actual date/time is stamped
func ExecuteCancelLesson(ctx context.Context, input CancelLessonInput, deps CancelLessonDeps) (lesson.Lesson, error) {
	if input.LessonID == "" {
		return lesson.Lesson{}, errors.New("lesson ID is required")
	}

	l, err := deps.LessonStore.GetByID(ctx, input.LessonID)
	if err != nil {
		return lesson.Lesson{}, err
	}

	if err := l.Cancel(input.Reason); err != nil {
		return lesson.Lesson{}, err
	}
	l.UpdatedAt = deps.Now()

	if err := deps.LessonStore.Save(ctx, l); err != nil {
		return lesson.Lesson{}, err
	}

	slog.Info("lesson_event", "event", "lesson_cancelled", "lesson_id", l.ID, "client_id", l.ClientID)
	return l, nil
}

// --- Mark No-Show ---

// MarkNoShowInput carries input for the no-show orchestrator.
type MarkNoShowInput struct {
	LessonID   string
	ActualDate time.Time
	ActualTime string
	Reason     string
}

// MarkNoShowDeps holds dependencies for MarkNoShow.
type MarkNoShowDeps struct {
	LessonStore LessonStoreForLifecycle
	Now         func() time.Time
}

// ExecuteMarkLessonNoShow records that the client did not show up.
// PRE: Lesson exists and has planned status
// POST: Lesson has no_show status with actual date/time stamped
func ExecuteMarkLessonNoShow(ctx context.Context, input MarkNoShowInput, deps MarkNoShowDeps) (lesson.Lesson, error) {
	if input.LessonID == "" {
		return lesson.Lesson{}, errors.New("lesson ID is required")
	}

	l, err := deps.LessonStore.GetByID(ctx, input.LessonID)
	if err != nil {
		return lesson.Lesson{}, err
	}

	actualDate, actualTime := actualOrNow(input.ActualDate, input.ActualTime, deps.Now)
	if err := l.MarkNoShow(actualDate, actualTime, input.Reason); err != nil {
		return lesson.Lesson{}, err
	}
	l.UpdatedAt = deps.Now()

	if err := deps.LessonStore.Save(ctx, l); err != nil {
		return lesson.Lesson{}, err
	}

	slog.Info("lesson_event", "event", "lesson_no_show", "lesson_id", l.ID, "client_id", l.ClientID)
	return l, nil
}

// --- Edit Lesson ---

// EditLessonInput carries a partial update: nil fields are left unchanged.
// Unlike the status transitions, editing is allowed in any status so past
// records can be corrected, and the status itself may be set directly to fix
// a mis-recorded outcome.
type EditLessonInput struct {
	LessonID          string
	PlannedDate       *time.Time
	PlannedTime       *string
	ActualDate        *time.Time
	ActualTime        *string
	Status            *string
	Notes             *string
	Exercises         *[]string
	DifficultyRating  *int
	PerformanceRating *int
}

// EditLessonDeps holds dependencies for EditLesson.
type EditLessonDeps struct {
	LessonStore LessonStoreForLifecycle
	Now         func() time.Time
}

// ExecuteEditLesson applies a partial update to a lesson.
// PRE: Lesson exists
// POST: Provided fields updated; PlannedWeekday recomputed when the date moves
func ExecuteEditLesson(ctx context.Context, input EditLessonInput, deps EditLessonDeps) (lesson.Lesson, error) {
	if input.LessonID == "" {
		return lesson.Lesson{}, errors.New("lesson ID is required")
	}

	l, err := deps.LessonStore.GetByID(ctx, input.LessonID)
	if err != nil {
		return lesson.Lesson{}, err
	}

	if input.PlannedDate != nil {
		l.PlannedDate = schedule.DateOnly(*input.PlannedDate)
		l.PlannedWeekday = schedule.WeekdayOf(l.PlannedDate)
	}
	if input.PlannedTime != nil {
		l.PlannedTime = *input.PlannedTime
	}
	if input.ActualDate != nil {
		l.ActualDate = schedule.DateOnly(*input.ActualDate)
	}
	if input.ActualTime != nil {
		l.ActualTime = *input.ActualTime
	}
	if input.Status != nil {
		l.Status = *input.Status
	}
	if input.Notes != nil {
		l.Notes = *input.Notes
	}
	if input.Exercises != nil {
		l.Exercises = *input.Exercises
	}
	if input.DifficultyRating != nil {
		l.DifficultyRating = *input.DifficultyRating
	}
	if input.PerformanceRating != nil {
		l.PerformanceRating = *input.PerformanceRating
	}
	l.UpdatedAt = deps.Now()

	if err := l.Validate(); err != nil {
		return lesson.Lesson{}, err
	}

	if err := deps.LessonStore.Save(ctx, l); err != nil {
		return lesson.Lesson{}, err
	}

	slog.Info("lesson_event", "event", "lesson_edited", "lesson_id", l.ID)
	return l, nil
}

// --- Delete Lesson ---

// DeleteLessonInput carries input for the delete lesson orchestrator.
type DeleteLessonInput struct {
	LessonID string
}

// DeleteLessonDeps holds dependencies for DeleteLesson.
type DeleteLessonDeps struct {
	LessonStore LessonStoreForLifecycle
}

// ExecuteDeleteLesson removes a lesson permanently.
// PRE: LessonID is non-empty
// POST: Lesson is gone; the store's not-found error surfaces unchanged
func ExecuteDeleteLesson(ctx context.Context, input DeleteLessonInput, deps DeleteLessonDeps) error {
	if input.LessonID == "" {
		return errors.New("lesson ID is required")
	}

	if err := deps.LessonStore.Delete(ctx, input.LessonID); err != nil {
		return err
	}

	slog.Info("lesson_event", "event", "lesson_deleted", "lesson_id", input.LessonID)
	return nil
}

// --- Add Lesson ---

// AddLessonInput carries input for adding a one-off lesson outside the plan.
type AddLessonInput struct {
	ClientID    string
	PlannedDate time.Time
	PlannedTime string // optional: defaults to the weekday's usual time
}

// AddLessonDeps holds dependencies for AddLesson.
type AddLessonDeps struct {
	ClientStore ClientStoreForPlan
	LessonStore LessonStoreForLifecycle
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteAddLesson creates a single ad-hoc planned lesson for a client.
// PRE: Client exists and is not archived
// POST: Planned lesson persisted at the given date and time
func ExecuteAddLesson(ctx context.Context, input AddLessonInput, deps AddLessonDeps) (lesson.Lesson, error) {
	if input.ClientID == "" {
		return lesson.Lesson{}, errors.New("client ID is required")
	}
	if input.PlannedDate.IsZero() {
		return lesson.Lesson{}, lesson.ErrEmptyPlannedDate
	}

	c, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return lesson.Lesson{}, err
	}
	if c.IsArchived() {
		return lesson.Lesson{}, errors.New("archived clients cannot receive new lessons")
	}

	date := schedule.DateOnly(input.PlannedDate)
	weekday := schedule.WeekdayOf(date)
	plannedTime := input.PlannedTime
	if plannedTime == "" {
		plannedTime, err = schedule.LessonTimeFor(weekday)
		if err != nil {
			return lesson.Lesson{}, err
		}
	}

	l := lesson.Lesson{
		ID:             deps.GenerateID(),
		ClientID:       c.ID,
		TrainerID:      c.TrainerID,
		PlannedDate:    date,
		PlannedTime:    plannedTime,
		PlannedWeekday: weekday,
		Status:         lesson.StatusPlanned,
		CreatedAt:      deps.Now(),
	}

	if err := l.Validate(); err != nil {
		return lesson.Lesson{}, err
	}

	if err := deps.LessonStore.Save(ctx, l); err != nil {
		return lesson.Lesson{}, err
	}

	slog.Info("lesson_event", "event", "lesson_added", "lesson_id", l.ID, "client_id", c.ID)
	return l, nil
}

// actualOrNow fills unset actual date/time from the clock.
func actualOrNow(date time.Time, timeOfDay string, now func() time.Time) (time.Time, string) {
	if date.IsZero() {
		date = schedule.DateOnly(now())
	} else {
		date = schedule.DateOnly(date)
	}
	if timeOfDay == "" {
		timeOfDay = now().Format("15:04")
	}
	return date, timeOfDay
}
