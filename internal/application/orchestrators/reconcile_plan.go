package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"yourtrainer/internal/domain/lesson"
	"yourtrainer/internal/domain/schedule"
)

// LessonReconcileStore defines the lesson store interface needed by reconciliation.
type LessonReconcileStore interface {
	ListByClientID(ctx context.Context, clientID string) ([]lesson.Lesson, error)
	ReplacePlanned(ctx context.Context, clientID string, obsoleteIDs []string, replacements []lesson.Lesson) error
}

// ReconcilePlanInput carries input for the reconcile orchestrator.
type ReconcilePlanInput struct {
	ClientID string
}

// ReconcilePlanResult reports what the reconciliation did.
type ReconcilePlanResult struct {
	Preserved int
	Removed   int
	Created   []lesson.Lesson
}

// ReconcilePlanDeps holds dependencies for ReconcilePlan.
type ReconcilePlanDeps struct {
	ClientStore ClientStoreForPlan
	LessonStore LessonReconcileStore
	GenerateID  func() string
	Now         func() time.Time
}

// reconcileLocks serializes reconciliations per client. Two concurrent
// reconciliations of the same client would race on the planned set; different
// clients proceed in parallel.
var reconcileLocks sync.Map

func lockClientPlan(clientID string) func() {
	v, _ := reconcileLocks.LoadOrStore(clientID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ExecuteReconcilePlan rebuilds a client's planned lessons after their
// enrollment changed. Lessons that already happened (completed, cancelled,
// no-show) are preserved and each consumes one unit of the enrollment total;
// only the remaining units are re-planned. The new series starts the day after
// the most recent historical event so rescheduling never rewrites the past.
// PRE: Client exists and has a valid enrollment
// POST: Planned lessons match the enrollment; history is untouched. On any
// error, including a concurrent-edit conflict, the store is unchanged
func ExecuteReconcilePlan(ctx context.Context, input ReconcilePlanInput, deps ReconcilePlanDeps) (ReconcilePlanResult, error) {
	if input.ClientID == "" {
		return ReconcilePlanResult{}, errors.New("client ID is required")
	}

	unlock := lockClientPlan(input.ClientID)
	defer unlock()

	c, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return ReconcilePlanResult{}, err
	}
	if err := c.Enrollment.Validate(); err != nil {
		return ReconcilePlanResult{}, err
	}

	existing, err := deps.LessonStore.ListByClientID(ctx, input.ClientID)
	if err != nil {
		return ReconcilePlanResult{}, err
	}

	var obsoleteIDs []string
	var lastEvent time.Time
	preserved := 0
	for _, l := range existing {
		if l.IsPlanned() {
			obsoleteIDs = append(obsoleteIDs, l.ID)
			continue
		}
		preserved++
		if event := l.EventDate(); event.After(lastEvent) {
			lastEvent = event
		}
	}

	remaining := c.Enrollment.TotalLessons - preserved
	if remaining <= 0 {
		// Enrollment already used up: drop stale planned lessons, plan nothing new
		if err := deps.LessonStore.ReplacePlanned(ctx, input.ClientID, obsoleteIDs, nil); err != nil {
			return ReconcilePlanResult{}, err
		}
		slog.Info("plan_event", "event", "plan_reconciled", "client_id", c.ID, "preserved", preserved, "removed", len(obsoleteIDs), "created", 0)
		return ReconcilePlanResult{Preserved: preserved, Removed: len(obsoleteIDs)}, nil
	}

	anchor := c.Enrollment.StartDate
	if !lastEvent.IsZero() {
		anchor = schedule.DateOnly(lastEvent).AddDate(0, 0, 1)
	}

	// Enumerate before touching the store so a horizon failure changes nothing
	replacements, err := buildPlannedLessons(c, anchor, remaining, deps.GenerateID, deps.Now)
	if err != nil {
		return ReconcilePlanResult{}, err
	}

	if err := deps.LessonStore.ReplacePlanned(ctx, input.ClientID, obsoleteIDs, replacements); err != nil {
		return ReconcilePlanResult{}, err
	}

	slog.Info("plan_event", "event", "plan_reconciled", "client_id", c.ID, "preserved", preserved, "removed", len(obsoleteIDs), "created", len(replacements))
	return ReconcilePlanResult{Preserved: preserved, Removed: len(obsoleteIDs), Created: replacements}, nil
}
