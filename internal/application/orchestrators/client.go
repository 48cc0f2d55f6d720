package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"yourtrainer/internal/domain/client"
	"yourtrainer/internal/domain/schedule"
)

// ClientStore defines the interface for client persistence.
type ClientStore interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
	Save(ctx context.Context, c client.Client) error
	Delete(ctx context.Context, id string) error
}

// LessonCascadeStore defines the lesson store interface needed by client deletion.
type LessonCascadeStore interface {
	DeleteByClientID(ctx context.Context, clientID string) (int, error)
}

// --- Register Client ---

// RegisterClientInput carries input for the client registration orchestrator.
type RegisterClientInput struct {
	TrainerID    string
	Name         string
	Email        string
	Phone        string
	StartDate    time.Time
	TotalLessons int
	WeeklyDays   []string
}

// RegisterClientResult carries the created client and generated plan.
type RegisterClientResult struct {
	Client GeneratePlanResult
	ID     string
}

// RegisterClientDeps holds dependencies for RegisterClient.
type RegisterClientDeps struct {
	ClientStore ClientStore
	LessonStore LessonBatchStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteRegisterClient creates a client and generates their full lesson plan
// in one step. A plan failure (for example an unreachable schedule horizon)
// rolls the registration back so no client is left without lessons.
// PRE: Valid name, trainer, and enrollment parameters
// POST: Client persisted with Status=active and TotalLessons planned lessons
func ExecuteRegisterClient(ctx context.Context, input RegisterClientInput, deps RegisterClientDeps) (RegisterClientResult, error) {
	c := client.Client{
		ID:        deps.GenerateID(),
		TrainerID: input.TrainerID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Status:    client.StatusActive,
		Enrollment: client.Enrollment{
			StartDate:    schedule.DateOnly(input.StartDate),
			TotalLessons: input.TotalLessons,
			WeeklyDays:   input.WeeklyDays,
		},
		CreatedAt: deps.Now(),
	}

	if err := c.Validate(); err != nil {
		return RegisterClientResult{}, err
	}

	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return RegisterClientResult{}, err
	}

	plan, err := ExecuteGeneratePlan(ctx, GeneratePlanInput{ClientID: c.ID}, GeneratePlanDeps{
		ClientStore: deps.ClientStore,
		LessonStore: deps.LessonStore,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	})
	if err != nil {
		_ = deps.ClientStore.Delete(ctx, c.ID)
		return RegisterClientResult{}, err
	}

	slog.Info("client_event", "event", "client_registered", "client_id", c.ID, "trainer_id", c.TrainerID, "lessons", len(plan.Lessons))
	return RegisterClientResult{ID: c.ID, Client: plan}, nil
}

// --- Update Client ---

// UpdateClientInput carries a partial contact-detail update: nil fields are
// left unchanged. Enrollment changes go through UpdateEnrollment instead,
// since they require reconciling the plan.
type UpdateClientInput struct {
	ClientID string
	Name     *string
	Email    *string
	Phone    *string
}

// UpdateClientDeps holds dependencies for UpdateClient.
type UpdateClientDeps struct {
	ClientStore ClientStore
	Now         func() time.Time
}

// ExecuteUpdateClient applies a partial update to a client's contact details.
// PRE: Client exists
// POST: Provided fields updated
func ExecuteUpdateClient(ctx context.Context, input UpdateClientInput, deps UpdateClientDeps) (client.Client, error) {
	if input.ClientID == "" {
		return client.Client{}, errors.New("client ID is required")
	}

	c, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return client.Client{}, err
	}

	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Email != nil {
		c.Email = *input.Email
	}
	if input.Phone != nil {
		c.Phone = *input.Phone
	}
	c.UpdatedAt = deps.Now()

	if err := c.Validate(); err != nil {
		return client.Client{}, err
	}

	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return client.Client{}, err
	}

	slog.Info("client_event", "event", "client_updated", "client_id", c.ID)
	return c, nil
}

// --- Update Enrollment ---

// UpdateEnrollmentInput carries the new enrollment parameters. Nil fields keep
// their current values.
type UpdateEnrollmentInput struct {
	ClientID     string
	StartDate    *time.Time
	TotalLessons *int
	WeeklyDays   *[]string
}

// UpdateEnrollmentDeps holds dependencies for UpdateEnrollment.
type UpdateEnrollmentDeps struct {
	ClientStore ClientStore
	LessonStore LessonReconcileStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteUpdateEnrollment changes a client's enrollment and reconciles their
// lesson plan against it.
// PRE: Client exists; resulting enrollment is valid
// POST: Enrollment persisted and planned lessons rebuilt; history preserved
func ExecuteUpdateEnrollment(ctx context.Context, input UpdateEnrollmentInput, deps UpdateEnrollmentDeps) (ReconcilePlanResult, error) {
	if input.ClientID == "" {
		return ReconcilePlanResult{}, errors.New("client ID is required")
	}

	c, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return ReconcilePlanResult{}, err
	}

	if input.StartDate != nil {
		c.Enrollment.StartDate = schedule.DateOnly(*input.StartDate)
	}
	if input.TotalLessons != nil {
		c.Enrollment.TotalLessons = *input.TotalLessons
	}
	if input.WeeklyDays != nil {
		c.Enrollment.WeeklyDays = *input.WeeklyDays
	}
	c.UpdatedAt = deps.Now()

	if err := c.Validate(); err != nil {
		return ReconcilePlanResult{}, err
	}

	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return ReconcilePlanResult{}, err
	}

	slog.Info("client_event", "event", "enrollment_updated", "client_id", c.ID, "total_lessons", c.Enrollment.TotalLessons)

	return ExecuteReconcilePlan(ctx, ReconcilePlanInput{ClientID: c.ID}, ReconcilePlanDeps{
		ClientStore: deps.ClientStore,
		LessonStore: deps.LessonStore,
		GenerateID:  deps.GenerateID,
		Now:         deps.Now,
	})
}

// --- Archive / Restore Client ---

// ArchiveClientInput carries input for the archive orchestrator.
type ArchiveClientInput struct {
	ClientID string
}

// ArchiveClientDeps holds dependencies for ArchiveClient.
type ArchiveClientDeps struct {
	ClientStore ClientStore
	Now         func() time.Time
}

// ExecuteArchiveClient archives a client.
// PRE: ClientID must be non-empty; client must exist and not be archived
// POST: Client status set to archived; their lessons are untouched
func ExecuteArchiveClient(ctx context.Context, input ArchiveClientInput, deps ArchiveClientDeps) error {
	if input.ClientID == "" {
		return errors.New("client ID is required")
	}

	c, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return err
	}

	if err := c.Archive(); err != nil {
		return err
	}
	c.UpdatedAt = deps.Now()

	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return err
	}

	slog.Info("client_event", "event", "client_archived", "client_id", input.ClientID)
	return nil
}

// RestoreClientInput carries input for the restore orchestrator.
type RestoreClientInput struct {
	ClientID string
}

// RestoreClientDeps holds dependencies for RestoreClient.
type RestoreClientDeps struct {
	ClientStore ClientStore
	Now         func() time.Time
}

// ExecuteRestoreClient restores an archived client to active.
// PRE: ClientID must be non-empty; client must exist and be archived
// POST: Client status set to active
func ExecuteRestoreClient(ctx context.Context, input RestoreClientInput, deps RestoreClientDeps) error {
	if input.ClientID == "" {
		return errors.New("client ID is required")
	}

	c, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return err
	}

	if err := c.Restore(); err != nil {
		return err
	}
	c.UpdatedAt = deps.Now()

	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return err
	}

	slog.Info("client_event", "event", "client_restored", "client_id", input.ClientID)
	return nil
}

// --- Delete Client ---

// DeleteClientInput carries input for the delete orchestrator.
type DeleteClientInput struct {
	ClientID string
}

// DeleteClientDeps holds dependencies for DeleteClient.
type DeleteClientDeps struct {
	ClientStore ClientStore
	LessonStore LessonCascadeStore
}

// ExecuteDeleteClient removes a client and every lesson that references them.
// PRE: ClientID must be non-empty; client must exist
// POST: Client and all their lessons are gone
func ExecuteDeleteClient(ctx context.Context, input DeleteClientInput, deps DeleteClientDeps) error {
	if input.ClientID == "" {
		return errors.New("client ID is required")
	}

	if _, err := deps.ClientStore.GetByID(ctx, input.ClientID); err != nil {
		return err
	}

	// Lessons first so the foreign key never dangles
	removed, err := deps.LessonStore.DeleteByClientID(ctx, input.ClientID)
	if err != nil {
		return err
	}

	if err := deps.ClientStore.Delete(ctx, input.ClientID); err != nil {
		return err
	}

	slog.Info("client_event", "event", "client_deleted", "client_id", input.ClientID, "lessons_removed", removed)
	return nil
}
