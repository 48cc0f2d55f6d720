package lesson

import (
	"context"
	"errors"

	domain "yourtrainer/internal/domain/lesson"
)

// Storage errors
var (
	// ErrNotFound is returned when no lesson exists with the given id.
	ErrNotFound = errors.New("lesson not found")
	// ErrReplaceConflict is returned when the planned lessons targeted by a
	// replace were modified or removed by a concurrent writer.
	ErrReplaceConflict = errors.New("planned lessons changed during replace")
)

// Store persists Lesson state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Lesson, error)
	Save(ctx context.Context, value domain.Lesson) error
	SaveMany(ctx context.Context, values []domain.Lesson) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
	DeleteByClientID(ctx context.Context, clientID string) (int, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Lesson, error)
	ListByClientID(ctx context.Context, clientID string) ([]domain.Lesson, error)
	ListByTrainerID(ctx context.Context, trainerID string) ([]domain.Lesson, error)
	ListByDate(ctx context.Context, date string) ([]domain.Lesson, error)
	ListByTrainerIDAndDate(ctx context.Context, trainerID string, date string) ([]domain.Lesson, error)
	ListByTrainerIDAndDateRange(ctx context.Context, trainerID string, startDate string, endDate string) ([]domain.Lesson, error)
	ReplacePlanned(ctx context.Context, clientID string, obsoleteIDs []string, replacements []domain.Lesson) error
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
}
