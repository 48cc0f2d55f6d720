package client

import (
	"context"
	"errors"

	domain "yourtrainer/internal/domain/client"
)

// ErrNotFound is returned when no client exists with the given id.
var ErrNotFound = errors.New("client not found")

// Store persists Client state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Client, error)
	Save(ctx context.Context, value domain.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Client, error)
	ListByTrainerID(ctx context.Context, trainerID string) ([]domain.Client, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
}
