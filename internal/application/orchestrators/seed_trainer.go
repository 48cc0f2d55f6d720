package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yourtrainer/internal/domain/account"
)

// AccountSeedStore defines the store interface needed by trainer seeding.
type AccountSeedStore interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// SeedTrainerInput carries the bootstrap trainer credentials.
type SeedTrainerInput struct {
	Email    string
	Password string
}

// SeedTrainerDeps holds dependencies for SeedTrainer.
type SeedTrainerDeps struct {
	AccountStore AccountSeedStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedTrainer creates the initial trainer account if it doesn't already
// exist. It is idempotent: an existing account (checked by email) is left alone.
// PRE: Database schema is initialized
// POST: A trainer account with the given email exists
func ExecuteSeedTrainer(ctx context.Context, input SeedTrainerInput, deps SeedTrainerDeps) (string, error) {
	if input.Email == "" {
		return "", errors.New("seed trainer email is required")
	}

	if existing, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return existing.ID, nil
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      account.RoleTrainer,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", fmt.Errorf("seed trainer %s: set password: %w", input.Email, err)
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", fmt.Errorf("seed trainer %s: save: %w", input.Email, err)
	}

	slog.Info("seed_event", "event", "trainer_seeded", "email", input.Email)
	return acct.ID, nil
}
