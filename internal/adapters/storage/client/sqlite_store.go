package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"yourtrainer/internal/adapters/storage"
	domain "yourtrainer/internal/domain/client"
)

const clientColumns = "id, trainer_id, name, email, phone, status, start_date, total_lessons, weekly_days, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ClientStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Client by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Client, error) {
	query := "SELECT " + clientColumns + " FROM client WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanClient(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Client{}, ErrNotFound
	}
	return entity, err
}

// Save persists a Client to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Client) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fields := []string{"id", "trainer_id", "name", "email", "phone", "status", "start_date", "total_lessons", "weekly_days", "created_at", "updated_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{
		"trainer_id=excluded.trainer_id",
		"name=excluded.name",
		"email=excluded.email",
		"phone=excluded.phone",
		"status=excluded.status",
		"start_date=excluded.start_date",
		"total_lessons=excluded.total_lessons",
		"weekly_days=excluded.weekly_days",
		"updated_at=excluded.updated_at",
	}

	query := fmt.Sprintf(
		"INSERT INTO client (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	var emailVal, phoneVal, updatedAtVal interface{}
	if entity.Email != "" {
		emailVal = entity.Email
	}
	if entity.Phone != "" {
		phoneVal = entity.Phone
	}
	if !entity.UpdatedAt.IsZero() {
		updatedAtVal = entity.UpdatedAt.Format(time.RFC3339Nano)
	}

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.TrainerID,
		entity.Name,
		emailVal,
		phoneVal,
		entity.Status,
		entity.Enrollment.StartDate.Format("2006-01-02"),
		entity.Enrollment.TotalLessons,
		strings.Join(entity.Enrollment.WeeklyDays, ","),
		entity.CreatedAt.Format(time.RFC3339Nano),
		updatedAtVal,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a Client from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed; ErrNotFound if it did not exist
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM client WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves Clients based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by name
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Client, error) {
	var queryBuilder strings.Builder
	var args []interface{}

	queryBuilder.WriteString("SELECT " + clientColumns + " FROM client")

	if filter.Status != "" {
		queryBuilder.WriteString(" WHERE status = ?")
		args = append(args, filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	queryBuilder.WriteString(" ORDER BY name LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Client
	for rows.Next() {
		entity, err := scanClient(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// ListByTrainerID retrieves all clients for a trainer, ordered by name.
// PRE: trainerID is non-empty
// POST: Returns records for the given trainer
func (s *SQLiteStore) ListByTrainerID(ctx context.Context, trainerID string) ([]domain.Client, error) {
	query := "SELECT " + clientColumns + " FROM client WHERE trainer_id = ? ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Client
	for rows.Next() {
		entity, err := scanClient(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of clients.
// PRE: none
// POST: Returns total client count
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM client").Scan(&count)
	return count, err
}

// scanClient extracts a Client from a row scanner function.
func scanClient(scan func(dest ...interface{}) error) (domain.Client, error) {
	var entity domain.Client
	var startDateStr, weeklyDaysStr, createdAtStr string
	var email, phone, updatedAt sql.NullString
	err := scan(
		&entity.ID,
		&entity.TrainerID,
		&entity.Name,
		&email,
		&phone,
		&entity.Status,
		&startDateStr,
		&entity.Enrollment.TotalLessons,
		&weeklyDaysStr,
		&createdAtStr,
		&updatedAt,
	)
	if err != nil {
		return domain.Client{}, err
	}
	if email.Valid {
		entity.Email = email.String
	}
	if phone.Valid {
		entity.Phone = phone.String
	}
	entity.Enrollment.StartDate, err = time.Parse("2006-01-02", startDateStr)
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if weeklyDaysStr != "" {
		entity.Enrollment.WeeklyDays = strings.Split(weeklyDaysStr, ",")
	}
	entity.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if updatedAt.Valid {
		entity.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt.String)
		if err != nil {
			return domain.Client{}, fmt.Errorf("failed to parse updated_at: %w", err)
		}
	}
	return entity, nil
}
