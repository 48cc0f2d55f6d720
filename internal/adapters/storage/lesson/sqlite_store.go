package lesson

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"yourtrainer/internal/adapters/storage"
	domain "yourtrainer/internal/domain/lesson"
)

const lessonColumns = "id, client_id, trainer_id, planned_date, planned_time, planned_weekday, actual_date, actual_time, status, notes, exercises, difficulty_rating, performance_rating, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new lesson store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Lesson by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Lesson, error) {
	query := "SELECT " + lessonColumns + " FROM lesson WHERE id = ?"

	row := s.db.QueryRowContext(ctx, query, id)
	entity, err := scanLesson(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Lesson{}, ErrNotFound
	}
	return entity, err
}

// Save persists a Lesson to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Lesson) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertLesson(ctx, tx, entity); err != nil {
		return err
	}

	return tx.Commit()
}

// SaveMany persists a batch of Lessons in a single transaction.
// PRE: all entities have been validated
// POST: Either every entity is persisted or none are
func (s *SQLiteStore) SaveMany(ctx context.Context, entities []domain.Lesson) error {
	if len(entities) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, entity := range entities {
		if err := upsertLesson(ctx, tx, entity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a Lesson from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed; ErrNotFound if it did not exist
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM lesson WHERE id = ?", id)
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

// DeleteMany removes the lessons with the given ids.
// PRE: none
// POST: Returns the number of deleted records; missing ids are skipped
func (s *SQLiteStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("DELETE FROM lesson WHERE id IN (%s)", strings.Join(placeholders, ","))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// DeleteByClientID removes all lessons for a client.
// PRE: clientID is non-empty
// POST: Returns the number of deleted records
func (s *SQLiteStore) DeleteByClientID(ctx context.Context, clientID string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM lesson WHERE client_id = ?", clientID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// List retrieves a list of Lessons based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by planned date
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Lesson, error) {
	query := "SELECT " + lessonColumns + " FROM lesson"
	var args []interface{}
	if filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " ORDER BY planned_date, planned_time, id LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListByClientID retrieves all lessons for a client, ordered by planned date ascending.
// PRE: clientID is non-empty
// POST: Returns records for the given client
func (s *SQLiteStore) ListByClientID(ctx context.Context, clientID string) ([]domain.Lesson, error) {
	query := "SELECT " + lessonColumns + " FROM lesson WHERE client_id = ? ORDER BY planned_date, planned_time, id"

	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListByTrainerID retrieves all lessons for a trainer across every client.
// PRE: trainerID is non-empty
// POST: Returns records ordered by planned date ascending
func (s *SQLiteStore) ListByTrainerID(ctx context.Context, trainerID string) ([]domain.Lesson, error) {
	query := "SELECT " + lessonColumns + " FROM lesson WHERE trainer_id = ? ORDER BY planned_date, planned_time, id"

	rows, err := s.db.QueryContext(ctx, query, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListByTrainerIDAndDate retrieves a trainer's lessons planned for a specific date.
// PRE: trainerID is non-empty, date is YYYY-MM-DD format
// POST: Returns records ordered by planned time, ties broken by id
func (s *SQLiteStore) ListByTrainerIDAndDate(ctx context.Context, trainerID string, date string) ([]domain.Lesson, error) {
	query := "SELECT " + lessonColumns + ` FROM lesson
		WHERE trainer_id = ? AND planned_date = ?
		ORDER BY planned_time, id`

	rows, err := s.db.QueryContext(ctx, query, trainerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListByDate retrieves every lesson planned for a specific date across all trainers.
// PRE: date is YYYY-MM-DD format
// POST: Returns records ordered by planned time, ties broken by id
func (s *SQLiteStore) ListByDate(ctx context.Context, date string) ([]domain.Lesson, error) {
	query := "SELECT " + lessonColumns + ` FROM lesson
		WHERE planned_date = ?
		ORDER BY planned_time, id`

	rows, err := s.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ListByTrainerIDAndDateRange retrieves a trainer's lessons planned within a date range.
// PRE: trainerID is non-empty, startDate and endDate are YYYY-MM-DD format
// POST: Returns records where planned_date falls within the range (inclusive)
func (s *SQLiteStore) ListByTrainerIDAndDateRange(ctx context.Context, trainerID string, startDate string, endDate string) ([]domain.Lesson, error) {
	query := "SELECT " + lessonColumns + ` FROM lesson
		WHERE trainer_id = ? AND planned_date >= ? AND planned_date <= ?
		ORDER BY planned_date, planned_time, id`

	rows, err := s.db.QueryContext(ctx, query, trainerID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLessons(rows)
}

// ReplacePlanned atomically swaps a client's planned lessons: the obsolete ids
// are deleted and the replacements inserted in one transaction.
// PRE: every id in obsoleteIDs belongs to clientID and had planned status when read
// POST: On success all obsolete rows are gone and all replacements are persisted;
// on ErrReplaceConflict the database is unchanged
func (s *SQLiteStore) ReplacePlanned(ctx context.Context, clientID string, obsoleteIDs []string, replacements []domain.Lesson) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if len(obsoleteIDs) > 0 {
		placeholders := make([]string, len(obsoleteIDs))
		args := make([]any, len(obsoleteIDs)+1)
		for i, id := range obsoleteIDs {
			placeholders[i] = "?"
			args[i] = id
		}
		args[len(obsoleteIDs)] = clientID

		query := fmt.Sprintf(
			"DELETE FROM lesson WHERE id IN (%s) AND client_id = ? AND status = 'planned'",
			strings.Join(placeholders, ","),
		)
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		// A concurrent edit (or delete) of any targeted planned lesson aborts the swap.
		if int(n) != len(obsoleteIDs) {
			return ErrReplaceConflict
		}
	}

	for _, entity := range replacements {
		if err := upsertLesson(ctx, tx, entity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// upsertLesson writes a single lesson row inside an open transaction.
func upsertLesson(ctx context.Context, tx *sql.Tx, entity domain.Lesson) error {
	fields := []string{"id", "client_id", "trainer_id", "planned_date", "planned_time", "planned_weekday", "actual_date", "actual_time", "status", "notes", "exercises", "difficulty_rating", "performance_rating", "created_at", "updated_at"}
	placeholders := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	updates := []string{"client_id=excluded.client_id", "trainer_id=excluded.trainer_id", "planned_date=excluded.planned_date", "planned_time=excluded.planned_time", "planned_weekday=excluded.planned_weekday", "actual_date=excluded.actual_date", "actual_time=excluded.actual_time", "status=excluded.status", "notes=excluded.notes", "exercises=excluded.exercises", "difficulty_rating=excluded.difficulty_rating", "performance_rating=excluded.performance_rating", "updated_at=excluded.updated_at"}

	query := fmt.Sprintf(
		"INSERT INTO lesson (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	// Format actual date/time: NULL when unset
	var actualDateVal, actualTimeVal interface{}
	if !entity.ActualDate.IsZero() {
		actualDateVal = entity.ActualDate.Format("2006-01-02")
	}
	if entity.ActualTime != "" {
		actualTimeVal = entity.ActualTime
	}

	var updatedAtVal interface{}
	if !entity.UpdatedAt.IsZero() {
		updatedAtVal = entity.UpdatedAt.Format(time.RFC3339Nano)
	}

	exercises, err := json.Marshal(exercisesOrEmpty(entity.Exercises))
	if err != nil {
		return fmt.Errorf("failed to encode exercises: %w", err)
	}

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.ClientID,
		entity.TrainerID,
		entity.PlannedDate.Format("2006-01-02"),
		entity.PlannedTime,
		entity.PlannedWeekday,
		actualDateVal,
		actualTimeVal,
		entity.Status,
		entity.Notes,
		string(exercises),
		entity.DifficultyRating,
		entity.PerformanceRating,
		entity.CreatedAt.Format(time.RFC3339Nano),
		updatedAtVal,
	)
	return err
}

// exercisesOrEmpty normalizes a nil slice so the column stores '[]' not 'null'.
func exercisesOrEmpty(exercises []string) []string {
	if exercises == nil {
		return []string{}
	}
	return exercises
}

// scanLesson reads one lesson row through the given Scan function.
func scanLesson(scan func(dest ...any) error) (domain.Lesson, error) {
	var entity domain.Lesson
	var plannedDateStr, createdAtStr, exercisesStr string
	var actualDate, actualTime, updatedAt sql.NullString
	err := scan(
		&entity.ID,
		&entity.ClientID,
		&entity.TrainerID,
		&plannedDateStr,
		&entity.PlannedTime,
		&entity.PlannedWeekday,
		&actualDate,
		&actualTime,
		&entity.Status,
		&entity.Notes,
		&exercisesStr,
		&entity.DifficultyRating,
		&entity.PerformanceRating,
		&createdAtStr,
		&updatedAt,
	)
	if err != nil {
		return domain.Lesson{}, err
	}

	entity.PlannedDate, err = time.Parse("2006-01-02", plannedDateStr)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("failed to parse planned_date: %w", err)
	}
	if actualDate.Valid {
		entity.ActualDate, err = time.Parse("2006-01-02", actualDate.String)
		if err != nil {
			return domain.Lesson{}, fmt.Errorf("failed to parse actual_date: %w", err)
		}
	}
	if actualTime.Valid {
		entity.ActualTime = actualTime.String
	}
	if exercisesStr != "" {
		if err := json.Unmarshal([]byte(exercisesStr), &entity.Exercises); err != nil {
			return domain.Lesson{}, fmt.Errorf("failed to decode exercises: %w", err)
		}
	}
	entity.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if updatedAt.Valid {
		entity.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt.String)
		if err != nil {
			return domain.Lesson{}, fmt.Errorf("failed to parse updated_at: %w", err)
		}
	}
	return entity, nil
}

// collectLessons drains a result set into a slice.
func collectLessons(rows *sql.Rows) ([]domain.Lesson, error) {
	var results []domain.Lesson
	for rows.Next() {
		entity, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
