package projections

import (
	"context"
	"errors"

	"yourtrainer/internal/domain/lesson"
)

// StatsLessonStore defines the lesson store interface needed by the stats projection.
type StatsLessonStore interface {
	ListByClientID(ctx context.Context, clientID string) ([]lesson.Lesson, error)
	ListByTrainerID(ctx context.Context, trainerID string) ([]lesson.Lesson, error)
}

// GetLessonStatsQuery carries input for the lesson stats projection.
// Exactly one of ClientID or TrainerID selects the scope: a single client's
// history, or everything a trainer has on the books.
type GetLessonStatsQuery struct {
	ClientID  string
	TrainerID string
}

// GetLessonStatsResult summarizes a lesson history.
// Rates are computed over held sessions only, so a freshly registered client
// with nothing but planned lessons reports 0 across the board.
type GetLessonStatsResult struct {
	Total     int
	Planned   int
	Completed int
	Cancelled int
	NoShows   int

	CompletionRate float64 // completed / (total - planned), 0 when no sessions held
	NoShowRate     float64 // no-shows / (total - planned), 0 when no sessions held

	AvgDifficulty  float64 // over completed lessons with a difficulty rating
	AvgPerformance float64 // over completed lessons with a performance rating
}

// GetLessonStatsDeps holds dependencies for the lesson stats projection.
type GetLessonStatsDeps struct {
	LessonStore StatsLessonStore
}

// QueryGetLessonStats aggregates a lesson history into counts, rates, and
// rating averages, scoped to a client or to a whole trainer.
// PRE: exactly one of query.ClientID and query.TrainerID is non-empty
// POST: Rates use held sessions as denominator; zero denominator yields 0
func QueryGetLessonStats(ctx context.Context, query GetLessonStatsQuery, deps GetLessonStatsDeps) (GetLessonStatsResult, error) {
	var lessons []lesson.Lesson
	var err error
	switch {
	case query.ClientID != "" && query.TrainerID != "":
		return GetLessonStatsResult{}, errors.New("client ID and trainer ID are mutually exclusive")
	case query.ClientID != "":
		lessons, err = deps.LessonStore.ListByClientID(ctx, query.ClientID)
	case query.TrainerID != "":
		lessons, err = deps.LessonStore.ListByTrainerID(ctx, query.TrainerID)
	default:
		return GetLessonStatsResult{}, errors.New("client ID or trainer ID is required")
	}
	if err != nil {
		return GetLessonStatsResult{}, err
	}

	var result GetLessonStatsResult
	var difficultySum, difficultyN, performanceSum, performanceN int

	for _, l := range lessons {
		result.Total++
		switch l.Status {
		case lesson.StatusPlanned:
			result.Planned++
		case lesson.StatusCompleted:
			result.Completed++
			if l.DifficultyRating > 0 {
				difficultySum += l.DifficultyRating
				difficultyN++
			}
			if l.PerformanceRating > 0 {
				performanceSum += l.PerformanceRating
				performanceN++
			}
		case lesson.StatusCancelled:
			result.Cancelled++
		case lesson.StatusNoShow:
			result.NoShows++
		}
	}

	if held := result.Total - result.Planned; held > 0 {
		result.CompletionRate = float64(result.Completed) / float64(held)
		result.NoShowRate = float64(result.NoShows) / float64(held)
	}
	if difficultyN > 0 {
		result.AvgDifficulty = float64(difficultySum) / float64(difficultyN)
	}
	if performanceN > 0 {
		result.AvgPerformance = float64(performanceSum) / float64(performanceN)
	}

	return result, nil
}
