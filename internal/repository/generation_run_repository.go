package repository

import (
	"context"
	"time"

	"cryptopress/internal/domain/entity"
)

// RunResult carries the terminal outcome applied to a generation run.
type RunResult struct {
	Status          entity.RunStatus
	ArticlesCreated int
	ErrorMessage    string
	ErrorDetails    string
	CompletedAt     time.Time
	DurationMS      int64
}

// GenerationRunRepository defines persistence operations for the run log.
type GenerationRunRepository interface {
	// Create inserts a new run in running state.
	Create(ctx context.Context, run *entity.GenerationRun) error
	// Finish applies a terminal status to the run created at the start of the
	// same invocation. A run that already reached a terminal status must not
	// be modified again; implementations return entity.ErrRunAlreadyFinished.
	Finish(ctx context.Context, id string, result RunResult) error
	Get(ctx context.Context, id string) (*entity.GenerationRun, error)
	// ListPaginated returns runs ordered by start time descending.
	ListPaginated(ctx context.Context, offset, limit int) ([]*entity.GenerationRun, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status entity.RunStatus) (int64, error)
	// LatestStarted returns the most recently started run regardless of
	// status, or entity.ErrRunNotFound when the log is empty. The scheduler
	// uses it to suppress duplicate startup bursts across process restarts.
	LatestStarted(ctx context.Context) (*entity.GenerationRun, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}
