package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/repository"
)

const runColumns = `id, status, articles_created, error_message, error_details, started_at, completed_at, duration_ms`

type GenerationRunRepo struct {
	db *sql.DB
}

func NewGenerationRunRepo(db *sql.DB) repository.GenerationRunRepository {
	return &GenerationRunRepo{db: db}
}

func (repo *GenerationRunRepo) Create(ctx context.Context, run *entity.GenerationRun) error {
	const query = `
INSERT INTO generation_runs
       (id, status, articles_created, error_message, error_details, started_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, query,
		run.ID, string(run.Status), run.ArticlesCreated,
		nullableString(run.ErrorMessage), nullableString(run.ErrorDetails),
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Finish applies the terminal result to a run still in running state.
// The status guard in the WHERE clause makes finalization atomic: a run
// that already reached a terminal status is never modified again.
func (repo *GenerationRunRepo) Finish(ctx context.Context, id string, result repository.RunResult) error {
	const query = `
UPDATE generation_runs SET
       status           = $1,
       articles_created = $2,
       error_message    = $3,
       error_details    = $4,
       completed_at     = $5,
       duration_ms      = $6
WHERE id = $7 AND status = $8`
	res, err := repo.db.ExecContext(ctx, query,
		string(result.Status), result.ArticlesCreated,
		nullableString(result.ErrorMessage), nullableString(result.ErrorDetails),
		result.CompletedAt, result.DurationMS,
		id, string(entity.RunStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("Finish: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		existing, getErr := repo.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		if existing.Status.IsTerminal() {
			return entity.ErrRunAlreadyFinished
		}
		return entity.ErrRunNotFound
	}
	return nil
}

func (repo *GenerationRunRepo) Get(ctx context.Context, id string) (*entity.GenerationRun, error) {
	const query = `
SELECT ` + runColumns + `
FROM generation_runs
WHERE id = $1
LIMIT 1`
	run, err := scanRun(repo.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return run, nil
}

func (repo *GenerationRunRepo) ListPaginated(ctx context.Context, offset, limit int) ([]*entity.GenerationRun, error) {
	const query = `
SELECT ` + runColumns + `
FROM generation_runs
ORDER BY started_at DESC
LIMIT $1 OFFSET $2`
	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*entity.GenerationRun, 0, limit)
	for rows.Next() {
		run, err := scanRunRow(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPaginated: Scan: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (repo *GenerationRunRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM generation_runs`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *GenerationRunRepo) CountByStatus(ctx context.Context, status entity.RunStatus) (int64, error) {
	const query = `SELECT COUNT(*) FROM generation_runs WHERE status = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByStatus: %w", err)
	}
	return count, nil
}

func (repo *GenerationRunRepo) LatestStarted(ctx context.Context) (*entity.GenerationRun, error) {
	const query = `
SELECT ` + runColumns + `
FROM generation_runs
ORDER BY started_at DESC
LIMIT 1`
	run, err := scanRun(repo.db.QueryRowContext(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("LatestStarted: %w", err)
	}
	return run, nil
}

func (repo *GenerationRunRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM generation_runs WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrRunNotFound
	}
	return nil
}

func (repo *GenerationRunRepo) DeleteAll(ctx context.Context) (int64, error) {
	const query = `DELETE FROM generation_runs`
	res, err := repo.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("DeleteAll: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanRun(row rowScanner) (*entity.GenerationRun, error) {
	run, err := scanRunRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func scanRunRow(row rowScanner) (*entity.GenerationRun, error) {
	var (
		run         entity.GenerationRun
		status      string
		errMessage  sql.NullString
		errDetails  sql.NullString
		completedAt sql.NullTime
		durationMS  sql.NullInt64
	)
	if err := row.Scan(
		&run.ID, &status, &run.ArticlesCreated,
		&errMessage, &errDetails, &run.StartedAt,
		&completedAt, &durationMS,
	); err != nil {
		return nil, err
	}

	run.Status = entity.RunStatus(status)
	run.ErrorMessage = errMessage.String
	run.ErrorDetails = errDetails.String
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if durationMS.Valid {
		run.DurationMS = &durationMS.Int64
	}
	return &run, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
