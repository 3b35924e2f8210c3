package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/repository"
)

// settingsRowID pins the singleton row; there is exactly one settings row.
const settingsRowID = 1

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) repository.SettingsRepository {
	return &SettingsRepo{db: db}
}

// GetOrCreate returns the singleton settings row, inserting the defaults on
// first access. The ON CONFLICT clause makes concurrent first reads safe.
func (repo *SettingsRepo) GetOrCreate(ctx context.Context) (*entity.SchedulerSettings, error) {
	const insert = `
INSERT INTO scheduler_settings (id, generation_interval_minutes, auto_generation_enabled, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, insert,
		settingsRowID,
		entity.DefaultGenerationIntervalMinutes,
		entity.DefaultAutoGenerationEnabled,
	); err != nil {
		return nil, fmt.Errorf("GetOrCreate: insert: %w", err)
	}

	return repo.get(ctx)
}

func (repo *SettingsRepo) UpdateInterval(ctx context.Context, minutes int) (*entity.SchedulerSettings, error) {
	const query = `
UPDATE scheduler_settings SET
       generation_interval_minutes = $1,
       updated_at                  = now()
WHERE id = $2`
	if _, err := repo.db.ExecContext(ctx, query, minutes, settingsRowID); err != nil {
		return nil, fmt.Errorf("UpdateInterval: %w", err)
	}
	return repo.get(ctx)
}

func (repo *SettingsRepo) SetEnabled(ctx context.Context, enabled bool) (*entity.SchedulerSettings, error) {
	const query = `
UPDATE scheduler_settings SET
       auto_generation_enabled = $1,
       updated_at              = now()
WHERE id = $2`
	if _, err := repo.db.ExecContext(ctx, query, enabled, settingsRowID); err != nil {
		return nil, fmt.Errorf("SetEnabled: %w", err)
	}
	return repo.get(ctx)
}

func (repo *SettingsRepo) get(ctx context.Context) (*entity.SchedulerSettings, error) {
	const query = `
SELECT id, generation_interval_minutes, auto_generation_enabled, updated_at
FROM scheduler_settings
WHERE id = $1
LIMIT 1`
	var settings entity.SchedulerSettings
	err := repo.db.QueryRowContext(ctx, query, settingsRowID).Scan(
		&settings.ID,
		&settings.GenerationIntervalMinutes,
		&settings.AutoGenerationEnabled,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}
