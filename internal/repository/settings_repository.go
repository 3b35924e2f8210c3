package repository

import (
	"context"

	"cryptopress/internal/domain/entity"
)

// SettingsRepository provides get-or-create singleton semantics for the
// scheduler settings row. Writes are last-writer-wins; no transactional
// read-modify-write is required.
type SettingsRepository interface {
	GetOrCreate(ctx context.Context) (*entity.SchedulerSettings, error)
	UpdateInterval(ctx context.Context, minutes int) (*entity.SchedulerSettings, error)
	SetEnabled(ctx context.Context, enabled bool) (*entity.SchedulerSettings, error)
}
