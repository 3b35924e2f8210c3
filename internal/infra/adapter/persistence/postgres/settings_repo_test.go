package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopress/internal/domain/entity"
	pg "cryptopress/internal/infra/adapter/persistence/postgres"
)

var settingsCols = []string{
	"id", "generation_interval_minutes", "auto_generation_enabled", "updated_at",
}

func settingsRow(minutes int, enabled bool) *sqlmock.Rows {
	return sqlmock.NewRows(settingsCols).AddRow(
		1, minutes, enabled, time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC),
	)
}

func TestSettingsRepo_GetOrCreate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
		WithArgs(1, entity.DefaultGenerationIntervalMinutes, entity.DefaultAutoGenerationEnabled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduler_settings")).
		WithArgs(1).
		WillReturnRows(settingsRow(entity.DefaultGenerationIntervalMinutes, true))

	repo := pg.NewSettingsRepo(db)
	got, err := repo.GetOrCreate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, got.ID)
	assert.Equal(t, entity.DefaultGenerationIntervalMinutes, got.GenerationIntervalMinutes)
	assert.True(t, got.AutoGenerationEnabled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepo_GetOrCreate_ExistingRowKept(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	// Conflict: the insert touches nothing and the stored values win.
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduler_settings")).
		WithArgs(1).
		WillReturnRows(settingsRow(45, false))

	repo := pg.NewSettingsRepo(db)
	got, err := repo.GetOrCreate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45, got.GenerationIntervalMinutes)
	assert.False(t, got.AutoGenerationEnabled)
}

func TestSettingsRepo_UpdateInterval(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("generation_interval_minutes = $1")).
		WithArgs(30, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduler_settings")).
		WithArgs(1).
		WillReturnRows(settingsRow(30, true))

	repo := pg.NewSettingsRepo(db)
	got, err := repo.UpdateInterval(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 30, got.GenerationIntervalMinutes)
	assert.Equal(t, 30*time.Minute, got.Interval())
}

func TestSettingsRepo_SetEnabled(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("auto_generation_enabled = $1")).
		WithArgs(false, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduler_settings")).
		WithArgs(1).
		WillReturnRows(settingsRow(entity.DefaultGenerationIntervalMinutes, false))

	repo := pg.NewSettingsRepo(db)
	got, err := repo.SetEnabled(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, got.AutoGenerationEnabled)
}
