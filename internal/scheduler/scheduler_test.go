package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/repository"
	"cryptopress/internal/usecase/generate"
)

type stubGenerator struct {
	calls  int
	sizes  []int
	err    error
	panics bool
}

func (g *stubGenerator) GenerateMany(_ context.Context, n int) (*generate.BatchResult, error) {
	g.calls++
	g.sizes = append(g.sizes, n)
	if g.panics {
		panic("generator blew up")
	}
	if g.err != nil {
		return nil, g.err
	}
	return &generate.BatchResult{Success: n}, nil
}

type stubSettings struct {
	settings *entity.SchedulerSettings
	err      error
	reads    int
}

func (s *stubSettings) GetOrCreate(context.Context) (*entity.SchedulerSettings, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return s.settings, nil
}

func (s *stubSettings) UpdateInterval(_ context.Context, minutes int) (*entity.SchedulerSettings, error) {
	s.settings.GenerationIntervalMinutes = minutes
	return s.settings, nil
}

func (s *stubSettings) SetEnabled(_ context.Context, enabled bool) (*entity.SchedulerSettings, error) {
	s.settings.AutoGenerationEnabled = enabled
	return s.settings, nil
}

// runLogStub implements the run log with a canned latest run.
type runLogStub struct {
	latest *entity.GenerationRun
	err    error
}

func (s *runLogStub) Create(context.Context, *entity.GenerationRun) error { return nil }

func (s *runLogStub) Finish(context.Context, string, repository.RunResult) error { return nil }

func (s *runLogStub) Get(context.Context, string) (*entity.GenerationRun, error) {
	return nil, entity.ErrRunNotFound
}

func (s *runLogStub) ListPaginated(context.Context, int, int) ([]*entity.GenerationRun, error) {
	return nil, nil
}

func (s *runLogStub) Count(context.Context) (int64, error) { return 0, nil }

func (s *runLogStub) CountByStatus(context.Context, entity.RunStatus) (int64, error) {
	return 0, nil
}

func (s *runLogStub) LatestStarted(context.Context) (*entity.GenerationRun, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.latest == nil {
		return nil, entity.ErrRunNotFound
	}
	return s.latest, nil
}

func (s *runLogStub) Delete(context.Context, string) error { return nil }

func (s *runLogStub) DeleteAll(context.Context) (int64, error) { return 0, nil }

func enabledSettings(minutes int) *entity.SchedulerSettings {
	return &entity.SchedulerSettings{
		ID:                        1,
		GenerationIntervalMinutes: minutes,
		AutoGenerationEnabled:     true,
	}
}

func TestScheduler_StartStop(t *testing.T) {
	gen := &stubGenerator{}
	settings := &stubSettings{settings: enabledSettings(120)}
	s := New(gen, settings, &runLogStub{})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())

	// Starting again is a no-op.
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())

	s.Stop()
	assert.False(t, s.Running())

	// Stopping again is a no-op.
	s.Stop()
	assert.False(t, s.Running())
}

func TestScheduler_StartDisabledStaysStopped(t *testing.T) {
	settings := &stubSettings{settings: &entity.SchedulerSettings{
		ID:                        1,
		GenerationIntervalMinutes: 120,
		AutoGenerationEnabled:     false,
	}}
	s := New(&stubGenerator{}, settings, &runLogStub{})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.Running())
}

func TestScheduler_StartSettingsError(t *testing.T) {
	settings := &stubSettings{err: errors.New("db down")}
	s := New(&stubGenerator{}, settings, &runLogStub{})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.False(t, s.Running())
}

func TestScheduler_Restart(t *testing.T) {
	settings := &stubSettings{settings: enabledSettings(120)}
	s := New(&stubGenerator{}, settings, &runLogStub{})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Restart(context.Background()))
	assert.True(t, s.Running())

	// Restart after a disable lands in the stopped state.
	settings.settings.AutoGenerationEnabled = false
	require.NoError(t, s.Restart(context.Background()))
	assert.False(t, s.Running())
}

func TestScheduler_TriggerRunsBatch(t *testing.T) {
	gen := &stubGenerator{}
	settings := &stubSettings{settings: enabledSettings(120)}
	s := New(gen, settings, &runLogStub{})

	s.trigger()

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []int{DefaultBatchSize}, gen.sizes)
}

func TestScheduler_TriggerReChecksEnabledFlag(t *testing.T) {
	gen := &stubGenerator{}
	settings := &stubSettings{settings: enabledSettings(120)}
	s := New(gen, settings, &runLogStub{})

	settings.settings.AutoGenerationEnabled = false
	s.trigger()

	assert.Zero(t, gen.calls, "disabled flag read at trigger time must suppress the batch")
}

func TestScheduler_TriggerSurvivesPanic(t *testing.T) {
	gen := &stubGenerator{panics: true}
	settings := &stubSettings{settings: enabledSettings(120)}
	s := New(gen, settings, &runLogStub{})

	assert.NotPanics(t, func() { s.trigger() })
	assert.Equal(t, 1, gen.calls)
}

func TestScheduler_TriggerToleratesGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("pipeline failed")}
	settings := &stubSettings{settings: enabledSettings(120)}
	s := New(gen, settings, &runLogStub{})

	assert.NotPanics(t, func() { s.trigger() })
}

func TestScheduler_StartupCheck(t *testing.T) {
	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		enabled   bool
		latest    *entity.GenerationRun
		runErr    error
		wantCalls int
	}{
		{
			name:      "recent run suppresses startup batch",
			enabled:   true,
			latest:    &entity.GenerationRun{ID: "r1", StartedAt: base.Add(-30 * time.Minute)},
			wantCalls: 0,
		},
		{
			name:      "stale run triggers startup batch",
			enabled:   true,
			latest:    &entity.GenerationRun{ID: "r1", StartedAt: base.Add(-3 * time.Hour)},
			wantCalls: 1,
		},
		{
			name:      "empty run log triggers startup batch",
			enabled:   true,
			runErr:    entity.ErrRunNotFound,
			wantCalls: 1,
		},
		{
			name:      "disabled suppresses startup batch",
			enabled:   false,
			wantCalls: 0,
		},
		{
			name:      "run log error suppresses startup batch",
			enabled:   true,
			runErr:    errors.New("db down"),
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			settings := &stubSettings{settings: &entity.SchedulerSettings{
				ID:                        1,
				GenerationIntervalMinutes: 120,
				AutoGenerationEnabled:     tt.enabled,
			}}
			s := New(gen, settings, &runLogStub{latest: tt.latest, err: tt.runErr})
			s.now = func() time.Time { return base }

			s.RunStartupCheck(context.Background())

			assert.Equal(t, tt.wantCalls, gen.calls)
		})
	}
}
