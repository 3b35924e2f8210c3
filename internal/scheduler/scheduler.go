// Package scheduler drives periodic article generation. It owns a recurring
// cron timer derived from the persisted interval setting and restarts the
// timer whenever configuration changes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/observability/metrics"
	"cryptopress/internal/repository"
	"cryptopress/internal/usecase/generate"

	"github.com/robfig/cron/v3"
)

// DefaultBatchSize is how many articles each scheduled trigger attempts.
const DefaultBatchSize = 2

// Generator is the subset of the generation service the scheduler drives.
type Generator interface {
	GenerateMany(ctx context.Context, n int) (*generate.BatchResult, error)
}

// Scheduler runs periodic generation batches. States are stopped and
// running; Start, Stop and Restart transition between them. Safe for
// concurrent use.
type Scheduler struct {
	generator Generator
	settings  repository.SettingsRepository
	runs      repository.GenerationRunRepository
	batchSize int

	mu      sync.Mutex
	cron    *cron.Cron
	running bool

	now func() time.Time
}

// New creates a scheduler over the given generator and settings store.
func New(generator Generator, settings repository.SettingsRepository, runs repository.GenerationRunRepository) *Scheduler {
	return &Scheduler{
		generator: generator,
		settings:  settings,
		runs:      runs,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
}

// Start reads the persisted settings and begins the recurring trigger.
// It is a no-op when already running. When auto generation is disabled the
// scheduler stays stopped and logs that fact.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Info("scheduler already running, start ignored")
		return nil
	}

	cfg, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return fmt.Errorf("load scheduler settings: %w", err)
	}

	if !cfg.AutoGenerationEnabled {
		slog.Info("auto generation disabled, scheduler stays stopped")
		return nil
	}

	interval := cfg.Interval()
	c := cron.New()
	c.Schedule(cron.Every(interval), cron.FuncJob(s.trigger))
	c.Start()

	s.cron = c
	s.running = true

	slog.Info("scheduler started",
		slog.Duration("interval", interval),
		slog.Int("batch_size", s.batchSize))

	return nil
}

// Stop cancels the recurring trigger. It is a no-op when already stopped.
// A batch already in flight finishes on its own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.cron = nil
	s.running = false

	slog.Info("scheduler stopped")
}

// Restart applies changed settings by stopping and starting again. Used by
// the configuration mutators.
func (s *Scheduler) Restart(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// Running reports whether the recurring trigger is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunStartupCheck performs the one-time eagerness check on process start:
// an immediate batch runs only when no generation run started within the
// current interval window. Frequent restarts therefore do not produce
// duplicate bursts.
func (s *Scheduler) RunStartupCheck(ctx context.Context) {
	cfg, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		slog.Error("startup check failed to load settings", slog.Any("error", err))
		return
	}
	if !cfg.AutoGenerationEnabled {
		return
	}

	latest, err := s.runs.LatestStarted(ctx)
	if err != nil && !errors.Is(err, entity.ErrRunNotFound) {
		slog.Error("startup check failed to load latest run", slog.Any("error", err))
		return
	}

	if latest != nil && s.now().Sub(latest.StartedAt) < cfg.Interval() {
		slog.Info("recent generation run found, skipping startup batch",
			slog.Time("last_started", latest.StartedAt),
			slog.Duration("interval", cfg.Interval()))
		return
	}

	slog.Info("no recent generation run, running startup batch")
	s.trigger()
}

// trigger is the scheduled entry point. It re-reads the enabled flag right
// before running so a disable that happened after scheduling still takes
// effect, and it never lets a failure escape to crash the cron goroutine.
func (s *Scheduler) trigger() {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordSchedulerTrigger("panic")
			slog.Error("scheduled generation panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	ctx := context.Background()

	cfg, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		metrics.RecordSchedulerTrigger("error")
		slog.Error("scheduled trigger failed to load settings", slog.Any("error", err))
		return
	}
	if !cfg.AutoGenerationEnabled {
		metrics.RecordSchedulerTrigger("disabled")
		slog.Info("auto generation disabled, skipping scheduled trigger")
		return
	}

	result, err := s.generator.GenerateMany(ctx, s.batchSize)
	if err != nil {
		metrics.RecordSchedulerTrigger("error")
		slog.Error("scheduled generation failed", slog.Any("error", err))
		return
	}

	metrics.RecordSchedulerTrigger("ok")
	slog.Info("scheduled generation completed",
		slog.Int("success", result.Success),
		slog.Int("failed", result.Failed))
}
