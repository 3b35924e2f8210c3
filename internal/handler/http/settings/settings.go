// Package settings provides HTTP handlers for scheduler configuration.
// Both mutators restart or stop the scheduler as a side effect, so the new
// configuration takes effect without a process restart.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cryptopress/internal/handler/http/respond"
	"cryptopress/internal/repository"
)

// SchedulerControl is the scheduler surface the mutators drive.
type SchedulerControl interface {
	Restart(ctx context.Context) error
	Stop()
}

// SettingsDTO represents the JSON structure for scheduler settings.
type SettingsDTO struct {
	GenerationIntervalMinutes int       `json:"generationIntervalMinutes"`
	AutoGenerationEnabled     bool      `json:"autoGenerationEnabled"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

// GetHandler serves the current scheduler settings.
type GetHandler struct {
	Repo repository.SettingsRepository
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Repo.GetOrCreate(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, SettingsDTO{
		GenerationIntervalMinutes: cfg.GenerationIntervalMinutes,
		AutoGenerationEnabled:     cfg.AutoGenerationEnabled,
		UpdatedAt:                 cfg.UpdatedAt,
	})
}

// IntervalHandler updates the generation interval and restarts the
// scheduler so the new period takes effect immediately.
type IntervalHandler struct {
	Repo      repository.SettingsRepository
	Scheduler SchedulerControl
}

func (h IntervalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Minutes < 1 {
		respond.Error(w, http.StatusBadRequest, errors.New("minutes must be a positive number"))
		return
	}

	cfg, err := h.Repo.UpdateInterval(r.Context(), req.Minutes)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := h.Scheduler.Restart(r.Context()); err != nil {
		slog.Error("scheduler restart after interval change failed", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, SettingsDTO{
		GenerationIntervalMinutes: cfg.GenerationIntervalMinutes,
		AutoGenerationEnabled:     cfg.AutoGenerationEnabled,
		UpdatedAt:                 cfg.UpdatedAt,
	})
}

// EnabledHandler flips the auto-generation flag: enabling restarts the
// scheduler, disabling stops it.
type EnabledHandler struct {
	Repo      repository.SettingsRepository
	Scheduler SchedulerControl
}

func (h EnabledHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		respond.Error(w, http.StatusBadRequest, errors.New("enabled is required"))
		return
	}

	cfg, err := h.Repo.SetEnabled(r.Context(), *req.Enabled)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	if *req.Enabled {
		if err := h.Scheduler.Restart(r.Context()); err != nil {
			slog.Error("scheduler restart after enable failed", slog.Any("error", err))
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}
	} else {
		h.Scheduler.Stop()
	}

	respond.JSON(w, http.StatusOK, SettingsDTO{
		GenerationIntervalMinutes: cfg.GenerationIntervalMinutes,
		AutoGenerationEnabled:     cfg.AutoGenerationEnabled,
		UpdatedAt:                 cfg.UpdatedAt,
	})
}

// Register wires the scheduler settings routes.
func Register(mux *http.ServeMux, repo repository.SettingsRepository, sched SchedulerControl) {
	mux.Handle("GET /api/settings", GetHandler{Repo: repo})
	mux.Handle("PUT /api/settings/interval", IntervalHandler{Repo: repo, Scheduler: sched})
	mux.Handle("PUT /api/settings/enabled", EnabledHandler{Repo: repo, Scheduler: sched})
}
