// Package runs provides HTTP handlers for the generation run log.
package runs

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/handler/http/respond"
	"cryptopress/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RunDTO represents the JSON structure for one generation run.
type RunDTO struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	ArticlesCreated int        `json:"articlesCreated"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	ErrorDetails    string     `json:"errorDetails,omitempty"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	DurationMS      *int64     `json:"durationMs,omitempty"`
}

// ListResponse is the paginated run-log payload consumed by dashboards.
type ListResponse struct {
	Logs         []RunDTO `json:"logs"`
	Total        int64    `json:"total"`
	SuccessCount int64    `json:"successCount"`
	FailedCount  int64    `json:"failedCount"`
	Page         int      `json:"page"`
	TotalPages   int64    `json:"totalPages"`
}

// ListHandler serves the paginated run log with aggregate outcome counts.
type ListHandler struct {
	Repo repository.GenerationRunRepository
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := queryInt(r, "page", 1)
	if page < 1 {
		respond.Error(w, http.StatusBadRequest, errors.New("page must be positive"))
		return
	}
	pageSize := queryInt(r, "pageSize", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		respond.Error(w, http.StatusBadRequest, errors.New("pageSize must be between 1 and 100"))
		return
	}

	list, err := h.Repo.ListPaginated(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	total, err := h.Repo.Count(ctx)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	successCount, err := h.Repo.CountByStatus(ctx, entity.RunStatusSuccess)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	failedCount, err := h.Repo.CountByStatus(ctx, entity.RunStatusFailed)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]RunDTO, 0, len(list))
	for _, run := range list {
		dtos = append(dtos, RunDTO{
			ID:              run.ID,
			Status:          string(run.Status),
			ArticlesCreated: run.ArticlesCreated,
			ErrorMessage:    run.ErrorMessage,
			ErrorDetails:    run.ErrorDetails,
			StartedAt:       run.StartedAt,
			CompletedAt:     run.CompletedAt,
			DurationMS:      run.DurationMS,
		})
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	respond.JSON(w, http.StatusOK, ListResponse{
		Logs:         dtos,
		Total:        total,
		SuccessCount: successCount,
		FailedCount:  failedCount,
		Page:         page,
		TotalPages:   totalPages,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}
