package generation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/handler/http/respond"
	"cryptopress/internal/usecase/generate"
)

// Generator is the subset of the generation service driven by the handlers.
type Generator interface {
	GenerateOne(ctx context.Context) (*entity.Article, error)
	GenerateMany(ctx context.Context, n int) (*generate.BatchResult, error)
}

// GenerateHandler handles the admin "generate now" one-shot trigger.
type GenerateHandler struct{ Svc Generator }

func (h GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	article, err := h.Svc.GenerateOne(r.Context())
	if err != nil {
		writeGenerateError(w, err)
		return
	}
	if article == nil {
		// Nothing new and nothing stored yet: valid empty-progress outcome.
		respond.JSON(w, http.StatusOK, map[string]any{"article": nil})
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"article": toArticleDTO(article)})
}

// writeGenerateError maps a pipeline failure to the trigger error contract.
// Extraction and rewrite failures keep their message so the caller can tell
// the stages apart, with any diagnostic detail (e.g. the raw unparsable
// backend response) carried in "detail". Everything else stays masked.
func writeGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, generate.ErrGenerationInProgress):
		respond.Error(w, http.StatusConflict, err)
	case errors.Is(err, generate.ErrContentExtraction), errors.Is(err, generate.ErrRewriteFailed):
		var de generate.DiagnosticError
		detail := ""
		if errors.As(err, &de) {
			detail = de.Diagnostic()
		}
		respond.ErrorDetail(w, http.StatusInternalServerError, err, detail)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

const (
	defaultBatchCount = 3
	maxBatchCount     = 5
)

// BatchHandler handles the cron-triggered batch endpoint. The request body
// may carry {"count": n}; absent or invalid counts fall back to the default.
type BatchHandler struct{ Svc Generator }

func (h BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	count := defaultBatchCount

	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Count > 0 {
		count = req.Count
	} else if err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if count > maxBatchCount {
		count = maxBatchCount
	}

	result, err := h.Svc.GenerateMany(r.Context(), count)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, result)
}
