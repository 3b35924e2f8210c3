package runs

import (
	"errors"
	"net/http"

	"cryptopress/internal/domain/entity"
	"cryptopress/internal/handler/http/respond"
	"cryptopress/internal/repository"
)

// DeleteHandler clears run-log entries: one by ?id=, or all with ?all=true.
type DeleteHandler struct {
	Repo repository.GenerationRunRepository
}

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("all") == "true" {
		deleted, err := h.Repo.DeleteAll(r.Context())
		if err != nil {
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
		return
	}

	id := q.Get("id")
	if id == "" {
		respond.Error(w, http.StatusBadRequest, errors.New("id or all=true is required"))
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, entity.ErrRunNotFound) {
			respond.Error(w, http.StatusNotFound, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"deleted": 1})
}
