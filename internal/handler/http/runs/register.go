package runs

import (
	"net/http"

	"cryptopress/internal/repository"
)

// Register wires the run-log routes.
func Register(mux *http.ServeMux, repo repository.GenerationRunRepository) {
	mux.Handle("GET /api/generation-runs", ListHandler{Repo: repo})
	mux.Handle("DELETE /api/generation-runs", DeleteHandler{Repo: repo})
}
