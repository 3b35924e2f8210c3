package generation

import (
	"net/http"

	"cryptopress/internal/handler/http/auth"
)

// Register wires the generation trigger routes. The batch route is meant
// for an external cron service and authenticates with the shared secret.
func Register(mux *http.ServeMux, svc Generator, cronSecret string) {
	mux.Handle("POST /api/generate", GenerateHandler{Svc: svc})
	mux.Handle("POST /api/generate/batch", auth.BearerSecret(cronSecret)(BatchHandler{Svc: svc}))
}
