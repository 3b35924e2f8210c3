// Package auth guards the externally triggered generation endpoints with a
// shared bearer secret. The batch endpoint is hit by an external cron
// service, so it authenticates with a static token instead of user auth.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"cryptopress/internal/handler/http/respond"
)

// BearerSecret returns middleware requiring "Authorization: Bearer <secret>".
// Comparison is constant-time. An empty configured secret rejects every
// request rather than failing open.
func BearerSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				respond.Error(w, http.StatusUnauthorized, errors.New("endpoint not configured"))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				respond.Error(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				respond.Error(w, http.StatusUnauthorized, errors.New("invalid token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
