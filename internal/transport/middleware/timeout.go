package middleware

import (
	"net/http"
	"time"

	"github.com/fintrack/fintrack/internal"
)

// Timeout bounds every request so a stalled storage call cannot hold a
// transaction open indefinitely; the ledger services roll back on context
// cancellation.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := internal.WithTimeout(r.Context(), duration)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
