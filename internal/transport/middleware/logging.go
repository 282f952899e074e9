package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fintrack/fintrack/pkg/logger"
)

// LoggingMiddleware logs every request/response pair with timing. The logger
// is taken from the request context so the trace id injected by RequestID is
// carried on every line.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lg := logger.From(r.Context())

		lg.Info("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		ww := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(ww, r)

		statusCode := ww.statusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		logLevel := slog.LevelInfo
		if statusCode >= 400 && statusCode < 500 {
			logLevel = slog.LevelWarn
		} else if statusCode >= 500 {
			logLevel = slog.LevelError
		}

		lg.Log(r.Context(), logLevel, "response",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"response_size", ww.size,
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}
