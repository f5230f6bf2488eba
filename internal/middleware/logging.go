package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/templui/magicprofile/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Paths to skip logging
var skipLoggingPaths = []string{
	"/uploads/",
	"/metrics",
	"/healthz",
	"/favicon.ico",
}

// RequestLogging logs HTTP requests with method, path, status, and duration
// and reports them to the recorder. Skipped paths are neither logged nor counted.
func RequestLogging(recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range skipLoggingPaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			recorder.RecordHTTPRequest(r.Method, RouteLabel(r.URL.Path), rw.statusCode, duration)
			slog.Info("http request",
				"method", r.Method,
				"path", logPath(r.URL.Path),
				"status", rw.statusCode,
				"duration_ms", duration.Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

const magicLinkPrefix = "/auth/magic-link/"

// RouteLabel maps a request path to the route it matched. Metric labels and
// span names use it so that tokens and unknown paths do not leak into them.
func RouteLabel(path string) string {
	switch path {
	case "/", "/auth/magic-link", "/auth/logout", "/account", "/account/avatar":
		return path
	}
	if strings.HasPrefix(path, magicLinkPrefix) {
		return magicLinkPrefix + "{token}"
	}
	return "other"
}

// logPath hides one-time sign-in tokens from the logs.
func logPath(path string) string {
	if strings.HasPrefix(path, magicLinkPrefix) && len(path) > len(magicLinkPrefix) {
		return magicLinkPrefix + "***"
	}
	return path
}
