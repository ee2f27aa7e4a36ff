package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/staffing/pkg/logger"
	"github.com/okian/staffing/pkg/metrics"
)

// route wraps a read-only endpoint. Methods other than GET and HEAD get 405
// before next runs; every request is counted and timed under endpoint, and
// 4xx/5xx answers are also counted as errors of the http component.
func (s *Server) route(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(rec, r)
		} else {
			rec.Header().Set("Allow", "GET, HEAD")
			writeError(rec, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		}

		elapsed := time.Since(start)
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(elapsed.Microseconds())/1000)
		if kind, failed := errorKind(rec.status); failed {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
			metrics.RecordErrorByComponent("http", kind)
		}
		s.logger.Debug(r.Context(), "request served",
			logger.String("endpoint", endpoint),
			logger.String("method", r.Method),
			logger.Int("status", rec.status),
			logger.Duration("elapsed", elapsed),
		)
	}
}

// errorKind labels failed responses; ok is false for anything below 400.
func errorKind(status int) (kind string, ok bool) {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", true
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed", true
	case status == http.StatusNotFound:
		return "not_found", true
	case status >= http.StatusBadRequest:
		return "client_error", true
	default:
		return "", false
	}
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// logRegistration notes each mounted route once at startup.
func (s *Server) logRegistration(ctx context.Context, paths ...string) {
	for _, p := range paths {
		s.logger.Debug(ctx, "route registered", logger.String("path", p))
	}
}
