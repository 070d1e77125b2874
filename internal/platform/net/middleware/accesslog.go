package middleware

import (
	"net/http"
	"time"

	"caisse/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLogOptions tunes AccessLog
type AccessLogOptions struct {
	// Slow raises a request at or over this duration to warn, 0 never does
	Slow time.Duration
	// Quiet drops matching successful requests to debug, for the per frame scanner reads
	Quiet func(*http.Request) bool
}

// AccessLog writes one zerolog line per request through the request scoped logger
func AccessLog(o AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.C(r.Context())
			evt := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				evt = log.Error()
			case o.Slow > 0 && elapsed >= o.Slow:
				evt = log.Warn()
			case status < http.StatusBadRequest && o.Quiet != nil && o.Quiet(r):
				evt = log.Debug()
			}
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				evt = evt.Str("route", rc.RoutePattern())
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Msg("request")
		})
	}
}
