// Package middleware is the http chain in front of the caisse API
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// StackOptions tunes Stack
type StackOptions struct {
	// Timeout cancels the request context; card payments and printing wait inside it
	Timeout time.Duration
	// Origins allowed by CORS, the till UI origin in practice; empty allows any
	Origins []string
	// Heartbeat answers 200 on this exact path ahead of routing; empty leaves it out
	Heartbeat string
	Log       AccessLogOptions
}

// Stack is the chain mounted on /api/v1, outermost first
func Stack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	origins := o.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	chain := []func(http.Handler) http.Handler{
		chimw.RequestID,
		chimw.RealIP,
		AccessLog(o.Log),
		Recover,
		chimw.NoCache,
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}),
		chimw.Compress(flate.BestSpeed),
	}
	if o.Heartbeat != "" {
		chain = append(chain, chimw.Heartbeat(o.Heartbeat))
	}
	return append(chain, chimw.StripSlashes, chimw.Timeout(o.Timeout))
}

// Throttle caps requests in flight at limit, parks up to backlog more for wait,
// and answers 429 past that
func Throttle(limit, backlog int, wait time.Duration) func(http.Handler) http.Handler {
	return chimw.ThrottleBacklog(limit, backlog, wait)
}
