package httpkit

import (
	"net/http"
	"strings"
	"time"

	"caisse/internal/platform/config"
	"caisse/internal/platform/net/middleware"
)

// Middleware is the shape of every entry in a chain
type Middleware = func(http.Handler) http.Handler

// MountAPI mounts mount under /api/{version} behind mw
func MountAPI(r Router, version string, mw []Middleware, mount func(Router)) {
	r.Route("/api/"+strings.Trim(version, "/"), func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}

// CommonStack builds the /api chain from CORS_ORIGINS, REQUEST_TIMEOUT and SLOW_REQUEST;
// scanner reads and frames, which arrive per camera frame, log at debug
func CommonStack(cfg config.Conf) []Middleware {
	return middleware.Stack(middleware.StackOptions{
		Timeout: cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		Origins: cfg.MayCSV("CORS_ORIGINS", nil),
		Log: middleware.AccessLogOptions{
			Slow:  cfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
			Quiet: perFrame,
		},
	})
}

func perFrame(r *http.Request) bool {
	return strings.HasSuffix(r.URL.Path, "/detections") || strings.HasSuffix(r.URL.Path, "/frames")
}

// Auth guards a module with p; see StaticToken
func Auth(p middleware.AuthPort) Middleware { return middleware.Auth(p) }

// Throttle bounds concurrent requests on the routes it guards, see middleware.Throttle
func Throttle(limit, backlog int, wait time.Duration) Middleware {
	return middleware.Throttle(limit, backlog, wait)
}
