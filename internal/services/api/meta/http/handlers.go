// Package http serves the meta routes: liveness, readiness against the pos
// store, build stamp and uptime. They stay outside the operator guard.
package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"caisse/internal/core/version"
	"caisse/internal/modkit/httpkit"

	"github.com/jonboulle/clockwork"
)

const readyTimeout = 2 * time.Second

// Check is one dependency readiness pings; a nil Ping reports it as skipped
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Deps feeds the meta routes
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Clock       clockwork.Clock
	Checks      []Check
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	h := &handlers{d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

type handlers struct{ Deps }

// Health says the process answers
type Health struct {
	OK      bool      `json:"ok" example:"true"`
	Service string    `json:"service" example:"caisse-api"`
	Started time.Time `json:"started" example:"2026-03-01T09:00:00Z"`
	Now     time.Time `json:"now" example:"2026-03-01T09:05:00Z"`
}

// CheckResult is one dependency's answer: ok, fail or skipped
type CheckResult struct {
	Name   string `json:"name" example:"pos"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"pos store is closed"`
}

// Readiness is ok when every check passed, fail when one failed, degraded otherwise
type Readiness struct {
	Status string        `json:"status" example:"ok"`
	Checks []CheckResult `json:"checks"`
	Now    time.Time     `json:"now" example:"2026-03-01T09:05:00Z"`
}

// Uptime is the service name and whole seconds since start
type Uptime struct {
	Name    string    `json:"name" example:"caisse-api"`
	Started time.Time `json:"started" example:"2026-03-01T09:00:00Z"`
	Uptime  int64     `json:"uptime" example:"300"`
}

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} Health "ok"
// @Router /meta/health [get]
func (h *handlers) health(*stdhttp.Request) (any, error) {
	return Health{OK: true, Service: h.ServiceName, Started: h.StartedAt.UTC(), Now: h.Clock.Now().UTC()}, nil
}

// @Summary Readiness with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} Readiness "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *stdhttp.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	out := Readiness{Status: "ok", Checks: make([]CheckResult, 0, len(h.Checks))}
	for _, c := range h.Checks {
		res := CheckResult{Name: c.Name, Status: "ok"}
		switch {
		case c.Ping == nil:
			res.Status = "skipped"
			if out.Status == "ok" {
				out.Status = "degraded"
			}
		default:
			if err := c.Ping(ctx); err != nil {
				res.Status, res.Error = "fail", err.Error()
				out.Status = "fail"
			}
		}
		out.Checks = append(out.Checks, res)
	}
	out.Now = h.Clock.Now().UTC()
	return out, nil
}

// @Summary Build stamp
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(*stdhttp.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Service uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} Uptime "ok"
// @Router /meta/service [get]
func (h *handlers) service(*stdhttp.Request) (any, error) {
	return Uptime{
		Name:    h.ServiceName,
		Started: h.StartedAt.UTC(),
		Uptime:  int64(h.Clock.Since(h.StartedAt) / time.Second),
	}, nil
}
