// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"caisse/internal/core/version"
	modkit "caisse/internal/modkit"
	"caisse/internal/modkit/httpkit"
	"caisse/internal/modkit/repokit"

	metahttp "caisse/internal/services/api/meta/http"
)

// Module serves health, readiness and build info
type Module struct {
	b modkit.Built
	d metahttp.Deps
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	clk := deps.ClockOrReal()
	pos := metahttp.Check{Name: "pos"}
	if p, ok := deps.POS.(repokit.Pinger); ok {
		pos.Ping = p.Ping
	}
	d := metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   clk.Now(),
		Clock:       clk,
		Checks:      []metahttp.Check{pos},
	}
	return &Module{b: modkit.Build("meta", "/meta", opts...), d: d}
}

// MountRoutes mounts the meta routes under /meta
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.d) })
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns nil; meta exports nothing
func (m *Module) Ports() any { return nil }
