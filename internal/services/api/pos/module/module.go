// Package module wires the point of sale into the API using modkit
package module

import (
	"caisse/internal/core/posstate"
	modkit "caisse/internal/modkit"
	"caisse/internal/modkit/httpkit"
	"caisse/internal/modkit/repokit"
	"caisse/internal/platform/store"
	poshttp "caisse/internal/services/api/pos/http"
	posrepo "caisse/internal/services/api/pos/repo"
	possvc "caisse/internal/services/api/pos/service"
)

// Module owns the catalog, the cart and the devices
type Module struct {
	b     modkit.Built
	ports Ports
	svc   possvc.Service
}

// New constructs the pos module; options come from CORE_POS_ config
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions constructs the pos module with explicit service options
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	var db repokit.TxRunner[posstate.State] = deps.POS
	if db == nil {
		db = store.NewMemory(posstate.New(), store.WithName[posstate.State]("pos"))
	}
	svc := possvc.New(db, posrepo.NewMemory(), deps.ClockOrReal(), o.service())
	return &Module{
		b:     modkit.Build("pos", "/pos", opts...),
		ports: Ports{Scan: adaptScanPort{svc: svc}, Monitor: svc},
		svc:   svc,
	}
}

// MountRoutes mounts the pos routes under /pos
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { poshttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.b.Prefix }
