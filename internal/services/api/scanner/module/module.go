// Package module wires scanning sessions into the API using modkit
package module

import (
	"context"

	modkit "caisse/internal/modkit"
	"caisse/internal/modkit/httpkit"
	scannerdom "caisse/internal/services/api/scanner/domain"
	scannerhttp "caisse/internal/services/api/scanner/http"
	scannersvc "caisse/internal/services/api/scanner/service"
)

// Module runs the scanning sessions
type Module struct {
	b   modkit.Built
	svc scannersvc.Service
}

// New constructs the scanner module from CORE_SCANNER_ config
// the consumer comes in through modkit.WithPorts(Ports{...}); it panics on invalid config
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions constructs the scanner module with explicit options
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	if err := o.Validate(); err != nil {
		panic("scanner config: " + err.Error())
	}
	b := modkit.Build("scanner", "/scanner", opts...)

	var consumer scannerdom.ConsumerPort
	if p, ok := b.Ports.(Ports); ok {
		consumer = p.Consumer
	}
	return &Module{b: b, svc: scannersvc.New(o.service(), consumer, deps.ClockOrReal())}
}

// MountRoutes mounts the scanner routes under /scanner
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { scannerhttp.Register(rr, m.svc) })
}

// Shutdown ends the active scanning session
func (m *Module) Shutdown(ctx context.Context) error { return m.svc.Shutdown(ctx) }

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.b.Prefix }
