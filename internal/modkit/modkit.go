// Package modkit is the wiring seam between api.Mount and the feature modules
package modkit

import (
	"net/http"
	"strings"

	"caisse/internal/modkit/httpkit"
	"caisse/internal/modkit/module"
)

// Module is what api.Mount drives
type Module = module.Module

// Option adjusts a module from outside, typically the auth guard or injected ports
type Option func(*Built)

// WithMiddlewares appends mw, in order, to the module's chain
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts hands the module ports declared by another module; T is owned by the receiver
func WithPorts[T any](p T) Option {
	return func(b *Built) { b.Ports = p }
}

// Built is a module's resolved name, prefix, chain and injected ports
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build resolves opts for the module name mounted at prefix; it panics on a
// blank name or a root prefix, both of which are wiring bugs
func Build(name, prefix string, opts ...Option) Built {
	name = strings.TrimSpace(name)
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	if name == "" {
		panic("modkit: module name is required")
	}
	if prefix == "/" {
		panic("modkit: module " + name + " needs a prefix")
	}
	b := Built{Name: name, Prefix: prefix}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Mount routes the module under its prefix behind its chain
func (b Built) Mount(r httpkit.Router, routes func(httpkit.Router)) {
	r.Route(b.Prefix, func(rr httpkit.Router) {
		rr.Use(b.Mw...)
		routes(rr)
	})
}
