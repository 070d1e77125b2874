// Package api provides the HTTP API for the application
package api

import (
	"context"

	"caisse/internal/core/posstate"
	"caisse/internal/platform/config"
	phttp "caisse/internal/platform/net/http"
	"caisse/internal/platform/store"

	"caisse/internal/modkit"
	"caisse/internal/modkit/httpkit"
	"caisse/internal/modkit/module"
	"caisse/internal/modkit/repokit"
	"caisse/internal/modkit/swaggerkit"

	metamod "caisse/internal/services/api/meta/module"
	posdom "caisse/internal/services/api/pos/domain"
	posmod "caisse/internal/services/api/pos/module"
	scannermod "caisse/internal/services/api/scanner/module"

	"github.com/jonboulle/clockwork"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Memory[posstate.State]
	Clock          clockwork.Clock
	EnableSwagger  bool
	EnableProfiler bool

	// OperatorToken guards the pos and scanner routes with a bearer token when set
	OperatorToken string
}

// Runtime exposes the background pieces main has to drive
type Runtime struct {
	Monitor posdom.MonitorPort
	Scanner *scannermod.Module
}

// Shutdown stops the active scanning session
func (rt Runtime) Shutdown(ctx context.Context) error {
	if rt.Scanner == nil {
		return nil
	}
	return rt.Scanner.Shutdown(ctx)
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) Runtime {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg:   opt.Config,
		Clock: opt.Clock,
	}
	if opt.Store != nil {
		repokit.MustPing(context.Background(), "pos store", opt.Store)
		deps.POS = opt.Store
	}

	var guard []modkit.Option
	if opt.OperatorToken != "" {
		port := httpkit.NewPortFunc(httpkit.StaticToken(opt.OperatorToken, "operator"))
		guard = append(guard, modkit.WithMiddlewares(httpkit.Auth(port)))
	}

	// pos owns the catalog and the cart; its scan port feeds the scanner
	pos := posmod.New(deps, guard...)
	scanPort := module.MustPortsOf[posdom.ScanPort](pos)
	monitor := module.MustPortsOf[posdom.MonitorPort](pos)

	scanner := scannermod.New(
		deps,
		append(guard, modkit.WithPorts(scannermod.Ports{
			Consumer: scannermod.CartConsumer(scanPort),
		}))...,
	)

	mods := []module.Module{
		metamod.New(deps),
		pos,
		scanner,
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	// versioned API with a common middleware stack
	httpkit.MountAPI(r, "v1", httpkit.CommonStack(opt.Config.Prefix("CORE_API_")), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return Runtime{Monitor: monitor, Scanner: scanner}
}
