// @title         Caisse API
// @version       0.1.0
// @description   Point of sale backend with barcode scan confirmation

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"caisse/internal/core/posstate"
	"caisse/internal/platform/config"
	"caisse/internal/platform/logger"
	phttp "caisse/internal/platform/net/http"
	"caisse/internal/platform/store"

	"caisse/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	logger.Init(logger.FromEnv())
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// in-process pos state, seeded with the default devices
	st := store.NewMemory(
		posstate.New(),
		store.WithName[posstate.State]("pos"),
		store.WithLogger[posstate.State](*logger.Named("store")),
	)
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API; modules read their own prefixes off the root config
	rt := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			OperatorToken:  apiCfg.MayString("OPERATOR_TOKEN", ""),
		},
	)

	// device monitor runs until shutdown
	go func() {
		if err := rt.Monitor.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("device monitor stopped")
		}
	}()

	// serves until SIGINT or SIGTERM, then drains within CORE_API_SHUTDOWN_TIMEOUT
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}

	sctx, cancel := context.WithTimeout(context.Background(), apiCfg.MayDuration("SHUTDOWN_TIMEOUT", 10*time.Second))
	defer cancel()
	if err := rt.Shutdown(sctx); err != nil {
		l.Error().Err(err).Msg("scanner shutdown failed")
	}
	l.Info().Msg("bye")
}
