package service

import (
	"context"
	"math/rand/v2"

	"caisse/internal/core/posstate"
	"caisse/internal/services/api/pos/repo"
)

// randFloat draws the per device drop chance
var randFloat = rand.Float64

// Run watches the connected devices until ctx ends, dropping each one with the
// configured probability per interval
func (s *Svc) Run(ctx context.Context) error {
	if s.cfg.MonitorInterval <= 0 || s.cfg.DropProbability <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := s.clk.NewTicker(s.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if err := s.sweep(ctx); err != nil {
				s.log.Error().Err(err).Msg("device sweep failed")
			}
		}
	}
}

// sweep runs one monitor pass and returns after the drops are committed
func (s *Svc) sweep(ctx context.Context) error {
	var dropped []posstate.Device
	err := s.tx(ctx, func(r repo.Repo) error {
		for _, d := range r.State().Devices {
			if !d.Connected || randFloat() >= s.cfg.DropProbability {
				continue
			}
			nd, err := r.SetConnected(d.ID, false)
			if err != nil {
				return err
			}
			dropped = append(dropped, nd)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, d := range dropped {
		s.log.Warn().Str("device_id", d.ID).Msg("device dropped")
		s.notify(d, "disconnected")
	}
	return nil
}
