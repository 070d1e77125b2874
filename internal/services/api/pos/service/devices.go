package service

import (
	"context"
	"fmt"

	"caisse/internal/core/posstate"
	perr "caisse/internal/platform/errors"
	"caisse/internal/services/api/pos/domain"
	"caisse/internal/services/api/pos/repo"
)

// Devices lists the peripherals
func (s *Svc) Devices(ctx context.Context) ([]posstate.Device, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return st.Devices, nil
}

// Discover scans for nearby peripherals; only the paired ones ever answer
func (s *Svc) Discover(ctx context.Context) ([]posstate.Device, error) {
	if err := s.wait(ctx, s.cfg.DiscoveryLatency); err != nil {
		return nil, err
	}
	return s.Devices(ctx)
}

// Connect pairs a device after the connect latency
func (s *Svc) Connect(ctx context.Context, id string) (posstate.Device, error) {
	if _, err := s.device(ctx, id); err != nil {
		return posstate.Device{}, err
	}
	if err := s.wait(ctx, s.cfg.ConnectLatency); err != nil {
		return posstate.Device{}, err
	}
	return s.setConnected(ctx, id, true)
}

// Disconnect drops a device at once
func (s *Svc) Disconnect(ctx context.Context, id string) (posstate.Device, error) {
	return s.setConnected(ctx, id, false)
}

// TestDevice runs a self test on a connected device
func (s *Svc) TestDevice(ctx context.Context, id string) (domain.DeviceTest, error) {
	d, err := s.device(ctx, id)
	if err != nil {
		return domain.DeviceTest{}, err
	}
	if !d.Connected {
		return domain.DeviceTest{}, perr.DeviceOfflinef("device %s is not connected", id)
	}
	if err := s.wait(ctx, s.cfg.TestLatency); err != nil {
		return domain.DeviceTest{}, err
	}
	msg := "device operational"
	switch d.Type {
	case posstate.DevicePrinter:
		msg = "test print succeeded"
	case posstate.DevicePayment:
		msg = "payment terminal operational"
	}
	return domain.DeviceTest{Device: d, Message: msg}, nil
}

// RenameDevice changes the display name of a device
func (s *Svc) RenameDevice(ctx context.Context, id, name string) (posstate.Device, error) {
	var out posstate.Device
	err := s.tx(ctx, func(r repo.Repo) error {
		d, err := r.RenameDevice(id, name)
		out = d
		return err
	})
	return out, err
}

// Notifications returns recent device events, newest first
func (s *Svc) Notifications(_ context.Context) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification{}, s.notifications...), nil
}

func (s *Svc) device(ctx context.Context, id string) (posstate.Device, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return posstate.Device{}, err
	}
	d, ok := posstate.FindDevice(st, id)
	if !ok {
		return posstate.Device{}, perr.NotFoundf("device %s not found", id)
	}
	return d, nil
}

func (s *Svc) setConnected(ctx context.Context, id string, connected bool) (posstate.Device, error) {
	var out posstate.Device
	err := s.tx(ctx, func(r repo.Repo) error {
		d, err := r.SetConnected(id, connected)
		out = d
		return err
	})
	if err != nil {
		return posstate.Device{}, err
	}
	s.log.Info().Str("device_id", id).Bool("connected", connected).Msg("device connection changed")
	return out, nil
}

func (s *Svc) notify(d posstate.Device, msg string) {
	n := domain.Notification{DeviceID: d.ID, Message: fmt.Sprintf("%s %s", d.Name, msg), At: s.clk.Now().UTC()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]domain.Notification{n}, s.notifications...)
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[:maxNotifications]
	}
}
