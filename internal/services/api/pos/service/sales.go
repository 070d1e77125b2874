package service

import (
	"context"

	"caisse/internal/core/posstate"
	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/logger"
	"caisse/internal/services/api/pos/domain"
	"caisse/internal/services/api/pos/repo"
)

// Checkout settles the cart
// card payments need the payment terminal connected and take the terminal latency
func (s *Svc) Checkout(ctx context.Context, in domain.CheckoutInput) (posstate.Sale, error) {
	method := posstate.PaymentMethod(in.PaymentMethod)
	if method == posstate.PaymentCard {
		if err := s.requireConnected(ctx, posstate.TerminalID, "payment terminal is not connected"); err != nil {
			return posstate.Sale{}, err
		}
		if err := s.wait(ctx, s.cfg.CardLatency); err != nil {
			return posstate.Sale{}, err
		}
	}

	co := posstate.Checkout{ID: newID(), Method: method, At: s.clk.Now().UTC()}
	if in.CashReceived != nil {
		m := posstate.Money(*in.CashReceived)
		co.CashReceived = &m
	}

	var sale posstate.Sale
	err := s.tx(ctx, func(r repo.Repo) error {
		sl, err := r.CompleteSale(co)
		sale = sl
		return err
	})
	if err != nil {
		return posstate.Sale{}, err
	}
	ev := s.log.Info().
		Str("sale_id", sale.ID).
		Int64("total", int64(sale.Total)).
		Str("currency", s.cfg.Currency).
		Str("method", string(sale.PaymentMethod))
	if op := logger.Operator(ctx); op != "" {
		ev = ev.Str("operator", op)
	}
	ev.Msg("sale completed")
	return sale, nil
}

// Sales returns the history matching q
func (s *Svc) Sales(ctx context.Context, q domain.SalesQuery) ([]posstate.Sale, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return posstate.Sales(st, q.Filters()), nil
}

// Sale returns one sale
func (s *Svc) Sale(ctx context.Context, id string) (posstate.Sale, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return posstate.Sale{}, err
	}
	sale, ok := posstate.FindSale(st, id)
	if !ok {
		return posstate.Sale{}, perr.NotFoundf("sale %s not found", id)
	}
	return sale, nil
}

// PrintReceipt prints a sale on the receipt printer and marks it printed
func (s *Svc) PrintReceipt(ctx context.Context, id string) (posstate.Sale, error) {
	if _, err := s.Sale(ctx, id); err != nil {
		return posstate.Sale{}, err
	}
	if err := s.requireConnected(ctx, posstate.PrinterID, "printer is not connected"); err != nil {
		return posstate.Sale{}, err
	}
	if err := s.wait(ctx, s.cfg.PrintLatency); err != nil {
		return posstate.Sale{}, err
	}
	return s.SetPrinted(ctx, id, true)
}

// SetPrinted records the print status of a sale
func (s *Svc) SetPrinted(ctx context.Context, id string, printed bool) (posstate.Sale, error) {
	var out posstate.Sale
	err := s.tx(ctx, func(r repo.Repo) error {
		sale, err := r.SetPrinted(id, printed)
		out = sale
		return err
	})
	return out, err
}

// requireConnected fails with device_offline unless the device with id is connected
func (s *Svc) requireConnected(ctx context.Context, id, msg string) error {
	st, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	d, ok := posstate.FindDevice(st, id)
	if !ok || !d.Connected {
		return perr.DeviceOfflinef("%s", msg)
	}
	return nil
}
