package service

import (
	"context"
	"strings"

	"caisse/internal/core/posstate"
	"caisse/internal/services/api/pos/domain"
	"caisse/internal/services/api/pos/repo"
)

// Cart returns the basket and its totals
func (s *Svc) Cart(ctx context.Context) (domain.Cart, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.cartOf(st), nil
}

// AddToCart adds units of a product, one by default
func (s *Svc) AddToCart(ctx context.Context, in domain.CartAddInput) (domain.Cart, error) {
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	return s.mutateCart(ctx, func(r repo.Repo) error { return r.AddToCart(in.ProductID, qty) })
}

// SetCartQuantity sets a line quantity; zero or less drops the line
func (s *Svc) SetCartQuantity(ctx context.Context, productID string, qty int) (domain.Cart, error) {
	return s.mutateCart(ctx, func(r repo.Repo) error { return r.SetCartQuantity(productID, qty) })
}

// RemoveFromCart drops a line
func (s *Svc) RemoveFromCart(ctx context.Context, productID string) (domain.Cart, error) {
	return s.mutateCart(ctx, func(r repo.Repo) error { return r.RemoveFromCart(productID) })
}

// ClearCart empties the basket
func (s *Svc) ClearCart(ctx context.Context) (domain.Cart, error) {
	return s.mutateCart(ctx, func(r repo.Repo) error { return r.ClearCart() })
}

func (s *Svc) mutateCart(ctx context.Context, fn func(r repo.Repo) error) (domain.Cart, error) {
	var st posstate.State
	err := s.tx(ctx, func(r repo.Repo) error {
		if err := fn(r); err != nil {
			return err
		}
		st = r.State()
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return s.cartOf(st), nil
}

func (s *Svc) cartOf(st posstate.State) domain.Cart {
	items := st.Cart
	if items == nil {
		items = []posstate.CartItem{}
	}
	s.mu.Lock()
	last := s.lastUnmatched
	s.mu.Unlock()
	return domain.Cart{
		Items:         items,
		Total:         posstate.CartTotal(st),
		Units:         posstate.CartUnits(st),
		LastUnmatched: last,
	}
}

// HandleScan adds one unit of the product carrying value to the cart
// an unknown barcode leaves the cart as is and is kept as the last unmatched scan
func (s *Svc) HandleScan(ctx context.Context, value string) (domain.ScanResult, error) {
	value = strings.TrimSpace(value)
	res := domain.ScanResult{Value: value}
	var st posstate.State
	err := s.tx(ctx, func(r repo.Repo) error {
		p, ok := posstate.FindByBarcode(r.State(), value)
		if !ok {
			st = r.State()
			return nil
		}
		if err := r.AddToCart(p.ID, 1); err != nil {
			return err
		}
		res.Matched = true
		res.Product = &p
		st = r.State()
		return nil
	})
	if err != nil {
		return domain.ScanResult{}, err
	}

	s.mu.Lock()
	if res.Matched {
		s.lastUnmatched = ""
	} else {
		s.lastUnmatched = value
	}
	s.mu.Unlock()

	if res.Matched {
		s.log.Debug().Str("barcode", value).Str("product_id", res.Product.ID).Msg("scan added to cart")
	} else {
		s.log.Info().Str("barcode", value).Msg("scan matched no product")
	}
	res.Cart = s.cartOf(st)
	return res, nil
}
