// Package repo binds the point of sale state to the reducer functions
package repo

import (
	"caisse/internal/core/posstate"
	"caisse/internal/modkit/repokit"
	perr "caisse/internal/platform/errors"
)

// Repo defines the repository contract for the point of sale
type Repo interface {
	State() posstate.State

	AddProduct(p posstate.Product) error
	UpdateProduct(id string, patch posstate.ProductPatch) (posstate.Product, error)
	DeleteProduct(id string) error

	AddCategory(c posstate.Category) error
	UpdateCategory(id string, patch posstate.CategoryPatch) (posstate.Category, error)
	DeleteCategory(id string) error

	AddToCart(productID string, qty int) error
	SetCartQuantity(productID string, qty int) error
	RemoveFromCart(productID string) error
	ClearCart() error

	CompleteSale(co posstate.Checkout) (posstate.Sale, error)
	SetPrinted(saleID string, printed bool) (posstate.Sale, error)

	SetConnected(deviceID string, connected bool) (posstate.Device, error)
	RenameDevice(deviceID, name string) (posstate.Device, error)
}

// state is the cell a Repo binds to
type state struct{ q repokit.Queryer[posstate.State] }

// NewMemory creates a binder over the in-memory state cell
func NewMemory() repokit.Binder[posstate.State, Repo] {
	return repokit.BindFunc[posstate.State, Repo](func(q repokit.Queryer[posstate.State]) Repo {
		return &state{q: q}
	})
}

// apply runs a reducer and stages its result
func (r *state) apply(fn func(posstate.State) (posstate.State, error)) (posstate.State, error) {
	next, err := fn(r.q.Load())
	if err != nil {
		return posstate.State{}, err
	}
	if err := r.q.Store(next); err != nil {
		return posstate.State{}, err
	}
	return next, nil
}

func (r *state) State() posstate.State { return r.q.Load() }

func (r *state) AddProduct(p posstate.Product) error {
	_, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.AddProduct(s, p) })
	return err
}

func (r *state) UpdateProduct(id string, patch posstate.ProductPatch) (posstate.Product, error) {
	next, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.UpdateProduct(s, id, patch) })
	if err != nil {
		return posstate.Product{}, err
	}
	p, _ := posstate.FindProduct(next, id)
	return p, nil
}

func (r *state) DeleteProduct(id string) error {
	_, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.DeleteProduct(s, id) })
	return err
}

func (r *state) AddCategory(c posstate.Category) error {
	_, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.AddCategory(s, c) })
	return err
}

func (r *state) UpdateCategory(id string, patch posstate.CategoryPatch) (posstate.Category, error) {
	next, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.UpdateCategory(s, id, patch) })
	if err != nil {
		return posstate.Category{}, err
	}
	for _, c := range next.Categories {
		if c.ID == id {
			return c, nil
		}
	}
	return posstate.Category{}, perr.NotFoundf("category %s not found", id)
}

func (r *state) DeleteCategory(id string) error {
	_, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.DeleteCategory(s, id) })
	return err
}

func (r *state) AddToCart(productID string, qty int) error {
	_, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.AddToCart(s, productID, qty) })
	return err
}

func (r *state) SetCartQuantity(productID string, qty int) error {
	_, err := r.apply(func(s posstate.State) (posstate.State, error) {
		return posstate.UpdateCartItemQuantity(s, productID, qty)
	})
	return err
}

func (r *state) RemoveFromCart(productID string) error {
	_, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.RemoveFromCart(s, productID), nil })
	return err
}

func (r *state) ClearCart() error {
	_, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.ClearCart(s), nil })
	return err
}

func (r *state) CompleteSale(co posstate.Checkout) (posstate.Sale, error) {
	var sale posstate.Sale
	_, err := r.apply(func(s posstate.State) (posstate.State, error) {
		next, sl, err := posstate.CompleteSale(s, co)
		sale = sl
		return next, err
	})
	return sale, err
}

func (r *state) SetPrinted(saleID string, printed bool) (posstate.Sale, error) {
	next, err := r.apply(func(s posstate.State) (posstate.State, error) {
		return posstate.UpdateSalePrintStatus(s, saleID, printed)
	})
	if err != nil {
		return posstate.Sale{}, err
	}
	sale, _ := posstate.FindSale(next, saleID)
	return sale, nil
}

func (r *state) SetConnected(deviceID string, connected bool) (posstate.Device, error) {
	next, err := r.apply(func(s posstate.State) (posstate.State, error) {
		return posstate.UpdateDeviceConnection(s, deviceID, connected)
	})
	if err != nil {
		return posstate.Device{}, err
	}
	d, _ := posstate.FindDevice(next, deviceID)
	return d, nil
}

func (r *state) RenameDevice(deviceID, name string) (posstate.Device, error) {
	next, err := r.apply(func(s posstate.State) (posstate.State, error) { return posstate.RenameDevice(s, deviceID, name) })
	if err != nil {
		return posstate.Device{}, err
	}
	d, _ := posstate.FindDevice(next, deviceID)
	return d, nil
}
