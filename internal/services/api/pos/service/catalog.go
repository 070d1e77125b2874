package service

import (
	"context"
	"strings"

	"caisse/internal/core/posstate"
	perr "caisse/internal/platform/errors"
	"caisse/internal/services/api/pos/domain"
	"caisse/internal/services/api/pos/repo"
)

// Products lists the catalog
func (s *Svc) Products(ctx context.Context) ([]posstate.Product, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return st.Products, nil
}

// Product returns one product
func (s *Svc) Product(ctx context.Context, id string) (posstate.Product, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return posstate.Product{}, err
	}
	p, ok := posstate.FindProduct(st, id)
	if !ok {
		return posstate.Product{}, perr.NotFoundf("product %s not found", id)
	}
	return p, nil
}

// ProductByBarcode returns the product carrying code
func (s *Svc) ProductByBarcode(ctx context.Context, code string) (posstate.Product, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return posstate.Product{}, err
	}
	p, ok := posstate.FindByBarcode(st, code)
	if !ok {
		return posstate.Product{}, perr.NotFoundf("no product with barcode %s", strings.TrimSpace(code))
	}
	return p, nil
}

// SearchProducts filters the catalog by name, barcode and category
func (s *Svc) SearchProducts(ctx context.Context, in domain.SearchInput) ([]posstate.Product, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return posstate.SearchProducts(st, in.Term, in.CategoryID), nil
}

// CreateProduct adds a product with a fresh id
func (s *Svc) CreateProduct(ctx context.Context, in domain.ProductInput) (posstate.Product, error) {
	p := posstate.Product{
		ID:         newID(),
		Name:       in.Name,
		Price:      posstate.Money(in.Price),
		Stock:      in.Stock,
		CategoryID: in.CategoryID,
		Barcode:    in.Barcode,
		MinStock:   in.MinStock,
		CreatedAt:  s.clk.Now().UTC(),
	}
	err := s.tx(ctx, func(r repo.Repo) error {
		if err := r.AddProduct(p); err != nil {
			return err
		}
		p, _ = posstate.FindProduct(r.State(), p.ID)
		return nil
	})
	if err != nil {
		return posstate.Product{}, err
	}
	return p, nil
}

// UpdateProduct patches a product
func (s *Svc) UpdateProduct(ctx context.Context, id string, in domain.ProductPatchInput) (posstate.Product, error) {
	var out posstate.Product
	err := s.tx(ctx, func(r repo.Repo) error {
		p, err := r.UpdateProduct(id, in.Patch())
		out = p
		return err
	})
	return out, err
}

// DeleteProduct removes a product
func (s *Svc) DeleteProduct(ctx context.Context, id string) error {
	return s.tx(ctx, func(r repo.Repo) error { return r.DeleteProduct(id) })
}

// Categories lists the categories
func (s *Svc) Categories(ctx context.Context) ([]posstate.Category, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return st.Categories, nil
}

// CreateCategory adds a category with a fresh id
func (s *Svc) CreateCategory(ctx context.Context, in domain.CategoryInput) (posstate.Category, error) {
	c := posstate.Category{ID: newID(), Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.tx(ctx, func(r repo.Repo) error { return r.AddCategory(c) }); err != nil {
		return posstate.Category{}, err
	}
	return c, nil
}

// UpdateCategory patches a category
func (s *Svc) UpdateCategory(ctx context.Context, id string, in domain.CategoryPatchInput) (posstate.Category, error) {
	var out posstate.Category
	err := s.tx(ctx, func(r repo.Repo) error {
		c, err := r.UpdateCategory(id, posstate.CategoryPatch{Name: in.Name, Description: in.Description})
		out = c
		return err
	})
	return out, err
}

// DeleteCategory removes a category, detaching its products
func (s *Svc) DeleteCategory(ctx context.Context, id string) error {
	return s.tx(ctx, func(r repo.Repo) error { return r.DeleteCategory(id) })
}
