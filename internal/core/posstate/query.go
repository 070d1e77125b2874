package posstate

import (
	"strings"

	"caisse/internal/core/normalize"
)

// DefaultMinStock is the low stock threshold for products without their own
const DefaultMinStock = 5

// FindByBarcode returns the product carrying code
func FindByBarcode(s State, code string) (Product, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Product{}, false
	}
	for _, p := range s.Products {
		if p.Barcode == code {
			return p, true
		}
	}
	return Product{}, false
}

// FindProduct returns the product with id
func FindProduct(s State, id string) (Product, bool) {
	if i, ok := productIndex(s, id); ok {
		return s.Products[i], true
	}
	return Product{}, false
}

// FindSale returns the sale with id
func FindSale(s State, id string) (Sale, bool) {
	if i, ok := saleIndex(s, id); ok {
		return s.Sales[i], true
	}
	return Sale{}, false
}

// FindDevice returns the device with id
func FindDevice(s State, id string) (Device, bool) {
	if i, ok := deviceIndex(s, id); ok {
		return s.Devices[i], true
	}
	return Device{}, false
}

// SearchProducts matches term against names ignoring case and accents, or as a
// barcode substring; categoryID narrows the result when set
func SearchProducts(s State, term, categoryID string) []Product {
	term = strings.TrimSpace(term)
	key := normalize.Fold(term)
	out := make([]Product, 0, len(s.Products))
	for _, p := range s.Products {
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if key == "" || strings.Contains(normalize.Fold(p.Name), key) || (p.Barcode != "" && strings.Contains(p.Barcode, term)) {
			out = append(out, p)
		}
	}
	return out
}

// Sales returns the history matching f, oldest first
func Sales(s State, f SaleFilters) []Sale {
	out := make([]Sale, 0, len(s.Sales))
	for _, sale := range s.Sales {
		switch {
		case f.Start != nil && sale.CreatedAt.Before(*f.Start):
		case f.End != nil && sale.CreatedAt.After(*f.End):
		case f.MinAmount != nil && sale.Total < *f.MinAmount:
		case f.MaxAmount != nil && sale.Total > *f.MaxAmount:
		case f.PaymentMethod != "" && sale.PaymentMethod != f.PaymentMethod:
		default:
			out = append(out, sale)
		}
	}
	return out
}

// CartTotal sums the cart lines
func CartTotal(s State) Money {
	var total Money
	for _, it := range s.Cart {
		total += it.Subtotal()
	}
	return total
}

// CartUnits counts the units in the cart
func CartUnits(s State) int {
	n := 0
	for _, it := range s.Cart {
		n += it.Quantity
	}
	return n
}

// Stats summarizes the catalog; a product is low on stock at or under its own
// minimum, or defaultMin when it has none
func Stats(s State, defaultMin int) InventoryStats {
	if defaultMin <= 0 {
		defaultMin = DefaultMinStock
	}
	st := InventoryStats{
		TotalProducts:      len(s.Products),
		LowStockProducts:   []Product{},
		ProductsByCategory: make([]CategoryCount, 0, len(s.Categories)),
	}
	for _, p := range s.Products {
		st.TotalStock += p.Stock
		min := p.MinStock
		if min == 0 {
			min = defaultMin
		}
		if p.Stock <= min {
			st.LowStockProducts = append(st.LowStockProducts, p)
		}
	}
	for _, c := range s.Categories {
		n := 0
		for _, p := range s.Products {
			if p.CategoryID == c.ID {
				n++
			}
		}
		st.ProductsByCategory = append(st.ProductsByCategory, CategoryCount{CategoryID: c.ID, Count: n})
	}
	return st
}
