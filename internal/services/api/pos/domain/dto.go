// Package domain holds DTOs for pos http and service contracts
package domain

import (
	"time"

	"caisse/internal/core/posstate"
)

// ProductInput creates a catalog entry; prices are in minor units
type ProductInput struct {
	Name       string `json:"name" validate:"required,max=200" example:"Lait demi-écrémé 1L"`
	Price      int64  `json:"price" validate:"min=0" example:"115"`
	Stock      int    `json:"stock" example:"20"`
	CategoryID string `json:"category_id,omitempty" validate:"omitempty,max=64" example:"c-dairy"`
	Barcode    string `json:"barcode,omitempty" validate:"omitempty,barcode" example:"3017620422003"`
	MinStock   int    `json:"min_stock,omitempty" validate:"omitempty,min=0" example:"5"`
}

// ProductPatchInput changes only the fields present in the body
type ProductPatchInput struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Price      *int64  `json:"price,omitempty" validate:"omitempty,min=0"`
	Stock      *int    `json:"stock,omitempty"`
	CategoryID *string `json:"category_id,omitempty" validate:"omitempty,max=64"`
	Barcode    *string `json:"barcode,omitempty" validate:"omitempty,barcode"`
	MinStock   *int    `json:"min_stock,omitempty" validate:"omitempty,min=0"`
}

// Patch converts the input to a state patch
func (in ProductPatchInput) Patch() posstate.ProductPatch {
	p := posstate.ProductPatch{
		Name:       in.Name,
		Stock:      in.Stock,
		CategoryID: in.CategoryID,
		Barcode:    in.Barcode,
		MinStock:   in.MinStock,
	}
	if in.Price != nil {
		m := posstate.Money(*in.Price)
		p.Price = &m
	}
	return p
}

// SearchInput filters the catalog
type SearchInput struct {
	Term       string `json:"term,omitempty" validate:"omitempty,max=200" example:"lait"`
	CategoryID string `json:"category_id,omitempty" validate:"omitempty,max=64"`
}

// CategoryInput creates a category
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100" example:"Crèmerie"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// CategoryPatchInput changes only the fields present in the body
type CategoryPatchInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// CartAddInput adds units of a product; quantity defaults to 1
type CartAddInput struct {
	ProductID string `json:"product_id" validate:"required" example:"p-milk"`
	Quantity  int    `json:"quantity,omitempty" validate:"omitempty,min=1,max=9999" example:"1"`
}

// CartQuantityInput sets a line quantity; zero or less removes the line
type CartQuantityInput struct {
	Quantity int `json:"quantity" example:"3"`
}

// CheckoutInput settles the cart
type CheckoutInput struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash card nfc" example:"cash"`
	CashReceived  *int64 `json:"cash_received,omitempty" validate:"omitempty,min=0" example:"500"`
}

// SalesQuery filters the sales history
type SalesQuery struct {
	Start         *time.Time `json:"start,omitempty"`
	End           *time.Time `json:"end,omitempty"`
	MinAmount     *int64     `json:"min_amount,omitempty" validate:"omitempty,min=0"`
	MaxAmount     *int64     `json:"max_amount,omitempty" validate:"omitempty,min=0"`
	PaymentMethod string     `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card nfc"`
}

// Filters converts the query to state filters
func (q SalesQuery) Filters() posstate.SaleFilters {
	f := posstate.SaleFilters{
		Start:         q.Start,
		End:           q.End,
		PaymentMethod: posstate.PaymentMethod(q.PaymentMethod),
	}
	if q.MinAmount != nil {
		m := posstate.Money(*q.MinAmount)
		f.MinAmount = &m
	}
	if q.MaxAmount != nil {
		m := posstate.Money(*q.MaxAmount)
		f.MaxAmount = &m
	}
	return f
}

// PrintStatusInput marks a sale printed or not
type PrintStatusInput struct {
	Printed bool `json:"printed"`
}

// RenameInput renames a device
type RenameInput struct {
	Name string `json:"name" validate:"required,max=100" example:"Imprimante comptoir"`
}

// ScanInput is a barcode typed by hand or confirmed by a scanner
type ScanInput struct {
	Value string `json:"value" validate:"required,max=64" example:"3017620422003"`
}

// Cart is the current basket with its totals
type Cart struct {
	Items         []posstate.CartItem `json:"items"`
	Total         posstate.Money      `json:"total"`
	Units         int                 `json:"units"`
	LastUnmatched string              `json:"last_unmatched,omitempty"`
}

// ScanResult reports what a scanned value did to the cart
type ScanResult struct {
	Value   string            `json:"value"`
	Matched bool              `json:"matched"`
	Product *posstate.Product `json:"product,omitempty"`
	Cart    Cart              `json:"cart"`
}

// Notification is a device event worth showing to the cashier
type Notification struct {
	DeviceID string    `json:"device_id"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// DeviceTest is the result of a device self test
type DeviceTest struct {
	Device  posstate.Device `json:"device"`
	Message string          `json:"message"`
}
