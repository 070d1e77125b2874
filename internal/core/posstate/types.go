// Package posstate holds the point of sale application state and its pure update
// functions; every update takes a State and returns the next one, leaving the input
// untouched so callers can commit or discard it
package posstate

import "time"

// Money is an amount in minor currency units
type Money int64

// Product is a sellable catalog entry
type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Price      Money     `json:"price"`
	Stock      int       `json:"stock"`
	CategoryID string    `json:"category_id,omitempty"`
	Barcode    string    `json:"barcode,omitempty"`
	MinStock   int       `json:"min_stock,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductPatch carries the fields to change; nil leaves a field as is
type ProductPatch struct {
	Name       *string `json:"name,omitempty"`
	Price      *Money  `json:"price,omitempty"`
	Stock      *int    `json:"stock,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Barcode    *string `json:"barcode,omitempty"`
	MinStock   *int    `json:"min_stock,omitempty"`
}

// Category groups products
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryPatch carries the fields to change; nil leaves a field as is
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CartItem is a product snapshot taken when it entered the cart
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity
func (c CartItem) Subtotal() Money { return c.Price * Money(c.Quantity) }

// DeviceType is the kind of simulated peripheral
type DeviceType string

const (
	// DevicePrinter is the receipt printer
	DevicePrinter DeviceType = "printer"
	// DevicePayment is the card payment terminal
	DevicePayment DeviceType = "payment"
)

// Device is a paired peripheral
type Device struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      DeviceType `json:"type"`
	Connected bool       `json:"connected"`
}

// PaymentMethod is how a sale was settled
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentNFC  PaymentMethod = "nfc"
)

// Valid reports whether m is a known method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentNFC:
		return true
	}
	return false
}

// Sale is a completed checkout
type Sale struct {
	ID            string        `json:"id"`
	Items         []CartItem    `json:"items"`
	Total         Money         `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CashReceived  *Money        `json:"cash_received,omitempty"`
	CashChange    *Money        `json:"cash_change,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	Printed       bool          `json:"printed"`
}

// SaleFilters narrows the sales history; zero values do not filter
type SaleFilters struct {
	Start         *time.Time    `json:"start,omitempty"`
	End           *time.Time    `json:"end,omitempty"`
	MinAmount     *Money        `json:"min_amount,omitempty"`
	MaxAmount     *Money        `json:"max_amount,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
}

// CategoryCount is the number of products in a category
type CategoryCount struct {
	CategoryID string `json:"category_id"`
	Count      int    `json:"count"`
}

// InventoryStats summarizes the catalog
type InventoryStats struct {
	TotalProducts      int             `json:"total_products"`
	TotalStock         int             `json:"total_stock"`
	LowStockProducts   []Product       `json:"low_stock_products"`
	ProductsByCategory []CategoryCount `json:"products_by_category"`
}

// Checkout describes a sale to complete from the current cart
type Checkout struct {
	ID           string
	Method       PaymentMethod
	CashReceived *Money
	At           time.Time
}

// State is the whole application state
type State struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
	Cart       []CartItem `json:"cart"`
	Devices    []Device   `json:"devices"`
	Sales      []Sale     `json:"sales"`
}

// Ids of the default peripherals
const (
	PrinterID  = "printer"
	TerminalID = "payment"
)

// DefaultDevices are the peripherals every terminal starts with, all disconnected
func DefaultDevices() []Device {
	return []Device{
		{ID: PrinterID, Name: "Imprimante Thermique", Type: DevicePrinter},
		{ID: TerminalID, Name: "Terminal de Paiement", Type: DevicePayment},
	}
}

// New returns an empty catalog with the default devices
func New() State {
	return State{Devices: DefaultDevices()}
}

// Clone deep copies s so reducers never share backing arrays with their input
func (s State) Clone() State {
	out := State{
		Products:   append([]Product(nil), s.Products...),
		Categories: append([]Category(nil), s.Categories...),
		Cart:       append([]CartItem(nil), s.Cart...),
		Devices:    append([]Device(nil), s.Devices...),
		Sales:      make([]Sale, len(s.Sales)),
	}
	for i, sale := range s.Sales {
		sale.Items = append([]CartItem(nil), sale.Items...)
		out.Sales[i] = sale
	}
	return out
}
