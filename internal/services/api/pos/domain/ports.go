package domain

import (
	"context"

	"caisse/internal/core/posstate"
)

// ServicePort defines the service contract for the point of sale
type ServicePort interface {
	CatalogPort
	CartPort
	SalesPort
	DevicesPort
	ScanPort

	Stats(ctx context.Context) (posstate.InventoryStats, error)
}

// CatalogPort manages products and categories
type CatalogPort interface {
	Products(ctx context.Context) ([]posstate.Product, error)
	Product(ctx context.Context, id string) (posstate.Product, error)
	ProductByBarcode(ctx context.Context, code string) (posstate.Product, error)
	SearchProducts(ctx context.Context, in SearchInput) ([]posstate.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (posstate.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductPatchInput) (posstate.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	Categories(ctx context.Context) ([]posstate.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (posstate.Category, error)
	UpdateCategory(ctx context.Context, id string, in CategoryPatchInput) (posstate.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CartPort manages the basket
type CartPort interface {
	Cart(ctx context.Context) (Cart, error)
	AddToCart(ctx context.Context, in CartAddInput) (Cart, error)
	SetCartQuantity(ctx context.Context, productID string, qty int) (Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (Cart, error)
	ClearCart(ctx context.Context) (Cart, error)
}

// SalesPort settles the cart and reads the history
type SalesPort interface {
	Checkout(ctx context.Context, in CheckoutInput) (posstate.Sale, error)
	Sales(ctx context.Context, q SalesQuery) ([]posstate.Sale, error)
	Sale(ctx context.Context, id string) (posstate.Sale, error)
	PrintReceipt(ctx context.Context, id string) (posstate.Sale, error)
	SetPrinted(ctx context.Context, id string, printed bool) (posstate.Sale, error)
}

// DevicesPort drives the simulated peripherals
type DevicesPort interface {
	Devices(ctx context.Context) ([]posstate.Device, error)
	Discover(ctx context.Context) ([]posstate.Device, error)
	Connect(ctx context.Context, id string) (posstate.Device, error)
	Disconnect(ctx context.Context, id string) (posstate.Device, error)
	TestDevice(ctx context.Context, id string) (DeviceTest, error)
	RenameDevice(ctx context.Context, id, name string) (posstate.Device, error)
	Notifications(ctx context.Context) ([]Notification, error)
}

// ScanPort consumes confirmed barcodes
type ScanPort interface {
	HandleScan(ctx context.Context, value string) (ScanResult, error)
}

// MonitorPort runs the background device watcher
type MonitorPort interface {
	Run(ctx context.Context) error
}
