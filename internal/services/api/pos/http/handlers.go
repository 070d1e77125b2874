// Package http provides http transport for the point of sale
package http

import (
	stdhttp "net/http"

	"caisse/internal/modkit/httpkit"
	"caisse/internal/services/api/pos/domain"
	svc "caisse/internal/services/api/pos/service"
)

// Register mounts pos endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/products", h.products)
	httpkit.PostJSON[domain.ProductInput](r, "/products", h.createProduct)
	httpkit.PostJSON[domain.SearchInput](r, "/products/search", h.searchProducts)
	httpkit.Get(r, "/products/barcode/{code}", h.productByBarcode)
	httpkit.Get(r, "/products/{id}", h.product)
	httpkit.PatchJSON[domain.ProductPatchInput](r, "/products/{id}", h.updateProduct)
	httpkit.Delete(r, "/products/{id}", h.deleteProduct)

	httpkit.Get(r, "/categories", h.categories)
	httpkit.PostJSON[domain.CategoryInput](r, "/categories", h.createCategory)
	httpkit.PatchJSON[domain.CategoryPatchInput](r, "/categories/{id}", h.updateCategory)
	httpkit.Delete(r, "/categories/{id}", h.deleteCategory)

	httpkit.Get(r, "/cart", h.cart)
	httpkit.PostJSON[domain.CartAddInput](r, "/cart/items", h.addToCart)
	httpkit.PutJSON[domain.CartQuantityInput](r, "/cart/items/{productID}", h.setQuantity)
	httpkit.Delete(r, "/cart/items/{productID}", h.removeFromCart)
	httpkit.Delete(r, "/cart", h.clearCart)
	httpkit.PostJSON[domain.ScanInput](r, "/scan", h.scan)

	httpkit.PostJSON[domain.CheckoutInput](r, "/checkout", h.checkout)
	httpkit.Get(r, "/sales", h.sales)
	httpkit.PostJSON[domain.SalesQuery](r, "/sales/search", h.searchSales)
	httpkit.Get(r, "/sales/{id}", h.sale)
	httpkit.Post(r, "/sales/{id}/print", h.printReceipt)
	httpkit.PutJSON[domain.PrintStatusInput](r, "/sales/{id}/printed", h.setPrinted)

	httpkit.Get(r, "/devices", h.devices)
	httpkit.Get(r, "/devices/notifications", h.notifications)
	httpkit.Post(r, "/devices/discover", h.discover)
	httpkit.Post(r, "/devices/{id}/connect", h.connect)
	httpkit.Post(r, "/devices/{id}/disconnect", h.disconnect)
	httpkit.Post(r, "/devices/{id}/test", h.testDevice)
	httpkit.PatchJSON[domain.RenameInput](r, "/devices/{id}", h.renameDevice)

	httpkit.Get(r, "/stats", h.stats)
}

type handlers struct{ svc svc.Service }

// @Summary List the catalog
// @Tags Pos
// @Produce json
// @Success 200 {array} posstate.Product "ok"
// @Router /pos/products [get]
func (h *handlers) products(r *stdhttp.Request) (any, error) {
	return h.svc.Products(r.Context())
}

// @Summary Create a product
// @Tags Pos
// @Accept json
// @Produce json
// @Param payload body domain.ProductInput true "Product"
// @Success 201 {object} posstate.Product "created"
// @Failure 409 {object} phttp.Envelope "barcode already used"
// @Router /pos/products [post]
func (h *handlers) createProduct(r *stdhttp.Request, in domain.ProductInput) (any, error) {
	p, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.CreatedAt(r, p.ID, p), nil
}

// @Summary Search products by name or barcode, ignoring case and accents
// @Tags Pos
// @Accept json
// @Produce json
// @Param payload body domain.SearchInput true "Query"
// @Success 200 {array} posstate.Product "ok"
// @Router /pos/products/search [post]
func (h *handlers) searchProducts(r *stdhttp.Request, in domain.SearchInput) (any, error) {
	return h.svc.SearchProducts(r.Context(), in)
}

// @Summary Find a product by barcode
// @Tags Pos
// @Produce json
// @Param code path string true "Barcode"
// @Success 200 {object} posstate.Product "ok"
// @Failure 404 {object} phttp.Envelope "unknown barcode"
// @Router /pos/products/barcode/{code} [get]
func (h *handlers) productByBarcode(r *stdhttp.Request) (any, error) {
	return h.svc.ProductByBarcode(r.Context(), httpkit.Param(r, "code"))
}

// @Summary Get a product
// @Tags Pos
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} posstate.Product "ok"
// @Router /pos/products/{id} [get]
func (h *handlers) product(r *stdhttp.Request) (any, error) {
	return h.svc.Product(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Patch a product
// @Tags Pos
// @Accept json
// @Produce json
// @Param id path string true "Product id"
// @Param payload body domain.ProductPatchInput true "Fields to change"
// @Success 200 {object} posstate.Product "ok"
// @Router /pos/products/{id} [patch]
func (h *handlers) updateProduct(r *stdhttp.Request, in domain.ProductPatchInput) (any, error) {
	return h.svc.UpdateProduct(r.Context(), httpkit.Param(r, "id"), in)
}

// @Summary Delete a product
// @Tags Pos
// @Param id path string true "Product id"
// @Success 204 "deleted"
// @Router /pos/products/{id} [delete]
func (h *handlers) deleteProduct(r *stdhttp.Request) (any, error) {
	if err := h.svc.DeleteProduct(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary List categories
// @Tags Pos
// @Produce json
// @Success 200 {array} posstate.Category "ok"
// @Router /pos/categories [get]
func (h *handlers) categories(r *stdhttp.Request) (any, error) {
	return h.svc.Categories(r.Context())
}

// @Summary Create a category
// @Tags Pos
// @Accept json
// @Produce json
// @Param payload body domain.CategoryInput true "Category"
// @Success 201 {object} posstate.Category "created"
// @Router /pos/categories [post]
func (h *handlers) createCategory(r *stdhttp.Request, in domain.CategoryInput) (any, error) {
	c, err := h.svc.CreateCategory(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(c), nil
}

// @Summary Patch a category
// @Tags Pos
// @Accept json
// @Produce json
// @Param id path string true "Category id"
// @Param payload body domain.CategoryPatchInput true "Fields to change"
// @Success 200 {object} posstate.Category "ok"
// @Router /pos/categories/{id} [patch]
func (h *handlers) updateCategory(r *stdhttp.Request, in domain.CategoryPatchInput) (any, error) {
	return h.svc.UpdateCategory(r.Context(), httpkit.Param(r, "id"), in)
}

// @Summary Delete a category, its products stay uncategorized
// @Tags Pos
// @Param id path string true "Category id"
// @Success 204 "deleted"
// @Router /pos/categories/{id} [delete]
func (h *handlers) deleteCategory(r *stdhttp.Request) (any, error) {
	if err := h.svc.DeleteCategory(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Current cart
// @Tags Pos
// @Produce json
// @Success 200 {object} domain.Cart "ok"
// @Router /pos/cart [get]
func (h *handlers) cart(r *stdhttp.Request) (any, error) {
	return h.svc.Cart(r.Context())
}

// @Summary Add a product to the cart
// @Tags Pos
// @Accept json
// @Produce json
// @Param payload body domain.CartAddInput true "Line"
// @Success 200 {object} domain.Cart "ok"
// @Router /pos/cart/items [post]
func (h *handlers) addToCart(r *stdhttp.Request, in domain.CartAddInput) (any, error) {
	return h.svc.AddToCart(r.Context(), in)
}

// @Summary Set a cart line quantity, zero removes it
// @Tags Pos
// @Accept json
// @Produce json
// @Param productID path string true "Product id"
// @Param payload body domain.CartQuantityInput true "Quantity"
// @Success 200 {object} domain.Cart "ok"
// @Router /pos/cart/items/{productID} [put]
func (h *handlers) setQuantity(r *stdhttp.Request, in domain.CartQuantityInput) (any, error) {
	return h.svc.SetCartQuantity(r.Context(), httpkit.Param(r, "productID"), in.Quantity)
}

// @Summary Remove a cart line
// @Tags Pos
// @Produce json
// @Param productID path string true "Product id"
// @Success 200 {object} domain.Cart "ok"
// @Router /pos/cart/items/{productID} [delete]
func (h *handlers) removeFromCart(r *stdhttp.Request) (any, error) {
	return h.svc.RemoveFromCart(r.Context(), httpkit.Param(r, "productID"))
}

// @Summary Empty the cart
// @Tags Pos
// @Produce json
// @Success 200 {object} domain.Cart "ok"
// @Router /pos/cart [delete]
func (h *handlers) clearCart(r *stdhttp.Request) (any, error) {
	return h.svc.ClearCart(r.Context())
}

// @Summary Add the product carrying a barcode to the cart
// @Tags Pos
// @Accept json
// @Produce json
// @Param payload body domain.ScanInput true "Barcode"
// @Success 200 {object} domain.ScanResult "ok"
// @Router /pos/scan [post]
func (h *handlers) scan(r *stdhttp.Request, in domain.ScanInput) (any, error) {
	return h.svc.HandleScan(r.Context(), in.Value)
}

// @Summary Settle the cart
// @Tags Pos
// @Accept json
// @Produce json
// @Param payload body domain.CheckoutInput true "Payment"
// @Success 201 {object} posstate.Sale "created"
// @Failure 409 {object} phttp.Envelope "empty cart or terminal offline"
// @Failure 422 {object} phttp.Envelope "not enough cash"
// @Router /pos/checkout [post]
func (h *handlers) checkout(r *stdhttp.Request, in domain.CheckoutInput) (any, error) {
	sale, err := h.svc.Checkout(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(sale), nil
}

// @Summary Sales history
// @Tags Pos
// @Produce json
// @Success 200 {array} posstate.Sale "ok"
// @Router /pos/sales [get]
func (h *handlers) sales(r *stdhttp.Request) (any, error) {
	return h.svc.Sales(r.Context(), domain.SalesQuery{})
}

// @Summary Filter the sales history
// @Tags Pos
// @Accept json
// @Produce json
// @Param payload body domain.SalesQuery true "Filters"
// @Success 200 {array} posstate.Sale "ok"
// @Router /pos/sales/search [post]
func (h *handlers) searchSales(r *stdhttp.Request, in domain.SalesQuery) (any, error) {
	return h.svc.Sales(r.Context(), in)
}

// @Summary Get a sale
// @Tags Pos
// @Produce json
// @Param id path string true "Sale id"
// @Success 200 {object} posstate.Sale "ok"
// @Router /pos/sales/{id} [get]
func (h *handlers) sale(r *stdhttp.Request) (any, error) {
	return h.svc.Sale(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Print a receipt
// @Tags Pos
// @Produce json
// @Param id path string true "Sale id"
// @Success 200 {object} posstate.Sale "ok"
// @Failure 409 {object} phttp.Envelope "printer offline"
// @Router /pos/sales/{id}/print [post]
func (h *handlers) printReceipt(r *stdhttp.Request) (any, error) {
	return h.svc.PrintReceipt(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Set the print status of a sale
// @Tags Pos
// @Accept json
// @Produce json
// @Param id path string true "Sale id"
// @Param payload body domain.PrintStatusInput true "Status"
// @Success 200 {object} posstate.Sale "ok"
// @Router /pos/sales/{id}/printed [put]
func (h *handlers) setPrinted(r *stdhttp.Request, in domain.PrintStatusInput) (any, error) {
	return h.svc.SetPrinted(r.Context(), httpkit.Param(r, "id"), in.Printed)
}

// @Summary List peripherals
// @Tags Pos
// @Produce json
// @Success 200 {array} posstate.Device "ok"
// @Router /pos/devices [get]
func (h *handlers) devices(r *stdhttp.Request) (any, error) {
	return h.svc.Devices(r.Context())
}

// @Summary Recent device events
// @Tags Pos
// @Produce json
// @Success 200 {array} domain.Notification "ok"
// @Router /pos/devices/notifications [get]
func (h *handlers) notifications(r *stdhttp.Request) (any, error) {
	return h.svc.Notifications(r.Context())
}

// @Summary Scan for peripherals
// @Tags Pos
// @Produce json
// @Success 200 {array} posstate.Device "ok"
// @Router /pos/devices/discover [post]
func (h *handlers) discover(r *stdhttp.Request) (any, error) {
	return h.svc.Discover(r.Context())
}

// @Summary Connect a peripheral
// @Tags Pos
// @Produce json
// @Param id path string true "Device id"
// @Success 200 {object} posstate.Device "ok"
// @Router /pos/devices/{id}/connect [post]
func (h *handlers) connect(r *stdhttp.Request) (any, error) {
	return h.svc.Connect(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Disconnect a peripheral
// @Tags Pos
// @Produce json
// @Param id path string true "Device id"
// @Success 200 {object} posstate.Device "ok"
// @Router /pos/devices/{id}/disconnect [post]
func (h *handlers) disconnect(r *stdhttp.Request) (any, error) {
	return h.svc.Disconnect(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Self test a connected peripheral
// @Tags Pos
// @Produce json
// @Param id path string true "Device id"
// @Success 200 {object} domain.DeviceTest "ok"
// @Failure 409 {object} phttp.Envelope "device offline"
// @Router /pos/devices/{id}/test [post]
func (h *handlers) testDevice(r *stdhttp.Request) (any, error) {
	return h.svc.TestDevice(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Rename a peripheral
// @Tags Pos
// @Accept json
// @Produce json
// @Param id path string true "Device id"
// @Param payload body domain.RenameInput true "Name"
// @Success 200 {object} posstate.Device "ok"
// @Router /pos/devices/{id} [patch]
func (h *handlers) renameDevice(r *stdhttp.Request, in domain.RenameInput) (any, error) {
	return h.svc.RenameDevice(r.Context(), httpkit.Param(r, "id"), in.Name)
}

// @Summary Inventory statistics
// @Tags Pos
// @Produce json
// @Success 200 {object} posstate.InventoryStats "ok"
// @Router /pos/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.svc.Stats(r.Context())
}
