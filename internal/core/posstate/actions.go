package posstate

import (
	"strings"

	perr "caisse/internal/platform/errors"
)

// AddProduct appends p; ID and CreatedAt are supplied by the caller
func AddProduct(s State, p Product) (State, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Barcode = strings.TrimSpace(p.Barcode)
	if err := checkProduct(p); err != nil {
		return s, err
	}
	if _, ok := productIndex(s, p.ID); ok {
		return s, perr.DuplicateKeyf("product %s already exists", p.ID)
	}
	if err := barcodeFree(s, p.Barcode, ""); err != nil {
		return s, err
	}
	if err := categoryKnown(s, p.CategoryID); err != nil {
		return s, err
	}
	next := s.Clone()
	next.Products = append(next.Products, p)
	return next, nil
}

// UpdateProduct applies patch to the product with id
// cart lines keep the snapshot taken when they were added
func UpdateProduct(s State, id string, patch ProductPatch) (State, error) {
	i, ok := productIndex(s, id)
	if !ok {
		return s, perr.NotFoundf("product %s not found", id)
	}
	p := s.Products[i]
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.Barcode != nil {
		p.Barcode = strings.TrimSpace(*patch.Barcode)
	}
	if patch.MinStock != nil {
		p.MinStock = *patch.MinStock
	}
	if err := checkProduct(p); err != nil {
		return s, err
	}
	if err := barcodeFree(s, p.Barcode, id); err != nil {
		return s, err
	}
	if err := categoryKnown(s, p.CategoryID); err != nil {
		return s, err
	}
	next := s.Clone()
	next.Products[i] = p
	return next, nil
}

// DeleteProduct removes the product and its cart line; past sales keep their items
func DeleteProduct(s State, id string) (State, error) {
	i, ok := productIndex(s, id)
	if !ok {
		return s, perr.NotFoundf("product %s not found", id)
	}
	next := s.Clone()
	next.Products = append(next.Products[:i], next.Products[i+1:]...)
	next.Cart = filterCart(next.Cart, id)
	return next, nil
}

// AddCategory appends c; ID is supplied by the caller
func AddCategory(s State, c Category) (State, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.ID == "" {
		return s, perr.InvalidArgf("category id is required")
	}
	if c.Name == "" {
		return s, perr.WithField(perr.InvalidArgf("category name is required"), "name")
	}
	if _, ok := categoryIndex(s, c.ID); ok {
		return s, perr.DuplicateKeyf("category %s already exists", c.ID)
	}
	next := s.Clone()
	next.Categories = append(next.Categories, c)
	return next, nil
}

// UpdateCategory applies patch to the category with id
func UpdateCategory(s State, id string, patch CategoryPatch) (State, error) {
	i, ok := categoryIndex(s, id)
	if !ok {
		return s, perr.NotFoundf("category %s not found", id)
	}
	c := s.Categories[i]
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
		if c.Name == "" {
			return s, perr.WithField(perr.InvalidArgf("category name is required"), "name")
		}
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	next := s.Clone()
	next.Categories[i] = c
	return next, nil
}

// DeleteCategory removes the category and detaches its products
func DeleteCategory(s State, id string) (State, error) {
	i, ok := categoryIndex(s, id)
	if !ok {
		return s, perr.NotFoundf("category %s not found", id)
	}
	next := s.Clone()
	next.Categories = append(next.Categories[:i], next.Categories[i+1:]...)
	for j := range next.Products {
		if next.Products[j].CategoryID == id {
			next.Products[j].CategoryID = ""
		}
	}
	return next, nil
}

// AddToCart adds qty units of the product, merging with an existing line
func AddToCart(s State, productID string, qty int) (State, error) {
	if qty < 1 {
		return s, perr.WithField(perr.InvalidArgf("quantity must be at least 1"), "quantity")
	}
	i, ok := productIndex(s, productID)
	if !ok {
		return s, perr.NotFoundf("product %s not found", productID)
	}
	next := s.Clone()
	for j := range next.Cart {
		if next.Cart[j].ID == productID {
			next.Cart[j].Quantity += qty
			return next, nil
		}
	}
	next.Cart = append(next.Cart, CartItem{Product: s.Products[i], Quantity: qty})
	return next, nil
}

// UpdateCartItemQuantity sets the line quantity, clamping at zero; a zero line is dropped
func UpdateCartItemQuantity(s State, productID string, qty int) (State, error) {
	j, ok := cartIndex(s, productID)
	if !ok {
		return s, perr.NotFoundf("product %s is not in the cart", productID)
	}
	next := s.Clone()
	if qty <= 0 {
		next.Cart = filterCart(next.Cart, productID)
		return next, nil
	}
	next.Cart[j].Quantity = qty
	return next, nil
}

// RemoveFromCart drops the line for productID; removing an absent line is a no-op
func RemoveFromCart(s State, productID string) State {
	if _, ok := cartIndex(s, productID); !ok {
		return s
	}
	next := s.Clone()
	next.Cart = filterCart(next.Cart, productID)
	return next
}

// ClearCart empties the cart
func ClearCart(s State) State {
	next := s.Clone()
	next.Cart = nil
	return next
}

// CompleteSale turns the cart into a sale, clears the cart, and takes the sold units
// out of stock
func CompleteSale(s State, co Checkout) (State, Sale, error) {
	if len(s.Cart) == 0 {
		return s, Sale{}, perr.Conflictf("cart is empty")
	}
	if !co.Method.Valid() {
		return s, Sale{}, perr.WithField(perr.InvalidArgf("unknown payment method %q", co.Method), "payment_method")
	}
	if co.ID == "" {
		return s, Sale{}, perr.InvalidArgf("sale id is required")
	}

	total := CartTotal(s)
	sale := Sale{
		ID:            co.ID,
		Items:         append([]CartItem(nil), s.Cart...),
		Total:         total,
		PaymentMethod: co.Method,
		CreatedAt:     co.At,
	}
	switch {
	case co.Method == PaymentCash && co.CashReceived == nil:
		return s, Sale{}, perr.WithField(perr.InvalidArgf("cash received is required"), "cash_received")
	case co.CashReceived != nil && *co.CashReceived < total:
		return s, Sale{}, perr.WithField(perr.InvalidArgf("cash received %d is below total %d", *co.CashReceived, total), "cash_received")
	case co.CashReceived != nil:
		received := *co.CashReceived
		change := received - total
		sale.CashReceived = &received
		sale.CashChange = &change
	}

	next := s.Clone()
	next.Sales = append(next.Sales, sale)
	next.Cart = nil
	for _, item := range sale.Items {
		if i, ok := productIndex(next, item.ID); ok {
			next.Products[i].Stock -= item.Quantity
		}
	}
	return next, sale, nil
}

// UpdateSalePrintStatus marks a sale printed or not
func UpdateSalePrintStatus(s State, saleID string, printed bool) (State, error) {
	i, ok := saleIndex(s, saleID)
	if !ok {
		return s, perr.NotFoundf("sale %s not found", saleID)
	}
	next := s.Clone()
	next.Sales[i].Printed = printed
	return next, nil
}

// UpdateDeviceConnection records a device connecting or dropping
func UpdateDeviceConnection(s State, deviceID string, connected bool) (State, error) {
	i, ok := deviceIndex(s, deviceID)
	if !ok {
		return s, perr.NotFoundf("device %s not found", deviceID)
	}
	next := s.Clone()
	next.Devices[i].Connected = connected
	return next, nil
}

// RenameDevice sets the display name of a device
func RenameDevice(s State, deviceID, name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, perr.WithField(perr.InvalidArgf("device name is required"), "name")
	}
	i, ok := deviceIndex(s, deviceID)
	if !ok {
		return s, perr.NotFoundf("device %s not found", deviceID)
	}
	next := s.Clone()
	next.Devices[i].Name = name
	return next, nil
}

func checkProduct(p Product) error {
	switch {
	case p.ID == "":
		return perr.InvalidArgf("product id is required")
	case p.Name == "":
		return perr.WithField(perr.InvalidArgf("product name is required"), "name")
	case p.Price < 0:
		return perr.WithField(perr.InvalidArgf("price must not be negative"), "price")
	case p.MinStock < 0:
		return perr.WithField(perr.InvalidArgf("min stock must not be negative"), "min_stock")
	}
	return nil
}

func barcodeFree(s State, code, self string) error {
	if code == "" {
		return nil
	}
	for _, p := range s.Products {
		if p.Barcode == code && p.ID != self {
			return perr.WithField(perr.DuplicateKeyf("barcode %s already belongs to %s", code, p.Name), "barcode")
		}
	}
	return nil
}

func categoryKnown(s State, id string) error {
	if id == "" {
		return nil
	}
	if _, ok := categoryIndex(s, id); !ok {
		return perr.WithField(perr.NotFoundf("category %s not found", id), "category_id")
	}
	return nil
}

func filterCart(cart []CartItem, productID string) []CartItem {
	out := cart[:0]
	for _, it := range cart {
		if it.ID != productID {
			out = append(out, it)
		}
	}
	return out
}

func productIndex(s State, id string) (int, bool) {
	for i, p := range s.Products {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}

func categoryIndex(s State, id string) (int, bool) {
	for i, c := range s.Categories {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

func cartIndex(s State, productID string) (int, bool) {
	for i, c := range s.Cart {
		if c.ID == productID {
			return i, true
		}
	}
	return -1, false
}

func saleIndex(s State, id string) (int, bool) {
	for i, sale := range s.Sales {
		if sale.ID == id {
			return i, true
		}
	}
	return -1, false
}

func deviceIndex(s State, id string) (int, bool) {
	for i, d := range s.Devices {
		if d.ID == id {
			return i, true
		}
	}
	return -1, false
}
