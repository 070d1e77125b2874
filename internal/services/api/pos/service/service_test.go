package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"caisse/internal/core/posstate"
	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/store"
	"caisse/internal/platform/testkit"
	"caisse/internal/services/api/pos/domain"
	"caisse/internal/services/api/pos/repo"

	"github.com/jonboulle/clockwork"
)

func seeded() posstate.State {
	s := posstate.New()
	s.Categories = []posstate.Category{{ID: "c-dairy", Name: "Crèmerie"}}
	s.Products = []posstate.Product{
		{ID: "p-milk", Name: "Lait demi-écrémé", Price: 115, Stock: 20, CategoryID: "c-dairy", Barcode: "3017620422003"},
		{ID: "p-choc", Name: "Chocolat noir", Price: 389, Stock: 3, MinStock: 2, Barcode: "3017620425035"},
		{ID: "p-bread", Name: "Baguette", Price: 110, Stock: 5},
	}
	return s
}

type fixture struct {
	svc *Svc
	db  *store.Memory[posstate.State]
	clk *clockwork.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := store.NewMemory(seeded())
	clk := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return fixture{svc: New(db, repo.NewMemory(), clk, DefaultConfig()), db: db, clk: clk}
}

func (f fixture) state() posstate.State {
	s, _ := f.db.Snapshot()
	return s
}

// async runs fn in a goroutine and returns its error on a channel
func async(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}

func recv(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
		return nil
	}
}

func cash(v int64) *int64 { return &v }

func TestNew_PanicsOnNilDeps(t *testing.T) {
	t.Parallel()

	testkit.MustPanic(t, func() { New(nil, repo.NewMemory(), nil, Config{}) })
	testkit.MustPanic(t, func() { New(store.NewMemory(posstate.New()), nil, nil, Config{}) })
}

func TestCreateProduct_AssignsIDAndTime(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p, err := f.svc.CreateProduct(context.Background(), domain.ProductInput{Name: "  Beurre doux ", Price: 245, Stock: 8, Barcode: "3228021170015"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" || p.Name != "Beurre doux" || !p.CreatedAt.Equal(f.clk.Now()) {
		t.Fatalf("product = %+v", p)
	}
	if _, ok := posstate.FindByBarcode(f.state(), "3228021170015"); !ok {
		t.Fatalf("product not committed")
	}
}

func TestCreateProduct_DuplicateBarcode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.CreateProduct(context.Background(), domain.ProductInput{Name: "Copie", Barcode: "3017620422003"})
	if !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("err = %v", err)
	}
	if len(f.state().Products) != 3 {
		t.Fatalf("failed create must not commit")
	}
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	price := int64(125)
	p, err := f.svc.UpdateProduct(ctx, "p-milk", domain.ProductPatchInput{Price: &price})
	if err != nil || p.Price != 125 {
		t.Fatalf("update = %+v, %v", p, err)
	}
	if err := f.svc.DeleteProduct(ctx, "p-milk"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Product(ctx, "p-milk"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("get after delete = %v", err)
	}
}

func TestSearchProducts_IgnoresAccents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	got, err := f.svc.SearchProducts(context.Background(), domain.SearchInput{Term: "ECREME"})
	if err != nil || len(got) != 1 || got[0].ID != "p-milk" {
		t.Fatalf("search = %+v, %v", got, err)
	}
}

func TestCategories_CreateUpdateDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCategory(ctx, domain.CategoryInput{Name: "Boulangerie"})
	if err != nil || c.ID == "" {
		t.Fatalf("create = %+v, %v", c, err)
	}
	name := "Pains"
	if c, err = f.svc.UpdateCategory(ctx, c.ID, domain.CategoryPatchInput{Name: &name}); err != nil || c.Name != "Pains" {
		t.Fatalf("update = %+v, %v", c, err)
	}
	if err := f.svc.DeleteCategory(ctx, "c-dairy"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	p, _ := f.svc.Product(ctx, "p-milk")
	if p.CategoryID != "" {
		t.Fatalf("product still in deleted category")
	}
}

func TestCart_AddDefaultsToOneUnit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	cart, err := f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-milk"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, _ = f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-milk", Quantity: 2})
	if len(cart.Items) != 1 || cart.Units != 3 || cart.Total != 345 {
		t.Fatalf("cart = %+v", cart)
	}
	cart, _ = f.svc.SetCartQuantity(ctx, "p-milk", 0)
	if len(cart.Items) != 0 || cart.Items == nil {
		t.Fatalf("zero quantity should drop the line, items=%v", cart.Items)
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-milk"})
	_, _ = f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-bread"})
	cart, _ := f.svc.RemoveFromCart(ctx, "p-milk")
	if cart.Units != 1 {
		t.Fatalf("after remove = %+v", cart)
	}
	cart, _ = f.svc.ClearCart(ctx)
	if cart.Units != 0 || cart.Total != 0 {
		t.Fatalf("after clear = %+v", cart)
	}
}

func TestHandleScan_AddsOneUnit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.HandleScan(ctx, " 3017620422003 ")
	if err != nil || !res.Matched || res.Product.ID != "p-milk" {
		t.Fatalf("scan = %+v, %v", res, err)
	}
	res, _ = f.svc.HandleScan(ctx, "3017620422003")
	if res.Cart.Units != 2 || len(res.Cart.Items) != 1 {
		t.Fatalf("cart = %+v", res.Cart)
	}
}

func TestHandleScan_UnknownIsRemembered(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.HandleScan(ctx, "99999999")
	if err != nil || res.Matched {
		t.Fatalf("scan = %+v, %v", res, err)
	}
	if res.Cart.LastUnmatched != "99999999" || res.Cart.Units != 0 {
		t.Fatalf("cart = %+v", res.Cart)
	}
	res, _ = f.svc.HandleScan(ctx, "3017620425035")
	if res.Cart.LastUnmatched != "" {
		t.Fatalf("a match should clear the unmatched scan")
	}
}

func TestCheckout_CashComputesChange(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-choc", Quantity: 2})
	sale, err := f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "cash", CashReceived: cash(1000)})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if sale.Total != 778 || *sale.CashChange != 222 || sale.ID == "" {
		t.Fatalf("sale = %+v", sale)
	}
	st := f.state()
	p, _ := posstate.FindProduct(st, "p-choc")
	if p.Stock != 1 || len(st.Cart) != 0 || len(st.Sales) != 1 {
		t.Fatalf("state after sale: stock=%d cart=%d sales=%d", p.Stock, len(st.Cart), len(st.Sales))
	}
}

func TestCheckout_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "cash", CashReceived: cash(10)}); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("empty cart err = %v", err)
	}
	_, _ = f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-milk"})
	if _, err := f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "cash", CashReceived: cash(100)}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("short cash err = %v", err)
	}
	if _, err := f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "card"}); !perr.IsCode(err, perr.ErrorCodeDeviceOffline) {
		t.Fatalf("offline terminal err = %v", err)
	}
	if len(f.state().Cart) != 1 {
		t.Fatalf("failed checkouts must keep the cart")
	}
}

// plug marks a device connected without going through the latency
func (f fixture) plug(t *testing.T, id string) {
	t.Helper()
	err := f.db.Tx(context.Background(), func(c store.Cell[posstate.State]) error {
		s, err := posstate.UpdateDeviceConnection(c.Load(), id, true)
		if err != nil {
			return err
		}
		return c.Store(s)
	})
	if err != nil {
		t.Fatalf("plug %s: %v", id, err)
	}
}

func TestCheckout_CardWaitsForTerminal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.plug(t, posstate.TerminalID)
	_, _ = f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-bread"})

	var sale posstate.Sale
	done := async(func() (err error) {
		sale, err = f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "card"})
		return err
	})
	f.clk.BlockUntil(1)
	if len(f.state().Sales) != 0 {
		t.Fatalf("sale recorded before the terminal answered")
	}
	f.clk.Advance(2 * time.Second)
	if err := recv(t, done); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if sale.PaymentMethod != posstate.PaymentCard || sale.CashChange != nil {
		t.Fatalf("sale = %+v", sale)
	}
}

func TestCheckout_CanceledWhileWaiting(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.plug(t, posstate.TerminalID)
	_, _ = f.svc.AddToCart(context.Background(), domain.CartAddInput{ProductID: "p-bread"})

	ctx, cancel := context.WithCancel(context.Background())
	done := async(func() error {
		_, err := f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "nfc"})
		return err
	})
	// nfc does not wait on the terminal
	if err := recv(t, done); err != nil {
		t.Fatalf("nfc checkout: %v", err)
	}

	_, _ = f.svc.AddToCart(context.Background(), domain.CartAddInput{ProductID: "p-bread"})
	done = async(func() error {
		_, err := f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "card"})
		return err
	})
	f.clk.BlockUntil(1)
	cancel()
	if err := recv(t, done); err == nil {
		t.Fatalf("canceled checkout should fail")
	}
	if st := f.state(); len(st.Sales) != 1 || len(st.Cart) != 1 {
		t.Fatalf("canceled checkout must not settle: sales=%d cart=%d", len(st.Sales), len(st.Cart))
	}
}

func TestSales_FilterAndPrint(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-milk"})
	first, _ := f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "cash", CashReceived: cash(200)})
	f.clk.Advance(time.Hour)
	_, _ = f.svc.AddToCart(ctx, domain.CartAddInput{ProductID: "p-choc"})
	_, _ = f.svc.Checkout(ctx, domain.CheckoutInput{PaymentMethod: "nfc"})

	got, _ := f.svc.Sales(ctx, domain.SalesQuery{PaymentMethod: "nfc"})
	if len(got) != 1 || got[0].Total != 389 {
		t.Fatalf("nfc sales = %+v", got)
	}
	min := int64(200)
	if got, _ = f.svc.Sales(ctx, domain.SalesQuery{MinAmount: &min}); len(got) != 1 {
		t.Fatalf("min amount sales = %+v", got)
	}

	if _, err := f.svc.PrintReceipt(ctx, first.ID); !perr.IsCode(err, perr.ErrorCodeDeviceOffline) {
		t.Fatalf("print with printer offline = %v", err)
	}
	if _, err := f.svc.PrintReceipt(ctx, "nope"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("print unknown sale = %v", err)
	}
	f.plug(t, posstate.PrinterID)
	var printed posstate.Sale
	done := async(func() (err error) {
		printed, err = f.svc.PrintReceipt(ctx, first.ID)
		return err
	})
	f.clk.BlockUntil(1)
	f.clk.Advance(time.Second)
	if err := recv(t, done); err != nil || !printed.Printed {
		t.Fatalf("print = %+v, %v", printed, err)
	}
	if s, _ := f.svc.SetPrinted(ctx, first.ID, false); s.Printed {
		t.Fatalf("set printed false ignored")
	}
}

func TestDevices_ConnectTestDisconnect(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.TestDevice(ctx, posstate.PrinterID); !perr.IsCode(err, perr.ErrorCodeDeviceOffline) {
		t.Fatalf("test offline = %v", err)
	}
	if _, err := f.svc.Connect(ctx, "scale"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("connect unknown = %v", err)
	}

	var d posstate.Device
	done := async(func() (err error) {
		d, err = f.svc.Connect(ctx, posstate.PrinterID)
		return err
	})
	f.clk.BlockUntil(1)
	f.clk.Advance(time.Second)
	if err := recv(t, done); err != nil || !d.Connected {
		t.Fatalf("connect = %+v, %v", d, err)
	}

	var res domain.DeviceTest
	done = async(func() (err error) {
		res, err = f.svc.TestDevice(ctx, posstate.PrinterID)
		return err
	})
	f.clk.BlockUntil(1)
	f.clk.Advance(time.Second)
	if err := recv(t, done); err != nil || res.Message != "test print succeeded" {
		t.Fatalf("test = %+v, %v", res, err)
	}

	// disconnect does not wait
	if d, err := f.svc.Disconnect(ctx, posstate.PrinterID); err != nil || d.Connected {
		t.Fatalf("disconnect = %+v, %v", d, err)
	}
}

func TestDevices_DiscoverAndRename(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	var found []posstate.Device
	done := async(func() (err error) {
		found, err = f.svc.Discover(ctx)
		return err
	})
	f.clk.BlockUntil(1)
	f.clk.Advance(3 * time.Second)
	if err := recv(t, done); err != nil || len(found) != 2 {
		t.Fatalf("discover = %+v, %v", found, err)
	}
	d, err := f.svc.RenameDevice(ctx, posstate.TerminalID, " TPE comptoir ")
	if err != nil || d.Name != "TPE comptoir" {
		t.Fatalf("rename = %+v, %v", d, err)
	}
	if _, err := f.svc.RenameDevice(ctx, posstate.TerminalID, " "); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("blank rename = %v", err)
	}
}

func TestSweep_DropsWithProbability(t *testing.T) {
	f := newFixture(t)
	f.plug(t, posstate.PrinterID)
	f.plug(t, posstate.TerminalID)

	draws := []float64{0.5, 0.001}
	testkit.Swap(t, &randFloat, func() float64 {
		v := draws[0]
		draws = draws[1:]
		return v
	})
	if err := f.svc.sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	st := f.state()
	printer, _ := posstate.FindDevice(st, posstate.PrinterID)
	terminal, _ := posstate.FindDevice(st, posstate.TerminalID)
	if !printer.Connected || terminal.Connected {
		t.Fatalf("printer=%v terminal=%v", printer.Connected, terminal.Connected)
	}
	notes, _ := f.svc.Notifications(context.Background())
	if len(notes) != 1 || notes[0].DeviceID != posstate.TerminalID {
		t.Fatalf("notifications = %+v", notes)
	}
	testkit.MustContain(t, notes[0].Message, "Terminal de Paiement")
}

func TestRun_SweepsOnEveryTick(t *testing.T) {
	f := newFixture(t)
	f.plug(t, posstate.PrinterID)
	testkit.Swap(t, &randFloat, func() float64 { return 0 })

	ctx, cancel := context.WithCancel(context.Background())
	done := async(func() error { return f.svc.Run(ctx) })
	f.clk.BlockUntil(1)
	f.clk.Advance(5 * time.Second)

	testkit.Eventually(t, 2*time.Second, func() bool {
		d, _ := posstate.FindDevice(f.state(), posstate.PrinterID)
		return !d.Connected
	})
	cancel()
	if err := recv(t, done); err != context.Canceled {
		t.Fatalf("run = %v", err)
	}
}

func TestNotifications_Bounded(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for i := 0; i < maxNotifications+10; i++ {
		f.svc.notify(posstate.Device{ID: fmt.Sprintf("d%d", i), Name: "x"}, "disconnected")
	}
	notes, _ := f.svc.Notifications(context.Background())
	if len(notes) != maxNotifications || notes[0].DeviceID != fmt.Sprintf("d%d", maxNotifications+9) {
		t.Fatalf("len=%d first=%s", len(notes), notes[0].DeviceID)
	}
}

func TestStats_UsesDefaultThreshold(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	st, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	// bread sits at the default threshold, chocolate above its own minimum
	if st.TotalProducts != 3 || st.TotalStock != 28 || len(st.LowStockProducts) != 1 || st.LowStockProducts[0].ID != "p-bread" {
		t.Fatalf("stats = %+v", st)
	}
}
