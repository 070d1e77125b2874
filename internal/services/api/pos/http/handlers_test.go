package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caisse/internal/core/posstate"
	phttp "caisse/internal/platform/net/http"
	"caisse/internal/platform/store"
	"caisse/internal/platform/testkit"
	"caisse/internal/services/api/pos/repo"
	svc "caisse/internal/services/api/pos/service"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
)

func newServer(t *testing.T) stdhttp.Handler {
	t.Helper()
	st := posstate.New()
	st.Products = []posstate.Product{
		{ID: "p-milk", Name: "Lait demi-écrémé", Price: 115, Stock: 20, Barcode: "3017620422003"},
	}
	s := svc.New(store.NewMemory(st), repo.NewMemory(), clockwork.NewFakeClock(), svc.DefaultConfig())
	m := chi.NewRouter()
	r := phttp.AdaptChi(m)
	r.Route("/pos", func(rr phttp.Router) { Register(rr, s) })
	return m
}

func do(t *testing.T, h stdhttp.Handler, method, path, body string) (int, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env phttp.Envelope
	if rec.Code != stdhttp.StatusNoContent {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func dataField(t *testing.T, env phttp.Envelope, key string) any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T", env.Data)
	}
	return m[key]
}

func TestProducts_CreateAndFetchByBarcode(t *testing.T) {
	t.Parallel()

	h := newServer(t)
	code, env := do(t, h, "POST", "/pos/products", `{"name":"Beurre","price":245,"stock":4,"barcode":"3228021170015"}`)
	if code != stdhttp.StatusCreated {
		t.Fatalf("create status = %d (%s)", code, env.Error)
	}
	id, _ := dataField(t, env, "id").(string)
	if id == "" {
		t.Fatalf("missing id")
	}
	code, env = do(t, h, "GET", "/pos/products/barcode/3228021170015", "")
	if code != stdhttp.StatusOK || dataField(t, env, "id") != id {
		t.Fatalf("by barcode = %d %+v", code, env.Data)
	}
	code, _ = do(t, h, "GET", "/pos/products/barcode/00000000", "")
	if code != stdhttp.StatusNotFound {
		t.Fatalf("unknown barcode status = %d", code)
	}
}

func TestProducts_ValidationAndConflicts(t *testing.T) {
	t.Parallel()

	h := newServer(t)
	code, env := do(t, h, "POST", "/pos/products", `{"name":"Bad","price":1,"barcode":"12ab"}`)
	if code != stdhttp.StatusBadRequest {
		t.Fatalf("bad barcode status = %d", code)
	}
	testkit.MustContain(t, env.Error, "barcode")

	code, _ = do(t, h, "POST", "/pos/products", `{"name":"Copie","price":1,"barcode":"3017620422003"}`)
	if code != stdhttp.StatusConflict {
		t.Fatalf("duplicate barcode status = %d", code)
	}
	code, _ = do(t, h, "POST", "/pos/products", `{"name":"X","price":1,"color":"red"}`)
	if code != stdhttp.StatusBadRequest {
		t.Fatalf("unknown field status = %d", code)
	}
}

func TestProducts_PatchAndDelete(t *testing.T) {
	t.Parallel()

	h := newServer(t)
	code, env := do(t, h, "PATCH", "/pos/products/p-milk", `{"stock":7}`)
	if code != stdhttp.StatusOK || dataField(t, env, "stock") != float64(7) {
		t.Fatalf("patch = %d %+v", code, env.Data)
	}
	if code, _ = do(t, h, "DELETE", "/pos/products/p-milk", ""); code != stdhttp.StatusNoContent {
		t.Fatalf("delete status = %d", code)
	}
	if code, _ = do(t, h, "DELETE", "/pos/products/p-milk", ""); code != stdhttp.StatusNotFound {
		t.Fatalf("second delete status = %d", code)
	}
}

func TestScanThenCashCheckout(t *testing.T) {
	t.Parallel()

	h := newServer(t)
	code, env := do(t, h, "POST", "/pos/scan", `{"value":"3017620422003"}`)
	if code != stdhttp.StatusOK || dataField(t, env, "matched") != true {
		t.Fatalf("scan = %d %+v", code, env.Data)
	}
	code, env = do(t, h, "POST", "/pos/checkout", `{"payment_method":"cash","cash_received":100}`)
	if code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("short cash status = %d", code)
	}
	code, env = do(t, h, "POST", "/pos/checkout", `{"payment_method":"cash","cash_received":200}`)
	if code != stdhttp.StatusCreated || dataField(t, env, "cash_change") != float64(85) {
		t.Fatalf("checkout = %d %+v", code, env.Data)
	}
	code, env = do(t, h, "GET", "/pos/cart", "")
	if code != stdhttp.StatusOK || dataField(t, env, "units") != float64(0) {
		t.Fatalf("cart after sale = %+v", env.Data)
	}
	code, _ = do(t, h, "POST", "/pos/checkout", `{"payment_method":"cash","cash_received":200}`)
	if code != stdhttp.StatusConflict {
		t.Fatalf("empty cart status = %d", code)
	}
}

func TestCheckout_RejectsUnknownMethod(t *testing.T) {
	t.Parallel()

	h := newServer(t)
	code, env := do(t, h, "POST", "/pos/checkout", `{"payment_method":"cheque"}`)
	if code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", code)
	}
	testkit.MustContain(t, env.Error, "payment_method")
}

func TestCart_QuantityRoutes(t *testing.T) {
	t.Parallel()

	h := newServer(t)
	_, _ = do(t, h, "POST", "/pos/cart/items", `{"product_id":"p-milk"}`)
	code, env := do(t, h, "PUT", "/pos/cart/items/p-milk", `{"quantity":4}`)
	if code != stdhttp.StatusOK || dataField(t, env, "units") != float64(4) {
		t.Fatalf("set quantity = %d %+v", code, env.Data)
	}
	code, _ = do(t, h, "PUT", "/pos/cart/items/p-none", `{"quantity":4}`)
	if code != stdhttp.StatusNotFound {
		t.Fatalf("missing line status = %d", code)
	}
	code, env = do(t, h, "DELETE", "/pos/cart", "")
	if code != stdhttp.StatusOK || dataField(t, env, "total") != float64(0) {
		t.Fatalf("clear = %d %+v", code, env.Data)
	}
}

func TestDevices_OfflineTestIsConflict(t *testing.T) {
	t.Parallel()

	h := newServer(t)
	code, env := do(t, h, "GET", "/pos/devices", "")
	if code != stdhttp.StatusOK {
		t.Fatalf("devices status = %d", code)
	}
	if list, _ := env.Data.([]any); len(list) != 2 {
		t.Fatalf("devices = %+v", env.Data)
	}
	if code, _ = do(t, h, "POST", "/pos/devices/printer/test", ""); code != stdhttp.StatusConflict {
		t.Fatalf("offline test status = %d", code)
	}
	if code, _ = do(t, h, "POST", "/pos/devices/printer/disconnect", ""); code != stdhttp.StatusOK {
		t.Fatalf("disconnect status = %d", code)
	}
}

func TestStats_Route(t *testing.T) {
	t.Parallel()

	h := newServer(t)
	code, env := do(t, h, "GET", "/pos/stats", "")
	if code != stdhttp.StatusOK || dataField(t, env, "total_stock") != float64(20) {
		t.Fatalf("stats = %d %+v", code, env.Data)
	}
}
