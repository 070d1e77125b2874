package module

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caisse/internal/core/posstate"
	"caisse/internal/modkit"
	"caisse/internal/modkit/module"
	"caisse/internal/platform/config"
	phttp "caisse/internal/platform/net/http"
	"caisse/internal/platform/store"
	posdom "caisse/internal/services/api/pos/domain"

	"github.com/go-chi/chi/v5"
)

func TestFromConfig_Defaults(t *testing.T) {
	t.Setenv("CORE_POS_CARD_LATENCY", "")
	t.Setenv("CORE_POS_CURRENCY", "CHF")

	o := FromConfig(config.New())
	if o.CardLatency != 2*time.Second || o.ConnectLatency != time.Second || o.DiscoveryLatency != 3*time.Second {
		t.Fatalf("latencies = %+v", o)
	}
	if o.Currency != "CHF" || o.LowStockDefault != posstate.DefaultMinStock || o.DropProbability != 0.01 {
		t.Fatalf("options = %+v", o)
	}
}

func TestModule_MountsUnderPrefixAndExposesScanPort(t *testing.T) {
	t.Parallel()

	db := store.NewMemory(posstate.New())
	m := NewWithOptions(modkit.Deps{POS: db}, Options{})
	if m.Name() != "pos" || m.Prefix() != "/pos" {
		t.Fatalf("name=%q prefix=%q", m.Name(), m.Prefix())
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/pos/devices", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("GET /pos/devices = %d", rec.Code)
	}

	scan := module.MustPortsOf[posdom.ScanPort](m)
	res, err := scan.HandleScan(context.Background(), "12345678")
	if err != nil || res.Matched {
		t.Fatalf("scan = %+v, %v", res, err)
	}
	if _, ok := module.PortsOf[posdom.MonitorPort](m); !ok {
		t.Fatalf("monitor port missing")
	}
}
