package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"caisse/internal/platform/config"
	perr "caisse/internal/platform/errors"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type addLine struct {
	Barcode  string `json:"barcode" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func newMux() (*chi.Mux, Router) {
	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	return mux, AdaptChi(mux)
}

func serve(t *testing.T, h stdhttp.Handler, method, path, body string) (int, Envelope, stdhttp.Header) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env Envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, env, rec.Header()
}

func TestHandlersWriteEnvelopes(t *testing.T) {
	mux, r := newMux()
	r.Route("/pos", func(pos Router) {
		pos.Post("/cart/items", JSONHandler(func(_ *stdhttp.Request, in addLine) (any, error) {
			if in.Barcode == "0000000000000" {
				return nil, perr.NotFoundf("product with barcode %s not found", in.Barcode)
			}
			return Created(in), nil
		}))
		pos.Get("/cart", JSONHandlerNoBody(func(*stdhttp.Request) (any, error) {
			return []string{"p-milk"}, nil
		}))
		pos.Delete("/cart", JSONHandlerNoBody(func(*stdhttp.Request) (any, error) { return NoContent(), nil }))
		pos.Get("/products/{id}", Handle(func(r *stdhttp.Request) Response {
			return Response{Body: Param(r, "id"), Header: stdhttp.Header{"X-Stock": {"3"}}}
		}))
		pos.Put("/devices/{id}", JSONHandlerNoBody(func(*stdhttp.Request) (any, error) {
			return nil, errors.New("driver crashed")
		}))
	})

	code, env, _ := serve(t, mux, "POST", "/pos/cart/items", `{"barcode":"4006381333931","quantity":2}`)
	if code != stdhttp.StatusCreated || env.StatusCode != 201 || env.RequestID == "" {
		t.Fatalf("created = %d %+v", code, env)
	}

	code, env, _ = serve(t, mux, "POST", "/pos/cart/items", `{"barcode":"0000000000000","quantity":1}`)
	if code != stdhttp.StatusNotFound || env.Code != perr.ErrorCodeNotFound || !strings.Contains(env.Error, "0000000000000") {
		t.Fatalf("not found = %d %+v", code, env)
	}

	code, env, _ = serve(t, mux, "POST", "/pos/cart/items", `{"barcode":"4006381333931","quantity":0}`)
	if code != stdhttp.StatusBadRequest || env.Field != "quantity" {
		t.Fatalf("validation = %d %+v", code, env)
	}

	code, env, _ = serve(t, mux, "GET", "/pos/cart", "")
	if code != stdhttp.StatusOK || env.Status != "OK" {
		t.Fatalf("get = %d %+v", code, env)
	}

	if code, _, _ = serve(t, mux, "DELETE", "/pos/cart", ""); code != stdhttp.StatusNoContent {
		t.Fatalf("delete = %d", code)
	}

	code, env, hdr := serve(t, mux, "GET", "/pos/products/p-milk", "")
	if code != stdhttp.StatusOK || env.Data != "p-milk" || hdr.Get("X-Stock") != "3" {
		t.Fatalf("param = %d %+v %v", code, env, hdr)
	}

	code, env, _ = serve(t, mux, "PUT", "/pos/devices/printer", "")
	if code != stdhttp.StatusInternalServerError || env.Code != perr.ErrorCodeUnknown || env.Error != "driver crashed" {
		t.Fatalf("foreign error = %d %+v", code, env)
	}
}

func TestGroupScopesMiddleware(t *testing.T) {
	mux, r := newMux()
	tag := func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			w.Header().Set("X-Hot-Path", "1")
			next.ServeHTTP(w, req)
		})
	}
	r.Route("/scanner", func(s Router) {
		s.Get("/stream", Handle(func(*stdhttp.Request) Response { return OK("stream") }))
		s.Group(func(g Router) {
			g.Use(tag)
			g.Post("/sessions/{id}/detections", Handle(func(r *stdhttp.Request) Response { return OK(Param(r, "id")) }))
		})
	})

	if _, _, hdr := serve(t, mux, "GET", "/scanner/stream", ""); hdr.Get("X-Hot-Path") != "" {
		t.Fatalf("group middleware leaked onto sibling routes")
	}
	_, env, hdr := serve(t, mux, "POST", "/scanner/sessions/lane-1/detections", "")
	if hdr.Get("X-Hot-Path") != "1" || env.Data != "lane-1" {
		t.Fatalf("group route = %+v %v", env, hdr)
	}
}

func TestMountProfiler(t *testing.T) {
	mux, r := newMux()
	MountProfiler(r, "/debug", false)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/debug/pprof/", nil))
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("disabled profiler answered %d", rec.Code)
	}

	mux, r = newMux()
	MountProfiler(r, "/debug", true)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/debug/pprof/cmdline", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("profiler = %d", rec.Code)
	}
}

func TestServerRunStopsWithContext(t *testing.T) {
	t.Setenv("CORE_API_PORT", "127.0.0.1:0")
	t.Setenv("CORE_API_SHUTDOWN_TIMEOUT", "1s")
	s := NewServer(config.New().Prefix("CORE_API_"))
	if s.Addr() != "127.0.0.1:0" {
		t.Fatalf("addr = %q", s.Addr())
	}
	s.Router().Get("/ping", Handle(func(*stdhttp.Request) Response { return OK("pong") }))
	if code, env, _ := serve(t, s.Handler(), "GET", "/ping", ""); code != 200 || env.Data != "pong" {
		t.Fatalf("ping = %d %+v", code, env)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}
