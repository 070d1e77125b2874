// Package swaggerkit serves Swagger UI over the caisse OpenAPI document
package swaggerkit

import (
	"net/http"

	"caisse/internal/core/version"
	phttp "caisse/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount serves the UI under /api/docs/ and the document at /api/docs/doc.json
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDoc)
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("caisse"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}

func serveDoc(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	phttp.JSON(w, http.StatusOK, document())
}

// document is the OpenAPI root: build info, the /api/v1 server and the
// envelope every error answer uses
func document() map[string]any {
	info := version.Info()
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "Caisse API",
			"version":     info.Version,
			"description": "Point of sale backend with barcode scan confirmation",
		},
		"servers": []any{map[string]any{"url": "/api/v1"}},
		"paths":   map[string]any{},
		"components": map[string]any{
			"schemas": map[string]any{
				"Envelope": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status_code": map[string]any{"type": "integer", "format": "int32"},
						"status":      map[string]any{"type": "string"},
						"code":        map[string]any{"type": "integer", "format": "int32"},
						"error":       map[string]any{"type": "string"},
						"field":       map[string]any{"type": "string"},
						"request_id":  map[string]any{"type": "string"},
						"data":        map[string]any{},
					},
					"required": []any{"status_code", "status"},
				},
			},
		},
	}
}
