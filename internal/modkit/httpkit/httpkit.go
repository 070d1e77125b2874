// Package httpkit is what feature modules import to declare routes: the router
// seam, response constructors, and one line mounting helpers per verb
package httpkit

import (
	"net/http"
	"net/url"
	"path"

	phttp "caisse/internal/platform/net/http"
)

type (
	// Router is the seam modules mount on
	Router = phttp.Router
	// Response is a return style handler result
	Response = phttp.Response
)

// Created wraps v as a 201
func Created(v any) Response { return phttp.Created(v) }

// CreatedAt is a 201 whose Location is the request path plus id, for POST on a collection
func CreatedAt(r *http.Request, id string, v any) Response {
	return phttp.Created(v).WithHeader("Location", path.Join(r.URL.Path, url.PathEscape(id)))
}

// NoContent is a 204
func NoContent() Response { return phttp.NoContent() }

// Param returns the {name} path segment
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }

// Get mounts a handler that reads no body
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.JSONHandlerNoBody(h))
}

// Post mounts a handler for a bodiless action such as connect or print
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, phttp.JSONHandlerNoBody(h))
}

// Delete mounts a bodiless delete
func Delete(r Router, path string, h func(*http.Request) (any, error)) {
	r.Delete(path, phttp.JSONHandlerNoBody(h))
}

// PostJSON mounts a handler taking a validated T body
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// PutJSON mounts a handler taking a validated T body
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.JSONHandler(h))
}

// PatchJSON mounts a handler taking a validated T body
func PatchJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Patch(path, phttp.JSONHandler(h))
}
