package http

import (
	"net/http"

	"caisse/internal/platform/net/http/bind"
)

// JSONHandler binds and validates a T body, then hands it to fn
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return JSONHandlerNoBody(func(r *http.Request) (any, error) {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return nil, err
		}
		return fn(r, in)
	})
}

// JSONHandlerNoBody serves fn's result: a Response as returned, an error as its
// envelope, anything else as 200 data
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}
