package middleware

import (
	"net/http"

	"caisse/internal/platform/logger"
	phttp "caisse/internal/platform/net/http"
)

// AuthPort resolves the operator behind a request
type AuthPort interface {
	Operator(r *http.Request) (string, error)
}

// Auth rejects requests p cannot resolve with its error envelope and tags the
// rest with the operator; a nil port lets everything through
func Auth(p AuthPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, err := p.Operator(r)
			if err != nil {
				phttp.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(logger.WithOperator(r.Context(), op)))
		})
	}
}
