package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "caisse/internal/platform/errors"
)

// TokenFunc maps a bearer token to the operator it belongs to
type TokenFunc func(token string) (operator string, err error)

// Port reads the Authorization header and hands the bearer token to a TokenFunc
type Port struct{ resolve TokenFunc }

// NewPortFunc builds a Port around fn
func NewPortFunc(fn TokenFunc) *Port { return &Port{resolve: fn} }

// StaticToken accepts the one shared till token as operator; an empty token accepts nothing
func StaticToken(token, operator string) TokenFunc {
	want := []byte(token)
	return func(got string) (string, error) {
		if token == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return "", perr.Unauthorizedf("invalid bearer token")
		}
		return operator, nil
	}
}

// Operator implements middleware.AuthPort; the scheme is matched case insensitively
func (p *Port) Operator(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	if p.resolve == nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	op, err := p.resolve(token)
	if err != nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return op, nil
}
