// Package middleware holds the net/http wrappers shared by the routes:
// the access-control gate, cross-origin policies, panic recovery and
// request metrics.
package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records-api/internal/utils/response"
)

// ErrForbidden is the body returned when the gate denies a request.
var ErrForbidden = errors.New("Forbidden: Invalid API Key")

// Authorizer decides whether a request may reach a gated handler.
// Swapping the implementation changes the auth scheme without touching
// the handlers.
type Authorizer interface {
	Authorize(r *http.Request) bool
}

// APIKey is a single static shared secret carried in one request header.
type APIKey struct {
	Header string
	Key    string
}

// Authorize reports whether the header value equals the key byte for byte.
// A missing or empty header never matches.
func (k APIKey) Authorize(r *http.Request) bool {
	got := r.Header.Get(k.Header)
	if got == "" || k.Key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(k.Key)) == 1
}

// RequireAuth runs next only when a authorizes the request. Otherwise it
// answers 403 and next is never called.
func RequireAuth(a Authorizer, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Authorize(r) {
			slog.Warn("request denied by access gate",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			response.WriteJSON(w, http.StatusForbidden, response.GeneralError(ErrForbidden))
			return
		}
		next(w, r)
	}
}
