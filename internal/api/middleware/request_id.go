// Package middleware provides HTTP middleware for the FareScout API.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestID ensures every request carries an identifier. An inbound
// X-Request-Id header is trusted as-is so callers and upstream proxies
// can correlate their own logs with ours; otherwise a fresh ID is
// minted. The ID ends up in the request context and the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = newRequestID()
		}

		w.Header().Set("X-Request-Id", id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newRequestID mints a prefixed identifier short enough to read in logs.
func newRequestID() string {
	return "req_" + uuid.New().String()[:22]
}

// GetRequestID returns the request ID stored by RequestID, or "" when
// the request never passed through the middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
