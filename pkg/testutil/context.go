package testutil

import (
	"context"
	"net/http"

	"github.com/MandalaChain/E-Certificate/internal/platform/middleware"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// WithIdentity adds a caller identity to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the identity does not parse, it is silently ignored.
func WithIdentity(req *http.Request, identity string) *http.Request {
	if parsed, err := domain.ParseIdentity(identity); err == nil {
		ctx := context.WithValue(req.Context(), middleware.ContextKeyIdentity, parsed)
		return req.WithContext(ctx)
	}
	return req
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
