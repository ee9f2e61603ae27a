package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// IdentityValidator validates a bearer token and yields the caller identity.
type IdentityValidator interface {
	Validate(tokenString string) (domain.Identity, error)
}

type contextKeyIdentity struct{}
type contextKeyRequestID struct{}

// ContextKeyIdentity is exported for use in handlers.
var (
	ContextKeyIdentity  = contextKeyIdentity{}
	ContextKeyRequestID = contextKeyRequestID{}
)

// GetIdentity retrieves the authenticated caller identity from the context.
func GetIdentity(ctx context.Context) domain.Identity {
	identity, ok := ctx.Value(ContextKeyIdentity).(domain.Identity)
	if !ok {
		return ""
	}
	return identity
}

// GetRequestID retrieves the request correlation ID from the context.
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	if !ok {
		return ""
	}
	return requestID
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func RequireAuth(validator IdentityValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}

			identity, err := validator.Validate(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized request - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
