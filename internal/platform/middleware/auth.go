package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator checks a bearer token and resolves it to a username.
type TokenValidator interface {
	Validate(token string) (username string, err error)
}

type contextKeyUsername struct{}
type contextKeyRequestID struct{}

// GetUsername retrieves the authenticated username from the context.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(contextKeyUsername{}).(string)
	return username
}

// GetRequestID retrieves the correlation ID injected by RequestID.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID{}).(string)
	return id
}

func withUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKeyUsername{}, username)
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, id)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved username in the request context for handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx))
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			username, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx))
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUsername(ctx, username)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
