package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// errMissingToken marks requests with no usable Authorization header.
var errMissingToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for context keys in this package.
// Using a package-private type (instead of a plain string) means no other
// package can read or shadow the username we store in the request context.
type contextKey string

const usernameKey contextKey = "username"

// invalidTokenBody is the fixed 401 envelope for protected endpoints.
// It is written here rather than through the handler package's helpers to
// keep the middleware free of a dependency on the handler layer; the shape
// matches the error envelope exactly.
const invalidTokenBody = `{"status":"error","code":"INVALID_TOKEN","message":"Invalid access token provided"}`

// RequireAuth enforces bearer-token authentication on protected routes.
//
// It reads the Authorization header, verifies the JWT, and stores the
// token's subject (the username) in the request context. A missing header,
// a non-Bearer scheme, or any verification failure short-circuits the chain
// with 401 INVALID_TOKEN — before any store access happens. No distinction
// between "expired", "tampered", and "absent" is surfaced.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := extractUsername(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(invalidTokenBody))
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext returns the authenticated username placed in the
// context by RequireAuth. ok is false for anonymous requests, which on a
// protected route means the middleware was not applied — a wiring bug.
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameKey).(string)
	return name, ok && name != ""
}

// extractUsername pulls the bearer token from the Authorization header and
// verifies it. The scheme comparison is case-insensitive per RFC 7235.
func extractUsername(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errMissingToken
	}

	return tokens.Verify(strings.TrimSpace(token))
}
