// Package middleware holds the Connect interceptors shared by all services.
package middleware

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/internal/auth"
	"github.com/mmynk/tabshare/internal/settlement"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// sessionKey is the context key for the authenticated session.
const sessionKey contextKey = "session"

// WithSession returns a context carrying sess.
func WithSession(ctx context.Context, sess settlement.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the session stored by RequireAuth.
func SessionFromContext(ctx context.Context) (settlement.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(settlement.Session)
	return sess, ok && sess.Valid()
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	sess, _ := SessionFromContext(ctx)
	return sess.UserID
}

// bearerToken returns the token of a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireAuth returns an interceptor that validates the bearer token and
// stores the session in the request context. Procedures listed in public
// pass through without a token.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if open[req.Spec().Procedure] {
				return next(ctx, req)
			}

			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			sess, err := jwtManager.Session(token)
			if err != nil {
				slog.Warn("Rejected token", "procedure", req.Spec().Procedure, "error", err)
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithSession(ctx, sess), req)
		}
	}
}
