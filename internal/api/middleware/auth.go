package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/api/session"
)

type contextKey string

const UserIDKey contextKey = "userID"

// Identify resolves the caller once per request and stores the id in the
// context. Requests without an identity pass through untouched; handlers
// decide what anonymous callers may do.
func Identify(resolver *session.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if uid, ok := resolver.UID(r); ok {
				r = r.WithContext(WithUserID(r.Context(), uid))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithUserID(ctx context.Context, uid uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, uid)
}

// UserIDFrom returns the caller stored by Identify, or uuid.Nil.
func UserIDFrom(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return uid
}
