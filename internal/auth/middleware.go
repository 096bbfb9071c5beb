package auth

import (
	"context"
	"fmt"
	"net/http"

	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userRoleKey contextKey = "user_role"
)

// UserStore is the slice of the data store the gates need. The stored
// role is authoritative; the session claim is not.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Middleware holds the pieces the auth gates share.
type Middleware struct {
	Store      UserStore
	CookieName string
	Logger     *logger.Logger
}

func NewMiddleware(store UserStore, cookieName string, log *logger.Logger) *Middleware {
	return &Middleware{Store: store, CookieName: cookieName, Logger: log}
}

// RequireAuth rejects requests without a resolvable identity and attaches
// the user id to the request context.
func (m *Middleware) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := ResolveUserID(r, m.CookieName)
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole resolves the identity, re-reads the user's current role
// from storage and only proceeds when that role is in the allowed set.
// Unknown roles match nothing. Authentication is always checked before
// authorization, so a caller with no identity gets 401 even on a
// role-gated route.
func (m *Middleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := ResolveUserID(r, m.CookieName)
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			user, err := m.Store.GetUserByID(r.Context(), uid)
			if err != nil || user == nil {
				utils.WriteError(w, http.StatusUnauthorized, "User not found")
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				if m.Logger != nil {
					m.Logger.LogSecurity("FORBIDDEN", fmt.Sprintf("user %d with role %q denied on %s %s", uid, user.Role, r.Method, r.URL.Path))
				}
				utils.WriteError(w, http.StatusForbidden, "Forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, uid)
			ctx = context.WithValue(ctx, userRoleKey, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id attached by the gates.
func UserID(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}

// UserRole returns the storage-verified role attached by RequireRole.
func UserRole(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(userRoleKey).(models.Role)
	return role, ok
}
