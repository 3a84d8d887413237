package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization gates routes on the caller's role. Roles are flat
// here: "admin" reviews and manages, "user" submits.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok || u == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !u.IsAdmin() {
				ra.logger.WarnContext(r.Context(), "access denied: admin role required", "user_id", u.ID, "role", u.Role)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireActiveUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok || u == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !u.IsActiveUser() {
				ra.logger.WarnContext(r.Context(), "access denied: inactive account", "user_id", u.ID)
				http.Error(w, "Forbidden: account inactive", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
