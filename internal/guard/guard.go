// Package guard decides whether a navigation target may render. Guards gate
// on the hydration probe first: issuing a redirect before the stored session
// has been restored is the bug class this package exists to prevent.
package guard

import (
	"log/slog"
	"net/http"

	"unimart/internal/identity"
	"unimart/internal/session"
)

// SessionReader is the slice of the session manager guards need.
type SessionReader interface {
	Loading() bool
	IsAuthenticated() bool
	HasRole(required identity.Role) bool
	Current() session.Snapshot
}

// Routes names the navigation targets guards redirect to.
type Routes struct {
	Login          string
	StudentHome    string
	AdminHome      string
	SuperAdminHome string
}

// DefaultRoutes returns the route map of the stock marketplace UI.
func DefaultRoutes() Routes {
	return Routes{
		Login:          "/login",
		StudentHome:    "/home",
		AdminHome:      "/admin-dashboard",
		SuperAdminHome: "/superadmin-dashboard",
	}
}

// Home returns the landing route for a role. The precedence is exact and
// most-privileged first, because roles are supersets rather than mutually
// exclusive buckets: SUPER_ADMIN, then ADMIN, then STUDENT, anything else
// lands on login.
func (r Routes) Home(role identity.Role) string {
	switch role {
	case identity.RoleSuperAdmin:
		return r.SuperAdminHome
	case identity.RoleAdmin:
		return r.AdminHome
	case identity.RoleStudent:
		return r.StudentHome
	default:
		return r.Login
	}
}

// RequireSession permits authenticated sessions only. While hydration is in
// flight it answers 503 with Retry-After instead of deciding anything; once
// settled, anonymous visitors are redirected to the login entry point.
func RequireSession(sessions SessionReader, logger *slog.Logger, routes Routes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.Loading() {
				waitForHydration(w)
				return
			}
			if !sessions.IsAuthenticated() {
				logger.WarnContext(r.Context(), "unauthenticated navigation",
					"path", r.URL.Path,
				)
				http.Redirect(w, r, routes.Login, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole permits sessions holding any of the allowed roles. Anonymous
// visitors go to login; authenticated visitors without a matching role are
// redirected to their own role's landing route, never to login.
func RequireRole(sessions SessionReader, logger *slog.Logger, routes Routes, allowed ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.Loading() {
				waitForHydration(w)
				return
			}
			if !sessions.IsAuthenticated() {
				http.Redirect(w, r, routes.Login, http.StatusSeeOther)
				return
			}

			for _, role := range allowed {
				if sessions.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			snap := sessions.Current()
			logger.WarnContext(r.Context(), "navigation denied for role",
				"path", r.URL.Path,
				"role", string(snap.Role),
			)
			http.Redirect(w, r, routes.Home(snap.Role), http.StatusSeeOther)
		})
	}
}

// waitForHydration is the neutral waiting answer: not a redirect, not the
// protected content.
func waitForHydration(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	http.Error(w, "session loading", http.StatusServiceUnavailable)
}
