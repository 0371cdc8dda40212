// Package web is the thin local gateway hosting the marketplace routes. The
// handlers render placeholders on purpose; the interesting behavior is which
// sessions may reach them and where everyone else is redirected, which the
// guard middleware decides.
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unimart/internal/guard"
	"unimart/internal/identity"
)

// NewRouter wires the public entry points and the guarded route groups.
func NewRouter(h *Handlers, sessions guard.SessionReader, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	routes := guard.DefaultRoutes()

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/login", h.handlePage("login"))
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/signup", h.handleSignup)

	// Student pages. ADMIN and SUPER_ADMIN sessions pass too: roles are
	// supersets, not buckets.
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireRole(sessions, logger, routes, identity.RoleStudent))
		r.Get("/home", h.handlePage("home"))
		r.Get("/buy", h.handleBuy)
		r.Get("/sell", h.handlePage("sell"))
		r.Post("/sell", h.handleSell)
		r.Post("/checkout/{productID}", h.handleCheckout)
		r.Get("/profile", h.handleProfile)
		r.Get("/transactions", h.handlePage("transactions"))
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireRole(sessions, logger, routes, identity.RoleAdmin))
		r.Get("/admin-dashboard", h.handleAdminDashboard)
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireRole(sessions, logger, routes, identity.RoleSuperAdmin))
		r.Get("/superadmin-dashboard", h.handleSuperAdminDashboard)
	})

	return r
}
