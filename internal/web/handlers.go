package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"unimart/internal/api"
	"unimart/internal/authz"
	"unimart/internal/guard"
	"unimart/internal/identity"
	"unimart/internal/session"
	dErrors "unimart/pkg/domain-errors"
)

// Handlers is the thin HTTP layer. It delegates to the session manager and
// the API bindings without embedding business logic of its own.
type Handlers struct {
	sessions *session.Manager
	api      *api.Client
	logger   *slog.Logger
	routes   guard.Routes
}

func NewHandlers(sessions *session.Manager, apiClient *api.Client, logger *slog.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		api:      apiClient,
		logger:   logger,
		routes:   guard.DefaultRoutes(),
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePage answers a placeholder for routes whose content the SPA renders;
// the gateway only cares that the guard let the request through.
func (h *Handlers) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := h.sessions.Current()
		writeJSON(w, http.StatusOK, map[string]string{
			"page": name,
			"role": string(snap.Role),
		})
	}
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.api.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	role, known := identity.ParseRole(resp.Role)
	if !known {
		h.logger.WarnContext(r.Context(), "login returned unrecognized role", "role", resp.Role)
	}
	if err := h.sessions.Login(r.Context(), resp.Token, role, resp.Data); err != nil {
		// Persistence failed; the in-memory session was not touched and the
		// user sees a failed login rather than a half-applied one.
		h.logger.ErrorContext(r.Context(), "failed to persist session", "error", err)
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "login could not be saved, please retry", err))
		return
	}

	http.Redirect(w, r, h.routes.Home(role), http.StatusSeeOther)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "logout cleanup failed", "error", err)
	}
	http.Redirect(w, r, h.routes.Login, http.StatusSeeOther)
}

func (h *Handlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	var reg api.StudentRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.api.Auth.RegisterStudent(r.Context(), reg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (h *Handlers) handleBuy(w http.ResponseWriter, r *http.Request) {
	products, err := h.api.Products.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// handleSell runs the operation pre-flight before submitting the listing:
// a UX-layer check that catches stale or under-privileged sessions without a
// round trip; the backend repeats it authoritatively.
func (h *Handlers) handleSell(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.Current()
	if err := authz.ValidateSensitiveOperation(authz.OpCreateProduct, snap.Role, snap.Token); err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid listing form"))
		return
	}
	product := api.NewProduct{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}
	if price := r.FormValue("price"); price != "" {
		product.Price, _ = strconv.ParseFloat(price, 64)
	}
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		product.Image = file
		product.ImageFilename = header.Filename
	}

	if err := h.api.Products.Create(r.Context(), product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "listed"})
}

func (h *Handlers) handleCheckout(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.Current()
	if err := authz.ValidateSensitiveOperation(authz.OpMakePurchase, snap.Role, snap.Token); err != nil {
		writeError(w, err)
		return
	}

	productID := identity.ID(chi.URLParam(r, "productID"))
	redirectURL, err := h.api.Products.Checkout(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	// Payment is a hard navigation to the gateway; nothing else on the page
	// survives it.
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

func (h *Handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.Current()
	studentID := snap.Profile.EntityID(identity.RoleStudent)
	if studentID.IsZero() {
		writeError(w, dErrors.New(dErrors.CodeNotFound, "no student profile for this session"))
		return
	}
	student, err := h.api.Students.Get(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *Handlers) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	students, err := h.api.Students.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":     "admin-dashboard",
		"students": students,
	})
}

func (h *Handlers) handleSuperAdminDashboard(w http.ResponseWriter, r *http.Request) {
	admins, err := h.api.Admins.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":   "superadmin-dashboard",
		"admins": admins,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError centralizes domain error translation to HTTP responses so every
// handler answers with the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(code),
		"message": err.Error(),
	})
}
