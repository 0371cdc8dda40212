// Package transport wraps the backend HTTP client. The Authorizer attaches
// credentials and defensive headers to outgoing requests and reacts to
// authorization failures on the way back: a 401 (or a 403 caused by a stale
// token) forces a logout, everything else passes through untouched.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"unimart/internal/store"
	"unimart/internal/token"
	"unimart/pkg/requestcontext"
)

// maxSniffedBody bounds how much of an error response is buffered to read
// the server's message. Error envelopes are tiny; anything bigger is not one.
const maxSniffedBody = 64 << 10

// staleTokenMarker is the server's message prefix for age-rejected tokens.
// A 403 carrying it means re-authentication, not a permission problem.
const staleTokenMarker = "Token too old"

// sensitivePathFragments marks state-changing endpoints that get the
// defense-in-depth headers. A backend-side signal, not an enforcement point.
var sensitivePathFragments = []string{"/create", "/delete", "/update", "/checkout"}

// Hooks let the application react to transport-level auth events. All fields
// are optional; nil hooks are skipped.
type Hooks struct {
	// OnForcedLogout runs when the server rejects our credential outright.
	OnForcedLogout func(ctx context.Context, reason string)

	// Navigate requests a hard navigation, which implicitly abandons every
	// other in-flight call belonging to the page.
	Navigate func(route string)

	// Notify surfaces a user-facing message (permission denied, rate limit).
	Notify func(message string)
}

// Authorizer is an http.RoundTripper. Wire it into the http.Client used for
// every backend call.
type Authorizer struct {
	base       http.RoundTripper
	store      store.Store
	logger     *slog.Logger
	metrics    *Metrics
	hooks      Hooks
	loginRoute string
}

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithLoginRoute overrides the route navigated to after a forced logout.
func WithLoginRoute(route string) Option {
	return func(a *Authorizer) { a.loginRoute = route }
}

// NewAuthorizer builds the interceptor around base (http.DefaultTransport
// when nil).
func NewAuthorizer(base http.RoundTripper, st store.Store, logger *slog.Logger, metrics *Metrics, hooks Hooks, opts ...Option) *Authorizer {
	if base == nil {
		base = http.DefaultTransport
	}
	a := &Authorizer{
		base:       base,
		store:      st,
		logger:     logger,
		metrics:    metrics,
		hooks:      hooks,
		loginRoute: "/login",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	out := req.Clone(req.Context())
	a.authorize(out)

	resp, err := a.base.RoundTrip(out)
	if err != nil {
		a.metrics.CountRequest(req.Method, "error", time.Since(start))
		return nil, err
	}
	a.metrics.CountRequest(req.Method, statusClass(resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 400 {
		a.intercept(req.Context(), out, resp)
	}
	return resp, nil
}

// authorize mutates the outgoing clone: correlation ID, bearer credential,
// and the defensive headers on sensitive state-changing calls.
func (a *Authorizer) authorize(req *http.Request) {
	ctx := req.Context()
	if req.Header.Get("X-Request-ID") == "" {
		// Reuse the inbound correlation ID when the middleware set one, so a
		// navigation and the backend calls it fans out to trace together.
		reqID := requestcontext.RequestID(ctx)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		req.Header.Set("X-Request-ID", reqID)
	}

	entry, err := a.store.Load(ctx)
	if err == nil {
		if token.Valid(entry.Token) {
			req.Header.Set("Authorization", "Bearer "+entry.Token)
		} else {
			// Same repair as on hydration: an invalid persisted credential
			// is cleared on read rather than sent.
			a.logger.WarnContext(ctx, "cleared invalid persisted token before request")
			if clearErr := a.store.Clear(ctx); clearErr != nil {
				a.logger.ErrorContext(ctx, "failed to clear invalid token", "error", clearErr)
			}
		}
	}

	if isStateChanging(req.Method) && isSensitivePath(req.URL.Path) {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		req.Header.Set("Content-Security-Policy", "default-src 'self'")
	}
}

// intercept applies the response-side policy. The response body stays
// readable for the caller.
func (a *Authorizer) intercept(ctx context.Context, req *http.Request, resp *http.Response) {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		a.logger.WarnContext(ctx, "authentication failed",
			"status", resp.StatusCode,
			"method", req.Method,
			"path", req.URL.Path,
		)
		a.forceLogout(ctx, "authentication failed")

	case http.StatusForbidden:
		message := a.peekMessage(resp)
		if strings.Contains(message, staleTokenMarker) {
			a.forceLogout(ctx, "stale token rejected by server")
			a.notify("Your session has expired for security reasons. Please log in again.")
			return
		}
		a.logger.WarnContext(ctx, "permission denied",
			"method", req.Method,
			"path", req.URL.Path,
			"message", message,
		)
		if message == "" {
			message = "Access denied"
		}
		a.notify("You do not have permission to perform this action: " + message)

	case http.StatusTooManyRequests:
		a.notify("Too many requests. Please try again later.")
	}
}

// forceLogout clears persisted state, fires the application hook, and
// requests navigation to login. Safe to run repeatedly: every step is
// idempotent, so a burst of 401s settles in the same place.
func (a *Authorizer) forceLogout(ctx context.Context, reason string) {
	a.metrics.CountForcedLogout()
	if err := a.store.Clear(ctx); err != nil {
		a.logger.ErrorContext(ctx, "failed to clear session on forced logout", "error", err)
	}
	if a.hooks.OnForcedLogout != nil {
		a.hooks.OnForcedLogout(ctx, reason)
	}
	if a.hooks.Navigate != nil {
		a.hooks.Navigate(a.loginRoute)
	}
}

func (a *Authorizer) notify(message string) {
	if a.hooks.Notify != nil {
		a.hooks.Notify(message)
	}
}

// peekMessage buffers the error body, extracts the server message, and puts
// the bytes back so the caller still gets the full response.
func (a *Authorizer) peekMessage(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSniffedBody))
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func isSensitivePath(path string) bool {
	for _, fragment := range sensitivePathFragments {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
