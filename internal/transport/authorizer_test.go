package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unimart/internal/identity"
	"unimart/internal/store"
	"unimart/pkg/requestcontext"
	"unimart/pkg/testutil"
)

// recorder captures hook invocations for assertions.
type recorder struct {
	mu            sync.Mutex
	forcedReasons []string
	navigations   []string
	notices       []string
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnForcedLogout: func(_ context.Context, reason string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.forcedReasons = append(r.forcedReasons, reason)
		},
		Navigate: func(route string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.navigations = append(r.navigations, route)
		},
		Notify: func(message string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.notices = append(r.notices, message)
		},
	}
}

type AuthorizerSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	recorder *recorder
	client   *http.Client
}

func TestAuthorizerSuite(t *testing.T) {
	suite.Run(t, new(AuthorizerSuite))
}

func (s *AuthorizerSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.recorder = &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.client = &http.Client{
		Transport: NewAuthorizer(nil, s.store, logger, nil, s.recorder.hooks()),
		// Redirect-following would hide the raw backend response.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *AuthorizerSuite) login(role string) string {
	raw := testutil.MintToken(s.T(), map[string]any{
		"sub":  "42",
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s.Require().NoError(s.store.SetOptimistic(context.Background(), store.Entry{
		Token:   raw,
		Role:    role,
		Profile: identity.Profile{StudentID: "42", Email: "ada@campus.edu"},
	}))
	return raw
}

func (s *AuthorizerSuite) get(url string) *http.Response {
	resp, err := s.client.Get(url)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *AuthorizerSuite) post(url string) *http.Response {
	resp, err := s.client.Post(url, "application/json", nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *AuthorizerSuite) TestAttachesBearerAndRequestID() {
	raw := s.login("STUDENT")

	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s.get(srv.URL + "/product/getAllProducts")

	s.Equal("Bearer "+raw, gotAuth)
	s.NotEmpty(gotRequestID)
}

func (s *AuthorizerSuite) TestPropagatesInboundCorrelationID() {
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := requestcontext.WithRequestID(context.Background(), "corr-123")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/home", nil)
	s.Require().NoError(err)

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	_ = resp.Body.Close()

	s.Equal("corr-123", gotRequestID)
}

func (s *AuthorizerSuite) TestAnonymousRequestHasNoBearer() {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s.get(srv.URL + "/product/getAllProducts")
	s.Empty(gotAuth)
}

func (s *AuthorizerSuite) TestInvalidStoredTokenClearedNotSent() {
	expired := testutil.MintToken(s.T(), map[string]any{
		"sub":  "42",
		"role": "STUDENT",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	s.Require().NoError(s.store.SetOptimistic(context.Background(), store.Entry{
		Token:   expired,
		Role:    "STUDENT",
		Profile: identity.Profile{StudentID: "42"},
	}))

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s.get(srv.URL + "/home")

	s.Empty(gotAuth)
	_, err := s.store.Load(context.Background())
	s.Require().Error(err, "invalid credential must be purged on read")
}

func (s *AuthorizerSuite) TestSensitiveHeaders() {
	s.login("STUDENT")

	headers := map[string]http.Header{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers[r.Method+" "+r.URL.Path] = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s.Run("set on state-changing sensitive paths", func() {
		s.post(srv.URL + "/product/create")
		h := headers["POST /product/create"]
		s.Equal("XMLHttpRequest", h.Get("X-Requested-With"))
		s.Equal("default-src 'self'", h.Get("Content-Security-Policy"))
	})

	s.Run("not set on reads of sensitive paths", func() {
		s.get(srv.URL + "/product/create")
		h := headers["GET /product/create"]
		s.Empty(h.Get("X-Requested-With"))
	})

	s.Run("not set on state changes to ordinary paths", func() {
		s.post(srv.URL + "/auth/login")
		h := headers["POST /auth/login"]
		s.Empty(h.Get("X-Requested-With"))
	})
}

func (s *AuthorizerSuite) TestUnauthorizedForcesLogout() {
	s.login("STUDENT")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	resp := s.get(srv.URL + "/transaction/getAll")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	s.Equal([]string{"authentication failed"}, s.recorder.forcedReasons)
	s.Equal([]string{"/login"}, s.recorder.navigations)

	_, err := s.store.Load(context.Background())
	s.Require().Error(err, "session must be wiped after a 401")
}

func (s *AuthorizerSuite) TestRepeatedUnauthorizedIsIdempotent() {
	s.login("STUDENT")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s.get(srv.URL + "/a")
	s.get(srv.URL + "/b")

	s.Equal([]string{"authentication failed", "authentication failed"}, s.recorder.forcedReasons)
	_, err := s.store.Load(context.Background())
	s.Require().Error(err)
}

func (s *AuthorizerSuite) TestForbiddenStaleTokenForcesLogout() {
	s.login("STUDENT")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Token too old, please login again"}`))
	}))
	defer srv.Close()

	s.get(srv.URL + "/product/delete/1")

	s.Equal([]string{"stale token rejected by server"}, s.recorder.forcedReasons)
	s.Equal([]string{"Your session has expired for security reasons. Please log in again."}, s.recorder.notices)
	_, err := s.store.Load(context.Background())
	s.Require().Error(err)
}

func (s *AuthorizerSuite) TestForbiddenPermissionDeniedKeepsSession() {
	s.login("STUDENT")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Admins only"}`))
	}))
	defer srv.Close()

	s.get(srv.URL + "/superadmin/admin/getAll")

	s.Empty(s.recorder.forcedReasons)
	s.Equal([]string{"You do not have permission to perform this action: Admins only"}, s.recorder.notices)

	// The session survives an ordinary permission failure.
	_, err := s.store.Load(context.Background())
	s.Require().NoError(err)
}

func (s *AuthorizerSuite) TestForbiddenBodyStaysReadable() {
	s.login("STUDENT")

	const payload = `{"message":"Admins only"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	resp := s.get(srv.URL + "/x")
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal(payload, string(body))
}

func (s *AuthorizerSuite) TestTooManyRequestsNotifiesOnly() {
	s.login("STUDENT")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s.get(srv.URL + "/product/getAllProducts")

	s.Empty(s.recorder.forcedReasons)
	s.Equal([]string{"Too many requests. Please try again later."}, s.recorder.notices)
	_, err := s.store.Load(context.Background())
	s.Require().NoError(err)
}

func (s *AuthorizerSuite) TestCallerRequestNotMutated() {
	s.login("STUDENT")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/home", nil)
	s.Require().NoError(err)

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	_ = resp.Body.Close()

	s.Empty(req.Header.Get("Authorization"), "authorization must be added to a clone only")
}
