package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unimart/internal/identity"
	dErrors "unimart/pkg/domain-errors"
)

// capture records the last request a test backend received.
type capture struct {
	method string
	path   string
	query  string
	body   []byte
	header http.Header
}

// newTestClient points both base URLs at a stub backend and records what it
// receives. The handler may be nil for a plain 200 with an empty JSON object.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *capture) {
	t.Helper()

	rec := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		if handler != nil {
			handler(w, r)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(Config{
		AuthBaseURL:   srv.URL + "/api/",
		MarketBaseURL: srv.URL + "/api",
	}, srv.Client(), logger)
	return client, rec
}

func Test_Login_DecodesEnvelope(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"role": "STUDENT",
			"token": "header.payload.sig",
			"data": {"studentId": 42, "name": "Ada", "email": "ada@campus.edu"}
		}`))
	})

	resp, err := client.Auth.Login(context.Background(), LoginRequest{
		Email:    "ada@campus.edu",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/auth/login", rec.path)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "application/json", rec.header.Get("Content-Type"))

	assert.True(t, resp.Success)
	assert.Equal(t, "STUDENT", resp.Role)
	assert.Equal(t, "header.payload.sig", resp.Token)
	assert.Equal(t, identity.ID("42"), resp.Data.StudentID)

	var sent LoginRequest
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	assert.Equal(t, "ada@campus.edu", sent.Email)
}

func Test_Login_ValidationFailsBeforeAnyRequest(t *testing.T) {
	client, rec := newTestClient(t, nil)

	_, err := client.Auth.Login(context.Background(), LoginRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.Empty(t, rec.method, "invalid requests must never reach the network")
}

func Test_RegisterStudent_EnforcesPasswordLength(t *testing.T) {
	client, rec := newTestClient(t, nil)

	err := client.Auth.RegisterStudent(context.Background(), StudentRegistration{
		Name:     "Ada",
		Email:    "ada@campus.edu",
		Password: "short",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.Empty(t, rec.method)
}

func Test_ProductCreate_SendsMultipart(t *testing.T) {
	client, rec := newTestClient(t, nil)

	err := client.Products.Create(context.Background(), NewProduct{
		Name:          "Bicycle",
		Description:   "Barely used",
		Price:         79.5,
		Category:      "Sports",
		Image:         strings.NewReader("fake-image-bytes"),
		ImageFilename: "bike.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/product/create", rec.path)
	assert.Contains(t, rec.header.Get("Content-Type"), "multipart/form-data")

	payload := string(rec.body)
	assert.Contains(t, payload, `name="price"`)
	assert.Contains(t, payload, "79.50")
	assert.Contains(t, payload, `filename="bike.jpg"`)
	assert.Contains(t, payload, "fake-image-bytes")
}

func Test_ProductCheckout_ReturnsRedirect(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"redirectUrl": "https://pay.example/session/abc"}`))
	})

	redirect, err := client.Products.Checkout(context.Background(), identity.ID("7"))
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/abc", redirect)
	assert.Equal(t, "/api/product/checkout/7", rec.path)
	assert.Equal(t, http.MethodPost, rec.method)
}

func Test_TransactionCreate_UsesQueryParams(t *testing.T) {
	client, rec := newTestClient(t, nil)

	err := client.Transactions.Create(context.Background(), identity.ID("7"), identity.ID("42"))
	require.NoError(t, err)

	assert.Equal(t, "/api/transaction/create", rec.path)
	assert.Equal(t, "buyerId=42&productId=7", rec.query)
	assert.Empty(t, rec.body, "the endpoint takes no body")
}

func Test_ResponseError_MapsStatusToCode(t *testing.T) {
	cases := []struct {
		status int
		code   dErrors.Code
	}{
		{http.StatusBadRequest, dErrors.CodeBadRequest},
		{http.StatusUnauthorized, dErrors.CodeUnauthorized},
		{http.StatusForbidden, dErrors.CodeForbidden},
		{http.StatusNotFound, dErrors.CodeNotFound},
		{http.StatusTooManyRequests, dErrors.CodeTooManyRequests},
		{http.StatusInternalServerError, dErrors.CodeInternal},
	}
	for _, tc := range cases {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"message": "nope"}`))
		})

		_, err := client.Products.List(context.Background())
		require.Error(t, err, "status %d", tc.status)
		assert.True(t, dErrors.HasCode(err, tc.code), "status %d", tc.status)
		assert.Contains(t, err.Error(), "nope")
	}
}

func Test_ResponseError_FallsBackToStatusText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Products.Get(context.Background(), identity.ID("9"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), http.StatusText(http.StatusNotFound))
}

func Test_NewClient_TrimsTrailingSlashes(t *testing.T) {
	client, rec := newTestClient(t, nil)

	_, err := client.Transactions.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/transaction/getAll", rec.path)
}
