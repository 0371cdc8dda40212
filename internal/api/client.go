// Package api holds the typed bindings for the marketplace REST backend.
// Every call goes through the shared authorized http.Client, so credentials,
// defensive headers, and failure interception come for free.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "unimart/pkg/domain-errors"
)

// Config carries the backend base URLs, without trailing slashes.
type Config struct {
	AuthBaseURL   string
	MarketBaseURL string
}

// Client bundles the per-resource APIs over one HTTP client.
type Client struct {
	http     *http.Client
	cfg      Config
	logger   *slog.Logger
	validate *validator.Validate

	Auth         *AuthAPI
	Students     *StudentAPI
	Products     *ProductAPI
	Transactions *TransactionAPI
	Admins       *AdminAPI
}

// NewClient builds the API client. httpClient should carry the transport
// Authorizer; a plain client is substituted when nil so tests can hit
// unauthenticated endpoints directly.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")
	cfg.MarketBaseURL = strings.TrimRight(cfg.MarketBaseURL, "/")

	c := &Client{
		http:     httpClient,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	c.Auth = &AuthAPI{c: c}
	c.Students = &StudentAPI{c: c}
	c.Products = &ProductAPI{c: c}
	c.Transactions = &TransactionAPI{c: c}
	c.Admins = &AdminAPI{c: c}
	return c
}

// validateRequest runs struct validation and wraps failures as bad-request
// domain errors so feature code gets one error vocabulary.
func (c *Client) validateRequest(req any) error {
	if err := c.validate.Struct(req); err != nil {
		return dErrors.Wrap(dErrors.CodeBadRequest, "invalid request: "+err.Error(), err)
	}
	return nil
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// doMultipart issues a request with form fields and an optional file part.
func (c *Client) doMultipart(ctx context.Context, method, url string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %q: %w", k, err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return fmt.Errorf("copy file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.responseError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// responseError converts a failed response into a coded error carrying the
// server's message. The transport layer has already applied any session side
// effects for 401/403/429 by the time this runs.
func (c *Client) responseError(resp *http.Response) error {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&envelope)
	message := envelope.Message
	if message == "" {
		message = envelope.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	code := dErrors.CodeInternal
	switch resp.StatusCode {
	case http.StatusBadRequest:
		code = dErrors.CodeBadRequest
	case http.StatusUnauthorized:
		code = dErrors.CodeUnauthorized
	case http.StatusForbidden:
		code = dErrors.CodeForbidden
	case http.StatusNotFound:
		code = dErrors.CodeNotFound
	case http.StatusTooManyRequests:
		code = dErrors.CodeTooManyRequests
	}
	return dErrors.New(code, message)
}
