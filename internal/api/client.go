// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the onboarding backend.
//
// All methods return either decoded data or an error; expected HTTP
// failures come back as *APIError so callers can branch on status,
// while transport failures surface as wrapped errors. Nothing in this
// package retries automatically.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrimonial/patri-tui/internal/logging"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// maxResponseBody caps how much of a response body we read.
	// RELIABILITY: Prevents memory exhaustion from a misbehaving server.
	maxResponseBody = 10 * 1024 * 1024 // 10MB

	// defaultTimeout applies to non-streaming requests.
	defaultTimeout = 60 * time.Second
)

// ValidationFailedDetail is the message shown for every HTTP 422,
// regardless of the response body.
const ValidationFailedDetail = "Dados inválidos. Por favor, verifique as informações enviadas."

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnauthorized indicates the stored credential was missing or rejected.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the backend.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Detail is the human-readable message. For 422 responses this is
	// always ValidationFailedDetail; otherwise it is the server-provided
	// detail field, falling back to a generic status message.
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// newAPIError maps a status code and raw body to an APIError.
func newAPIError(status int, body []byte) *APIError {
	if status == http.StatusUnprocessableEntity {
		return &APIError{Status: status, Detail: ValidationFailedDetail}
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &APIError{Status: status, Detail: payload.Detail}
	}
	return &APIError{Status: status, Detail: fmt.Sprintf("Error: %d", status)}
}

// =============================================================================
// CLIENT
// =============================================================================

// TokenSource supplies the bearer token for authenticated requests.
// Implementations return an error when no credential is available.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the onboarding backend.
type Client struct {
	baseURL string
	tokens  TokenSource

	// httpClient handles regular request/response calls.
	httpClient *http.Client
	// streamClient has no overall timeout; stream lifetime is bounded
	// by the caller's context instead.
	streamClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the non-streaming request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying non-streaming HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the given base URL. tokens may be nil
// for a client that only performs unauthenticated calls.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
		streamClient: &http.Client{
			// No Timeout: a chat stream legitimately stays open for
			// minutes. Cancellation comes from the request context.
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// requestOpts describes one API call.
type requestOpts struct {
	method string
	path   string
	query  url.Values
	// body is an already-encoded request body, may be nil
	body        io.Reader
	contentType string
	// skipAuth omits the Authorization header even when a token exists
	skipAuth bool
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// newRequest builds an *http.Request with auth and content headers set.
// A missing token is not an error: the header is simply omitted and the
// server answers 401 for protected endpoints.
func (c *Client) newRequest(ctx context.Context, o requestOpts) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, o.method, c.url(o.path, o.query), o.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if o.contentType != "" {
		req.Header.Set("Content-Type", o.contentType)
	}
	if !o.skipAuth && c.tokens != nil {
		if tok, err := c.tokens.Token(); err == nil && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// do executes a non-streaming request and decodes the JSON response into
// out (when out is non-nil). Non-2xx responses return *APIError.
func (c *Client) do(ctx context.Context, o requestOpts, out any) error {
	req, err := c.newRequest(ctx, o)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, body)
		logging.L().Debug("api error",
			zap.String("method", o.method),
			zap.String("path", o.path),
			zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getJSON performs a GET and decodes the response.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, requestOpts{method: http.MethodGet, path: path, query: query}, out)
}

// sendJSON performs a request with a JSON body.
func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, requestOpts{
		method:      method,
		path:        path,
		query:       query,
		body:        body,
		contentType: "application/json",
	}, out)
}

// postForm performs a POST with a form-urlencoded body.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, skipAuth bool, out any) error {
	return c.do(ctx, requestOpts{
		method:      http.MethodPost,
		path:        path,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		skipAuth:    skipAuth,
	}, out)
}
