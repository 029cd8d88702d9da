// Package client issues JSON requests against the storefront REST API and
// normalizes every failure into a *models.APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/isdelr/storefront/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	Token() string
}

// Response is the normalized shape of a successful call.
type Response struct {
	Status  int
	Message string
}

// Client handles communication with the storefront API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. nil keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. It applies to a copy so a
// shared client passed through WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client. tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope picks the fields the client cares about out of any JSON body.
type envelope struct {
	Message string              `json:"message"`
	Detail  string              `json:"detail"`
	Errors  map[string][]string `json:"errors"`
}

// Request performs method on endpoint. body is JSON-encoded when non-nil and
// a successful response body is decoded into out when out is non-nil.
func (c *Client) Request(ctx context.Context, method, endpoint string, body, out any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, models.NewAPIError(http.StatusBadRequest, fmt.Sprintf("failed to encode request body: %v", err), nil)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, models.NewNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("Request failed without a response")
		return nil, models.NewNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewNetworkError(err)
	}
	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API request")

	var env envelope
	parsed := len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &env) == nil

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = env.Detail
		}
		if !parsed {
			env.Errors = nil
		}
		return nil, models.NewAPIError(resp.StatusCode, msg, env.Errors)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, models.NewAPIError(http.StatusInternalServerError, fmt.Sprintf("failed to decode response: %v", err), nil)
		}
	}
	return &Response{Status: resp.StatusCode, Message: env.Message}, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, out any) (*Response, error) {
	return c.Request(ctx, http.MethodGet, endpoint, nil, out)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any) (*Response, error) {
	return c.Request(ctx, http.MethodPost, endpoint, body, out)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, endpoint string, body, out any) (*Response, error) {
	return c.Request(ctx, http.MethodPut, endpoint, body, out)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, endpoint string, body, out any) (*Response, error) {
	return c.Request(ctx, http.MethodPatch, endpoint, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, out any) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, endpoint, nil, out)
}
