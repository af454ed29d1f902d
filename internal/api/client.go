// Package api provides the single shared HTTP client for the library API.
// Every outgoing request carries the stored bearer token when one exists;
// every 401 response clears the token store before the failure propagates.
// That pair of hooks is the only place session attachment and invalidation
// happen, so every caller benefits without duplicating logic.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bookhaven/shelfctl/internal/errors"
)

// TokenStore is the slice of the token store the client needs: read on
// every request, clear on authorization failure.
type TokenStore interface {
	Get() (string, error)
	Clear() error
}

// Client is the shared HTTP client for the library API.
type Client struct {
	baseURL string
	hc      *http.Client
	tokens  TokenStore
	logger  *slog.Logger
}

// Options holds configuration for the API client.
type Options struct {
	// BaseURL is the API base address including path prefix (required).
	BaseURL string
	// Tokens is the token store consulted per request (required).
	Tokens TokenStore
	// Timeout bounds each request. Zero falls back to 30s.
	Timeout time.Duration
	// HTTPClient is optional; when set, Timeout is ignored.
	HTTPClient *http.Client
	// Logger is optional.
	Logger *slog.Logger
}

// NewClient builds the shared API client. Callers should pass a sanitized
// config.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base URL is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token store is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: baseURL,
		hc:      hc,
		tokens:  opts.Tokens,
		logger:  logger,
	}, nil
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with optional query parameters and JSON body.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, query, body, out)
}

// PostForm issues a POST request with a multipart form body.
func (c *Client) PostForm(ctx context.Context, path string, form *Form, out any) error {
	contentType, body, err := form.encode()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode form")
	}
	return c.do(ctx, http.MethodPost, path, nil, contentType, body, out)
}

// PutForm issues a PUT request with a multipart form body.
func (c *Client) PutForm(ctx context.Context, path string, form *Form, out any) error {
	contentType, body, err := form.encode()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode form")
	}
	return c.do(ctx, http.MethodPut, path, nil, contentType, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, contentType, reader, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.attachToken(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		// The one global side effect: a server-invalidated session clears
		// the shared store so every process converges. The failure itself
		// propagates to the caller unchanged.
		if clearErr := c.tokens.Clear(); clearErr != nil {
			c.logger.Warn("clear token after 401", "error", clearErr)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeErrorResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode response")
	}
	return nil
}

// attachToken reads the token store and attaches the bearer credential
// when a session exists. A store read failure downgrades the request to
// anonymous; the server rejects it if credentials were required.
func (c *Client) attachToken(req *http.Request) {
	token, err := c.tokens.Get()
	if err != nil {
		c.logger.Warn("read token store", "error", err)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func classifyTransportError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "request canceled")
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "request failed")
	}
}

// errorBody is the shape the API uses for failure payloads.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// decodeErrorResponse turns a non-2xx response into a structured failure
// carrying the server's status and message when one can be extracted.
func decodeErrorResponse(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apperrors.API(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var payload errorBody
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return apperrors.API(resp.StatusCode, payload.Message)
		}
		if payload.Error != "" {
			return apperrors.API(resp.StatusCode, payload.Error)
		}
	}

	if msg := strings.TrimSpace(string(raw)); msg != "" && !strings.HasPrefix(msg, "{") && !strings.HasPrefix(msg, "<") {
		return apperrors.API(resp.StatusCode, msg)
	}
	return apperrors.API(resp.StatusCode, http.StatusText(resp.StatusCode))
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// BaseURL returns the configured base address, mainly for diagnostics.
func (c *Client) BaseURL() string { return c.baseURL }

var _ fmt.Stringer = (*Client)(nil)

// String implements fmt.Stringer without exposing credentials.
func (c *Client) String() string { return "api.Client(" + c.baseURL + ")" }
