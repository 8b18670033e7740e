// Package client is the typed HTTP client the admin console uses to talk to
// brewdeckd. Errors are normalized once at this boundary; callers branch on
// status, never on raw transport failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultTimeout bounds every request; there is no per-call override.
const defaultTimeout = 15 * time.Second

// Error is the normalized failure shape for every transport and HTTP error.
type Error struct {
	Code    string            // Stable machine code, e.g. "conflict".
	Message string            // Fixed human-readable message.
	Status  int               // HTTP status, 0 for transport failures.
	Details map[string]string // Field violations from problem responses.
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// statusCode maps an HTTP status to a stable error code.
func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "unprocessable"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusInternalServerError:
		return "server_error"
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "temporary_outage"
	default:
		return "unexpected"
	}
}

// statusMessage maps an HTTP status to its fixed user-facing message.
func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request was invalid."
	case http.StatusUnauthorized:
		return "You are not signed in."
	case http.StatusForbidden:
		return "You do not have permission to do that."
	case http.StatusNotFound:
		return "The requested item was not found."
	case http.StatusConflict:
		return "The item was changed by someone else."
	case http.StatusUnprocessableEntity:
		return "The request could not be processed."
	case http.StatusTooManyRequests:
		return "Too many requests. Slow down."
	case http.StatusInternalServerError:
		return "The server hit an internal error."
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "The service is temporarily unavailable."
	default:
		return "Something unexpected went wrong."
	}
}

// retryable reports whether a GET should be retried: transport failures
// (no status) and server errors other than 501.
func retryable(status int) bool {
	if status == 0 {
		return true
	}
	return status >= 500 && status != http.StatusNotImplemented
}

// Client issues REST calls against a brewdeckd base URL.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: defaultTimeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RetryConfig tunes Get's server-error retry. Zero values disable retry.
type RetryConfig struct {
	Retry      int           // Additional attempts after the first.
	RetryDelay time.Duration // Base delay; attempt n waits n times this.
}

// Get issues a GET and decodes the JSON response into out. On a transport
// failure or 5xx (excluding 501) it retries per cfg with linear backoff.
func (c *Client) Get(ctx context.Context, path string, out any, cfg RetryConfig) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		err := c.do(ctx, http.MethodGet, path, nil, out, 0)
		if err == nil {
			return nil
		}
		lastErr = err

		apiErr, ok := err.(*Error)
		if !ok || !retryable(apiErr.Status) || attempt >= cfg.Retry {
			return lastErr
		}

		delay := cfg.RetryDelay * time.Duration(attempt+1)
		c.logger.Debug("retrying request",
			zap.String("path", path), zap.Int("attempt", attempt+1), zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, 0)
}

// Put issues a version-guarded PUT. The version travels in If-Match.
func (c *Client) Put(ctx context.Context, path string, version int, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out, version)
}

// Patch issues a version-guarded PATCH.
func (c *Client) Patch(ctx context.Context, path string, version int, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out, version)
}

// Delete issues a DELETE. The response body is discarded.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, 0)
}

// do performs one request/response cycle and normalizes every failure into
// *Error. A version > 0 or a PUT/PATCH with version 0 still sets If-Match;
// versions start at zero on create.
func (c *Client) do(ctx context.Context, method, path string, body, out any, version int) error {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return &Error{Code: "encode", Message: "Failed to encode request body."}
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return &Error{Code: "request", Message: "Failed to build request."}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("If-Match", strconv.Itoa(version))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Code: "network", Message: "Could not reach the server.", Status: 0}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return normalizeHTTPError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Code: "decode", Message: "Failed to decode server response.", Status: resp.StatusCode}
		}
	}
	return nil
}

// problemBody is the subset of an RFC 7807 response the client uses.
type problemBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}

// normalizeHTTPError turns an error response into *Error, folding in field
// violations when the body is a problem document.
func normalizeHTTPError(resp *http.Response) *Error {
	e := &Error{
		Code:    statusCode(resp.StatusCode),
		Message: statusMessage(resp.StatusCode),
		Status:  resp.StatusCode,
	}

	var problem problemBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&problem); err == nil {
		e.Details = problem.Errors
	}
	return e
}
