// Package client calls the /api/completion endpoint and renders its replies.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/observability"
)

// DefaultPath is the completion endpoint path.
const DefaultPath = "/api/completion"

const maxErrorBody = 8 * 1024

// Response is a completion reply as seen by the client. Absent fields are nil.
type Response struct {
	GeneratedText *string  `json:"generated_text"`
	Duration      *float64 `json:"duration"`
}

// Client posts completion requests to a quill server.
type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPath overrides the endpoint path.
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       DefaultPath,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends one completion request and decodes the reply.
func (c *Client) Complete(ctx context.Context, req *domain.CompletionRequest) (*Response, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if requestID := observability.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-Id", requestID)
	}

	observability.FromContext(ctx).Debug("sending completion request",
		observability.String("url", httpReq.URL.String()),
		observability.Int("response_length", req.ResponseLength),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var out Response
	if err := readJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func readJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: http status %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}
