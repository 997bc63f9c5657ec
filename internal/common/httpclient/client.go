package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"codearena/pkg/utils/contextkey"
	"codearena/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// ResponseInfo carries response details.
type ResponseInfo struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports a 2xx status.
func (r ResponseInfo) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StreamResponse is an open response whose body the caller must close.
type StreamResponse struct {
	StatusCode int
	Headers    http.Header
	Body       io.ReadCloser
}

// OK reports a 2xx status.
func (r *StreamResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client wraps JSON requests against the platform API.
type Client struct {
	mu        sync.RWMutex
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
}

// Option customises a Client.
type Option func(*Client)

// WithTransport replaces the default transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   timeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()
}

func (c *Client) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.mu.Lock()
		c.timeout = timeout
		c.mu.Unlock()
	}
}

// Do sends a request and reads the whole response body.
func (c *Client) Do(ctx context.Context, method, path string, headers map[string]string, body []byte) (ResponseInfo, error) {
	var info ResponseInfo
	client := &http.Client{Timeout: c.Timeout(), Transport: c.transport}

	req, err := c.newRequest(ctx, method, path, headers, body)
	if err != nil {
		return info, err
	}

	start := time.Now()
	resp, err := client.Do(req)
	info.Duration = time.Since(start)
	if err != nil {
		return info, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	info.StatusCode = resp.StatusCode
	info.Headers = resp.Header
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return info, fmt.Errorf("read response body failed: %w", err)
	}
	info.Body = bodyBytes

	logger.Debug(ctx, "api request finished",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", info.StatusCode),
		zap.Duration("duration", info.Duration),
	)
	return info, nil
}

// PostJSON marshals payload and POSTs it.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) (ResponseInfo, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ResponseInfo{}, fmt.Errorf("marshal request failed: %w", err)
	}
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// OpenStream POSTs payload and returns the response without reading its body.
// No client-side timeout applies: the body may stream for as long as the server keeps it open.
func (c *Client) OpenStream(ctx context.Context, path string, payload interface{}) (*StreamResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Transport: c.transport}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	logger.Debug(ctx, "api stream opened",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       resp.Body,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, headers map[string]string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, requestID(ctx))
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return req, nil
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextkey.RequestID).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
