// Package httpclient provides the HTTP client shared by the status provider,
// display platform and delegate integrations.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is used when a client is created with a zero timeout
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps the number of bytes read from a response body
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent is sent with every request
	UserAgent = "statusbot/1.0"
)

// Client performs HTTP requests and returns the response body
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/mcstatusbot/statusbot/internal/httpclient Client
type Client interface {
	// Get issues a GET request and returns the body of a 2xx response.
	// Any other status is returned as an *HTTPError.
	Get(ctx context.Context, url string) ([]byte, error)

	// Do issues an arbitrary request. The response is returned whatever its
	// status code so callers can classify failures themselves.
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Request describes an outgoing request
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is 2xx
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DefaultClient is the net/http backed Client
type DefaultClient struct {
	client *http.Client
}

// NewDefaultClient creates a client with the given timeout
func NewDefaultClient(timeout time.Duration) *DefaultClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DefaultClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get issues a GET request
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, NewHTTPError(resp.StatusCode, url, http.StatusText(resp.StatusCode))
	}
	return resp.Body, nil
}

// Do issues a request and reads the full response body
func (c *DefaultClient) Do(ctx context.Context, r *Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range r.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %.2f MB",
			resp.ContentLength, float64(MaxResponseSize)/(1024*1024))
	}

	// Read one byte past the limit to detect oversized bodies without a Content-Length
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds maximum allowed size of %.2f MB",
			float64(MaxResponseSize)/(1024*1024))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
