// Package httputil holds the JSON response helpers used by the HTTP handlers
// and an HTTP client abstraction for code that fetches from the viewer.
package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPClient abstracts HTTP operations for testability.
// Use StandardClient in production and MockHTTPClient in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewStandardClient returns an *http.Client with the given timeout.
func NewStandardClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// GetBytes issues a GET for url and returns at most MaxBodyBytes of a 2xx
// response body.
func GetBytes(ctx context.Context, c HTTPClient, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", url, err)
	}
	if len(b) > MaxBodyBytes {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, MaxBodyBytes)
	}
	return b, nil
}

// MockResponse defines a canned HTTP response for testing.
type MockResponse struct {
	StatusCode int
	Body       string
	Error      error
}

// MockHTTPClient returns queued responses in order and records requests.
// Once the queue is exhausted it answers 200 with an empty body.
type MockHTTPClient struct {
	mu        sync.Mutex
	requests  []*http.Request
	responses []MockResponse
	next      int
}

// NewMockHTTPClient creates a new mock HTTP client.
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{}
}

// AddResponse queues a response.
func (m *MockHTTPClient) AddResponse(statusCode int, body string) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, MockResponse{StatusCode: statusCode, Body: body})
	return m
}

// AddErrorResponse queues a transport error.
func (m *MockHTTPClient) AddErrorResponse(err error) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, MockResponse{Error: err})
	return m
}

// Do records the request and returns the next queued response.
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	resp := MockResponse{StatusCode: http.StatusOK}
	if m.next < len(m.responses) {
		resp = m.responses[m.next]
		m.next++
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &http.Response{
		StatusCode: resp.StatusCode,
		Body:       io.NopCloser(bytes.NewBufferString(resp.Body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// Request returns the nth recorded request, or nil.
func (m *MockHTTPClient) Request(n int) *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= len(m.requests) {
		return nil
	}
	return m.requests[n]
}

// RequestCount returns the number of recorded requests.
func (m *MockHTTPClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
