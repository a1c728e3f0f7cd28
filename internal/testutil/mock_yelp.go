// Package testutil provides testing utilities for the business-search client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// SearchPath is the path the mock serves business search on.
const SearchPath = "/v3/businesses/search"

// MockResponse defines one scripted response of the mock server.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is what the mock saw for one request.
type RecordedRequest struct {
	Query  url.Values
	Header http.Header
}

// MockYelp is a scripted business-search server.
// Responses are served in order; once the script is exhausted every further
// request receives an empty page.
type MockYelp struct {
	server *httptest.Server

	mu        sync.Mutex
	responses []MockResponse
	requests  []RecordedRequest
}

// NewMockYelp creates and starts a new mock server.
func NewMockYelp() *MockYelp {
	mock := &MockYelp{}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the search endpoint URL of the mock.
func (m *MockYelp) URL() string {
	return m.server.URL + SearchPath
}

// Close shuts down the mock server.
func (m *MockYelp) Close() {
	m.server.Close()
}

// Enqueue appends responses to the script.
func (m *MockYelp) Enqueue(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// Requests returns a copy of all requests received so far.
func (m *MockYelp) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests received.
func (m *MockYelp) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Offsets returns the offset parameter of every request, in order.
func (m *MockYelp) Offsets() []string {
	reqs := m.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Query.Get("offset")
	}
	return out
}

func (m *MockYelp) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != SearchPath {
		http.NotFound(w, r)
		return
	}

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	})
	resp := NewPageResponse(0, 0)
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// Business is the subset of a provider business entry the mock emits.
type Business struct {
	Name     *string   `json:"name,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Location is the nested location object of a business entry.
type Location struct {
	DisplayAddress []string `json:"display_address,omitempty"`
}

// NamedBusiness returns a business with a name and address lines.
func NamedBusiness(name string, address ...string) Business {
	b := Business{Name: &name}
	if len(address) > 0 {
		b.Location = &Location{DisplayAddress: address}
	}
	return b
}

// NewBusinessesResponse creates a 200 OK page containing businesses.
func NewBusinessesResponse(total int, businesses ...Business) MockResponse {
	if businesses == nil {
		businesses = []Business{}
	}
	body, err := json.Marshal(struct {
		Businesses []Business `json:"businesses"`
		Total      int        `json:"total"`
	}{businesses, total})
	if err != nil {
		panic(err)
	}

	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type":         "application/json",
			"RateLimit-DailyLimit": "5000",
			"RateLimit-Remaining":  "4999",
			"RateLimit-ResetTime":  time.Now().Add(12 * time.Hour).UTC().Format(time.RFC3339),
		},
	}
}

// NewPageResponse creates a 200 OK page of n generated businesses numbered
// from start.
func NewPageResponse(start, n int) MockResponse {
	businesses := make([]Business, 0, n)
	for i := start; i < start+n; i++ {
		businesses = append(businesses, NamedBusiness(
			fmt.Sprintf("Restaurant %d", i),
			fmt.Sprintf("%d Queen St W", 100+i),
			"Toronto, ON M5H 2N2",
		))
	}
	return NewBusinessesResponse(start+n, businesses...)
}

// NewErrorResponse creates a non-success response with a provider error body.
func NewErrorResponse(status int, code, description string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"error": {"code": %q, "description": %q}}`, code, description),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewRateLimitResponse creates a 429 response with an exhausted quota.
func NewRateLimitResponse() MockResponse {
	resp := NewErrorResponse(http.StatusTooManyRequests, "TOO_MANY_REQUESTS_PER_SECOND", "You have exceeded the queries-per-second limit for this endpoint.")
	resp.Headers["RateLimit-DailyLimit"] = "5000"
	resp.Headers["RateLimit-Remaining"] = "0"
	resp.Headers["RateLimit-ResetTime"] = time.Now().Add(6 * time.Hour).UTC().Format(time.RFC3339)
	return resp
}

// NewRawResponse creates a 200 OK response with an arbitrary body.
func NewRawResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
