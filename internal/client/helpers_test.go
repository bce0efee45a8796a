package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

// recordedRequest is a request seen by the fake controller.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Call returns "METHOD /path" for compact order assertions.
func (r recordedRequest) Call() string {
	return r.Method + " " + r.Path
}

// requestLog collects requests in arrival order.
type requestLog struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (l *requestLog) add(req recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.requests = append(l.requests, req)
}

func (l *requestLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	calls := make([]string, 0, len(l.requests))
	for _, req := range l.requests {
		calls = append(calls, req.Call())
	}

	return calls
}

func (l *requestLog) Requests() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]recordedRequest(nil), l.requests...)
}

func (l *requestLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.requests)
}

// newTestServer starts a fake controller that records every request before
// handing it to handler. The request body is available in the log and was
// already consumed.
func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []byte)) (*httptest.Server, *requestLog) {
	t.Helper()

	log := &requestLog{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		log.add(recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		handler(w, r, body)
	}))
	t.Cleanup(server.Close)

	return server, log
}

// newTestClient creates a client with a fast poll interval.
func newTestClient(t *testing.T, baseURL string, opts ...func(*aap.Config)) *Client {
	t.Helper()

	config := &aap.Config{
		BaseURL:      baseURL,
		Token:        testToken,
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  5 * time.Second,
	}

	for _, opt := range opts {
		opt(config)
	}

	client, err := New(config)
	require.NoError(t, err)

	return client
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func page(next interface{}, results ...interface{}) map[string]interface{} {
	if results == nil {
		results = []interface{}{}
	}

	return map[string]interface{}{
		"count":    len(results),
		"next":     next,
		"previous": nil,
		"results":  results,
	}
}

func decodeBody(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))

	return decoded
}

func decodeJSON(body []byte) map[string]interface{} {
	var decoded map[string]interface{}

	_ = json.Unmarshal(body, &decoded)

	return decoded
}
