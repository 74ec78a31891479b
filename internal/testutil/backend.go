package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is one call observed by a Backend.
type Request struct {
	Method        string
	Path          string
	Query         map[string]string
	Authorization string
	Body          string
}

// Reply is a canned backend response.
type Reply struct {
	Status int
	Body   string
}

// JSONReply marshals v into a 200 reply.
func JSONReply(t *testing.T, v any) Reply {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return Reply{Status: http.StatusOK, Body: string(b)}
}

// Backend is a fake storefront API that records every request it receives.
// Routes are keyed by "METHOD /path"; unknown routes answer 404.
type Backend struct {
	URL string

	mu       sync.Mutex
	routes   map[string]Reply
	requests []Request
}

// NewBackend starts a fake backend closed via t.Cleanup.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]Reply{}}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// Handle sets the reply for method and path.
func (b *Backend) Handle(method, path string, r Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = r
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many requests hit method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	q := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			q[k] = v[0]
		}
	}
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         q,
		Authorization: r.Header.Get("Authorization"),
		Body:          string(body),
	})
	reply, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if reply.Body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}
