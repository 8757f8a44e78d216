package apicaller_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/apicaller/pkg/apicaller"
)

// fakeAPI serves canned responses by request URI and counts hits. Bodies may
// contain {{base}}, replaced with the server URL.
type fakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]fakeRoute
	hits     map[string]int
	requests []*http.Request
	bodies   []string
}

type fakeRoute struct {
	status int
	body   string
}

func newFakeAPI(t *testing.T, routes map[string]fakeRoute) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		routes: routes,
		hits:   make(map[string]int),
	}

	api.server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.server.Close)

	return api
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	key := r.Method + " " + r.URL.RequestURI()
	f.hits[key]++
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(body))
	route, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not found"}`))

		return
	}

	status := route.status
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(strings.ReplaceAll(route.body, "{{base}}", f.server.URL)))
}

func (f *fakeAPI) URL() string {
	return f.server.URL
}

// Hits returns how many times "METHOD /uri" was requested.
func (f *fakeAPI) Hits(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[key]
}

// Total returns the number of requests received.
func (f *fakeAPI) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func (f *fakeAPI) LastRequest() (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.requests) == 0 {
		return nil, ""
	}

	return f.requests[len(f.requests)-1], f.bodies[len(f.bodies)-1]
}

// testConfig returns a config with its own limiter so tests do not wait on
// the process-wide one.
func testConfig(baseURL string) *apicaller.Config {
	return &apicaller.Config{
		BaseURL: baseURL,
		Limiter: apicaller.NewLimiter(0, nil),
	}
}
