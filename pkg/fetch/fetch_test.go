package fetch

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pypilens/pypilens/pkg/errors"
)

// fastPolicy keeps tests quick while preserving the attempt budget.
func fastPolicy(attempts int) RetryPolicy {
	p := DefaultRetryPolicy()
	p.MaxAttempts = attempts
	p.BaseDelay = time.Millisecond
	return p
}

func newTestFetcher(opts ...FetcherOption) *Fetcher {
	base := []FetcherOption{
		WithPause(0, 0),
		WithRetryPolicy(fastPolicy(3)),
	}
	return NewFetcher(append(base, opts...)...)
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"requests"}`))
	}))
	defer server.Close()

	resp, err := newTestFetcher().Fetch(context.Background(), server.URL, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.Status)
	}

	var doc struct {
		Name string `json:"name"`
	}
	if err := resp.JSON(&doc); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if doc.Name != "requests" {
		t.Errorf("expected name requests, got %q", doc.Name)
	}
}

func TestRetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newTestFetcher().Fetch(context.Background(), server.URL, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("expected ok, got %q", resp.Text())
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestExhaustedRetriesAreUnreachable(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeTransientNetwork) {
		t.Errorf("expected TRANSIENT_NETWORK code, got %v", err)
	}

	var unreachable *UnreachableError
	if !stderrors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableError, got %T", err)
	}
	if unreachable.Attempts != 3 {
		t.Errorf("expected 3 attempts recorded, got %d", unreachable.Attempts)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestFatalStatusDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeFatalHTTP) {
		t.Errorf("expected FATAL_HTTP code, got %v", err)
	}

	var httpErr *HTTPError
	if !stderrors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", httpErr.Status)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected exactly 1 request, got %d", got)
	}
}

func TestBackoffGrowsLinearly(t *testing.T) {
	p := RetryPolicy{BaseDelay: 250 * time.Millisecond}
	prev := time.Duration(0)
	for attempt := 1; attempt <= 4; attempt++ {
		d := p.backoff(attempt)
		if d <= prev {
			t.Errorf("backoff(%d) = %v, not greater than %v", attempt, d, prev)
		}
		if want := p.BaseDelay * time.Duration(attempt); d != want {
			t.Errorf("backoff(%d) = %v, want %v", attempt, d, want)
		}
		prev = d
	}
}

func TestIdentityHeadersApplied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		if r.Header.Get("Referer") == "" {
			t.Error("missing Referer")
		}
		if r.Header.Get("X-Extra") != "yes" {
			t.Error("per-request header not applied")
		}
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL, Options{
		Headers: map[string]string{"X-Extra": "yes"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type stubRenderer struct {
	html string
	err  error
}

func (r *stubRenderer) Render(ctx context.Context, url string) (string, error) {
	return r.html, r.err
}

func TestBrowserRoutesThroughRenderer(t *testing.T) {
	f := newTestFetcher(WithRenderer(&stubRenderer{html: "<html>rendered</html>"}))

	resp, err := f.Fetch(context.Background(), "https://pypi.org/project/requests/", Options{Browser: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.Status)
	}
	if resp.Text() != "<html>rendered</html>" {
		t.Errorf("unexpected body: %q", resp.Text())
	}
}

func TestRendererFailureIsFallbackUnavailable(t *testing.T) {
	f := newTestFetcher(WithRenderer(&stubRenderer{err: stderrors.New("browser crashed")}))

	_, err := f.Fetch(context.Background(), "https://pypi.org/project/requests/", Options{Browser: true})
	if !stderrors.Is(err, ErrFallbackUnavailable) {
		t.Errorf("expected ErrFallbackUnavailable, got %v", err)
	}
}

func TestBrowserWithoutRendererUsesHTTP(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("plain"))
	}))
	defer server.Close()

	resp, err := newTestFetcher().Fetch(context.Background(), server.URL, Options{Browser: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "plain" {
		t.Errorf("unexpected body: %q", resp.Text())
	}
	if hits.Load() != 1 {
		t.Errorf("expected plain HTTP request, got %d hits", hits.Load())
	}
}

func TestCancellationStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	policy := fastPolicy(3)
	policy.BaseDelay = 10 * time.Second
	f := NewFetcher(WithPause(0, 0), WithRetryPolicy(policy))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, server.URL, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("fetch did not honor cancellation during backoff")
	}
}
