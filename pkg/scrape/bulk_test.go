package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pypilens/pypilens/pkg/fetch"
	"github.com/pypilens/pypilens/pkg/record"
)

// bulkUpstream serves a minimal index document for any package name and
// fails the configured names with a server error.
func bulkUpstream(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 3 || parts[0] != "pypi" || parts[2] != "json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		name := parts[1]
		if failing[name] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"info":{"name":%q,"version":"1.0.0","summary":"pkg %s"},"releases":{"1.0.0":[]}}`, name, name)
	}))
	t.Cleanup(server.Close)
	return server
}

func bulkAggregator(server *httptest.Server, opts ...AggregatorOption) *Aggregator {
	policy := fetch.DefaultRetryPolicy()
	policy.MaxAttempts = 1
	f := fetch.NewFetcher(
		fetch.WithPause(0, 0),
		fetch.WithRetryPolicy(policy),
	)
	base := []AggregatorOption{WithEndpoints(Endpoints{
		Index:   server.URL + "/pypi",
		Project: server.URL + "/project",
		User:    server.URL + "/user",
		Stats:   server.URL + "/stats",
	})}
	return NewAggregator(f, append(base, opts...)...)
}

func TestOrchestratorAlwaysYieldsAllRecords(t *testing.T) {
	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("pkg-%02d", i)
	}
	failing := map[string]bool{"pkg-07": true, "pkg-13": true}
	server := bulkUpstream(t, failing)
	orch := NewOrchestrator(bulkAggregator(server))

	var mu sync.Mutex
	progress := 0
	results := orch.Run(context.Background(), names, 5, func(completed, total int, name string, err error) {
		mu.Lock()
		progress++
		mu.Unlock()
		if total != 20 {
			t.Errorf("total = %d", total)
		}
	})

	if len(results) != 20 {
		t.Fatalf("got %d records, want 20", len(results))
	}
	if progress != 20 {
		t.Errorf("progress fired %d times, want 20", progress)
	}
	for i, rec := range results {
		if rec == nil {
			t.Fatalf("record %d is nil", i)
		}
		if rec.Name != names[i] {
			t.Errorf("record %d out of order: %q", i, rec.Name)
		}
		if failing[rec.Name] {
			if rec.Error == "" {
				t.Errorf("failed package %s has no error", rec.Name)
			}
			if rec.Version != record.VersionUnresolved {
				t.Errorf("failed package %s has version %q", rec.Name, rec.Version)
			}
			continue
		}
		if rec.Error != "" {
			t.Errorf("package %s unexpectedly failed: %s", rec.Name, rec.Error)
		}
		if rec.Version != "1.0.0" {
			t.Errorf("package %s version = %q", rec.Name, rec.Version)
		}
	}
}

// panickingAnalyzer blows up for one package to exercise fault isolation.
type panickingAnalyzer struct{ target string }

func (p *panickingAnalyzer) Analyze(_ context.Context, name, _ string) (*record.SourceAnalysis, error) {
	if name == p.target {
		panic("analyzer exploded")
	}
	return &record.SourceAnalysis{FileCount: 1}, nil
}

func TestOrchestratorIsolatesPanics(t *testing.T) {
	names := []string{"alpha", "beta", "gamma"}
	server := bulkUpstream(t, nil)
	agg := bulkAggregator(server, WithSourceAnalyzer(&panickingAnalyzer{target: "beta"}))
	orch := NewOrchestrator(agg)

	results := orch.Run(context.Background(), names, 2, nil)

	if len(results) != 3 {
		t.Fatalf("got %d records, want 3", len(results))
	}
	if results[1].Error == "" {
		t.Error("panicking item should yield an error record")
	}
	for _, i := range []int{0, 2} {
		if results[i].Error != "" {
			t.Errorf("sibling %s affected by panic: %s", results[i].Name, results[i].Error)
		}
		if results[i].SourceAnalysis == nil {
			t.Errorf("sibling %s missing source analysis", results[i].Name)
		}
	}
}

func TestOrchestratorCancelledContext(t *testing.T) {
	server := bulkUpstream(t, nil)
	orch := NewOrchestrator(bulkAggregator(server))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := orch.Run(ctx, []string{"one", "two", "three"}, 2, nil)
	if len(results) != 3 {
		t.Fatalf("got %d records, want 3", len(results))
	}
	for _, rec := range results {
		if rec.Error == "" {
			t.Errorf("record %s should be marked cancelled", rec.Name)
		}
	}
}

func TestOrchestratorDefaultConcurrency(t *testing.T) {
	server := bulkUpstream(t, nil)
	orch := NewOrchestrator(bulkAggregator(server))

	results := orch.Run(context.Background(), []string{"solo"}, 0, nil)
	if len(results) != 1 || results[0].Error != "" {
		t.Fatalf("unexpected results: %+v", results)
	}
}
