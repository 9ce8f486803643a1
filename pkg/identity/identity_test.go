package identity

import (
	"strings"
	"sync"
	"testing"
)

func TestNextReturnsCompleteProfile(t *testing.T) {
	pool := NewPool()
	for range 50 {
		p := pool.Next()
		if p.UserAgent == "" {
			t.Fatal("empty user agent")
		}
		if p.Headers["Accept"] == "" {
			t.Fatal("missing Accept header")
		}
		if p.Headers["Referer"] == "" {
			t.Fatal("missing Referer header")
		}
	}
}

func TestProfileConsistency(t *testing.T) {
	pool := NewPool()
	for range 200 {
		p := pool.Next()
		_, hasHints := p.Headers["Sec-CH-UA"]
		isChromium := strings.Contains(p.UserAgent, "Chrome/")
		if hasHints && !isChromium {
			t.Fatalf("non-Chromium profile carries client hints: %s", p.UserAgent)
		}
		if isChromium && !hasHints {
			t.Fatalf("Chromium profile missing client hints: %s", p.UserAgent)
		}
		if strings.Contains(p.UserAgent, "Firefox/") && p.Headers["TE"] != "trailers" {
			t.Fatalf("Firefox profile missing TE header: %s", p.UserAgent)
		}
	}
}

func TestNextVariesProfiles(t *testing.T) {
	pool := NewPool()
	seen := make(map[string]bool)
	for range 100 {
		seen[pool.Next().UserAgent] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected varied user agents, got %d distinct", len(seen))
	}
}

func TestFallbackToCuratedList(t *testing.T) {
	pool := NewPool(WithoutRotation())
	for range 20 {
		p := pool.Next()
		if p.UserAgent == "" {
			t.Fatal("curated fallback returned empty profile")
		}
	}
}

func TestHeadersAreCopied(t *testing.T) {
	pool := NewPool(WithoutRotation())
	a := pool.Next()
	a.Headers["Accept"] = "mutated"

	// Draw until we get a profile with the same user agent; its headers
	// must be unaffected by the mutation above.
	for range 100 {
		b := pool.Next()
		if b.UserAgent == a.UserAgent {
			if b.Headers["Accept"] == "mutated" {
				t.Fatal("profile headers shared between calls")
			}
			return
		}
	}
}

func TestConcurrentNext(t *testing.T) {
	pool := NewPool()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if pool.Next().UserAgent == "" {
					t.Error("empty profile under concurrency")
					return
				}
			}
		}()
	}
	wg.Wait()
}
