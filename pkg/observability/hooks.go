// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about HTTP fetches and bulk aggregation runs.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetHTTPHooks(&myHTTPHooks{})
//	    observability.SetRunHooks(&myRunHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// HTTPHooks receives events from the resilient fetcher.
type HTTPHooks interface {
	// OnAttempt records one outgoing fetch attempt (1-based).
	OnAttempt(ctx context.Context, method, url string, attempt int)

	// OnResponse records a completed fetch, successful or not.
	OnResponse(ctx context.Context, method, url string, statusCode int, duration time.Duration)

	// OnError records a fetch error (network failure, exhausted retries).
	OnError(ctx context.Context, method, url string, err error)
}

// RunHooks receives events from bulk aggregation runs.
type RunHooks interface {
	// OnItemStart records the start of one identity's pipeline.
	OnItemStart(ctx context.Context, runID, name string)

	// OnItemComplete records completion of one identity, failed or not.
	OnItemComplete(ctx context.Context, runID, name string, completed, total int, err error)

	// OnRunComplete records the end of a whole run.
	OnRunComplete(ctx context.Context, runID string, total, failed int, duration time.Duration)
}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnAttempt(context.Context, string, string, int)                  {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// NoopRunHooks is a no-op implementation of RunHooks.
type NoopRunHooks struct{}

func (NoopRunHooks) OnItemStart(context.Context, string, string)                     {}
func (NoopRunHooks) OnItemComplete(context.Context, string, string, int, int, error) {}
func (NoopRunHooks) OnRunComplete(context.Context, string, int, int, time.Duration)  {}

var (
	httpHooks HTTPHooks = NoopHTTPHooks{}
	runHooks  RunHooks  = NoopRunHooks{}
	hooksMu   sync.RWMutex
)

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any fetches.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetRunHooks registers custom run hooks.
// This should be called once at application startup before any runs.
func SetRunHooks(h RunHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		runHooks = h
	}
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Run returns the registered run hooks.
func Run() RunHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return runHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	httpHooks = NoopHTTPHooks{}
	runHooks = NoopRunHooks{}
}
