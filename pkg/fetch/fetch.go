// Package fetch implements a resilient HTTP client for scraping package
// registries.
//
// Every request is paced with a randomized delay, presents a fresh client
// identity, and retries transient failures with a linearly growing backoff.
// Requests can optionally be routed through a headless-browser renderer for
// endpoints that block plain HTTP clients.
package fetch

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pypilens/pypilens/pkg/errors"
	"github.com/pypilens/pypilens/pkg/identity"
	"github.com/pypilens/pypilens/pkg/observability"
)

// RetryPolicy controls how transient failures are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is multiplied by the attempt number after each failure,
	// so waits grow linearly: base, 2*base, 3*base, ...
	BaseDelay time.Duration

	// RetryableStatus is the set of HTTP status codes treated as transient.
	RetryableStatus map[int]bool
}

// DefaultRetryPolicy matches the behavior most registry endpoints tolerate:
// three attempts with a one-second base delay, retrying rate limits and
// server-side errors only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		RetryableStatus: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

// backoff returns the wait after a failed attempt (1-based).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

// Options configure a single request.
type Options struct {
	// Method defaults to GET.
	Method string

	// Body is the request payload, if any.
	Body []byte

	// Headers are merged over the identity profile's headers.
	Headers map[string]string

	// Browser routes the request through the configured renderer. If no
	// renderer is configured the request takes the plain HTTP path.
	Browser bool
}

// Fetcher performs paced, retried HTTP requests with rotating identities.
type Fetcher struct {
	client        *http.Client
	pool          *identity.Pool
	renderer      Renderer
	renderTimeout time.Duration
	pauseMin      time.Duration
	pauseMax      time.Duration
	policy        RetryPolicy
	logger        *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithPool sets the identity pool used to vary request fingerprints.
func WithPool(p *identity.Pool) FetcherOption {
	return func(f *Fetcher) { f.pool = p }
}

// WithRenderer enables the headless-browser fallback.
func WithRenderer(r Renderer) FetcherOption {
	return func(f *Fetcher) { f.renderer = r }
}

// WithRenderTimeout bounds a single browser render.
func WithRenderTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.renderTimeout = d }
}

// WithPause sets the randomized delay applied before every attempt.
func WithPause(min, max time.Duration) FetcherOption {
	return func(f *Fetcher) { f.pauseMin, f.pauseMax = min, max }
}

// WithRetryPolicy overrides the default retry behavior.
func WithRetryPolicy(p RetryPolicy) FetcherOption {
	return func(f *Fetcher) { f.policy = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a fetcher with sensible defaults: a 30-second HTTP
// client, a full identity pool, a 0.5 to 2 second pacing window, and the
// default retry policy.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:        &http.Client{Timeout: 30 * time.Second},
		pool:          identity.NewPool(),
		renderTimeout: 60 * time.Second,
		pauseMin:      500 * time.Millisecond,
		pauseMax:      2 * time.Second,
		policy:        DefaultRetryPolicy(),
		logger:        log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a paced, retried request and returns the buffered response.
//
// Status codes below 400 are successes. Codes in the retryable set and
// transport-level failures are retried up to the policy's attempt budget,
// then surface as *UnreachableError. Any other failure status returns an
// *HTTPError immediately without retrying.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts Options) (*Response, error) {
	if opts.Browser && f.renderer != nil {
		return f.fetchRendered(ctx, url)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	attempts := f.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := f.pause(ctx); err != nil {
			return nil, err
		}

		observability.HTTP().OnAttempt(ctx, method, url, attempt)
		resp, err := f.do(ctx, method, url, opts)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var httpErr *HTTPError
		if stderrors.As(err, &httpErr) {
			observability.HTTP().OnError(ctx, method, url, err)
			return nil, errors.Wrap(errors.ErrCodeFatalHTTP, err, "request failed for %s", url)
		}

		lastErr = err
		f.logger.Debug("retrying after transient failure",
			"url", url, "attempt", attempt, "err", err)

		if attempt < attempts {
			if err := sleepCtx(ctx, f.policy.backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}

	unreachable := &UnreachableError{URL: url, Attempts: attempts, Err: lastErr}
	observability.HTTP().OnError(ctx, method, url, unreachable)
	return nil, errors.Wrap(errors.ErrCodeTransientNetwork, unreachable, "retries exhausted for %s", url)
}

// do performs one attempt with a freshly drawn identity.
func (f *Fetcher) do(ctx context.Context, method, url string, opts Options) (*Response, error) {
	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "building request for %s", url)
	}

	profile := f.pool.Next()
	req.Header.Set("User-Agent", profile.UserAgent)
	for k, v := range profile.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport failure: %w", err)
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, method, url, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode < http.StatusBadRequest:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		return &Response{Status: resp.StatusCode, Body: data}, nil

	case f.policy.RetryableStatus[resp.StatusCode]:
		return nil, fmt.Errorf("transient status %d", resp.StatusCode)

	default:
		return nil, &HTTPError{URL: url, Status: resp.StatusCode}
	}
}

// fetchRendered routes the request through the browser renderer. Rendered
// documents are reported as status 200 since the engine hides the real code.
func (f *Fetcher) fetchRendered(ctx context.Context, url string) (*Response, error) {
	if err := f.pause(ctx); err != nil {
		return nil, err
	}

	rctx, cancel := context.WithTimeout(ctx, f.renderTimeout)
	defer cancel()

	f.logger.Debug("rendering via browser", "url", url)
	html, err := f.renderer.Render(rctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFallbackUnavailable, err)
	}
	return &Response{Status: http.StatusOK, Body: []byte(html)}, nil
}

// pause sleeps for a random duration inside the configured pacing window.
func (f *Fetcher) pause(ctx context.Context) error {
	if f.pauseMax <= 0 {
		return nil
	}
	d := f.pauseMin
	if f.pauseMax > f.pauseMin {
		d += rand.N(f.pauseMax - f.pauseMin)
	}
	return sleepCtx(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
