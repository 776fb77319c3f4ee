// Package fetch provides a rate-limited HTTP page fetcher.
//
// A [Fetcher] owns a shared interval gate: every call to [Fetcher.Fetch]
// waits on the same [rate.Limiter] before issuing its request, so N
// sequential fetches are spaced at least 1/requests-per-second apart. The
// limiter is safe for concurrent use, which lets callers run several
// fetch workers against one gate without re-introducing a mutable
// "last request time" global.
//
// Each request carries a randomized User-Agent header, follows at most
// ten redirects, and caps the response body at [MaxBodySize] bytes with a
// context-aware read.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"golang.org/x/time/rate"

	"github.com/pagesift/pagesift/internal/utils"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultRequestsPerSecond is the default outbound request rate.
	DefaultRequestsPerSecond = 2.0
	// MaxBodySize is the maximum response body size (10MB).
	MaxBodySize = 10 * 1024 * 1024
	// DialTimeout is the maximum time to wait for a TCP connection.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the maximum time to wait for TLS handshake.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is the maximum time to wait for response headers.
	ResponseHeaderTimeout = 10 * time.Second
	// IdleConnTimeout is the maximum time an idle connection can be reused.
	IdleConnTimeout = 90 * time.Second
)

// Fetcher issues rate-limited GET requests for web pages.
type Fetcher struct {
	limiter   *rate.Limiter
	client    *http.Client
	userAgent func() string
}

// Option configures a [Fetcher].
type Option func(*Fetcher)

// WithRequestsPerSecond sets the shared rate gate. Non-positive values
// leave the default of [DefaultRequestsPerSecond] in place.
func WithRequestsPerSecond(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithUserAgentFunc replaces the per-request User-Agent source. The
// default draws a random real-browser agent for every request.
func WithUserAgentFunc(fn func() string) Option {
	return func(f *Fetcher) {
		if fn != nil {
			f.userAgent = fn
		}
	}
}

// New returns a [Fetcher] with the default rate, timeout, and transport
// configuration.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		limiter:   rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		userAgent: uarand.GetRandom,
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   TLSHandshakeTimeout,
				ResponseHeaderTimeout: ResponseHeaderTimeout,
				IdleConnTimeout:       IdleConnTimeout,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				ForceAttemptHTTP2:     true,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (>10)")
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the page at rawURL and returns its body as text.
//
// It first waits on the shared rate gate, then issues a single GET with a
// randomized User-Agent. Partial URLs (e.g. "example.com") are normalised
// by prepending "https://". The body is capped at [MaxBodySize] bytes and
// read in a goroutine so context cancellation is honoured even during
// slow reads.
//
// Fetch returns an error when the URL is empty, the rate wait or request
// is cancelled, the status code is outside the 2xx range, or the body
// exceeds [MaxBodySize]. Callers decide whether a failure aborts the run
// or only drops the page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return "", fmt.Errorf("fetch: URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("fetch: rate limit wait: %w", err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, f.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxWithTimeout.Err() != nil {
			return "", fmt.Errorf("fetch: request timeout or canceled: %w", err)
		}
		return "", fmt.Errorf("fetch: failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch: unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, MaxBodySize)

	type readResult struct {
		data []byte
		err  error
	}

	readChan := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(limitedReader)
		readChan <- readResult{data: data, err: err}
	}()

	var body []byte
	select {
	case <-ctxWithTimeout.Done():
		return "", fmt.Errorf("fetch: timeout while reading response body: %w", ctxWithTimeout.Err())
	case result := <-readChan:
		if result.err != nil {
			return "", fmt.Errorf("fetch: failed to read response body: %w", result.err)
		}
		body = result.data
	}

	if len(body) == MaxBodySize {
		return "", fmt.Errorf("fetch: response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	return string(body), nil
}
