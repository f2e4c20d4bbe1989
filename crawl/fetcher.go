// Package crawl provides polite fetching for source sites: per-host rate
// limiting and retry with backoff around any shelf.Fetcher.
package crawl

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/fwojciec/shelf"
)

// Ensure Fetcher implements shelf.Fetcher at compile time.
var _ shelf.Fetcher = (*Fetcher)(nil)

// Fetcher wraps a shelf.Fetcher. Each attempt waits for the target host's
// rate limiter; failed attempts are retried on the Backoff schedule.
type Fetcher struct {
	Fetcher     shelf.Fetcher
	RateLimiter shelf.DomainLimiter

	// Backoff is the retry schedule. Nil means a single attempt.
	Backoff Backoff

	// Logger receives retry notices. Nil disables them.
	Logger *slog.Logger
}

// Fetch implements shelf.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, headers map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", shelf.Errorf(shelf.EFETCH, "invalid URL %q: %v", rawURL, err)
	}

	fetchFn := func(ctx context.Context, target string, headers map[string]string) (string, error) {
		if f.RateLimiter != nil {
			if err := f.RateLimiter.Wait(ctx, u.Host); err != nil {
				return "", err
			}
		}
		return f.Fetcher.Fetch(ctx, target, headers)
	}

	var logFn LogFunc
	if f.Logger != nil {
		logFn = f.Logger.Warn
	}

	return f.Backoff.Retry(ctx, rawURL, headers, fetchFn, logFn)
}

// Close closes the wrapped fetcher.
func (f *Fetcher) Close() error {
	return f.Fetcher.Close()
}
