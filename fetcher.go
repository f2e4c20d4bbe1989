package shelf

import "context"

// DefaultUserAgent identifies requests whose header set names no User-Agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves page bodies from source sites.
type Fetcher interface {
	// Fetch requests the URL with the given headers and returns the decoded
	// body. Implementations apply DefaultUserAgent when headers carry no
	// User-Agent. Non-success statuses and network failures return EFETCH.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string, headers map[string]string) (body string, err error)

	// Close releases transport resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
