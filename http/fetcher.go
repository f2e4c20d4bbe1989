// Package http provides an HTTP-based implementation of shelf.Fetcher
// for source sites that serve their pages without JavaScript rendering.
package http

import (
	"context"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/shelf"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// maxBodySize caps the bytes read from one response.
const maxBodySize = 16 << 20

// Ensure Fetcher implements shelf.Fetcher at compile time.
var _ shelf.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages with plain HTTP GET requests. Bodies are decoded
// to UTF-8 using the charset declared by the response or the document.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent sent when a source supplies none.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: shelf.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the page at url with the given headers.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", shelf.Errorf(shelf.EFETCH, "invalid request for %s: %v", url, err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", shelf.Errorf(shelf.EFETCH, "request %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", shelf.Errorf(shelf.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", shelf.Errorf(shelf.EFETCH, "read %s: %v", url, err)
	}
	if len(body) == 0 {
		return "", nil
	}

	enc, name, certain := charset.DetermineEncoding(body, resp.Header.Get("Content-Type"))
	// The guess only sniffs the first 1KB; undeclared pages that are valid
	// UTF-8 throughout are kept as they are.
	if !certain && name == "windows-1252" && utf8.Valid(body) {
		return string(body), nil
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", shelf.Errorf(shelf.EFETCH, "decode %s: %v", url, err)
	}

	return string(decoded), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
