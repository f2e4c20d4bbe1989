// Package rod provides a shelf.Fetcher that renders pages in headless Chrome,
// for source sites that build their listings with JavaScript.
package rod

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/shelf"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds one page render.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements shelf.Fetcher at compile time.
var _ shelf.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser      *browser
	timeout      time.Duration
	userAgent    string
	bin          string
	noSandbox    bool
	recycleAfter int
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for one page render.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent used when a source supplies none.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithRecycleAfter sets how many pages the browser renders before it is
// replaced by a fresh instance.
func WithRecycleAfter(n int) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// WithBin sets the Chrome or Chromium executable. When empty, rod looks up
// a local install and downloads one if none is found.
func WithBin(path string) Option {
	return func(f *Fetcher) {
		f.bin = path
	}
}

// WithNoSandbox disables the Chrome sandbox, which is required when running
// as root inside containers.
func WithNoSandbox(v bool) Option {
	return func(f *Fetcher) {
		f.noSandbox = v
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: shelf.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	b, err := newBrowser(f.bin, f.noSandbox, f.recycleAfter)
	if err != nil {
		return nil, err
	}
	f.browser = b
	return f, nil
}

// Fetch navigates to the URL with the given headers and returns the
// rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	if f.closed.Load() {
		return "", shelf.Errorf(shelf.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", shelf.Errorf(shelf.EFETCH, "fetch %s: %v", url, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	html, err := f.render(ctx, url, headers)
	if err != nil {
		return "", shelf.Errorf(shelf.EFETCH, "fetch %s: %v", url, err)
	}
	return html, nil
}

func (f *Fetcher) render(ctx context.Context, url string, headers map[string]string) (string, error) {
	b, release, err := f.browser.acquire()
	if err != nil {
		return "", err
	}
	defer release()

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	ua := f.userAgent
	var extra []string
	for k, v := range headers {
		if strings.EqualFold(k, "User-Agent") {
			ua = v
			continue
		}
		extra = append(extra, k, v)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
		return "", err
	}
	if len(extra) > 0 {
		cleanup, err := page.SetExtraHeaders(extra)
		if err != nil {
			return "", err
		}
		defer cleanup()
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	return page.HTML()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	f.browser.close()
	return nil
}
