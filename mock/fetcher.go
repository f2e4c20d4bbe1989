package mock

import (
	"context"

	"github.com/fwojciec/shelf"
)

var _ shelf.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of shelf.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, headers map[string]string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	return f.FetchFn(ctx, url, headers)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ shelf.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of shelf.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
