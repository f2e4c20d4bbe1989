package crawl

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/shelf"
	"golang.org/x/time/rate"
)

var _ shelf.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter keeps one token bucket per source host so a search fanning
// out across many sources never hammers any single site. Hosts are compared
// case-insensitively, without port and without a leading "www.".
// A non-positive rate disables limiting for that host.
type DomainLimiter struct {
	rps       float64
	burst     int
	overrides map[string]float64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithBurst allows n requests to a host back to back before pacing starts.
func WithBurst(n int) LimiterOption {
	return func(d *DomainLimiter) {
		d.burst = max(n, 1)
	}
}

// WithHostRates sets per-host rates that replace the default rate.
func WithHostRates(rates map[string]float64) LimiterOption {
	return func(d *DomainLimiter) {
		for host, rps := range rates {
			d.overrides[hostKey(host)] = rps
		}
	}
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		rps:       rps,
		burst:     1,
		overrides: make(map[string]float64),
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until a request to host is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	limiter := d.limiter(hostKey(host))
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

func (d *DomainLimiter) limiter(key string) *rate.Limiter {
	rps := d.rps
	if v, ok := d.overrides[key]; ok {
		rps = v
	}
	if rps <= 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(rps), d.burst)
		d.limiters[key] = l
	}
	return l
}

func hostKey(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}
