package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/viking"
	"golang.org/x/time/rate"
)

var _ viking.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out requests to each host with its own token bucket.
// Pages from different hosts are fetched without waiting on each other.
type DomainLimiter struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithBurst lets up to n requests to a host through back to back.
// Defaults to 1.
func WithBurst(n int) LimiterOption {
	return func(d *DomainLimiter) {
		d.burst = n
	}
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		limit: rate.Limit(rps),
		burst: 1,
		hosts: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until a request to host is allowed.
// Returns an error if the context is canceled first.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.limiter(host).Wait(ctx)
}

func (d *DomainLimiter) limiter(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.hosts[host]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.hosts[host] = l
	}
	return l
}
