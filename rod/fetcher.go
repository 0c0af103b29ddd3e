// Package rod implements viking.Fetcher with a headless Chrome browser for
// file pages that only reveal their download buttons after scripts run.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/viking"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout is the default time allowed for loading one page.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxPages is the number of pages rendered before the browser is
// relaunched.
const DefaultMaxPages = 75

// Ensure Fetcher implements viking.Fetcher at compile time.
var _ viking.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered page markup using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser  *browser
	timeout  time.Duration
	settle   time.Duration
	maxPages int
	closed   atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the time allowed for loading one page.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettle waits until the DOM has not changed for d after the page has
// loaded. Hosts that show download buttons after a countdown need this.
func WithSettle(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// WithMaxPages sets the number of pages rendered before the browser is
// relaunched. Zero disables recycling.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	b, err := launchBrowser(f.maxPages)
	if err != nil {
		return nil, err
	}
	f.browser = b

	return f, nil
}

// Fetch navigates to the URL and returns the rendered markup.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", viking.Errorf(viking.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	b, release, err := f.browser.acquire()
	if err != nil {
		return "", viking.Errorf(viking.EINVALID, "fetcher is closed")
	}
	defer release()

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	if f.settle > 0 {
		if err := page.WaitStable(f.settle); err != nil {
			return "", err
		}
	}

	return page.HTML()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.browser.close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.browser.pid()
}

// Processes returns the number of browser processes still running, counting
// replaced ones that have pages open. Used by tests to check recycling.
func (f *Fetcher) Processes() int {
	return f.browser.processes()
}
