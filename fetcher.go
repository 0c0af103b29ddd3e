package viking

import "context"

// Fetcher retrieves the raw HTML of a file page.
// Fetching sits outside extraction; the extractor never touches the network.
type Fetcher interface {
	// Fetch returns the HTML served at url.
	// Returns ENOTFOUND if the page does not exist.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-host rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}
