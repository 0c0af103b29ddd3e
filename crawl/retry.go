package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/viking"
)

// FetchFunc fetches the markup of one page.
type FetchFunc func(ctx context.Context, url string) (string, error)

// LogFunc receives a line for every retried fetch.
type LogFunc func(format string, args ...any)

// Backoff lists the waits between fetch attempts. A page is fetched at most
// len(b)+1 times; an empty Backoff fetches once.
type Backoff []time.Duration

// DefaultBackoff waits 1s, 2s and then 4s.
func DefaultBackoff() Backoff {
	return Backoff{time.Second, 2 * time.Second, 4 * time.Second}
}

// Fetch calls fetch until it succeeds, the error is permanent or the waits
// run out. Missing pages and invalid URLs are permanent. The last error is
// returned, or the context error if ctx ends while waiting.
func (b Backoff) Fetch(ctx context.Context, url string, fetch FetchFunc, log LogFunc) (string, error) {
	for attempt := 0; ; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		if attempt == len(b) || isPermanent(err) {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		if log != nil {
			log("retry %s (attempt %d of %d): %v", url, attempt+2, len(b)+1, err)
		}

		timer := time.NewTimer(b[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func isPermanent(err error) bool {
	switch viking.ErrorCode(err) {
	case viking.ENOTFOUND, viking.EINVALID:
		return true
	}
	return false
}
