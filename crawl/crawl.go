// Package crawl runs extraction over many file pages. It coordinates
// sitemap discovery, rate-limited fetching, extraction, and storage of
// results in the history.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/fwojciec/viking"
	"github.com/fwojciec/viking/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages processed at once when
// Crawler.Concurrency is not set. File hosts throttle aggressive clients.
const DefaultConcurrency = 3

// Bloom filter sizing for page deduplication.
const (
	dedupeExpectedURLs      = 10000
	dedupeFalsePositiveRate = 0.001
)

// Crawler extracts download links from many pages and records the results.
type Crawler struct {
	Sitemaps    viking.SitemapService
	Fetcher     viking.Fetcher
	Extractor   viking.Extractor
	Records     viking.RecordService
	RateLimiter viking.DomainLimiter
	Concurrency int

	// Backoff spaces out fetch retries. Nil selects DefaultBackoff.
	Backoff Backoff

	// OnRetry, if set, is told about every retried fetch.
	OnRetry LogFunc
}

// Result holds the outcome of a batch run.
type Result struct {
	Saved     int
	Unchanged int
	Failed    int
	Skipped   int
	Links     int
}

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Links     int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
// It is always called from a single goroutine.
type ProgressFunc func(event ProgressEvent)

// pageResult holds the outcome of processing a single page.
type pageResult struct {
	position int
	url      string
	record   *viking.Record
	err      error
}

// DiscoverPages lists the file pages published in the sitemaps of siteURL.
func (c *Crawler) DiscoverPages(ctx context.Context, siteURL string, filter *viking.URLFilter) ([]string, error) {
	urls, err := c.Sitemaps.DiscoverPages(ctx, siteURL, filter)
	if err != nil {
		return nil, fmt.Errorf("sitemap discovery: %w", err)
	}
	return urls, nil
}

// ExtractPage fetches a single page and extracts its download links.
// The returned record carries the page markup and is not yet stored.
func (c *Crawler) ExtractPage(ctx context.Context, pageURL string) (*viking.Record, error) {
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() {
		return nil, viking.Errorf(viking.EINVALID, "invalid page URL %q", pageURL)
	}

	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	backoff := c.Backoff
	if backoff == nil {
		backoff = DefaultBackoff()
	}
	html, err := backoff.Fetch(ctx, pageURL, c.Fetcher.Fetch, c.OnRetry)
	if err != nil {
		return nil, err
	}

	result, err := c.Extractor.Extract(html, pageURL)
	if err != nil {
		return nil, err
	}

	return &viking.Record{HTML: html, Result: result}, nil
}

// Run extracts every page in urls and records the results in input order.
// Repeated URLs, including ones differing only by fragment, are skipped.
// A page whose markup is unchanged since its last record counts as
// unchanged rather than failed. Errors for individual pages are reported
// through progress; Run only fails if the context is canceled.
func (c *Crawler) Run(ctx context.Context, urls []string, progress ProgressFunc) (*Result, error) {
	var result Result

	seen := bloom.NewPageSet(max(uint(len(urls)), dedupeExpectedURLs), dedupeFalsePositiveRate)
	pages := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen.Visit(u) {
			result.Skipped++
			continue
		}
		pages = append(pages, u)
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan pageResult, len(pages))

	var completed atomic.Int64
	total := len(pages)

	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: total,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, pageURL := range pages {
			g.Go(func() error {
				rec, err := c.ExtractPage(gctx, pageURL)
				resultCh <- pageResult{position: i, url: pageURL, record: rec, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]pageResult, len(pages))
	for r := range resultCh {
		completed.Add(1)
		results[r.position] = r

		event := ProgressEvent{
			Type:      ProgressCompleted,
			Completed: int(completed.Load()),
			Total:     total,
			URL:       r.url,
		}
		if r.err != nil {
			event.Type = ProgressFailed
			event.Error = r.err
		} else {
			event.Links = len(r.record.Result.DownloadLinks)
		}
		if progress != nil {
			progress(event)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.err != nil {
			result.Failed++
			continue
		}

		if err := c.Records.CreateRecord(ctx, r.record); err != nil {
			if viking.ErrorCode(err) == viking.ECONFLICT {
				result.Unchanged++
				continue
			}
			result.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: total,
					Total:     total,
					URL:       r.url,
					Error:     fmt.Errorf("saving record: %w", err),
				})
			}
			continue
		}

		result.Saved++
		result.Links += len(r.record.Result.DownloadLinks)
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: total,
			Total:     total,
		})
	}

	return &result, nil
}
