package main

import (
	"context"
	"fmt"
	"regexp"

	"github.com/fwojciec/viking"
	"github.com/fwojciec/viking/crawl"
	"github.com/fwojciec/viking/fs"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls := c.URLs
	if c.Sitemap != "" {
		filter, err := compileFilter(c.Include, c.Exclude)
		if err != nil {
			return err
		}
		discovered, err := deps.Crawler.DiscoverPages(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			return err
		}
		fmt.Fprintf(deps.Stderr, "Found %d file pages in %s\n", len(discovered), c.Sitemap)
		urls = append(urls, discovered...)
	}

	if len(urls) == 0 {
		return viking.Errorf(viking.EINVALID, "no page URLs given. Pass URLs or --sitemap")
	}

	progress := func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "[%d/%d] %s: %d links\n", e.Completed, e.Total, e.URL, e.Links)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "[%d/%d] skip %s: %s\n", e.Completed, e.Total, e.URL, errorMessage(e.Error))
		}
	}

	crawler := deps.Crawler
	if c.Out != "" {
		mirrored := *deps.Crawler
		mirrored.Records = &mirroredRecords{
			RecordService: deps.Crawler.Records,
			Results:       deps.Results,
			Dir:           c.Out,
		}
		crawler = &mirrored
	}

	result, err := crawler.Run(deps.Ctx, urls, progress)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d results with %d links (%d unchanged, %d failed, %d duplicates)\n",
		result.Saved, result.Links, result.Unchanged, result.Failed, result.Skipped)
	return nil
}

// compileFilter builds the sitemap URL filter. Without include patterns only
// file pages are kept.
func compileFilter(include, exclude []string) (*viking.URLFilter, error) {
	filter := &viking.URLFilter{}
	for _, p := range include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, viking.Errorf(viking.EINVALID, "invalid include pattern %q: %v", p, err)
		}
		filter.Include = append(filter.Include, re)
	}
	if len(filter.Include) == 0 {
		filter.Include = []*regexp.Regexp{viking.FilePagePattern}
	}
	for _, p := range exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, viking.Errorf(viking.EINVALID, "invalid exclude pattern %q: %v", p, err)
		}
		filter.Exclude = append(filter.Exclude, re)
	}
	return filter, nil
}

// mirroredRecords writes every result to a JSON file in Dir before recording
// it. A page whose file cannot be written is not recorded, so the next run
// retries it instead of treating it as unchanged.
type mirroredRecords struct {
	viking.RecordService
	Results viking.ResultStore
	Dir     string
}

func (r *mirroredRecords) CreateRecord(ctx context.Context, rec *viking.Record) error {
	if err := r.Results.Save(ctx, fs.ResultPath(r.Dir, rec.Result), rec.Result); err != nil {
		return fmt.Errorf("writing result file: %w", err)
	}
	return r.RecordService.CreateRecord(ctx, rec)
}
