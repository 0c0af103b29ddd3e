package slog

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/viking"
)

// Ensure LoggingSitemapService implements viking.SitemapService.
var _ viking.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   viking.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next viking.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverPages asks the wrapped service for every page and applies filter
// here, so the log records how many discovered pages the filter rejected.
func (s *LoggingSitemapService) DiscoverPages(ctx context.Context, siteURL string, filter *viking.URLFilter) (urls []string, err error) {
	found := 0
	defer func(begin time.Time) {
		attrs := []any{"url", siteURL, "found", found, "pages", len(urls)}
		if filter != nil {
			attrs = append(attrs,
				"include", joinPatterns(filter.Include),
				"exclude", joinPatterns(filter.Exclude),
				"rejected", found-len(urls),
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Info("sitemap discovery", attrs...)
	}(time.Now())

	all, err := s.next.DiscoverPages(ctx, siteURL, nil)
	if err != nil {
		return nil, err
	}
	found = len(all)

	urls = make([]string, 0, len(all))
	for _, u := range all {
		if filter.Match(u) {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func joinPatterns(res []*regexp.Regexp) string {
	parts := make([]string, len(res))
	for i, re := range res {
		parts[i] = re.String()
	}
	return strings.Join(parts, ",")
}
