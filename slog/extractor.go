package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/viking"
)

// Ensure LoggingExtractor implements viking.Extractor.
var _ viking.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor logs each extraction with its link count.
type LoggingExtractor struct {
	next   viking.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next viking.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the page URL, the
// number of links found and any error.
func (e *LoggingExtractor) Extract(html, pageURL string) (result *viking.ExtractionResult, err error) {
	defer func(begin time.Time) {
		links := 0
		if result != nil {
			links = len(result.DownloadLinks)
		}
		e.logger.Info("extract",
			"url", pageURL,
			"links", links,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html, pageURL)
}
