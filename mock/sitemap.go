package mock

import (
	"context"

	"github.com/fwojciec/viking"
)

var _ viking.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of viking.SitemapService.
type SitemapService struct {
	DiscoverPagesFn func(ctx context.Context, siteURL string, filter *viking.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverPages(ctx context.Context, siteURL string, filter *viking.URLFilter) ([]string, error) {
	return s.DiscoverPagesFn(ctx, siteURL, filter)
}
