package viking

import (
	"context"
	"regexp"
	"slices"
)

// SitemapService lists file page URLs published in a site's sitemaps.
type SitemapService interface {
	// DiscoverPages returns the page URLs listed by the sitemap at siteURL.
	// A siteURL ending in ".xml" is read as a sitemap directly; otherwise
	// robots.txt Sitemap directives are consulted, then /sitemap.xml.
	// Sitemap indexes are resolved recursively.
	//
	// If filter is nil, all URLs are returned.
	DiscoverPages(ctx context.Context, siteURL string, filter *URLFilter) ([]string, error)
}

// FilePagePattern matches the path shape of viking file pages.
var FilePagePattern = regexp.MustCompile(`/(?:f|file|d)/[A-Za-z0-9_-]+/?$`)

// URLFilter selects discovered page URLs by regular expression.
type URLFilter struct {
	// Include keeps only URLs matching at least one pattern. Empty keeps all.
	Include []*regexp.Regexp

	// Exclude drops URLs matching any pattern, after Include.
	Exclude []*regexp.Regexp
}

// Match reports whether url passes the filter. A nil filter passes all URLs.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	matches := func(re *regexp.Regexp) bool { return re.MatchString(url) }
	if len(f.Include) > 0 && !slices.ContainsFunc(f.Include, matches) {
		return false
	}
	return !slices.ContainsFunc(f.Exclude, matches)
}
