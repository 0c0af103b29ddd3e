package extract

import (
	"net/url"
	"strings"

	"github.com/fwojciec/viking"
)

// Classifier turns candidates into normalized download links.
type Classifier struct {
	rules   *viking.Rules
	quality *qualityMatcher
}

// NewClassifier creates a new Classifier using the given rules.
func NewClassifier(rules *viking.Rules) *Classifier {
	return &Classifier{
		rules:   rules,
		quality: newQualityMatcher(rules.Quality),
	}
}

// Classify normalizes the candidate URL and attaches the source label and
// any quality, file type and file size hints.
// The bool result is false if the URL cannot be normalized; the caller
// should drop the candidate.
func (c *Classifier) Classify(candidate viking.CandidateLink) (viking.DownloadLink, bool) {
	normalized, err := NormalizeURL(candidate.URL)
	if err != nil {
		return viking.DownloadLink{}, false
	}

	link := viking.DownloadLink{
		URL:    normalized,
		Source: c.source(normalized, candidate.Strategy),
	}

	if quality, ok := c.findQuality(candidate.Text, normalized); ok {
		link.Quality = viking.String(quality)
	}
	if ext, ok := mediaExtension(c.rules, normalized); ok {
		link.FileType = viking.String(ext)
	}
	if size, ok := findSize(candidate.Text); ok {
		link.FileSize = viking.String(size)
	}

	return link, true
}

// ClassifyAll classifies candidates in order, dropping the ones whose URL
// cannot be normalized.
func (c *Classifier) ClassifyAll(candidates []viking.CandidateLink) []viking.DownloadLink {
	links := make([]viking.DownloadLink, 0, len(candidates))
	for _, candidate := range candidates {
		if link, ok := c.Classify(candidate); ok {
			links = append(links, link)
		}
	}
	return links
}

func (c *Classifier) source(normalized string, strategy viking.Strategy) string {
	if label, ok := viking.MatchHostPattern(c.rules.HostPatterns, normalized); ok {
		return label
	}
	if strategy == viking.StrategyDirectMedia {
		return viking.SourceDirect
	}
	return viking.SourceUnknown
}

// findQuality searches the surrounding text first, then the URL path.
func (c *Classifier) findQuality(text, normalized string) (string, bool) {
	if q, ok := c.quality.find(text); ok {
		return q, true
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", false
	}
	return c.quality.find(u.Path)
}

// NormalizeURL returns the identity form of an absolute URL: scheme and host
// lower-cased, fragment removed, trailing slashes on the path removed.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", viking.Errorf(viking.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", viking.Errorf(viking.EINVALID, "URL %q is not absolute", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")

	return u.String(), nil
}
