// Package extract implements the download-link extraction engine: candidate
// discovery, classification, deduplication and page metadata.
// It depends only on the viking element abstraction, never on a parser.
package extract

import (
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/viking"
)

// linkAttributes carry navigable links, in preference order.
var linkAttributes = []string{"href", "data-href", "data-url", "data-link", "data-download"}

// sourceAttributes carry links or embedded resources, in preference order.
var sourceAttributes = append(append([]string{}, linkAttributes...), "src", "data-src")

// downloadToken marks an element as a download affordance.
const downloadToken = "download"

// Discoverer finds candidate download links in a document.
// It does not classify or deduplicate; that happens later so that all
// duplicates can be seen together.
type Discoverer struct {
	rules *viking.Rules
}

// NewDiscoverer creates a new Discoverer using the given rules.
func NewDiscoverer(rules *viking.Rules) *Discoverer {
	return &Discoverer{rules: rules}
}

// Discover runs the affordance, known-host and direct-media strategies over
// doc and concatenates their candidates in that order.
// Relative URLs are resolved against base; links that cannot be resolved
// are skipped individually.
func (d *Discoverer) Discover(doc viking.Document, base *url.URL) []viking.CandidateLink {
	elements := doc.Elements()

	var candidates []viking.CandidateLink
	candidates = append(candidates, d.discoverAffordances(elements, base)...)
	candidates = append(candidates, d.discoverKnownHosts(elements, base)...)
	candidates = append(candidates, d.discoverDirectMedia(elements, base)...)
	return candidates
}

// discoverAffordances emits one candidate per element whose text or any
// attribute value mentions "download".
func (d *Discoverer) discoverAffordances(elements []viking.Element, base *url.URL) []viking.CandidateLink {
	var candidates []viking.CandidateLink
	for _, el := range elements {
		attrs := el.Attributes()
		resolved, ok := firstLink(attrs, sourceAttributes, base)
		if !ok {
			continue
		}

		text := surroundingText(el, attrs)
		if !containsFold(text, downloadToken) && !anyAttributeContains(attrs, downloadToken) {
			continue
		}

		candidates = append(candidates, viking.CandidateLink{
			URL:      resolved,
			Text:     text,
			Strategy: viking.StrategyAffordance,
		})
	}
	return candidates
}

// discoverKnownHosts emits a candidate for every link attribute that points
// at a known host. Hosts are matched on the URL without its fragment, the
// same form the classifier labels.
func (d *Discoverer) discoverKnownHosts(elements []viking.Element, base *url.URL) []viking.CandidateLink {
	var candidates []viking.CandidateLink
	for _, el := range elements {
		attrs := el.Attributes()
		for _, name := range linkAttributes {
			resolved, ok := resolveAttr(attrs, name, base)
			if !ok {
				continue
			}
			// Links back into the page's own site are navigation unless they
			// lead to another file page.
			if isSameHost(base, resolved) && !isFilePage(resolved) {
				continue
			}
			normalized, err := NormalizeURL(resolved)
			if err != nil {
				continue
			}
			if _, ok := viking.MatchHostPattern(d.rules.HostPatterns, normalized); !ok {
				continue
			}
			candidates = append(candidates, viking.CandidateLink{
				URL:      resolved,
				Text:     surroundingText(el, attrs),
				Strategy: viking.StrategyKnownHost,
			})
		}
	}
	return candidates
}

// discoverDirectMedia emits a candidate for every link or source attribute
// whose path ends in a media extension.
func (d *Discoverer) discoverDirectMedia(elements []viking.Element, base *url.URL) []viking.CandidateLink {
	var candidates []viking.CandidateLink
	for _, el := range elements {
		attrs := el.Attributes()
		for _, name := range sourceAttributes {
			resolved, ok := resolveAttr(attrs, name, base)
			if !ok {
				continue
			}
			if _, ok := mediaExtension(d.rules, resolved); !ok {
				continue
			}
			candidates = append(candidates, viking.CandidateLink{
				URL:      resolved,
				Text:     surroundingText(el, attrs),
				Strategy: viking.StrategyDirectMedia,
			})
		}
	}
	return candidates
}

// firstLink returns the first attribute from names that resolves to a URL.
func firstLink(attrs []viking.Attribute, names []string, base *url.URL) (string, bool) {
	for _, name := range names {
		if resolved, ok := resolveAttr(attrs, name, base); ok {
			return resolved, true
		}
	}
	return "", false
}

func resolveAttr(attrs []viking.Attribute, name string, base *url.URL) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			resolved := resolveURL(base, a.Value)
			return resolved, resolved != ""
		}
	}
	return "", false
}

// resolveURL resolves href against base.
// Returns empty string if the href is empty, not an HTTP link, cannot be
// parsed, or points back at the page itself.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	withoutFragment := *resolved
	withoutFragment.Fragment = ""
	withoutFragment.RawFragment = ""
	pageWithoutFragment := *base
	pageWithoutFragment.Fragment = ""
	pageWithoutFragment.RawFragment = ""
	if withoutFragment.String() == pageWithoutFragment.String() {
		return ""
	}

	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "magnet:")
}

func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, base.Host)
}

func isFilePage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return viking.FilePagePattern.MatchString(u.Path)
}

// mediaExtension returns the lower-cased media extension of rawURL's path.
func mediaExtension(rules *viking.Rules, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if !rules.IsMediaExtension(ext) {
		return "", false
	}
	return ext, true
}

// surroundingText returns the element's visible text with whitespace
// collapsed, falling back to its title or aria-label.
func surroundingText(el viking.Element, attrs []viking.Attribute) string {
	if text := collapseSpace(el.Text()); text != "" {
		return text
	}
	for _, a := range attrs {
		if a.Name == "title" || a.Name == "aria-label" {
			if text := collapseSpace(a.Value); text != "" {
				return text
			}
		}
	}
	return ""
}

func anyAttributeContains(attrs []viking.Attribute, token string) bool {
	for _, a := range attrs {
		if containsFold(a.Value, token) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
