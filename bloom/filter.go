// Package bloom tracks the file pages a batch has already visited.
package bloom

import (
	"net/url"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// PageSet remembers page URLs in bounded memory. Visit may report a new page
// as visited, but never the reverse.
type PageSet struct {
	f *bloom.BloomFilter
}

// NewPageSet returns a set sized for n expected pages at the given false
// positive rate.
func NewPageSet(n uint, fpRate float64) *PageSet {
	return &PageSet{f: bloom.NewWithEstimates(n, fpRate)}
}

// Visit records pageURL and reports whether it was already present.
func (s *PageSet) Visit(pageURL string) bool {
	return s.f.TestAndAddString(pageKey(pageURL))
}

// pageKey maps URLs that address the same file page to one key. The fragment
// and a trailing slash are dropped and the host is lowercased.
func pageKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	return u.String()
}
