package extract

import (
	"regexp"
	"strings"
)

// sizePattern matches a number followed by a byte-size unit. Comma-grouped
// thousands are tried before a single decimal comma.
var sizePattern = regexp.MustCompile(`(?i)\b(?:\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?)\s*[KMGT]i?B\b`)

// datePattern matches the date shapes seen on file pages: ISO dates with an
// optional time, numeric day/month/year, and dates with month names.
var datePattern = regexp.MustCompile(`(?i)` +
	`\b\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?)?` +
	`|\b\d{1,2}[/.]\d{1,2}[/.]\d{4}\b` +
	`|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.? \d{1,2},? \d{4}\b` +
	`|\b\d{1,2} (?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,? \d{4}\b`)

// findSize returns the first size expression in text with whitespace collapsed.
func findSize(text string) (string, bool) {
	m := sizePattern.FindString(text)
	if m == "" {
		return "", false
	}
	return collapseSpace(m), true
}

// qualityMatcher finds the first quality marker from a fixed vocabulary.
type qualityMatcher struct {
	re        *regexp.Regexp
	canonical map[string]string
}

func newQualityMatcher(vocabulary []string) *qualityMatcher {
	m := &qualityMatcher{canonical: make(map[string]string, len(vocabulary))}

	alternatives := make([]string, 0, len(vocabulary))
	for _, token := range vocabulary {
		key := strings.ToLower(token)
		if _, ok := m.canonical[key]; ok {
			continue
		}
		m.canonical[key] = token
		alternatives = append(alternatives, regexp.QuoteMeta(token))
	}
	if len(alternatives) == 0 {
		return m
	}

	// Tokens must stand alone: "720p" matches in "Movie.720p.mkv" but not in "x720pz".
	m.re = regexp.MustCompile(`(?i)(?:^|[^0-9a-z])(` + strings.Join(alternatives, "|") + `)(?:[^0-9a-z]|$)`)
	return m
}

// find returns the canonical spelling of the leftmost marker in s.
func (m *qualityMatcher) find(s string) (string, bool) {
	if m.re == nil || s == "" {
		return "", false
	}
	match := m.re.FindStringSubmatch(s)
	if match == nil {
		return "", false
	}
	return m.canonical[strings.ToLower(match[1])], true
}
