package viking

import "strings"

// HostPattern maps a URL substring or domain fragment to a source label.
// Patterns are matched case-insensitively against the whole URL.
type HostPattern struct {
	Pattern string `json:"pattern" yaml:"pattern" toml:"pattern"`
	Label   string `json:"label" yaml:"label" toml:"label"`
}

// Match reports whether rawURL contains the pattern.
func (p HostPattern) Match(rawURL string) bool {
	return p.Pattern != "" && strings.Contains(strings.ToLower(rawURL), strings.ToLower(p.Pattern))
}

// DefaultHostPatterns returns the built-in host table.
// Order matters: the first matching pattern wins, so specific fragments
// precede generic ones.
func DefaultHostPatterns() []HostPattern {
	return []HostPattern{
		{Pattern: "drive.usercontent.google", Label: "drive.google"},
		{Pattern: "drive.google", Label: "drive.google"},
		{Pattern: "docs.google.com", Label: "drive.google"},
		{Pattern: "pixeldrain", Label: "pixeldrain"},
		{Pattern: "gdtot", Label: "gdtot"},
		{Pattern: "gdflix", Label: "gdflix"},
		{Pattern: "hubcloud", Label: "hubcloud"},
		{Pattern: "hubdrive", Label: "hubdrive"},
		{Pattern: "filepress", Label: "filepress"},
		{Pattern: "gofile.io", Label: "gofile"},
		{Pattern: "mega.nz", Label: "mega"},
		{Pattern: "mediafire", Label: "mediafire"},
		{Pattern: "1fichier", Label: "1fichier"},
		{Pattern: "streamtape", Label: "streamtape"},
		{Pattern: "dood", Label: "doodstream"},
		{Pattern: "terabox", Label: "terabox"},
		{Pattern: "viking", Label: SourceViking},
	}
}

// MatchHostPattern returns the label of the first pattern matching rawURL.
// The bool result is false if no pattern matches.
func MatchHostPattern(patterns []HostPattern, rawURL string) (string, bool) {
	for _, p := range patterns {
		if p.Match(rawURL) {
			return p.Label, true
		}
	}
	return "", false
}
