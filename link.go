package viking

// Strategy identifies which discovery pass produced a candidate link.
type Strategy string

// Discovery strategies, in the order they run.
const (
	StrategyAffordance  Strategy = "affordance"
	StrategyKnownHost   Strategy = "known-host"
	StrategyDirectMedia Strategy = "direct-media"
)

// Fallback source labels for links that match no host pattern.
const (
	SourceDirect  = "direct"
	SourceUnknown = "unknown"
)

// SourceViking labels links to the viking file host itself.
const SourceViking = "viking"

// CandidateLink is an unclassified link found during discovery.
// Candidates may repeat across strategies; they only live for one extraction.
type CandidateLink struct {
	URL      string
	Text     string
	Strategy Strategy
}

// DownloadLink is a classified, normalized download link.
// URL is the identity of a link and is never empty. Source is a host label
// from the pattern table, SourceDirect, or SourceUnknown.
type DownloadLink struct {
	URL      string  `json:"url" yaml:"url"`
	Source   string  `json:"source" yaml:"source"`
	Quality  *string `json:"quality" yaml:"quality"`
	FileSize *string `json:"file_size" yaml:"file_size"`
	FileType *string `json:"file_type" yaml:"file_type"`
}

// IsFallbackSource reports whether label is one of the labels assigned when
// no host pattern matched.
func IsFallbackSource(label string) bool {
	return label == SourceDirect || label == SourceUnknown
}

// String returns a pointer to s. It is a convenience for optional fields.
func String(s string) *string {
	return &s
}
