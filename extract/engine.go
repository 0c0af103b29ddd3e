package extract

import (
	"net/url"
	"strings"

	"github.com/fwojciec/viking"
)

// Ensure Engine implements viking.Extractor at compile time.
var _ viking.Extractor = (*Engine)(nil)

// Engine extracts download links and page metadata from file pages.
// An Engine holds only read-only state and is safe for concurrent use.
type Engine struct {
	parser     viking.Parser
	discoverer *Discoverer
	classifier *Classifier
	metadata   *MetadataExtractor
}

// NewEngine creates a new Engine that parses pages with parser and applies
// cfg on top of the built-in vocabularies.
// Returns EINVALID if cfg fails validation.
func NewEngine(parser viking.Parser, cfg viking.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules := cfg.Rules()
	return &Engine{
		parser:     parser,
		discoverer: NewDiscoverer(rules),
		classifier: NewClassifier(rules),
		metadata:   NewMetadataExtractor(),
	}, nil
}

// Extract parses html and returns the classified, deduplicated download
// links together with the page metadata.
func (e *Engine) Extract(html string, pageURL string) (*viking.ExtractionResult, error) {
	pageURL = strings.TrimSpace(pageURL)
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, viking.Errorf(viking.EINVALID, "invalid page URL: %v", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, viking.Errorf(viking.EINVALID, "page URL %q must be absolute", pageURL)
	}

	doc, err := e.parser.Parse(html)
	if err != nil {
		return nil, err
	}

	candidates := e.discoverer.Discover(doc, base)
	links := Merge(e.classifier.ClassifyAll(candidates))

	return &viking.ExtractionResult{
		FileID:        viking.FileIDFromURL(pageURL),
		PageMetadata:  e.metadata.Extract(doc),
		DownloadLinks: links,
		PageURL:       pageURL,
	}, nil
}
