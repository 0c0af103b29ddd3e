package mock

import "github.com/fwojciec/viking"

var _ viking.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of viking.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*viking.ExtractionResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*viking.ExtractionResult, error) {
	return e.ExtractFn(html, pageURL)
}

var _ viking.Parser = (*Parser)(nil)

// Parser is a mock implementation of viking.Parser.
type Parser struct {
	ParseFn func(html string) (viking.Document, error)
}

func (p *Parser) Parse(html string) (viking.Document, error) {
	return p.ParseFn(html)
}
