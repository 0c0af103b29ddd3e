// Package goquery implements viking.Parser on top of goquery so extraction
// code can walk a page without depending on the HTML node type.
package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/viking"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Ensure Parser implements viking.Parser at compile time.
var _ viking.Parser = (*Parser)(nil)

// Parser parses HTML with golang.org/x/net/html and exposes the tree
// through goquery selections.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses src into a Document.
// Empty input is a valid, empty document. Input containing NUL bytes is not
// markup and is rejected with EMALFORMED. Text that is not UTF-8 is decoded
// before parsing, see toUTF8.
func (p *Parser) Parse(src string) (viking.Document, error) {
	if strings.ContainsRune(src, 0) {
		return nil, viking.Errorf(viking.EMALFORMED, "document contains NUL bytes")
	}

	root, err := html.Parse(strings.NewReader(toUTF8(src)))
	if err != nil {
		return nil, viking.Errorf(viking.EMALFORMED, "failed to parse HTML: %v", err)
	}

	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// toUTF8 returns src as valid UTF-8. A character cut off at the end of src
// is dropped. Otherwise src is decoded from the encoding named by its meta
// tags, falling back to windows-1252, and any bytes left undecodable become
// U+FFFD.
func toUTF8(src string) string {
	if utf8.ValidString(src) {
		return src
	}
	if trimmed := trimPartialRune(src); utf8.ValidString(trimmed) {
		return trimmed
	}
	enc, _, _ := charset.DetermineEncoding([]byte(src), "")
	if decoded, err := enc.NewDecoder().String(src); err == nil && utf8.ValidString(decoded) {
		return decoded
	}
	return strings.ToValidUTF8(src, string(utf8.RuneError))
}

// trimPartialRune drops an incomplete multi-byte sequence from the end of s.
func trimPartialRune(s string) string {
	for i := 1; i < utf8.UTFMax && i <= len(s); i++ {
		if !utf8.RuneStart(s[len(s)-i]) {
			continue
		}
		if !utf8.FullRuneInString(s[len(s)-i:]) {
			return s[:len(s)-i]
		}
		return s
	}
	return s
}

// Ensure Document implements viking.Document at compile time.
var _ viking.Document = (*Document)(nil)

// Document wraps a goquery document.
type Document struct {
	doc *goquery.Document
}

// Elements returns every element in document order.
func (d *Document) Elements() []viking.Element {
	return elements(d.doc.Find("*"))
}

// Find returns the elements matching selector in document order.
// goquery treats an invalid selector as matching nothing.
func (d *Document) Find(selector string) []viking.Element {
	return elements(d.doc.Find(selector))
}

func elements(sel *goquery.Selection) []viking.Element {
	out := make([]viking.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{sel: s})
	})
	return out
}

// Ensure Element implements viking.Element at compile time.
var _ viking.Element = (*Element)(nil)

// Element wraps a single-node goquery selection.
type Element struct {
	sel *goquery.Selection
}

// Attributes returns the node's attributes in document order.
// Attribute names are lower-cased by the HTML parser.
func (e *Element) Attributes() []viking.Attribute {
	node := e.sel.Get(0)
	if node == nil || node.Type != html.ElementNode {
		return nil
	}
	attrs := make([]viking.Attribute, 0, len(node.Attr))
	for _, a := range node.Attr {
		attrs = append(attrs, viking.Attribute{Name: a.Key, Value: a.Val})
	}
	return attrs
}

// Text returns the combined text of the element and its descendants.
func (e *Element) Text() string {
	return e.sel.Text()
}
