package viking

// Attribute is a single name/value pair on an element.
type Attribute struct {
	Name  string
	Value string
}

// Element is the minimal view of a markup element used by extraction.
// It hides the node type of whichever parser produced the document.
type Element interface {
	// Attributes returns the element's attributes in document order.
	Attributes() []Attribute

	// Text returns the element's visible text, including descendants.
	Text() string
}

// Document is a parsed page.
type Document interface {
	// Elements returns every element in document order.
	Elements() []Element

	// Find returns the elements matching a CSS selector in document order.
	// An invalid selector matches nothing.
	Find(selector string) []Element
}

// Parser parses raw markup into a Document.
type Parser interface {
	// Parse returns EMALFORMED if the input cannot be treated as markup.
	Parse(html string) (Document, error)
}

// Attr returns the value of the named attribute on el.
// The bool result is false if the attribute is absent.
func Attr(el Element, name string) (string, bool) {
	for _, a := range el.Attributes() {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
