package extract

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/fwojciec/viking"
)

// Region is a candidate location for a page-level field.
// If Attr is set the attribute value is read instead of the element text.
type Region struct {
	Selector string
	Attr     string
}

// FileNameRegions are searched in order for the file name.
var FileNameRegions = []Region{
	{Selector: "#filename"},
	{Selector: ".file-name"},
	{Selector: ".filename"},
	{Selector: "[itemprop=name]"},
	{Selector: "h1"},
	{Selector: `meta[property="og:title"]`, Attr: "content"},
	{Selector: "title"},
}

// FileSizeRegions are searched in order for the file size.
var FileSizeRegions = []Region{
	{Selector: "#size"},
	{Selector: ".file-size"},
	{Selector: ".filesize"},
	{Selector: ".size"},
	{Selector: ".file-info"},
	{Selector: ".details"},
	{Selector: ".info"},
	{Selector: "main"},
}

// UploadDateRegions are searched in order for the upload date.
var UploadDateRegions = []Region{
	{Selector: "time[datetime]", Attr: "datetime"},
	{Selector: "time"},
	{Selector: "#date"},
	{Selector: ".upload-date"},
	{Selector: ".date"},
	{Selector: ".uploaded"},
	{Selector: ".file-info"},
	{Selector: ".details"},
	{Selector: ".info"},
}

// MetadataExtractor reads file name, size and upload date from page regions.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// Extract returns the page metadata of doc. Fields with no match are nil.
func (m *MetadataExtractor) Extract(doc viking.Document) viking.PageMetadata {
	var meta viking.PageMetadata

	if name, ok := firstInRegions(doc, FileNameRegions, nonEmpty); ok {
		meta.FileName = viking.String(name)
	}
	if size, ok := firstInRegions(doc, FileSizeRegions, findSize); ok {
		meta.FileSize = viking.String(size)
	}
	if date, ok := firstInRegions(doc, UploadDateRegions, findDate); ok {
		meta.UploadDate = viking.String(date)
	}

	return meta
}

// firstInRegions returns the first value accepted by match, trying regions
// in order and elements within a region in document order.
func firstInRegions(doc viking.Document, regions []Region, match func(string) (string, bool)) (string, bool) {
	for _, region := range regions {
		for _, el := range doc.Find(region.Selector) {
			value := el.Text()
			if region.Attr != "" {
				v, ok := viking.Attr(el, region.Attr)
				if !ok {
					continue
				}
				value = v
			}
			if found, ok := match(value); ok {
				return found, true
			}
		}
	}
	return "", false
}

func nonEmpty(s string) (string, bool) {
	s = collapseSpace(s)
	return s, s != ""
}

// findDate returns the first date-shaped substring of s that parses as a date.
func findDate(s string) (string, bool) {
	for _, candidate := range datePattern.FindAllString(s, -1) {
		if isDate(candidate) {
			return candidate, true
		}
	}
	return "", false
}

var dottedDate = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`)

// isDate reports whether s parses as a date. Numeric dates are read
// month-first unless the month would be out of range.
func isDate(s string) bool {
	if dottedDate.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "/")
	}
	_, err := dateparse.ParseAny(s, dateparse.RetryAmbiguousDateWithSwap(true))
	return err == nil
}
