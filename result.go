package viking

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// PageMetadata holds file details read from page-level regions.
// Each field is extracted independently and is nil when not found.
type PageMetadata struct {
	FileName   *string `json:"file_name" yaml:"file_name"`
	FileSize   *string `json:"file_size" yaml:"file_size"`
	UploadDate *string `json:"upload_date" yaml:"upload_date"`
}

// ExtractionResult is the outcome of extracting one page.
// Optional fields serialize as null rather than being omitted.
type ExtractionResult struct {
	FileID string `json:"file_id" yaml:"file_id"`
	PageMetadata `yaml:",inline"`
	DownloadLinks []DownloadLink `json:"download_links" yaml:"download_links"`
	PageURL       string         `json:"page_url" yaml:"page_url"`
}

// Validate returns an error if the result contains invalid fields.
func (r *ExtractionResult) Validate() error {
	if r.PageURL == "" {
		return Errorf(EINVALID, "result page URL required")
	}
	for i, link := range r.DownloadLinks {
		if link.URL == "" {
			return Errorf(EINVALID, "download link %d: URL required", i)
		}
		if link.Source == "" {
			return Errorf(EINVALID, "download link %q: source required", link.URL)
		}
	}
	return nil
}

// HasSource reports whether any download link carries the source label.
func (r *ExtractionResult) HasSource(label string) bool {
	for _, link := range r.DownloadLinks {
		if link.Source == label {
			return true
		}
	}
	return false
}

// SourceGroup is the set of links that share a source label.
type SourceGroup struct {
	Source string
	Links  []DownloadLink
}

// LinksBySource groups download links by source label.
// Groups appear in the order their first link appears.
func (r *ExtractionResult) LinksBySource() []SourceGroup {
	var groups []SourceGroup
	index := make(map[string]int)
	for _, link := range r.DownloadLinks {
		i, ok := index[link.Source]
		if !ok {
			i = len(groups)
			index[link.Source] = i
			groups = append(groups, SourceGroup{Source: link.Source})
		}
		groups[i].Links = append(groups[i].Links, link)
	}
	return groups
}

// FileIDFromURL derives a file identifier from the last non-empty path
// segment of a page URL. It returns an empty string when there is none.
func FileIDFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}

// Extractor turns raw page markup into an ExtractionResult.
type Extractor interface {
	// Extract parses html and extracts download links and page metadata.
	// The pageURL resolves relative links and supplies the file ID.
	// Returns EMALFORMED if the markup cannot be parsed and EINVALID if
	// pageURL is not an absolute URL. No links is not an error.
	Extract(html string, pageURL string) (*ExtractionResult, error)
}

// ResultStore persists a single result as a JSON file.
type ResultStore interface {
	Save(ctx context.Context, path string, result *ExtractionResult) error

	// Load returns ENOTFOUND if no file exists at path.
	Load(ctx context.Context, path string) (*ExtractionResult, error)
}

// Record is an extraction result kept in the result history.
type Record struct {
	ID          string            `json:"id"`
	ContentHash string            `json:"contentHash"`
	ExtractedAt time.Time         `json:"extractedAt"`
	Result      *ExtractionResult `json:"result"`

	// HTML is the page markup the result was extracted from.
	HTML string `json:"-"`
}

// RecordService represents a service for managing the result history.
type RecordService interface {
	// CreateRecord stores a new record.
	// Returns ECONFLICT if the newest record for the same page was extracted
	// from identical markup.
	CreateRecord(ctx context.Context, rec *Record) error

	// FindRecordByID retrieves a record by ID.
	// Returns ENOTFOUND if record does not exist.
	FindRecordByID(ctx context.Context, id string) (*Record, error)

	// FindRecords retrieves records matching the filter, newest first.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)

	// DeleteRecord permanently removes a record and its links.
	// Returns ENOTFOUND if record does not exist.
	DeleteRecord(ctx context.Context, id string) error

	// SourceStats summarizes stored links per source label.
	SourceStats(ctx context.Context) (*Stats, error)
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	ID      *string `json:"id"`
	FileID  *string `json:"fileId"`
	PageURL *string `json:"pageUrl"`

	// Source restricts results to records with at least one link of this source.
	Source *string `json:"source"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Stats summarizes the result history.
type Stats struct {
	Records int          `json:"records"`
	Sources []SourceStat `json:"sources"`
}

// SourceStat counts stored links for one source label.
type SourceStat struct {
	Source  string `json:"source"`
	Records int    `json:"records"`
	Links   int    `json:"links"`

	// Bytes sums the parseable link file sizes.
	Bytes uint64 `json:"bytes"`
}

// Share returns the percentage of records that have at least one link of
// the given source. It returns 0 when there are no records.
func (s *Stats) Share(source string) float64 {
	if s.Records == 0 {
		return 0
	}
	for _, src := range s.Sources {
		if src.Source == source {
			return float64(src.Records) / float64(s.Records) * 100
		}
	}
	return 0
}
