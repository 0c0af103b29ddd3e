package sqlite

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// timeFormat is a fixed-width UTC layout so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// parseTime parses a timestamp written by formatTime.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseTime(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(timeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
// SQLite requires a LIMIT before OFFSET, so an offset alone uses LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// groupedSize matches a size whose commas separate thousands, as in "1,234 MB".
var groupedSize = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?\s*[A-Za-z]`)

// sizeBytes converts a displayed size such as "1.4 GB", "1,234.5 MB" or
// "700,5 MiB" to bytes. Sizes that cannot be parsed are stored as NULL.
func sizeBytes(size *string) sql.NullInt64 {
	if size == nil {
		return sql.NullInt64{}
	}
	s := *size
	if !strings.Contains(s, ".") && !groupedSize.MatchString(s) {
		s = strings.Replace(s, ",", ".", 1)
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n > 1<<62 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
