package viking

import (
	"fmt"
	"strings"
)

// FormatResult renders a result as a plain-text report.
// Links are grouped by source; missing fields are shown as "-".
// The header notes whether the result carries a viking link.
func FormatResult(r *ExtractionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "File ID:     %s\n", orDash(r.FileID))
	fmt.Fprintf(&b, "File name:   %s\n", deref(r.FileName))
	fmt.Fprintf(&b, "File size:   %s\n", deref(r.FileSize))
	fmt.Fprintf(&b, "Uploaded:    %s\n", deref(r.UploadDate))
	fmt.Fprintf(&b, "Page:        %s\n", r.PageURL)
	fmt.Fprintf(&b, "Viking link: %s\n", yesNo(r.HasSource(SourceViking)))

	if len(r.DownloadLinks) == 0 {
		b.WriteString("\nNo download links found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nDownload links (%d):\n", len(r.DownloadLinks))
	for _, group := range r.LinksBySource() {
		fmt.Fprintf(&b, "\n  [%s]\n", group.Source)
		for _, link := range group.Links {
			fmt.Fprintf(&b, "    %s\n", link.URL)
			var tags []string
			if link.Quality != nil {
				tags = append(tags, "quality="+*link.Quality)
			}
			if link.FileType != nil {
				tags = append(tags, "type="+*link.FileType)
			}
			if link.FileSize != nil {
				tags = append(tags, "size="+*link.FileSize)
			}
			if len(tags) > 0 {
				fmt.Fprintf(&b, "      %s\n", strings.Join(tags, " "))
			}
		}
	}

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
