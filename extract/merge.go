package extract

import "github.com/fwojciec/viking"

// Merge collapses links that share a normalized URL into one link per URL,
// keeping the order in which each URL was first seen.
//
// Quality, file size and file type are resolved independently: a non-nil
// value replaces nil, and when two links disagree the earlier one wins.
// The source label prefers a host label over "direct" over "unknown", since
// whether a link counts as direct depends on which strategy found it.
func Merge(links []viking.DownloadLink) []viking.DownloadLink {
	out := make([]viking.DownloadLink, 0, len(links))
	index := make(map[string]int, len(links))

	for _, link := range links {
		i, ok := index[link.URL]
		if !ok {
			index[link.URL] = len(out)
			out = append(out, link)
			continue
		}

		merged := &out[i]
		if sourceRank(link.Source) > sourceRank(merged.Source) {
			merged.Source = link.Source
		}
		if merged.Quality == nil {
			merged.Quality = link.Quality
		}
		if merged.FileSize == nil {
			merged.FileSize = link.FileSize
		}
		if merged.FileType == nil {
			merged.FileType = link.FileType
		}
	}

	return out
}

func sourceRank(label string) int {
	switch label {
	case viking.SourceUnknown:
		return 0
	case viking.SourceDirect:
		return 1
	default:
		return 2
	}
}
