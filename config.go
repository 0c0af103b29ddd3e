package viking

import (
	"slices"
	"strings"
)

// DefaultMediaExtensions returns the built-in media extensions, without dots.
func DefaultMediaExtensions() []string {
	return []string{
		"mp4", "mkv", "m3u8", "avi", "mov", "webm", "m4v", "wmv", "flv",
		"ts", "mpd", "mp3", "m4a", "flac",
	}
}

// DefaultQualityVocabulary returns the built-in quality markers.
// Resolution markers come first so they win over release markers when both
// start at the same position.
func DefaultQualityVocabulary() []string {
	return []string{
		"2160p", "4K", "UHD", "1440p", "1080p", "720p", "576p", "480p", "360p", "240p",
		"WEB-DL", "WEBRip", "BluRay", "BDRip", "HDRip", "DVDRip", "HDTV", "CAM",
	}
}

// Config holds optional overrides for an extraction.
// The zero value selects the built-in vocabularies.
type Config struct {
	// ExtraSourcePatterns are consulted before the built-in host table.
	ExtraSourcePatterns []HostPattern `json:"extra_source_patterns" yaml:"extra_source_patterns" toml:"extra_source_patterns"`

	// ExtraMediaExtensions are added to the built-in media extensions.
	ExtraMediaExtensions []string `json:"extra_media_extensions" yaml:"extra_media_extensions" toml:"extra_media_extensions"`

	// QualityVocabulary replaces the built-in quality markers when non-empty.
	QualityVocabulary []string `json:"quality_vocabulary" yaml:"quality_vocabulary" toml:"quality_vocabulary"`
}

// Validate returns an error if the config contains invalid fields.
func (c *Config) Validate() error {
	for i, p := range c.ExtraSourcePatterns {
		if strings.TrimSpace(p.Pattern) == "" {
			return Errorf(EINVALID, "source pattern %d: pattern required", i)
		}
		if strings.TrimSpace(p.Label) == "" {
			return Errorf(EINVALID, "source pattern %q: label required", p.Pattern)
		}
		if IsFallbackSource(p.Label) {
			return Errorf(EINVALID, "source pattern %q: label %q is reserved", p.Pattern, p.Label)
		}
	}
	for _, ext := range c.ExtraMediaExtensions {
		if normalizeExtension(ext) == "" {
			return Errorf(EINVALID, "media extension %q is empty", ext)
		}
	}
	for _, q := range c.QualityVocabulary {
		if strings.TrimSpace(q) == "" {
			return Errorf(EINVALID, "quality vocabulary contains an empty token")
		}
	}
	return nil
}

// Rules resolves the config against the built-in vocabularies.
// The returned rules are never mutated and may be shared between goroutines.
func (c *Config) Rules() *Rules {
	patterns := make([]HostPattern, 0, len(c.ExtraSourcePatterns)+len(DefaultHostPatterns()))
	for _, p := range c.ExtraSourcePatterns {
		patterns = append(patterns, HostPattern{
			Pattern: strings.TrimSpace(p.Pattern),
			Label:   strings.TrimSpace(p.Label),
		})
	}
	patterns = append(patterns, DefaultHostPatterns()...)

	extensions := DefaultMediaExtensions()
	for _, ext := range c.ExtraMediaExtensions {
		ext = normalizeExtension(ext)
		if ext != "" && !slices.Contains(extensions, ext) {
			extensions = append(extensions, ext)
		}
	}

	quality := DefaultQualityVocabulary()
	if len(c.QualityVocabulary) > 0 {
		quality = make([]string, 0, len(c.QualityVocabulary))
		for _, q := range c.QualityVocabulary {
			quality = append(quality, strings.TrimSpace(q))
		}
	}

	return &Rules{
		HostPatterns:    patterns,
		MediaExtensions: extensions,
		Quality:         quality,
	}
}

// Rules is the resolved, read-only rule set used by an extraction.
type Rules struct {
	HostPatterns    []HostPattern
	MediaExtensions []string
	Quality         []string
}

// IsMediaExtension reports whether ext (with or without a leading dot) is a
// known media extension.
func (r *Rules) IsMediaExtension(ext string) bool {
	ext = normalizeExtension(ext)
	return ext != "" && slices.Contains(r.MediaExtensions, ext)
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
