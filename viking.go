// Package viking extracts download-link metadata from viking file-hosting
// pages. Given a page's raw HTML and its URL, it discovers every outbound link
// that looks like a downloadable asset, labels the hosting service behind it,
// attaches any quality, size and file-type hints found near the link, and
// returns a deduplicated result alongside page-level file metadata.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package viking
