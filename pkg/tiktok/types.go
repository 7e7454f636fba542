//go:generate mockgen -destination=./mocks/tiktok.go . Extractor
// Package tiktok parses TikTok post URLs and defines the extraction boundary
// between URL handling and the services that resolve posts to media URLs.
package tiktok

import "context"

// Kind classifies what a TikTok post URL points at.
type Kind string

const (
	// KindVideo is a regular single-video post.
	KindVideo Kind = "video"
	// KindSlideshow is a photo-mode post carrying multiple images.
	KindSlideshow Kind = "slideshow"
)

// URLInfo is the parsed form of a TikTok post URL.
type URLInfo struct {
	Raw      string // the URL as given, possibly a short link
	Resolved string // final URL after following redirects
	ID       string // the 19-digit post identifier
	Kind     Kind
}

// Media is one downloadable asset belonging to a post.
type Media struct {
	URL  string
	Name string // preferred base name, without extension
}

// Post is an extracted TikTok post with its resolvable media.
type Post struct {
	ID     string
	Title  string
	Author string
	Kind   Kind
	Media  []Media
}

// Extractor resolves a parsed post URL to its downloadable media. Extraction
// requires talking to TikTok (or a frontend for it), so implementations live
// behind this interface and the rest of the pipeline stays network-agnostic.
type Extractor interface {
	Extract(ctx context.Context, info URLInfo) (*Post, error)
}
