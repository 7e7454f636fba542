package tiktok

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	pkgerrors "github.com/glorpus-work/tikgrab/pkg/errors"
)

// postIDPattern matches the 19-digit post identifier TikTok embeds in
// canonical post URLs.
var postIDPattern = regexp.MustCompile(`\d{19}`)

// Parser validates and resolves TikTok URLs. Short links (vm.tiktok.com and
// friends) redirect to the canonical post URL, so resolution needs an HTTP
// round trip.
type Parser struct {
	client *http.Client
}

// NewParser creates a Parser using client for redirect resolution. A nil
// client falls back to http.DefaultClient.
func NewParser(client *http.Client) *Parser {
	if client == nil {
		client = http.DefaultClient
	}
	return &Parser{client: client}
}

// Parse validates rawURL, follows redirects to the canonical post URL and
// extracts the post identifier and content kind.
func (p *Parser) Parse(ctx context.Context, rawURL string) (URLInfo, error) {
	if err := Validate(rawURL); err != nil {
		return URLInfo{}, err
	}

	resolved, err := p.resolve(ctx, rawURL)
	if err != nil {
		return URLInfo{}, err
	}

	id := postIDPattern.FindString(resolved)
	if id == "" {
		return URLInfo{}, pkgerrors.Wrapf(pkgerrors.ErrNoPostID, "resolve %s", rawURL)
	}

	return URLInfo{
		Raw:      rawURL,
		Resolved: resolved,
		ID:       id,
		Kind:     DetectKind(resolved),
	}, nil
}

// resolve follows redirects and returns the final URL.
func (p *Parser) resolve(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to create request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to resolve %s", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.Request.URL.String(), nil
}

// Validate checks that rawURL is an http(s) URL on a tiktok.com host.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrInvalidURL, "%s", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return pkgerrors.Wrapf(pkgerrors.ErrInvalidURL, "unsupported scheme %q", u.Scheme)
	}
	host := u.Hostname()
	if host != "tiktok.com" && !strings.HasSuffix(host, ".tiktok.com") {
		return pkgerrors.Wrapf(pkgerrors.ErrInvalidURL, "unsupported host %q", host)
	}
	return nil
}

// DetectKind reports whether a resolved URL points at a photo-mode slideshow
// or a regular video.
func DetectKind(resolvedURL string) Kind {
	u, err := url.Parse(resolvedURL)
	if err != nil {
		return KindVideo
	}
	if strings.Contains(u.Path, "/photo/") {
		return KindSlideshow
	}
	return KindVideo
}

// ExtractID pulls the 19-digit post identifier out of a URL.
func ExtractID(rawURL string) (string, error) {
	id := postIDPattern.FindString(rawURL)
	if id == "" {
		return "", pkgerrors.Wrapf(pkgerrors.ErrNoPostID, "%s", rawURL)
	}
	return id, nil
}
