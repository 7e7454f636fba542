//go:generate mockgen -destination=./mocks/download.go . Manager,Progress
package download

import (
	"context"
	"net/http"
	"time"
)

// Manager defines the interface for downloading remote media resources.
// It replaces ad-hoc HTTP fetching with a higher-level, testable API that
// supports batching, retries and integrity tracking.
type Manager interface {
	// Fetch downloads a single item into dir and returns the result.
	// After all retry attempts fail it returns an *ExhaustedRetriesError
	// wrapping the last underlying cause.
	Fetch(ctx context.Context, item Item, dir string) (Result, error)

	// FetchAll downloads all items concurrently into dir, bounded by the
	// configured concurrency. One item's failure never cancels its
	// siblings: every successful Result is returned alongside a joined
	// error carrying one entry per failed item. Result order is completion
	// order, not input order.
	FetchAll(ctx context.Context, items []Item, dir string) ([]Result, error)
}

// Item represents one remote resource to download.
type Item struct {
	URL  string // source URL to download
	Name string // optional destination base name; derived from the URL path when empty
}

// Result is the outcome of one successful download.
type Result struct {
	URL      string // the source URL
	Path     string // final unique path the bytes were written to
	Checksum string // lowercase hex SHA-256 of exactly the written bytes
}

// Progress receives byte-level updates while a download streams. Update is
// called after every chunk write; downloaded is cumulative and strictly
// increasing per dest, total is 0 when the server did not report a content
// length.
type Progress interface {
	Update(dest string, downloaded, total int64)
}

// ProgressFunc adapts a plain function to the Progress interface.
type ProgressFunc func(dest string, downloaded, total int64)

// Update implements Progress.
func (f ProgressFunc) Update(dest string, downloaded, total int64) {
	f(dest, downloaded, total)
}

type noopProgress struct{}

func (noopProgress) Update(string, int64, int64) {}

// NopProgress is the default Progress consumer; it discards all updates, so
// the fetch path never branches on whether a callback is present.
var NopProgress Progress = noopProgress{}

// Options control the behavior of the download manager. The zero value gets
// usable defaults applied by NewManager.
type Options struct {
	// MaxRetries is the number of retries after the first failed attempt;
	// a fetch makes at most MaxRetries+1 attempts.
	MaxRetries int

	// ChunkSize is the streaming read/write size in bytes (default 8192).
	ChunkSize int

	// Concurrency bounds how many transfers run at once (default 3).
	Concurrency int

	// UserAgent is sent on every request.
	UserAgent string

	// InitialBackoff is the delay before the first retry; it doubles after
	// every failed attempt (default 1s).
	InitialBackoff time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Jar optionally carries session cookies for authenticated media hosts.
	Jar http.CookieJar

	// Progress receives byte-level updates; nil means no reporting.
	Progress Progress
}

func (o *Options) applyDefaults() {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 8192
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 3
	}
	if o.UserAgent == "" {
		o.UserAgent = "tikgrab/1.0"
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = time.Second
	}
	if o.Progress == nil {
		o.Progress = NopProgress
	}
}
