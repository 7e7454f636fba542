//go:generate mockgen -destination=./mocks/orchestrator.go . URLParser,Downloader,Bundler,HookRunner

// Package orchestrator ties URL parsing, extraction, downloading, hooks and
// bundling together into the end-to-end grab flow.
package orchestrator

import (
	"context"

	"github.com/glorpus-work/tikgrab/pkg/download"
	"github.com/glorpus-work/tikgrab/pkg/hook"
	"github.com/glorpus-work/tikgrab/pkg/tiktok"
)

// URLParser is the subset of the TikTok URL parser used by the orchestrator.
type URLParser interface {
	Parse(ctx context.Context, rawURL string) (tiktok.URLInfo, error)
}

// Downloader handles media downloading.
type Downloader interface {
	Fetch(ctx context.Context, item download.Item, dir string) (download.Result, error)
	FetchAll(ctx context.Context, items []download.Item, dir string) ([]download.Result, error)
}

// Bundler packs a downloaded slideshow directory into a single archive.
type Bundler interface {
	Bundle(ctx context.Context, sourceDir, archivePath string) error
}

// Orchestrator ties Parser, Extractor, Downloader and hooks together.
type Orchestrator struct {
	Parser    URLParser
	Extractor tiktok.Extractor
	DL        Downloader
	Bundler   Bundler
	HookMgr   HookRunner
	Hooks     Hooks // Hooks for progress and event notifications
}

// HookRunner is the subset of the hook manager used by the orchestrator.
type HookRunner interface {
	Execute(hookType hook.HookType, ctx hook.HookContext) error
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // parsing|extracting|downloading|bundling|done|error
	ID    string // post ID once known
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Options control a grab run.
type Options struct {
	Dir    string // destination directory
	Bundle bool   // pack slideshows into a tar.gz after download
	Vars   map[string]interface{}
}

// Result is the outcome of one grab.
type Result struct {
	Post       *tiktok.Post
	Files      []download.Result
	BundlePath string // set when a slideshow was bundled
}
