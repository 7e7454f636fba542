package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/tikgrab/internal/logger"
	"github.com/glorpus-work/tikgrab/pkg/download"
	"github.com/glorpus-work/tikgrab/pkg/hook"
	"github.com/glorpus-work/tikgrab/pkg/tiktok"
)

// Grab runs the full pipeline for one post URL: parse, extract, run hooks,
// download every media file and optionally bundle slideshows.
func (o *Orchestrator) Grab(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	if o.Parser == nil {
		return nil, fmt.Errorf("url parser is not configured")
	}
	if o.DL == nil {
		return nil, fmt.Errorf("download manager is not configured")
	}
	if o.Extractor == nil {
		return nil, fmt.Errorf("extractor is not configured")
	}

	emit(o.Hooks, Event{Phase: "parsing", Msg: rawURL})
	info, err := o.Parser.Parse(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if err := o.runHook(hook.PreDownload, hook.HookContext{
		URL:    info.Resolved,
		PostID: info.ID,
		Kind:   string(info.Kind),
		Vars:   opts.Vars,
	}); err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: "extracting", ID: info.ID})
	post, err := o.Extractor.Extract(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", info.Resolved, err)
	}

	result := &Result{Post: post}
	switch post.Kind {
	case tiktok.KindSlideshow:
		err = o.grabSlideshow(ctx, post, opts, result)
	default:
		err = o.grabVideo(ctx, post, opts, result)
	}
	if err != nil {
		return result, err
	}

	for _, file := range result.Files {
		if err := o.runHook(hook.PostDownload, hook.HookContext{
			URL:      file.URL,
			PostID:   post.ID,
			Author:   post.Author,
			Kind:     string(post.Kind),
			Path:     file.Path,
			Checksum: file.Checksum,
			Vars:     opts.Vars,
		}); err != nil {
			return result, err
		}
	}

	emit(o.Hooks, Event{Phase: "done", ID: post.ID})
	return result, nil
}

// GrabDirect downloads plain media URLs without extraction. It is the path
// for URLs that already point at media files rather than at a post page.
func (o *Orchestrator) GrabDirect(ctx context.Context, urls []string, opts Options) ([]download.Result, error) {
	if o.DL == nil {
		return nil, fmt.Errorf("download manager is not configured")
	}

	items := make([]download.Item, 0, len(urls))
	for _, u := range urls {
		items = append(items, download.Item{URL: u})
	}

	emit(o.Hooks, Event{Phase: "downloading"})
	results, err := o.DL.FetchAll(ctx, items, opts.Dir)
	if err != nil {
		return results, err
	}
	emit(o.Hooks, Event{Phase: "done"})
	return results, nil
}

func (o *Orchestrator) grabVideo(ctx context.Context, post *tiktok.Post, opts Options, result *Result) error {
	emit(o.Hooks, Event{Phase: "downloading", ID: post.ID})

	for _, media := range post.Media {
		item := download.Item{URL: media.URL, Name: media.Name}
		if item.Name == "" {
			item.Name = post.ID
		}
		res, err := o.DL.Fetch(ctx, item, opts.Dir)
		if err != nil {
			return err
		}
		result.Files = append(result.Files, res)
	}
	return nil
}

// grabSlideshow downloads every image into a per-post subdirectory so a
// multi-image post stays together, then optionally bundles it.
func (o *Orchestrator) grabSlideshow(ctx context.Context, post *tiktok.Post, opts Options, result *Result) error {
	emit(o.Hooks, Event{Phase: "downloading", ID: post.ID})

	dir := filepath.Join(opts.Dir, post.ID)
	items := make([]download.Item, 0, len(post.Media))
	for i, media := range post.Media {
		name := media.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", post.ID, i+1)
		}
		items = append(items, download.Item{URL: media.URL, Name: name})
	}

	results, err := o.DL.FetchAll(ctx, items, dir)
	result.Files = append(result.Files, results...)
	if err != nil {
		return err
	}

	if opts.Bundle {
		if o.Bundler == nil {
			return fmt.Errorf("bundler is not configured")
		}
		emit(o.Hooks, Event{Phase: "bundling", ID: post.ID})
		bundlePath := filepath.Join(opts.Dir, post.ID+".tar.gz")
		if err := o.Bundler.Bundle(ctx, dir, bundlePath); err != nil {
			return err
		}
		result.BundlePath = bundlePath
		logger.Debug("bundled slideshow", logger.Fields{"post": post.ID, "bundle": bundlePath})
	}
	return nil
}

func (o *Orchestrator) runHook(hookType hook.HookType, ctx hook.HookContext) error {
	if o.HookMgr == nil {
		return nil
	}
	return o.HookMgr.Execute(hookType, ctx)
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}
