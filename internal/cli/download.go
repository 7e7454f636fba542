package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/tikgrab/internal/logger"
	"github.com/glorpus-work/tikgrab/pkg/archive"
	"github.com/glorpus-work/tikgrab/pkg/config"
	"github.com/glorpus-work/tikgrab/pkg/download"
	"github.com/glorpus-work/tikgrab/pkg/hook"
	"github.com/glorpus-work/tikgrab/pkg/orchestrator"
	"github.com/glorpus-work/tikgrab/pkg/progress"
	"github.com/glorpus-work/tikgrab/pkg/tiktok"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	var (
		dir           string
		bundle        bool
		cookieProfile string
	)

	cmd := &cobra.Command{
		Use:   "download URL...",
		Short: "Download TikTok media",
		Long: `Download one or more media URLs.

TikTok post URLs (including vm.tiktok.com short links) are parsed and
resolved through the extraction pipeline; any other URL is fetched
directly as a media file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args, dir, bundle, cookieProfile)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "destination directory (default: configured download dir)")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "pack slideshows into a .tar.gz bundle")
	cmd.Flags().StringVar(&cookieProfile, "cookies", "", "cookie profile to send with requests")

	return cmd
}

func runDownload(cmd *cobra.Command, urls []string, dir string, bundle bool, cookieProfile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if dir == "" {
		dir = cfg.Settings.DownloadDir
	}
	if bundle || cfg.Settings.BundleSlideshows {
		bundle = true
	}

	orch, display, err := buildOrchestrator(cfg, cookieProfile)
	if err != nil {
		return err
	}
	if display != nil {
		defer display.Close()
	}

	opts := orchestrator.Options{Dir: dir, Bundle: bundle}

	var pageURLs, directURLs []string
	for _, u := range urls {
		if tiktok.Validate(u) == nil {
			pageURLs = append(pageURLs, u)
		} else {
			directURLs = append(directURLs, u)
		}
	}

	ctx := cmd.Context()
	var failed int

	if len(directURLs) > 0 {
		results, err := orch.GrabDirect(ctx, directURLs, opts)
		for _, res := range results {
			logger.Success("Downloaded", logger.Fields{"path": res.Path, "sha256": res.Checksum})
		}
		if err != nil {
			failed++
			logger.Error("Some downloads failed", logger.Fields{"error": err.Error()})
		}
	}

	for _, u := range pageURLs {
		result, err := orch.Grab(ctx, u, opts)
		if err != nil {
			failed++
			logger.Error("Download failed", logger.Fields{"url": u, "error": err.Error()})
			continue
		}
		for _, file := range result.Files {
			logger.Success("Downloaded", logger.Fields{"path": file.Path, "sha256": file.Checksum})
		}
		if result.BundlePath != "" {
			logger.Success("Bundled slideshow", logger.Fields{"bundle": result.BundlePath})
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(urls))
	}
	return nil
}

// buildOrchestrator assembles the grab pipeline from config. The returned
// display is nil in quiet mode.
func buildOrchestrator(cfg *config.Config, cookieProfile string) (*orchestrator.Orchestrator, *progress.Display, error) {
	dlOpts := download.Options{
		MaxRetries:  cfg.Settings.MaxRetries,
		ChunkSize:   cfg.Settings.ChunkSize,
		Concurrency: cfg.Settings.Concurrency,
		UserAgent:   cfg.Settings.UserAgent,
		Timeout:     cfg.Settings.HTTPTimeout,
	}

	if cookieProfile != "" {
		jar, err := cookieJarForProfile(cfg, cookieProfile)
		if err != nil {
			return nil, nil, err
		}
		dlOpts.Jar = jar
	}

	var display *progress.Display
	if Quiet == nil || !*Quiet {
		display = progress.NewDisplay(os.Stderr)
		dlOpts.Progress = display
	}

	hookMgr := hook.NewHookManager()
	if err := hook.LoadHooksFromDir(hookMgr, cfg.Settings.HookDir); err != nil {
		return nil, nil, err
	}

	orch := &orchestrator.Orchestrator{
		Parser:  tiktok.NewParser(&http.Client{Timeout: cfg.Settings.HTTPTimeout}),
		DL:      download.NewManager(dlOpts),
		Bundler: archive.NewManager(),
		HookMgr: hookMgr,
	}
	return orch, display, nil
}
