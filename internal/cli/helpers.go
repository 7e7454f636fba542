package cli

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/glorpus-work/tikgrab/internal/logger"
	"github.com/glorpus-work/tikgrab/pkg/config"
	"github.com/glorpus-work/tikgrab/pkg/cookies"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	Quiet      *bool
)

// loadConfig loads the configuration from the --config path or the default
// location and applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	initLogger(cfg)
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	format := logger.FormatText
	if cfg.Settings.OutputFormat == "json" {
		format = logger.FormatJSON
	}
	logger.InitLogger(cfg.Settings.LogLevel, format)
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes the config layer fall back to defaults and
		// produce a descriptive error on save.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// cookieJarForProfile builds an http.CookieJar preloaded with the named
// profile's cookies, scoped to tiktok.com.
func cookieJarForProfile(cfg *config.Config, profile string) (http.CookieJar, error) {
	stored, err := cookies.NewManager(cfg.Settings.CookieDir).Load(profile)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	site := &url.URL{Scheme: "https", Host: "www.tiktok.com"}
	jar.SetCookies(site, cookies.ToHTTPCookies(stored))
	return jar, nil
}
