// Package config provides configuration management for tikgrab. It handles
// loading, validating, and saving application settings from YAML files, with
// sensible defaults and environment variable overrides. Configuration is an
// explicit value passed into constructors; there is no process-wide singleton,
// and tests construct a fresh instance per case.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/tikgrab/pkg/errors"
	"github.com/glorpus-work/tikgrab/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// SchemaVersion is the version of the config file layout. Files written
	// by a newer tikgrab than the one reading them are rejected on load.
	SchemaVersion string `yaml:"schema_version,omitempty"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Download settings
	DownloadDir string `yaml:"download_dir,omitempty"`
	MaxRetries  int    `yaml:"max_retries"`
	ChunkSize   int    `yaml:"chunk_size"`
	Concurrency int    `yaml:"concurrency"`

	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent,omitempty"`

	// Cookie and hook locations
	CookieDir string `yaml:"cookie_dir,omitempty"`
	HookDir   string `yaml:"hook_dir,omitempty"`

	// BundleSlideshows packs completed slideshow directories into a .tar.gz.
	BundleSlideshows bool `yaml:"bundle_slideshows"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// Default configuration values.
const (
	// CurrentSchemaVersion is the config layout this build reads and writes.
	CurrentSchemaVersion = "1.0.0"

	// DefaultMaxRetries is the default number of retries per download.
	DefaultMaxRetries = 3

	// DefaultChunkSize is the default streaming chunk size in bytes.
	DefaultChunkSize = 8192

	// DefaultConcurrency is the default number of parallel downloads.
	DefaultConcurrency = 3

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultUserAgent is sent on every download request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/135.0.0.0 Safari/537.36"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2

	maxRetriesLimit = 10

	envPrefix = "TIKGRAB_"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	configDir, err := getUserConfigDir()
	if err != nil {
		// Fallback to current directory if we can't determine user config dir
		configDir = "."
	}

	return &Config{
		SchemaVersion: CurrentSchemaVersion,
		Settings: Settings{
			DownloadDir:  "downloads",
			MaxRetries:   DefaultMaxRetries,
			ChunkSize:    DefaultChunkSize,
			Concurrency:  DefaultConcurrency,
			HTTPTimeout:  DefaultHTTPTimeout,
			UserAgent:    DefaultUserAgent,
			CookieDir:    filepath.Join(configDir, "cookies"),
			HookDir:      filepath.Join(configDir, "hooks"),
			OutputFormat: "text",
			LogLevel:     "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults; environment variables override values in both cases.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.applyEnv()
			if err := cfg.Validate(); err != nil {
				return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
			}
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	if err := config.checkSchemaVersion(); err != nil {
		return nil, err
	}

	config.applyDefaults()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file, replacing it atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to replace config file")
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// checkSchemaVersion rejects config files written by a newer tikgrab.
func (c *Config) checkSchemaVersion() error {
	if c.SchemaVersion == "" {
		c.SchemaVersion = CurrentSchemaVersion
		return nil
	}

	fileVersion, err := goversion.NewVersion(c.SchemaVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigParse, "invalid schema_version %q: %v", c.SchemaVersion, err)
	}
	current := goversion.Must(goversion.NewVersion(CurrentSchemaVersion))
	if fileVersion.GreaterThan(current) {
		return fmt.Errorf("config schema %s is newer than supported %s: %w",
			fileVersion, current, errors.ErrConfigValidation)
	}
	return nil
}

// applyDefaults fills zero values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.SchemaVersion == "" {
		c.SchemaVersion = CurrentSchemaVersion
	}
	if c.Settings.DownloadDir == "" {
		c.Settings.DownloadDir = defaults.Settings.DownloadDir
	}
	if c.Settings.MaxRetries == 0 {
		c.Settings.MaxRetries = defaults.Settings.MaxRetries
	}
	if c.Settings.ChunkSize == 0 {
		c.Settings.ChunkSize = defaults.Settings.ChunkSize
	}
	if c.Settings.Concurrency == 0 {
		c.Settings.Concurrency = defaults.Settings.Concurrency
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.CookieDir == "" {
		c.Settings.CookieDir = defaults.Settings.CookieDir
	}
	if c.Settings.HookDir == "" {
		c.Settings.HookDir = defaults.Settings.HookDir
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}

// applyEnv overrides settings from TIKGRAB_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv(envPrefix + "DOWNLOAD_DIR"); v != "" {
		c.Settings.DownloadDir = v
	}
	if v := os.Getenv(envPrefix + "MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Settings.MaxRetries = n
		}
	}
	if v := os.Getenv(envPrefix + "CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Settings.ChunkSize = n
		}
	}
	if v := os.Getenv(envPrefix + "CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Settings.Concurrency = n
		}
	}
	if v := os.Getenv(envPrefix + "USER_AGENT"); v != "" {
		c.Settings.UserAgent = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Settings.LogLevel = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	s := c.Settings

	if strings.TrimSpace(s.DownloadDir) == "" {
		return fmt.Errorf("download_dir must be a non-empty path")
	}
	if s.MaxRetries < 0 || s.MaxRetries > maxRetriesLimit {
		return fmt.Errorf("max_retries must be between 0 and %d, got %d", maxRetriesLimit, s.MaxRetries)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be greater than 0, got %d", s.ChunkSize)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency)
	}
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	if strings.TrimSpace(s.UserAgent) == "" {
		return fmt.Errorf("user_agent must be a non-empty string")
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return fmt.Errorf("output_format must be one of text, json; got %q", s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := getUserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine user config directory")
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func getUserConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, fsutil.AppName), nil
}
