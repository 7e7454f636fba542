package config

import (
	"fmt"
	"strconv"
	"time"
)

// SetValue sets a configuration value by key. Used by `tikgrab config set`.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "download_dir":
		c.Settings.DownloadDir = value
	case "max_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		c.Settings.MaxRetries = n
	case "chunk_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		c.Settings.ChunkSize = n
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		c.Settings.Concurrency = n
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "user_agent":
		c.Settings.UserAgent = value
	case "cookie_dir":
		c.Settings.CookieDir = value
	case "hook_dir":
		c.Settings.HookDir = value
	case "bundle_slideshows":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		c.Settings.BundleSlideshows = b
	case "output_format":
		c.Settings.OutputFormat = value
	case "log_level":
		c.Settings.LogLevel = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return c.Validate()
}

// GetValue returns a configuration value by key as a string.
func (c *Config) GetValue(key string) (string, error) {
	values := c.ToMap()
	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// ToMap returns all settings as a flat string map, for display.
func (c *Config) ToMap() map[string]string {
	return map[string]string{
		"download_dir":      c.Settings.DownloadDir,
		"max_retries":       strconv.Itoa(c.Settings.MaxRetries),
		"chunk_size":        strconv.Itoa(c.Settings.ChunkSize),
		"concurrency":       strconv.Itoa(c.Settings.Concurrency),
		"http_timeout":      c.Settings.HTTPTimeout.String(),
		"user_agent":        c.Settings.UserAgent,
		"cookie_dir":        c.Settings.CookieDir,
		"hook_dir":          c.Settings.HookDir,
		"bundle_slideshows": strconv.FormatBool(c.Settings.BundleSlideshows),
		"output_format":     c.Settings.OutputFormat,
		"log_level":         c.Settings.LogLevel,
	}
}
