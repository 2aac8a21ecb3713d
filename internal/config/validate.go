package config

import (
	"errors"
	"fmt"
)

// Validate checks the normalized configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Download.SearchLimit > MaxSearchLimit {
		errs = append(errs, fmt.Errorf("download.search_limit must be <= %d, got %d", MaxSearchLimit, c.Download.SearchLimit))
	}
	switch c.Playlist.Lister {
	case ListerYtDlp, ListerNative:
	default:
		errs = append(errs, fmt.Errorf("playlist.lister: unsupported value %q (want %q or %q)", c.Playlist.Lister, ListerYtDlp, ListerNative))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}
