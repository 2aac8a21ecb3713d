package config

import (
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.Tools.YtDlp = strings.TrimSpace(c.Tools.YtDlp)
	c.Playlist.Lister = strings.ToLower(strings.TrimSpace(c.Playlist.Lister))
	if c.Playlist.Lister == "" {
		c.Playlist.Lister = defaultLister
	}
	if c.Playlist.ListTimeoutSecs <= 0 {
		c.Playlist.ListTimeoutSecs = defaultListTimeout
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	for _, field := range []*string{
		&c.Paths.DownloadDir,
		&c.Paths.FFmpegDir,
		&c.Paths.HistoryPath,
		&c.Paths.LogDir,
	} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func (c *Config) normalizeDownload() {
	if c.Download.MaxParallel < MinParallel {
		c.Download.MaxParallel = MinParallel
	}
	if c.Download.MaxParallel > MaxParallel {
		c.Download.MaxParallel = MaxParallel
	}
	if c.Download.SearchLimit <= 0 {
		c.Download.SearchLimit = defaultSearchLimit
	}
	if c.Download.MetadataTimeoutSecs < 0 {
		c.Download.MetadataTimeoutSecs = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
