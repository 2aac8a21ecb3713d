package config

import (
	"github.com/ytget/yt-fetch/internal/platform"
)

const (
	fallbackDownloadDir = "~/Downloads"
	defaultMaxParallel  = 1
	defaultSearchLimit  = 10
	defaultLister       = ListerYtDlp
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultTitleWait    = 30
	defaultListTimeout  = 60
)

// Bounds for tunables
const (
	MinParallel    = 1
	MaxParallel    = 10
	MaxSearchLimit = 50
)

// Playlist listers
const (
	ListerYtDlp  = "ytdlp"
	ListerNative = "native"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir(),
		},
		Download: Download{
			MaxParallel:         defaultMaxParallel,
			SearchLimit:         defaultSearchLimit,
			MetadataTimeoutSecs: defaultTitleWait,
		},
		Playlist: Playlist{
			Lister:          defaultLister,
			ListTimeoutSecs: defaultListTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// defaultDownloadDir is the user's Downloads folder, or the unexpanded
// fallback when the home directory is unknown.
func defaultDownloadDir() string {
	if dir, err := platform.GetHomeDownloadsDir(); err == nil {
		return dir
	}
	return fallbackDownloadDir
}
