package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ytget/yt-fetch/internal/compress"
	"github.com/ytget/yt-fetch/internal/config"
	"github.com/ytget/yt-fetch/internal/download"
	"github.com/ytget/yt-fetch/internal/history"
	"github.com/ytget/yt-fetch/internal/logging"
	"github.com/ytget/yt-fetch/internal/platform"
	"github.com/ytget/yt-fetch/internal/resolver"
)

type commandContext struct {
	configFlag string
	logLevel   string
	logFormat  string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	// newDownloader and reveal are replaced in tests
	newDownloader func(ctx context.Context) (download.Downloader, error)
	reveal        func(path string) error

	mu      sync.Mutex
	closers []func() error
}

func newCommandContext() *commandContext {
	c := &commandContext{reveal: platform.RevealInFileManager}
	c.newDownloader = c.buildDownloader
	return c
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevel != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(c.logLevel))
		}
		if c.logFormat != "" {
			cfg.Logging.Format = strings.ToLower(strings.TrimSpace(c.logFormat))
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) onClose(fn func() error) {
	c.mu.Lock()
	c.closers = append(c.closers, fn)
	c.mu.Unlock()
}

func (c *commandContext) close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *commandContext) downloader(ctx context.Context) (download.Downloader, error) {
	return c.newDownloader(ctx)
}

func (c *commandContext) locator() *platform.Locator {
	var base string
	if cfg, _ := c.ensureConfig(); cfg != nil {
		base = cfg.Paths.FFmpegDir
	}
	return platform.NewLocator(base)
}

func (c *commandContext) openHistory(ctx context.Context) (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.HistoryEnabled() {
		return nil, nil
	}
	store, err := history.Open(ctx, cfg.Paths.HistoryPath)
	if err != nil {
		return nil, err
	}
	c.onClose(store.Close)
	return store, nil
}

// buildDownloader wires the production pipeline from configuration.
func (c *commandContext) buildDownloader(ctx context.Context) (download.Downloader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.ensureLogger()

	res := resolver.New(resolver.NewYTDLP(cfg.Tools.YtDlp), logger)
	res.SetMetadataTimeout(cfg.MetadataTimeout())

	locator := c.locator()
	fetcher := download.NewFetcher(res, compress.NewService(locator, logger), locator, logger)
	fetcher.SetMaxParallel(cfg.Download.MaxParallel)
	if cfg.Playlist.Lister == config.ListerNative {
		lister := platform.NewNativeLister()
		lister.SetTimeout(cfg.ListTimeout())
		fetcher.SetCollectionLister(lister)
	}

	svc := download.NewService(res, fetcher, logger)
	svc.SetSearchLimit(cfg.Download.SearchLimit)

	store, err := c.openHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if store != nil {
		svc.SetRecorder(store)
	}
	return svc, nil
}

// outputDir returns the --dir value, falling back to paths.download_dir.
func (c *commandContext) outputDir(flag string) (string, error) {
	if strings.TrimSpace(flag) != "" {
		return config.ExpandPath(strings.TrimSpace(flag))
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.DownloadDir, nil
}
