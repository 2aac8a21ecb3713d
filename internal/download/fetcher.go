package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ytget/yt-fetch/internal/compress"
	"github.com/ytget/yt-fetch/internal/logging"
	"github.com/ytget/yt-fetch/internal/model"
	"github.com/ytget/yt-fetch/internal/platform"
	"github.com/ytget/yt-fetch/internal/resolver"
)

// DefaultMaxParallel is the playlist fan-out when none is configured.
const DefaultMaxParallel = 1

// Fetcher runs single items and collections through the pipeline.
type Fetcher struct {
	resolver   *resolver.Resolver
	normalizer compress.Normalizer
	tools      ToolDirectory
	native     CollectionLister
	logger     *slog.Logger

	mu          sync.RWMutex
	maxParallel int
}

// NewFetcher wires a fetcher. tools may be nil, in which case the
// resolution service finds ffmpeg on PATH.
func NewFetcher(res *resolver.Resolver, normalizer compress.Normalizer, tools ToolDirectory, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		resolver:    res,
		normalizer:  normalizer,
		tools:       tools,
		logger:      logger.With(logging.FieldComponent, "fetcher"),
		maxParallel: DefaultMaxParallel,
	}
}

// SetMaxParallel sets how many playlist items run at once
func (f *Fetcher) SetMaxParallel(n int) {
	if n < 1 {
		n = 1
	}
	f.mu.Lock()
	f.maxParallel = n
	f.mu.Unlock()
}

// SetCollectionLister installs a lister tried before the resolution
// service for references carrying a playlist ID.
func (f *Fetcher) SetCollectionLister(l CollectionLister) {
	f.mu.Lock()
	f.native = l
	f.mu.Unlock()
}

// Fetch downloads one item. It never returns an error: every failure is
// reported through the outcome.
func (f *Fetcher) Fetch(ctx context.Context, req model.FetchRequest) model.Outcome {
	return f.run(ctx, req, platform.SafeFileStem)
}

// run is Fetch with the title-to-stem mapping supplied by the caller.
func (f *Fetcher) run(ctx context.Context, req model.FetchRequest, stemFor func(title string) string) model.Outcome {
	started := time.Now()
	out := f.fetch(ctx, req, stemFor)
	out.Reference = req.Reference
	out.Elapsed = time.Since(started)

	logger := logging.WithContext(ctx, f.logger)
	switch {
	case out.OK():
		logger.Info("fetch finished", logging.FieldPath, out.Path, "elapsed", out.Elapsed)
	case out.Degraded():
		logger.Warn("fetch finished without normalization", logging.FieldPath, out.Path, "error", out.Err())
	default:
		logger.Warn("fetch failed", logging.FieldReference, req.Reference, logging.FieldStage, out.Stage(), "error", out.Err())
	}
	return out
}

func (f *Fetcher) fetch(ctx context.Context, req model.FetchRequest, stemFor func(title string) string) model.Outcome {
	dir := strings.TrimSpace(req.OutputDirectory)
	if dir == "" {
		return model.Failed(req.Reference, model.StageFetch, model.ReasonNoValidPath, model.ErrNoValidOutputPath)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = f.resolver.Title(ctx, req.Reference)
	}
	stem := stemFor(title)

	lock, err := platform.LockPath(ctx, filepath.Join(dir, stem))
	if err != nil {
		return withTitle(model.Failed(req.Reference, model.StageFetch, err.Error(), fmt.Errorf("%w: %w", model.ErrTransferFailed, err)), title)
	}
	defer lock.Unlock()

	path, failed := f.transfer(ctx, req, dir, stem)
	if failed != nil {
		return withTitle(*failed, title)
	}

	if !req.Kind.IsVideo() {
		return model.Succeeded(req.Reference, title, path)
	}

	if !platform.FileExists(path) {
		reason := "transferred file not found: " + path
		return withTitle(model.Failed(req.Reference, model.StageFetch, reason, model.ErrTransferFailed), title)
	}

	normalized, err := f.normalizer.Normalize(ctx, path)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, model.ErrToolNotFound) {
			reason = model.ReasonToolNotFound
		}
		return model.Outcome{
			Reference: req.Reference,
			Title:     title,
			Path:      path,
			Failure:   &model.Failure{Stage: model.StageNormalize, Reason: reason, Err: err},
		}
	}
	return model.Succeeded(req.Reference, title, normalized)
}

// transfer runs the resolution service and returns the final file path.
func (f *Fetcher) transfer(ctx context.Context, req model.FetchRequest, dir, stem string) (string, *model.Outcome) {
	logger := logging.WithContext(ctx, f.logger)

	var toolDir string
	if f.tools != nil {
		toolDir = f.tools.ToolDir()
	}
	treq := transferRequest(req.Kind, req.Reference, platform.OutputTemplate(dir, stem), toolDir)
	treq.Progress = func(p model.Progress) {
		logger.Debug("transfer progress",
			"file", filepath.Base(p.Filename),
			"downloaded", humanize.Bytes(uint64(max(p.Downloaded, 0))),
			"total", humanize.Bytes(uint64(max(p.Total, 0))),
			"percent", p.Percent(),
			"eta", p.ETAString(),
		)
	}

	logger.Debug("transfer starting", logging.FieldReference, req.Reference, "kind", req.Kind, "template", treq.OutputTemplate)
	result, err := f.resolver.Service().Transfer(ctx, treq)
	if err != nil {
		if !errors.Is(err, model.ErrTransferFailed) {
			err = fmt.Errorf("%w: %w", model.ErrTransferFailed, err)
		}
		failed := model.Failed(req.Reference, model.StageFetch, err.Error(), err)
		return "", &failed
	}

	if path := result.LastFile(); path != "" {
		return path, nil
	}
	if path, ok := platform.FindByStem(dir, stem); ok {
		return path, nil
	}
	return platform.ExpectedPath(dir, stem, expectedExtension(req.Kind)), nil
}

func withTitle(o model.Outcome, title string) model.Outcome {
	o.Title = title
	return o
}
