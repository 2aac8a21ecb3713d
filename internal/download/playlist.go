package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ytget/yt-fetch/internal/logging"
	"github.com/ytget/yt-fetch/internal/model"
	"github.com/ytget/yt-fetch/internal/platform"
)

// FetchCollection fetches every item of a playlist into a directory named
// after the playlist. Item failures are recorded and never stop the rest.
func (f *Fetcher) FetchCollection(ctx context.Context, ref, dir string, audioOnly bool) model.CollectionSummary {
	logger := logging.WithContext(ctx, f.logger)

	if !platform.IsCollection(ref) {
		return model.SingleFailure(ref, model.StageResolve, model.ReasonNotAPlaylist, model.ErrNotACollection)
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return model.SingleFailure(ref, model.StageFetch, model.ReasonNoValidPath, model.ErrNoValidOutputPath)
	}

	title, items, err := f.enumerate(ctx, ref)
	if err != nil {
		if !errors.Is(err, model.ErrResolutionFailed) {
			err = fmt.Errorf("%w: %w", model.ErrResolutionFailed, err)
		}
		logger.Warn("playlist enumeration failed", logging.FieldReference, ref, "error", err)
		return model.SingleFailure(ref, model.StageResolve, err.Error(), err)
	}

	collectionDir := filepath.Join(dir, platform.SafeFileStem(title))
	if err := platform.CreateDirectoryIfNotExists(collectionDir); err != nil {
		return model.SingleFailure(ref, model.StageFetch, err.Error(), fmt.Errorf("%w: %w", model.ErrNoValidOutputPath, err))
	}

	kind := model.KindFor(audioOnly)
	logger.Info("playlist starting", "title", title, "items", len(items), "directory", collectionDir, "kind", kind)

	summary := model.CollectionSummary{
		Reference: ref,
		Title:     title,
		Directory: collectionDir,
		Outcomes:  f.fetchAll(ctx, items, collectionDir, kind),
	}
	logger.Info("playlist finished",
		"title", title,
		"succeeded", summary.Succeeded(),
		"degraded", summary.Degraded(),
		"failed", summary.Failed(),
	)
	return summary
}

// fetchAll runs items with bounded fan-out. Outcomes keep enumeration order.
func (f *Fetcher) fetchAll(ctx context.Context, items []model.SearchResult, dir string, kind model.MediaKind) []model.Outcome {
	f.mu.RLock()
	limit := f.maxParallel
	f.mu.RUnlock()

	// Titled items claim their stems in enumeration order so duplicate
	// titles are numbered the same way on every run.
	claims := newStemClaims()
	stems := make([]string, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.Title) != "" {
			stems[i] = claims.claim(platform.SafeFileStem(item.Title))
		}
	}

	outcomes := make([]model.Outcome, len(items))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item model.SearchResult) {
			defer wg.Done()
			defer func() { <-sem }()
			stemFor := func(title string) string {
				if stems[i] != "" {
					return stems[i]
				}
				return claims.claim(platform.SafeFileStem(title))
			}
			outcomes[i] = f.run(ctx, model.FetchRequest{
				Reference:       item.Reference,
				Title:           item.Title,
				OutputDirectory: dir,
				Kind:            kind,
			}, stemFor)
		}(i, item)
	}
	wg.Wait()
	return outcomes
}

func (f *Fetcher) enumerate(ctx context.Context, ref string) (string, []model.SearchResult, error) {
	f.mu.RLock()
	native := f.native
	f.mu.RUnlock()

	if native != nil {
		if _, err := platform.ExtractPlaylistID(ref); err == nil {
			title, items, err := native.List(ctx, ref)
			if err == nil && len(items) > 0 {
				return title, items, nil
			}
			logging.WithContext(ctx, f.logger).Warn("native playlist listing failed, using resolution service",
				logging.FieldReference, ref, "error", err)
		}
	}
	return f.resolver.Collection(ctx, ref)
}

// stemClaims hands out distinct file stems within one collection directory.
// Keys are case-folded since macOS and Windows file systems are.
type stemClaims struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

func newStemClaims() *stemClaims {
	return &stemClaims{taken: make(map[string]struct{})}
}

// claim returns stem, or stem with "_2", "_3", ... appended when an earlier
// item already holds it.
func (c *stemClaims) claim(stem string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := stem
	for n := 2; ; n++ {
		key := strings.ToLower(candidate)
		if _, ok := c.taken[key]; !ok {
			c.taken[key] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", stem, n)
	}
}
