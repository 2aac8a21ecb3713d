package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ytget/yt-fetch/internal/logging"
	"github.com/ytget/yt-fetch/internal/model"
)

// DefaultSearchLimit applies when a caller passes a non-positive limit.
const DefaultSearchLimit = 10

// Resolver answers search, title, and collection lookups.
type Resolver struct {
	svc             Service
	logger          *slog.Logger
	metadataTimeout time.Duration
}

// New creates a resolver over svc. A nil logger discards output.
func New(svc Service, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		svc:    svc,
		logger: logger.With(logging.FieldComponent, "resolver"),
	}
}

// SetMetadataTimeout bounds Search and Title calls. Zero disables the deadline.
func (r *Resolver) SetMetadataTimeout(timeout time.Duration) {
	r.metadataTimeout = timeout
}

// Service returns the underlying resolution service
func (r *Resolver) Service() Service {
	return r.svc
}

func (r *Resolver) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.metadataTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.metadataTimeout)
}

// Search returns up to limit matches for query. Any failure, including zero
// matches, yields nil; the cause is logged and never returned.
func (r *Resolver) Search(ctx context.Context, query string, limit int) []model.SearchResult {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	logger := logging.WithContext(ctx, r.logger)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Warn("search skipped", "reason", "empty query")
		return nil
	}

	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	info, err := r.svc.ResolveMetadata(ctx, MetadataRequest{
		Target: fmt.Sprintf("ytsearch%d:%s", limit, query),
		Flat:   true,
	})
	if err != nil {
		logger.Warn("search failed", "query", query, "error", err)
		return nil
	}

	results := info.Results()
	if len(results) == 0 {
		logger.Warn("search failed", "query", query, "error", model.ErrNoResults)
		return nil
	}
	if len(results) > limit {
		results = results[:limit]
	}
	logger.Debug("search resolved", "query", query, "results", len(results))
	return results
}

// Title resolves the display title of ref, or model.UnknownTitle.
func (r *Resolver) Title(ctx context.Context, ref string) string {
	logger := logging.WithContext(ctx, r.logger)

	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	info, err := r.svc.ResolveMetadata(ctx, MetadataRequest{Target: ref, Flat: true})
	if err != nil {
		logger.Warn("title lookup failed", logging.FieldReference, ref, "error", err)
		return model.UnknownTitle
	}
	title := strings.TrimSpace(info.Title)
	if title == "" {
		return model.UnknownTitle
	}
	return title
}

// Collection enumerates the entries of a collection without resolving them.
func (r *Resolver) Collection(ctx context.Context, ref string) (string, []model.SearchResult, error) {
	info, err := r.svc.ResolveMetadata(ctx, MetadataRequest{Target: ref, Flat: true})
	if err != nil {
		if errors.Is(err, model.ErrResolutionFailed) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %v", model.ErrResolutionFailed, err)
	}
	items := info.Results()
	if len(items) == 0 {
		return info.Title, nil, fmt.Errorf("%w: collection %s has no entries", model.ErrNoResults, ref)
	}
	return strings.TrimSpace(info.Title), items, nil
}
