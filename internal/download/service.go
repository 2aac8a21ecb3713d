package download

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/yt-fetch/internal/history"
	"github.com/ytget/yt-fetch/internal/logging"
	"github.com/ytget/yt-fetch/internal/model"
	"github.com/ytget/yt-fetch/internal/resolver"
)

// RequestIDPrefix marks identifiers generated without a UUID source.
const RequestIDPrefix = "req-"

// Service is the orchestrator the presentation shell calls.
type Service struct {
	resolver    *resolver.Resolver
	fetcher     *Fetcher
	recorder    Recorder
	searchLimit int
	logger      *slog.Logger
}

var _ Downloader = (*Service)(nil)

// NewService creates the orchestrator
func NewService(res *resolver.Resolver, fetcher *Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		resolver:    res,
		fetcher:     fetcher,
		searchLimit: resolver.DefaultSearchLimit,
		logger:      logger.With(logging.FieldComponent, "service"),
	}
}

// SetRecorder enables outcome recording
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetSearchLimit sets how many results Search asks for
func (s *Service) SetSearchLimit(n int) {
	s.searchLimit = n
}

// Search returns matches for query, or nil when there are none.
func (s *Service) Search(ctx context.Context, query string) []model.SearchResult {
	ctx = s.begin(ctx)
	return s.resolver.Search(ctx, query, s.searchLimit)
}

// Title resolves the display title of ref.
func (s *Service) Title(ctx context.Context, ref string) string {
	ctx = s.begin(ctx)
	return s.resolver.Title(ctx, ref)
}

// FetchAudio downloads ref as mp3 into dir.
func (s *Service) FetchAudio(ctx context.Context, ref, title, dir string) model.Outcome {
	return s.fetchOne(ctx, model.FetchRequest{Reference: ref, Title: title, OutputDirectory: dir, Kind: model.MediaAudioOnly})
}

// FetchVideo downloads ref as a normalized mp4 into dir.
func (s *Service) FetchVideo(ctx context.Context, ref, title, dir string) model.Outcome {
	return s.fetchOne(ctx, model.FetchRequest{Reference: ref, Title: title, OutputDirectory: dir, Kind: model.MediaAudioVideo})
}

// FetchPlaylist downloads every item of a playlist into dir/<playlist title>.
func (s *Service) FetchPlaylist(ctx context.Context, ref, dir string, audioOnly bool) model.CollectionSummary {
	ctx = s.begin(ctx)
	summary := s.fetcher.FetchCollection(ctx, ref, dir, audioOnly)
	kind := model.KindFor(audioOnly)
	for _, o := range summary.Outcomes {
		s.record(ctx, kind, summary.Title, o)
	}
	return summary
}

func (s *Service) fetchOne(ctx context.Context, req model.FetchRequest) model.Outcome {
	ctx = s.begin(ctx)
	out := s.fetcher.Fetch(ctx, req)
	s.record(ctx, req.Kind, "", out)
	return out
}

// begin attaches a request identifier unless the caller already set one.
func (s *Service) begin(ctx context.Context) context.Context {
	if _, ok := logging.RequestIDFromContext(ctx); ok {
		return ctx
	}
	return logging.WithRequestID(ctx, newRequestID())
}

func (s *Service) record(ctx context.Context, kind model.MediaKind, collection string, o model.Outcome) {
	if s.recorder == nil {
		return
	}
	requestID, _ := logging.RequestIDFromContext(ctx)
	// records outlive caller cancellation
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.recorder.Record(recordCtx, history.NewEntry(requestID, kind, collection, o)); err != nil {
		logging.WithContext(ctx, s.logger).Warn("record outcome failed", "error", err)
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(RequestIDPrefix+"%d", time.Now().UnixNano())
	}
	return id.String()
}
