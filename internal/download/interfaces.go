package download

import (
	"context"

	"github.com/ytget/yt-fetch/internal/history"
	"github.com/ytget/yt-fetch/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	Search(ctx context.Context, query string) []model.SearchResult
	Title(ctx context.Context, ref string) string
	FetchAudio(ctx context.Context, ref, title, dir string) model.Outcome
	FetchVideo(ctx context.Context, ref, title, dir string) model.Outcome
	FetchPlaylist(ctx context.Context, ref, dir string, audioOnly bool) model.CollectionSummary
}

// CollectionLister enumerates the items of a collection reference.
type CollectionLister interface {
	List(ctx context.Context, ref string) (string, []model.SearchResult, error)
}

// ToolDirectory reports where the transcoding tool bundle lives.
type ToolDirectory interface {
	ToolDir() string
}

// Recorder persists outcomes.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}
