package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-fetch/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	DefaultPlaylistName = "Unknown Playlist"
	MinPrefixLength     = 10
	PlaylistSuffix      = " Playlist"
)

// NativeLister enumerates YouTube playlists without spawning yt-dlp.
// It only understands references that carry a list= ID.
type NativeLister struct {
	timeout time.Duration
}

// NewNativeLister creates a lister with the default timeout
func NewNativeLister() *NativeLister {
	return &NativeLister{
		timeout: DefaultParseTimeout,
	}
}

// SetTimeout sets the timeout for enumeration
func (n *NativeLister) SetTimeout(timeout time.Duration) {
	n.timeout = timeout
}

// List returns the playlist title and its items in playlist order
func (n *NativeLister) List(ctx context.Context, ref string) (string, []model.SearchResult, error) {
	playlistID, err := ExtractPlaylistID(ref)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", model.ErrResolutionFailed, err)
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return "", nil, fmt.Errorf("%w: get playlist items: %v", model.ErrResolutionFailed, err)
	}

	results := make([]model.SearchResult, 0, len(items))
	for _, it := range items {
		results = append(results, model.SearchResult{
			Reference: fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
			Title:     it.Title,
		})
	}
	return collectionTitle(results), results, nil
}

// collectionTitle derives a title from item titles, since the item listing
// carries no playlist name
func collectionTitle(items []model.SearchResult) string {
	if len(items) == 0 {
		return DefaultPlaylistName
	}
	if len(items) > 1 {
		prefix := commonPrefix(items[0].Title, items[1].Title)
		if len(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix) + PlaylistSuffix
		}
	}
	return items[0].Title + PlaylistSuffix
}

func commonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
