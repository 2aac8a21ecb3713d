package resolver

import (
	"context"
	"fmt"

	"github.com/ytget/yt-fetch/internal/model"
)

// Service is the resolution service contract.
type Service interface {
	// ResolveMetadata returns metadata without downloading media.
	ResolveMetadata(ctx context.Context, req MetadataRequest) (*Info, error)
	// Transfer downloads media per the request and reports the files written.
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

// MetadataRequest selects what to resolve. Flat lists collection entries
// without resolving each one.
type MetadataRequest struct {
	Target string
	Flat   bool
}

// TransferRequest describes a single download.
type TransferRequest struct {
	Reference      string
	Format         string
	OutputTemplate string // {dir}/{stem}.%(ext)s
	ToolDir        string // ffmpeg directory; empty lets the tool search PATH

	ExtractAudio bool
	AudioCodec   string
	AudioQuality string
	MergeFormat  string

	IgnoreErrors bool
	Progress     func(model.Progress)
}

// TransferResult lists the final file paths reported by the tool.
type TransferResult struct {
	Files []string
}

// LastFile returns the last reported path, or "" if none
func (r *TransferResult) LastFile() string {
	if r == nil || len(r.Files) == 0 {
		return ""
	}
	return r.Files[len(r.Files)-1]
}

// Thumbnail is one entry of Info.Thumbnails.
type Thumbnail struct {
	URL string `json:"url"`
}

// Info mirrors the subset of the yt-dlp info JSON used by yt-fetch.
type Info struct {
	ID         string      `json:"id"`
	Type       string      `json:"_type"`
	Title      string      `json:"title"`
	Channel    string      `json:"channel"`
	Uploader   string      `json:"uploader"`
	URL        string      `json:"url"`
	WebpageURL string      `json:"webpage_url"`
	Ext        string      `json:"ext"`
	Thumbnail  string      `json:"thumbnail"`
	Thumbnails []Thumbnail `json:"thumbnails"`
	Entries    []*Info     `json:"entries"`
}

// Reference returns the best locator for the entry
func (i *Info) Reference() string {
	switch {
	case i.WebpageURL != "":
		return i.WebpageURL
	case i.URL != "":
		return i.URL
	case i.ID != "":
		return fmt.Sprintf("https://www.youtube.com/watch?v=%s", i.ID)
	}
	return ""
}

// ChannelName returns the channel, falling back to the uploader
func (i *Info) ChannelName() string {
	if i.Channel != "" {
		return i.Channel
	}
	return i.Uploader
}

// ThumbnailURL returns the first listed thumbnail, or "" when there is none
func (i *Info) ThumbnailURL() string {
	for _, thumb := range i.Thumbnails {
		if thumb.URL != "" {
			return thumb.URL
		}
	}
	return i.Thumbnail
}

// SearchResult converts the entry for the presentation shell
func (i *Info) SearchResult() model.SearchResult {
	return model.SearchResult{
		Reference:    i.Reference(),
		Title:        i.Title,
		Channel:      i.ChannelName(),
		ThumbnailURL: i.ThumbnailURL(),
	}
}

// Results converts every non-nil entry
func (i *Info) Results() []model.SearchResult {
	if i == nil {
		return nil
	}
	out := make([]model.SearchResult, 0, len(i.Entries))
	for _, entry := range i.Entries {
		if entry == nil {
			continue
		}
		out = append(out, entry.SearchResult())
	}
	return out
}
