package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ytget/yt-fetch/internal/model"
)

type fakeService struct {
	mu       sync.Mutex
	info     *Info
	err      error
	requests []MetadataRequest
	deadline bool
}

func (f *fakeService) ResolveMetadata(ctx context.Context, req MetadataRequest) (*Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func (f *fakeService) Transfer(context.Context, TransferRequest) (*TransferResult, error) {
	return nil, errors.New("not used")
}

func searchInfo(n int) *Info {
	info := &Info{Type: "playlist", Title: "query"}
	for i := 1; i <= n; i++ {
		info.Entries = append(info.Entries, &Info{
			ID:         fmt.Sprintf("id%d", i),
			Title:      fmt.Sprintf("Song %d", i),
			Channel:    "Channel",
			URL:        fmt.Sprintf("https://www.youtube.com/watch?v=id%d", i),
			Thumbnails: []Thumbnail{{URL: fmt.Sprintf("https://i.ytimg.com/%d.jpg", i)}},
		})
	}
	return info
}

func TestSearch(t *testing.T) {
	svc := &fakeService{info: searchInfo(3)}
	r := New(svc, nil)

	results := r.Search(context.Background(), "lofi beats", 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if got := svc.requests[0]; got.Target != "ytsearch3:lofi beats" || !got.Flat {
		t.Fatalf("unexpected request %+v", got)
	}
	first := results[0]
	if first.Title != "Song 1" || first.Channel != "Channel" || first.ThumbnailURL != "https://i.ytimg.com/1.jpg" {
		t.Fatalf("unexpected first result %+v", first)
	}
	if first.Reference != "https://www.youtube.com/watch?v=id1" {
		t.Fatalf("Reference = %q", first.Reference)
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	for _, limit := range []int{0, -4} {
		svc := &fakeService{info: searchInfo(1)}
		New(svc, nil).Search(context.Background(), "q", limit)
		if svc.requests[0].Target != "ytsearch10:q" {
			t.Fatalf("limit %d: target = %q", limit, svc.requests[0].Target)
		}
	}
}

func TestSearchEmptyNeverErrors(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
	}{
		{"zero entries", &fakeService{info: &Info{Type: "playlist"}}},
		{"only nil entries", &fakeService{info: &Info{Entries: []*Info{nil, nil}}}},
		{"service failure", &fakeService{err: fmt.Errorf("%w: network down", model.ErrResolutionFailed)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.svc, nil).Search(context.Background(), "nothing", 5); got != nil {
				t.Fatalf("expected nil, got %v", got)
			}
		})
	}
}

func TestSearchBlankQuerySkipsService(t *testing.T) {
	svc := &fakeService{info: searchInfo(1)}
	if got := New(svc, nil).Search(context.Background(), "   ", 5); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if len(svc.requests) != 0 {
		t.Fatalf("expected no service call, got %d", len(svc.requests))
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
		want string
	}{
		{"resolved", &fakeService{info: &Info{Title: "  My Song "}}, "My Song"},
		{"empty title", &fakeService{info: &Info{}}, model.UnknownTitle},
		{"failure", &fakeService{err: model.ErrResolutionFailed}, model.UnknownTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.svc, nil).Title(context.Background(), "https://x/watch?v=1"); got != tt.want {
				t.Fatalf("Title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetadataTimeout(t *testing.T) {
	svc := &fakeService{info: &Info{Title: "t"}}
	r := New(svc, nil)

	r.Title(context.Background(), "ref")
	if svc.deadline {
		t.Fatal("expected no deadline by default")
	}

	r.SetMetadataTimeout(time.Second)
	r.Title(context.Background(), "ref")
	if !svc.deadline {
		t.Fatal("expected deadline once timeout is set")
	}
}

func TestCollection(t *testing.T) {
	svc := &fakeService{info: searchInfo(2)}
	title, items, err := New(svc, nil).Collection(context.Background(), "https://x/playlist?list=PL1")
	if err != nil {
		t.Fatalf("Collection returned error: %v", err)
	}
	if title != "query" || len(items) != 2 {
		t.Fatalf("got %q with %d items", title, len(items))
	}
}

func TestCollectionErrors(t *testing.T) {
	_, _, err := New(&fakeService{info: &Info{Title: "empty"}}, nil).Collection(context.Background(), "ref")
	if !errors.Is(err, model.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}

	_, _, err = New(&fakeService{err: errors.New("exit status 1")}, nil).Collection(context.Background(), "ref")
	if !errors.Is(err, model.ErrResolutionFailed) {
		t.Fatalf("expected ErrResolutionFailed, got %v", err)
	}
}

func TestInfoHelpers(t *testing.T) {
	tests := []struct {
		name      string
		info      Info
		ref       string
		channel   string
		thumbnail string
	}{
		{"webpage preferred", Info{WebpageURL: "https://w", URL: "https://u", Channel: "c"}, "https://w", "c", ""},
		{"url fallback", Info{URL: "https://u", Uploader: "up"}, "https://u", "up", ""},
		{"id fallback", Info{ID: "abc", Thumbnail: "https://t"}, "https://www.youtube.com/watch?v=abc", "", "https://t"},
		{"first thumbnail", Info{Thumbnails: []Thumbnail{{}, {URL: "https://a"}, {URL: "https://b"}}}, "", "", "https://a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Reference(); got != tt.ref {
				t.Errorf("Reference = %q, want %q", got, tt.ref)
			}
			if got := tt.info.ChannelName(); got != tt.channel {
				t.Errorf("ChannelName = %q, want %q", got, tt.channel)
			}
			if got := tt.info.ThumbnailURL(); got != tt.thumbnail {
				t.Errorf("ThumbnailURL = %q, want %q", got, tt.thumbnail)
			}
		})
	}
}

func TestStderrTail(t *testing.T) {
	stderr := "WARNING: a\n\nERROR: b\nERROR: c\n"
	if got := stderrTail(stderr, 2); got != "ERROR: b; ERROR: c" {
		t.Fatalf("stderrTail = %q", got)
	}
	if got := stderrTail("", 3); got != "" {
		t.Fatalf("stderrTail(empty) = %q", got)
	}
}

func TestPrintedPaths(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "song.mp3")
	stdout := strings.Join([]string{"NA", "[download] 50%", file, dir, ""}, "\n")

	got := printedPaths(stdout)
	if len(got) != 1 || got[0] != file {
		t.Fatalf("printedPaths = %v", got)
	}
	if (&TransferResult{Files: got}).LastFile() != file {
		t.Fatal("LastFile mismatch")
	}
	var empty *TransferResult
	if empty.LastFile() != "" {
		t.Fatal("nil result should report no file")
	}
}
