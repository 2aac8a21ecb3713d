package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/ytget/yt-fetch/internal/compress"
	"github.com/ytget/yt-fetch/internal/model"
	"github.com/ytget/yt-fetch/internal/platform"
	"github.com/ytget/yt-fetch/internal/resolver"
)

// fakeService stands in for yt-dlp. Transfers write "{stem}.{ext}" next to
// the output template unless the reference is listed in failRefs.
type fakeService struct {
	mu        sync.Mutex
	info      *resolver.Info
	infoErr   error
	failRefs  map[string]bool
	noFile    bool
	noReport  bool
	metadata  []resolver.MetadataRequest
	transfers []resolver.TransferRequest
}

func (f *fakeService) ResolveMetadata(_ context.Context, req resolver.MetadataRequest) (*resolver.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata = append(f.metadata, req)
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	if f.info == nil {
		return &resolver.Info{}, nil
	}
	return f.info, nil
}

func (f *fakeService) Transfer(_ context.Context, req resolver.TransferRequest) (*resolver.TransferResult, error) {
	f.mu.Lock()
	f.transfers = append(f.transfers, req)
	fail, noFile, noReport := f.failRefs[req.Reference], f.noFile, f.noReport
	f.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("%w: ERROR: Video unavailable", model.ErrTransferFailed)
	}
	ext := AudioExtension
	if req.MergeFormat != "" {
		ext = req.MergeFormat
	}
	path := strings.Replace(req.OutputTemplate, platform.ExtTemplate, ext, 1)
	if !noFile {
		if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
			return nil, err
		}
	}
	if noReport {
		return &resolver.TransferResult{}, nil
	}
	return &resolver.TransferResult{Files: []string{path}}, nil
}

func (f *fakeService) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.metadata) + len(f.transfers)
}

type fakeNormalizer struct {
	calls int
	err   error
}

func (n *fakeNormalizer) Normalize(_ context.Context, input string) (string, error) {
	n.calls++
	if n.err != nil {
		return "", n.err
	}
	out := platform.NormalizedPath(input)
	if err := os.Rename(input, out); err != nil {
		return "", err
	}
	return out, nil
}

type staticLocator string

func (l staticLocator) FFmpegPath() (string, error) { return string(l), nil }

func newFetcher(svc resolver.Service, n compress.Normalizer) *Fetcher {
	return NewFetcher(resolver.New(svc, nil), n, nil, nil)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func stubFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\necho encoded > \"$last\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestFetchWithoutDirectoryMakesNoCalls(t *testing.T) {
	for _, dir := range []string{"", "   "} {
		svc := &fakeService{}
		out := newFetcher(svc, &fakeNormalizer{}).Fetch(context.Background(), model.FetchRequest{
			Reference:       "https://x/watch?v=1",
			OutputDirectory: dir,
			Kind:            model.MediaAudioOnly,
		})
		if out.OK() || out.Stage() != model.StageFetch || out.Failure.Reason != model.ReasonNoValidPath {
			t.Fatalf("dir %q: unexpected outcome %+v", dir, out)
		}
		if !errors.Is(out.Err(), model.ErrNoValidOutputPath) {
			t.Fatalf("expected ErrNoValidOutputPath, got %v", out.Err())
		}
		if svc.calls() != 0 {
			t.Fatalf("dir %q: expected zero service calls, got %d", dir, svc.calls())
		}
	}
}

func TestFetchAudio(t *testing.T) {
	dir := t.TempDir()
	svc := &fakeService{}
	norm := &fakeNormalizer{}

	out := newFetcher(svc, norm).Fetch(context.Background(), model.FetchRequest{
		Reference:       "https://x/watch?v=1",
		Title:           "My: Song?",
		OutputDirectory: dir,
		Kind:            model.MediaAudioOnly,
	})
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err())
	}
	if want := filepath.Join(dir, "My Song.mp3"); out.Path != want {
		t.Fatalf("Path = %q, want %q", out.Path, want)
	}
	if out.Title != "My: Song?" || out.Reference != "https://x/watch?v=1" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if norm.calls != 0 {
		t.Fatal("audio must not be normalized")
	}
	req := svc.transfers[0]
	if req.Format != AudioFormat || !req.ExtractAudio || req.AudioCodec != "mp3" || req.AudioQuality != "192" {
		t.Fatalf("unexpected audio request %+v", req)
	}
	if req.OutputTemplate != filepath.Join(dir, "My Song")+".%(ext)s" {
		t.Fatalf("OutputTemplate = %q", req.OutputTemplate)
	}
}

func TestFetchUnreportedPath(t *testing.T) {
	tests := []struct {
		name     string
		svc      *fakeService
		existing string
		want     string
	}{
		{"found on disk", &fakeService{noReport: true}, "", "Song.mp3"},
		{"other container on disk", &fakeService{noReport: true, noFile: true}, "Song.m4a", "Song.m4a"},
		{"expected path", &fakeService{noReport: true, noFile: true}, "", "Song.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.existing != "" {
				if err := os.WriteFile(filepath.Join(dir, tt.existing), []byte("x"), 0o644); err != nil {
					t.Fatalf("write: %v", err)
				}
			}
			out := newFetcher(tt.svc, &fakeNormalizer{}).Fetch(context.Background(), model.FetchRequest{
				Reference: "ref", Title: "Song", OutputDirectory: dir, Kind: model.MediaAudioOnly,
			})
			if !out.OK() || out.Path != filepath.Join(dir, tt.want) {
				t.Fatalf("unexpected outcome %+v", out)
			}
		})
	}
}

func TestFetchResolvesMissingTitle(t *testing.T) {
	dir := t.TempDir()
	svc := &fakeService{info: &resolver.Info{Title: "Resolved Title"}}

	out := newFetcher(svc, &fakeNormalizer{}).Fetch(context.Background(), model.FetchRequest{
		Reference: "ref", OutputDirectory: dir, Kind: model.MediaAudioOnly,
	})
	if out.Title != "Resolved Title" || out.Path != filepath.Join(dir, "Resolved Title.mp3") {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(svc.metadata) != 1 || svc.metadata[0].Target != "ref" {
		t.Fatalf("expected one title lookup, got %+v", svc.metadata)
	}
}

func TestFetchUnresolvableTitleUsesSentinel(t *testing.T) {
	dir := t.TempDir()
	svc := &fakeService{infoErr: model.ErrResolutionFailed}

	out := newFetcher(svc, &fakeNormalizer{}).Fetch(context.Background(), model.FetchRequest{
		Reference: "ref", OutputDirectory: dir, Kind: model.MediaAudioOnly,
	})
	if out.Path != filepath.Join(dir, model.UnknownTitle+".mp3") {
		t.Fatalf("Path = %q", out.Path)
	}
}

func TestFetchTransferFailure(t *testing.T) {
	svc := &fakeService{failRefs: map[string]bool{"ref": true}}
	norm := &fakeNormalizer{}

	out := newFetcher(svc, norm).Fetch(context.Background(), model.FetchRequest{
		Reference: "ref", Title: "Song", OutputDirectory: t.TempDir(), Kind: model.MediaAudioVideo,
	})
	if out.Stage() != model.StageFetch || !errors.Is(out.Err(), model.ErrTransferFailed) {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !strings.Contains(out.Failure.Reason, "Video unavailable") {
		t.Fatalf("Reason = %q", out.Failure.Reason)
	}
	if norm.calls != 0 {
		t.Fatal("normalizer must not run after a failed transfer")
	}
}

func TestFetchVideoMissingFileIsFetchFailure(t *testing.T) {
	svc := &fakeService{noFile: true}
	norm := &fakeNormalizer{}

	out := newFetcher(svc, norm).Fetch(context.Background(), model.FetchRequest{
		Reference: "ref", Title: "Clip", OutputDirectory: t.TempDir(), Kind: model.MediaAudioVideo,
	})
	if out.Stage() != model.StageFetch || !strings.HasPrefix(out.Failure.Reason, "transferred file not found") {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if norm.calls != 0 {
		t.Fatal("normalizer must not run without a file")
	}
}

func TestFetchVideoSuccessLeavesOnlyNormalizedFile(t *testing.T) {
	dir := t.TempDir()
	svc := &fakeService{}
	normalizer := compress.NewService(staticLocator(stubFFmpeg(t)), nil)

	out := newFetcher(svc, normalizer).Fetch(context.Background(), model.FetchRequest{
		Reference: "ref", Title: "Clip", OutputDirectory: dir, Kind: model.MediaAudioVideo,
	})
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err())
	}
	if want := filepath.Join(dir, "Clip_fixed.mp4"); out.Path != want {
		t.Fatalf("Path = %q, want %q", out.Path, want)
	}
	if names := listDir(t, dir); len(names) != 1 || names[0] != "Clip_fixed.mp4" {
		t.Fatalf("expected only Clip_fixed.mp4, got %v", names)
	}
	req := svc.transfers[0]
	if req.Format != VideoFormat || req.MergeFormat != "mp4" || req.ExtractAudio {
		t.Fatalf("unexpected video request %+v", req)
	}
}

func TestFetchVideoToolMissingKeepsOriginal(t *testing.T) {
	t.Setenv("PATH", "")
	dir := t.TempDir()
	locator := platform.NewLocator(t.TempDir())
	normalizer := compress.NewService(locator, nil)

	out := NewFetcher(resolver.New(&fakeService{}, nil), normalizer, locator, nil).Fetch(context.Background(), model.FetchRequest{
		Reference: "ref", Title: "Clip", OutputDirectory: dir, Kind: model.MediaAudioVideo,
	})
	if out.OK() || !out.Degraded() {
		t.Fatalf("expected degraded outcome, got %+v", out)
	}
	if out.Stage() != model.StageNormalize || out.Failure.Reason != model.ReasonToolNotFound {
		t.Fatalf("unexpected failure %+v", out.Failure)
	}
	if !errors.Is(out.Err(), model.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", out.Err())
	}
	if want := filepath.Join(dir, "Clip.mp4"); out.Path != want {
		t.Fatalf("Path = %q, want %q", out.Path, want)
	}
	if names := listDir(t, dir); len(names) != 1 || names[0] != "Clip.mp4" {
		t.Fatalf("expected only Clip.mp4, got %v", names)
	}
}

func TestFetchVideoNormalizeFailureKeepsPath(t *testing.T) {
	dir := t.TempDir()
	norm := &fakeNormalizer{err: fmt.Errorf("%w: Invalid data", model.ErrNormalizationFailed)}

	out := newFetcher(&fakeService{}, norm).Fetch(context.Background(), model.FetchRequest{
		Reference: "ref", Title: "Clip", OutputDirectory: dir, Kind: model.MediaAudioVideo,
	})
	if !out.Degraded() || out.Path != filepath.Join(dir, "Clip.mp4") {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !strings.Contains(out.Failure.Reason, "Invalid data") {
		t.Fatalf("Reason = %q", out.Failure.Reason)
	}
}

func TestFetchPassesToolDirectory(t *testing.T) {
	base := t.TempDir()
	locator := platform.NewLocator(base)
	bundle, err := locator.Locate()
	if err != nil {
		t.Skipf("unsupported platform: %v", err)
	}
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		t.Fatalf("mkdir bundle: %v", err)
	}

	svc := &fakeService{}
	NewFetcher(resolver.New(svc, nil), &fakeNormalizer{}, locator, nil).Fetch(context.Background(), model.FetchRequest{
		Reference: "ref", Title: "Song", OutputDirectory: t.TempDir(), Kind: model.MediaAudioOnly,
	})
	if svc.transfers[0].ToolDir != bundle {
		t.Fatalf("ToolDir = %q, want %q", svc.transfers[0].ToolDir, bundle)
	}
}
