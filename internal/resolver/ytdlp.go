package resolver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-fetch/internal/model"
)

const (
	progressInterval = 500 * time.Millisecond
	stderrTailLines  = 5
)

// YTDLP implements Service on top of the yt-dlp executable.
type YTDLP struct {
	executable string
}

var _ Service = (*YTDLP)(nil)

// NewYTDLP creates the yt-dlp backed service. An empty executable resolves
// yt-dlp from PATH.
func NewYTDLP(executable string) *YTDLP {
	return &YTDLP{executable: strings.TrimSpace(executable)}
}

func (y *YTDLP) command() *ytdlp.Command {
	cmd := ytdlp.New().NoWarnings()
	if y.executable != "" {
		cmd.SetExecutable(y.executable)
	}
	return cmd
}

// ResolveMetadata runs yt-dlp with --skip-download --dump-single-json.
func (y *YTDLP) ResolveMetadata(ctx context.Context, req MetadataRequest) (*Info, error) {
	if strings.TrimSpace(req.Target) == "" {
		return nil, fmt.Errorf("%w: empty target", model.ErrResolutionFailed)
	}

	cmd := y.command().
		Quiet().
		SkipDownload().
		DumpSingleJSON()
	if req.Flat {
		cmd.FlatPlaylist()
	}

	result, err := cmd.Run(ctx, req.Target)
	if err != nil {
		return nil, runError(model.ErrResolutionFailed, result, err)
	}

	var info Info
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, fmt.Errorf("%w: decode metadata: %v", model.ErrResolutionFailed, err)
	}
	return &info, nil
}

// Transfer downloads the reference and reports final paths printed by
// yt-dlp after post-processing.
func (y *YTDLP) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	cmd := y.command().
		NoSimulate().
		Print("after_move:filepath").
		Output(req.OutputTemplate)

	if req.Format != "" {
		cmd.Format(req.Format)
	}
	if req.ExtractAudio {
		cmd.ExtractAudio()
		if req.AudioCodec != "" {
			cmd.AudioFormat(req.AudioCodec)
		}
		if req.AudioQuality != "" {
			cmd.AudioQuality(req.AudioQuality)
		}
	}
	if req.MergeFormat != "" {
		cmd.MergeOutputFormat(req.MergeFormat)
	}
	if req.ToolDir != "" {
		cmd.FFmpegLocation(req.ToolDir)
	}
	if req.IgnoreErrors {
		cmd.IgnoreErrors()
	}
	if req.Progress != nil {
		report := req.Progress
		cmd.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			report(model.Progress{
				Filename:   update.Filename,
				Downloaded: int64(update.DownloadedBytes),
				Total:      int64(update.TotalBytes),
				ETA:        update.ETA(),
			})
		})
	}

	result, err := cmd.Run(ctx, req.Reference)
	if err != nil {
		return nil, runError(model.ErrTransferFailed, result, err)
	}
	return &TransferResult{Files: printedPaths(result.Stdout)}, nil
}

// printedPaths keeps stdout lines naming files that exist. Progress
// output and "NA" placeholders share stdout with the printed paths.
func printedPaths(stdout string) []string {
	var files []string
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "NA" {
			continue
		}
		if info, err := os.Stat(line); err == nil && !info.IsDir() {
			files = append(files, line)
		}
	}
	return files
}

func runError(sentinel error, result *ytdlp.Result, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	if result != nil {
		if tail := stderrTail(result.Stderr, stderrTailLines); tail != "" {
			return fmt.Errorf("%w: %s", sentinel, tail)
		}
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// stderrTail returns the last n non-empty lines joined with "; ".
func stderrTail(stderr string, n int) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append(kept, line)
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "; ")
}
