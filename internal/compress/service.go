package compress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ytget/yt-fetch/internal/logging"
	"github.com/ytget/yt-fetch/internal/model"
	"github.com/ytget/yt-fetch/internal/platform"
)

// FFmpeg constants for the normalization profile
const (
	// Video codec settings
	VideoCodec       = "libx264"
	VideoPixelFormat = "yuv420p"
	VideoPreset      = "veryfast"
	VideoCRF         = "23"

	// Audio codec settings
	AudioCodec   = "aac"
	AudioBitrate = "128k"

	// Container flags
	FastStartFlag = "+faststart"

	FFmpegLogLevel = "error"

	// Pause before the second attempt at removing the original
	RemoveRetryDelay = 200 * time.Millisecond
)

// Service runs ffmpeg for the Normalizer contract.
type Service struct {
	tools  ToolLocator
	logger *slog.Logger
	remove func(name string) error
}

var _ Normalizer = (*Service)(nil)

// NewService creates a normalizer that resolves ffmpeg through tools.
func NewService(tools ToolLocator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		tools:  tools,
		logger: logger.With(logging.FieldComponent, "normalizer"),
		remove: os.Remove,
	}
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func BuildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",           // Overwrite output file
		"-hide_banner", // Quiet header
		"-loglevel", FFmpegLogLevel,
		"-i", inputPath,
		"-c:v", VideoCodec,
		"-pix_fmt", VideoPixelFormat,
		"-preset", VideoPreset,
		"-crf", VideoCRF,
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-movflags", FastStartFlag, // MP4 optimization
		outputPath,
	}
}

// Normalize re-encodes inputPath to {stem}_fixed{ext}.
func (s *Service) Normalize(ctx context.Context, inputPath string) (string, error) {
	logger := logging.WithContext(ctx, s.logger)

	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("%w: input file: %v", model.ErrNormalizationFailed, err)
	}

	ffmpeg, err := s.tools.FFmpegPath()
	if err != nil {
		if errors.Is(err, model.ErrToolNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", model.ErrToolNotFound, err)
	}

	outputPath := platform.NormalizedPath(inputPath)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpeg, BuildFFmpegArgs(inputPath, outputPath)...)
	cmd.Stderr = &stderr

	started := time.Now()
	logger.Debug("normalizing", logging.FieldPath, inputPath, "ffmpeg", ffmpeg)

	if err := cmd.Run(); err != nil {
		// Remove partial output file
		if rmErr := os.Remove(outputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("remove partial output failed", logging.FieldPath, outputPath, "error", rmErr)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("%w: %s", model.ErrNormalizationFailed, detail)
	}

	if !platform.FileExists(outputPath) {
		return "", fmt.Errorf("%w: ffmpeg produced no output", model.ErrNormalizationFailed)
	}

	inputSize := platform.FileSize(inputPath)
	if err := s.removeOriginal(ctx, inputPath); err != nil {
		// Exactly one file must remain, so keep the original and drop the re-encode.
		if rmErr := s.remove(outputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("remove normalized output failed", logging.FieldPath, outputPath, "error", rmErr)
		}
		return "", fmt.Errorf("%w: replace original: %v", model.ErrNormalizationFailed, err)
	}

	logger.Info("normalized",
		logging.FieldPath, outputPath,
		"before", humanize.Bytes(uint64(inputSize)),
		"after", humanize.Bytes(uint64(platform.FileSize(outputPath))),
		"elapsed", time.Since(started),
	)
	return outputPath, nil
}

// removeOriginal deletes inputPath, trying once more after RemoveRetryDelay.
func (s *Service) removeOriginal(ctx context.Context, inputPath string) error {
	err := s.remove(inputPath)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	s.logger.Debug("remove original failed, retrying", logging.FieldPath, inputPath, "error", err)

	select {
	case <-ctx.Done():
		return err
	case <-time.After(RemoveRetryDelay):
	}
	if err := s.remove(inputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
