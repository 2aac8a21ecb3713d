package compress

import (
	"context"
)

// Normalizer re-encodes a downloaded video into the playback-compatible
// profile and returns the path of the normalized file.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string) (string, error)
}

// ToolLocator finds the ffmpeg executable.
type ToolLocator interface {
	FFmpegPath() (string, error)
}
