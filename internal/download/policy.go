package download

import (
	"github.com/ytget/yt-fetch/internal/model"
	"github.com/ytget/yt-fetch/internal/resolver"
)

// Audio fetch policy
const (
	AudioFormat    = "bestaudio/best"
	AudioCodec     = "mp3"
	AudioQuality   = "192"
	AudioExtension = "mp3"
)

// Video fetch policy
const (
	VideoFormat    = "bestvideo[ext=mp4][height<=720]+bestaudio[ext=m4a]/best[ext=mp4][height<=720]"
	VideoContainer = "mp4"
)

// transferRequest builds the resolution-service request for kind.
func transferRequest(kind model.MediaKind, ref, template, toolDir string) resolver.TransferRequest {
	req := resolver.TransferRequest{
		Reference:      ref,
		OutputTemplate: template,
		ToolDir:        toolDir,
	}
	if kind.IsVideo() {
		req.Format = VideoFormat
		req.MergeFormat = VideoContainer
		return req
	}
	req.Format = AudioFormat
	req.ExtractAudio = true
	req.AudioCodec = AudioCodec
	req.AudioQuality = AudioQuality
	return req
}

// expectedExtension is the container a successful transfer of kind lands in
func expectedExtension(kind model.MediaKind) string {
	if kind.IsVideo() {
		return VideoContainer
	}
	return AudioExtension
}
