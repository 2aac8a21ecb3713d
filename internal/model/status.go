package model

// Stage identifies the pipeline step an outcome failed in.
type Stage string

const (
	// StageResolve means the reference could not be found or enumerated
	StageResolve Stage = "resolve"

	// StageFetch means the resource was found but the transfer failed
	StageFetch Stage = "fetch"

	// StageNormalize means the transfer succeeded but the re-encode did not
	StageNormalize Stage = "normalize"
)

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// Retryable reports whether retrying the same call can plausibly succeed.
// A normalize failure leaves a usable file behind, so callers keep it instead.
func (s Stage) Retryable() bool {
	return s == StageResolve || s == StageFetch
}

// MediaKind selects which streams a fetch requests.
type MediaKind string

const (
	// MediaAudioOnly requests the best audio-only stream, converted to mp3
	MediaAudioOnly MediaKind = "audio"

	// MediaAudioVideo requests combined audio and video capped at 720 lines
	MediaAudioVideo MediaKind = "video"
)

// String returns the string representation of MediaKind
func (k MediaKind) String() string {
	return string(k)
}

// IsVideo returns true if the fetch carries a video stream and is normalized afterwards
func (k MediaKind) IsVideo() bool {
	return k == MediaAudioVideo
}

// KindFor maps the audio-only switch used by playlist callers to a MediaKind.
func KindFor(audioOnly bool) MediaKind {
	if audioOnly {
		return MediaAudioOnly
	}
	return MediaAudioVideo
}
