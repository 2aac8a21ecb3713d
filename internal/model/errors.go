package model

import "errors"

// Sentinel errors wrapped by Failure.Err so callers can branch with errors.Is.
var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrNoValidOutputPath   = errors.New("no valid output path")
	ErrResolutionFailed    = errors.New("resolution failed")
	ErrNoResults           = errors.New("no results")
	ErrTransferFailed      = errors.New("transfer failed")
	ErrNormalizationFailed = errors.New("normalization failed")
	ErrToolNotFound        = errors.New("transcoding tool not found")
	ErrNotACollection      = errors.New("not a collection")
)

// Reasons reported verbatim to the presentation shell.
const (
	ReasonNoValidPath  = "No Valid Path"
	ReasonNotAPlaylist = "Not a playlist"
	ReasonToolNotFound = "tool not found"
)

// UnknownTitle is returned by title lookups that could not resolve anything.
const UnknownTitle = "Unknown_Title"
