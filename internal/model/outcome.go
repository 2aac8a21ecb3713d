package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// SearchResult is one candidate returned by a search query
type SearchResult struct {
	Reference    string `json:"reference"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"` // empty when the entry had no thumbnails
}

// HasThumbnail returns true if the result carries a thumbnail reference
func (r SearchResult) HasThumbnail() bool {
	return r.ThumbnailURL != ""
}

// FetchRequest describes a single-item fetch
type FetchRequest struct {
	Reference       string
	Title           string // used to derive the output filename; resolved when empty
	OutputDirectory string
	Kind            MediaKind
}

// Failure is the error half of an Outcome.
type Failure struct {
	Stage  Stage
	Reason string
	Err    error
}

// Error implements error
func (f *Failure) Error() string {
	if f.Reason == "" && f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Stage, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Stage, f.Reason)
}

// Unwrap exposes the wrapped sentinel
func (f *Failure) Unwrap() error {
	return f.Err
}

// Outcome is the terminal result of one fetch.
//
// A nil Failure means success and Path names the final file. A Normalize
// failure still carries Path, pointing at the preserved un-normalized file.
type Outcome struct {
	Reference string
	Title     string
	Path      string
	Failure   *Failure
	Elapsed   time.Duration
}

// Succeeded builds a successful outcome
func Succeeded(reference, title, path string) Outcome {
	return Outcome{Reference: reference, Title: title, Path: path}
}

// Failed builds a failed outcome with no file on disk
func Failed(reference string, stage Stage, reason string, err error) Outcome {
	return Outcome{
		Reference: reference,
		Failure:   &Failure{Stage: stage, Reason: reason, Err: err},
	}
}

// OK returns true if every stage succeeded
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Degraded returns true if the download succeeded but normalization did not,
// leaving the original file usable at Path.
func (o Outcome) Degraded() bool {
	return o.Failure != nil && o.Failure.Stage == StageNormalize && o.Path != ""
}

// Err returns the failure as an error, or nil
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	return o.Failure
}

// Stage returns the failed stage, or an empty stage on success
func (o Outcome) Stage() Stage {
	if o.Failure == nil {
		return ""
	}
	return o.Failure.Stage
}

// Retryable reports whether running the same fetch again can plausibly
// succeed. Caller mistakes (no directory, not a playlist) never are.
func (o Outcome) Retryable() bool {
	if o.Failure == nil || !o.Failure.Stage.Retryable() {
		return false
	}
	return !errors.Is(o.Failure, ErrNoValidOutputPath) && !errors.Is(o.Failure, ErrNotACollection)
}

// DisplayName returns title, filename, or reference in order of preference
func (o Outcome) DisplayName() string {
	if o.Title != "" && !strings.HasPrefix(o.Title, "http") {
		return o.Title
	}
	if o.Path != "" {
		name := filepath.Base(o.Path)
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		return name
	}
	return o.Reference
}

// Progress is a transfer progress sample
type Progress struct {
	Filename   string
	Downloaded int64
	Total      int64 // 0 when unknown
	ETA        time.Duration
}

// Percent returns progress in the 0..100 range, or -1 when the total is unknown
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return -1
	}
	pct := int(float64(p.Downloaded) / float64(p.Total) * 100)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (p Progress) ETAString() string {
	secs := int(p.ETA.Seconds())
	if secs <= 0 {
		return "—"
	}

	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
