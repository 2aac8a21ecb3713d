// Package compress normalizes downloaded videos with ffmpeg: H.264 video in
// yuv420p, AAC audio, and the moov atom moved to the front. The output is
// written next to the input with a "_fixed" suffix; on success the input is
// removed, on failure the partial output is removed and the input is kept.
package compress
