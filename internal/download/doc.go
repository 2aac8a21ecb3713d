// Package download implements the fetch pipeline built on top of yt-dlp
// (via github.com/lrstanley/go-ytdlp). Fetcher runs one item through
// transfer and normalization and drives playlists item by item; Service is
// the contract the presentation shell talks to.
package download
