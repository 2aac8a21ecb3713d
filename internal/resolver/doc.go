// Package resolver turns user input into media metadata and runs transfers
// through the resolution service (yt-dlp, driven by
// github.com/lrstanley/go-ytdlp).
//
// Resolver holds the lookup policy: search queries become
// "ytsearch{N}:{query}" targets, empty titles become model.UnknownTitle,
// and lookup failures are logged rather than surfaced. Service is the seam
// the fetch pipeline and the tests program against.
package resolver
