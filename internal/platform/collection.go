package platform

import (
	"fmt"
	"net/url"
	"strings"
)

// URL parameters
const (
	PlaylistURLParam       = "list="
	PlaylistParamSeparator = "&"
)

// CollectionMarkers are the tokens that mark a reference as a playlist.
var CollectionMarkers = []string{
	"list=",
	"playlist",
	"/playlist/",
	"&list=",
}

// IsCollection reports whether ref denotes a collection rather than a single
// item. Matching is case-insensitive.
func IsCollection(ref string) bool {
	lower := strings.ToLower(ref)
	for _, marker := range CollectionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ExtractPlaylistID extracts the playlist ID from a collection reference.
// Supported forms:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&index=1
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(ref string) (string, error) {
	if u, err := url.Parse(ref); err == nil {
		if id := u.Query().Get("list"); id != "" {
			return id, nil
		}
	}

	if !strings.Contains(ref, PlaylistURLParam) {
		return "", fmt.Errorf("URL does not contain playlist parameter")
	}

	parts := strings.SplitN(ref, PlaylistURLParam, 2)
	playlistID := parts[1]
	if idx := strings.Index(playlistID, PlaylistParamSeparator); idx >= 0 {
		playlistID = playlistID[:idx]
	}

	if playlistID == "" {
		return "", fmt.Errorf("empty playlist ID")
	}
	return playlistID, nil
}
