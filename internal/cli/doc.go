// Package cli implements the yt-fetch command line: search, single and
// playlist fetches, title lookup, dependency checks, configuration
// bootstrap, and the outcome history.
package cli
