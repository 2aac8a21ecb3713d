// Package config loads, normalizes, and validates the TOML configuration
// for yt-fetch.
//
// Load starts from Default, overlays the file found at the explicit path,
// ~/.config/yt-fetch/config.toml, or ./yt-fetch.toml, expands "~" in path
// fields, clamps tunables into range, and rejects values the pipeline
// cannot run with. CreateSample writes a commented starter file.
package config
