package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/yt-fetch/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := config.Default()
	if want := filepath.Join(home, "Downloads"); cfg.Paths.DownloadDir != want {
		t.Errorf("DownloadDir = %q, want %q", cfg.Paths.DownloadDir, want)
	}
	if cfg.Download.MaxParallel != 1 {
		t.Errorf("MaxParallel = %d, want 1", cfg.Download.MaxParallel)
	}
	if cfg.Download.SearchLimit != 10 {
		t.Errorf("SearchLimit = %d, want 10", cfg.Download.SearchLimit)
	}
	if cfg.Playlist.Lister != config.ListerYtDlp {
		t.Errorf("Lister = %q", cfg.Playlist.Lister)
	}
	if cfg.ListTimeout() != time.Minute {
		t.Errorf("ListTimeout = %v, want 1m", cfg.ListTimeout())
	}
	if cfg.HistoryEnabled() {
		t.Error("history should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	missing := filepath.Join(t.TempDir(), "absent.toml")

	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false")
	}
	if path != missing {
		t.Fatalf("path = %q, want %q", path, missing)
	}
	want := filepath.Join(os.Getenv("HOME"), "Downloads")
	if cfg.Paths.DownloadDir != want {
		t.Fatalf("DownloadDir = %q, want %q", cfg.Paths.DownloadDir, want)
	}
}

func TestLoadFileOverridesAndNormalizes(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `
[paths]
download_dir = "~/media"
history_path = "~/.local/share/yt-fetch/history.db"

[tools]
ytdlp = "  /opt/yt-dlp  "

[download]
max_parallel = 50
search_limit = 0
metadata_timeout = 5

[playlist]
lister = " NATIVE "
timeout = 15

[logging]
level = "DEBUG"
format = "json"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Paths.DownloadDir != filepath.Join(home, "media") {
		t.Errorf("DownloadDir = %q", cfg.Paths.DownloadDir)
	}
	if !cfg.HistoryEnabled() || !strings.HasPrefix(cfg.Paths.HistoryPath, home) {
		t.Errorf("HistoryPath = %q", cfg.Paths.HistoryPath)
	}
	if cfg.Tools.YtDlp != "/opt/yt-dlp" {
		t.Errorf("YtDlp = %q", cfg.Tools.YtDlp)
	}
	if cfg.Download.MaxParallel != config.MaxParallel {
		t.Errorf("MaxParallel = %d, want clamp to %d", cfg.Download.MaxParallel, config.MaxParallel)
	}
	if cfg.Download.SearchLimit != 10 {
		t.Errorf("SearchLimit = %d, want default 10", cfg.Download.SearchLimit)
	}
	if cfg.MetadataTimeout() != 5*time.Second {
		t.Errorf("MetadataTimeout = %v", cfg.MetadataTimeout())
	}
	if cfg.Playlist.Lister != config.ListerNative {
		t.Errorf("Lister = %q", cfg.Playlist.Lister)
	}
	if cfg.ListTimeout() != 15*time.Second {
		t.Errorf("ListTimeout = %v", cfg.ListTimeout())
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"lister", "[playlist]\nlister = \"rss\"\n", "playlist.lister"},
		{"format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"search limit", "[download]\nsearch_limit = 500\n", "download.search_limit"},
		{"syntax", "[download\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found")
	}
	if cfg.Download.MaxParallel != 1 || cfg.Playlist.Lister != config.ListerYtDlp {
		t.Fatalf("sample differs from defaults: %+v", cfg)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/a/b", filepath.Join(home, "a", "b")},
		{"/abs/../abs/x", "/abs/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ExpandPath(tt.in)
			if err != nil {
				t.Fatalf("ExpandPath: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
