package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ytget/yt-fetch/internal/model"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// Platform is the operating system family the tool bundle is built for.
type Platform string

const (
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
)

// Bundle layout
const (
	DefaultToolDirName = "ffmpeg"
	FFmpegBinaryName   = "ffmpeg"
	WindowsExeSuffix   = ".exe"
)

var currentPlatform = sync.OnceValues(func() (Platform, error) {
	return FromGOOS(runtime.GOOS)
})

// Current returns the platform of the running process. It is computed once.
func Current() (Platform, error) {
	return currentPlatform()
}

// FromGOOS maps a GOOS value to a Platform
func FromGOOS(goos string) (Platform, error) {
	switch goos {
	case OSDarwin:
		return PlatformMac, nil
	case OSWindows:
		return PlatformWindows, nil
	case OSLinux:
		return PlatformLinux, nil
	default:
		return "", fmt.Errorf("%w: %s", model.ErrUnsupportedPlatform, goos)
	}
}

// BundleDir returns the per-platform subdirectory of the tool bundle
func (p Platform) BundleDir() string {
	switch p {
	case PlatformMac:
		return "mac"
	case PlatformWindows:
		return "win"
	default:
		return "linux"
	}
}

// Locator resolves the transcoding tool installation for the running OS.
// Resolution happens on first use and the result is shared afterwards.
type Locator struct {
	baseDir  string
	goos     string
	lookPath func(string) (string, error)
	locate   func() (string, error)
}

// NewLocator creates a locator rooted at baseDir. An empty baseDir means the
// "ffmpeg" directory next to the running executable.
func NewLocator(baseDir string) *Locator {
	return newLocatorFor(baseDir, runtime.GOOS)
}

func newLocatorFor(baseDir, goos string) *Locator {
	l := &Locator{
		baseDir:  baseDir,
		goos:     goos,
		lookPath: exec.LookPath,
	}
	l.locate = sync.OnceValues(l.resolve)
	return l
}

// Locate returns the absolute path of the platform-specific tool bundle.
// An unsupported operating system yields model.ErrUnsupportedPlatform.
func (l *Locator) Locate() (string, error) {
	return l.locate()
}

func (l *Locator) resolve() (string, error) {
	var (
		p   Platform
		err error
	)
	if l.goos == runtime.GOOS {
		p, err = Current()
	} else {
		p, err = FromGOOS(l.goos)
	}
	if err != nil {
		return "", err
	}

	base := l.baseDir
	if base == "" {
		base = defaultBaseDir()
	}
	abs, err := filepath.Abs(filepath.Join(base, p.BundleDir()))
	if err != nil {
		return "", fmt.Errorf("resolve tool bundle path: %w", err)
	}
	return abs, nil
}

// FFmpegPath returns the ffmpeg executable to run. The bundled binary wins;
// otherwise ffmpeg is looked up on PATH.
func (l *Locator) FFmpegPath() (string, error) {
	dir, err := l.Locate()
	if err != nil {
		return "", err
	}

	name := FFmpegBinaryName
	if l.goos == OSWindows {
		name += WindowsExeSuffix
	}
	candidate := filepath.Join(dir, name)
	if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info, l.goos) {
		return candidate, nil
	}

	if path, lookErr := l.lookPath(FFmpegBinaryName); lookErr == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s not in %s or PATH", model.ErrToolNotFound, name, dir)
}

// ToolDir returns the bundle directory when it exists on disk, or "" so the
// resolution service falls back to its own lookup.
func (l *Locator) ToolDir() string {
	dir, err := l.Locate()
	if err != nil {
		return ""
	}
	if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
		return ""
	}
	return dir
}

func defaultBaseDir() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultToolDirName
	}
	return filepath.Join(filepath.Dir(exe), DefaultToolDirName)
}

func isExecutable(info os.FileInfo, goos string) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if goos == OSWindows {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
