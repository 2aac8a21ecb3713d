package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ytget/yt-fetch/internal/model"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Output naming
const (
	ExtTemplate     = "%(ext)s"
	NormalizedMark  = "_fixed"
	DownloadsFolder = "Downloads"
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// File extensions left behind by interrupted transfers
var (
	SkippedExtensions = []string{".part", ".ytdl", ".temp"}
)

// SanitizeTitle keeps ASCII letters, digits, space, hyphen and underscore and
// trims trailing whitespace. Accents are folded first ("Café" becomes "Cafe");
// any other character is dropped. The function is idempotent.
func SanitizeTitle(title string) string {
	folded, _, err := transform.String(foldMarks(), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	for _, r := range folded {
		if isASCIIAlnum(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// foldMarks strips combining marks. Chained transformers hold state, so each
// call builds its own.
func foldMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// SafeFileStem sanitizes title for use as a filename, falling back to
// model.UnknownTitle when nothing survives.
func SafeFileStem(title string) string {
	stem := SanitizeTitle(title)
	if strings.TrimSpace(stem) == "" {
		return model.UnknownTitle
	}
	return stem
}

// OutputTemplate returns the resolution-service output template for stem in dir
func OutputTemplate(dir, stem string) string {
	return filepath.Join(dir, stem) + "." + ExtTemplate
}

// ExpectedPath returns the path a transfer with the given container lands on
func ExpectedPath(dir, stem, ext string) string {
	return filepath.Join(dir, stem) + "." + strings.TrimPrefix(ext, ".")
}

// NormalizedPath returns the sibling path a normalized copy of path is written to
func NormalizedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + NormalizedMark + ext
}

// FileExists returns true if path names an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FileSize returns the size of path in bytes, or 0 if it cannot be read
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// FindByStem looks for a finished file named stem.<ext> in dir, ignoring
// partial transfer leftovers. It is used when the resolution service did not
// report the final path.
func FindByStem(dir, stem string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext == "" || slices.Contains(SkippedExtensions, ext) {
			continue
		}
		if strings.TrimSuffix(name, ext) == stem {
			return filepath.Join(dir, name), true
		}
	}
	return "", false
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DownloadsFolder), nil
}

// RevealInFileManager opens the system file manager at filePath
func RevealInFileManager(filePath string) error {
	if !FileExists(filePath) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case OSDarwin:
		cmd = exec.Command(OpenCommand, MacOSSelectFlag, absPath)
	case OSWindows:
		cmd = exec.Command(ExplorerCommand, WindowsSelectParam, absPath)
	case OSLinux:
		// File selection is not standardized on Linux, so open the parent directory
		cmd = exec.Command(XDGOpenCommand, filepath.Dir(absPath))
	default:
		return fmt.Errorf("%w: %s", model.ErrUnsupportedPlatform, runtime.GOOS)
	}
	return cmd.Run()
}
