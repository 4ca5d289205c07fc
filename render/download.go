package render

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"captionforge/style"
)

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".mp4": true, ".mov": true, ".webm": true, ".avi": true, ".mkv": true,
}

// ValidExtension reports whether a filename has an accepted media extension.
func ValidExtension(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// downloadFile fetches url into a temp file and returns its path.
func (e *Engine) downloadFile(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: source: download returned status %d", style.ErrInvalidParameter, resp.StatusCode)
	}

	ext := strings.ToLower(filepath.Ext(strings.SplitN(url, "?", 2)[0]))
	if !allowedExtensions[ext] {
		// Fall back to content type for extension-less URLs.
		switch resp.Header.Get("Content-Type") {
		case "image/jpeg":
			ext = ".jpg"
		case "image/png":
			ext = ".png"
		case "video/mp4":
			ext = ".mp4"
		case "video/quicktime":
			ext = ".mov"
		default:
			return "", fmt.Errorf("%w: source: unsupported file type", style.ErrInvalidParameter)
		}
	}

	path := filepath.Join(e.tempDir, fmt.Sprintf("input_%s%s", uuid.NewString(), ext))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	return path, nil
}
