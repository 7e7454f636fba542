package fsutil

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// AppName is the name of the application used in paths.
const AppName = "tikgrab"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// canonicalExts pins extensions for the media types we download most.
// mime.ExtensionsByType is platform dependent and ambiguous for several of
// these (image/jpeg can yield .jpe), so the table takes precedence.
var canonicalExts = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"audio/mpeg":      ".mp3",
	"audio/mp4":       ".m4a",
}

// SanitizeFilename returns a filesystem-safe version of name. Any character
// outside [A-Za-z0-9._-] becomes an underscore, leading and trailing dots and
// underscores are stripped, and an empty result falls back to FallbackName.
func SanitizeFilename(name string) string {
	safe := unsafeChars.ReplaceAllString(name, "_")
	safe = strings.Trim(safe, "._")
	if safe == "" {
		return FallbackName
	}
	return safe
}

// UniquePath returns p unchanged if nothing exists there, otherwise it probes
// <stem>_1<ext>, <stem>_2<ext>, ... and returns the first free candidate.
// Existence is re-checked for every candidate.
//
// The check-then-create sequence is not locked against concurrent callers;
// two fetches that sanitize to the same base name can both observe a
// candidate as free.
func UniquePath(p string) string {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return p
	}
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// BuildDestPath composes a unique destination path inside dir from a raw name
// and extension, creating dir if needed.
func BuildDestPath(dir, rawName, ext string) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := SanitizeFilename(rawName)
	return UniquePath(filepath.Join(dir, name+ext)), nil
}

// GuessExtension returns the best file extension for rawURL and contentType.
// The content type wins when it maps to a known extension; otherwise the URL
// path's suffix is used, and failing that BinaryExt.
func GuessExtension(rawURL, contentType string) string {
	ct := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if ct != "" {
		if ext, ok := canonicalExts[ct]; ok {
			return ext
		}
		if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if suffix := path.Ext(u.Path); suffix != "" {
			return suffix
		}
	}
	return BinaryExt
}
