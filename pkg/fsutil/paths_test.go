package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already safe",
			input:    "video_7234567890123456789",
			expected: "video_7234567890123456789",
		},
		{
			name:     "spaces and unicode replaced",
			input:    "my cool vídeo",
			expected: "my_cool_v_deo",
		},
		{
			name:     "path separators replaced",
			input:    "../../etc/passwd",
			expected: "etc_passwd",
		},
		{
			name:     "leading and trailing dots stripped",
			input:    "..hidden..",
			expected: "hidden",
		},
		{
			name:     "everything unsafe falls back",
			input:    "???",
			expected: FallbackName,
		},
		{
			name:     "empty falls back",
			input:    "",
			expected: FallbackName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")

	// Nothing exists yet: path comes back unchanged.
	assert.Equal(t, target, UniquePath(target))

	require.NoError(t, os.WriteFile(target, []byte("a"), FileModeDefault))
	assert.Equal(t, filepath.Join(dir, "file_1.txt"), UniquePath(target))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file_1.txt"), []byte("b"), FileModeDefault))
	assert.Equal(t, filepath.Join(dir, "file_2.txt"), UniquePath(target))
}

func TestUniquePathNoExtension(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "clip")

	require.NoError(t, os.WriteFile(target, []byte("a"), FileModeDefault))
	assert.Equal(t, filepath.Join(dir, "clip_1"), UniquePath(target))
}

func TestBuildDestPath(t *testing.T) {
	tests := []struct {
		name     string
		rawName  string
		ext      string
		existing []string
		expected string
	}{
		{
			name:     "plain name with dotted extension",
			rawName:  "clip",
			ext:      ".mp4",
			expected: "clip.mp4",
		},
		{
			name:     "extension without dot is normalized",
			rawName:  "clip",
			ext:      "mp4",
			expected: "clip.mp4",
		},
		{
			name:     "unsafe name is sanitized",
			rawName:  "my clip!",
			ext:      ".mp4",
			expected: "my_clip.mp4",
		},
		{
			name:     "collision gets suffixed",
			rawName:  "clip",
			ext:      ".mp4",
			existing: []string{"clip.mp4"},
			expected: "clip_1.mp4",
		},
		{
			name:     "empty name falls back",
			rawName:  "..",
			ext:      ".jpg",
			expected: "file.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "downloads")
			for _, name := range tt.existing {
				require.NoError(t, EnsureDir(dir))
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), FileModeDefault))
			}

			got, err := BuildDestPath(dir, tt.rawName, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.expected), got)
			assert.DirExists(t, dir)
		})
	}
}

func TestGuessExtension(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
		expected    string
	}{
		{
			name:        "content type wins over missing suffix",
			url:         "https://cdn.example.com/media/7234567890123456789",
			contentType: "image/jpeg",
			expected:    ".jpg",
		},
		{
			name:        "content type parameters are stripped",
			url:         "https://cdn.example.com/media/123",
			contentType: "video/mp4; charset=binary",
			expected:    ".mp4",
		},
		{
			name:        "url suffix used when content type unmappable",
			url:         "https://cdn.example.com/media/clip.webm?sig=abc",
			contentType: "application/x-unknown-blob",
			expected:    ".webm",
		},
		{
			name:        "url suffix used when content type absent",
			url:         "https://cdn.example.com/media/photo.png",
			contentType: "",
			expected:    ".png",
		},
		{
			name:        "generic binary fallback",
			url:         "https://cdn.example.com/media/7234567890123456789",
			contentType: "",
			expected:    BinaryExt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GuessExtension(tt.url, tt.contentType))
		})
	}
}
