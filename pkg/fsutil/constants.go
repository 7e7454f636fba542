// Package fsutil provides filesystem helpers: destination path resolution,
// filename sanitizing, directory creation and temp file cleanup.
package fsutil

// File and directory permission constants.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: Default for regular files
	FileModeSecure  = 0o640 // -rw-r-----: For sensitive files (cookie profiles)

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
	DirModePrivate = 0o700 // drwx------: For private directories (owner only)
)

// FallbackName is used when sanitizing leaves nothing usable of a filename.
const FallbackName = "file"

// BinaryExt is the generic extension used when none can be derived.
const BinaryExt = ".bin"
