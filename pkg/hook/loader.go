package hook

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/tikgrab/pkg/errors"
)

// ScriptExtension is the file extension hook scripts must carry.
const ScriptExtension = ".tengo"

// LoadHooksFromDir loads all hook scripts from dir into manager. Scripts are
// matched by file name: <hook-type>.tengo. A missing directory is not an
// error; hooks are optional.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read hooks directory %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ScriptExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), ScriptExtension))
		switch hookType {
		case PreDownload, PostDownload:
		default:
			continue // Skip unknown hook types
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return errors.Wrapf(errors.ErrHookLoad, "%s: %v", entry.Name(), err)
		}

		if err := manager.AddHook(Hook{
			Type:    hookType,
			Content: string(content),
		}); err != nil {
			return errors.Wrapf(err, "error adding hook %s", hookType)
		}
	}

	return nil
}

// HookTemplate generates a starter script for a hook type.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreDownload:
		return `// Pre-download hook
// Runs before a post's media is downloaded.
// Available variables:
// - url: string - the post URL
// - postId: string - the 19-digit post identifier
// - author: string - the post author, when known
// - kind: string - "video" or "slideshow"
//
// Set err to a non-empty string to abort the download.
/*
if kind == "slideshow" {
    err := "slideshows are disabled"
}
*/`

	case PostDownload:
		return `// Post-download hook
// Runs after a media file has been written.
// Available variables: same as pre-download, plus:
// - path: string - the local file path
// - checksum: string - hex SHA-256 of the file
/*
fmt := import("fmt")
fmt.println("saved " + path + " (" + checksum + ")")
*/`

	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
