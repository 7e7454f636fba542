// Package hook runs user-provided Tengo scripts around download operations.
package hook

// HookType represents the type of hook.
type HookType string

// Supported hook types.
const (
	PreDownload  HookType = "pre-download"
	PostDownload HookType = "post-download"
)

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	URL      string // the post or media URL being processed
	PostID   string
	Author   string
	Kind     string // "video" or "slideshow"
	Path     string // local file path, empty for pre-download hooks
	Checksum string // hex SHA-256, empty for pre-download hooks
	Vars     map[string]interface{}
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the specified hook type with the given context
	Execute(hookType HookType, ctx HookContext) error

	// AddHook adds a new hook
	AddHook(hook Hook) error

	// RemoveHook removes a hook of the specified type
	RemoveHook(hookType HookType) error

	// HasHook checks if a hook of the specified type exists
	HasHook(hookType HookType) bool
}
