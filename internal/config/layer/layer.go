// Package layer provides prioritized configuration layers.
//
// Each layer is a nested map loaded from one source. Layers are merged in
// priority order; higher priorities override lower ones. A layer may be
// rooted at a folder, in which case it only applies to resources inside
// that folder.
package layer

import (
	"time"
)

// Layer is a single configuration layer.
type Layer struct {
	// Name identifies the layer ("defaults", "user", "folder:/src/app", ...).
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates where this layer was loaded from.
	Source Source

	// Path is the settings file, if the layer was loaded from one.
	Path string

	// Root restricts the layer to resources at or below this folder.
	// Empty means the layer applies everywhere.
	Root string

	// Data holds the configuration values as a nested map.
	Data map[string]any

	// ModTime is when the layer was loaded.
	ModTime time.Time
}

// NewLayer creates an empty layer.
func NewLayer(name string, source Source, priority int) *Layer {
	return NewLayerWithData(name, source, priority, make(map[string]any))
}

// NewLayerWithData creates a layer holding data.
func NewLayerWithData(name string, source Source, priority int, data map[string]any) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     data,
		ModTime:  time.Now(),
	}
}

// AppliesTo reports whether the layer applies to resource.
// Unrooted layers apply to everything; an empty resource only sees
// unrooted layers.
func (l *Layer) AppliesTo(resource string) bool {
	if l.Root == "" {
		return true
	}
	if resource == "" {
		return false
	}
	return Within(resource, l.Root)
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	c := *l
	c.Data = cloneMap(l.Data)
	return &c
}

// Source indicates where a configuration layer came from.
type Source uint8

const (
	// SourceBuiltin is the built-in defaults.
	SourceBuiltin Source = iota
	// SourceUser is the user settings file (~/.config/textcodec/).
	SourceUser
	// SourceWorkspace is the workspace settings file (.textcodec/).
	SourceWorkspace
	// SourceFolder is a folder settings file, rooted at that folder.
	SourceFolder
	// SourceEnv is environment variables.
	SourceEnv
	// SourceSession is in-memory overrides, such as command-line flags.
	SourceSession
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourceUser:
		return "user"
	case SourceWorkspace:
		return "workspace"
	case SourceFolder:
		return "folder"
	case SourceEnv:
		return "environment"
	case SourceSession:
		return "session"
	default:
		return "unknown"
	}
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}
	return dst
}

func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = cloneValue(val)
	}
	return dst
}
