// Package loader reads configuration sources into nested maps.
//
// Settings files may be TOML or JSON with comments. Environment variables
// with the TEXTCODEC_ prefix are mapped onto setting paths.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads configuration from a source.
// A missing source yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is the read side of the file system used by file loaders.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the operating system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// ParseError reports a settings file that could not be parsed.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ForFile returns the loader matching the extension of path:
// ".json" and ".jsonc" use JSONLoader, everything else TOMLLoader.
func ForFile(fsys FileSystem, path string) Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return NewJSONLoaderWithFS(fsys, path)
	default:
		return NewTOMLLoaderWithFS(fsys, path)
	}
}

func readFile(fsys FileSystem, path string) ([]byte, error) {
	if fsys == nil {
		fsys = DefaultFS()
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
