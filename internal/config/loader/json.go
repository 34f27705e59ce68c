package loader

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// JSONLoader loads a JSON settings file. Comments and trailing commas are
// accepted.
type JSONLoader struct {
	fs   FileSystem
	path string
}

// NewJSONLoader creates a JSON loader reading path from the OS.
func NewJSONLoader(path string) *JSONLoader {
	return NewJSONLoaderWithFS(DefaultFS(), path)
}

// NewJSONLoaderWithFS creates a JSON loader over fsys.
func NewJSONLoaderWithFS(fsys FileSystem, path string) *JSONLoader {
	return &JSONLoader{fs: fsys, path: path}
}

// Load reads and parses the file. A missing file yields nil, nil.
func (l *JSONLoader) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}
	return ParseJSON(l.path, data)
}

// ParseJSON parses JSON-with-comments data. The top level must be an
// object; an empty document is an empty map.
func ParseJSON(source string, data []byte) (map[string]any, error) {
	stripped := jsonc.ToJSON(data)

	result := gjson.ParseBytes(stripped)
	if !result.Exists() {
		return map[string]any{}, nil
	}
	if !gjson.ValidBytes(stripped) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}
	if !result.IsObject() {
		return nil, &ParseError{Path: source, Message: fmt.Sprintf("top level must be an object, got %s", result.Type)}
	}

	config, _ := result.Value().(map[string]any)
	if config == nil {
		config = map[string]any{}
	}
	return config, nil
}
