package config

import (
	"fmt"
	"slices"

	"github.com/dshills/textcodec/internal/config/layer"
)

// SettingType is the value type of a setting.
type SettingType uint8

const (
	TypeString SettingType = iota
	TypeBool
	TypeInt
	TypeArray
)

// String returns the type name used in error messages.
func (t SettingType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Scope says where a setting may vary.
type Scope uint8

const (
	// ScopeApplication settings have one value for the whole process.
	// Folder settings files cannot change them.
	ScopeApplication Scope = iota

	// ScopeResource settings may differ per file; folder settings files
	// apply to the files below them.
	ScopeResource
)

// String returns the scope name.
func (s Scope) String() string {
	if s == ScopeResource {
		return "resource"
	}
	return "application"
}

// Setting describes a known setting.
type Setting struct {
	Path        string
	Type        SettingType
	Default     any
	Scope       Scope
	Enum        []string
	Description string
}

// Validate checks value against the setting's type and allowed values.
func (s Setting) Validate(value any) error {
	switch s.Type {
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return &TypeError{Path: s.Path, Expected: "string", Actual: typeName(value)}
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return &ValidationError{Path: s.Path, Value: value, Message: fmt.Sprintf("must be one of %v", s.Enum)}
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return &TypeError{Path: s.Path, Expected: "bool", Actual: typeName(value)}
		}
	case TypeInt:
		if _, ok := toInt64(value); !ok {
			return &TypeError{Path: s.Path, Expected: "int", Actual: typeName(value)}
		}
	case TypeArray:
		switch value.(type) {
		case []any, []map[string]any:
		default:
			return &TypeError{Path: s.Path, Expected: "array", Actual: typeName(value)}
		}
	}
	return nil
}

// Setting paths.
const (
	KeyEncoding          = "files.encoding"
	KeyAutoGuessEncoding = "files.autoGuessEncoding"
	KeyEncodingOverrides = "files.encodingOverrides"
	KeyEOL               = "files.eol"
	KeyMaxFileSize       = "files.maxFileSize"
	KeyLogLevel          = "logging.level"
	KeyLogFormat         = "logging.format"
)

// DefaultMaxFileSize is the largest file opened by default.
const DefaultMaxFileSize = 10 * 1024 * 1024

var settings = []Setting{
	{
		Path:        KeyEncoding,
		Type:        TypeString,
		Default:     "utf8",
		Scope:       ScopeResource,
		Description: "Default character set encoding used when reading and writing files.",
	},
	{
		Path:        KeyAutoGuessEncoding,
		Type:        TypeBool,
		Default:     false,
		Scope:       ScopeResource,
		Description: "Guess the character set encoding when opening files.",
	},
	{
		Path:        KeyEncodingOverrides,
		Type:        TypeArray,
		Default:     []any{},
		Scope:       ScopeApplication,
		Description: "Encodings pinned by parent folder or file extension. First match wins.",
	},
	{
		Path:        KeyEOL,
		Type:        TypeString,
		Default:     "auto",
		Scope:       ScopeResource,
		Enum:        []string{"auto", "lf", "crlf"},
		Description: "Line ending written on save; auto keeps the file's own.",
	},
	{
		Path:        KeyMaxFileSize,
		Type:        TypeInt,
		Default:     int64(DefaultMaxFileSize),
		Scope:       ScopeApplication,
		Description: "Largest file, in bytes, that is opened. 0 disables the limit.",
	},
	{
		Path:        KeyLogLevel,
		Type:        TypeString,
		Default:     "info",
		Scope:       ScopeApplication,
		Enum:        []string{"debug", "info", "warn", "error"},
		Description: "Minimum log level.",
	},
	{
		Path:        KeyLogFormat,
		Type:        TypeString,
		Default:     "text",
		Scope:       ScopeApplication,
		Enum:        []string{"text", "json", "logfmt"},
		Description: "Log output format.",
	},
}

// Settings returns the known settings.
func Settings() []Setting {
	return slices.Clone(settings)
}

// LookupSetting returns the definition of path.
func LookupSetting(path string) (Setting, bool) {
	for _, s := range settings {
		if s.Path == path {
			return s, true
		}
	}
	return Setting{}, false
}

// SettingScope returns the scope of path. Unknown settings are
// application scoped.
func SettingScope(path string) Scope {
	if s, ok := LookupSetting(path); ok {
		return s.Scope
	}
	return ScopeApplication
}

// FilesConfig is the files section as seen by one resource.
type FilesConfig struct {
	Encoding          string
	AutoGuessEncoding bool
	EOL               string
	MaxFileSize       int64
}

// Files returns the files settings that apply to resource. An empty
// resource yields the global values.
func (c *Config) Files(resource string) FilesConfig {
	return FilesConfig{
		Encoding:          c.stringOr(KeyEncoding, resource, "utf8"),
		AutoGuessEncoding: c.boolOr(KeyAutoGuessEncoding, resource, false),
		EOL:               c.stringOr(KeyEOL, resource, "auto"),
		MaxFileSize:       c.intOr(KeyMaxFileSize, resource, DefaultMaxFileSize),
	}
}

// LoggingConfig is the logging section.
type LoggingConfig struct {
	Level  string
	Format string
}

// Logging returns the logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.stringOr(KeyLogLevel, "", "info"),
		Format: c.stringOr(KeyLogFormat, "", "text"),
	}
}

// FilePreferences exposes files.encoding per resource.
type FilePreferences struct {
	cfg *Config
}

// Preferences returns the encoding preference store backed by c.
func (c *Config) Preferences() FilePreferences {
	return FilePreferences{cfg: c}
}

// Encoding returns the configured files.encoding for resource.
func (p FilePreferences) Encoding(resource string) string {
	return p.cfg.stringOr(KeyEncoding, resource, "")
}

// AutoGuess returns files.autoGuessEncoding for resource.
func (p FilePreferences) AutoGuess(resource string) bool {
	return p.cfg.boolOr(KeyAutoGuessEncoding, resource, false)
}

func defaultConfig() map[string]any {
	data := make(map[string]any)
	for _, s := range settings {
		layer.SetByPath(data, s.Path, s.Default)
	}
	return data
}
