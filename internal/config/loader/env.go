package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of textcodec environment variables.
const DefaultEnvPrefix = "TEXTCODEC_"

// EnvLoader loads configuration from environment variables.
//
// Explicitly mapped variables are applied first. Any other prefixed variable
// is mapped by splitting on underscores: TEXTCODEC_FILES_AUTO_GUESS_ENCODING
// becomes files.autoGuessEncoding.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates an environment loader for prefix, which should
// include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderWithEnviron creates a loader reading variables from environ
// instead of the process environment.
func NewEnvLoaderWithEnviron(prefix string, environ []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return environ }
	return l
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "ENCODING":      "files.encoding",
		prefix + "AUTO_GUESS":    "files.autoGuessEncoding",
		prefix + "EOL":           "files.eol",
		prefix + "MAX_FILE_SIZE": "files.maxFileSize",
		prefix + "LOG_LEVEL":     "logging.level",
		prefix + "LOG_FORMAT":    "logging.format",
	}
}

// AddMapping maps envVar onto configPath.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// Load returns the configuration found in the environment. Empty values
// are kept as empty strings.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, parseValue(value))
	}

	return config, nil
}

// envToPath converts TEXTCODEC_FILES_MAX_FILE_SIZE to files.maxFileSize.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}

	section := strings.ToLower(parts[0])
	var name strings.Builder
	for i, part := range parts[1:] {
		if part == "" {
			continue
		}
		part = strings.ToLower(part)
		if i > 0 {
			part = strings.ToUpper(part[:1]) + part[1:]
		}
		name.WriteString(part)
	}
	if name.Len() == 0 {
		return ""
	}
	return section + "." + name.String()
}

// parseValue converts booleans, integers and JSON arrays or objects;
// everything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	trimmed := strings.TrimSpace(s)
	if (strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")) && gjson.Valid(trimmed) {
		return gjson.Parse(trimmed).Value()
	}
	return s
}

func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
