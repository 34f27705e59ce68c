package config

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/textcodec/internal/config/layer"
	"github.com/dshills/textcodec/internal/config/loader"
	"github.com/dshills/textcodec/internal/config/watcher"
	"github.com/dshills/textcodec/internal/logging"
)

// Settings file names, tried in order in each settings directory.
var settingsFileNames = []string{"settings.toml", "settings.json"}

// WorkspaceDirName is the settings directory inside workspaces and folders.
const WorkspaceDirName = ".textcodec"

// Change reports setting paths whose effective value changed.
type Change struct {
	Paths []string
	Layer string
}

// ChangeHandler is called after settings change.
type ChangeHandler func(Change)

// Config provides layered access to textcodec settings.
type Config struct {
	mu sync.RWMutex

	layers  *layer.Manager
	fs      loader.FileSystem
	watcher *watcher.Watcher
	logger  *log.Logger

	userConfigDir string
	workspaceDir  string
	folders       []string
	environ       []string

	enableWatcher bool
	closed        bool

	// files maps each candidate settings file to the layer it feeds.
	files    map[string]*fileLayer
	handlers []ChangeHandler

	configErrors map[string]error
}

// fileLayer describes a layer backed by the first existing file among
// candidates.
type fileLayer struct {
	name       string
	source     layer.Source
	root       string
	candidates []string
}

// Option configures a Config instance.
type Option func(*Config)

// WithUserConfigDir sets the user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(c *Config) {
		c.userConfigDir = dir
	}
}

// WithWorkspace sets the workspace root. Its .textcodec/settings file is
// loaded as the workspace layer.
func WithWorkspace(dir string) Option {
	return func(c *Config) {
		c.workspaceDir = dir
	}
}

// WithFolders adds folders whose .textcodec/settings files apply only to
// resources inside them.
func WithFolders(dirs ...string) Option {
	return func(c *Config) {
		c.folders = append(c.folders, dirs...)
	}
}

// WithWatcher enables reloading settings files when they change.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// WithFileSystem sets the file system settings files are read from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnviron replaces the process environment for the env layer.
func WithEnviron(environ []string) Option {
	return func(c *Config) {
		c.environ = environ
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// New creates a Config holding only the built-in defaults. Call Load to
// read settings files and the environment.
func New(opts ...Option) *Config {
	c := &Config{
		layers: layer.NewManager(),
		fs:     loader.DefaultFS(),
		files:  make(map[string]*fileLayer),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.userConfigDir == "" {
		c.userConfigDir = defaultUserConfigDir()
	}
	c.userConfigDir = absPath(c.userConfigDir)
	if c.workspaceDir != "" {
		c.workspaceDir = absPath(c.workspaceDir)
	}
	c.logger = logging.WithComponent(c.logger, "config")

	c.layers.AddLayer(layer.NewLayerWithData(layer.StandardLayerName(layer.SourceBuiltin),
		layer.SourceBuiltin, layer.PriorityBuiltin, defaultConfig()))
	return c
}

// Load reads the user, workspace and folder settings files and the
// environment. Missing files are skipped; malformed files are an error.
func (c *Config) Load(ctx context.Context) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	layers := []*fileLayer{{
		name:       layer.StandardLayerName(layer.SourceUser),
		source:     layer.SourceUser,
		candidates: candidates(c.userConfigDir),
	}}
	if c.workspaceDir != "" {
		layers = append(layers, &fileLayer{
			name:       layer.StandardLayerName(layer.SourceWorkspace),
			source:     layer.SourceWorkspace,
			candidates: candidates(filepath.Join(c.workspaceDir, WorkspaceDirName)),
		})
	}
	for _, dir := range c.folders {
		root := absPath(dir)
		layers = append(layers, &fileLayer{
			name:       "folder:" + root,
			source:     layer.SourceFolder,
			root:       root,
			candidates: candidates(filepath.Join(root, WorkspaceDirName)),
		})
	}

	for _, fl := range layers {
		if err := ctx.Err(); err != nil {
			c.mu.Unlock()
			return err
		}
		if err := c.loadFileLayer(fl); err != nil {
			c.mu.Unlock()
			return err
		}
		for _, path := range fl.candidates {
			c.files[path] = fl
		}
	}

	if err := c.loadEnvironment(); err != nil {
		c.mu.Unlock()
		return err
	}

	var watchErr error
	if c.enableWatcher && c.watcher == nil {
		watchErr = c.startWatcher()
	}
	c.mu.Unlock()

	if watchErr != nil {
		c.logger.Warn("settings reload disabled", "error", watchErr)
	}
	return nil
}

// Close stops watching settings files.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.closed = true
	c.mu.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}

// OnChange registers a handler called after settings change, either
// through Set or a reloaded settings file.
func (c *Config) OnChange(h ChangeHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// Get returns the global value at path.
func (c *Config) Get(path string) (any, bool) {
	v, _, ok := c.layers.Lookup(path, "")
	return v, ok
}

// Lookup returns the value at path as seen by resource. Resource scoped
// settings consult folder layers containing resource; application scoped
// settings ignore them.
func (c *Config) Lookup(path, resource string) (any, bool) {
	if SettingScope(path) != ScopeResource {
		resource = ""
	}
	v, _, ok := c.layers.Lookup(path, resource)
	return v, ok
}

// Source returns the name of the layer supplying path for resource.
func (c *Config) Source(path, resource string) string {
	if SettingScope(path) != ScopeResource {
		resource = ""
	}
	_, name, _ := c.layers.Lookup(path, resource)
	return name
}

// GetString returns a string value at path.
func (c *Config) GetString(path string) (string, error) {
	return c.lookupString(path, "")
}

// GetBool returns a boolean value at path.
func (c *Config) GetBool(path string) (bool, error) {
	return c.lookupBool(path, "")
}

// GetInt returns an integer value at path.
func (c *Config) GetInt(path string) (int64, error) {
	return c.lookupInt(path, "")
}

// Set sets path in the session layer, above every file and the
// environment. Known settings are validated first.
func (c *Config) Set(path string, value any) error {
	if s, ok := LookupSetting(path); ok {
		if err := s.Validate(value); err != nil {
			return err
		}
	}

	c.mu.Lock()
	before := c.layers.Merge()
	c.layers.SetInSession(path, value)
	changed := layer.ChangedPaths(before, c.layers.Merge())
	handlers := c.handlersLocked()
	c.mu.Unlock()

	notify(handlers, Change{Paths: changed, Layer: layer.StandardLayerName(layer.SourceSession)})
	return nil
}

// Merged returns the merged global configuration.
func (c *Config) Merged() map[string]any {
	return c.layers.Merge()
}

// ConfigErrors returns type errors met while reading typed settings.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.configErrors == nil {
		return nil
	}
	result := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		result[k] = v
	}
	return result
}

func (c *Config) loadFileLayer(fl *fileLayer) error {
	for _, path := range fl.candidates {
		data, err := loader.ForFile(c.fs, path).Load()
		if err != nil {
			return err
		}
		if data == nil {
			continue
		}

		l := layer.NewLayerWithData(fl.name, fl.source, layer.DefaultPriority(fl.source), data)
		l.Path = path
		l.Root = fl.root
		c.layers.AddLayer(l)
		c.logger.Debug("loaded settings", "layer", fl.name, "path", path)
		return nil
	}

	c.layers.RemoveLayer(fl.name)
	return nil
}

func (c *Config) loadEnvironment() error {
	var envLoader *loader.EnvLoader
	if c.environ != nil {
		envLoader = loader.NewEnvLoaderWithEnviron(loader.DefaultEnvPrefix, c.environ)
	} else {
		envLoader = loader.NewEnvLoader(loader.DefaultEnvPrefix)
	}

	data, err := envLoader.Load()
	if err != nil {
		return err
	}
	if len(data) > 0 {
		name := layer.StandardLayerName(layer.SourceEnv)
		c.layers.AddLayer(layer.NewLayerWithData(name, layer.SourceEnv, layer.PriorityEnv, data))
	}
	return nil
}

func (c *Config) startWatcher() error {
	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		c.logger.Warn("settings watcher", "error", err)
	}))
	if err != nil {
		return err
	}

	for path := range c.files {
		if err := w.Watch(path); err != nil {
			c.logger.Debug("not watching settings file", "path", path, "error", err)
		}
	}
	w.OnChange(c.handleFileChange)
	c.watcher = w
	return nil
}

// handleFileChange reloads the layer fed by the changed file.
func (c *Config) handleFileChange(event watcher.Event) {
	c.mu.Lock()
	fl, ok := c.files[event.Path]
	if !ok || c.closed {
		c.mu.Unlock()
		return
	}

	before := c.layers.MergeFor(fl.root)
	if err := c.loadFileLayer(fl); err != nil {
		c.mu.Unlock()
		c.logger.Warn("keeping previous settings", "path", event.Path, "error", err)
		return
	}
	changed := layer.ChangedPaths(before, c.layers.MergeFor(fl.root))
	handlers := c.handlersLocked()
	c.mu.Unlock()

	c.logger.Info("settings reloaded", "path", event.Path, "op", event.Op, "changed", len(changed))
	if len(changed) > 0 {
		notify(handlers, Change{Paths: changed, Layer: fl.name})
	}
}

func (c *Config) handlersLocked() []ChangeHandler {
	handlers := make([]ChangeHandler, len(c.handlers))
	copy(handlers, c.handlers)
	return handlers
}

func notify(handlers []ChangeHandler, change Change) {
	if len(change.Paths) == 0 {
		return
	}
	for _, h := range handlers {
		h(change)
	}
}

func (c *Config) lookupString(path, resource string) (string, error) {
	v, ok := c.Lookup(path, resource)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

func (c *Config) lookupBool(path, resource string) (bool, error) {
	v, ok := c.Lookup(path, resource)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

func (c *Config) lookupInt(path, resource string) (int64, error) {
	v, ok := c.Lookup(path, resource)
	if !ok {
		return 0, ErrSettingNotFound
	}
	i, ok := toInt64(v)
	if !ok {
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
	return i, nil
}

// The *Or helpers return the default for missing settings. Type errors
// also yield the default but are recorded for ConfigErrors.

func (c *Config) stringOr(path, resource, def string) string {
	v, err := c.lookupString(path, resource)
	if err != nil {
		c.recordConfigError(path, err)
		return def
	}
	return v
}

func (c *Config) boolOr(path, resource string, def bool) bool {
	v, err := c.lookupBool(path, resource)
	if err != nil {
		c.recordConfigError(path, err)
		return def
	}
	return v
}

func (c *Config) intOr(path, resource string, def int64) int64 {
	v, err := c.lookupInt(path, resource)
	if err != nil {
		c.recordConfigError(path, err)
		return def
	}
	return v
}

func (c *Config) recordConfigError(path string, err error) {
	if errors.Is(err, ErrSettingNotFound) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
		c.logger.Warn("invalid setting", "path", path, "error", err)
	}
}

func candidates(dir string) []string {
	paths := make([]string, len(settingsFileNames))
	for i, name := range settingsFileNames {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}

func defaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "textcodec")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "textcodec")
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int64(val), true
	default:
		return 0, false
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
