package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/dshills/textcodec/internal/encoding"
)

// overrideEntry is one element of files.encodingOverrides.
type overrideEntry struct {
	Parent    string `mapstructure:"parent"`
	Extension string `mapstructure:"extension"`
	Encoding  string `mapstructure:"encoding"`
}

// EncodingOverrides returns the effective override list. The user config
// directory is always read and written as UTF-8 and comes first; the
// configured files.encodingOverrides entries follow in order.
//
// Relative parents are resolved against the workspace, "~/" against the
// home directory, and a leading dot on extensions is dropped.
func (c *Config) EncodingOverrides() ([]encoding.Override, error) {
	c.mu.RLock()
	userDir, workspace := c.userConfigDir, c.workspaceDir
	c.mu.RUnlock()

	var overrides []encoding.Override
	if userDir != "" {
		overrides = append(overrides, encoding.Override{Parent: filepath.Clean(userDir), Encoding: encoding.UTF8})
	}

	raw, ok := c.Get(KeyEncodingOverrides)
	if !ok || raw == nil {
		return overrides, nil
	}

	var entries []overrideEntry
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &entries,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &ValidationError{Path: KeyEncodingOverrides, Value: raw, Message: err.Error()}
	}

	for i, e := range entries {
		path := fmt.Sprintf("%s[%d]", KeyEncodingOverrides, i)

		enc := encoding.Parse(e.Encoding)
		if enc.IsZero() {
			return nil, &ValidationError{Path: path, Value: e.Encoding, Message: "encoding is required"}
		}

		o := encoding.Override{
			Extension: strings.TrimPrefix(strings.TrimSpace(e.Extension), "."),
			Encoding:  enc,
		}
		if e.Parent != "" {
			o.Parent = resolveParent(e.Parent, workspace)
		}
		if o.Parent == "" && o.Extension == "" {
			return nil, &ValidationError{Path: path, Value: e, Message: "parent or extension is required"}
		}
		overrides = append(overrides, o)
	}
	return overrides, nil
}

// OverrideSink receives the override list.
type OverrideSink interface {
	SetOverrides([]encoding.Override)
}

// BindOverrides hands the current override list to sink, then hands it a
// fresh list whenever files.encodingOverrides changes through Set or a
// reloaded settings file. A list that fails to validate after a change is
// logged and sink keeps the previous one.
func (c *Config) BindOverrides(sink OverrideSink) error {
	overrides, err := c.EncodingOverrides()
	if err != nil {
		return err
	}
	sink.SetOverrides(overrides)

	c.OnChange(func(ch Change) {
		if !touches(ch.Paths, KeyEncodingOverrides) {
			return
		}
		overrides, err := c.EncodingOverrides()
		if err != nil {
			c.logger.Warn("keeping previous encoding overrides", "layer", ch.Layer, "error", err)
			return
		}
		sink.SetOverrides(overrides)
		c.logger.Debug("encoding overrides updated", "layer", ch.Layer, "count", len(overrides))
	})
	return nil
}

// touches reports whether any of paths is key or lies below it.
func touches(paths []string, key string) bool {
	for _, p := range paths {
		if p == key || strings.HasPrefix(p, key+".") || strings.HasPrefix(p, key+"[") {
			return true
		}
	}
	return false
}

func resolveParent(parent, workspace string) string {
	switch {
	case parent == "~" || strings.HasPrefix(parent, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			parent = filepath.Join(home, strings.TrimPrefix(parent, "~"))
		}
	case !filepath.IsAbs(parent) && workspace != "":
		parent = filepath.Join(workspace, parent)
	}

	if abs, err := filepath.Abs(parent); err == nil {
		return abs
	}
	return filepath.Clean(parent)
}
