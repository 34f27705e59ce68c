package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayer_AppliesTo(t *testing.T) {
	global := NewLayer("user", SourceUser, PriorityUser)
	folder := NewLayer("folder:/src/app", SourceFolder, PriorityFolder)
	folder.Root = "/src/app"

	assert.True(t, global.AppliesTo(""))
	assert.True(t, global.AppliesTo("/anything"))

	assert.False(t, folder.AppliesTo(""))
	assert.True(t, folder.AppliesTo("/src/app"))
	assert.True(t, folder.AppliesTo("/src/app/main.go"))
	assert.False(t, folder.AppliesTo("/src/application/main.go"))
}

func TestLayer_Clone(t *testing.T) {
	original := NewLayerWithData("user", SourceUser, PriorityUser, map[string]any{
		"files": map[string]any{
			"encoding":          "utf8",
			"encodingOverrides": []any{map[string]any{"extension": "txt"}},
		},
	})
	original.Path = "/home/u/.config/textcodec/settings.toml"

	cloned := original.Clone()
	require.Equal(t, original.Path, cloned.Path)

	SetByPath(cloned.Data, "files.encoding", "latin1")
	overrides := cloned.Data["files"].(map[string]any)["encodingOverrides"].([]any)
	overrides[0].(map[string]any)["extension"] = "md"

	v, _ := GetByPath(original.Data, "files.encoding")
	assert.Equal(t, "utf8", v)
	origOverrides := original.Data["files"].(map[string]any)["encodingOverrides"].([]any)
	assert.Equal(t, "txt", origOverrides[0].(map[string]any)["extension"])
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "builtin", SourceBuiltin.String())
	assert.Equal(t, "folder", SourceFolder.String())
	assert.Equal(t, "session", SourceSession.String())
	assert.Equal(t, "unknown", Source(99).String())
}

func TestDefaultPriority(t *testing.T) {
	sources := []Source{SourceBuiltin, SourceUser, SourceWorkspace, SourceFolder, SourceEnv, SourceSession}
	for i := 1; i < len(sources); i++ {
		assert.Less(t, DefaultPriority(sources[i-1]), DefaultPriority(sources[i]), sources[i].String())
	}
	assert.Equal(t, "defaults", StandardLayerName(SourceBuiltin))
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"files":   map[string]any{"encoding": "utf8", "eol": "auto"},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"files":   map[string]any{"encoding": "latin1"},
		"logging": "off",
	}

	got := DeepMerge(dst, src)

	assert.Equal(t, map[string]any{
		"files":   map[string]any{"encoding": "latin1", "eol": "auto"},
		"logging": "off",
	}, got)
	assert.Equal(t, map[string]any{}, DeepMerge(nil, nil))
}

func TestPathHelpers(t *testing.T) {
	data := map[string]any{}

	SetByPath(data, "files.encoding", "utf16le")
	v, ok := GetByPath(data, "files.encoding")
	require.True(t, ok)
	assert.Equal(t, "utf16le", v)

	_, ok = GetByPath(data, "files.encoding.deeper")
	assert.False(t, ok)
	_, ok = GetByPath(data, "")
	assert.False(t, ok)

	assert.True(t, DeleteByPath(data, "files.encoding"))
	assert.False(t, DeleteByPath(data, "files.encoding"))
	assert.False(t, DeleteByPath(data, "nope.x"))
}

func TestChangedPaths(t *testing.T) {
	old := map[string]any{
		"files":   map[string]any{"encoding": "utf8", "eol": "lf"},
		"logging": map[string]any{"level": "info"},
	}
	new := map[string]any{
		"files":   map[string]any{"encoding": "latin1", "eol": "lf", "autoGuessEncoding": true},
		"logging": map[string]any{},
	}

	assert.Equal(t, []string{"files.autoGuessEncoding", "files.encoding", "logging", "logging.level"}, ChangedPaths(old, new))
	assert.Empty(t, ChangedPaths(old, old))
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("/a/b", "/a/b"))
	assert.True(t, Within("/a/b/c.txt", "/a/b/"))
	assert.False(t, Within("/a/bc", "/a/b"))
	assert.True(t, Within("/a/./b/c", "/a/b"))
}
