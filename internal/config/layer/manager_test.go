package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	m := NewManager()
	m.AddLayer(NewLayerWithData("defaults", SourceBuiltin, PriorityBuiltin, map[string]any{
		"files": map[string]any{"encoding": "utf8", "eol": "auto"},
	}))
	m.AddLayer(NewLayerWithData("user", SourceUser, PriorityUser, map[string]any{
		"files": map[string]any{"encoding": "windows1252"},
	}))

	folder := NewLayerWithData("folder:/src/legacy", SourceFolder, PriorityFolder, map[string]any{
		"files": map[string]any{"encoding": "shiftjis"},
	})
	folder.Root = "/src/legacy"
	m.AddLayer(folder)
	return m
}

func TestManager_AddLayerSortsAndReplaces(t *testing.T) {
	m := newTestManager()
	m.AddLayer(NewLayer("session", SourceSession, PrioritySession))
	m.AddLayer(NewLayerWithData("user", SourceUser, PriorityUser, map[string]any{"x": 1}))

	var names []string
	for _, l := range m.Layers() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"defaults", "user", "folder:/src/legacy", "session"}, names)

	user := m.Layer("user")
	require.NotNil(t, user)
	assert.Equal(t, map[string]any{"x": 1}, user.Data)
	assert.Nil(t, m.Layer("missing"))
}

func TestManager_RemoveLayer(t *testing.T) {
	m := newTestManager()

	assert.True(t, m.RemoveLayer("user"))
	assert.False(t, m.RemoveLayer("user"))

	v, _, ok := m.Lookup("files.encoding", "")
	require.True(t, ok)
	assert.Equal(t, "utf8", v)
}

func TestManager_MergeSkipsRootedLayers(t *testing.T) {
	m := newTestManager()

	merged := m.Merge()
	v, _ := GetByPath(merged, "files.encoding")
	assert.Equal(t, "windows1252", v)

	forLegacy := m.MergeFor("/src/legacy/a.txt")
	v, _ = GetByPath(forLegacy, "files.encoding")
	assert.Equal(t, "shiftjis", v)
	v, _ = GetByPath(forLegacy, "files.eol")
	assert.Equal(t, "auto", v)
}

func TestManager_Lookup(t *testing.T) {
	m := newTestManager()

	tests := []struct {
		name      string
		path      string
		resource  string
		want      any
		wantLayer string
		wantOK    bool
	}{
		{"global view", "files.encoding", "", "windows1252", "user", true},
		{"outside folder", "files.encoding", "/src/other/a.txt", "windows1252", "user", true},
		{"inside folder", "files.encoding", "/src/legacy/x/a.txt", "shiftjis", "folder:/src/legacy", true},
		{"falls through to defaults", "files.eol", "/src/legacy/a.txt", "auto", "defaults", true},
		{"missing", "files.nope", "", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, layerName, ok := m.Lookup(tt.path, tt.resource)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLayer, layerName)
		})
	}
}

func TestManager_LookupMergesMaps(t *testing.T) {
	m := newTestManager()

	got, _, ok := m.Lookup("files", "")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"encoding": "windows1252", "eol": "auto"}, got)
}

func TestManager_SetAndSession(t *testing.T) {
	m := newTestManager()

	require.NoError(t, m.Set("user", "files.eol", "crlf"))
	require.Error(t, m.Set("missing", "files.eol", "crlf"))

	m.SetInSession("files.encoding", "utf16le")
	m.SetInSession("files.autoGuessEncoding", true)

	merged := m.Merge()
	v, _ := GetByPath(merged, "files.eol")
	assert.Equal(t, "crlf", v)
	v, _ = GetByPath(merged, "files.encoding")
	assert.Equal(t, "utf16le", v)

	// Session beats folder layers too.
	v, layerName, _ := m.Lookup("files.encoding", "/src/legacy/a.txt")
	assert.Equal(t, "utf16le", v)
	assert.Equal(t, "session", layerName)

	require.NoError(t, m.Delete("session", "files.encoding"))
	v, _, _ = m.Lookup("files.encoding", "/src/legacy/a.txt")
	assert.Equal(t, "shiftjis", v)
}

func TestManager_MergeReturnsCopy(t *testing.T) {
	m := newTestManager()

	merged := m.Merge()
	SetByPath(merged, "files.encoding", "mutated")

	v, _ := GetByPath(m.Merge(), "files.encoding")
	assert.Equal(t, "windows1252", v)
}
