package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/textcodec/internal/encoding"
)

func TestOverrides_Match(t *testing.T) {
	latin1 := encoding.Parse("iso88591")
	sjis := encoding.Parse("shiftjis")

	overrides := Overrides{
		{Parent: "/home/u/legacy", Encoding: latin1},
		{Extension: "sjs", Encoding: sjis},
		{Extension: "txt", Encoding: encoding.UTF16LE},
	}

	tests := []struct {
		name     string
		resource string
		want     encoding.Encoding
		ok       bool
	}{
		{"parent itself", "/home/u/legacy", latin1, true},
		{"descendant", "/home/u/legacy/a/b.c", latin1, true},
		{"sibling prefix is not a child", "/home/u/legacy2/a.c", encoding.Encoding{}, false},
		{"parent wins over extension", "/home/u/legacy/notes.txt", latin1, true},
		{"extension", "/tmp/script.sjs", sjis, true},
		{"second extension rule", "/tmp/readme.txt", encoding.UTF16LE, true},
		{"extension must match fully", "/tmp/readme.txtx", encoding.Encoding{}, false},
		{"no match", "/tmp/main.go", encoding.Encoding{}, false},
		{"empty resource", "", encoding.Encoding{}, false},
		{"unclean path", "/home/u/../u/legacy/x", latin1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := overrides.Match(tt.resource)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverrides_FirstMatchWins(t *testing.T) {
	overrides := Overrides{
		{Extension: "md", Encoding: encoding.UTF8BOM},
		{Extension: "md", Encoding: encoding.UTF16BE},
	}

	got, ok := overrides.Match("/docs/a.md")
	assert.True(t, ok)
	assert.Equal(t, encoding.UTF8BOM, got)
}

func TestOverrides_SkipsEmptyEncoding(t *testing.T) {
	overrides := Overrides{
		{Extension: "md"},
		{Extension: "md", Encoding: encoding.UTF16BE},
	}

	got, ok := overrides.Match("/docs/a.md")
	assert.True(t, ok)
	assert.Equal(t, encoding.UTF16BE, got)
}

func TestIsEqualOrParent(t *testing.T) {
	assert.True(t, isEqualOrParent("/a/b", "/a/b"))
	assert.True(t, isEqualOrParent("/a/b/c", "/a/b/"))
	assert.True(t, isEqualOrParent("/a/b/c", "/"))
	assert.False(t, isEqualOrParent("/a/bc", "/a/b"))
	assert.False(t, isEqualOrParent("/a", "/a/b"))
}
