package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcodec/internal/encoding"
	"github.com/dshills/textcodec/internal/encoding/detect"
	"github.com/dshills/textcodec/internal/project/vfs"
)

func TestInspect_GuessesOnce(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	a := &app{
		opts: globalOptions{autoGuess: true},
		fs:   vfs.NewOSFS(),
		guesser: detect.GuesserFunc(func([]byte) (detect.Guess, bool) {
			calls++
			return detect.Guess{Charset: "windows-1252", Confidence: 60}, true
		}),
	}

	r, err := a.inspect(context.Background(), writeFile(t, dir, "latin.txt", []byte("caf\xe9 cr\xe8me")))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, r.guessed)
	assert.Equal(t, encoding.Parse("windows1252"), r.guess)
	assert.Equal(t, encoding.Parse("windows1252"), r.detected.Encoding)

	// A BOM settles detection; the guess is still reported, once.
	calls = 0
	r, err = a.inspect(context.Background(), writeFile(t, dir, "u16.txt", []byte{0xFF, 0xFE, 'h', 0}))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, encoding.UTF16LE, r.detected.Encoding)
}
