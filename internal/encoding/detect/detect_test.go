package detect

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcodec/internal/encoding"
)

func TestSniffBOM(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		n    int
		want BOM
	}{
		{"empty", nil, 0, BOMInsufficient},
		{"one byte", []byte{0xEF}, 1, BOMInsufficient},
		{"utf16be", []byte{0xFE, 0xFF, 0x00, 0x41}, 4, BOMUTF16BE},
		{"utf16le", []byte{0xFF, 0xFE, 0x41, 0x00}, 4, BOMUTF16LE},
		{"utf16le two bytes", []byte{0xFF, 0xFE}, 2, BOMUTF16LE},
		{"utf8 prefix only two bytes", []byte{0xEF, 0xBB}, 2, BOMInsufficient},
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'a'}, 4, BOMUTF8},
		{"plain text", []byte("hello"), 5, BOMNone},
		{"two plain bytes", []byte("hi"), 2, BOMInsufficient},
		{"count limits view", []byte{0xEF, 0xBB, 0xBF}, 2, BOMInsufficient},
		{"count beyond buffer", []byte{0xFF, 0xFE}, 100, BOMUTF16LE},
		{"negative count", []byte{0xFF, 0xFE}, -1, BOMInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffBOM(tt.buf, tt.n))
		})
	}
}

func TestBOM_Encoding(t *testing.T) {
	assert.Equal(t, encoding.UTF8BOM, BOMUTF8.Encoding())
	assert.Equal(t, encoding.UTF16BE, BOMUTF16BE.Encoding())
	assert.Equal(t, encoding.UTF16LE, BOMUTF16LE.Encoding())
	assert.True(t, BOMNone.Encoding().IsZero())
	assert.True(t, BOMInsufficient.Encoding().IsZero())
}

func TestClassifyZeroBytes(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want Classification
	}{
		{"utf16le", []byte{0x41, 0x00, 0x42, 0x00, 0x43, 0x00}, LikelyUTF16LE},
		{"utf16be", []byte{0x00, 0x41, 0x00, 0x42, 0x00, 0x43}, LikelyUTF16BE},
		{"binary", []byte{0x00, 0x00, 0xFF, 0xAA, 0x00, 0x12}, LikelyBinary},
		{"no zero bytes", []byte("plain ascii text"), Inconclusive},
		{"empty", nil, Inconclusive},
		{"single zero", []byte{0x00}, LikelyUTF16BE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyZeroBytes(tt.buf, len(tt.buf)))
		})
	}
}

func TestClassifyZeroBytes_ScanLimit(t *testing.T) {
	// A zero byte past the scan window is never seen.
	buf := append(bytes.Repeat([]byte{'a'}, ZeroByteScanLimit), 0x00, 0x00)
	assert.Equal(t, Inconclusive, ClassifyZeroBytes(buf, len(buf)))

	// The same zero inside the window marks the content binary.
	buf = append(bytes.Repeat([]byte{'a'}, ZeroByteScanLimit-4), 0x00, 0x00)
	assert.Equal(t, LikelyBinary, ClassifyZeroBytes(buf, len(buf)))
}

func TestClassifyZeroBytes_RespectsCount(t *testing.T) {
	buf := []byte{'a', 'b', 0x00, 0x00}
	assert.Equal(t, Inconclusive, ClassifyZeroBytes(buf, 2))
	assert.Equal(t, LikelyBinary, ClassifyZeroBytes(buf, 4))
}

type stubGuesser struct {
	guess Guess
	ok    bool
	calls int
	seen  int
}

func (s *stubGuesser) Guess(buf []byte) (Guess, bool) {
	s.calls++
	s.seen = len(buf)
	return s.guess, s.ok
}

func TestGuessEncoding(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		ok      bool
		want    encoding.Encoding
	}{
		{"windows-1252", "windows-1252", true, encoding.Parse("windows1252")},
		{"shift jis", "Shift_JIS", true, encoding.Parse("shiftjis")},
		{"utf8", "UTF-8", true, encoding.UTF8},
		{"ascii ignored", "ASCII", true, encoding.Encoding{}},
		{"ascii lower ignored", "ascii", true, encoding.Encoding{}},
		{"utf16 ignored", "UTF-16", true, encoding.Encoding{}},
		{"utf32 ignored", "utf-32", true, encoding.Encoding{}},
		{"utf16le ignored", "UTF-16LE", true, encoding.Encoding{}},
		{"utf16be ignored", "UTF-16BE", true, encoding.Encoding{}},
		{"utf32le ignored", "UTF-32LE", true, encoding.Encoding{}},
		{"utf32be ignored", "UTF-32BE", true, encoding.Encoding{}},
		{"no opinion", "", false, encoding.Encoding{}},
		{"empty charset", "", true, encoding.Encoding{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &stubGuesser{guess: Guess{Charset: tt.charset, Confidence: 80}, ok: tt.ok}
			assert.Equal(t, tt.want, GuessEncoding(g, []byte("content")))
		})
	}
}

func TestGuessEncoding_Truncates(t *testing.T) {
	g := &stubGuesser{guess: Guess{Charset: "UTF-8"}, ok: true}
	GuessEncoding(g, make([]byte, GuessMaxBytes*2))
	assert.Equal(t, GuessMaxBytes, g.seen)
}

func TestGuessEncoding_NilGuesser(t *testing.T) {
	assert.True(t, GuessEncoding(nil, []byte("abc")).IsZero())
}

func TestChardetGuesser_UTF8(t *testing.T) {
	text := strings.Repeat("日本語のテキストです。漢字とかなが混ざっています。", 20)

	got := GuessEncoding(NewChardetGuesser(), []byte(text))

	assert.Equal(t, encoding.UTF8, got)
}

func TestDetect(t *testing.T) {
	utf16leText := []byte{0x48, 0x00, 0x69, 0x00}
	utf16beText := []byte{0x00, 0x48, 0x00, 0x69}

	tests := []struct {
		name       string
		buf        []byte
		want       encoding.Encoding
		wantBinary bool
	}{
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "hi"...), encoding.UTF8BOM, false},
		{"utf16le bom", append([]byte{0xFF, 0xFE}, utf16leText...), encoding.UTF16LE, false},
		{"utf16be bom", append([]byte{0xFE, 0xFF}, utf16beText...), encoding.UTF16BE, false},
		{"utf16le no bom", utf16leText, encoding.UTF16LE, false},
		{"utf16be no bom", utf16beText, encoding.UTF16BE, false},
		{"binary", []byte{0x00, 0x00, 0xFF, 0xAA, 0x00, 0x12}, encoding.Encoding{}, true},
		{"utf8 bom then zeros", []byte{0xEF, 0xBB, 0xBF, 0x00, 0x01}, encoding.UTF8BOM, true},
		{"plain", []byte("plain text"), encoding.Encoding{}, false},
		{"empty", nil, encoding.Encoding{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(context.Background(), tt.buf, len(tt.buf), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Encoding)
			assert.Equal(t, tt.wantBinary, got.SeemsBinary)
		})
	}
}

func TestDetect_GuesserOnlyWhenInconclusive(t *testing.T) {
	ctx := context.Background()

	t.Run("guess used for plain text", func(t *testing.T) {
		g := &stubGuesser{guess: Guess{Charset: "windows-1252"}, ok: true}
		got, err := Detect(ctx, []byte("caf\xe9"), 4, Options{AutoGuess: true, Guesser: g})
		require.NoError(t, err)
		assert.Equal(t, encoding.Parse("windows1252"), got.Encoding)
		assert.False(t, got.SeemsBinary)
		assert.Equal(t, 1, g.calls)
	})

	t.Run("not requested", func(t *testing.T) {
		g := &stubGuesser{guess: Guess{Charset: "windows-1252"}, ok: true}
		got, err := Detect(ctx, []byte("cafe"), 4, Options{Guesser: g})
		require.NoError(t, err)
		assert.True(t, got.Encoding.IsZero())
		assert.Zero(t, g.calls)
	})

	t.Run("skipped for binary", func(t *testing.T) {
		g := &stubGuesser{guess: Guess{Charset: "windows-1252"}, ok: true}
		buf := []byte{0x00, 0x00, 0xFF, 0xAA, 0x00, 0x12}
		got, err := Detect(ctx, buf, len(buf), Options{AutoGuess: true, Guesser: g})
		require.NoError(t, err)
		assert.True(t, got.SeemsBinary)
		assert.Zero(t, g.calls)
	})

	t.Run("skipped when bom found", func(t *testing.T) {
		g := &stubGuesser{guess: Guess{Charset: "windows-1252"}, ok: true}
		buf := []byte{0xEF, 0xBB, 0xBF, 'a'}
		got, err := Detect(ctx, buf, len(buf), Options{AutoGuess: true, Guesser: g})
		require.NoError(t, err)
		assert.Equal(t, encoding.UTF8BOM, got.Encoding)
		assert.Zero(t, g.calls)
	})

	t.Run("guesser sees only valid bytes", func(t *testing.T) {
		g := &stubGuesser{guess: Guess{Charset: "UTF-8"}, ok: true}
		_, err := Detect(ctx, []byte("abcdef"), 3, Options{AutoGuess: true, Guesser: g})
		require.NoError(t, err)
		assert.Equal(t, 3, g.seen)
	})

	t.Run("ignored guess", func(t *testing.T) {
		g := &stubGuesser{guess: Guess{Charset: "ascii"}, ok: true}
		got, err := Detect(ctx, []byte("abc"), 3, Options{AutoGuess: true, Guesser: g})
		require.NoError(t, err)
		assert.True(t, got.Encoding.IsZero())
	})
}

func TestDetect_CancelledBeforeGuess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &stubGuesser{guess: Guess{Charset: "windows-1252"}, ok: true}
	got, err := Detect(ctx, []byte("abc"), 3, Options{AutoGuess: true, Guesser: g})

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, got.Encoding.IsZero())
	assert.Zero(t, g.calls)
}
