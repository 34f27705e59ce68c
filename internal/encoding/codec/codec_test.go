package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textcodec/internal/encoding"
)

func TestRegistry_RoundTripEveryCodec(t *testing.T) {
	reg := NewRegistry()
	const text = "Hello, world 0123456789 (plain) text!"

	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			data, err := reg.Encode(text, name, false)
			require.NoError(t, err)

			got, err := reg.Decode(data, name)
			require.NoError(t, err)
			assert.Equal(t, text, got)
		})
	}
}

func TestRegistry_RoundTripNativeText(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		text string
	}{
		{"utf8", "héllo wörld 世界 🙂"},
		{"utf16le", "héllo wörld 世界 🙂"},
		{"utf16be", "héllo wörld 世界 🙂"},
		{"windows1252", "café déjà vu €"},
		{"iso88591", "señor ñandú"},
		{"koi8r", "Привет, мир"},
		{"windows1251", "Привет, мир"},
		{"shiftjis", "日本語のテキスト"},
		{"eucjp", "日本語のテキスト"},
		{"euckr", "한국어 텍스트"},
		{"gbk", "中文文本"},
		{"gb18030", "中文文本"},
		{"cp950", "中文文本"},
		{"windows1253", "Καλημέρα"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := reg.Encode(tt.text, tt.name, false)
			require.NoError(t, err)

			got, err := reg.Decode(data, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)
		})
	}
}

func TestRegistry_CanonicalLookup(t *testing.T) {
	reg := NewRegistry()

	assert.True(t, reg.Exists("UTF-8"))
	assert.True(t, reg.Exists("Shift_JIS"))
	assert.True(t, reg.Exists("windows-1252"))
	assert.True(t, reg.Exists("Big5"))
	assert.False(t, reg.Exists("utf8bom"))
	assert.False(t, reg.Exists("utf32"))
	assert.False(t, reg.Exists(""))
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	require.False(t, reg.Exists("latin9"))

	reg.Register("Latin-9", reg.codecs["iso885915"])

	assert.True(t, reg.Exists("latin9"))
	assert.Contains(t, reg.Names(), "latin9")
}

func TestRegistry_EncodeErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Encode("text", "klingon", false)
	require.ErrorIs(t, err, ErrUnsupportedEncoding)

	_, err = reg.Encode("日本", "windows1252", false)
	require.Error(t, err)
	var te *TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "encode", te.Op)
	assert.Equal(t, "windows1252", te.Encoding)

	for _, text := range []string{"café", "café €日", "\u00a0"} {
		_, err = reg.Encode(text, "ascii", false)
		require.ErrorIs(t, err, ErrUnrepresentable, text)
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "encode", te.Op)
	}

	got, err := reg.Encode("plain ascii\n", "us-ascii", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("plain ascii\n"), got)
}

func TestRegistry_DecodeErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Decode([]byte("abc"), "klingon")
	require.ErrorIs(t, err, ErrUnsupportedEncoding)

	_, err = reg.Decode([]byte{'a', 0xFF, 0xFE, 'b'}, "utf8")
	require.ErrorIs(t, err, ErrMalformedInput)

	malformed := []struct {
		name     string
		data     []byte
		encoding string
	}{
		{"odd length utf16le", []byte{0x41, 0x00, 0x42}, "utf16le"},
		{"odd length utf16be", []byte{0x00, 0x41, 0x00}, "utf16be"},
		{"lone surrogate", []byte{0x00, 0xD8, 0x41, 0x00}, "utf16le"},
		{"truncated shift jis", []byte{0x81}, "shiftjis"},
		{"truncated euc-kr", []byte{'a', 0xB0}, "euckr"},
		{"high byte ascii", []byte{'a', 0xE9}, "ascii"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Decode(tt.data, tt.encoding)
			require.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestRegistry_DecodeKeepsEncodedReplacementChar(t *testing.T) {
	reg := NewRegistry()

	got, err := reg.Decode([]byte{'a', 0x00, 0xFD, 0xFF}, "utf16le")
	require.NoError(t, err)
	assert.Equal(t, "a\uFFFD", got)

	got, err = reg.Decode([]byte("a\xEF\xBF\xBD"), "utf8")
	require.NoError(t, err)
	assert.Equal(t, "a\uFFFD", got)
}

func TestRegistry_DecodeStripsBOM(t *testing.T) {
	reg := NewRegistry()

	got, err := reg.Decode([]byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, "utf8")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	got, err = reg.Decode([]byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}, "utf16le")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	got, err = reg.Decode([]byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}, "utf16be")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestCodec_Encode(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name   string
		target encoding.ResourceEncoding
		want   []byte
	}{
		{"utf8 fast path", encoding.ResourceEncoding{Encoding: encoding.UTF8}, []byte("hi")},
		{"zero encoding is utf8", encoding.ResourceEncoding{}, []byte("hi")},
		{"utf8 with bom flag", encoding.ResourceEncoding{Encoding: encoding.UTF8, HasBOM: true}, []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}},
		{"utf8bom variant", encoding.ResourceEncoding{Encoding: encoding.UTF8BOM, HasBOM: true}, []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}},
		{"utf16le with bom", encoding.ResourceEncoding{Encoding: encoding.UTF16LE, HasBOM: true}, []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}},
		{"utf16be with bom", encoding.ResourceEncoding{Encoding: encoding.UTF16BE, HasBOM: true}, []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}},
		{"utf16le without bom", encoding.ResourceEncoding{Encoding: encoding.UTF16LE}, []byte{'h', 0x00, 'i', 0x00}},
		{"charmap ignores bom flag", encoding.ResourceEncoding{Encoding: encoding.Parse("windows1252"), HasBOM: true}, []byte("hi")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Encode("hi", tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodec_DecodeBOMVariant(t *testing.T) {
	c := New(nil)

	got, err := c.Decode([]byte{0xEF, 0xBB, 0xBF, 'o', 'k'}, encoding.UTF8BOM)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	got, err = c.Decode([]byte("ok"), encoding.Encoding{})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestCodec_RoundTripWithBOM(t *testing.T) {
	c := New(nil)
	const text = "grüße, 世界"

	for _, enc := range []encoding.Encoding{encoding.UTF8BOM, encoding.UTF16LE, encoding.UTF16BE} {
		t.Run(enc.String(), func(t *testing.T) {
			data, err := c.Encode(text, encoding.ResourceEncoding{Encoding: enc, HasBOM: true})
			require.NoError(t, err)
			assert.True(t, encoding.HasBOMPrefix(data, enc))

			got, err := c.Decode(data, enc)
			require.NoError(t, err)
			assert.Equal(t, text, got)
		})
	}
}

func TestCodec_Exists(t *testing.T) {
	c := New(nil)

	assert.True(t, c.Exists(encoding.UTF8))
	assert.True(t, c.Exists(encoding.UTF8BOM))
	assert.True(t, c.Exists(encoding.UTF16LE))
	assert.True(t, c.Exists(encoding.Parse("cp437")))
	assert.False(t, c.Exists(encoding.Parse("utf32")))
	assert.False(t, c.Exists(encoding.Encoding{}))
}
