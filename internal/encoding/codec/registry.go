// Package codec converts between bytes and text for named encodings.
//
// Registry is the general codec: a table of golang.org/x/text encoders keyed
// by canonical name. Codec is the facade the rest of the module uses; it
// canonicalizes names, keeps the UTF-8 fast path, and never lets the
// UTF-8-with-BOM pseudo-encoding reach the registry.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	gdenc "github.com/gdamore/encoding"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dshills/textcodec/internal/encoding"
)

// Errors returned by codec operations.
var (
	// ErrUnsupportedEncoding indicates no codec is registered for the name.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrMalformedInput indicates the bytes are not valid for the encoding.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnrepresentable indicates text holds a rune the encoding lacks.
	ErrUnrepresentable = errors.New("rune not representable")
)

// TransformError describes a failed byte/text conversion.
type TransformError struct {
	Op       string // "encode" or "decode"
	Encoding string
	Err      error
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Encoding, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransformError) Unwrap() error {
	return e.Err
}

// Registry maps canonical encoding names to codecs.
// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]xenc.Encoding
}

// NewRegistry creates a registry holding the default codec set.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]xenc.Encoding, len(defaultCodecs))}
	for name, enc := range defaultCodecs {
		r.codecs[name] = enc
	}
	return r
}

// defaultCodecs is keyed by canonical name.
var defaultCodecs = map[string]xenc.Encoding{
	encoding.NameUTF8:    unicode.UTF8,
	encoding.NameUTF16LE: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	encoding.NameUTF16BE: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"ascii":              asciiCodec{gdenc.ASCII},

	// Western and central European
	"windows1252": charmap.Windows1252,
	"iso88591":    charmap.ISO8859_1,
	"iso885915":   charmap.ISO8859_15,
	"macroman":    charmap.Macintosh,
	"cp437":       charmap.CodePage437,
	"cp850":       charmap.CodePage850,
	"cp865":       charmap.CodePage865,
	"windows1250": charmap.Windows1250,
	"iso88592":    charmap.ISO8859_2,
	"cp852":       charmap.CodePage852,
	"iso88593":    charmap.ISO8859_3,
	"iso885914":   charmap.ISO8859_14,
	"iso885916":   charmap.ISO8859_16,

	// Baltic and Nordic
	"windows1257": charmap.Windows1257,
	"iso88594":    charmap.ISO8859_4,
	"iso885910":   charmap.ISO8859_10,
	"iso885913":   charmap.ISO8859_13,

	// Cyrillic
	"windows1251": charmap.Windows1251,
	"cp866":       charmap.CodePage866,
	"iso88595":    charmap.ISO8859_5,
	"koi8r":       charmap.KOI8R,
	"koi8u":       charmap.KOI8U,

	// Greek, Turkish, Vietnamese, Thai
	"windows1253": charmap.Windows1253,
	"iso88597":    charmap.ISO8859_7,
	"windows1254": charmap.Windows1254,
	"iso88599":    charmap.ISO8859_9,
	"windows1258": charmap.Windows1258,
	"windows874":  charmap.Windows874,

	// Hebrew and Arabic
	"windows1255": charmap.Windows1255,
	"iso88598":    charmap.ISO8859_8,
	"windows1256": charmap.Windows1256,
	"iso88596":    charmap.ISO8859_6,

	// East Asian
	"shiftjis":  japanese.ShiftJIS,
	"eucjp":     japanese.EUCJP,
	"iso2022jp": japanese.ISO2022JP,
	"euckr":     korean.EUCKR,
	"gbk":       simplifiedchinese.GBK,
	"gb18030":   simplifiedchinese.GB18030,
	"hz":        simplifiedchinese.HZGB2312,
	"cp950":     traditionalchinese.Big5,
}

// Register adds or replaces the codec for name.
func (r *Registry) Register(name string, enc xenc.Encoding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[encoding.Canonical(name)] = enc
}

// Exists reports whether a codec is registered for name.
func (r *Registry) Exists(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Names returns the registered canonical names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode converts text to bytes in the named encoding. When addBOM is set and
// the encoding has a byte order mark, the mark is prepended.
// Runes the encoding cannot represent are an error.
func (r *Registry) Encode(text string, name string, addBOM bool) ([]byte, error) {
	enc, ok := r.lookup(name)
	if !ok {
		return nil, &TransformError{Op: "encode", Encoding: name, Err: ErrUnsupportedEncoding}
	}

	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(text))
	if err != nil {
		return nil, &TransformError{Op: "encode", Encoding: name, Err: err}
	}

	if addBOM {
		if bom := encoding.BOMBytes(encoding.Parse(name)); bom != nil {
			out = append(bom, out...)
		}
	}
	return out, nil
}

// Decode converts bytes in the named encoding to text.
// A leading byte order mark of that encoding is dropped.
// Malformed input is rejected rather than replaced.
func (r *Registry) Decode(data []byte, name string) (string, error) {
	enc, ok := r.lookup(name)
	if !ok {
		return "", &TransformError{Op: "decode", Encoding: name, Err: ErrUnsupportedEncoding}
	}

	target := encoding.Parse(name)
	if encoding.HasBOMPrefix(data, target) {
		data = data[len(encoding.BOMBytes(target)):]
	}

	if target.IsUTF8() {
		if !utf8.Valid(data) {
			return "", &TransformError{Op: "decode", Encoding: name, Err: ErrMalformedInput}
		}
		return string(data), nil
	}
	if (target == encoding.UTF16LE || target == encoding.UTF16BE) && len(data)%2 != 0 {
		return "", &TransformError{Op: "decode", Encoding: name, Err: ErrMalformedInput}
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", &TransformError{Op: "decode", Encoding: name, Err: err}
	}

	// Decoders substitute U+FFFD for bad input. Keep it only when the
	// source really encoded one.
	if bytes.ContainsRune(out, utf8.RuneError) {
		again, _, err := transform.Bytes(enc.NewEncoder(), out)
		if err != nil || !bytes.Equal(again, data) {
			return "", &TransformError{Op: "decode", Encoding: name, Err: ErrMalformedInput}
		}
	}
	return string(out), nil
}

func (r *Registry) lookup(name string) (xenc.Encoding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enc, ok := r.codecs[encoding.Canonical(name)]
	return enc, ok
}

// asciiCodec refuses to encode runes above 0x7F. The charmap it wraps
// would write 0x1A in their place.
type asciiCodec struct {
	xenc.Encoding
}

func (asciiCodec) NewEncoder() *xenc.Encoder {
	return &xenc.Encoder{Transformer: asciiEncoder{}}
}

type asciiEncoder struct {
	transform.NopResetter
}

func (asciiEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c >= utf8.RuneSelf {
			r, _ := utf8.DecodeRune(src[nSrc:])
			return nDst, nSrc, fmt.Errorf("%w: %q", ErrUnrepresentable, r)
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}
