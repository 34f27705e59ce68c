// Package encoding defines the encoding vocabulary shared by detection,
// resolution and conversion.
//
// An Encoding is either a plain codec name ("utf8", "utf16le", "windows1252", ...)
// or the UTF-8-with-BOM variant. The BOM variant is a decision-making signal:
// it tells the writer to emit a byte-order mark, but the codec layer only ever
// sees "utf8". CodecName enforces that split.
package encoding

import (
	"strings"
	"unicode"
)

// Canonical names of the encodings the engine reasons about directly.
const (
	NameUTF8    = "utf8"
	NameUTF8BOM = "utf8bom"
	NameUTF16LE = "utf16le"
	NameUTF16BE = "utf16be"
)

// Encoding identifies a character encoding.
// The zero value means "no encoding" and is reported by IsZero.
type Encoding struct {
	name string
	bom  bool
}

// Well-known encodings.
var (
	UTF8    = Encoding{name: NameUTF8}
	UTF8BOM = Encoding{name: NameUTF8, bom: true}
	UTF16LE = Encoding{name: NameUTF16LE}
	UTF16BE = Encoding{name: NameUTF16BE}
)

// aliases maps canonical spellings produced by detectors or users to the
// names the codec registry knows.
var aliases = map[string]string{
	"big5":      "cp950",
	"ibm866":    "cp866",
	"latin1":    "iso88591",
	"usascii":   "ascii",
	"iso88598i": "iso88598",
	"sjis":      "shiftjis",
	"utf8sig":   NameUTF8BOM,
}

// Canonical normalizes an encoding label: non-alphanumeric runes are dropped,
// the rest is lowercased, and known aliases are mapped.
// "UTF-8" becomes "utf8", "Shift_JIS" becomes "shiftjis".
func Canonical(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	name := b.String()
	if mapped, ok := aliases[name]; ok {
		return mapped
	}
	return name
}

// Parse converts a label into an Encoding.
// An empty or blank label yields the zero Encoding.
func Parse(label string) Encoding {
	name := Canonical(label)
	switch name {
	case "":
		return Encoding{}
	case NameUTF8BOM:
		return UTF8BOM
	default:
		return Encoding{name: name}
	}
}

// IsZero reports whether e carries no encoding.
func (e Encoding) IsZero() bool {
	return e.name == ""
}

// IsUTF8BOM reports whether e is the UTF-8-with-BOM variant.
func (e Encoding) IsUTF8BOM() bool {
	return e.bom
}

// IsUTF8 reports whether e is plain UTF-8 (without the BOM variant).
func (e Encoding) IsUTF8() bool {
	return e.name == NameUTF8 && !e.bom
}

// AlwaysHasBOM reports whether writes in e always carry a byte-order mark.
func (e Encoding) AlwaysHasBOM() bool {
	return e.bom || e.name == NameUTF16LE || e.name == NameUTF16BE
}

// CodecName returns the name handed to the codec layer.
// The UTF-8-with-BOM variant maps to "utf8".
func (e Encoding) CodecName() string {
	return e.name
}

// String returns the setting value for e, "utf8bom" for the BOM variant.
func (e Encoding) String() string {
	if e.bom {
		return NameUTF8BOM
	}
	return e.name
}

// MarshalText implements encoding.TextMarshaler.
func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(text []byte) error {
	*e = Parse(string(text))
	return nil
}

// ResourceEncoding is the resolved, write-ready description of how a
// resource's text is serialized.
type ResourceEncoding struct {
	Encoding Encoding
	HasBOM   bool
}

// Detected is the result of inspecting content.
// A zero Encoding means no signal, not "plain text confirmed".
type Detected struct {
	Encoding    Encoding
	SeemsBinary bool
}

// Override pins resources to an encoding, either by parent directory or by
// file extension (without the leading dot).
type Override struct {
	Parent    string
	Extension string
	Encoding  Encoding
}
