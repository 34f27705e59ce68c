// Package detect classifies byte content by encoding.
//
// Detection runs from cheapest to most expensive: byte order mark, zero-byte
// statistics for BOM-less UTF-16, and finally an optional frequency-based
// guesser. Every stage is best effort; "no signal" is a normal outcome.
package detect

import (
	"github.com/dshills/textcodec/internal/encoding"
)

// BOM is the outcome of sniffing a buffer for a byte order mark.
type BOM uint8

const (
	// BOMInsufficient means too few bytes were available to decide.
	BOMInsufficient BOM = iota
	// BOMNone means the buffer starts with no known signature.
	BOMNone
	// BOMUTF8 is the EF BB BF signature.
	BOMUTF8
	// BOMUTF16BE is the FE FF signature.
	BOMUTF16BE
	// BOMUTF16LE is the FF FE signature.
	BOMUTF16LE
)

// String returns the BOM kind name.
func (b BOM) String() string {
	switch b {
	case BOMInsufficient:
		return "insufficient"
	case BOMNone:
		return "none"
	case BOMUTF8:
		return "utf8bom"
	case BOMUTF16BE:
		return "utf16be"
	case BOMUTF16LE:
		return "utf16le"
	default:
		return "unknown"
	}
}

// Encoding returns the encoding a BOM identifies.
// BOMNone and BOMInsufficient yield the zero Encoding.
func (b BOM) Encoding() encoding.Encoding {
	switch b {
	case BOMUTF8:
		return encoding.UTF8BOM
	case BOMUTF16BE:
		return encoding.UTF16BE
	case BOMUTF16LE:
		return encoding.UTF16LE
	default:
		return encoding.Encoding{}
	}
}

// SniffBOM inspects the first n valid bytes of buf for a byte order mark.
// The two-byte UTF-16 signatures are checked before the three-byte UTF-8 one.
func SniffBOM(buf []byte, n int) BOM {
	n = validLen(buf, n)
	if n < 2 {
		return BOMInsufficient
	}

	b0, b1 := buf[0], buf[1]
	if b0 == 0xFE && b1 == 0xFF {
		return BOMUTF16BE
	}
	if b0 == 0xFF && b1 == 0xFE {
		return BOMUTF16LE
	}

	if n < 3 {
		return BOMInsufficient
	}
	if b0 == 0xEF && b1 == 0xBB && buf[2] == 0xBF {
		return BOMUTF8
	}

	return BOMNone
}

// validLen clamps a caller-supplied byte count to the buffer.
func validLen(buf []byte, n int) int {
	if n < 0 {
		return 0
	}
	if n > len(buf) {
		return len(buf)
	}
	return n
}
