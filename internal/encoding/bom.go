package encoding

import "bytes"

// Byte order mark signatures.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// UTF8BOMLen is the length of the UTF-8 byte order mark.
const UTF8BOMLen = 3

// BOMBytes returns a copy of the byte order mark written for e,
// or nil if e has no BOM form.
func BOMBytes(e Encoding) []byte {
	var sig []byte
	switch e.name {
	case NameUTF8:
		sig = bomUTF8
	case NameUTF16BE:
		sig = bomUTF16BE
	case NameUTF16LE:
		sig = bomUTF16LE
	default:
		return nil
	}
	out := make([]byte, len(sig))
	copy(out, sig)
	return out
}

// HasBOMPrefix reports whether data starts with the byte order mark of e.
func HasBOMPrefix(data []byte, e Encoding) bool {
	switch e.name {
	case NameUTF8:
		return bytes.HasPrefix(data, bomUTF8)
	case NameUTF16BE:
		return bytes.HasPrefix(data, bomUTF16BE)
	case NameUTF16LE:
		return bytes.HasPrefix(data, bomUTF16LE)
	}
	return false
}
