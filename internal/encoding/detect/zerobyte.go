package detect

// ZeroByteScanLimit bounds how many leading bytes the zero-byte heuristic reads.
const ZeroByteScanLimit = 512

// Classification is the verdict of the zero-byte heuristic.
type Classification uint8

const (
	// Inconclusive means no zero byte was seen in the scanned window.
	Inconclusive Classification = iota
	// LikelyUTF16LE means zero bytes appeared only at odd offsets.
	LikelyUTF16LE
	// LikelyUTF16BE means zero bytes appeared only at even offsets.
	LikelyUTF16BE
	// LikelyBinary means zero bytes broke both UTF-16 alternation patterns.
	LikelyBinary
)

// String returns the classification name.
func (c Classification) String() string {
	switch c {
	case Inconclusive:
		return "inconclusive"
	case LikelyUTF16LE:
		return "utf16le"
	case LikelyUTF16BE:
		return "utf16be"
	case LikelyBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ClassifyZeroBytes guesses UTF-16 byte order or binary content from the
// positions of zero bytes in the first n valid bytes of buf.
//
// UTF-16 text below U+0100 has a zero in every other byte: the high byte,
// which sits at odd offsets for little endian and even offsets for big
// endian. Binary formats that happen to share the pattern are reported as
// UTF-16, and UTF-16 text made only of surrogate pairs is missed.
func ClassifyZeroBytes(buf []byte, n int) Classification {
	n = min(validLen(buf, n), ZeroByteScanLimit)

	couldBeLE := true
	couldBeBE := true
	sawZero := false

	for i := 0; i < n; i++ {
		odd := i%2 == 1
		zero := buf[i] == 0
		if zero {
			sawZero = true
		}

		if couldBeLE && (odd != zero) {
			couldBeLE = false
		}
		if couldBeBE && (odd == zero) {
			couldBeBE = false
		}

		if zero && !couldBeLE && !couldBeBE {
			break
		}
	}

	switch {
	case !sawZero:
		return Inconclusive
	case couldBeLE:
		return LikelyUTF16LE
	case couldBeBE:
		return LikelyUTF16BE
	default:
		return LikelyBinary
	}
}
