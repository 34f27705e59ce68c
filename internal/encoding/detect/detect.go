package detect

import (
	"context"

	"github.com/dshills/textcodec/internal/encoding"
)

// Options controls a Detect call.
type Options struct {
	// AutoGuess enables the statistical guesser when the cheap heuristics
	// find nothing.
	AutoGuess bool

	// Guesser is consulted when AutoGuess is set. Nil disables guessing.
	Guesser Guesser
}

// Detect classifies the first n valid bytes of buf.
//
// A BOM is authoritative for UTF-16. Otherwise the zero-byte heuristic may
// report BOM-less UTF-16 or binary content. When nothing was found, the
// content does not look binary and opts.AutoGuess is set, the guesser runs.
//
// The only error is ctx's, returned when ctx is done before guessing.
func Detect(ctx context.Context, buf []byte, n int, opts Options) (encoding.Detected, error) {
	n = validLen(buf, n)

	bom := SniffBOM(buf, n)
	result := encoding.Detected{Encoding: bom.Encoding()}

	if bom != BOMUTF16BE && bom != BOMUTF16LE {
		switch ClassifyZeroBytes(buf, n) {
		case LikelyUTF16LE:
			result.Encoding = encoding.UTF16LE
		case LikelyUTF16BE:
			result.Encoding = encoding.UTF16BE
		case LikelyBinary:
			result.SeemsBinary = true
		}
	}

	if opts.AutoGuess && !result.SeemsBinary && result.Encoding.IsZero() && opts.Guesser != nil {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		return encoding.Detected{Encoding: GuessEncoding(opts.Guesser, buf[:n])}, nil
	}

	return result, nil
}
