package detect

import (
	"strings"
	"sync"

	"github.com/saintfish/chardet"

	"github.com/dshills/textcodec/internal/encoding"
)

// GuessMaxBytes bounds the prefix handed to the statistical guesser.
const GuessMaxBytes = 512 * 128

// Guess is a guesser's best charset for a buffer.
type Guess struct {
	Charset    string
	Confidence int
}

// Guesser is a frequency-based charset detector.
// Guess returns false when it has no opinion.
type Guesser interface {
	Guess(buf []byte) (Guess, bool)
}

// GuesserFunc adapts a function to the Guesser interface.
type GuesserFunc func(buf []byte) (Guess, bool)

// Guess calls f(buf).
func (f GuesserFunc) Guess(buf []byte) (Guess, bool) {
	return f(buf)
}

// ignoredGuesses are discarded even when the guesser is confident.
// ASCII would pin the file to a charset that cannot hold later non-ASCII
// edits, UTF-16 has a dedicated heuristic, and UTF-32 has no codec.
var ignoredGuesses = map[string]bool{
	"ascii": true,
}

// ignoredGuessPrefixes drop every byte order variant of a family.
var ignoredGuessPrefixes = []string{"utf16", "utf32"}

func ignoredGuess(charset string) bool {
	canonical := encoding.Canonical(charset)
	if ignoredGuesses[charset] || ignoredGuesses[canonical] {
		return true
	}
	for _, prefix := range ignoredGuessPrefixes {
		if strings.HasPrefix(canonical, prefix) {
			return true
		}
	}
	return false
}

// GuessEncoding runs g over at most GuessMaxBytes of buf and returns the
// resulting encoding, or the zero Encoding when there is no usable guess.
func GuessEncoding(g Guesser, buf []byte) encoding.Encoding {
	if g == nil || len(buf) == 0 {
		return encoding.Encoding{}
	}
	if len(buf) > GuessMaxBytes {
		buf = buf[:GuessMaxBytes]
	}

	guess, ok := g.Guess(buf)
	if !ok || guess.Charset == "" {
		return encoding.Encoding{}
	}

	lower := strings.ToLower(guess.Charset)
	if ignoredGuess(lower) {
		return encoding.Encoding{}
	}
	return encoding.Parse(lower)
}

// ChardetGuesser guesses charsets with github.com/saintfish/chardet.
// The underlying detector is built on first use.
type ChardetGuesser struct {
	once     sync.Once
	detector *chardet.Detector
}

// NewChardetGuesser creates a guesser backed by chardet's text detector.
func NewChardetGuesser() *ChardetGuesser {
	return &ChardetGuesser{}
}

// Ensure ChardetGuesser implements Guesser.
var _ Guesser = (*ChardetGuesser)(nil)

// Guess implements Guesser.
func (g *ChardetGuesser) Guess(buf []byte) (Guess, bool) {
	g.once.Do(func() {
		g.detector = chardet.NewTextDetector()
	})

	result, err := g.detector.DetectBest(buf)
	if err != nil || result == nil {
		return Guess{}, false
	}
	return Guess{Charset: result.Charset, Confidence: result.Confidence}, true
}
