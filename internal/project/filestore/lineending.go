package filestore

import "strings"

// LineEnding is a line terminator style.
type LineEnding string

const (
	// LineEndingLF is Unix-style line ending (\n).
	LineEndingLF LineEnding = "lf"

	// LineEndingCRLF is Windows-style line ending (\r\n).
	LineEndingCRLF LineEnding = "crlf"

	// LineEndingCR is old Mac-style line ending (\r).
	LineEndingCR LineEnding = "cr"

	// LineEndingMixed indicates mixed line endings.
	LineEndingMixed LineEnding = "mixed"
)

// Sequence returns the terminator bytes, or "" for LineEndingMixed.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingLF:
		return "\n"
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	}
	return ""
}

// ParseEOL maps a files.eol value to a LineEnding.
// "auto" and unknown values report false: keep what the document has.
func ParseEOL(s string) (LineEnding, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lf", "\n":
		return LineEndingLF, true
	case "crlf", "\r\n":
		return LineEndingCRLF, true
	case "cr":
		return LineEndingCR, true
	}
	return "", false
}

// DetectLineEnding returns the dominant line ending in text. Text without
// line breaks is LF. When more than one style accounts for at least a tenth
// of the breaks, the result is LineEndingMixed.
func DetectLineEnding(text string) LineEnding {
	var lf, crlf, cr int

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
		case '\n':
			lf++
		}
	}

	total := lf + crlf + cr
	if total == 0 {
		return LineEndingLF
	}

	threshold := max(total/10, 1)
	styles := 0
	for _, n := range []int{lf, crlf, cr} {
		if n >= threshold {
			styles++
		}
	}
	if styles > 1 {
		return LineEndingMixed
	}

	switch {
	case crlf >= lf && crlf >= cr:
		return LineEndingCRLF
	case cr > lf:
		return LineEndingCR
	}
	return LineEndingLF
}

// NormalizeLineEndings rewrites every line break in text to ending.
// LineEndingMixed leaves text untouched.
func NormalizeLineEndings(text string, ending LineEnding) string {
	seq := ending.Sequence()
	if seq == "" || text == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			b.WriteString(seq)
		case '\n':
			b.WriteString(seq)
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
