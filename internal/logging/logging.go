// Package logging builds the structured loggers used across textcodec.
//
// Loggers are charmbracelet/log loggers. Components receive a *log.Logger
// and tag their records with WithComponent.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Formats accepted by Options.Format.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// Options configures a logger.
type Options struct {
	// Level is the minimum level: debug, info, warn, error or fatal.
	// Empty means info.
	Level string

	// Format is text, json or logfmt. Empty means text.
	Format string

	// Prefix is prepended to every message.
	Prefix string

	// Timestamps enables the time field.
	Timestamps bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Level:  "info",
		Format: FormatText,
		Prefix: "textcodec",
	}
}

// New creates a logger writing to w. A nil w writes to stderr.
func New(w io.Writer, opts Options) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := parseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Timestamps,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// WithComponent returns a child logger tagged with component.
// A nil logger yields a discarding logger.
func WithComponent(l *log.Logger, component string) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l.With("component", component)
}

// ParseLevel parses a level name. Empty means info.
func ParseLevel(s string) (log.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return log.InfoLevel, nil
	case "warning":
		return log.WarnLevel, nil
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("logging: invalid level %q", s)
	}
	return level, nil
}

func parseFormat(s string) (log.Formatter, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", FormatText:
		return log.TextFormatter, nil
	case FormatJSON:
		return log.JSONFormatter, nil
	case FormatLogfmt:
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("logging: invalid format %q", s)
	}
}
