package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/textcodec/internal/encoding"
	"github.com/dshills/textcodec/internal/encoding/detect"
	"github.com/dshills/textcodec/internal/encoding/resolve"
)

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>...",
		Short: "Show what encoding detection finds in files",
		Long: `Detect reports, for each file, the byte order mark, the verdict of the
zero-byte UTF-16 heuristic, the statistical guess (with --auto-guess or
files.autoGuessEncoding) and the encoding the file would be read with.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			for _, path := range args {
				if err := a.detectFile(cmd.Context(), tw, path); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}

// headResult is detection over the head of one file.
type headResult struct {
	abs      string
	head     []byte
	detected encoding.Detected
	guessed  bool
	guess    encoding.Encoding
}

// memoGuesser runs the wrapped guesser at most once.
type memoGuesser struct {
	g     detect.Guesser
	ran   bool
	guess detect.Guess
	ok    bool
}

func (m *memoGuesser) Guess(buf []byte) (detect.Guess, bool) {
	if !m.ran {
		m.guess, m.ok = m.g.Guess(buf)
		m.ran = true
	}
	return m.guess, m.ok
}

// inspect reads the head of path and runs detection on it. A missing file
// yields an empty head.
func (a *app) inspect(ctx context.Context, path string) (headResult, error) {
	abs, err := a.fs.Abs(path)
	if err != nil {
		return headResult{}, err
	}

	head, err := a.fs.ReadFileHead(abs, detect.GuessMaxBytes)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return headResult{}, err
	}

	r := headResult{abs: abs, head: head, guessed: a.autoGuess(abs)}
	var guesser detect.Guesser
	if a.guesser != nil {
		guesser = &memoGuesser{g: a.guesser}
	}

	r.detected, err = detect.Detect(ctx, head, len(head), detect.Options{
		AutoGuess: r.guessed,
		Guesser:   guesser,
	})
	if err != nil {
		return headResult{}, err
	}
	if r.guessed {
		r.guess = detect.GuessEncoding(guesser, head)
	}
	return r, nil
}

func (a *app) detectFile(ctx context.Context, tw *tabwriter.Writer, path string) error {
	r, err := a.inspect(ctx, path)
	if err != nil {
		return err
	}
	if !a.fs.Exists(r.abs) {
		return fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}

	guess := "off"
	if r.guessed {
		guess = show(r.guess)
	}
	read := a.resolver.ReadEncoding(r.abs, resolve.ReadOptions{}, r.detected.Encoding)

	fmt.Fprintf(tw, "%s\n", path)
	fmt.Fprintf(tw, "  bom:\t%s\n", detect.SniffBOM(r.head, len(r.head)))
	fmt.Fprintf(tw, "  zero-bytes:\t%s\n", detect.ClassifyZeroBytes(r.head, len(r.head)))
	fmt.Fprintf(tw, "  guess:\t%s\n", guess)
	fmt.Fprintf(tw, "  detected:\t%s\n", show(r.detected.Encoding))
	fmt.Fprintf(tw, "  binary:\t%t\n", r.detected.SeemsBinary)
	fmt.Fprintf(tw, "  read as:\t%s\n", show(read))

	a.logger.Debug("detected", "path", r.abs, "encoding", r.detected.Encoding, "binary", r.detected.SeemsBinary)
	return nil
}
