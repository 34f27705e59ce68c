package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dshills/textcodec/internal/config"
	"github.com/dshills/textcodec/internal/encoding"
	"github.com/dshills/textcodec/internal/encoding/codec"
	"github.com/dshills/textcodec/internal/encoding/detect"
	"github.com/dshills/textcodec/internal/encoding/resolve"
	"github.com/dshills/textcodec/internal/logging"
	"github.com/dshills/textcodec/internal/project/filestore"
	"github.com/dshills/textcodec/internal/project/vfs"
)

// globalOptions are the persistent flags.
type globalOptions struct {
	configDir string
	workspace string
	logLevel  string
	autoGuess bool
}

// app holds the collaborators shared by all subcommands. It is populated
// by setup before a subcommand runs.
type app struct {
	opts   globalOptions
	stdout io.Writer
	stderr io.Writer

	// watchSettings reloads settings files while the command runs.
	watchSettings bool

	cfg      *config.Config
	logger   *log.Logger
	fs       *vfs.OSFS
	codec    *codec.Codec
	guesser  detect.Guesser
	resolver *resolve.Resolver
	store    *filestore.Store
}

func versionString() string {
	if version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "textcodec",
		Short: "Detect, resolve and convert text file encodings",
		Long: `textcodec inspects and converts text files the way an editor does.

Encodings come from, strongest first: files.encodingOverrides, the
encoding given on the command line, what detection finds in the file
(byte order mark, UTF-16 zero-byte pattern, optional statistical guess),
and the files.encoding setting. Unknown names fall back to UTF-8.

Settings are read from the user config directory, <workspace>/.textcodec
and TEXTCODEC_* environment variables.`,
		Version:       versionString(),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.watchSettings = cmd.Annotations[annotationWatchSettings] == "true"
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configDir, "config-dir", "", "user configuration directory (default $XDG_CONFIG_HOME/textcodec)")
	flags.StringVarP(&a.opts.workspace, "workspace", "w", ".", "workspace root; its .textcodec directory holds workspace settings")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn or error (default from logging.level)")
	flags.BoolVar(&a.opts.autoGuess, "auto-guess", false, "guess the encoding statistically when detection finds nothing")

	root.AddCommand(
		newDetectCmd(a),
		newCatCmd(a),
		newConvertCmd(a),
		newEncodingsCmd(a),
		newResolveCmd(a),
		newWatchCmd(a),
	)
	return root
}

// setup loads configuration and wires the encoding stack.
func (a *app) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	bootLevel := a.opts.logLevel
	if bootLevel == "" {
		bootLevel = "warn"
	}
	boot, err := logging.New(a.stderr, logging.Options{Level: bootLevel})
	if err != nil {
		return err
	}

	cfgOpts := []config.Option{config.WithLogger(boot)}
	if a.opts.configDir != "" {
		cfgOpts = append(cfgOpts, config.WithUserConfigDir(a.opts.configDir))
	}
	if a.opts.workspace != "" {
		cfgOpts = append(cfgOpts, config.WithWorkspace(a.opts.workspace))
	}
	if a.watchSettings {
		cfgOpts = append(cfgOpts, config.WithWatcher(true))
	}
	a.cfg = config.New(cfgOpts...)
	if err := a.cfg.Load(ctx); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := a.cfg.Logging()
	if a.opts.logLevel != "" {
		logCfg.Level = a.opts.logLevel
	}
	a.logger, err = logging.New(a.stderr, logging.Options{Level: logCfg.Level, Format: logCfg.Format})
	if err != nil {
		return err
	}

	a.fs = vfs.NewOSFS()
	a.codec = codec.New(nil)
	a.guesser = detect.NewChardetGuesser()
	a.resolver = resolve.New(resolve.Deps{
		Storage:     a.fs,
		Preferences: a.cfg.Preferences(),
		Registry:    a.codec,
	})
	if err := a.cfg.BindOverrides(a.resolver); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.store = filestore.New(a.fs, a.resolver, a.codec,
		filestore.WithSettings(a.cfg),
		filestore.WithGuesser(a.guesser),
		filestore.WithLogger(a.logger),
	)

	a.logger.Debug("configuration loaded", "overrides", len(a.resolver.Overrides()), "autoGuess", a.opts.autoGuess)
	return nil
}

func (a *app) close() error {
	if a.cfg == nil {
		return nil
	}
	return a.cfg.Close()
}

// parseEncoding parses a user supplied name. Empty means "not given".
func (a *app) parseEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return encoding.Encoding{}, nil
	}
	enc := encoding.Parse(name)
	if !a.codec.Exists(enc) {
		return encoding.Encoding{}, fmt.Errorf("unsupported encoding %q (see textcodec encodings)", name)
	}
	return enc, nil
}

// autoGuess reports whether guessing is on for resource.
func (a *app) autoGuess(resource string) bool {
	return a.opts.autoGuess || a.cfg.Files(resource).AutoGuessEncoding
}

func show(enc encoding.Encoding) string {
	if enc.IsZero() {
		return "-"
	}
	return enc.String()
}
