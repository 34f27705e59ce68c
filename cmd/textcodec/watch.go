package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/textcodec/internal/config"
	"github.com/dshills/textcodec/internal/encoding/resolve"
)

// annotationWatchSettings marks commands that keep running and want
// settings files reloaded.
const annotationWatchSettings = "textcodec/watch-settings"

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>...",
		Short: "Print read encodings again whenever settings change",
		Long: `Watch prints the encoding each file is read with, then keeps running and
prints the table again every time a settings file changes. Edits to
files.encoding and files.encodingOverrides take effect without a restart.
Stop it with Ctrl-C.`,
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{annotationWatchSettings: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), args)
		},
	}
}

func (a *app) watch(ctx context.Context, paths []string) error {
	// Registered after the resolver's binding, so overrides are current
	// by the time a change arrives here.
	changes := make(chan config.Change, 1)
	a.cfg.OnChange(func(ch config.Change) {
		select {
		case changes <- ch:
		default:
		}
	})

	if err := a.printReadEncodings(ctx, paths); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch := <-changes:
			a.logger.Info("settings changed", "layer", ch.Layer, "paths", ch.Paths)
			if err := a.printReadEncodings(ctx, paths); err != nil {
				return err
			}
		}
	}
}

func (a *app) printReadEncodings(ctx context.Context, paths []string) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	for _, path := range paths {
		r, err := a.inspect(ctx, path)
		if err != nil {
			return err
		}
		read := a.resolver.ReadEncoding(r.abs, resolve.ReadOptions{}, r.detected.Encoding)
		override, _ := a.resolver.Override(r.abs)
		fmt.Fprintf(tw, "%s\t%s\toverride: %s\n", path, show(read), show(override))
	}
	fmt.Fprintln(tw, "--")
	return tw.Flush()
}
