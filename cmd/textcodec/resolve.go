package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/textcodec/internal/config"
	"github.com/dshills/textcodec/internal/encoding/resolve"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		encName   string
		write     bool
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Explain which encoding a file is read or written with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			requested, err := a.parseEncoding(encName)
			if err != nil {
				return err
			}
			abs, err := a.fs.Abs(args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\n", args[0])

			override, _ := a.resolver.Override(abs)
			fmt.Fprintf(tw, "  override:\t%s\n", show(override))

			pref := a.cfg.Preferences().Encoding(abs)
			if pref == "" {
				pref = "-"
			}
			fmt.Fprintf(tw, "  files.encoding:\t%s (%s)\n", pref, a.cfg.Source(config.KeyEncoding, abs))
			fmt.Fprintf(tw, "  requested:\t%s\n", show(requested))

			if write {
				res := a.resolver.WriteEncoding(ctx, abs, resolve.WriteOptions{
					Encoding:          requested,
					OverwriteEncoding: overwrite,
				})
				fmt.Fprintf(tw, "  write as:\t%s\n", show(res.Encoding))
				fmt.Fprintf(tw, "  bom:\t%t\n", res.HasBOM)
				return tw.Flush()
			}

			r, err := a.inspect(ctx, args[0])
			if err != nil {
				return err
			}
			read := a.resolver.ReadEncoding(abs, resolve.ReadOptions{Encoding: requested}, r.detected.Encoding)
			fmt.Fprintf(tw, "  detected:\t%s\n", show(r.detected.Encoding))
			fmt.Fprintf(tw, "  read as:\t%s\n", show(read))
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&encName, "encoding", "e", "", "encoding requested by the caller")
	cmd.Flags().BoolVar(&write, "write", false, "resolve the write encoding instead of the read encoding")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "with --write, ignore a BOM already in the file")
	return cmd
}
