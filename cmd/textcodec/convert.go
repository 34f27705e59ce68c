package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dshills/textcodec/internal/encoding"
	"github.com/dshills/textcodec/internal/project/filestore"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		from   string
		to     string
		bom    bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <file> --to <encoding>",
		Short: "Re-encode a file",
		Long: `Convert reads a file (detecting its encoding unless --from is given) and
writes it in the --to encoding, in place or to --output. --bom adds a byte
order mark to UTF-8 output; UTF-16 output always carries one.
files.encodingOverrides still apply to the output path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			src, err := a.parseEncoding(from)
			if err != nil {
				return err
			}
			if to == "" {
				return errors.New("--to is required")
			}
			target, err := a.parseEncoding(to)
			if err != nil {
				return err
			}
			if bom && target.IsUTF8() {
				target = encoding.UTF8BOM
			}

			doc, err := a.store.Open(ctx, args[0], filestore.OpenOptions{
				Encoding:  src,
				AutoGuess: a.opts.autoGuess,
			})
			if err != nil {
				return err
			}
			before := doc.Encoding()

			if err := a.store.SetEncoding(ctx, doc.Path(), target, filestore.ModeSave); err != nil {
				return err
			}
			if output == "" {
				err = a.store.Save(ctx, doc.Path())
			} else {
				err = a.store.SaveAs(ctx, doc.Path(), output)
			}
			if err != nil {
				return err
			}

			after := doc.Encoding()
			a.logger.Info("converted",
				"path", doc.Path(),
				"from", before.Encoding,
				"to", after.Encoding,
				"bom", after.HasBOM,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source encoding (default: detect)")
	cmd.Flags().StringVar(&to, "to", "", "target encoding")
	cmd.Flags().BoolVar(&bom, "bom", false, "write a UTF-8 byte order mark")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this path instead of in place")
	return cmd
}
