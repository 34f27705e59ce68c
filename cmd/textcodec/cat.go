package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/textcodec/internal/project/filestore"
)

func newCatCmd(a *app) *cobra.Command {
	var (
		encName string
		binary  bool
	)

	cmd := &cobra.Command{
		Use:   "cat <file>",
		Short: "Decode a file and print it as UTF-8",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := a.parseEncoding(encName)
			if err != nil {
				return err
			}

			doc, err := a.store.Open(cmd.Context(), args[0], filestore.OpenOptions{
				Encoding:     enc,
				AutoGuess:    a.opts.autoGuess,
				AcceptBinary: binary,
			})
			if err != nil {
				return err
			}

			a.logger.Debug("decoded", "path", doc.Path(), "encoding", doc.Encoding().Encoding)
			_, err = fmt.Fprint(a.stdout, doc.Text())
			return err
		},
	}

	cmd.Flags().StringVarP(&encName, "encoding", "e", "", "read with this encoding instead of detecting it")
	cmd.Flags().BoolVar(&binary, "binary", false, "print content that looks binary")
	return cmd
}
