package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/textcodec/internal/encoding"
)

func newEncodingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encodings",
		Short: "List supported encodings",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			names := a.codec.Registry().Names()
			for _, name := range names {
				if _, err := fmt.Fprintln(a.stdout, name); err != nil {
					return err
				}
				if name == encoding.NameUTF8 {
					if _, err := fmt.Fprintln(a.stdout, encoding.UTF8BOM); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}
