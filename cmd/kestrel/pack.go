package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kestrel/internal/image"
)

func newPackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pack <in> <out.kimg>",
		Short: "Convert a text image into the binary image format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			if format, err := image.DetectFormat(out); err != nil || format != image.FormatBinary {
				return fmt.Errorf("%s: output must be a .kimg or .msgpack file", out)
			}
			var img *image.Image
			err := a.timer.Measure("load", func() error {
				var err error
				img, err = image.Load(cmd.Context(), in)
				return err
			})
			if err != nil {
				return err
			}
			if err := a.timer.Measure("write", func() error { return image.WriteFile(out, img) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packed %s -> %s (%d types, %d functions)\n",
				in, out, len(img.Types), len(img.Functions))
			return nil
		},
	}
}
