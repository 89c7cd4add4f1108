package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lsbsteg"
	"lsbsteg/internal/imageio"
)

func newCapacityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capacity <image>",
		Short: "Show how much text an image can carry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCapacity(cmd, args[0])
		},
	}
	addCodecFlags(cmd.Flags())
	return cmd
}

func (a *app) runCapacity(cmd *cobra.Command, path string) error {
	cfg, err := codecConfig(cmd.Flags(), a.cfg.Codec)
	if err != nil {
		return err
	}
	codec, err := lsbsteg.New(cfg, lsbsteg.WithLogger(a.logger))
	if err != nil {
		return err
	}
	g, info, err := imageio.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Image:             %s (%s %dx%d)\n", path, info.Format, info.Width, info.Height)
	fmt.Fprintf(out, "Bits per channel:  %d\n", cfg.BitsPerChannel)
	fmt.Fprintf(out, "Capacity bits:     %d\n", codec.Capacity(g))
	fmt.Fprintf(out, "Max message bytes: %d\n", codec.MaxMessageBytes(g))
	return nil
}
