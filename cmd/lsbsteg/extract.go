package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lsbsteg"
	"lsbsteg/internal/imageio"
)

func newExtractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <stego>",
		Short: "Read a hidden message from an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args[0])
		},
	}

	f := cmd.Flags()
	addCodecFlags(f)
	f.Bool("packed", false, "the message was embedded with --compress")
	f.StringP("out", "o", "", "write the message to this file instead of stdout")
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, path string) error {
	flags := cmd.Flags()

	cfg, err := codecConfig(flags, a.cfg.Codec)
	if err != nil {
		return err
	}
	method, err := lsbsteg.ParseCompression(a.cfg.Compression)
	if err != nil {
		return err
	}
	packed := method != lsbsteg.CompressionNone
	if flags.Changed("packed") {
		packed, _ = flags.GetBool("packed")
	}
	outPath, _ := flags.GetString("out")

	codec, err := lsbsteg.New(cfg, lsbsteg.WithLogger(a.logger))
	if err != nil {
		return err
	}
	g, info, err := imageio.Load(path)
	if err != nil {
		return err
	}

	message, err := extractText(codec, g, packed)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	a.logger.Debug("extracted message", "path", path, "format", info.Format, "bytes", len(message))

	if outPath != "" {
		return os.WriteFile(outPath, []byte(message), 0o644)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), message)
	return err
}
