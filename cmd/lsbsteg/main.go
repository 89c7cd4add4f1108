// Command lsbsteg hides a text message in the least-significant bits of an
// image, reads it back, and measures the distortion.
//
//	lsbsteg embed cat.jpg stego.png -m "hello"
//	lsbsteg extract stego.png
//	lsbsteg compare cat.jpg stego.png
//	lsbsteg capacity cat.jpg --bits 2
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"lsbsteg"
	"lsbsteg/internal/config"
	"lsbsteg/internal/report"
)

var version = "dev"

// app carries what PersistentPreRunE prepares for every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "lsbsteg",
		Short:             "Hide text in the low bits of lossless images",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().String("config", "", "YAML config file (default $"+config.EnvVar+")")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newEmbedCmd(a),
		newExtractCmd(a),
		newCompareCmd(a),
		newCapacityCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lsbsteg:", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	var err error
	if path != "" {
		a.cfg, err = config.LoadFile(path)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if flags.Changed("log-level") {
		a.cfg.Log.Level, _ = flags.GetString("log-level")
	}
	level, err := a.cfg.LogLevel()
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// --- shared flag helpers ---

func addCodecFlags(f *pflag.FlagSet) {
	f.IntP("bits", "k", lsbsteg.DefaultBitsPerChannel, "low bits used per channel (1 or 2)")
	f.Int("header-bits", lsbsteg.DefaultHeaderBits, "length header width; both sides must agree")
}

// codecConfig applies --bits and --header-bits on top of base when they
// were given explicitly.
func codecConfig(f *pflag.FlagSet, base lsbsteg.Config) (lsbsteg.Config, error) {
	cfg := base
	if f.Changed("bits") {
		cfg.BitsPerChannel, _ = f.GetInt("bits")
	}
	if f.Changed("header-bits") {
		cfg.HeaderBits, _ = f.GetInt("header-bits")
	}
	return cfg, cfg.Validate()
}

func addFormatFlag(f *pflag.FlagSet) {
	f.String("format", "", "report format: text, json, yaml, cbor")
}

func reportFormat(f *pflag.FlagSet, base string) (report.Format, error) {
	name := base
	if f.Changed("format") {
		name, _ = f.GetString("format")
	}
	return report.ParseFormat(name)
}

func compression(f *pflag.FlagSet, base string) (lsbsteg.Compression, error) {
	name := base
	if f.Changed("compress") {
		name, _ = f.GetString("compress")
	}
	return lsbsteg.ParseCompression(name)
}

// emitReport writes r to path, or to the command output when path is empty.
func emitReport(cmd *cobra.Command, r *report.Report, format report.Format, path string) error {
	if path == "" {
		return report.Write(cmd.OutOrStdout(), r, format)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := report.Write(out, r, format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return out.Close()
}
