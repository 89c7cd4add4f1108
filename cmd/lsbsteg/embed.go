package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"lsbsteg"
	"lsbsteg/internal/imageio"
	"lsbsteg/internal/report"
)

var errVerifyFailed = errors.New("extracted message does not match")

func newEmbedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <carrier> <out>",
		Short: "Hide a message in a carrier image",
		Long: "Embed writes the message into the low bits of the carrier and saves the\n" +
			"result as PNG, BMP or TIFF (chosen by the extension of <out>).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEmbed(cmd, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringP("message", "m", "", "message to hide")
	f.String("message-file", "", "read the message from a file")
	addCodecFlags(f)
	f.String("compress", "", "pack the message first: none, zstd, lz4")
	f.String("report", "", "write the report to this file instead of stdout")
	addFormatFlag(f)
	f.Bool("verify", true, "re-read the output and extract the message")
	cmd.MarkFlagsMutuallyExclusive("message", "message-file")
	cmd.MarkFlagsOneRequired("message", "message-file")
	return cmd
}

func readMessage(f *pflag.FlagSet) (string, error) {
	if path, _ := f.GetString("message-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading message: %w", err)
		}
		return string(data), nil
	}
	msg, _ := f.GetString("message")
	return msg, nil
}

func (a *app) runEmbed(cmd *cobra.Command, carrierPath, outPath string) error {
	flags := cmd.Flags()

	message, err := readMessage(flags)
	if err != nil {
		return err
	}
	cfg, err := codecConfig(flags, a.cfg.Codec)
	if err != nil {
		return err
	}
	method, err := compression(flags, a.cfg.Compression)
	if err != nil {
		return err
	}
	format, err := reportFormat(flags, a.cfg.Report.Format)
	if err != nil {
		return err
	}
	verify := a.cfg.Report.Verify
	if flags.Changed("verify") {
		verify, _ = flags.GetBool("verify")
	}
	reportPath, _ := flags.GetString("report")

	// Reject a lossy output container before doing any work.
	if _, err := imageio.FormatFromPath(outPath); err != nil {
		return err
	}

	codec, err := lsbsteg.New(cfg, lsbsteg.WithLogger(a.logger))
	if err != nil {
		return err
	}

	carrier, carrierInfo, err := imageio.Load(carrierPath)
	if err != nil {
		return err
	}

	// Uncompressed messages use the plain wire format, readable by any LSB tool.
	body := []byte(message)
	if method != lsbsteg.CompressionNone {
		if body, err = lsbsteg.Pack(body, method); err != nil {
			return err
		}
	}
	payload, err := codec.FrameBytes(body)
	if err != nil {
		return err
	}
	plan, err := codec.Plan(carrier, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", carrierPath, err)
	}

	stego, err := codec.Embed(carrier, payload)
	if err != nil {
		return err
	}
	stegoInfo, err := imageio.Save(outPath, stego)
	if err != nil {
		return err
	}
	a.logger.Info("embedded message",
		"carrier", carrierPath,
		"out", outPath,
		"payload_bits", plan.PayloadBits,
		"capacity_bits", plan.CapacityBits,
		"compression", method,
	)

	r := &report.Report{Message: message}
	r.SetCodec(cfg, method)
	r.SetPlan(plan)
	r.Original = report.FileFromInfo(carrierInfo)
	r.Stego = report.FileFromInfo(stegoInfo)

	written := stego
	if verify {
		reread, _, err := imageio.Load(outPath)
		if err != nil {
			return err
		}
		extracted, err := extractText(codec, reread, method != lsbsteg.CompressionNone)
		if err != nil {
			return fmt.Errorf("verify %s: %w", outPath, err)
		}
		r.SetExtraction(extracted)
		written = reread
	}

	fid, err := lsbsteg.Compare(carrier, written)
	if err != nil {
		return err
	}
	r.SetFidelity(fid)

	if err := emitReport(cmd, r, format, reportPath); err != nil {
		return err
	}
	if r.Extraction != nil && !r.Extraction.Verified {
		a.logger.Warn("verification failed", "out", outPath)
		return fmt.Errorf("verify %s: %w", outPath, errVerifyFailed)
	}
	return nil
}

func extractText(c *lsbsteg.Codec, g *lsbsteg.Grid, packed bool) (string, error) {
	if packed {
		return c.ExtractPacked(g)
	}
	return c.Extract(g)
}
