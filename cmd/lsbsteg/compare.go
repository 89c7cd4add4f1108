package main

import (
	"github.com/spf13/cobra"

	"lsbsteg"
	"lsbsteg/internal/imageio"
	"lsbsteg/internal/report"
)

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <original> <modified>",
		Short: "Measure MSE, PSNR and changed pixels between two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd, args[0], args[1])
		},
	}
	addFormatFlag(cmd.Flags())
	return cmd
}

func (a *app) runCompare(cmd *cobra.Command, origPath, modPath string) error {
	format, err := reportFormat(cmd.Flags(), a.cfg.Report.Format)
	if err != nil {
		return err
	}

	orig, origInfo, err := imageio.Load(origPath)
	if err != nil {
		return err
	}
	mod, modInfo, err := imageio.Load(modPath)
	if err != nil {
		return err
	}

	fid, err := lsbsteg.Compare(orig, mod)
	if err != nil {
		return err
	}

	r := &report.Report{
		Original: report.FileFromInfo(origInfo),
		Stego:    report.FileFromInfo(modInfo),
	}
	r.SetFidelity(fid)
	return emitReport(cmd, r, format, "")
}
