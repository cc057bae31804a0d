package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/maax3v3/hyperrgb/internal/cli"
	"github.com/maax3v3/hyperrgb/internal/pipeline"
	"github.com/maax3v3/hyperrgb/internal/reduce"
)

var composeOpts = cli.DefaultOptions()

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Assemble an RGB or CMYK composite from a band-stack directory",
	RunE:  runCompose,
}

func init() {
	f := composeCmd.Flags()
	f.StringVarP(&composeOpts.Input, "input", "i", "", "Band-stack directory (one image per band, optional <band>.txt metadata sidecars)")
	f.StringVarP(&composeOpts.Output, "output", "o", "", "Base name for output rasters and group (appends _rgb or _cmyk)")
	f.StringVar(&composeOpts.OutDir, "out-dir", ".", "Directory for output PNGs and the group manifest")
	f.StringVar(&composeOpts.Colorspace, "colorspace", composeOpts.Colorspace, "Output color space (rgb, cmyk)")
	f.StringVar(&composeOpts.Statistic, "statistic", composeOpts.Statistic,
		"Statistic for folding multiple bands into a channel ("+strings.Join(reduce.Names(), ", ")+")")
	f.StringVar(&composeOpts.Colorblind, "colorblind", composeOpts.Colorblind, "Color blind safe palette adjustment (none, protanopia, deuteranopia, tritanopia)")
	f.Float64Var(&composeOpts.RedWavelength, "red-wavelength", composeOpts.RedWavelength, "Target wavelength for red channel (nm)")
	f.Float64Var(&composeOpts.GreenWavelength, "green-wavelength", composeOpts.GreenWavelength, "Target wavelength for green channel (nm)")
	f.Float64Var(&composeOpts.BlueWavelength, "blue-wavelength", composeOpts.BlueWavelength, "Target wavelength for blue channel (nm)")
	f.Float64Var(&composeOpts.CyanWavelength, "cyan-wavelength", composeOpts.CyanWavelength, "Target wavelength for cyan channel (nm) - cmyk only")
	f.Float64Var(&composeOpts.MagentaWavelength, "magenta-wavelength", composeOpts.MagentaWavelength, "Target wavelength for magenta channel (nm) - cmyk only")
	f.Float64Var(&composeOpts.YellowWavelength, "yellow-wavelength", composeOpts.YellowWavelength, "Target wavelength for yellow channel (nm) - cmyk only")
	f.Float64Var(&composeOpts.KeyWavelength, "key-wavelength", composeOpts.KeyWavelength, "Target wavelength for key/black channel (nm) - cmyk only")
	f.Float64Var(&composeOpts.Window, "window", 0, "Selection half-width around each target (nm); 0 selects the single nearest band")
	f.BoolVarP(&composeOpts.Normalize, "normalize", "n", false, "Normalize output bands to 0-255")
	composeCmd.MarkFlagRequired("input")
	composeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	cfg, err := composeOpts.Validate()
	if err != nil {
		return err
	}
	return pipeline.Run(cfg)
}
