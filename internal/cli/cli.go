// Package cli validates command-line options into the typed configuration
// the pipeline consumes.
package cli

import (
	"fmt"
	"strings"

	"github.com/maax3v3/hyperrgb/internal/composite"
	"github.com/maax3v3/hyperrgb/internal/reduce"
)

// Options holds the raw option values as bound from command-line flags.
type Options struct {
	Input      string // band-stack directory
	Output     string // base name for output rasters and group
	OutDir     string // directory for flushed outputs
	Colorspace string
	Statistic  string
	Colorblind string

	RedWavelength     float64
	GreenWavelength   float64
	BlueWavelength    float64
	CyanWavelength    float64
	MagentaWavelength float64
	YellowWavelength  float64
	KeyWavelength     float64

	Window    float64
	Normalize bool
}

// DefaultOptions returns the option defaults: an RGB composite with the
// standard target wavelengths and mean folding.
func DefaultOptions() Options {
	return Options{
		Colorspace:        "rgb",
		Statistic:         "mean",
		Colorblind:        "none",
		RedWavelength:     650,
		GreenWavelength:   550,
		BlueWavelength:    450,
		CyanWavelength:    490,
		MagentaWavelength: 580,
		YellowWavelength:  570,
		KeyWavelength:     800,
	}
}

// Config is the validated configuration.
type Config struct {
	Input      string
	Output     string
	OutDir     string
	Colorspace composite.Colorspace
	Statistic  reduce.Statistic
	Colorblind composite.ColorblindMode
	Requests   []composite.ChannelRequest
	Window     float64
	Normalize  bool
}

// Validate checks the raw options and returns the typed configuration.
func (o Options) Validate() (Config, error) {
	if o.Input == "" {
		return Config{}, fmt.Errorf("--input is required")
	}
	if o.Output == "" {
		return Config{}, fmt.Errorf("--output is required")
	}
	if o.OutDir == "" {
		return Config{}, fmt.Errorf("--out-dir is required")
	}

	cs, err := composite.ParseColorspace(o.Colorspace)
	if err != nil {
		return Config{}, fmt.Errorf("--colorspace: %w", err)
	}
	stat, err := reduce.ParseStatistic(o.Statistic)
	if err != nil {
		return Config{}, fmt.Errorf("--statistic: %w (supported: %s)", err, strings.Join(reduce.Names(), ", "))
	}
	cb, err := composite.ParseColorblindMode(o.Colorblind)
	if err != nil {
		return Config{}, fmt.Errorf("--colorblind: %w", err)
	}
	if o.Window < 0 {
		return Config{}, fmt.Errorf("--window must be >= 0, got %g", o.Window)
	}

	var requests []composite.ChannelRequest
	switch cs {
	case composite.RGB:
		requests = composite.RGBRequests(o.RedWavelength, o.GreenWavelength, o.BlueWavelength)
	case composite.CMYK:
		requests = composite.CMYKRequests(o.CyanWavelength, o.MagentaWavelength, o.YellowWavelength, o.KeyWavelength)
	}
	for _, r := range requests {
		if r.Wavelength <= 0 {
			return Config{}, fmt.Errorf("--%s-wavelength must be positive, got %g", r.Name, r.Wavelength)
		}
	}

	return Config{
		Input:      o.Input,
		Output:     o.Output,
		OutDir:     o.OutDir,
		Colorspace: cs,
		Statistic:  stat,
		Colorblind: cb,
		Requests:   requests,
		Window:     o.Window,
		Normalize:  o.Normalize,
	}, nil
}
