// Package hyperrgb builds RGB and CMYK composites from stacks of
// co-registered spectral image bands.
//
// Each band carries an optional center wavelength; for every output channel
// the band closest to the channel's target wavelength is selected, copied
// out, optionally rescaled to [0, 255], and the channels are registered as
// one named group. When a selection window is set, several bands can be
// folded into a channel with a statistic (mean, median, mode, ...).
//
// Usage as a library:
//
//	bands := []*hyperrgb.Band{ ... }
//	comp, _ := hyperrgb.Compose(bands, hyperrgb.DefaultOptions())
//
// Or use the directory-based convenience:
//
//	comp, err := hyperrgb.ComposeDir("scene/", "out/", hyperrgb.DefaultOptions())
package hyperrgb

import (
	"fmt"

	"github.com/maax3v3/hyperrgb/internal/composite"
	"github.com/maax3v3/hyperrgb/internal/raster"
	"github.com/maax3v3/hyperrgb/internal/reduce"
	"github.com/maax3v3/hyperrgb/internal/store"
)

// Options configures a composite build.
type Options struct {
	// Colorspace selects the output channel set: "rgb" (red, green, blue)
	// or "cmyk" (cyan, magenta, yellow, key). Default: "rgb".
	Colorspace string

	// Statistic folds multiple bands into one channel when Window selects
	// more than one: mean, median, mode, min, max, or sd1_pos..sd3_neg.
	// Default: "mean".
	Statistic string

	// Colorblind records a requested accessibility adjustment (none,
	// protanopia, deuteranopia, tritanopia). Any value other than "none"
	// is recorded but not applied; channels are never altered.
	// Default: "none".
	Colorblind string

	// Target center wavelengths in nm, one per channel.
	RedWavelength     float64 // default 650
	GreenWavelength   float64 // default 550
	BlueWavelength    float64 // default 450
	CyanWavelength    float64 // default 490
	MagentaWavelength float64 // default 580
	YellowWavelength  float64 // default 570
	KeyWavelength     float64 // default 800

	// Window is the selection half-width in nm around each target. 0 keeps
	// the single-nearest-band flow. Default: 0.
	Window float64

	// Normalize rescales every output channel to [0, 255].
	Normalize bool

	// OutputBase is the base name for output rasters and the group
	// ("<base>_red", ..., "<base>_rgb"). Default: "composite".
	OutputBase string
}

// DefaultOptions returns Options with the standard target wavelengths.
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
		OutputBase:        "composite",
	}
}

// Band is one input band: a row-major float64 plane plus optional free-text
// metadata. A line of the shape "wavelength=650.5" in the metadata attaches
// a center wavelength to the band.
type Band struct {
	Rows, Cols int
	Data       []float64
	Metadata   string
}

// Channel is one materialized output channel.
type Channel struct {
	Name       string  // channel name, e.g. "red"
	Band       int     // selected band index (1-based; nearest to target)
	Wavelength float64 // the selected band's wavelength
	Distance   float64 // absolute distance from the target wavelength
	Raster     string  // output raster name
	Rows, Cols int
	Data       []float64
}

// Composite is the assembled result.
type Composite struct {
	Group      string // group name, e.g. "composite_rgb"
	Colorspace string
	Synthetic  bool // no wavelength metadata was found; band indices used
	Channels   []Channel
}

// Compose assembles a composite from in-memory bands.
func Compose(bands []*Band, opts Options) (*Composite, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("no input bands")
	}

	s := store.NewMemStore()
	grids := make([]*raster.Grid, len(bands))
	for i, b := range bands {
		if b == nil {
			return nil, fmt.Errorf("band %d is nil", i+1)
		}
		if len(b.Data) != b.Rows*b.Cols {
			return nil, fmt.Errorf("band %d: %d cells for %dx%d", i+1, len(b.Data), b.Rows, b.Cols)
		}
		g := raster.New(b.Rows, b.Cols)
		copy(g.Data, b.Data)
		grids[i] = g
	}
	const stack = "stack"
	if err := s.AddStack(stack, grids); err != nil {
		return nil, err
	}
	for i, b := range bands {
		if b.Metadata != "" {
			s.SetMetadata(store.BandName(stack, i+1), b.Metadata)
		}
	}

	comp, err := assemble(s, stack, opts)
	if err != nil {
		return nil, err
	}
	return export(s, comp), nil
}

// ComposeDir is a convenience that loads a band-stack directory, assembles
// the composite, and writes channel PNGs plus a group manifest to outDir.
func ComposeDir(inDir, outDir string, opts Options) (*Composite, error) {
	fs, err := store.OpenDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("loading band stack: %w", err)
	}

	comp, err := assemble(fs, fs.Stack(), opts)
	if err != nil {
		return nil, err
	}
	if err := fs.Flush(outDir, comp.Group); err != nil {
		return nil, fmt.Errorf("writing outputs: %w", err)
	}
	return export(fs.MemStore, comp), nil
}

// assemble validates options and runs the assembler against a store.
func assemble(s store.Store, stack string, opts Options) (*composite.Composite, error) {
	cs, err := composite.ParseColorspace(opts.Colorspace)
	if err != nil {
		return nil, err
	}
	stat, err := reduce.ParseStatistic(opts.Statistic)
	if err != nil {
		return nil, err
	}
	cb, err := composite.ParseColorblindMode(opts.Colorblind)
	if err != nil {
		return nil, err
	}
	base := opts.OutputBase
	if base == "" {
		base = "composite"
	}

	var requests []composite.ChannelRequest
	if cs == composite.CMYK {
		requests = composite.CMYKRequests(opts.CyanWavelength, opts.MagentaWavelength, opts.YellowWavelength, opts.KeyWavelength)
	} else {
		requests = composite.RGBRequests(opts.RedWavelength, opts.GreenWavelength, opts.BlueWavelength)
	}

	a := &composite.Assembler{
		Store:      s,
		Stack:      stack,
		OutputBase: base,
		Statistic:  stat,
		Window:     opts.Window,
		Normalize:  opts.Normalize,
		Colorblind: cb,
	}
	return a.Assemble(cs, requests)
}

// export converts the internal composite to the public shape, pulling the
// materialized channel data out of the store.
func export(s *store.MemStore, comp *composite.Composite) *Composite {
	out := &Composite{
		Group:      comp.Group,
		Colorspace: string(comp.Colorspace),
		Synthetic:  comp.Synthetic,
	}
	for _, ch := range comp.Channels {
		pub := Channel{
			Name:       ch.Request.Name,
			Band:       ch.Assignment.Band,
			Wavelength: ch.Assignment.Wavelength,
			Distance:   ch.Assignment.Distance,
			Raster:     ch.Raster,
		}
		if g, ok := s.Raster(ch.Raster); ok {
			pub.Rows = g.Rows
			pub.Cols = g.Cols
			pub.Data = append([]float64(nil), g.Data...)
		}
		out.Channels = append(out.Channels, pub)
	}
	return out
}
