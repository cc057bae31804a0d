// Package composite assembles selected spectral bands into a named
// multi-channel output group (RGB or CMYK).
package composite

import (
	"fmt"

	"github.com/maax3v3/hyperrgb/internal/catalog"
	"github.com/maax3v3/hyperrgb/internal/reduce"
	"github.com/maax3v3/hyperrgb/internal/store"
)

// Colorspace selects the output channel set.
type Colorspace string

const (
	RGB  Colorspace = "rgb"
	CMYK Colorspace = "cmyk"
)

// ParseColorspace validates a colorspace name from configuration.
func ParseColorspace(s string) (Colorspace, error) {
	switch Colorspace(s) {
	case RGB:
		return RGB, nil
	case CMYK:
		return CMYK, nil
	}
	return "", fmt.Errorf("unknown colorspace %q (supported: rgb, cmyk)", s)
}

// ChannelRequest asks for one output channel built from the band closest
// to a target wavelength.
type ChannelRequest struct {
	Name       string  // channel name, e.g. "red"
	Wavelength float64 // target center wavelength (nm)
}

// RGBRequests builds the three RGB channel requests in channel order.
func RGBRequests(red, green, blue float64) []ChannelRequest {
	return []ChannelRequest{
		{Name: "red", Wavelength: red},
		{Name: "green", Wavelength: green},
		{Name: "blue", Wavelength: blue},
	}
}

// CMYKRequests builds the four CMYK channel requests in channel order.
func CMYKRequests(cyan, magenta, yellow, key float64) []ChannelRequest {
	return []ChannelRequest{
		{Name: "cyan", Wavelength: cyan},
		{Name: "magenta", Wavelength: magenta},
		{Name: "yellow", Wavelength: yellow},
		{Name: "key", Wavelength: key},
	}
}

// Channel records how one output channel was materialized.
type Channel struct {
	Request    ChannelRequest
	Assignment catalog.Assignment // nearest-band resolution
	Bands      []int              // bands folded into the channel (1 in the default flow)
	Raster     string             // output raster name
}

// Composite is the result of a full assembly.
type Composite struct {
	Group      string
	Colorspace Colorspace
	Channels   []Channel
	Synthetic  bool // catalog was synthesized from band indices
}

// Rasters returns the output raster names in channel order.
func (c *Composite) Rasters() []string {
	out := make([]string, len(c.Channels))
	for i, ch := range c.Channels {
		out[i] = ch.Raster
	}
	return out
}

// Assembler materializes composites against a raster store. Channel
// requests are processed strictly in order; the store is treated as a
// serialized resource and never sees concurrent writes.
type Assembler struct {
	Store      store.Store
	Stack      string
	OutputBase string

	// Statistic folds multiple bands into one channel when Window selects
	// more than one. Ignored in the single-band flow.
	Statistic reduce.Statistic

	// Window is the selection half-width in nm around each target. 0 keeps
	// the nearest-single-band flow.
	Window float64

	// Normalize rescales every materialized channel to [0, 255] in place.
	Normalize bool

	// Colorblind records a requested accessibility mode. Any value other
	// than ColorblindNone emits a warning; channels are never altered.
	Colorblind ColorblindMode

	// Logf and Warnf receive progress and warning messages. Either may be
	// nil.
	Logf  func(format string, args ...any)
	Warnf func(format string, args ...any)
}

// Assemble builds one output channel per request, in request order, and
// registers the results as the group "<OutputBase>_<colorspace>". Any store
// failure aborts the assembly; rasters materialized before the failure are
// left in place.
func (a *Assembler) Assemble(cs Colorspace, requests []ChannelRequest) (*Composite, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("no channel requests")
	}

	cat, err := catalog.Build(a.Store, a.Stack)
	if err != nil {
		return nil, err
	}
	if cat.Synthetic() {
		a.warnf("No wavelength metadata found. Using band numbers as wavelengths.")
	}
	a.logf("Found %d wavelength bands", cat.Len())

	comp := &Composite{
		Group:      fmt.Sprintf("%s_%s", a.OutputBase, cs),
		Colorspace: cs,
		Synthetic:  cat.Synthetic(),
	}

	for _, req := range requests {
		ch, err := a.buildChannel(cat, req)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", req.Name, err)
		}
		comp.Channels = append(comp.Channels, ch)
	}

	if a.Colorblind != ColorblindNone {
		a.warnf("Colorblind adjustment for %s selected but requires post-processing", a.Colorblind)
	}

	if err := a.Store.RegisterGroup(comp.Group, comp.Rasters()); err != nil {
		return nil, fmt.Errorf("registering group %s: %w", comp.Group, err)
	}
	return comp, nil
}

// buildChannel resolves, materializes, and optionally rescales one channel.
func (a *Assembler) buildChannel(cat *catalog.Catalog, req ChannelRequest) (Channel, error) {
	assignment := cat.Closest(req.Wavelength)
	dst := fmt.Sprintf("%s_%s", a.OutputBase, req.Name)

	selected := []catalog.Assignment{assignment}
	if a.Window > 0 {
		if within := cat.Within(req.Wavelength, a.Window); len(within) > 0 {
			selected = within
		}
	}

	bands := make([]int, len(selected))
	for i, s := range selected {
		bands[i] = s.Band
	}

	if len(selected) == 1 {
		a.logf("Creating %s channel: %s (%.1fnm, band %d)",
			req.Name, dst, assignment.Wavelength, assignment.Band)
		src := store.BandName(a.Stack, selected[0].Band)
		if err := a.Store.CopyBand(src, dst, true); err != nil {
			return Channel{}, err
		}
	} else {
		names := make([]string, len(selected))
		for i, s := range selected {
			names[i] = store.BandName(a.Stack, s.Band)
		}
		plan, err := reduce.Plan(names, a.Statistic)
		if err != nil {
			return Channel{}, err
		}
		a.logf("Creating %s channel: %s (%s over %d bands)",
			req.Name, dst, a.Statistic, len(names))
		switch plan.Kind {
		case reduce.Expression:
			err = a.Store.MapCalc(dst, plan.Expr)
		case reduce.Delegate:
			err = a.Store.SeriesAggregate(dst, plan.Inputs, plan.Method)
		}
		if err != nil {
			return Channel{}, err
		}
	}

	if a.Normalize {
		if err := a.Store.Rescale(dst, 0, 255); err != nil {
			return Channel{}, err
		}
	}

	return Channel{
		Request:    req,
		Assignment: assignment,
		Bands:      bands,
		Raster:     dst,
	}, nil
}

func (a *Assembler) logf(format string, args ...any) {
	if a.Logf != nil {
		a.Logf(format, args...)
	}
}

func (a *Assembler) warnf(format string, args ...any) {
	if a.Warnf != nil {
		a.Warnf(format, args...)
	}
}
