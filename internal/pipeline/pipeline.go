// Package pipeline runs the full composite flow: open the band-stack
// directory, assemble the requested channels, and flush the outputs.
package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/maax3v3/hyperrgb/internal/cli"
	"github.com/maax3v3/hyperrgb/internal/composite"
	"github.com/maax3v3/hyperrgb/internal/store"
)

// Run executes the full composite pipeline with the given configuration.
func Run(cfg cli.Config) error {
	// Step 1: Open the band stack
	fmt.Printf("Opening band stack: %s\n", cfg.Input)
	fs, err := store.OpenDir(cfg.Input)
	if err != nil {
		return fmt.Errorf("opening band stack: %w", err)
	}
	info, err := fs.StackInfo(fs.Stack())
	if err != nil {
		return err
	}
	fmt.Printf("Stack loaded: %d bands, %dx%d\n", info.Depths, info.Cols, info.Rows)

	// Step 2: Assemble the composite
	fmt.Printf("Creating %s composite...\n", strings.ToUpper(string(cfg.Colorspace)))
	a := &composite.Assembler{
		Store:      fs,
		Stack:      fs.Stack(),
		OutputBase: cfg.Output,
		Statistic:  cfg.Statistic,
		Window:     cfg.Window,
		Normalize:  cfg.Normalize,
		Colorblind: cfg.Colorblind,
		Logf: func(format string, args ...any) {
			fmt.Printf(format+"\n", args...)
		},
		Warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "WARNING: "+format+"\n", args...)
		},
	}
	comp, err := a.Assemble(cfg.Colorspace, cfg.Requests)
	if err != nil {
		return fmt.Errorf("assembling composite: %w", err)
	}
	fmt.Println(selectionSummary(comp))

	// Step 3: Flush outputs
	fmt.Printf("Writing outputs: %s\n", cfg.OutDir)
	if err := fs.Flush(cfg.OutDir, comp.Group); err != nil {
		return fmt.Errorf("writing outputs: %w", err)
	}

	fmt.Printf("Created %s image group: %s\n", strings.ToUpper(string(comp.Colorspace)), comp.Group)
	fmt.Printf("Individual bands: %s\n", strings.Join(comp.Rasters(), ", "))
	return nil
}

// selectionSummary formats the per-channel band selection, e.g.
// "Selected bands - R: 650nm (band 3), G: 550nm (band 2), B: 450nm (band 1)".
func selectionSummary(comp *composite.Composite) string {
	parts := make([]string, len(comp.Channels))
	for i, ch := range comp.Channels {
		label := strings.ToUpper(ch.Request.Name[:1])
		parts[i] = fmt.Sprintf("%s: %gnm (band %d)", label, ch.Assignment.Wavelength, ch.Assignment.Band)
	}
	return "Selected bands - " + strings.Join(parts, ", ")
}
