// Package catalog maps band center wavelengths to band indices for a band
// stack, and selects the band closest to a requested target wavelength.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/maax3v3/hyperrgb/internal/store"
)

// Catalog maps center wavelengths (nm) to 1-based band indices. Keys are
// held sorted ascending so every scan over the catalog is deterministic.
type Catalog struct {
	keys      []float64       // ascending
	byKey     map[float64]int // wavelength -> band index
	synthetic bool
}

// Assignment is the result of resolving a target wavelength: the chosen
// band, the wavelength it actually carries, and how far off the target it
// landed.
type Assignment struct {
	Band       int
	Wavelength float64
	Distance   float64
}

// scanWorkers bounds the parallel metadata reads during Build.
const scanWorkers = 8

// Build scans every band of a stack for wavelength metadata and returns
// the resulting catalog. A band contributes an entry when its metadata
// contains a line of the exact shape "<label>=<value>" whose label mentions
// "wavelength" (case-insensitive); per-band read or parse failures are
// skipped. When no band yields a wavelength the catalog degrades to the
// identity mapping (wavelength i.0 for band i) and Synthetic reports true.
func Build(st store.Store, stack string) (*Catalog, error) {
	info, err := st.StackInfo(stack)
	if err != nil {
		return nil, fmt.Errorf("band stack %q: %w", stack, err)
	}
	if info.Depths < 1 {
		return nil, fmt.Errorf("band stack %q has no bands", stack)
	}

	// Metadata reads are independent per band; scan them with a bounded
	// worker pool and merge in ascending band order so duplicate
	// wavelengths resolve deterministically (last band wins).
	found := make([]float64, info.Depths) // NaN = no wavelength for band i+1
	var wg sync.WaitGroup
	sem := make(chan struct{}, scanWorkers)
	for i := 1; i <= info.Depths; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(band int) {
			defer wg.Done()
			defer func() { <-sem }()
			wl, ok := scanBand(st, stack, band)
			if !ok {
				wl = math.NaN()
			}
			found[band-1] = wl
		}(i)
	}
	wg.Wait()

	byKey := make(map[float64]int)
	for i, wl := range found {
		if !math.IsNaN(wl) {
			byKey[wl] = i + 1
		}
	}

	c := &Catalog{byKey: byKey}
	if len(byKey) == 0 {
		c.synthetic = true
		for i := 1; i <= info.Depths; i++ {
			c.byKey[float64(i)] = i
		}
	}

	c.keys = make([]float64, 0, len(c.byKey))
	for k := range c.byKey {
		c.keys = append(c.keys, k)
	}
	sort.Float64s(c.keys)
	return c, nil
}

// scanBand reads one band's metadata and extracts its wavelength, if any.
func scanBand(st store.Store, stack string, band int) (float64, bool) {
	text, err := st.ReadMetadata(store.BandName(stack, band))
	if err != nil {
		return 0, false
	}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(strings.ToLower(line), "wavelength") {
			continue
		}
		parts := strings.Split(line, "=")
		if len(parts) != 2 {
			continue
		}
		wl, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		return wl, true
	}
	return 0, false
}

// Synthetic reports whether the catalog was synthesized from band indices
// because no band carried wavelength metadata.
func (c *Catalog) Synthetic() bool {
	return c.synthetic
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Wavelengths returns the catalog keys in ascending order.
func (c *Catalog) Wavelengths() []float64 {
	return append([]float64(nil), c.keys...)
}

// Band returns the band index recorded for a wavelength.
func (c *Catalog) Band(wavelength float64) (int, bool) {
	b, ok := c.byKey[wavelength]
	return b, ok
}

// Closest returns the catalog entry whose wavelength minimizes the absolute
// distance to the target. Ties break toward the lower wavelength (keys are
// scanned ascending).
func (c *Catalog) Closest(target float64) Assignment {
	best := Assignment{Distance: math.Inf(1)}
	for _, k := range c.keys {
		d := math.Abs(k - target)
		if d < best.Distance {
			best = Assignment{
				Band:       c.byKey[k],
				Wavelength: k,
				Distance:   d,
			}
		}
	}
	return best
}

// Within returns all catalog entries whose wavelength lies inside
// [target-window, target+window], ascending by wavelength. A window of 0
// selects only exact matches.
func (c *Catalog) Within(target, window float64) []Assignment {
	var out []Assignment
	for _, k := range c.keys {
		d := math.Abs(k - target)
		if d <= window {
			out = append(out, Assignment{
				Band:       c.byKey[k],
				Wavelength: k,
				Distance:   d,
			})
		}
	}
	return out
}
