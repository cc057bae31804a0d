package store

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/maax3v3/hyperrgb/internal/raster"
)

// MemStore is an in-memory Store. It doubles as the test fake and as the
// execution engine behind FileStore. Not safe for concurrent mutation; the
// pipeline serializes all store-mutating calls.
type MemStore struct {
	rasters map[string]*raster.Grid
	meta    map[string]string
	groups  map[string][]string
	stacks  map[string]int // stack name -> band count
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		rasters: make(map[string]*raster.Grid),
		meta:    make(map[string]string),
		groups:  make(map[string][]string),
		stacks:  make(map[string]int),
	}
}

// AddStack registers a band stack. Band i (1-based) becomes the raster
// "<name>#<i>". All bands must share the same shape.
func (s *MemStore) AddStack(name string, bands []*raster.Grid) error {
	if len(bands) == 0 {
		return fmt.Errorf("stack %q has no bands", name)
	}
	for i, b := range bands {
		if err := raster.CheckShape(bands[0], b); err != nil {
			return fmt.Errorf("stack %q band %d: %w", name, i+1, err)
		}
	}
	s.stacks[name] = len(bands)
	for i, b := range bands {
		s.rasters[BandName(name, i+1)] = b
	}
	return nil
}

// AddRaster registers a standalone raster under the given name.
func (s *MemStore) AddRaster(name string, g *raster.Grid) {
	s.rasters[name] = g
}

// SetMetadata records a free-text metadata block for a raster name.
func (s *MemStore) SetMetadata(name, text string) {
	s.meta[name] = text
}

// Raster returns the named raster, if present.
func (s *MemStore) Raster(name string) (*raster.Grid, bool) {
	g, ok := s.rasters[name]
	return g, ok
}

// Group returns the ordered members of a registered group, if present.
func (s *MemStore) Group(name string) ([]string, bool) {
	m, ok := s.groups[name]
	return m, ok
}

// StackInfo implements Store.
func (s *MemStore) StackInfo(stack string) (StackInfo, error) {
	depths, ok := s.stacks[stack]
	if !ok {
		return StackInfo{}, fmt.Errorf("stack %q: %w", stack, ErrNotFound)
	}
	first := s.rasters[BandName(stack, 1)]
	return StackInfo{Depths: depths, Rows: first.Rows, Cols: first.Cols}, nil
}

// ReadMetadata implements Store.
func (s *MemStore) ReadMetadata(name string) (string, error) {
	text, ok := s.meta[name]
	if !ok {
		return "", fmt.Errorf("metadata for %q: %w", name, ErrNotFound)
	}
	return text, nil
}

// CopyBand implements Store.
func (s *MemStore) CopyBand(src, dst string, overwrite bool) error {
	g, ok := s.rasters[src]
	if !ok {
		return fmt.Errorf("copy source %q: %w", src, ErrNotFound)
	}
	if _, exists := s.rasters[dst]; exists && !overwrite {
		return fmt.Errorf("copy destination %q: %w", dst, ErrExists)
	}
	s.rasters[dst] = g.Clone()
	return nil
}

// Rescale implements Store.
func (s *MemStore) Rescale(name string, lo, hi float64) error {
	g, ok := s.rasters[name]
	if !ok {
		return fmt.Errorf("rescale %q: %w", name, ErrNotFound)
	}
	g.Rescale(lo, hi)
	return nil
}

// MapCalc implements Store.
func (s *MemStore) MapCalc(dst, expr string) error {
	g, err := evalExpr(expr, s.rasters)
	if err != nil {
		return fmt.Errorf("mapcalc %q: %w", dst, err)
	}
	s.rasters[dst] = g
	return nil
}

// RegisterGroup implements Store.
func (s *MemStore) RegisterGroup(group string, members []string) error {
	for _, m := range members {
		if _, ok := s.rasters[m]; !ok {
			return fmt.Errorf("group %q member %q: %w", group, m, ErrNotFound)
		}
	}
	s.groups[group] = append([]string(nil), members...)
	return nil
}

// SeriesAggregate implements Store. Supported methods: mean, median, mode,
// minimum, maximum, and sd1_pos through sd3_neg, where sdN_pos/sdN_neg
// yield the per-pixel series mean plus/minus N standard deviations.
func (s *MemStore) SeriesAggregate(dst string, inputs []string, method string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("aggregate %q: no input rasters", dst)
	}
	fold, err := foldFunc(method)
	if err != nil {
		return fmt.Errorf("aggregate %q: %w", dst, err)
	}

	grids := make([]*raster.Grid, len(inputs))
	for i, name := range inputs {
		g, ok := s.rasters[name]
		if !ok {
			return fmt.Errorf("aggregate input %q: %w", name, ErrNotFound)
		}
		if i > 0 {
			if err := raster.CheckShape(grids[0], g); err != nil {
				return fmt.Errorf("aggregate input %q: %w", name, err)
			}
		}
		grids[i] = g
	}

	out := raster.New(grids[0].Rows, grids[0].Cols)
	series := make([]float64, len(grids))
	for cell := range out.Data {
		for i, g := range grids {
			series[i] = g.Data[cell]
		}
		out.Data[cell] = fold(series)
	}
	s.rasters[dst] = out
	return nil
}

// foldFunc maps an aggregation method name to its per-pixel fold. The
// returned function may reorder its argument slice.
func foldFunc(method string) (func([]float64) float64, error) {
	switch method {
	case "mean":
		return func(v []float64) float64 { return stat.Mean(v, nil) }, nil
	case "median":
		return func(v []float64) float64 {
			sort.Float64s(v)
			return stat.Quantile(0.5, stat.LinInterp, v, nil)
		}, nil
	case "mode":
		return func(v []float64) float64 {
			sort.Float64s(v)
			m, _ := stat.Mode(v, nil)
			return m
		}, nil
	case "minimum":
		return func(v []float64) float64 { return floats.Min(v) }, nil
	case "maximum":
		return func(v []float64) float64 { return floats.Max(v) }, nil
	}
	if n, sign, ok := parseSDMethod(method); ok {
		return func(v []float64) float64 {
			m := stat.Mean(v, nil)
			sd := stat.StdDev(v, nil)
			return m + sign*float64(n)*sd
		}, nil
	}
	return nil, fmt.Errorf("%q: %w", method, ErrUnknownMethod)
}

// parseSDMethod recognizes sd1_pos..sd3_pos and sd1_neg..sd3_neg.
func parseSDMethod(method string) (n int, sign float64, ok bool) {
	if len(method) != 7 || method[:2] != "sd" {
		return 0, 0, false
	}
	d := method[2]
	if d < '1' || d > '3' {
		return 0, 0, false
	}
	switch method[3:] {
	case "_pos":
		return int(d - '0'), 1, true
	case "_neg":
		return int(d - '0'), -1, true
	}
	return 0, 0, false
}
