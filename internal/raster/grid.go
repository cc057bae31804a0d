// Package raster provides the in-memory representation of a single raster
// plane: a row-major float64 grid with the handful of whole-plane
// operations the composite pipeline needs (copy, range, linear rescale).
package raster

import (
	"fmt"
	"math"
)

// Grid is a single raster plane with row-major float64 cells.
type Grid struct {
	Rows, Cols int
	Data       []float64 // index = row*Cols + col
}

// New allocates a zero-filled grid.
func New(rows, cols int) *Grid {
	return &Grid{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// At returns the cell value at (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

// Set writes the cell value at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Data[row*g.Cols+col] = v
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		Rows: g.Rows,
		Cols: g.Cols,
		Data: make([]float64, len(g.Data)),
	}
	copy(out.Data, g.Data)
	return out
}

// MinMax returns the smallest and largest cell values, ignoring NaN cells.
// A grid with no finite cells reports (0, 0).
func (g *Grid) MinMax() (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min > max {
		return 0, 0
	}
	return min, max
}

// Rescale linearly maps the grid's current value range onto [lo, hi] in
// place. A constant grid (zero value range) maps every cell to lo.
func (g *Grid) Rescale(lo, hi float64) {
	min, max := g.MinMax()
	span := max - min
	if span == 0 {
		for i := range g.Data {
			g.Data[i] = lo
		}
		return
	}
	scale := (hi - lo) / span
	for i, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		g.Data[i] = lo + (v-min)*scale
	}
}

// SameShape reports whether two grids have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// CheckShape returns an error when the grids differ in dimensions.
func CheckShape(a, b *Grid) error {
	if !a.SameShape(b) {
		return fmt.Errorf("shape mismatch: %dx%d vs %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	return nil
}
