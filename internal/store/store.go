// Package store defines the raster-store port the composite pipeline talks
// to, plus two implementations: MemStore, a fully in-memory engine, and
// FileStore, which loads band stacks from a directory of image files.
//
// The core never reaches into a store's internals; everything flows through
// the Store interface so an external raster engine can be substituted
// without touching the selection or assembly logic.
package store

import (
	"errors"
	"fmt"
)

// Store is the raster-store port. Raster and group names are flat
// identifiers; the band planes of a stack are addressed as "<stack>#<i>"
// with 1-based band indices (see BandName).
type Store interface {
	// StackInfo reports the dimensions of a registered band stack.
	StackInfo(stack string) (StackInfo, error)

	// ReadMetadata returns the free-text metadata block recorded for a
	// raster, typically one "key=value" pair per line.
	ReadMetadata(name string) (string, error)

	// CopyBand creates dst as a copy of the raster src. When overwrite is
	// false and dst already exists, the copy fails with ErrExists.
	CopyBand(src, dst string, overwrite bool) error

	// Rescale linearly maps the named raster's value range onto [lo, hi]
	// in place.
	Rescale(name string, lo, hi float64) error

	// MapCalc evaluates a raster-algebra expression and stores the result
	// as dst, overwriting any existing raster of that name.
	MapCalc(dst, expr string) error

	// SeriesAggregate folds the input rasters pixel-wise with the named
	// aggregation method and stores the result as dst.
	SeriesAggregate(dst string, inputs []string, method string) error

	// RegisterGroup records an ordered set of rasters under a group name.
	RegisterGroup(group string, members []string) error
}

// StackInfo describes a band stack's shape.
type StackInfo struct {
	Depths int // number of bands
	Rows   int
	Cols   int
}

var (
	// ErrNotFound is returned when a named raster, stack, or metadata
	// block does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExists is returned when a destination raster already exists and
	// overwriting was not requested.
	ErrExists = errors.New("already exists")

	// ErrUnknownMethod is returned by SeriesAggregate for an aggregation
	// method the store does not implement.
	ErrUnknownMethod = errors.New("unknown aggregation method")
)

// BandName returns the raster name of band i (1-based) of a stack.
func BandName(stack string, i int) string {
	return fmt.Sprintf("%s#%d", stack, i)
}
