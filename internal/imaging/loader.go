// Package imaging reads band images into raster grids and writes grids
// back out as images. Supports PNG, JPEG, TIFF, and WEBP input.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/maax3v3/hyperrgb/internal/raster"
)

// LoadGrid reads an image file from disk and converts it to a single-plane
// raster grid. Color images are collapsed to relative luminance; grayscale
// images keep their values. Cell values land in [0, 255].
func LoadGrid(path string) (*raster.Grid, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Load reads an image file from disk. Supports PNG, JPEG, TIFF, and WEBP.
// The path is normalized: ~ is expanded to the user's home directory,
// and relative paths are resolved to absolute.
func Load(path string) (image.Image, error) {
	path = ExpandPath(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return png.Decode(f)
	case ".jpg", ".jpeg":
		return jpeg.Decode(f)
	case ".tif", ".tiff":
		return tiff.Decode(f)
	case ".webp":
		// Decoded via the blank import of golang.org/x/image/webp
		img, _, err := image.Decode(f)
		return img, err
	default:
		return nil, fmt.Errorf("unsupported image format %q (supported: png, jpg, jpeg, tif, tiff, webp)", ext)
	}
}

// IsBandImage reports whether a filename has a loadable image extension.
func IsBandImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

// FromImage converts an image to a raster grid with values in [0, 255].
// Gray pixels map directly; color pixels map through relative luminance.
func FromImage(img image.Image) *raster.Grid {
	bounds := img.Bounds()
	g := raster.New(bounds.Dy(), bounds.Dx())
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			r, gr, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if r == gr && gr == b {
				// Already gray: keep the value exact.
				g.Set(y, x, float64(r)/257.0) // 16-bit channel -> [0, 255]
				continue
			}
			lum := 0.2126*float64(r) + 0.7152*float64(gr) + 0.0722*float64(b)
			g.Set(y, x, lum/257.0)
		}
	}
	return g
}

// ToImage converts a grid to an 8-bit grayscale image, clamping cell
// values to [0, 255]. NaN cells render as black.
func ToImage(g *raster.Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			v := g.At(y, x)
			if math.IsNaN(v) {
				v = 0
			}
			v = math.Round(v)
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

// SaveGridPNG writes a grid to disk as an 8-bit grayscale PNG.
func SaveGridPNG(path string, g *raster.Grid) error {
	return SavePNG(path, ToImage(g))
}

// SavePNG writes an image to disk as PNG.
// The path is normalized: ~ is expanded and relative paths are resolved.
func SavePNG(path string, img image.Image) error {
	path = ExpandPath(path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// ExpandPath normalizes a file path by expanding ~ to the user's home
// directory and resolving relative paths to absolute.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~ and ~/ to home directory
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	// On Windows, also handle ~\
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "~\\") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// Resolve relative paths to absolute
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return filepath.Clean(path)
}
