package store

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeGrayPNG writes a constant-value grayscale PNG.
func writeGrayPNG(t *testing.T, path string, w, h int, v uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestOpenDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scene")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	// Bands load in filename order regardless of creation order.
	writeGrayPNG(t, filepath.Join(dir, "b_02.png"), 3, 2, 20)
	writeGrayPNG(t, filepath.Join(dir, "b_01.png"), 3, 2, 10)
	if err := os.WriteFile(filepath.Join(dir, "b_01.txt"), []byte("wavelength=450\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Non-image files are not bands.
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	fs, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	if fs.Stack() != "scene" {
		t.Errorf("stack name: got %q, want scene", fs.Stack())
	}

	info, err := fs.StackInfo("scene")
	if err != nil {
		t.Fatalf("StackInfo: %v", err)
	}
	want := StackInfo{Depths: 2, Rows: 2, Cols: 3}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("StackInfo mismatch (-want +got):\n%s", diff)
	}

	b1, ok := fs.Raster("scene#1")
	if !ok {
		t.Fatal("scene#1 missing")
	}
	if b1.Data[0] != 10 {
		t.Errorf("scene#1: got %v, want 10 (b_01.png sorts first)", b1.Data[0])
	}

	meta, err := fs.ReadMetadata("scene#1")
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if meta != "wavelength=450\n" {
		t.Errorf("metadata: got %q", meta)
	}
	// Band 2 has no sidecar.
	if _, err := fs.ReadMetadata("scene#2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("scene#2 metadata: got %v, want ErrNotFound", err)
	}
}

func TestOpenDir_NoBands(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenDir(dir); err == nil {
		t.Fatal("expected error for directory without band images")
	}
}

func TestOpenDir_MissingDirectory(t *testing.T) {
	if _, err := OpenDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestFlush(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scene")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	writeGrayPNG(t, filepath.Join(dir, "b_01.png"), 2, 2, 10)
	writeGrayPNG(t, filepath.Join(dir, "b_02.png"), 2, 2, 20)

	fs, err := OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.CopyBand("scene#1", "out_red", false); err != nil {
		t.Fatal(err)
	}
	if err := fs.CopyBand("scene#2", "out_green", false); err != nil {
		t.Fatal(err)
	}
	if err := fs.RegisterGroup("out_rgb", []string{"out_red", "out_green"}); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(t.TempDir(), "out")
	if err := fs.Flush(outDir, "out_rgb"); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	for _, name := range []string{"out_red.png", "out_green.png", "out_rgb.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	if err := fs.Flush(outDir, "no_such_group"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown group: got %v, want ErrNotFound", err)
	}
}
