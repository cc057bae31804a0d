package pipeline

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/maax3v3/hyperrgb/internal/catalog"
	"github.com/maax3v3/hyperrgb/internal/cli"
	"github.com/maax3v3/hyperrgb/internal/composite"
)

// writeBand writes an 8-bit grayscale PNG of constant value v and, when
// wavelength > 0, a sidecar metadata file carrying it.
func writeBand(t *testing.T, dir, base string, v uint8, wavelength float64) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(filepath.Join(dir, base+".png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if wavelength > 0 {
		meta := fmt.Sprintf("wavelength=%g\n", wavelength)
		if err := os.WriteFile(filepath.Join(dir, base+".txt"), []byte(meta), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun_EndToEnd(t *testing.T) {
	tmp := t.TempDir()
	stackDir := filepath.Join(tmp, "scene")
	if err := os.Mkdir(stackDir, 0755); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(tmp, "out")

	// Four bands with wavelength metadata; values identify the band.
	writeBand(t, stackDir, "band_01", 10, 450)
	writeBand(t, stackDir, "band_02", 20, 550)
	writeBand(t, stackDir, "band_03", 30, 650)
	writeBand(t, stackDir, "band_04", 40, 800)

	opts := cli.DefaultOptions()
	opts.Input = stackDir
	opts.Output = "comp"
	opts.OutDir = outDir
	cfg, err := opts.Validate()
	if err != nil {
		t.Fatal(err)
	}

	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Channel PNGs exist and carry the selected band's value.
	for name, want := range map[string]uint8{
		"comp_red":   30, // 650nm -> band 3
		"comp_green": 20, // 550nm -> band 2
		"comp_blue":  10, // 450nm -> band 1
	} {
		path := filepath.Join(outDir, name+".png")
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		r, _, _, _ := img.At(0, 0).RGBA()
		if got := uint8(r >> 8); got != want {
			t.Errorf("%s: got %d, want %d", name, got, want)
		}
	}

	// The group manifest lists the channels in request order.
	data, err := os.ReadFile(filepath.Join(outDir, "comp_rgb.json"))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	var manifest struct {
		Group   string   `json:"group"`
		Members []string `json:"members"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if manifest.Group != "comp_rgb" {
		t.Errorf("group: got %q, want comp_rgb", manifest.Group)
	}
	want := []string{"comp_red", "comp_green", "comp_blue"}
	if diff := cmp.Diff(want, manifest.Members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_CMYKWithoutMetadata(t *testing.T) {
	tmp := t.TempDir()
	stackDir := filepath.Join(tmp, "scene")
	if err := os.Mkdir(stackDir, 0755); err != nil {
		t.Fatal(err)
	}

	// No sidecars: the catalog degrades to band indices and every target
	// resolves to the last band.
	for i := 1; i <= 5; i++ {
		writeBand(t, stackDir, fmt.Sprintf("band_%02d", i), uint8(i*10), 0)
	}

	opts := cli.DefaultOptions()
	opts.Input = stackDir
	opts.Output = "comp"
	opts.OutDir = filepath.Join(tmp, "out")
	opts.Colorspace = "cmyk"
	cfg, err := opts.Validate()
	if err != nil {
		t.Fatal(err)
	}

	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{"comp_cyan", "comp_magenta", "comp_yellow", "comp_key"} {
		path := filepath.Join(opts.OutDir, name+".png")
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		// All targets fall closest to synthetic wavelength 5 -> band 5.
		r, _, _, _ := img.At(0, 0).RGBA()
		if got := uint8(r >> 8); got != 50 {
			t.Errorf("%s: got %d, want 50 (band 5)", name, got)
		}
	}
}

func TestRun_MissingStackDirectory(t *testing.T) {
	opts := cli.DefaultOptions()
	opts.Input = filepath.Join(t.TempDir(), "nope")
	opts.Output = "comp"
	opts.OutDir = t.TempDir()
	cfg, err := opts.Validate()
	if err != nil {
		t.Fatal(err)
	}

	if err := Run(cfg); err == nil {
		t.Fatal("expected error for missing stack directory")
	}
}

func TestSelectionSummary(t *testing.T) {
	comp := &composite.Composite{
		Channels: []composite.Channel{
			{Request: composite.ChannelRequest{Name: "red"}, Assignment: assignment(3, 650)},
			{Request: composite.ChannelRequest{Name: "green"}, Assignment: assignment(2, 550)},
		},
	}
	got := selectionSummary(comp)
	want := "Selected bands - R: 650nm (band 3), G: 550nm (band 2)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func assignment(band int, wl float64) catalog.Assignment {
	return catalog.Assignment{Band: band, Wavelength: wl}
}
