package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maax3v3/hyperrgb/internal/imaging"
	"github.com/maax3v3/hyperrgb/internal/raster"
)

// FileStore is a Store backed by a directory of band images. The directory
// name becomes the stack name; every image file inside it (sorted by
// filename) becomes one band. A sidecar "<image-basename>.txt" next to a
// band image is served as that band's metadata block, so a line like
//
//	wavelength=650.5
//
// attaches a center wavelength to the band. All work after loading happens
// in memory; Flush writes materialized rasters back to disk.
type FileStore struct {
	*MemStore
	stack string
}

// OpenDir loads a band-stack directory into a FileStore.
func OpenDir(dir string) (*FileStore, error) {
	dir = imaging.ExpandPath(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading stack directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsBandImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no band images in %s", dir)
	}
	sort.Strings(names)

	fs := &FileStore{
		MemStore: NewMemStore(),
		stack:    filepath.Base(dir),
	}

	bands := make([]*raster.Grid, 0, len(names))
	for _, name := range names {
		g, err := imaging.LoadGrid(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", name, err)
		}
		bands = append(bands, g)
	}
	if err := fs.AddStack(fs.stack, bands); err != nil {
		return nil, err
	}

	// Sidecar metadata is optional per band; a missing or unreadable
	// sidecar just leaves that band without metadata.
	for i, name := range names {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		text, err := os.ReadFile(filepath.Join(dir, base+".txt"))
		if err != nil {
			continue
		}
		fs.SetMetadata(BandName(fs.stack, i+1), string(text))
	}

	return fs, nil
}

// Stack returns the stack name derived from the directory.
func (fs *FileStore) Stack() string {
	return fs.stack
}

// Flush writes the named rasters as grayscale PNGs into outDir and a JSON
// manifest for the group listing its members in order. outDir is created
// if needed.
func (fs *FileStore) Flush(outDir, group string) error {
	outDir = imaging.ExpandPath(outDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	members, ok := fs.Group(group)
	if !ok {
		return fmt.Errorf("group %q: %w", group, ErrNotFound)
	}

	for _, name := range members {
		g, ok := fs.Raster(name)
		if !ok {
			return fmt.Errorf("raster %q: %w", name, ErrNotFound)
		}
		if err := imaging.SaveGridPNG(filepath.Join(outDir, name+".png"), g); err != nil {
			return fmt.Errorf("raster %q: %w", name, err)
		}
	}

	manifest := groupManifest{Group: group, Members: members}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding group manifest: %w", err)
	}
	path := filepath.Join(outDir, group+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing group manifest: %w", err)
	}
	return nil
}

type groupManifest struct {
	Group   string   `json:"group"`
	Members []string `json:"members"`
}
