package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maax3v3/hyperrgb/internal/catalog"
	"github.com/maax3v3/hyperrgb/internal/store"
)

var bandsInput string

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "List the wavelength catalog of a band-stack directory",
	RunE:  runBands,
}

func init() {
	bandsCmd.Flags().StringVarP(&bandsInput, "input", "i", "", "Band-stack directory")
	bandsCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(bandsCmd)
}

func runBands(cmd *cobra.Command, args []string) error {
	fs, err := store.OpenDir(bandsInput)
	if err != nil {
		return fmt.Errorf("opening band stack: %w", err)
	}

	cat, err := catalog.Build(fs, fs.Stack())
	if err != nil {
		return err
	}
	if cat.Synthetic() {
		fmt.Println("No wavelength metadata found; band numbers shown as wavelengths.")
	}

	fmt.Printf("%-6s %s\n", "band", "wavelength (nm)")
	for _, wl := range cat.Wavelengths() {
		band, _ := cat.Band(wl)
		fmt.Printf("%-6d %g\n", band, wl)
	}
	return nil
}
