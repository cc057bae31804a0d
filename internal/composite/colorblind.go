package composite

import "fmt"

// ColorblindMode names a color-blind-safe palette adjustment. Applying a
// mode is currently a pass-through: the per-mode channel matrices below
// document the intended transform, and Assemble emits a warning that
// post-processing is still required. Materialized channels are never
// altered.
type ColorblindMode string

const (
	ColorblindNone ColorblindMode = "none"
	Protanopia     ColorblindMode = "protanopia"
	Deuteranopia   ColorblindMode = "deuteranopia"
	Tritanopia     ColorblindMode = "tritanopia"
)

// ParseColorblindMode validates a colorblind mode name from configuration.
func ParseColorblindMode(s string) (ColorblindMode, error) {
	switch ColorblindMode(s) {
	case ColorblindNone, Protanopia, Deuteranopia, Tritanopia:
		return ColorblindMode(s), nil
	}
	return "", fmt.Errorf("unknown colorblind mode %q (supported: none, protanopia, deuteranopia, tritanopia)", s)
}

// ChannelMatrix is a per-output-channel mix of the RGB inputs.
type ChannelMatrix struct {
	Red, Green, Blue [3]float64
}

// colorblindMatrices holds the simulation matrices for each supported
// deficiency. Kept as the seam for a future channel-level transform.
var colorblindMatrices = map[ColorblindMode]ChannelMatrix{
	Protanopia: { // red-blind
		Red:   [3]float64{0.567, 0.433, 0},
		Green: [3]float64{0.558, 0.442, 0},
		Blue:  [3]float64{0, 0.242, 0.758},
	},
	Deuteranopia: { // green-blind
		Red:   [3]float64{0.625, 0.375, 0},
		Green: [3]float64{0.7, 0.3, 0},
		Blue:  [3]float64{0, 0.3, 0.7},
	},
	Tritanopia: { // blue-blind
		Red:   [3]float64{0.95, 0.05, 0},
		Green: [3]float64{0, 0.433, 0.567},
		Blue:  [3]float64{0, 0.475, 0.525},
	},
}

// Matrix returns the channel matrix for a mode, when one is defined.
func (m ColorblindMode) Matrix() (ChannelMatrix, bool) {
	cm, ok := colorblindMatrices[m]
	return cm, ok
}

// Adjust is the colorblind extension point. It returns the channel rasters
// unchanged; a future implementation will mix them through Matrix.
func (m ColorblindMode) Adjust(channels []string) []string {
	return channels
}
