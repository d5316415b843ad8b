package sheet

import "math"

// Scale gathers the main lengths measured on the sheet, in pixels.
type Scale struct {
	Interline     int
	LineThickness int
	StemThickness int
}

// DefaultScale fits a typical 300 dpi score.
func DefaultScale() Scale { return Scale{Interline: 20, LineThickness: 3, StemThickness: 3} }

// ToPixels converts a fraction of interline to pixels.
func (s Scale) ToPixels(fraction float64) int {
	return int(math.Round(fraction * float64(s.Interline)))
}
