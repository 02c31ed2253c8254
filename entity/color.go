package entity

import "fmt"

// Color is the perceived color of one reflectance spectrum: sRGB
// channels in [0,255] and the CIE 1931 chromaticity coordinates.
type Color struct {
	R, G, B uint8
	X, Y    float64
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d) x=%.4f y=%.4f", c.R, c.G, c.B, c.X, c.Y)
}

// Hex returns the color as an HTML hex triplet.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
