package parameters

import (
	"math"

	"github.com/AnkushinDaniil/thinfilm/entity/format"
	"github.com/AnkushinDaniil/thinfilm/entity/polarization"
)

// Parameters holds the fixed calculation settings shared by the
// single-point and sweep paths. Wavelengths and thicknesses are in
// nanometers, angles in degrees.
type Parameters struct {
	LambdaStart  float64
	LambdaEnd    float64
	LambdaStep   float64
	AngleDeg     float64
	Substrate    string
	Polarization polarization.Polarization
	Format       format.Format
}

// Wavelengths expands the configured range into a sorted grid.
func (p *Parameters) Wavelengths() []float64 {
	step := p.LambdaStep
	if step <= 0 {
		step = 1
	}
	n := int(math.Floor((p.LambdaEnd-p.LambdaStart)/step+0.5)) + 1
	if n < 1 {
		return nil
	}
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = p.LambdaStart + float64(i)*step
	}
	return grid
}
