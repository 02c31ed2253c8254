// Package colorimetry converts a spectral reflectance curve into the
// color it produces under standard daylight: CIE 1931 tristimulus
// integration against D65, then the XYZ→sRGB mapping.
package colorimetry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/AnkushinDaniil/thinfilm/entity"
)

// ErrInvalidInput reports mismatched or empty reflectance input.
var ErrInvalidInput = errors.New("invalid input")

const (
	lambdaMin = 380.0
	lambdaMax = 780.0

	// gridPoints covers lambdaMin–lambdaMax at 1 nm steps, inclusive.
	gridPoints = int(lambdaMax-lambdaMin) + 1
)

// Fixed D65 XYZ→linear-sRGB transform.
var xyzToLinearRGB = mat.NewDense(3, 3, []float64{
	3.2406, -1.5372, -0.4986,
	-0.9689, 1.8758, 0.0415,
	0.0557, -0.2040, 1.0570,
})

var (
	canonical []float64 // the shared 1 nm wavelength grid

	// Integration weights S(λ)·x̄(λ), S(λ)·ȳ(λ), S(λ)·z̄(λ) on the
	// canonical grid, and the white-point normalizer Σ S·ȳ·Δλ.
	weightX []float64
	weightY []float64
	weightZ []float64
	yWhite  float64
)

func init() {
	canonical = make([]float64, gridPoints)
	for i := range canonical {
		canonical[i] = lambdaMin + float64(i)
	}

	grid5 := make([]float64, len(d65SPD))
	xbar5 := make([]float64, len(cmf1931))
	ybar5 := make([]float64, len(cmf1931))
	zbar5 := make([]float64, len(cmf1931))
	for i := range cmf1931 {
		grid5[i] = lambdaMin + 5*float64(i)
		xbar5[i] = cmf1931[i][0]
		ybar5[i] = cmf1931[i][1]
		zbar5[i] = cmf1931[i][2]
	}

	xbar := resample(grid5, xbar5)
	ybar := resample(grid5, ybar5)
	zbar := resample(grid5, zbar5)
	spd := resample(grid5, d65SPD[:])

	weightX = make([]float64, gridPoints)
	weightY = make([]float64, gridPoints)
	weightZ = make([]float64, gridPoints)
	for i := range canonical {
		weightX[i] = spd[i] * xbar[i]
		weightY[i] = spd[i] * ybar[i]
		weightZ[i] = spd[i] * zbar[i]
	}
	yWhite = floats.Sum(weightY) // Δλ = 1 nm
}

// ToColor integrates the reflectance spectrum against the CIE 1931
// color-matching functions under D65 and maps the result to sRGB and
// chromaticity. Input on any sorted grid is resampled onto 380–780 nm
// at 1 nm; outside the input range the spectrum is taken as zero.
func ToColor(reflectance, wavelengths []float64) (entity.Color, error) {
	if len(reflectance) != len(wavelengths) {
		return entity.Color{}, fmt.Errorf("%w: %d reflectance values for %d wavelengths",
			ErrInvalidInput, len(reflectance), len(wavelengths))
	}
	if len(reflectance) == 0 {
		return entity.Color{}, fmt.Errorf("%w: empty spectrum", ErrInvalidInput)
	}

	r := reflectance
	if !onCanonicalGrid(wavelengths) {
		if len(wavelengths) < 2 {
			return entity.Color{}, fmt.Errorf("%w: need at least 2 samples to resample, got %d",
				ErrInvalidInput, len(wavelengths))
		}
		r = resample(wavelengths, reflectance)
	}

	x := floats.Dot(r, weightX)
	y := floats.Dot(r, weightY)
	z := floats.Dot(r, weightZ)

	var cx, cy float64
	if sum := x + y + z; sum != 0 {
		cx = x / sum
		cy = y / sum
	}

	var linear mat.VecDense
	linear.MulVec(xyzToLinearRGB, mat.NewVecDense(3, []float64{x / yWhite, y / yWhite, z / yWhite}))

	return entity.Color{
		R: compand(linear.AtVec(0)),
		G: compand(linear.AtVec(1)),
		B: compand(linear.AtVec(2)),
		X: cx,
		Y: cy,
	}, nil
}

// compand applies sRGB gamma correction, clamps to [0,1] and scales to
// an 8-bit channel.
func compand(v float64) uint8 {
	if v <= 0.0031308 {
		v *= 12.92
	} else {
		v = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	v = math.Min(math.Max(v, 0), 1)
	return uint8(math.Round(v * 255))
}

func onCanonicalGrid(wavelengths []float64) bool {
	if len(wavelengths) != gridPoints {
		return false
	}
	for i, lambda := range wavelengths {
		if lambda != canonical[i] {
			return false
		}
	}
	return true
}

// resample interpolates (xs, ys) onto the canonical grid. Grid points
// outside the input range become zero and negative values are floored
// at zero. A spectrum has no content beyond its measured range, unlike
// dispersion data, which extrapolates unclamped.
func resample(xs, ys []float64) []float64 {
	out := make([]float64, gridPoints)
	j := 0
	for i, x := range canonical {
		if x < xs[0] || x > xs[len(xs)-1] {
			continue // out of range: zero
		}
		for j < len(xs)-2 && xs[j+1] < x {
			j++
		}
		x0, x1 := xs[j], xs[j+1]
		y := ys[j] + (ys[j+1]-ys[j])*(x-x0)/(x1-x0)
		if y > 0 {
			out[i] = y
		}
	}
	return out
}
