// Package sweep drives repeated reflectance and colorimetry
// evaluations across swept layer thickness and incidence angle.
package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/AnkushinDaniil/thinfilm/colorimetry"
	"github.com/AnkushinDaniil/thinfilm/entity"
	"github.com/AnkushinDaniil/thinfilm/entity/polarization"
	"github.com/AnkushinDaniil/thinfilm/reflectance"
)

// ErrInvalidRange reports a sweep specification that cannot run.
var ErrInvalidRange = errors.New("invalid sweep range")

// Axis is one swept parameter: values from Start to End stepped by
// Step. The sequence stops strictly below End + Step/2, so End itself
// is included when the range divides evenly but a value landing
// exactly on the half-step boundary is not.
type Axis struct {
	Start float64
	End   float64
	Step  float64
}

func (a Axis) validate(name string) error {
	if a.Step <= 0 {
		return fmt.Errorf("%w: %s step %g must be positive", ErrInvalidRange, name, a.Step)
	}
	if a.Start >= a.End {
		return fmt.Errorf("%w: %s start %g must be below end %g", ErrInvalidRange, name, a.Start, a.End)
	}
	return nil
}

// Count returns the number of swept values.
func (a Axis) Count() int {
	return int(math.Ceil((a.End - a.Start + a.Step/2) / a.Step))
}

// Values expands the axis into its swept values.
func (a Axis) Values() []float64 {
	vals := make([]float64, a.Count())
	for i := range vals {
		vals[i] = a.Start + float64(i)*a.Step
	}
	return vals
}

// Sweeper runs sweeps over one base stack configuration. The solver
// and converter it drives are stateless, so one Sweeper may evaluate
// many cells concurrently.
type Sweeper struct {
	solver       *reflectance.Solver
	substrate    string
	wavelengths  []float64
	polarization polarization.Polarization
}

func New(solver *reflectance.Solver, substrate string, wavelengths []float64, pol polarization.Polarization) *Sweeper {
	return &Sweeper{
		solver:       solver,
		substrate:    substrate,
		wavelengths:  wavelengths,
		polarization: pol,
	}
}

// Thickness sweeps one layer's thickness at a fixed incidence angle
// and returns a color per swept value. The layer index is 1-based and
// counts from the substrate side: 1 is the bottom layer, len(base)
// the top (incident-side) layer.
func (s *Sweeper) Thickness(base entity.Stack, layer int, ax Axis, angleDeg float64) ([]entity.Color, error) {
	if err := ax.validate("thickness"); err != nil {
		return nil, err
	}
	if ax.Start < 0 {
		return nil, fmt.Errorf("%w: thickness start %g must not be negative", ErrInvalidRange, ax.Start)
	}
	if err := validateLayer(base, layer); err != nil {
		return nil, err
	}
	if err := validateAngle(angleDeg); err != nil {
		return nil, err
	}
	return s.row(base, layer, angleDeg, ax.Values())
}

// Angle sweeps the incidence angle over a fixed stack and returns a
// color per swept value.
func (s *Sweeper) Angle(base entity.Stack, ax Axis) ([]entity.Color, error) {
	if err := ax.validate("angle"); err != nil {
		return nil, err
	}
	if ax.Start < 0 || ax.End > 90 {
		return nil, fmt.Errorf("%w: angle range [%g, %g] outside [0, 90]", ErrInvalidRange, ax.Start, ax.End)
	}
	angles := ax.Values()
	out := make([]entity.Color, len(angles))
	for i, angle := range angles {
		color, err := s.cell(base, angle)
		if err != nil {
			return nil, err
		}
		out[i] = color
	}
	return out, nil
}

// row evaluates one grid row: fixed angle, swept thickness. The
// 1-based substrate-side layer number maps to stack position
// len(base)-layer (position 0 is nearest the incident medium).
func (s *Sweeper) row(base entity.Stack, layer int, angleDeg float64, thicknesses []float64) ([]entity.Color, error) {
	out := make([]entity.Color, len(thicknesses))
	for i, thickness := range thicknesses {
		color, err := s.cell(base.WithThickness(len(base)-layer, thickness), angleDeg)
		if err != nil {
			return nil, err
		}
		out[i] = color
	}
	return out, nil
}

// cell solves one stack at one angle and converts to color.
func (s *Sweeper) cell(stack entity.Stack, angleDeg float64) (entity.Color, error) {
	rs, rp, err := s.solver.Compute(stack, s.substrate, s.wavelengths, angleDeg)
	if err != nil {
		return entity.Color{}, err
	}
	return colorimetry.ToColor(s.polarization.Combine(rs, rp), s.wavelengths)
}

func validateLayer(base entity.Stack, layer int) error {
	if layer < 1 || layer > len(base) {
		return fmt.Errorf("%w: layer index %d outside [1, %d]", ErrInvalidRange, layer, len(base))
	}
	return nil
}

func validateAngle(angleDeg float64) error {
	if angleDeg < 0 || angleDeg > 90 {
		return fmt.Errorf("%w: angle %g outside [0, 90]", ErrInvalidRange, angleDeg)
	}
	return nil
}
