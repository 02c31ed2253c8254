package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnkushinDaniil/thinfilm/entity"
	"github.com/AnkushinDaniil/thinfilm/entity/polarization"
	"github.com/AnkushinDaniil/thinfilm/material"
	"github.com/AnkushinDaniil/thinfilm/reflectance"
)

func testSweeper(t *testing.T) *Sweeper {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Si.txt":   "lambda n k\n200 3.5 0.0\n1000 3.5 0.0\n",
		"SiO2.txt": "lambda n k\n200 1.46 0.0\n1000 1.46 0.0\n",
		"W.txt":    "lambda n k\n200 3.0 0.5\n1000 3.0 0.5\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	wavelengths := make([]float64, 0, 31)
	for lambda := 400.0; lambda <= 700; lambda += 10 {
		wavelengths = append(wavelengths, lambda)
	}
	solver := reflectance.NewSolver(material.NewDatabase(dir))
	return New(solver, "si", wavelengths, polarization.Mixed)
}

func baseStack() entity.Stack {
	return entity.Stack{{Material: "sio2", Thickness: 100}}
}

func TestAxisCount(t *testing.T) {
	assert.Equal(t, 6, Axis{Start: 0, End: 5, Step: 1}.Count())
	assert.Equal(t, 501, Axis{Start: 0, End: 500, Step: 1}.Count())
	assert.Equal(t, 3, Axis{Start: 0, End: 90, Step: 45}.Count())

	values := Axis{Start: 0, End: 5, Step: 1}.Values()
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, values)

	// A value landing exactly on end+step/2 stays out: the bound is
	// strict, so 12 is not part of [0, 10] stepped by 4.
	assert.Equal(t, 3, Axis{Start: 0, End: 10, Step: 4}.Count())
	assert.Equal(t, []float64{0, 4, 8}, Axis{Start: 0, End: 10, Step: 4}.Values())
}

func TestThicknessSweepCount(t *testing.T) {
	s := testSweeper(t)

	colors, err := s.Thickness(baseStack(), 1, Axis{Start: 0, End: 5, Step: 1}, 0)
	require.NoError(t, err)
	assert.Len(t, colors, 6)
}

func TestThicknessSweepDoesNotMutateBase(t *testing.T) {
	s := testSweeper(t)
	base := baseStack()

	_, err := s.Thickness(base, 1, Axis{Start: 0, End: 200, Step: 100}, 0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, base[0].Thickness)
}

func TestThicknessSweepNumbersLayersFromSubstrate(t *testing.T) {
	s := testSweeper(t)
	base := entity.Stack{
		{Material: "sio2", Thickness: 100}, // nearest the incident medium
		{Material: "w", Thickness: 50},     // nearest the substrate
	}
	ax := Axis{Start: 0, End: 80, Step: 40}

	bottom, err := s.Thickness(base, 1, ax, 0)
	require.NoError(t, err)

	// Layer 1 is the substrate-side layer, so only the W film varies.
	for i, thickness := range ax.Values() {
		want, err := s.cell(entity.Stack{
			{Material: "sio2", Thickness: 100},
			{Material: "w", Thickness: thickness},
		}, 0)
		require.NoError(t, err)
		assert.Equal(t, want, bottom[i], "thickness %g", thickness)
	}

	top, err := s.Thickness(base, 2, ax, 0)
	require.NoError(t, err)
	assert.NotEqual(t, bottom, top, "layer 2 must vary the incident-side layer instead")
}

func TestAngleSweepEndpointsInclusive(t *testing.T) {
	s := testSweeper(t)

	colors, err := s.Angle(baseStack(), Axis{Start: 0, End: 90, Step: 30})
	require.NoError(t, err)
	assert.Len(t, colors, 4)
}

func TestSweepValidation(t *testing.T) {
	s := testSweeper(t)
	base := baseStack()
	valid := Axis{Start: 0, End: 10, Step: 1}

	cases := []struct {
		name string
		run  func() error
	}{
		{"non-positive step", func() error {
			_, err := s.Thickness(base, 1, Axis{Start: 0, End: 10, Step: 0}, 0)
			return err
		}},
		{"start at end", func() error {
			_, err := s.Thickness(base, 1, Axis{Start: 10, End: 10, Step: 1}, 0)
			return err
		}},
		{"negative thickness start", func() error {
			_, err := s.Thickness(base, 1, Axis{Start: -5, End: 10, Step: 1}, 0)
			return err
		}},
		{"layer index zero", func() error {
			_, err := s.Thickness(base, 0, valid, 0)
			return err
		}},
		{"layer index past stack", func() error {
			_, err := s.Thickness(base, 2, valid, 0)
			return err
		}},
		{"fixed angle outside range", func() error {
			_, err := s.Thickness(base, 1, valid, 95)
			return err
		}},
		{"angle sweep above 90", func() error {
			_, err := s.Angle(base, Axis{Start: 45, End: 120, Step: 5})
			return err
		}},
		{"grid angle below 0", func() error {
			_, _, err := s.Grid(context.Background(), base, 1, valid, Axis{Start: -10, End: 10, Step: 5})
			return err
		}},
		{"grid bad layer", func() error {
			_, _, err := s.Grid(context.Background(), base, 5, valid, Axis{Start: 0, End: 10, Step: 5})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.run(), ErrInvalidRange)
		})
	}
}

func TestGridDimensionsAndProgress(t *testing.T) {
	s := testSweeper(t)

	progress, result, err := s.Grid(context.Background(), baseStack(), 1,
		Axis{Start: 0, End: 200, Step: 50}, // 5 thickness columns
		Axis{Start: 0, End: 60, Step: 20})  // 4 angle rows
	require.NoError(t, err)

	var fractions []float64
	for f := range progress {
		fractions = append(fractions, f)
	}
	final, ok := <-result
	require.True(t, ok)
	require.NoError(t, final.Err)

	require.Len(t, final.Colors, 4)
	for _, row := range final.Colors {
		assert.Len(t, row, 5)
	}

	require.Len(t, fractions, 4, "one progress event per completed row")
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1], "progress must not decrease")
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])

	_, open := <-result
	assert.False(t, open, "result channel carries exactly one message")
}

func TestGridRowsMatchDirectEvaluation(t *testing.T) {
	s := testSweeper(t)
	thickness := Axis{Start: 0, End: 100, Step: 50}
	angle := Axis{Start: 0, End: 40, Step: 20}

	_, result, err := s.Grid(context.Background(), baseStack(), 1, thickness, angle)
	require.NoError(t, err)
	final := <-result
	require.NoError(t, final.Err)

	// Cells are independent, so the parallel grid must agree with the
	// serial 1D sweep row by row.
	for i, angleDeg := range angle.Values() {
		want, err := s.Thickness(baseStack(), 1, thickness, angleDeg)
		require.NoError(t, err)
		assert.Equal(t, want, final.Colors[i], "row %d", i)
	}
}

func TestGridDeliversErrorOnResultChannel(t *testing.T) {
	s := testSweeper(t)
	base := entity.Stack{{Material: "kryptonite", Thickness: 10}}

	progress, result, err := s.Grid(context.Background(), base, 1,
		Axis{Start: 0, End: 10, Step: 5}, Axis{Start: 0, End: 10, Step: 5})
	require.NoError(t, err, "an unknown material is a runtime failure, not a validation failure")

	for range progress {
	}
	final := <-result
	require.ErrorIs(t, final.Err, material.ErrMaterialNotFound)
	assert.Nil(t, final.Colors, "the final message is a result or an error, never both")
}

func TestGridCancellation(t *testing.T) {
	s := testSweeper(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	progress, result, err := s.Grid(ctx, baseStack(), 1,
		Axis{Start: 0, End: 100, Step: 10}, Axis{Start: 0, End: 80, Step: 10})
	require.NoError(t, err)

	for range progress {
	}
	final := <-result
	require.ErrorIs(t, final.Err, context.Canceled)
}
