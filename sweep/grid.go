package sweep

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/AnkushinDaniil/thinfilm/entity"
)

// GridResult is the single final message of a 2D sweep: the full
// color grid indexed [angle row][thickness column], or the first
// error encountered. Never both.
type GridResult struct {
	Colors [][]entity.Color
	Err    error
}

type rowResult struct {
	index  int
	colors []entity.Color
	err    error
}

// Grid runs the 2D sweep: angle on the outer axis, thickness on the
// inner axis. The layer number follows the same substrate-side
// convention as Thickness. Rows are computed in parallel by a worker
// pool, each row
// written by exactly one worker. Validation errors are returned
// synchronously; after launch the progress channel reports the
// completed-row fraction (monotonically non-decreasing) and the result
// channel delivers exactly one GridResult.
//
// A sweep runs to completion by default; cancelling ctx is an
// opt-in enhancement and surfaces as the final error.
func (s *Sweeper) Grid(ctx context.Context, base entity.Stack, layer int, thickness, angle Axis) (<-chan float64, <-chan GridResult, error) {
	if err := thickness.validate("thickness"); err != nil {
		return nil, nil, err
	}
	if thickness.Start < 0 {
		return nil, nil, fmt.Errorf("%w: thickness start %g must not be negative", ErrInvalidRange, thickness.Start)
	}
	if err := angle.validate("angle"); err != nil {
		return nil, nil, err
	}
	if angle.Start < 0 || angle.End > 90 {
		return nil, nil, fmt.Errorf("%w: angle range [%g, %g] outside [0, 90]", ErrInvalidRange, angle.Start, angle.End)
	}
	if err := validateLayer(base, layer); err != nil {
		return nil, nil, err
	}

	angles := angle.Values()
	thicknesses := thickness.Values()

	// One slot per row: progress must never block the collector.
	progressCh := make(chan float64, len(angles))
	resultCh := make(chan GridResult, 1)

	tasks := make(chan int, len(angles))
	results := make(chan rowResult, len(angles))
	for i := range angles {
		tasks <- i
	}
	close(tasks)

	workers := runtime.NumCPU()
	if workers > len(angles) {
		workers = len(angles)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				if err := ctx.Err(); err != nil {
					results <- rowResult{index: i, err: err}
					continue
				}
				colors, err := s.row(base, layer, angles[i], thicknesses)
				results <- rowResult{index: i, colors: colors, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(resultCh)
		defer close(progressCh)

		grid := make([][]entity.Color, len(angles))
		var firstErr error
		done := 0
		for row := range results {
			if row.err != nil && firstErr == nil {
				firstErr = row.err
			}
			grid[row.index] = row.colors
			done++
			progressCh <- float64(done) / float64(len(angles))
		}
		if firstErr != nil {
			resultCh <- GridResult{Err: firstErr}
			return
		}
		resultCh <- GridResult{Colors: grid}
	}()

	return progressCh, resultCh, nil
}
