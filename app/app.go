// Package app wires the material database, reflectance solver,
// colorimetry converter and sweep orchestrator behind the CLI front
// end and writes numeric results to its output.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AnkushinDaniil/thinfilm/colorimetry"
	"github.com/AnkushinDaniil/thinfilm/entity"
	"github.com/AnkushinDaniil/thinfilm/entity/format"
	"github.com/AnkushinDaniil/thinfilm/entity/parameters"
	"github.com/AnkushinDaniil/thinfilm/material"
	"github.com/AnkushinDaniil/thinfilm/reflectance"
	"github.com/AnkushinDaniil/thinfilm/sweep"
)

type App struct {
	ConfigPath string
	DataDir    string
	Out        io.Writer
}

func New(configPath, dataDir string, out io.Writer) *App {
	return &App{
		ConfigPath: configPath,
		DataDir:    dataDir,
		Out:        out,
	}
}

func (a *App) Run(ctx context.Context) error {
	appTime := time.Now()
	defer func() {
		log.WithField("time", time.Since(appTime)).Debug("App finished")
	}()

	cfg, err := LoadConfig(a.ConfigPath)
	if err != nil {
		return err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return fmt.Errorf("failed to resolve parameters: %w", err)
	}
	stack, err := cfg.Stack()
	if err != nil {
		return fmt.Errorf("failed to build stack: %w", err)
	}

	log.WithFields(log.Fields{
		"config":       a.ConfigPath,
		"data":         a.DataDir,
		"substrate":    params.Substrate,
		"angle":        params.AngleDeg,
		"polarization": params.Polarization,
		"layers":       len(stack),
	}).Debug("App started")

	db := material.NewDatabase(a.DataDir)
	solver := reflectance.NewSolver(db)
	sweeper := sweep.New(solver, params.Substrate, params.Wavelengths(), params.Polarization)

	switch {
	case cfg.Sweep.Thickness != nil && cfg.Sweep.Angle != nil:
		return a.runGrid(ctx, sweeper, stack, cfg)
	case cfg.Sweep.Thickness != nil:
		colors, err := sweeper.Thickness(stack, cfg.Sweep.Thickness.Layer, cfg.Sweep.Thickness.axis(), params.AngleDeg)
		if err != nil {
			return fmt.Errorf("thickness sweep failed: %w", err)
		}
		return a.printSeries(params, cfg.Sweep.Thickness.axis(), colors)
	case cfg.Sweep.Angle != nil:
		colors, err := sweeper.Angle(stack, cfg.Sweep.Angle.axis())
		if err != nil {
			return fmt.Errorf("angle sweep failed: %w", err)
		}
		return a.printSeries(params, cfg.Sweep.Angle.axis(), colors)
	default:
		return a.runSingle(solver, stack, params)
	}
}

// runSingle evaluates the configured stack once and prints the
// spectrum and its color.
func (a *App) runSingle(solver *reflectance.Solver, stack entity.Stack, params *parameters.Parameters) error {
	wavelengths := params.Wavelengths()
	rs, rp, err := solver.Compute(stack, params.Substrate, wavelengths, params.AngleDeg)
	if err != nil {
		return fmt.Errorf("reflectance failed: %w", err)
	}
	combined := params.Polarization.Combine(rs, rp)
	color, err := colorimetry.ToColor(combined, wavelengths)
	if err != nil {
		return fmt.Errorf("colorimetry failed: %w", err)
	}

	switch params.Format {
	case format.Csv:
		fmt.Fprintln(a.Out, "lambda_nm,Rs,Rp,R")
		for i, lambda := range wavelengths {
			fmt.Fprintf(a.Out, "%g,%.6f,%.6f,%.6f\n", lambda, rs[i], rp[i], combined[i])
		}
		fmt.Fprintf(a.Out, "# %s\n", color)
	default:
		fmt.Fprintln(a.Out, color)
	}
	return nil
}

func (a *App) printSeries(params *parameters.Parameters, ax sweep.Axis, colors []entity.Color) error {
	values := ax.Values()
	switch params.Format {
	case format.Csv:
		fmt.Fprintln(a.Out, "value,r,g,b,x,y")
		for i, color := range colors {
			fmt.Fprintf(a.Out, "%g,%d,%d,%d,%.4f,%.4f\n", values[i], color.R, color.G, color.B, color.X, color.Y)
		}
	default:
		for i, color := range colors {
			fmt.Fprintf(a.Out, "%10g  %s\n", values[i], color)
		}
	}
	return nil
}

// runGrid runs the 2D sweep in the background, logging progress per
// completed row, and prints the grid as hex colors.
func (a *App) runGrid(ctx context.Context, sweeper *sweep.Sweeper, stack entity.Stack, cfg *Config) error {
	gridTime := time.Now()
	progress, result, err := sweeper.Grid(ctx, stack,
		cfg.Sweep.Thickness.Layer, cfg.Sweep.Thickness.axis(), cfg.Sweep.Angle.axis())
	if err != nil {
		return fmt.Errorf("grid sweep rejected: %w", err)
	}

	for fraction := range progress {
		log.WithField("progress", fmt.Sprintf("%.0f%%", fraction*100)).Debug("Grid sweep")
	}
	final := <-result
	if final.Err != nil {
		return fmt.Errorf("grid sweep failed: %w", final.Err)
	}
	log.WithFields(log.Fields{
		"time": time.Since(gridTime),
		"rows": len(final.Colors),
	}).Info("Grid sweep finished")

	angles := cfg.Sweep.Angle.axis().Values()
	for i, row := range final.Colors {
		fmt.Fprintf(a.Out, "%g", angles[i])
		for _, color := range row {
			fmt.Fprintf(a.Out, " %s", color.Hex())
		}
		fmt.Fprintln(a.Out)
	}
	return nil
}
