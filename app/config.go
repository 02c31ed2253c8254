package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AnkushinDaniil/thinfilm/entity"
	"github.com/AnkushinDaniil/thinfilm/entity/format"
	"github.com/AnkushinDaniil/thinfilm/entity/parameters"
	"github.com/AnkushinDaniil/thinfilm/entity/polarization"
	"github.com/AnkushinDaniil/thinfilm/sweep"
)

// Config is the YAML description of a calculation: the layer stack,
// the fixed calculation parameters and the optional sweep axes.
type Config struct {
	Substrate    string      `yaml:"substrate"`
	Angle        float64     `yaml:"angle"`
	Polarization string      `yaml:"polarization"`
	Format       string      `yaml:"format"`
	Wavelengths  RangeConfig `yaml:"wavelengths"`
	Layers       []struct {
		Material  string  `yaml:"material"`
		Thickness float64 `yaml:"thickness"`
	} `yaml:"layers"`
	Sweep struct {
		Thickness *struct {
			Layer       int `yaml:"layer"`
			RangeConfig `yaml:",inline"`
		} `yaml:"thickness"`
		Angle *RangeConfig `yaml:"angle"`
	} `yaml:"sweep"`
}

type RangeConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Step  float64 `yaml:"step"`
}

func (r RangeConfig) axis() sweep.Axis {
	return sweep.Axis{Start: r.Start, End: r.End, Step: r.Step}
}

// LoadConfig reads and validates a calculation config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := &Config{
		Substrate:   "si",
		Wavelengths: RangeConfig{Start: 380, End: 780, Step: 1},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Stack builds the layer stack described by the config.
func (c *Config) Stack() (entity.Stack, error) {
	stack := make(entity.Stack, 0, len(c.Layers))
	for i, l := range c.Layers {
		layer, err := entity.NewLayer(l.Material, l.Thickness)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		stack = append(stack, layer)
	}
	return stack, nil
}

// Parameters resolves the config's free-text fields into the closed
// parameter set used by the calculation paths.
func (c *Config) Parameters() (*parameters.Parameters, error) {
	pol, err := polarization.UnmarshalText(c.Polarization)
	if err != nil {
		return nil, err
	}
	out, err := format.UnmarshalText(c.Format)
	if err != nil {
		return nil, err
	}
	return &parameters.Parameters{
		LambdaStart:  c.Wavelengths.Start,
		LambdaEnd:    c.Wavelengths.End,
		LambdaStep:   c.Wavelengths.Step,
		AngleDeg:     c.Angle,
		Substrate:    c.Substrate,
		Polarization: pol,
		Format:       out,
	}, nil
}
