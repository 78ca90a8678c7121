// Package config provides configuration loading and management for the
// potential-field interpolator. It handles loading configuration from YAML
// files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/CGR-Aachen/gempy/pkg/model"
)

// Config holds the interpolation constants and resource knobs loaded from
// YAML. All kernel constants are supplied by the caller, never computed by
// the core.
type Config struct {
	// Kriging parameters of the covariance kernel and drift rescaling.
	Kriging struct {
		// Range is the distance at which covariance reaches zero.
		// Distances at or beyond the range contribute nothing.
		Range float64 `yaml:"range"`

		// CovarianceAtZero is the covariance value at distance zero.
		CovarianceAtZero float64 `yaml:"covarianceAtZero"`

		// GradientNugget is the nugget added to the diagonal of the
		// gradient-gradient covariance block.
		GradientNugget float64 `yaml:"gradientNugget"`

		// ScalarNugget is the nugget added (twice) to the diagonal of
		// the interface covariance block.
		ScalarNugget float64 `yaml:"scalarNugget"`

		// InterfaceRescale weights the interface covariance against the
		// gradient covariance.
		InterfaceRescale float64 `yaml:"interfaceRescale"`

		// GradientRescale weights the drift and cross-covariance terms.
		GradientRescale float64 `yaml:"gradientRescale"`
	} `yaml:"kriging"`

	// Evaluation controls chunked scalar-field evaluation.
	Evaluation struct {
		// MaxChunkElements bounds chunkLength x systemSize so that the
		// per-chunk kernel matrices stay small.
		MaxChunkElements int `yaml:"maxChunkElements"`

		// NumWorkers is the number of goroutines evaluating chunks.
		NumWorkers int `yaml:"numWorkers"`
	} `yaml:"evaluation"`

	// Segmentation controls the sigmoid step used to turn field values
	// into unit ids.
	Segmentation struct {
		// FormationSlope is the slope constant for ordinary formation
		// boundaries.
		FormationSlope float64 `yaml:"formationSlope"`

		// FaultOuterSlope is the slope for fault series outside the
		// fault's zone of influence.
		FaultOuterSlope float64 `yaml:"faultOuterSlope"`

		// FaultInnerSlope is the slope inside the zone of influence. It
		// is much steeper, producing a crisp fault surface.
		FaultInnerSlope float64 `yaml:"faultInnerSlope"`
	} `yaml:"segmentation"`

	// Faults controls the finite-fault influence test.
	Faults struct {
		// InfluenceInflation widens the ellipse fitted to the fault's
		// own points, in rescaled coordinate units.
		InfluenceInflation float64 `yaml:"influenceInflation"`
	} `yaml:"faults"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Kriging.Range = 5.0
	cfg.Kriging.CovarianceAtZero = cfg.Kriging.Range * cfg.Kriging.Range / 14.0 / 3.0
	cfg.Kriging.GradientNugget = 0.01
	cfg.Kriging.ScalarNugget = 1e-6
	cfg.Kriging.InterfaceRescale = 4.0
	cfg.Kriging.GradientRescale = 2.0

	cfg.Evaluation.MaxChunkElements = 5_000_000
	cfg.Evaluation.NumWorkers = runtime.NumCPU()

	cfg.Segmentation.FormationSlope = 5000.0
	cfg.Segmentation.FaultOuterSlope = 50.0
	cfg.Segmentation.FaultInnerSlope = 5000.0

	cfg.Faults.InfluenceInflation = 10.0

	return cfg
}

// Validate checks the configuration for values the core cannot work with.
func (cfg *Config) Validate() error {
	if cfg.Kriging.Range <= 0 {
		return &model.ConfigurationError{Msg: fmt.Sprintf("kernel range must be positive, got %g", cfg.Kriging.Range)}
	}
	if cfg.Kriging.CovarianceAtZero <= 0 {
		return &model.ConfigurationError{Msg: fmt.Sprintf("covariance at zero must be positive, got %g", cfg.Kriging.CovarianceAtZero)}
	}
	if cfg.Evaluation.MaxChunkElements < 1 {
		return &model.ConfigurationError{Msg: "maxChunkElements must be at least 1"}
	}
	if cfg.Evaluation.NumWorkers < 1 {
		return &model.ConfigurationError{Msg: "numWorkers must be at least 1"}
	}
	if cfg.Segmentation.FormationSlope <= 0 || cfg.Segmentation.FaultOuterSlope <= 0 || cfg.Segmentation.FaultInnerSlope <= 0 {
		return &model.ConfigurationError{Msg: "segmentation slopes must be positive"}
	}
	return nil
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
