package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/codeready-toolchain/practice-scheduler/pkg/models"
)

// SettingsYAMLConfig represents the structure of settings.yaml (spec §6).
type SettingsYAMLConfig struct {
	SessionLength       *int   `yaml:"session_length"`
	NumberOfNewProblems *int   `yaml:"number_of_new_problems"`
	FlexibleSchedule    *bool  `yaml:"flexible_schedule"`
	ReviewRatio         *int   `yaml:"review_ratio"`
	DifficultyCap       string `yaml:"difficulty_cap"`
	MinReviewRatio      *int   `yaml:"min_review_ratio"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Load settings.yaml from configDir (missing file is not an error — built-in
//     defaults apply)
//  2. Expand environment variables
//  3. Merge user-provided values over built-in defaults
//  4. Validate
//  5. Return Config ready for use
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	settings, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg := &Config{configDir: configDir, Settings: settings}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("Configuration initialized successfully",
		"session_length", settings.SessionLength,
		"review_ratio", settings.ReviewRatio,
		"difficulty_cap", settings.DifficultyCap)

	return cfg, nil
}

func load(configDir string) (*Settings, error) {
	loader := &configLoader{configDir: configDir}

	yamlCfg, err := loader.loadSettingsYAML()
	if err != nil {
		return nil, NewLoadError("settings.yaml", err)
	}

	override := Settings{}
	if yamlCfg.SessionLength != nil {
		override.SessionLength = *yamlCfg.SessionLength
	}
	if yamlCfg.NumberOfNewProblems != nil {
		override.NumberOfNewProblems = *yamlCfg.NumberOfNewProblems
	}
	if yamlCfg.FlexibleSchedule != nil {
		override.FlexibleSchedule = *yamlCfg.FlexibleSchedule
	}
	if yamlCfg.ReviewRatio != nil {
		override.ReviewRatio = *yamlCfg.ReviewRatio
	}
	if yamlCfg.DifficultyCap != "" {
		d, err := models.ParseDifficulty(yamlCfg.DifficultyCap)
		if err != nil {
			return nil, err
		}
		override.DifficultyCap = d
	}
	if yamlCfg.MinReviewRatio != nil {
		override.MinReviewRatio = *yamlCfg.MinReviewRatio
	}

	merged, err := mergeOverride(DefaultSettings(), &override)
	if err == nil { // mergo skips false/0, so explicit ones are applied here
		if yamlCfg.NumberOfNewProblems != nil {
			merged.NumberOfNewProblems = *yamlCfg.NumberOfNewProblems
		}
		if yamlCfg.FlexibleSchedule != nil {
			merged.FlexibleSchedule = *yamlCfg.FlexibleSchedule
		}
		if yamlCfg.ReviewRatio != nil {
			merged.ReviewRatio = *yamlCfg.ReviewRatio
		}
		if yamlCfg.MinReviewRatio != nil {
			merged.MinReviewRatio = *yamlCfg.MinReviewRatio
		}
	}
	return merged, err
}

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	validator := NewValidator(cfg)
	return validator.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Absence of a settings file is not fatal — built-in defaults apply.
			return nil
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadSettingsYAML() (*SettingsYAMLConfig, error) {
	var cfg SettingsYAMLConfig
	if err := l.loadYAML("settings.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeOverride layers a sparse override on top of base using mergo's
// WithOverride mode: non-zero fields in override win, everything else
// falls through to base.
func mergeOverride(base, override *Settings) (*Settings, error) {
	merged := *base
	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge settings override: %w", err)
	}
	return &merged, nil
}
