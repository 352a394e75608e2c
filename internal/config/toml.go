// Package config provides configuration helpers and TOML parsing.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tuivocab/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Training TrainingConfig `toml:"training"`
}

// TrainingConfig maps training-related settings.
type TrainingConfig struct {
	Interval  *int `toml:"interval"`
	BatchSize *int `toml:"batch-size"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// SchedulerConfig overlays the file values on the defaults.
func (c FileConfig) SchedulerConfig() model.SchedulerConfig {
	cfg := model.DefaultSchedulerConfig()
	if c.Training.Interval != nil {
		cfg.IntervalSeconds = *c.Training.Interval
	}
	if c.Training.BatchSize != nil {
		cfg.BatchSize = *c.Training.BatchSize
	}
	return cfg
}

// LoadSchedulerConfig returns the saved scheduler settings, or the defaults
// when the file or a key is missing.
func LoadSchedulerConfig(path string) (model.SchedulerConfig, error) {
	fc, err := LoadConfig(path)
	if err != nil {
		return model.DefaultSchedulerConfig(), err
	}
	return fc.SchedulerConfig(), nil
}

// SaveSchedulerConfig writes the scheduler settings, replacing the file atomically.
func SaveSchedulerConfig(path string, cfg model.SchedulerConfig) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	fc := FileConfig{Training: TrainingConfig{
		Interval:  &cfg.IntervalSeconds,
		BatchSize: &cfg.BatchSize,
	}}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		if cerr := tmp.Close(); cerr != nil {
			// Best-effort close on write failure.
			_ = cerr
		}
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// ResetSchedulerConfig writes the default scheduler settings.
func ResetSchedulerConfig(path string) (model.SchedulerConfig, error) {
	cfg := model.DefaultSchedulerConfig()
	return cfg, SaveSchedulerConfig(path, cfg)
}
