// Package config loads experiment configuration for the grove CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one training experiment.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Training  TrainingConfig  `yaml:"training"`
}

// ModelConfig selects the network architecture.
type ModelConfig struct {
	// Widths lists the output size of every MLP layer, last entry included.
	Widths []int `yaml:"widths"`

	// Activation between layers: "relu" (default), "tanh", or "sigmoid".
	Activation string `yaml:"activation"`

	// BatchNorm inserts batch normalization after every hidden layer.
	BatchNorm bool `yaml:"batch_norm"`
}

// OptimizerConfig selects and tunes the optimizer.
type OptimizerConfig struct {
	// Type is "sgd" (default) or "adam".
	Type     string  `yaml:"type"`
	LR       float32 `yaml:"lr"`
	Momentum float32 `yaml:"momentum"` // sgd only
}

// TrainingConfig drives the training loop.
type TrainingConfig struct {
	Seed       int64  `yaml:"seed"`
	Epochs     int    `yaml:"epochs"`
	BatchSize  int    `yaml:"batch_size"`
	Checkpoint string `yaml:"checkpoint"` // output path for the final checkpoint
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{
		Model:     ModelConfig{Widths: []int{32, 32, 1}, Activation: "relu"},
		Optimizer: OptimizerConfig{Type: "sgd", LR: 0.01},
		Training:  TrainingConfig{Seed: 1, Epochs: 10, BatchSize: 32, Checkpoint: "model.grove"},
	}
}

// Load reads a YAML experiment file, applies defaults, and validates.
// Unknown fields are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults, and validates.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants.
func (c Config) Validate() error {
	if len(c.Model.Widths) == 0 {
		return fmt.Errorf("model.widths must not be empty")
	}
	for i, w := range c.Model.Widths {
		if w <= 0 {
			return fmt.Errorf("model.widths[%d] must be positive, got %d", i, w)
		}
	}
	switch c.Model.Activation {
	case "relu", "tanh", "sigmoid":
	default:
		return fmt.Errorf("model.activation must be relu, tanh, or sigmoid, got %q", c.Model.Activation)
	}
	switch c.Optimizer.Type {
	case "sgd", "adam":
	default:
		return fmt.Errorf("optimizer.type must be sgd or adam, got %q", c.Optimizer.Type)
	}
	if c.Optimizer.LR <= 0 {
		return fmt.Errorf("optimizer.lr must be positive, got %g", c.Optimizer.LR)
	}
	if c.Optimizer.Momentum < 0 || c.Optimizer.Momentum >= 1 {
		return fmt.Errorf("optimizer.momentum must be in [0, 1), got %g", c.Optimizer.Momentum)
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("training.epochs must be positive, got %d", c.Training.Epochs)
	}
	if c.Training.BatchSize <= 0 {
		return fmt.Errorf("training.batch_size must be positive, got %d", c.Training.BatchSize)
	}
	if c.Training.Checkpoint == "" {
		return fmt.Errorf("training.checkpoint must not be empty")
	}
	return nil
}
