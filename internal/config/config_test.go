package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grove-ml/grove/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestParseEmptyGivesDefaults(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParseFullConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
model:
  widths: [64, 64, 10]
  activation: tanh
  batch_norm: true
optimizer:
  type: adam
  lr: 0.001
training:
  seed: 42
  epochs: 50
  batch_size: 16
  checkpoint: runs/exp1.grove
`))
	require.NoError(t, err)

	assert.Equal(t, []int{64, 64, 10}, cfg.Model.Widths)
	assert.Equal(t, "tanh", cfg.Model.Activation)
	assert.True(t, cfg.Model.BatchNorm)
	assert.Equal(t, "adam", cfg.Optimizer.Type)
	// LR is a float32; compare within float32 rounding of the literal.
	assert.InDelta(t, 0.001, cfg.Optimizer.LR, 1e-6)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, 50, cfg.Training.Epochs)
	assert.Equal(t, 16, cfg.Training.BatchSize)
	assert.Equal(t, "runs/exp1.grove", cfg.Training.Checkpoint)
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte("optimizer:\n  lr: 0.1\n"))
	require.NoError(t, err)

	assert.InDelta(t, 0.1, cfg.Optimizer.LR, 1e-6)
	assert.Equal(t, "sgd", cfg.Optimizer.Type)
	assert.Equal(t, []int{32, 32, 1}, cfg.Model.Widths)
	assert.Equal(t, 10, cfg.Training.Epochs)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := config.Parse([]byte("model:\n  depth: 4\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depth")
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := config.Parse([]byte("model: [unclosed"))
	require.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty widths", func(c *config.Config) { c.Model.Widths = nil }, "model.widths"},
		{"negative width", func(c *config.Config) { c.Model.Widths = []int{32, -1} }, "model.widths[1]"},
		{"bad activation", func(c *config.Config) { c.Model.Activation = "gelu" }, "model.activation"},
		{"bad optimizer", func(c *config.Config) { c.Optimizer.Type = "rmsprop" }, "optimizer.type"},
		{"zero lr", func(c *config.Config) { c.Optimizer.LR = 0 }, "optimizer.lr"},
		{"momentum one", func(c *config.Config) { c.Optimizer.Momentum = 1 }, "optimizer.momentum"},
		{"zero epochs", func(c *config.Config) { c.Training.Epochs = 0 }, "training.epochs"},
		{"zero batch size", func(c *config.Config) { c.Training.BatchSize = 0 }, "training.batch_size"},
		{"no checkpoint", func(c *config.Config) { c.Training.Checkpoint = "" }, "training.checkpoint"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("training:\n  epochs: 3\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Training.Epochs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
