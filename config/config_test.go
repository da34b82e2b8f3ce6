package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/de"
	"github.com/adameus03/pso-de/swarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, swarm.DefaultCoefs(), cfg.Coefs())
	assert.Equal(t, de.DefaultConfig(), cfg.DEConfig())
	assert.Equal(t, "go", cfg.DE.Solver)
	assert.Equal(t, 30, cfg.Swarm.Particles)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte(`
functions: [eggholder]
dimensions: 2
de:
  solver: gonum
  accuracy: 0.01
output:
  cache: 5m
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"eggholder"}, cfg.Functions)
	assert.Equal(t, 2, cfg.Dimensions)
	assert.Equal(t, "gonum", cfg.DE.Solver)
	assert.Equal(t, 5*time.Minute, cfg.Output.Cache)
	// untouched fields keep their defaults
	assert.Equal(t, uint32(20), cfg.DE.Population)
	assert.Equal(t, 100, cfg.Swarm.Iterations)

	stop := cfg.DEConfig().Stop
	assert.Equal(t, de.StopWhenSatisfied, stop.Kind())
	acc, ok := stop.Accuracy()
	assert.True(t, ok)
	assert.Equal(t, 0.01, acc)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dimensions: [1"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{"no functions", func(c *Config) { c.Functions = nil }, ErrInvalid},
		{"zero dims", func(c *Config) { c.Dimensions = 0 }, ErrInvalid},
		{"no particles", func(c *Config) { c.Swarm.Particles = 0 }, psode.ErrNoParticles},
		{"solver", func(c *Config) { c.DE.Solver = "scipy" }, ErrInvalid},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalid},
		{"crossover", func(c *Config) { c.DE.Crossover = 1.5 }, de.ErrInvalidConfig},
		{"tiny population", func(c *Config) { c.DE.Population = 3 }, de.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.target)
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Functions = []string{"ackley", "rosenbrock"}
	cfg.Seed = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestAccuracyStop(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.DE.Accuracy)
	n, ok := cfg.DEConfig().Stop.Iters()
	assert.True(t, ok)
	assert.EqualValues(t, 10, n)

	// best values can be negative (styblinski), so can thresholds
	for _, want := range []float64{-150, 0} {
		acc := want
		cfg.DE.Accuracy = &acc
		require.NoError(t, cfg.Validate())

		stop := cfg.DEConfig().Stop
		assert.Equal(t, de.StopWhenSatisfied, stop.Kind(), "accuracy %v", want)
		got, ok := stop.Accuracy()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	path := filepath.Join(t.TempDir(), "neg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("de:\n  accuracy: -150\n"), 0644))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.DE.Accuracy)
	assert.Equal(t, -150.0, *loaded.DE.Accuracy)
}
