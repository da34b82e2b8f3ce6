// Package config provides configuration loading for psode runs.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	psode "github.com/adameus03/pso-de"
	"github.com/adameus03/pso-de/de"
	"github.com/adameus03/pso-de/swarm"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting of a run.
type Config struct {
	Functions  []string `yaml:"functions"`
	Dimensions int      `yaml:"dimensions"`
	// Seed of zero means seed from the clock.
	Seed uint64 `yaml:"seed"`

	Swarm  SwarmConfig  `yaml:"swarm"`
	DE     DEConfig     `yaml:"de"`
	Batch  BatchConfig  `yaml:"batch"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

type SwarmConfig struct {
	Particles  int     `yaml:"particles"`
	Iterations int     `yaml:"iterations"`
	Social     float64 `yaml:"social"`
	Cognitive  float64 `yaml:"cognitive"`
	Inertia    float64 `yaml:"inertia"`
}

// DEConfig configures the coefficient tuner.
type DEConfig struct {
	Solver     string  `yaml:"solver"` // go, gonum or native
	Population uint32  `yaml:"population"`
	Crossover  float64 `yaml:"crossover"`
	Amplifier  float64 `yaml:"amplifier"` // differential weight F
	Lambda     float64 `yaml:"lambda"`
	Iterations uint64  `yaml:"iterations"`
	// Accuracy, when set, replaces the iteration budget with a threshold
	// stop.  Any finite value is a valid threshold, including zero and
	// negative ones.
	Accuracy       *float64 `yaml:"accuracy"`
	MaxGenerations uint64   `yaml:"max_generations"`
}

type BatchConfig struct {
	Tries   int `yaml:"tries"`
	Workers int `yaml:"workers"` // 0 = all CPUs
}

type OutputConfig struct {
	RecordCSV  string        `yaml:"record_csv"`
	RecordJSON string        `yaml:"record_json"`
	StatsCSV   string        `yaml:"stats_csv"`
	DB         string        `yaml:"db"`
	Cache      time.Duration `yaml:"cache"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("parsing embedded defaults: %v", err))
	}
	return cfg
}

// Load reads the config file at path over the embedded defaults.  Fields
// absent from the file keep their default values.  An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Coefs returns the fixed swarm coefficients.
func (c *Config) Coefs() swarm.Coefs {
	return swarm.Coefs{Social: c.Swarm.Social, Cognitive: c.Swarm.Cognitive, Inertia: c.Swarm.Inertia}
}

// DEConfig returns the tuner's solver configuration.
func (c *Config) DEConfig() de.Config {
	stop := de.AfterIters(c.DE.Iterations)
	if c.DE.Accuracy != nil {
		stop = de.WhenSatisfied(*c.DE.Accuracy)
	}
	return de.Config{
		PopulationSize:       c.DE.Population,
		CrossoverProbability: c.DE.Crossover,
		DifferentialWeight:   c.DE.Amplifier,
		Lambda:               c.DE.Lambda,
		Stop:                 stop,
	}
}

func invalid(field string, val interface{}) error {
	return &psode.ConfigError{Field: fmt.Sprintf("%v %v", field, val), Err: ErrInvalid}
}

// Validate checks every setting that can be checked without running.
func (c *Config) Validate() error {
	switch {
	case len(c.Functions) == 0:
		return invalid("functions", c.Functions)
	case c.Dimensions <= 0:
		return invalid("dimensions", c.Dimensions)
	case c.Swarm.Particles <= 0:
		return &psode.ConfigError{Field: "particles", Err: psode.ErrNoParticles}
	case c.Swarm.Iterations < 0:
		return invalid("iterations", c.Swarm.Iterations)
	case c.Batch.Tries < 0:
		return invalid("tries", c.Batch.Tries)
	case c.Batch.Workers < 0:
		return invalid("workers", c.Batch.Workers)
	case c.Output.Cache < 0:
		return invalid("cache", c.Output.Cache)
	}

	switch c.DE.Solver {
	case "go", "gonum", "native":
	default:
		return invalid("solver", c.DE.Solver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log format", c.Log.Format)
	}

	cfg := c.DEConfig()
	return cfg.Validate()
}
