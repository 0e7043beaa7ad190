// Package config loads fftwplan job files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	algofftw "github.com/cwbudde/algo-fftw"
)

// Config holds a transform job, benchmark settings and logging options.
type Config struct {
	// Engine names the engine to load: "default", "go" or, in builds with
	// the fftw tag, "fftw".
	Engine string `yaml:"engine"`

	Job     JobConfig     `yaml:"job"`
	Bench   BenchConfig   `yaml:"bench"`
	Logging LoggingConfig `yaml:"logging"`
}

// JobConfig describes one transform run.
type JobConfig struct {
	Shape         []int    `yaml:"shape"`
	Kind          string   `yaml:"kind"`      // complex64, complex128, complexlongdouble
	Direction     string   `yaml:"direction"` // forward, backward
	Flags         []string `yaml:"flags"`
	Normalization string   `yaml:"normalization"` // none, full, sqrt
	Repeat        int      `yaml:"repeat"`
	Seed          int64    `yaml:"seed"`
}

// BenchConfig configures the bench command.
type BenchConfig struct {
	Sizes  []int  `yaml:"sizes"`
	Iters  int    `yaml:"iters"`
	Warmup int    `yaml:"warmup"`
	Mode   string `yaml:"mode"` // forward, backward, roundtrip, all
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Job is a JobConfig with every field parsed.
type Job struct {
	Shape         []int
	Kind          algofftw.ElementKind
	Direction     algofftw.Direction
	Flags         algofftw.Flags
	Normalization algofftw.Normalization
	Repeat        int
	Seed          int64
}

// BenchModes lists the accepted bench modes.
var BenchModes = []string{"forward", "backward", "roundtrip", "all"}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Engine: "default",
		Job: JobConfig{
			Shape:         []int{64, 64},
			Kind:          "complex128",
			Direction:     "forward",
			Flags:         []string{"estimate"},
			Normalization: "none",
			Repeat:        1,
			Seed:          1,
		},
		Bench: BenchConfig{
			Sizes:  []int{1024, 4096, 16384, 65536},
			Iters:  50,
			Warmup: 5,
			Mode:   "forward",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML configuration file over the defaults. A missing file
// yields the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks every enum string and numeric setting.
func (c *Config) Validate() error {
	if _, err := c.Job.Resolve(); err != nil {
		return fmt.Errorf("job: %w", err)
	}

	if err := c.Bench.validate(); err != nil {
		return fmt.Errorf("bench: %w", err)
	}

	if _, err := c.Logging.ZapLevel(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}

// Resolve parses the job's enum strings.
func (j JobConfig) Resolve() (Job, error) {
	if len(j.Shape) == 0 {
		return Job{}, fmt.Errorf("%w: empty shape", algofftw.ErrInvalidShape)
	}

	for _, d := range j.Shape {
		if d < 1 {
			return Job{}, fmt.Errorf("%w: %v", algofftw.ErrInvalidShape, j.Shape)
		}
	}

	kind, err := algofftw.ParseElementKind(j.Kind)
	if err != nil {
		return Job{}, err
	}

	dir, err := algofftw.ParseDirection(j.Direction)
	if err != nil {
		return Job{}, err
	}

	flags, err := algofftw.ParseFlags(j.Flags...)
	if err != nil {
		return Job{}, err
	}

	norm, err := algofftw.ParseNormalization(j.Normalization)
	if err != nil {
		return Job{}, err
	}

	if j.Repeat < 1 {
		return Job{}, fmt.Errorf("repeat must be positive, got %d", j.Repeat)
	}

	return Job{
		Shape:         append([]int(nil), j.Shape...),
		Kind:          kind,
		Direction:     dir,
		Flags:         flags,
		Normalization: norm,
		Repeat:        j.Repeat,
		Seed:          j.Seed,
	}, nil
}

func (b BenchConfig) validate() error {
	for _, n := range b.Sizes {
		if n < 1 {
			return fmt.Errorf("invalid size %d", n)
		}
	}

	if b.Iters < 1 || b.Warmup < 0 {
		return fmt.Errorf("iters must be positive and warmup non-negative, got %d/%d", b.Iters, b.Warmup)
	}

	for _, m := range BenchModes {
		if b.Mode == m {
			return nil
		}
	}

	return fmt.Errorf("invalid mode %q (valid: %v)", b.Mode, BenchModes)
}

// ZapLevel parses the logging level.
func (l LoggingConfig) ZapLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(l.Level)
}
