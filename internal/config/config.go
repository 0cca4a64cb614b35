// Package config loads the YAML run configuration for training and
// evaluation.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/densenet/internal/parallel"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Sizes        []int   `yaml:"sizes"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         uint64  `yaml:"seed"`
	LogEvery     int     `yaml:"log_every"`
	SkipInvalid  bool    `yaml:"skip_invalid"`
	Workers      int     `yaml:"workers"` // 0 = one per physical core, 1 = sequential

	TrainImages string `yaml:"train_images"`
	TrainLabels string `yaml:"train_labels"`
	TestImages  string `yaml:"test_images"`
	TestLabels  string `yaml:"test_labels"`
	MaxSamples  int    `yaml:"max_samples"` // 0 = all
	ModelOut    string `yaml:"model_out"`

	// Share of the training set held out for per-epoch validation (0 = none;
	// the test set is then evaluated per epoch instead).
	ValidationFraction float64 `yaml:"validation_fraction"`
}

// Overrides captures CLI supplied values. Zero values leave the config alone.
type Overrides struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Seed         uint64
	Workers      int
	MaxSamples   int
	ModelOut     string
	TrainImages  string
	TrainLabels  string
	TestImages   string
	TestLabels   string

	ValidationFraction float64
}

// Default returns the classic MNIST setup: one 30-unit hidden layer,
// 30 epochs of mini-batches of 10 at η = 3.
func Default() *Config {
	return &Config{
		Sizes:        []int{784, 30, 10},
		Epochs:       30,
		BatchSize:    10,
		LearningRate: 3.0,
		LogEvery:     1000,
		SkipInvalid:  true,
	}
}

// Load reads and validates a Config from a YAML file. Keys missing from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML from r on top of Default. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.MaxSamples > 0 {
		c.MaxSamples = o.MaxSamples
	}
	if o.ModelOut != "" {
		c.ModelOut = o.ModelOut
	}
	if o.ValidationFraction > 0 {
		c.ValidationFraction = o.ValidationFraction
	}
	if o.TrainImages != "" {
		c.TrainImages = o.TrainImages
	}
	if o.TrainLabels != "" {
		c.TrainLabels = o.TrainLabels
	}
	if o.TestImages != "" {
		c.TestImages = o.TestImages
	}
	if o.TestLabels != "" {
		c.TestLabels = o.TestLabels
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if len(c.Sizes) < 2 {
		return fmt.Errorf("sizes must list at least 2 layers (got %v)", c.Sizes)
	}
	for i, s := range c.Sizes {
		if s <= 0 {
			return fmt.Errorf("sizes[%d] must be > 0 (got %d)", i, s)
		}
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LearningRate < 0 {
		return fmt.Errorf("learning_rate must be >= 0 (got %g)", c.LearningRate)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples must be >= 0 (got %d)", c.MaxSamples)
	}
	if c.ValidationFraction < 0 || c.ValidationFraction >= 1 {
		return fmt.Errorf("validation_fraction must be in [0, 1) (got %g)", c.ValidationFraction)
	}
	if (c.TrainImages == "") != (c.TrainLabels == "") {
		return errors.New("train_images and train_labels must be set together")
	}
	if (c.TestImages == "") != (c.TestLabels == "") {
		return errors.New("test_images and test_labels must be set together")
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 1000
	}
	return nil
}

// Parallel maps Workers onto a fan-out config for the mini-batch update.
func (c *Config) Parallel() parallel.Config {
	switch c.Workers {
	case 0:
		return parallel.DefaultConfig()
	case 1:
		return parallel.Sequential()
	default:
		cfg := parallel.DefaultConfig()
		cfg.Enabled = true
		cfg.NumWorkers = c.Workers
		return cfg
	}
}
