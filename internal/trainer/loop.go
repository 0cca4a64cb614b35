// Package trainer drives mini-batch stochastic gradient descent over a
// dataset: shuffling, batching, rejecting malformed examples, and evaluating
// after every epoch.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/nn"
)

// Model is the part of *nn.Network the trainer needs.
type Model interface {
	CheckExample(ex nn.Example) error
	TrainOnBatch(batch []nn.Example, learningRate float64) error
	Evaluate(examples []nn.Example) (nn.Evaluation, error)
}

// Config captures the knobs required by the training loop.
type Config struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Seed         uint64
	LogEvery     int  // Log throughput every N mini-batches
	SkipInvalid  bool // Drop malformed examples instead of failing the run
}

// Validate verifies the config is runnable.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return errors.New("trainer: epochs must be > 0")
	}
	if c.BatchSize <= 0 {
		return errors.New("trainer: batch size must be > 0")
	}
	if c.LearningRate < 0 {
		return errors.New("trainer: learning rate must be >= 0")
	}
	return nil
}

// EpochStats summarizes one completed epoch.
type EpochStats struct {
	Epoch      int           // 1-based epoch number
	Batches    int           // Mini-batches applied
	Duration   time.Duration // Wall time for training (excluding evaluation)
	Evaluation nn.Evaluation // Test-set result, zero if no test set was given
}

// Report is the outcome of a Run.
type Report struct {
	Epochs       []EpochStats
	SkippedTrain int // Malformed training examples dropped
	SkippedTest  int // Malformed test examples dropped
}

// Trainer runs the epoch loop.
type Trainer struct {
	cfg    Config
	logger *log.Logger
	rng    *rand.Rand
}

// New creates a Trainer. A nil logger uses the standard logger.
func New(cfg Config, logger *log.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 1000
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Trainer{
		cfg:    cfg,
		logger: logger,
		//nolint:gosec // Shuffling is not security-critical.
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xda3e39cb94b95bdb)),
	}, nil
}

// Run trains model for cfg.Epochs epochs and evaluates on test after each
// one (test may be empty).
//
// Examples that do not fit the model are dropped and counted when
// SkipInvalid is set; otherwise Run fails before any update. ctx is checked
// between mini-batches only, so the model is always left at a mini-batch
// boundary; the partial report is returned together with ctx.Err().
//
// The caller's train slice is not reordered.
func (t *Trainer) Run(ctx context.Context, model Model, train, test []nn.Example) (*Report, error) {
	report := &Report{}

	train, skipped, err := t.filter(model, train, "train")
	if err != nil {
		return report, err
	}
	report.SkippedTrain = skipped

	test, skipped, err = t.filter(model, test, "test")
	if err != nil {
		return report, err
	}
	report.SkippedTest = skipped

	if len(train) == 0 {
		return report, errors.New("trainer: no usable training examples")
	}

	var window Window
	step := 0
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		dataset.Shuffle(train, t.rng)

		stats := EpochStats{Epoch: epoch}
		start := time.Now()
		for lo := 0; lo < len(train); lo += t.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				t.logger.Printf("epoch=%d batch=%d interrupted: %v", epoch, stats.Batches, err)
				return report, err
			}

			batch := train[lo:min(lo+t.cfg.BatchSize, len(train))]
			batchStart := time.Now()
			if err := model.TrainOnBatch(batch, t.cfg.LearningRate); err != nil {
				return report, fmt.Errorf("epoch %d batch %d: %w", epoch, stats.Batches, err)
			}
			window.Record(len(batch), time.Since(batchStart))
			stats.Batches++
			step++

			if step%t.cfg.LogEvery == 0 {
				// Cost of the batch just applied, measured with the updated parameters.
				ev, err := model.Evaluate(batch)
				if err != nil {
					return report, fmt.Errorf("epoch %d batch %d cost: %w", epoch, stats.Batches, err)
				}
				window.RecordCost(ev.MeanCost)
				snap := window.Snapshot()
				t.logger.Printf("epoch=%d step=%d examples_per_sec=%.1f compute_ms=%.3f last_cost=%.6f",
					epoch, step, snap.ExamplesPerSec, snap.AvgComputeMS, snap.LastCost)
			}
		}
		stats.Duration = time.Since(start)

		if len(test) > 0 {
			ev, err := model.Evaluate(test)
			if err != nil {
				return report, fmt.Errorf("epoch %d evaluate: %w", epoch, err)
			}
			stats.Evaluation = ev
			t.logger.Printf("epoch=%d correct=%d/%d accuracy=%.4f cost=%.6f duration=%s",
				epoch, ev.Correct, ev.Examples, ev.Accuracy(), ev.MeanCost, stats.Duration.Round(time.Millisecond))
		} else {
			t.logger.Printf("epoch=%d complete duration=%s", epoch, stats.Duration.Round(time.Millisecond))
		}

		report.Epochs = append(report.Epochs, stats)
	}

	return report, nil
}

// filter returns a fresh slice of the examples that fit model.
func (t *Trainer) filter(model Model, examples []nn.Example, set string) ([]nn.Example, int, error) {
	kept := make([]nn.Example, 0, len(examples))
	skipped := 0
	for i, ex := range examples {
		if err := model.CheckExample(ex); err != nil {
			if !t.cfg.SkipInvalid {
				return nil, 0, fmt.Errorf("trainer: %s example %d: %w", set, i, err)
			}
			skipped++
			continue
		}
		kept = append(kept, ex)
	}
	if skipped > 0 {
		t.logger.Printf("set=%s skipped=%d kept=%d reason=shape_mismatch", set, skipped, len(kept))
	}
	return kept, skipped, nil
}
