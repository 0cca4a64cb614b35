package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/born-ml/densenet/internal/config"
	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serialization"
	"github.com/born-ml/densenet/internal/trainer"
)

func runTrain(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (built-in defaults if empty)")
	epochs := fs.Int("epochs", 0, "Number of epochs")
	batchSize := fs.Int("batch-size", 0, "Mini-batch size")
	learningRate := fs.Float64("learning-rate", 0, "Learning rate")
	seed := fs.Uint64("seed", 0, "PRNG seed (0 = time based unless set in config)")
	workers := fs.Int("workers", 0, "Backprop workers (0 = physical cores, 1 = sequential)")
	maxSamples := fs.Int("max-samples", 0, "Limit samples per dataset (0 = all)")
	trainImages := fs.String("train-images", "", "Override training images path")
	trainLabels := fs.String("train-labels", "", "Override training labels path")
	testImages := fs.String("test-images", "", "Override test images path")
	testLabels := fs.String("test-labels", "", "Override test labels path")
	holdout := fs.Float64("validation-fraction", 0, "Share of training data held out for per-epoch validation")
	out := fs.String("out", "", "Write the trained model to this .dnet path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.ApplyOverrides(config.Overrides{
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		LearningRate: *learningRate,
		Seed:         *seed,
		Workers:      *workers,
		MaxSamples:   *maxSamples,
		ModelOut:     *out,
		TrainImages:  *trainImages,
		TrainLabels:  *trainLabels,
		TestImages:   *testImages,
		TestLabels:   *testLabels,

		ValidationFraction: *holdout,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.TrainImages == "" {
		return errors.New("train_images and train_labels are required")
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano()) //nolint:gosec // G115: any bit pattern is a valid seed
	}

	classes := cfg.Sizes[len(cfg.Sizes)-1]
	train, err := loadExamples(cfg.TrainImages, cfg.TrainLabels, cfg.MaxSamples, classes)
	if err != nil {
		return err
	}
	var test []nn.Example
	if cfg.TestImages != "" {
		if test, err = loadExamples(cfg.TestImages, cfg.TestLabels, cfg.MaxSamples, classes); err != nil {
			return err
		}
	}

	// Per-epoch evaluation runs on the held-out split when one is configured,
	// and the test set is then scored once at the end.
	validation := test
	var held []nn.Example
	if cfg.ValidationFraction > 0 {
		//nolint:gosec // Shuffling is not security-critical.
		dataset.Shuffle(train, rand.New(rand.NewPCG(cfg.Seed, ^cfg.Seed)))
		train, held = dataset.Split(train, cfg.ValidationFraction)
		if len(held) > 0 {
			validation = held
		}
	}
	log.Printf("sizes=%v train=%d validation=%d test=%d seed=%d",
		cfg.Sizes, len(train), len(held), len(test), cfg.Seed)

	net, err := nn.New(cfg.Sizes, nn.WithSeed(cfg.Seed), nn.WithParallel(cfg.Parallel()))
	if err != nil {
		return err
	}

	tr, err := trainer.New(trainer.Config{
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		Seed:         cfg.Seed,
		LogEvery:     cfg.LogEvery,
		SkipInvalid:  cfg.SkipInvalid,
	}, nil)
	if err != nil {
		return err
	}

	report, err := tr.Run(ctx, net, train, validation)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return fmt.Errorf("training failed: %w", err)
	}
	if interrupted {
		log.Printf("training interrupted after %d complete epochs", len(report.Epochs))
	}

	if cfg.ModelOut != "" {
		meta := map[string]string{
			"epochs":        strconv.Itoa(len(report.Epochs)),
			"batch_size":    strconv.Itoa(cfg.BatchSize),
			"learning_rate": strconv.FormatFloat(cfg.LearningRate, 'g', -1, 64),
			"seed":          strconv.FormatUint(cfg.Seed, 10),
		}
		if n := len(report.Epochs); n > 0 && report.Epochs[n-1].Evaluation.Examples > 0 {
			meta["accuracy"] = strconv.FormatFloat(report.Epochs[n-1].Evaluation.Accuracy(), 'f', 4, 64)
		}
		if err := serialization.Save(cfg.ModelOut, net, meta); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		log.Printf("model saved to %s", cfg.ModelOut)
	}

	if n := len(report.Epochs); n > 0 {
		ev := report.Epochs[n-1].Evaluation
		fmt.Fprintf(stdout, "epochs=%d correct=%d/%d accuracy=%.4f\n", n, ev.Correct, ev.Examples, ev.Accuracy())
	}

	if len(held) > 0 && len(test) > 0 && !interrupted {
		ev, err := net.Evaluate(usable(net, test))
		if err != nil {
			return fmt.Errorf("test evaluation: %w", err)
		}
		fmt.Fprintf(stdout, "test correct=%d/%d accuracy=%.4f\n", ev.Correct, ev.Examples, ev.Accuracy())
	}
	return nil
}

// usable drops examples that do not fit net.
func usable(net *nn.Network, examples []nn.Example) []nn.Example {
	kept := make([]nn.Example, 0, len(examples))
	for _, ex := range examples {
		if net.CheckExample(ex) == nil {
			kept = append(kept, ex)
		}
	}
	return kept
}

func loadExamples(imagesPath, labelsPath string, maxSamples, classes int) ([]nn.Example, error) {
	if classes == dataset.DigitClasses {
		return dataset.LoadMNIST(imagesPath, labelsPath, maxSamples)
	}
	set, err := dataset.Load(imagesPath, labelsPath, maxSamples)
	if err != nil {
		return nil, err
	}
	return set.Examples(classes)
}
