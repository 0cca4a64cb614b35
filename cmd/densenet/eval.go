package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/born-ml/densenet/internal/serialization"
)

func runEval(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	modelPath := fs.String("model", "", "Path to a .dnet model")
	images := fs.String("images", "", "IDX images path")
	labels := fs.String("labels", "", "IDX labels path")
	maxSamples := fs.Int("max-samples", 0, "Limit samples (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" || *images == "" || *labels == "" {
		return errors.New("eval requires -model, -images and -labels")
	}

	net, header, err := serialization.Load(*modelPath)
	if err != nil {
		return err
	}
	sizes := net.Sizes()
	examples, err := loadExamples(*images, *labels, *maxSamples, sizes[len(sizes)-1])
	if err != nil {
		return err
	}

	ev, err := net.Evaluate(examples)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "model=%s sizes=%v created=%s\n", *modelPath, header.Sizes, header.CreatedAt)
	fmt.Fprintf(stdout, "examples=%d correct=%d accuracy=%.4f cost=%.6f\n",
		ev.Examples, ev.Correct, ev.Accuracy(), ev.MeanCost)
	return nil
}
