package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/render"
	"github.com/born-ml/densenet/internal/serialization"
)

func runShow(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	images := fs.String("images", "", "IDX images path")
	labels := fs.String("labels", "", "IDX labels path")
	n := fs.Int("n", 5, "Number of images to render")
	offset := fs.Int("offset", 0, "Index of the first image")
	modelPath := fs.String("model", "", "Optional .dnet model; prints its prediction per image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *images == "" || *labels == "" {
		return errors.New("show requires -images and -labels")
	}
	if *n < 0 || *offset < 0 {
		return errors.New("-n and -offset must be >= 0")
	}
	if *n == 0 {
		return nil
	}

	set, err := dataset.Load(*images, *labels, *offset+*n)
	if err != nil {
		return err
	}

	var net *nn.Network
	if *modelPath != "" {
		if net, _, err = serialization.Load(*modelPath); err != nil {
			return err
		}
	}

	for i := *offset; i < set.Len(); i++ {
		input := dataset.Normalize(set.Images[i])
		art, err := render.Labeled(int(set.Labels[i]), input, set.Cols)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, art)
		if net != nil {
			out, err := net.Predict(input)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			fmt.Fprintf(stdout, "predicted=%d\n", nn.Argmax(out))
		}
	}
	return nil
}
